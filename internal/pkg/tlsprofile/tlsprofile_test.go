// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package tlsprofile

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Config(t *testing.T) {
	for _, x := range []struct {
		name    string
		profile Profile
		want    *tls.Config
		wantErr string
	}{
		{name: "empty"},
		{
			name:    "version",
			profile: Profile{MinVersion: "VersionTLS13"},
			want:    &tls.Config{MinVersion: tls.VersionTLS13},
		},
		{
			name:    "ciphers",
			profile: Profile{CipherSuites: []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256", "TLS_RSA_WITH_RC4_128_SHA"}},
			want:    &tls.Config{CipherSuites: []uint16{tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, tls.TLS_RSA_WITH_RC4_128_SHA}},
		},
		{
			name:    "bad version",
			profile: Profile{MinVersion: "TLS1.2"},
			wantErr: `unknown TLS version "TLS1.2", expected one of: VersionTLS10, VersionTLS11, VersionTLS12, VersionTLS13`,
		},
		{
			name:    "bad cipher",
			profile: Profile{MinVersion: "VersionTLS12", CipherSuites: []string{"nonsense"}},
			wantErr: `unknown cipher suite "nonsense"`,
		},
	} {
		t.Run(x.name, func(t *testing.T) {
			got, err := x.profile.Config()
			if x.wantErr != "" {
				assert.EqualError(t, err, x.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, x.want, got)
		})
	}
}
