// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/korrel8r/metricq/internal/pkg/logging"
	"github.com/korrel8r/metricq/internal/pkg/must"
	"github.com/korrel8r/metricq/internal/pkg/tlsprofile"
	"github.com/korrel8r/metricq/pkg/api"
	"github.com/korrel8r/metricq/pkg/build"
	"github.com/korrel8r/metricq/pkg/mcp"
	"github.com/korrel8r/metricq/pkg/parser"
	"github.com/korrel8r/metricq/pkg/query"
	"github.com/spf13/cobra"
)

var webCmd = &cobra.Command{
	Use:   "web [flags]",
	Short: "Start REST server. Listening address may be provided via --http or --https.",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, args []string) {
		if *httpFlag == "" && *httpsFlag == "" {
			*httpFlag = ":8080" // Default if no port specified.
		}
		var s http.Server
		switch {
		case *httpFlag != "" && *httpsFlag != "":
			panic(fmt.Errorf("only one of --http or --https may be present"))
		case *httpFlag != "":
			s.Addr = *httpFlag
			if *certFlag != "" || *keyFlag != "" {
				panic(fmt.Errorf("--cert and --key not allowed with --http"))
			}
		case *httpsFlag != "":
			s.Addr = *httpsFlag
			if *certFlag == "" || *keyFlag == "" {
				panic(fmt.Errorf("--cert and --key are required for https"))
			}
			s.TLSConfig = must.Must1(tlsprofile.Profile{MinVersion: *tlsMinVersionFlag, CipherSuites: *tlsCiphersFlag}.Config())
		}

		c := configs()
		cat := newCatalog(c)
		vars := variables(c)
		ttl, capacity := c.Cache()
		gin.DefaultWriter = logging.LogWriter()
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
		router := gin.New()
		router.Use(gin.Recovery())
		a := must.Must1(api.New(api.Options{
			Catalog:       cat,
			Parser:        parser.Parser{},
			Variables:     vars,
			CacheTTL:      ttl,
			CacheCapacity: capacity,
		}, router))
		defer a.Close()
		if *mcpFlag {
			// Share the API's cached parser.
			h := mcp.NewServer(cat, a.Parser, query.NewInterpolator(vars)).HTTPHandler()
			router.Any(mcp.StreamablePath, gin.WrapH(h))
		}
		s.Handler = router
		pprof.Register(router) // Enable profiling

		if *httpFlag != "" {
			log.Info("listening for http", "addr", s.Addr, "version", build.Version, "mcp", *mcpFlag)
			must.Must(s.ListenAndServe())
		} else {
			log.Info("listening for https", "addr", s.Addr, "version", build.Version, "mcp", *mcpFlag)
			must.Must(s.ListenAndServeTLS(*certFlag, *keyFlag))
		}
	},
}

var (
	httpFlag, httpsFlag *string
	certFlag, keyFlag   *string
	mcpFlag             *bool
	tlsMinVersionFlag   *string
	tlsCiphersFlag      *[]string
)

func init() {
	rootCmd.AddCommand(webCmd)
	httpFlag = webCmd.Flags().String("http", "", "host:port address for insecure http listener")
	httpsFlag = webCmd.Flags().String("https", "", "host:port address for secure https listener")
	certFlag = webCmd.Flags().String("cert", "", "TLS certificate file (PEM format) for https")
	keyFlag = webCmd.Flags().String("key", "", "Private key (PEM format) for https")
	tlsMinVersionFlag = webCmd.Flags().String("tls-min-version", "", "Minimum TLS version for https, one of: "+strings.Join(tlsprofile.Versions(), ", "))
	tlsCiphersFlag = webCmd.Flags().StringSlice("tls-cipher-suites", nil, "Comma-separated IANA cipher suite names for https")
	mcpFlag = webCmd.Flags().Bool("mcp", true, "Serve the MCP streamable HTTP protocol at "+mcp.StreamablePath)
}
