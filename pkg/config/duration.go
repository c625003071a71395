// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration in a config file, either a [time.ParseDuration] string or a number of seconds.
// Negative durations are rejected.
type Duration struct{ time.Duration }

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) UnmarshalJSON(b []byte) (err error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var parsed time.Duration
	switch v := v.(type) {
	case float64:
		parsed = time.Duration(v * float64(time.Second))
	case string:
		if parsed, err = time.ParseDuration(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid duration: %s", b)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration: %s", b)
	}
	d.Duration = parsed
	return nil
}
