// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package must converts errors to panics for command code, main recovers them.
package must

// Must panics with err if it is not nil.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 panics with err if it is not nil, otherwise returns v.
func Must1[T any](v T, err error) T {
	Must(err)
	return v
}
