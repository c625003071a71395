// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package test contains helpers for writing tests
package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// SkipIfNoCommand skips a test if the cmd is not found in PATH
func SkipIfNoCommand(t *testing.T, cmd string) {
	t.Helper()
	if _, err := exec.LookPath(cmd); err != nil {
		skipf(t, "command %q not available", cmd)
	}
}

func skipf(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	msg := fmt.Sprintf(format, args...)
	noSkip := os.Getenv("TEST_NO_SKIP")
	if noSkip != "" {
		t.Fatalf("TEST_NO_SKIP=%v failing: %v", noSkip, msg)
	} else {
		t.Skip(msg)
	}
}

// ListenPort returns a free ephemeral port for listening.
func ListenPort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// ExecError extracts stderr if err is an exec.ExitError
func ExecError(err error) error {
	if ex, ok := err.(*exec.ExitError); ok {
		return fmt.Errorf("%v: %v", err, string(ex.Stderr))
	}
	return err
}

// PanicErr panics if err is not nil
func PanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// Must panics if err is not nil, else returns v.
func Must[T any](v T, err error) T { PanicErr(err); return v }

// JSONString returns the JSON marshaled string from v, or the error message if marshal fails
func JSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

// JSONPretty returns an indented JSON string, or error message if marshal fails.
func JSONPretty(v any) string {
	w := &bytes.Buffer{}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return err.Error()
	}
	return w.String()
}

// FakeMain calls f with os.Args set to args, returns what f writes to os.Stdout and os.Stderr.
// The original values are restored before returning.
func FakeMain(args []string, f func()) (stdout, stderr string) {
	return FakeMainStdin("", args, f)
}

// FakeMainStdin is like [FakeMain] with stdin as the contents of os.Stdin.
// If args is nil os.Args is not changed.
func FakeMainStdin(stdin string, args []string, f func()) (stdout, stderr string) {
	saveArgs, saveIn, saveOut, saveErr := os.Args, os.Stdin, os.Stdout, os.Stderr
	defer func() { os.Args, os.Stdin, os.Stdout, os.Stderr = saveArgs, saveIn, saveOut, saveErr }()
	if args != nil {
		os.Args = args
	}

	inR, inW := Must2(os.Pipe())
	go func() { _, _ = io.Copy(inW, strings.NewReader(stdin)); _ = inW.Close() }()
	outR, outW := Must2(os.Pipe())
	errR, errW := Must2(os.Pipe())
	outC, errC := capture(outR), capture(errR)
	os.Stdin, os.Stdout, os.Stderr = inR, outW, errW

	func() {
		defer func() { _ = outW.Close(); _ = errW.Close(); _ = inR.Close() }()
		f()
	}()
	return <-outC, <-errC
}

// Must2 panics if err is not nil, else returns v1, v2.
func Must2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) { PanicErr(err); return v1, v2 }

func capture(r io.ReadCloser) <-chan string {
	c := make(chan string, 1)
	go func() {
		defer r.Close()
		b, _ := io.ReadAll(r)
		c <- string(b)
	}()
	return c
}
