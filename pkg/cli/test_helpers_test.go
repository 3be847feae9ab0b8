package cli

import (
	"io"
	"os"
	"strings"
	"testing"
)

// runCapturingStdout executes fn with os.Stdout redirected and returns
// everything it wrote. The table and JSON printers write straight to
// os.Stdout rather than the cobra out stream, so tests capture at the
// fd level. A goroutine drains the pipe so large outputs cannot wedge
// the writer.
func runCapturingStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	outc := make(chan string, 1)
	go func() {
		var b strings.Builder
		_, _ = io.Copy(&b, r)
		outc <- b.String()
	}()

	fn()
	_ = w.Close()
	return <-outc
}

// runCLI executes a fresh root command with the given args and returns
// whatever it printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	var runErr error
	out := runCapturingStdout(t, func() { runErr = cmd.Execute() })
	return out, runErr
}
