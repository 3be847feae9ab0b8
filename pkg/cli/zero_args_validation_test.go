package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Commands that take no positional arguments must reject strays before
// any config or network work happens.
func TestNoArgCommandsRejectStrays(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := [][]string{
		{"version", "extra"},
		{"config", "show", "extra"},
		{"config", "set-profile", "--name", "p", "--host", "http://127.0.0.1:65535", "extra"},
		{"users", "list", "extra"},
		{"groups", "list", "extra"},
		{"permissions", "list", "extra"},
		{"snapshot", "create", "extra"},
		{"auth", "token", "--username", "a", "--secret", "s", "extra"},
		{"plan", "extra"},
		{"apply", "extra"},
		{"validate", "extra"},
		{"commands", "extra"},
	}

	for _, args := range cases {
		t.Run(args[0]+" "+args[1], func(t *testing.T) {
			_, err := runCLI(t, args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), `unknown command "extra"`)
		})
	}
}
