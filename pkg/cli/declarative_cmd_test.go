package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSeed writes one YAML seed file into dir.
func writeSeed(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

// newDirectoryStateServer serves the three read endpoints apply and plan
// use to fetch current server state, and accepts any POST with 204.
func newDirectoryStateServer(rec *requestRecorder, permsJSON, groupsJSON string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/permissions":
			_, _ = w.Write([]byte(permsJSON))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/groups":
			_, _ = w.Write([]byte(groupsJSON))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/users":
			_, _ = w.Write([]byte(`{"data":[],"next_page_token":""}`))
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func postsOf(rec *requestRecorder) []capturedRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []capturedRequest
	for _, r := range rec.requests {
		if r.Method == http.MethodPost {
			out = append(out, r)
		}
	}
	return out
}

func TestApply_AutoApprove_CreatesPermission(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "permissions.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
description: View sales reports
aliases:
  - reports.read
`)

	rec := &requestRecorder{}
	srv := newDirectoryStateServer(rec, `[]`, `[]`)
	defer srv.Close()

	output, err := execCLI(t, srv, "apply", "--auto-approve", "--seed-dir", seedDir)
	require.NoError(t, err)

	assert.Contains(t, output, `+ permission "reports.view" will be created`)
	assert.Contains(t, output, "Plan: 1 to create, 0 to update.")
	assert.Contains(t, output, `create permission "reports.view" ... succeeded`)
	assert.Contains(t, output, "Apply complete: 1 succeeded, 0 failed.")

	posts := postsOf(rec)
	require.Len(t, posts, 1)
	assert.Equal(t, "/v1/permissions", posts[0].Path)
	assert.JSONEq(t, `{
		"name": "reports.view",
		"description": "View sales reports",
		"aliases": ["reports.read"],
		"is_default": false
	}`, posts[0].Body)
}

func TestApply_AppliesInOrder(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "tree.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
aliases:
  - reports.read
---
apiVersion: posgate/v1
kind: Group
name: reporting
permissions:
  - reports.view
---
apiVersion: posgate/v1
kind: User
username: casey
password: secret123
groups:
  - reporting
permissions:
  - reports.read
`)

	rec := &requestRecorder{}
	srv := newDirectoryStateServer(rec, `[]`, `[]`)
	defer srv.Close()

	output, err := execCLI(t, srv, "apply", "--auto-approve", "--seed-dir", seedDir)
	require.NoError(t, err)

	assert.Contains(t, output, "Apply complete: 3 succeeded, 0 failed.")

	posts := postsOf(rec)
	require.Len(t, posts, 3)
	assert.Equal(t, "/v1/permissions", posts[0].Path)
	assert.Equal(t, "/v1/groups", posts[1].Path)
	assert.Equal(t, "/v1/users", posts[2].Path)
	assert.JSONEq(t, `{
		"username": "casey",
		"password": "secret123",
		"first_name": "",
		"last_name": "",
		"email": "",
		"groups": ["reporting"],
		"permissions": ["reports.read"]
	}`, posts[2].Body)
}

func TestApply_NoChanges(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "permissions.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
description: View sales reports
aliases:
  - reports.read
`)

	rec := &requestRecorder{}
	srv := newDirectoryStateServer(rec,
		`[{"name":"reports.view","description":"View sales reports","aliases":["reports.read"],"is_default":false}]`,
		`[]`)
	defer srv.Close()

	output, err := execCLI(t, srv, "apply", "--auto-approve", "--seed-dir", seedDir)
	require.NoError(t, err)

	assert.Contains(t, output, "No changes. The directory matches the declared state.")
	assert.Empty(t, postsOf(rec))
}

func TestApply_RequiresConfirmationWithoutTTY(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "permissions.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
`)

	rec := &requestRecorder{}
	srv := newDirectoryStateServer(rec, `[]`, `[]`)
	defer srv.Close()

	_, err := execCLI(t, srv, "apply", "--seed-dir", seedDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--auto-approve")
	assert.Empty(t, postsOf(rec), "nothing should be applied without confirmation")
}

func TestApply_SkipsUserWithPasswordHash(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "tree.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
---
apiVersion: posgate/v1
kind: User
username: legacy
password_hash: "$2a$10$abcdefghijklmnopqrstuv"
`)

	rec := &requestRecorder{}
	srv := newDirectoryStateServer(rec, `[]`, `[]`)
	defer srv.Close()

	output, err := execCLI(t, srv, "apply", "--auto-approve", "--seed-dir", seedDir)
	require.NoError(t, err)

	assert.Contains(t, output, `! user "legacy" skipped`)
	assert.Contains(t, output, "password_hash")
	assert.Contains(t, output, "Apply complete: 1 succeeded, 0 failed.")

	posts := postsOf(rec)
	require.Len(t, posts, 1)
	assert.Equal(t, "/v1/permissions", posts[0].Path)
}

func TestPlan_NoChanges(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "permissions.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
description: View sales reports
`)

	rec := &requestRecorder{}
	srv := newDirectoryStateServer(rec,
		`[{"name":"reports.view","description":"View sales reports","aliases":[],"is_default":false}]`,
		`[]`)
	defer srv.Close()

	output, err := execCLI(t, srv, "plan", "--seed-dir", seedDir)
	require.NoError(t, err)

	assert.Contains(t, output, "No changes. The directory matches the declared state.")
	assert.Empty(t, postsOf(rec), "plan must never write")
}

func TestPlan_JSONOutput_NoChanges(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "permissions.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
`)

	rec := &requestRecorder{}
	srv := newDirectoryStateServer(rec,
		`[{"name":"reports.view","description":"","aliases":[],"is_default":false}]`,
		`[]`)
	defer srv.Close()

	output, err := execCLI(t, srv, "plan", "--seed-dir", seedDir, "-o", "json")
	require.NoError(t, err)

	assert.Contains(t, output, `"actions": []`)
	assert.Contains(t, output, `"creates": 0`)
	assert.Contains(t, output, `"updates": 0`)
}

func TestPlan_PendingChangesExitCode(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "permissions.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
`)

	rec := &requestRecorder{}
	srv := newDirectoryStateServer(rec, `[]`, `[]`)
	defer srv.Close()

	_, err := execCLI(t, srv, "plan", "--seed-dir", seedDir)
	require.Error(t, err)

	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.code, "pending changes must exit 2 for CI gates")
}

func TestValidate_ValidTree(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "tree.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
---
apiVersion: posgate/v1
kind: Group
name: reporting
permissions:
  - reports.view
  - pos.sale
`)

	t.Run("text", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		output, err := runCLI(t, "validate", "--seed-dir", seedDir)
		require.NoError(t, err)
		assert.Contains(t, output, "Configuration is valid.")
	})

	t.Run("json", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		output, err := runCLI(t, "validate", "--seed-dir", seedDir, "-o", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"valid": true}`, output)
	})
}

func TestValidate_UnknownFieldRejected(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "permissions.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
colour: blue
`)

	t.Setenv("HOME", t.TempDir())
	_, err := runCLI(t, "validate", "--seed-dir", seedDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load seeds")
}

func TestValidate_AllowUnknownFields(t *testing.T) {
	seedDir := t.TempDir()
	writeSeed(t, seedDir, "permissions.yaml", `apiVersion: posgate/v1
kind: Permission
name: reports.view
colour: blue
`)

	t.Setenv("HOME", t.TempDir())
	output, err := runCLI(t, "validate", "--seed-dir", seedDir, "--allow-unknown-fields")
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration is valid.")
}

func TestValidate_MissingSeedDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := runCLI(t, "validate", "--seed-dir", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load seeds")
}
