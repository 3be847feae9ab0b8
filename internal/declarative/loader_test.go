package declarative

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_FullTree(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "permissions.yaml", `
apiVersion: posgate/v1
kind: Permission
name: pos.sale
description: Ring up sales
aliases: [sale]
default: true
---
apiVersion: posgate/v1
kind: Permission
name: pos.refund
`)
	writeSeed(t, dir, "groups/staff.yml", `
apiVersion: posgate/v1
kind: Group
name: staff
description: Floor staff
permissions: [pos.sale]
`)
	writeSeed(t, dir, "groups/cashier.yml", `
apiVersion: posgate/v1
kind: Group
name: cashier
permissions: [pos.refund]
parents: [staff]
`)
	writeSeed(t, dir, "users.yaml", `
apiVersion: posgate/v1
kind: User
username: alice
password: alicepw
first_name: Alice
groups: [cashier]
`)
	writeSeed(t, dir, "notes.txt", "not yaml, ignored")

	state, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, state.Permissions, 2)
	assert.Equal(t, "pos.sale", state.Permissions[0].Name)
	assert.Equal(t, []string{"sale"}, state.Permissions[0].Aliases)
	assert.True(t, state.Permissions[0].Default)

	require.Len(t, state.Groups, 2)
	assert.Equal(t, "cashier", state.Groups[0].Name)
	assert.Equal(t, []string{"staff"}, state.Groups[0].Parents)
	assert.Equal(t, "staff", state.Groups[1].Name)

	require.Len(t, state.Users, 1)
	assert.Equal(t, "alice", state.Users[0].Username)
	assert.Equal(t, []string{"cashier"}, state.Users[0].Groups)
	assert.False(t, state.Empty())
}

func TestLoad_EmptyTree(t *testing.T) {
	state, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.True(t, state.Empty())
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "p.yaml", `
apiVersion: posgate/v1
kind: Permission
name: pos.sale
descriptoin: typo
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descriptoin")

	state, err := LoadWithOptions(dir, LoadOptions{AllowUnknownFields: true})
	require.NoError(t, err)
	require.Len(t, state.Permissions, 1)
}

func TestLoad_BadEnvelope(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "wrong apiVersion",
			doc:  "apiVersion: duck/v1\nkind: Permission\nname: pos.sale\n",
			want: "unsupported apiVersion",
		},
		{
			name: "unknown kind",
			doc:  "apiVersion: posgate/v1\nkind: Widget\nname: x\n",
			want: "unknown kind",
		},
		{
			name: "permission without name",
			doc:  "apiVersion: posgate/v1\nkind: Permission\ndescription: nameless\n",
			want: "name is required",
		},
		{
			name: "user without username",
			doc:  "apiVersion: posgate/v1\nkind: User\npassword: pw\n",
			want: "username is required",
		},
		{
			name: "user with both credential fields",
			doc:  "apiVersion: posgate/v1\nkind: User\nusername: bob\npassword: pw\npassword_hash: abcd\n",
			want: "mutually exclusive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSeed(t, dir, "doc.yaml", tt.doc)
			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "a.yaml", "apiVersion: posgate/v1\nkind: Group\nname: staff\n")
	writeSeed(t, dir, "b.yaml", "apiVersion: posgate/v1\nkind: Group\nname: '  STAFF '\n")
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate group "staff"`)
}

func TestLoad_SkipsHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, ".backup/old.yaml", "apiVersion: posgate/v1\nkind: Widget\n")
	writeSeed(t, dir, ".draft.yaml", "not even yaml: [")
	writeSeed(t, dir, "ok.yaml", "apiVersion: posgate/v1\nkind: Permission\nname: pos.sale\n")

	state, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, state.Permissions, 1)
}

func TestLoad_EmptyDocumentBetweenSeparators(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "p.yaml", `
apiVersion: posgate/v1
kind: Permission
name: pos.sale
---
---
apiVersion: posgate/v1
kind: Permission
name: pos.refund
`)
	state, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, state.Permissions, 2)
}
