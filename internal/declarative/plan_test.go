package declarative

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_EmptyServer(t *testing.T) {
	desired := &State{
		Permissions: []PermissionDoc{{Name: "Reports.View", Description: "View sales reports"}},
		Groups:      []GroupDoc{{Name: "reporting", Permissions: []string{"reports.view"}}},
		Users:       []UserDoc{{Username: "Casey", Password: "pw"}},
	}

	plan := Diff(desired, &State{})
	require.Len(t, plan.Actions, 3)
	assert.Empty(t, plan.Errors)
	assert.True(t, plan.HasChanges())

	assert.Equal(t, OpCreate, plan.Actions[0].Op)
	assert.Equal(t, KindPermission, plan.Actions[0].Kind)
	assert.Equal(t, "reports.view", plan.Actions[0].Name)
	perm, ok := plan.Actions[0].Desired.(PermissionDoc)
	require.True(t, ok)
	assert.Equal(t, "View sales reports", perm.Description)

	assert.Equal(t, KindGroup, plan.Actions[1].Kind)
	assert.Equal(t, "reporting", plan.Actions[1].Name)
	assert.Equal(t, KindUser, plan.Actions[2].Kind)
	assert.Equal(t, "casey", plan.Actions[2].Name)

	creates, updates := plan.Summary()
	assert.Equal(t, 3, creates)
	assert.Equal(t, 0, updates)
}

func TestDiff_NoChanges(t *testing.T) {
	desired := &State{
		Permissions: []PermissionDoc{
			{Name: "pos.discount", Description: "Apply discounts", Aliases: []string{"discount", "markdown"}},
		},
		Groups: []GroupDoc{
			{Name: "floor", Permissions: []string{"pos.discount"}, Parents: []string{"staff"}},
		},
		Users: []UserDoc{{Username: "alice", Password: "pw"}},
	}
	actual := &State{
		Permissions: []PermissionDoc{
			// Same alias set in a different order.
			{Name: "POS.Discount", Description: "Apply discounts", Aliases: []string{"markdown", "discount"}},
		},
		Groups: []GroupDoc{
			{Name: "floor", Permissions: []string{"pos.discount"}, Parents: []string{"staff"}},
		},
		Users: []UserDoc{{Username: "ALICE"}},
	}

	plan := Diff(desired, actual)
	assert.False(t, plan.HasChanges())
	assert.Empty(t, plan.Actions)
	assert.Empty(t, plan.Errors)
}

func TestDiff_PermissionFieldChanges(t *testing.T) {
	desired := PermissionDoc{
		Name:        "pos.discount",
		Description: "Apply discounts",
		Aliases:     []string{"discount"},
		Default:     true,
	}

	tests := []struct {
		name        string
		actual      PermissionDoc
		wantChanges []string
	}{
		{
			name:        "description changed",
			actual:      PermissionDoc{Name: "pos.discount", Description: "old", Aliases: []string{"discount"}, Default: true},
			wantChanges: []string{"description"},
		},
		{
			name:        "default changed",
			actual:      PermissionDoc{Name: "pos.discount", Description: "Apply discounts", Aliases: []string{"discount"}},
			wantChanges: []string{"default"},
		},
		{
			name:        "aliases changed",
			actual:      PermissionDoc{Name: "pos.discount", Description: "Apply discounts", Default: true},
			wantChanges: []string{"aliases"},
		},
		{
			name:        "everything changed",
			actual:      PermissionDoc{Name: "pos.discount"},
			wantChanges: []string{"description", "default", "aliases"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Diff(
				&State{Permissions: []PermissionDoc{desired}},
				&State{Permissions: []PermissionDoc{tt.actual}},
			)
			require.Len(t, plan.Actions, 1)
			assert.Equal(t, OpUpdate, plan.Actions[0].Op)
			assert.Equal(t, "pos.discount", plan.Actions[0].Name)
			assert.Equal(t, tt.wantChanges, plan.Actions[0].Changes)
		})
	}
}

func TestDiff_GroupGrantsCompareByCanonicalName(t *testing.T) {
	// The tree grants via the alias, the server reports the canonical
	// name. Both resolve to the same permission, so nothing changed.
	desired := &State{
		Permissions: []PermissionDoc{
			{Name: "pos.discount", Aliases: []string{"discount"}},
		},
		Groups: []GroupDoc{
			{Name: "floor", Permissions: []string{"discount"}},
		},
	}
	actual := &State{
		Permissions: []PermissionDoc{
			{Name: "pos.discount", Aliases: []string{"discount"}},
		},
		Groups: []GroupDoc{
			{Name: "floor", Permissions: []string{"pos.discount"}},
		},
	}

	plan := Diff(desired, actual)
	assert.False(t, plan.HasChanges())
}

func TestDiff_GroupParentChanges(t *testing.T) {
	desired := &State{
		Groups: []GroupDoc{{Name: "floor", Parents: []string{"staff", "managers"}}},
	}
	actual := &State{
		Groups: []GroupDoc{{Name: "floor", Parents: []string{"staff"}}},
	}

	plan := Diff(desired, actual)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, OpUpdate, plan.Actions[0].Op)
	assert.Equal(t, KindGroup, plan.Actions[0].Kind)
	assert.Equal(t, []string{"parents"}, plan.Actions[0].Changes)
}

func TestDiff_ExistingUsersLeftAlone(t *testing.T) {
	desired := &State{
		Users: []UserDoc{{Username: "alice", Password: "pw", Email: "alice@new.example"}},
	}
	actual := &State{
		Users: []UserDoc{{Username: "alice", Email: "alice@old.example"}},
	}

	plan := Diff(desired, actual)
	assert.False(t, plan.HasChanges())
	assert.Empty(t, plan.Errors)
}

func TestDiff_UnappliableUsers(t *testing.T) {
	desired := &State{
		Users: []UserDoc{
			{Username: "legacy", PasswordHash: "$2a$10$hash"},
			{Username: "ghost"},
		},
	}

	plan := Diff(desired, &State{})
	assert.False(t, plan.HasChanges())
	require.Len(t, plan.Errors, 2)

	assert.Equal(t, KindUser, plan.Errors[0].Kind)
	assert.Equal(t, "legacy", plan.Errors[0].Name)
	assert.Contains(t, plan.Errors[0].Message, "password_hash")

	assert.Equal(t, "ghost", plan.Errors[1].Name)
	assert.Contains(t, plan.Errors[1].Message, "declares no password")
}

func TestDiff_MixedCreateAndUpdate(t *testing.T) {
	desired := &State{
		Permissions: []PermissionDoc{{Name: "pos.discount", Description: "new text"}},
		Groups:      []GroupDoc{{Name: "floor"}},
	}
	actual := &State{
		Permissions: []PermissionDoc{{Name: "pos.discount", Description: "old text"}},
	}

	plan := Diff(desired, actual)
	require.Len(t, plan.Actions, 2)

	creates, updates := plan.Summary()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
}

func TestFormatText_NoChanges(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, &Plan{}, true)
	assert.Equal(t, "No changes. The directory matches the declared state.\n", buf.String())
}

func TestFormatText_ActionsAndSummary(t *testing.T) {
	plan := &Plan{
		Actions: []Action{
			{Op: OpCreate, Kind: KindPermission, Name: "reports.view"},
			{Op: OpUpdate, Kind: KindGroup, Name: "floor", Changes: []string{"description", "permissions"}},
		},
		Errors: []PlanError{
			{Kind: KindUser, Name: "legacy", Message: "declares password_hash; the registration API only accepts plaintext passwords, seed it server-side instead"},
		},
	}

	var buf bytes.Buffer
	FormatText(&buf, plan, true)
	out := buf.String()

	assert.Contains(t, out, `  ! user "legacy" skipped: declares password_hash`)
	assert.Contains(t, out, `  + permission "reports.view" will be created`)
	assert.Contains(t, out, `  ~ group "floor" will be updated (description, permissions)`)
	assert.Contains(t, out, "Plan: 1 to create, 1 to update.")
	assert.NotContains(t, out, "\x1b[", "noColor must strip ANSI codes")
}

func TestFormatText_OnlySkippedResources(t *testing.T) {
	plan := &Plan{
		Errors: []PlanError{{Kind: KindUser, Name: "legacy", Message: "declares no password"}},
	}

	var buf bytes.Buffer
	FormatText(&buf, plan, true)
	out := buf.String()

	assert.Contains(t, out, `! user "legacy" skipped`)
	assert.Contains(t, out, "No applicable changes.")
	assert.NotContains(t, out, "No changes. The directory matches the declared state.")
}

func TestFormatText_Color(t *testing.T) {
	plan := &Plan{
		Actions: []Action{{Op: OpCreate, Kind: KindPermission, Name: "reports.view"}},
	}

	var buf bytes.Buffer
	FormatText(&buf, plan, false)
	assert.Contains(t, buf.String(), "\x1b[32m")
	assert.Contains(t, buf.String(), "\x1b[0m")
}

func TestFormatJSON(t *testing.T) {
	plan := &Plan{
		Actions: []Action{
			{Op: OpCreate, Kind: KindPermission, Name: "reports.view"},
			{Op: OpUpdate, Kind: KindGroup, Name: "floor", Changes: []string{"parents"}},
		},
		Errors: []PlanError{
			{Kind: KindUser, Name: "legacy", Message: "declares no password; the registration API requires one, seed it server-side instead"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, plan))

	assert.JSONEq(t, `{
		"actions": [
			{"operation": "create", "kind": "permission", "name": "reports.view"},
			{"operation": "update", "kind": "group", "name": "floor", "changes": ["parents"]}
		],
		"errors": [
			{"kind": "user", "name": "legacy", "message": "declares no password; the registration API requires one, seed it server-side instead"}
		],
		"creates": 1,
		"updates": 1
	}`, buf.String())
}

func TestFormatJSON_EmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, &Plan{}))
	assert.JSONEq(t, `{"actions": [], "creates": 0, "updates": 0}`, buf.String())
}
