package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"posgate/internal/declarative"
)

// planAgainstServer loads a seed tree, validates it, and diffs it
// against the directory content the server reports right now.
func planAgainstServer(client *Client, seedDir string) (*declarative.Plan, error) {
	desired, err := declarative.Load(seedDir)
	if err != nil {
		return nil, fmt.Errorf("load seeds: %w", err)
	}
	if errs := declarative.Validate(desired); len(errs) > 0 {
		return nil, reportSeedErrors(errs)
	}
	actual, err := ReadState(client)
	if err != nil {
		return nil, fmt.Errorf("read server state: %w", err)
	}
	return declarative.Diff(desired, actual), nil
}

// reportSeedErrors lists seed validation errors on stderr and converts
// them into a silent exit status, since the listing already says it all.
func reportSeedErrors(errs []declarative.ValidationError) error {
	fmt.Fprintf(os.Stderr, "Seed tree has %d validation error(s):\n", len(errs))
	for _, ve := range errs {
		fmt.Fprintf(os.Stderr, "  - %s\n", ve)
	}
	return &exitError{code: 1}
}

// ReadState fetches the server's directory content expressed as seed
// documents, for diffing against a local tree.
func ReadState(client *Client) (*declarative.State, error) {
	state := &declarative.State{}

	var perms []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Aliases     []string `json:"aliases"`
		IsDefault   bool     `json:"is_default"`
	}
	if err := client.doJSON(http.MethodGet, "/permissions", nil, nil, &perms); err != nil {
		return nil, fmt.Errorf("read permissions: %w", err)
	}
	for _, p := range perms {
		state.Permissions = append(state.Permissions, declarative.PermissionDoc{
			Name:        p.Name,
			Description: p.Description,
			Aliases:     p.Aliases,
			Default:     p.IsDefault,
		})
	}

	var groups []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		IsDefault   bool     `json:"is_default"`
		Permissions []string `json:"permissions"`
		Parents     []string `json:"parents"`
	}
	if err := client.doJSON(http.MethodGet, "/groups", nil, nil, &groups); err != nil {
		return nil, fmt.Errorf("read groups: %w", err)
	}
	for _, g := range groups {
		state.Groups = append(state.Groups, declarative.GroupDoc{
			Name:        g.Name,
			Description: g.Description,
			Default:     g.IsDefault,
			Permissions: g.Permissions,
			Parents:     g.Parents,
		})
	}

	items, err := FetchAllPages(client, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	var users []struct {
		Username    string   `json:"username"`
		FirstName   string   `json:"first_name"`
		LastName    string   `json:"last_name"`
		Email       string   `json:"email"`
		Groups      []string `json:"groups"`
		Permissions []string `json:"permissions"`
	}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	for _, u := range users {
		state.Users = append(state.Users, declarative.UserDoc{
			Username:    u.Username,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Email:       u.Email,
			Groups:      u.Groups,
			Permissions: u.Permissions,
		})
	}

	return state, nil
}

// applyAction submits one planned registration through the same
// endpoints the interactive commands use. Creates and updates are both
// plain registrations; the registries upsert wholesale.
func applyAction(client *Client, action declarative.Action) error {
	switch doc := action.Desired.(type) {
	case declarative.PermissionDoc:
		return client.doJSON(http.MethodPost, "/permissions", nil, map[string]interface{}{
			"name":        doc.Name,
			"description": doc.Description,
			"aliases":     doc.Aliases,
			"is_default":  doc.Default,
		}, nil)
	case declarative.GroupDoc:
		return client.doJSON(http.MethodPost, "/groups", nil, map[string]interface{}{
			"name":        doc.Name,
			"description": doc.Description,
			"is_default":  doc.Default,
			"permissions": doc.Permissions,
			"parents":     doc.Parents,
		}, nil)
	case declarative.UserDoc:
		return client.doJSON(http.MethodPost, "/users", nil, map[string]interface{}{
			"username":    doc.Username,
			"password":    doc.Password,
			"first_name":  doc.FirstName,
			"last_name":   doc.LastName,
			"email":       doc.Email,
			"groups":      doc.Groups,
			"permissions": doc.Permissions,
		}, nil)
	default:
		return fmt.Errorf("unsupported action document %T", action.Desired)
	}
}
