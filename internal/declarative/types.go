package declarative

// SupportedAPIVersion is the current API version for seed documents.
const SupportedAPIVersion = "posgate/v1"

// Known Kind strings used in seed documents.
const (
	KindNamePermission = "Permission"
	KindNameGroup      = "Group"
	KindNameUser       = "User"
)

// Document is the generic envelope parsed first to determine Kind.
type Document struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
}

// PermissionDoc declares a single permission.
type PermissionDoc struct {
	APIVersion  string   `yaml:"apiVersion"`
	Kind        string   `yaml:"kind"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty"`
	Default     bool     `yaml:"default,omitempty"`
}

// GroupDoc declares a single group. Permission names must be registered
// by the time the document is applied; parent names are weak references.
type GroupDoc struct {
	APIVersion  string   `yaml:"apiVersion"`
	Kind        string   `yaml:"kind"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Default     bool     `yaml:"default,omitempty"`
	Permissions []string `yaml:"permissions,omitempty"`
	Parents     []string `yaml:"parents,omitempty"`
}

// UserDoc declares a single user. Password and PasswordHash are mutually
// exclusive; a user with neither cannot log in with a password and is
// expected to authenticate with an API key instead.
type UserDoc struct {
	APIVersion   string   `yaml:"apiVersion"`
	Kind         string   `yaml:"kind"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password,omitempty"`
	PasswordHash string   `yaml:"password_hash,omitempty"`
	FirstName    string   `yaml:"first_name,omitempty"`
	LastName     string   `yaml:"last_name,omitempty"`
	Email        string   `yaml:"email,omitempty"`
	Groups       []string `yaml:"groups,omitempty"`
	Permissions  []string `yaml:"permissions,omitempty"`
}

// State is the desired directory content parsed from a seed tree.
// Apply order is permissions, then groups, then users, so grant names
// resolve by the time they are referenced.
type State struct {
	Permissions []PermissionDoc
	Groups      []GroupDoc
	Users       []UserDoc
}

// Empty reports whether the tree declared nothing.
func (s *State) Empty() bool {
	return len(s.Permissions) == 0 && len(s.Groups) == 0 && len(s.Users) == 0
}
