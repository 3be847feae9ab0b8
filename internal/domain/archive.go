package domain

import "time"

// CredentialType identifies the type of archive storage credential.
type CredentialType string

// Supported credential types for snapshot archival.
const (
	CredentialTypeS3    CredentialType = "S3"
	CredentialTypeAzure CredentialType = "AZURE"
	CredentialTypeGCS   CredentialType = "GCS"
)

// ArchiveCredential holds the cloud storage credential used for directory
// snapshot archival.
type ArchiveCredential struct {
	CredentialType CredentialType

	// S3 fields
	KeyID    string
	Secret   string
	Endpoint string
	Region   string
	Bucket   string
	URLStyle string // "path" or "vhost"

	// Azure fields
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string

	// GCS fields
	GCSKeyFilePath string
	GCSBucket      string
}

// Validate checks that the credential carries the fields its type needs.
func (c ArchiveCredential) Validate() error {
	switch c.CredentialType {
	case CredentialTypeS3:
		if c.KeyID == "" {
			return ErrValidation("key_id is required for S3 credentials")
		}
		if c.Secret == "" {
			return ErrValidation("secret is required for S3 credentials")
		}
		if c.Region == "" {
			return ErrValidation("region is required for S3 credentials")
		}
		if c.Bucket == "" {
			return ErrValidation("bucket is required for S3 credentials")
		}
	case CredentialTypeAzure:
		if c.AzureAccountName == "" {
			return ErrValidation("azure_account_name is required for Azure credentials")
		}
		if c.AzureAccountKey == "" {
			return ErrValidation("azure_account_key is required for Azure credentials")
		}
		if c.AzureContainer == "" {
			return ErrValidation("azure_container is required for Azure credentials")
		}
	case CredentialTypeGCS:
		if c.GCSKeyFilePath == "" {
			return ErrValidation("gcs_key_file_path is required for GCS credentials")
		}
		if c.GCSBucket == "" {
			return ErrValidation("gcs_bucket is required for GCS credentials")
		}
	default:
		return ErrValidation("unsupported credential type %q; supported: S3, AZURE, GCS", string(c.CredentialType))
	}
	return nil
}

// SnapshotPermission is the export form of a permission.
type SnapshotPermission struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	IsDefault   bool     `json:"is_default,omitempty"`
}

// SnapshotGroup is the export form of a group.
type SnapshotGroup struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	IsDefault   bool     `json:"is_default,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Parents     []string `json:"parents,omitempty"`
}

// SnapshotUser is the export form of a user. Credential digests are
// never exported.
type SnapshotUser struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Active         bool       `json:"active"`
	Locked         bool       `json:"locked"`
	FailedAttempts int        `json:"failed_attempts,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	Groups         []string   `json:"groups,omitempty"`
	Permissions    []string   `json:"permissions,omitempty"`
}

// DirectorySnapshot is a point-in-time JSON export of the whole directory.
type DirectorySnapshot struct {
	TakenAt     time.Time            `json:"taken_at"`
	Permissions []SnapshotPermission `json:"permissions"`
	Groups      []SnapshotGroup      `json:"groups"`
	Users       []SnapshotUser       `json:"users"`
}
