package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "posgate/internal/db"
	"posgate/internal/db/repository"
	"posgate/internal/domain"
)

type fakeUploader struct {
	uploadedKey  string
	uploadedData []byte
	failUpload   bool
	failPresign  bool
}

func (f *fakeUploader) Upload(_ context.Context, key string, data []byte) (string, error) {
	if f.failUpload {
		return "", errors.New("bucket unavailable")
	}
	f.uploadedKey = key
	f.uploadedData = data
	return "s3://archive/" + key, nil
}

func (f *fakeUploader) PresignGet(_ context.Context, path string, _ time.Duration) (string, error) {
	if f.failPresign {
		return "", errors.New("signer unavailable")
	}
	return "https://signed.example/" + path, nil
}

func (f *fakeUploader) Bucket() string { return "archive" }

type snapshotFunc func() domain.DirectorySnapshot

func (f snapshotFunc) Snapshot() domain.DirectorySnapshot { return f() }

func testSnapshot() domain.DirectorySnapshot {
	return domain.DirectorySnapshot{
		TakenAt: time.Date(2026, 8, 25, 10, 15, 0, 0, time.UTC),
		Permissions: []domain.SnapshotPermission{
			{Name: "pos.sale", Description: "Record sales"},
		},
		Groups: []domain.SnapshotGroup{
			{Name: "staff", Permissions: []string{"pos.sale"}},
		},
		Users: []domain.SnapshotUser{
			{ID: "u-1", Username: "alice", Active: true, Groups: []string{"staff"}},
		},
	}
}

func setupArchive(t *testing.T, up Uploader) (*Service, *repository.AuditRepo) {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	audit := repository.NewAuditRepo(writeDB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(snapshotFunc(testSnapshot), up, audit, logger, "snapshots", time.Hour)
	return svc, audit
}

func TestService_Export(t *testing.T) {
	up := &fakeUploader{}
	svc, audit := setupArchive(t, up)
	ctx := context.Background()

	res, err := svc.Export(ctx)
	require.NoError(t, err)

	assert.Equal(t, "snapshots/2026/08/directory-20260825T101500Z.json", up.uploadedKey)
	assert.Equal(t, "s3://archive/"+up.uploadedKey, res.Path)
	assert.True(t, strings.HasPrefix(res.URL, "https://signed.example/"))
	assert.Equal(t, 1, res.Permissions)
	assert.Equal(t, 1, res.Groups)
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, len(up.uploadedData), res.SizeBytes)

	// The document decodes back into the same snapshot.
	var snap domain.DirectorySnapshot
	require.NoError(t, json.Unmarshal(up.uploadedData, &snap))
	assert.Equal(t, testSnapshot(), snap)

	action := "EXPORT_SNAPSHOT"
	entries, total, err := audit.List(ctx, domain.AuditFilter{
		Action: &action, Page: domain.PageRequest{MaxResults: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "ALLOWED", entries[0].Status)
	assert.Equal(t, "scheduler", entries[0].PrincipalName)
}

func TestService_Export_UploadFailure(t *testing.T) {
	up := &fakeUploader{failUpload: true}
	svc, audit := setupArchive(t, up)
	ctx := context.Background()

	_, err := svc.Export(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")

	action := "EXPORT_SNAPSHOT"
	entries, _, err := audit.List(ctx, domain.AuditFilter{
		Action: &action, Page: domain.PageRequest{MaxResults: 10},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Status)
	require.NotNil(t, entries[0].ErrorMessage)
	assert.Contains(t, *entries[0].ErrorMessage, "bucket unavailable")
}

func TestService_Export_PresignFailureIsNotFatal(t *testing.T) {
	up := &fakeUploader{failPresign: true}
	svc, _ := setupArchive(t, up)

	res, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.URL)
	assert.NotEmpty(t, res.Path)
}

func TestService_Export_NoCredentialDigests(t *testing.T) {
	up := &fakeUploader{}
	svc, _ := setupArchive(t, up)

	_, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, string(up.uploadedData), "credential")
	assert.NotContains(t, string(up.uploadedData), "hash")
}
