// Package archive exports point-in-time directory snapshots as JSON
// documents to object storage and hands back a presigned download URL.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"posgate/internal/domain"
)

// SnapshotSource produces the current directory snapshot. Implemented by
// directory.Service.
type SnapshotSource interface {
	Snapshot() domain.DirectorySnapshot
}

// Result describes one exported snapshot.
type Result struct {
	Path        string    `json:"path"`
	URL         string    `json:"url,omitempty"`
	TakenAt     time.Time `json:"taken_at"`
	Permissions int       `json:"permissions"`
	Groups      int       `json:"groups"`
	Users       int       `json:"users"`
	SizeBytes   int       `json:"size_bytes"`
}

// Service exports directory snapshots.
type Service struct {
	source   SnapshotSource
	uploader Uploader
	audit    domain.AuditRepository
	logger   *slog.Logger
	prefix   string
	expiry   time.Duration
}

// NewService creates a new archive Service. prefix is prepended to object
// keys; expiry bounds the lifetime of returned download URLs.
func NewService(
	source SnapshotSource,
	uploader Uploader,
	audit domain.AuditRepository,
	logger *slog.Logger,
	prefix string,
	expiry time.Duration,
) *Service {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Service{
		source:   source,
		uploader: uploader,
		audit:    audit,
		logger:   logger,
		prefix:   prefix,
		expiry:   expiry,
	}
}

// Export takes a snapshot, uploads it and returns where it landed along
// with a presigned download URL. A failed presign is logged but does not
// fail the export; the document is already durable at that point.
func (s *Service) Export(ctx context.Context) (*Result, error) {
	snap := s.source.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := path.Join(s.prefix, snap.TakenAt.Format("2006/01"),
		fmt.Sprintf("directory-%s.json", snap.TakenAt.Format("20060102T150405Z")))
	storagePath, err := s.uploader.Upload(ctx, key, data)
	if err != nil {
		s.insertAudit(ctx, "EXPORT_SNAPSHOT", key, "ERROR", err)
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	url, err := s.uploader.PresignGet(ctx, storagePath, s.expiry)
	if err != nil {
		s.logger.Warn("presign snapshot URL failed", "path", storagePath, "error", err)
		url = ""
	}

	s.logger.Info("directory snapshot exported",
		"path", storagePath,
		"users", len(snap.Users),
		"groups", len(snap.Groups),
		"permissions", len(snap.Permissions),
		"bytes", len(data))
	s.insertAudit(ctx, "EXPORT_SNAPSHOT", storagePath, "ALLOWED", nil)

	return &Result{
		Path:        storagePath,
		URL:         url,
		TakenAt:     snap.TakenAt,
		Permissions: len(snap.Permissions),
		Groups:      len(snap.Groups),
		Users:       len(snap.Users),
		SizeBytes:   len(data),
	}, nil
}

func (s *Service) insertAudit(ctx context.Context, action, target, status string, cause error) {
	entry := &domain.AuditEntry{
		ID:            domain.NewID(),
		PrincipalName: callerName(ctx),
		Action:        action,
		Target:        &target,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	if cause != nil {
		msg := cause.Error()
		entry.ErrorMessage = &msg
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("audit insert failed", "action", action, "error", err)
	}
}

func callerName(ctx context.Context) string {
	p, _ := domain.PrincipalFromContext(ctx)
	if p.Name == "" {
		return "scheduler"
	}
	return p.Name
}
