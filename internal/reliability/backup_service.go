package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/modules/projects"
	"github.com/aristath/stockscorer/internal/version"
)

const (
	backupFilePrefix   = "stockscorer-backup-"
	backupFileSuffix   = ".tar.gz"
	backupTimeLayout   = "2006-01-02-150405"
	projectsFileName   = "projects.json"
	metadataFileName   = "backup-metadata.json"
	metadataFormat     = "1.0.0"
	minBackupsToKeep   = 3
	snapshotIDShortLen = 8
)

// ErrBackupsDisabled is returned by handlers when no object store is configured
var ErrBackupsDisabled = errors.New("remote backups are disabled")

// ProjectSource lists the documents to snapshot
type ProjectSource interface {
	List(ctx context.Context) ([]projects.Document, error)
}

// BackupService snapshots all project documents to object storage
type BackupService struct {
	store    ObjectStore
	projects ProjectSource
	prefix   string
	now      func() time.Time
	log      zerolog.Logger
}

// BackupMetadata is written next to the documents inside every archive
type BackupMetadata struct {
	SnapshotID   string         `json:"snapshot_id"`
	Timestamp    time.Time      `json:"timestamp"`
	Format       string         `json:"format"`
	AppVersion   string         `json:"app_version"`
	ProjectCount int            `json:"project_count"`
	Files        []FileMetadata `json:"files"`
}

// FileMetadata describes one file of the archive
type FileMetadata struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo represents a backup stored in the bucket
type BackupInfo struct {
	Key        string    `json:"key"`
	Filename   string    `json:"filename"`
	SnapshotID string    `json:"snapshot_id"`
	Timestamp  time.Time `json:"timestamp"`
	SizeBytes  int64     `json:"size_bytes"`
	AgeHours   int64     `json:"age_hours"`
}

// NewBackupService creates a new backup service
func NewBackupService(store ObjectStore, source ProjectSource, prefix string, log zerolog.Logger) *BackupService {
	return &BackupService{
		store:    store,
		projects: source,
		prefix:   strings.Trim(prefix, "/"),
		now:      time.Now,
		log:      log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUploadBackup archives every project document and uploads the archive
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) (*BackupInfo, error) {
	s.log.Info().Msg("Starting project backup")
	startTime := time.Now()

	docs, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	documents, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal projects: %w", err)
	}

	timestamp := s.now().UTC()
	snapshotID := uuid.NewString()
	metadata := BackupMetadata{
		SnapshotID:   snapshotID,
		Timestamp:    timestamp,
		Format:       metadataFormat,
		AppVersion:   version.Version,
		ProjectCount: len(docs),
		Files: []FileMetadata{{
			Name:      projectsFileName,
			SizeBytes: int64(len(documents)),
			Checksum:  checksum(documents),
		}},
	}

	metadataJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	archive, err := createArchive(timestamp, map[string][]byte{
		projectsFileName: documents,
		metadataFileName: metadataJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	filename := backupFilename(timestamp, snapshotID)
	key := s.objectKey(filename)
	size := int64(archive.Len())

	if err := s.store.Upload(ctx, key, archive, "application/gzip"); err != nil {
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("key", key).
		Int("projects", len(docs)).
		Int64("size_bytes", size).
		Msg("Project backup completed successfully")

	return &BackupInfo{
		Key:        key,
		Filename:   filename,
		SnapshotID: snapshotID[:snapshotIDShortLen],
		Timestamp:  timestamp,
		SizeBytes:  size,
	}, nil
}

// ListBackups lists every backup in the bucket, newest first
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, s.objectKey(backupFilePrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	now := s.now()

	for _, obj := range objects {
		filename := path.Base(obj.Key)
		timestamp, snapshotID, ok := parseBackupFilename(filename)
		if !ok {
			s.log.Warn().Str("key", obj.Key).Msg("Skipping unrecognised object in backup prefix")
			continue
		}

		backups = append(backups, BackupInfo{
			Key:        obj.Key,
			Filename:   filename,
			SnapshotID: snapshotID,
			Timestamp:  timestamp,
			SizeBytes:  obj.Size,
			AgeHours:   int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RotateOldBackups deletes backups older than the retention period.
// The newest minBackupsToKeep are kept regardless of age; retentionDays 0 keeps all.
func (s *BackupService) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= minBackupsToKeep {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, backup := range backups[minBackupsToKeep:] {
		if !backup.Timestamp.Before(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, backup.Key); err != nil {
			s.log.Error().Err(err).Str("key", backup.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")

	return deleted, nil
}

func (s *BackupService) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func backupFilename(t time.Time, snapshotID string) string {
	return fmt.Sprintf("%s%s-%s%s", backupFilePrefix, t.Format(backupTimeLayout), snapshotID[:snapshotIDShortLen], backupFileSuffix)
}

// parseBackupFilename reads stockscorer-backup-2026-01-08-143022-1a2b3c4d.tar.gz
func parseBackupFilename(filename string) (time.Time, string, bool) {
	if !strings.HasPrefix(filename, backupFilePrefix) || !strings.HasSuffix(filename, backupFileSuffix) {
		return time.Time{}, "", false
	}

	rest := strings.TrimSuffix(strings.TrimPrefix(filename, backupFilePrefix), backupFileSuffix)
	if len(rest) < len(backupTimeLayout) {
		return time.Time{}, "", false
	}

	timestamp, err := time.Parse(backupTimeLayout, rest[:len(backupTimeLayout)])
	if err != nil {
		return time.Time{}, "", false
	}

	return timestamp, strings.TrimPrefix(rest[len(backupTimeLayout):], "-"), true
}

func checksum(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// createArchive writes files into a tar.gz in name order
func createArchive(modTime time.Time, files map[string][]byte) (*bytes.Buffer, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, name := range names {
		data := files[name]
		header := &tar.Header{
			Name:    name,
			Size:    int64(len(data)),
			Mode:    0644,
			ModTime: modTime,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("failed to write header for %s: %w", name, err)
		}
		if _, err := tarWriter.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}

	return &buf, nil
}
