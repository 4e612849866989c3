package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hamza-spc/CountryCompare/internal/database"
)

// Uploader pushes backup archives to remote storage. Implemented by
// S3Client.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader) error
}

// BackupService snapshots the sqlite databases into a tar.gz archive and
// uploads it. Snapshots use VACUUM INTO so the copy is consistent while
// the live database keeps serving writes.
type BackupService struct {
	databases []*database.DB
	uploader  Uploader
	dataDir   string
	timeout   time.Duration
	log       zerolog.Logger
}

// BackupMetadata describes the contents of a backup archive
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes a single database file in the archive
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// NewBackupService creates a backup service
func NewBackupService(databases []*database.DB, uploader Uploader, dataDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		uploader:  uploader,
		dataDir:   dataDir,
		timeout:   10 * time.Minute,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// Name returns the job name
func (s *BackupService) Name() string {
	return "backup_databases"
}

// Run creates and uploads a backup. Satisfies the scheduler job contract.
func (s *BackupService) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.CreateAndUploadBackup(ctx)
}

// CreateAndUploadBackup snapshots every database, archives the snapshots
// with a metadata manifest, and uploads the archive.
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) error {
	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	stagingDir := filepath.Join(s.dataDir, "backup-staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := BackupMetadata{
		Timestamp: time.Now().UTC(),
		Databases: make([]DatabaseMetadata, 0, len(s.databases)),
	}

	var files []string
	for _, db := range s.databases {
		filename := db.Name() + ".db"
		snapshotPath := filepath.Join(stagingDir, filename)

		if err := s.snapshot(ctx, db, snapshotPath); err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", db.Name(), err)
		}

		info, err := os.Stat(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s snapshot: %w", db.Name(), err)
		}

		checksum, err := fileChecksum(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to checksum %s snapshot: %w", db.Name(), err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      db.Name(),
			Filename:  filename,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		files = append(files, snapshotPath)
	}

	metadataPath := filepath.Join(stagingDir, "backup-metadata.json")
	if err := writeMetadata(metadataPath, metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataPath)

	archiveName := fmt.Sprintf("countrycompare-backup-%s.tar.gz", time.Now().Format("2006-01-02-150405"))
	archivePath := filepath.Join(stagingDir, archiveName)
	if err := createArchive(archivePath, files); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	if err := s.uploader.Upload(ctx, archiveName, archive); err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int("databases", len(s.databases)).
		Msg("Backup completed")

	return nil
}

// snapshot copies a live database into path via VACUUM INTO.
func (s *BackupService) snapshot(ctx context.Context, db *database.DB, path string) error {
	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	_, err := db.Conn().ExecContext(ctx, "VACUUM INTO ?", path)
	return err
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func createArchive(archivePath string, files []string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	defer gz.Close()

	tw := tar.NewWriter(gz)
	defer tw.Close()

	for _, file := range files {
		if err := addToArchive(tw, file); err != nil {
			return err
		}
	}
	return nil
}

func addToArchive(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}
