package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tally/internal/logging"
	"tally/internal/records"
)

// Store reads and writes the archive directory tree. Incoming copies are
// written to the staging directory first and only moved into the tree after
// verification, so a crashed run never leaves a partial file in the archive.
type Store struct {
	root    string
	staging string
	logger  *slog.Logger
}

// NewStore constructs a Store rooted at dir, staging copies in stagingDir.
func NewStore(dir, stagingDir string, logger *slog.Logger) *Store {
	return &Store{
		root:    dir,
		staging: stagingDir,
		logger:  logging.NewComponentLogger(logger, "archive"),
	}
}

// Load walks the archive tree and returns one record per file, hashed by
// content. An absent archive yields an empty snapshot.
func (s *Store) Load(ctx context.Context) ([]records.ArchiveRecord, error) {
	var recs []records.ArchiveRecord

	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		hash, err := hashFile(path)
		if err != nil {
			return fmt.Errorf("hash %s: %w", path, err)
		}
		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			relPath = entry.Name()
		}

		recs = append(recs, records.ArchiveRecord{
			Hash:         hash,
			Filename:     entry.Name(),
			RelativePath: relPath,
			ModifiedAt:   info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("walk archive: %w", err)
	}

	s.logger.Debug("archive snapshot loaded", logging.Int(logging.FieldCount, len(recs)))
	return recs, nil
}

// Archive copies the invoice file into the year-partitioned archive tree with
// integrity verification and returns the archive-relative path. Name
// collisions get a numeric suffix; content is never overwritten.
func (s *Store) Archive(ctx context.Context, inv records.Invoice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	year := inv.ReceivedAt.UTC().Format("2006")
	if inv.ReceivedAt.IsZero() {
		year = time.Now().UTC().Format("2006")
	}
	dir := filepath.Join(s.root, year)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive directory %q: %w", dir, err)
	}

	dst, err := availablePath(dir, inv.Filename)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.staging, 0o755); err != nil {
		return "", fmt.Errorf("create staging directory %q: %w", s.staging, err)
	}
	staged := filepath.Join(s.staging, filepath.Base(dst)+".partial")
	if err := copyVerified(inv.Path, staged, inv.Hash); err != nil {
		return "", fmt.Errorf("archive %s: %w", inv.Filename, err)
	}
	if err := moveFile(staged, dst); err != nil {
		_ = os.Remove(staged)
		return "", fmt.Errorf("archive %s: %w", inv.Filename, err)
	}

	rel, err := filepath.Rel(s.root, dst)
	if err != nil {
		rel = filepath.Base(dst)
	}
	s.logger.Info("invoice archived",
		logging.String(logging.FieldHash, inv.Hash),
		logging.String(logging.FieldFilename, inv.Filename),
		logging.String("path", rel),
	)
	return rel, nil
}

func availablePath(dir, filename string) (string, error) {
	candidate := filepath.Join(dir, filename)
	ext := filepath.Ext(filename)
	stem := filename[:len(filename)-len(ext)]
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, stem+"-"+strconv.Itoa(i)+ext)
	}
}

// copyVerified streams src to dst while hashing both ends, then checks the
// result against the expected content hash. The destination is removed on any
// mismatch.
func copyVerified(src, dst, expectedHash string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	if expectedHash != "" {
		if got := hex.EncodeToString(srcHasher.Sum(nil)); got != expectedHash {
			_ = os.Remove(dst)
			return fmt.Errorf("content hash changed since reconciliation: got %s, expected %s", got, expectedHash)
		}
	}
	return nil
}

// moveFile renames when possible and falls back to copy-and-remove for
// cross-device moves.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
