package inbox

import (
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
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tally/internal/logging"
	"tally/internal/records"
)

const sidecarSuffix = ".meta.toml"

// Loader produces source records from an inbox directory.
type Loader struct {
	dir    string
	exts   map[string]struct{}
	logger *slog.Logger
}

// NewLoader constructs a Loader for dir, admitting only the given file
// extensions (lowercase, dot-prefixed).
func NewLoader(dir string, extensions []string, logger *slog.Logger) *Loader {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Loader{
		dir:    dir,
		exts:   exts,
		logger: logging.NewComponentLogger(logger, "inbox"),
	}
}

// sidecar mirrors the TOML metadata the mail gateway writes next to each
// delivered file.
type sidecar struct {
	Sender     string `toml:"sender"`
	SourceID   string `toml:"source_id"`
	ReceivedAt string `toml:"received_at"`
}

// Load walks the inbox and returns one record per candidate file. Records for
// files whose delivery time cannot be established keep a zero ReceivedAt so
// the engine reports them instead of misclassifying them.
func (l *Loader) Load(ctx context.Context) ([]records.Record, error) {
	var recs []records.Record

	err := filepath.WalkDir(l.dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if strings.HasSuffix(name, sidecarSuffix) {
			return nil
		}
		if _, ok := l.exts[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}

		rec, err := l.loadFile(path, entry)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// A missing inbox means an empty snapshot, not a failed run.
			l.logger.Warn("inbox directory missing; treating snapshot as empty",
				logging.String("dir", l.dir),
				logging.String(logging.FieldEventType, "inbox_missing"),
				logging.String(logging.FieldErrorHint, "check the mail gateway mount"),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("walk inbox: %w", err)
	}

	l.logger.Debug("inbox snapshot loaded", logging.Int(logging.FieldCount, len(recs)))
	return recs, nil
}

func (l *Loader) loadFile(path string, entry fs.DirEntry) (records.Record, error) {
	info, err := entry.Info()
	if err != nil {
		return records.Record{}, fmt.Errorf("stat %s: %w", path, err)
	}

	hash, err := hashFile(path)
	if err != nil {
		return records.Record{}, fmt.Errorf("hash %s: %w", path, err)
	}

	relPath, err := filepath.Rel(l.dir, path)
	if err != nil {
		relPath = entry.Name()
	}

	rec := records.Record{
		Hash:       hash,
		Filename:   entry.Name(),
		ReceivedAt: info.ModTime().UTC(),
		SourceID:   relPath,
		Path:       path,
		Size:       info.Size(),
	}
	l.applySidecar(path, &rec)
	return rec, nil
}

// applySidecar merges gateway metadata into the record when a sidecar file
// exists. A malformed sidecar timestamp clears ReceivedAt rather than keeping
// the filesystem time: the gateway said the mtime is not the delivery time,
// and a guessed value could skew earliest/latest selection.
func (l *Loader) applySidecar(path string, rec *records.Record) {
	data, err := os.ReadFile(path + sidecarSuffix)
	if err != nil {
		return
	}

	var meta sidecar
	if err := toml.Unmarshal(data, &meta); err != nil {
		l.logger.Warn("sidecar metadata unreadable",
			logging.String(logging.FieldFilename, rec.Filename),
			logging.Error(err),
			logging.String(logging.FieldEventType, "sidecar_invalid"),
			logging.String(logging.FieldErrorHint, "fix or remove the .meta.toml file"),
		)
		return
	}

	if meta.Sender != "" {
		rec.Sender = meta.Sender
	}
	if meta.SourceID != "" {
		rec.SourceID = meta.SourceID
	}
	if meta.ReceivedAt != "" {
		parsed, err := time.Parse(time.RFC3339, meta.ReceivedAt)
		if err != nil {
			l.logger.Warn("sidecar received_at unparsable",
				logging.String(logging.FieldFilename, rec.Filename),
				logging.String("received_at", meta.ReceivedAt),
				logging.String(logging.FieldEventType, "sidecar_invalid"),
				logging.String(logging.FieldErrorHint, "use RFC 3339 timestamps in sidecar files"),
			)
			rec.ReceivedAt = time.Time{}
			return
		}
		rec.ReceivedAt = parsed.UTC()
	}
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
