// Package enumerator implements the source enumerator (component A):
// a two-pass producer that walks input_root and, optionally, scans a
// SQLite-format index database, yielding SourceLocator values onto a
// channel. Per-entry failures are reported through the ErrorSink and
// never abort the run.
package enumerator

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/tphakala/raextract/internal/errors"
	"github.com/tphakala/raextract/internal/rtypes"
)

// indexRow mirrors one row of the index database's files table, read
// through gorm's Raw query rather than a mapped model since the
// schema is foreign and we only ever read two columns.
type indexRow struct {
	ID      []byte
	Content []byte
}

// minPayloadBytes mirrors §4.A: loose files smaller than this are
// considered too small to carry an audio payload and are skipped.
const minPayloadBytes = 10

// ErrorSink receives per-entry enumeration failures, and the byte size
// of every enumerated loose file, so the orchestrator can fold both
// into the run's counters without aborting the walk.
type ErrorSink interface {
	IncrErrors()
	AddInputBytes(int64)
}

// queueMultiplier is §4.G's backpressure bound: the enumerator blocks
// once 8×workers locators are buffered and unconsumed.
const queueMultiplier = 8

// Enumerate starts the filesystem walk and, if configured, the index
// database pass, and returns a channel of locators. The channel is
// closed once both passes finish or ctx is cancelled. Its capacity is
// 8×cfg.Workers, so the enumerator blocks (applying backpressure)
// once that many locators are buffered and unconsumed.
func Enumerate(ctx context.Context, cfg *rtypes.RunConfig, sink ErrorSink, log *slog.Logger) <-chan rtypes.SourceLocator {
	queueCap := queueMultiplier * cfg.Workers
	if queueCap < 1 {
		queueCap = queueMultiplier
	}
	out := make(chan rtypes.SourceLocator, queueCap)

	go func() {
		defer close(out)

		walkFilesystem(ctx, cfg, sink, log, out)
		if ctx.Err() != nil {
			return
		}

		if cfg.ScanIndexDB {
			scanIndexDB(ctx, cfg, sink, log, out)
		}
	}()

	return out
}

func excludedByOutputRoot(path, outputRoot string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	absOutput, err := filepath.Abs(outputRoot)
	if err != nil {
		absOutput = outputRoot
	}
	rel, err := filepath.Rel(absOutput, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && rel != "")
}

func excludedByGlob(path string, globs []string) bool {
	base := filepath.Base(path)
	for _, pattern := range globs {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

func walkFilesystem(ctx context.Context, cfg *rtypes.RunConfig, sink ErrorSink, log *slog.Logger, out chan<- rtypes.SourceLocator) {
	walkErr := filepath.Walk(cfg.InputRoot, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			sink.IncrErrors()
			log.Warn("enumerate: walk error, skipping", "path", path, "error", err)
			return nil //nolint:nilerr // per-entry errors never abort the walk
		}

		if info.IsDir() {
			if excludedByOutputRoot(path, cfg.OutputRoot) {
				return filepath.SkipDir
			}
			return nil
		}

		if excludedByOutputRoot(path, cfg.OutputRoot) {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".ogg") {
			return nil
		}
		if info.Size() < minPayloadBytes {
			return nil
		}
		if excludedByGlob(path, cfg.PathExcludeGlobs) {
			return nil
		}

		sink.AddInputBytes(info.Size())

		select {
		case out <- rtypes.NewDiskLocator(path):
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if walkErr != nil && walkErr != context.Canceled && walkErr != context.DeadlineExceeded {
		sink.IncrErrors()
		log.Error("enumerate: filesystem walk aborted", "error",
			apperrors.Newf("walking %s: %w", cfg.InputRoot, walkErr).
				Component("enumerator").
				Category(apperrors.CategoryEnumerate).
				Build())
	}
}

// indexDBPath is the conventional location of the SQLite-format index
// relative to input_root, per §3's "GLOSSARY: Index database" entry.
const indexDBPath = "index.db"

func scanIndexDB(ctx context.Context, cfg *rtypes.RunConfig, sink ErrorSink, log *slog.Logger, out chan<- rtypes.SourceLocator) {
	dbPath := filepath.Join(cfg.InputRoot, indexDBPath)
	if _, err := os.Stat(dbPath); err != nil {
		log.Debug("enumerate: no index database present, skipping pass", "path", dbPath)
		return
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", dbPath)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: false,
	})
	if err != nil {
		sink.IncrErrors()
		log.Error("enumerate: opening index database failed", "error",
			apperrors.Newf("opening index db: %w", err).
				Component("enumerator").
				Category(apperrors.CategoryEnumerate).
				FileContext(dbPath, 0).
				Build())
		return
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	var rows []indexRow
	if err := db.WithContext(ctx).Raw("SELECT id, content FROM files").Scan(&rows).Error; err != nil {
		sink.IncrErrors()
		log.Error("enumerate: querying index database failed", "error",
			apperrors.Newf("querying files table: %w", err).
				Component("enumerator").
				Category(apperrors.CategoryEnumerate).
				Build())
		return
	}

	if err := os.MkdirAll(filepath.Join(cfg.OutputRoot, "db_temp"), 0o755); err != nil {
		sink.IncrErrors()
		log.Error("enumerate: creating db_temp directory failed", "error", err)
		return
	}

	for _, row := range rows {
		select {
		case <-ctx.Done():
			return
		default:
		}

		idHex := hex.EncodeToString(row.ID)

		if row.Content != nil {
			tempPath := filepath.Join(cfg.OutputRoot, "db_temp", idHex)
			if err := os.WriteFile(tempPath, row.Content, 0o644); err != nil { //nolint:gosec // matches teacher's accepted mode
				sink.IncrErrors()
				log.Warn("enumerate: materializing index row failed, skipping", "id_hex", idHex, "error", err)
				continue
			}
			select {
			case out <- rtypes.NewIndexRowLocator(idHex, tempPath):
			case <-ctx.Done():
				return
			}
			continue
		}

		if len(idHex) < 2 {
			sink.IncrErrors()
			log.Warn("enumerate: index row has an empty id, skipping")
			continue
		}
		resolvedPath := filepath.Join(cfg.InputRoot, idHex[:2], idHex)
		if _, err := os.Stat(resolvedPath); err != nil {
			continue
		}
		select {
		case out <- rtypes.NewIndexRowLocator(idHex, resolvedPath):
		case <-ctx.Done():
			return
		}
	}
}
