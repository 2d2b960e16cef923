// Package writer implements component F: it two-phase writes a
// payload's bytes to a temp file, classifies it via the temp path,
// and renames it into the structured output tree under a
// collision-disambiguated final name.
package writer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tphakala/raextract/internal/classifier"
	"github.com/tphakala/raextract/internal/rtypes"
)

// Writer emits recognized payloads into <output_root>/Audio/<bucket>/.
type Writer struct {
	outputRoot string
	runTS      string
	classifier *classifier.Classifier
}

// New builds a Writer for one run. runTS is the pipeline start
// timestamp formatted YYYYMMDD_HHMMSS, shared by every temp and
// disambiguated target name in the run.
func New(outputRoot, runTS string, c *classifier.Classifier) *Writer {
	return &Writer{outputRoot: outputRoot, runTS: runTS, classifier: c}
}

// rand4 returns four random lowercase-alphanumeric characters, per
// §4.F's disambiguation suffix.
func rand4() string {
	return strings.ToLower(uuid.NewString()[:4])
}

// Emit implements §4.F's two-phase emission. It returns the absolute
// target path and true on success, or false if the payload could not
// be durably written (the temp file is always cleaned up in that case).
func (w *Writer) Emit(ctx context.Context, sourceBasename string, payload rtypes.Payload) (string, bool) {
	tempPath := filepath.Join(w.outputRoot, fmt.Sprintf("temp_%s_%s_%s.ogg", sourceBasename, w.runTS, rand4()))
	if !w.writeTemp(tempPath, payload.Bytes) {
		return "", false
	}

	bucket := w.classifier.BucketFor(ctx, payload, tempPath)
	targetDir := filepath.Join(w.outputRoot, "Audio", string(bucket))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		_ = os.Remove(tempPath)
		return "", false
	}

	targetPath := w.disambiguate(targetDir, sourceBasename)

	if err := renameOrCopy(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", false
	}
	return targetPath, true
}

func (w *Writer) writeTemp(tempPath string, data []byte) bool {
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // matches teacher's accepted mode
	if err != nil {
		return false
	}
	_, writeErr := f.Write(data)
	syncErr := f.Sync()
	closeErr := f.Close()
	if writeErr != nil || syncErr != nil || closeErr != nil {
		_ = os.Remove(tempPath)
		return false
	}
	return true
}

// disambiguate computes §4.F's target path, appending run_ts and then
// rand4 if the plain name already exists in targetDir.
func (w *Writer) disambiguate(targetDir, sourceBasename string) string {
	plain := filepath.Join(targetDir, sourceBasename+".ogg")
	if _, err := os.Stat(plain); os.IsNotExist(err) {
		return plain
	}

	withTS := filepath.Join(targetDir, fmt.Sprintf("%s_%s.ogg", sourceBasename, w.runTS))
	if _, err := os.Stat(withTS); os.IsNotExist(err) {
		return withTS
	}

	return filepath.Join(targetDir, fmt.Sprintf("%s_%s_%s.ogg", sourceBasename, w.runTS, rand4()))
}

// renameOrCopy renames src to dst, falling back to copy+unlink when
// the rename fails across filesystem boundaries (§5). The fallback
// copies into a temp file in dst's own directory first, then renames
// that temp file onto dst, so a concurrent reader of dst never
// observes a partially-written file: dst either doesn't exist yet or
// is already complete.
func renameOrCopy(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src) //nolint:gosec // src is the writer's own temp file
	if err != nil {
		return err
	}
	defer in.Close()

	sameFSTemp := dst + "." + rand4() + ".tmp"
	out, err := os.OpenFile(sameFSTemp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_EXCL, 0o644) //nolint:gosec // matches teacher's accepted mode
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(sameFSTemp)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		_ = os.Remove(sameFSTemp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(sameFSTemp)
		return err
	}
	if err := os.Rename(sameFSTemp, dst); err != nil {
		_ = os.Remove(sameFSTemp)
		return err
	}
	return os.Remove(src)
}
