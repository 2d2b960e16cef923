package dedup

import (
	"crypto/md5" //nolint:gosec // identity key only, not security-sensitive
	"fmt"
	"os"

	"github.com/tphakala/raextract/internal/rtypes"
)

// SourceFingerprint computes the cheap, non-content identity §3
// defines for the processed set. For a loose disk file it is
// MD5(path || size || mtime), deliberately cheap so a rerun can skip
// untouched entries without reading their bytes. For an index-row
// locator it is MD5(id_hex): the row's identity is the id column
// itself, not the db_temp file's path/mtime, since that file is
// deleted and re-materialized with a fresh mtime on every run.
func SourceFingerprint(loc rtypes.SourceLocator) (string, error) {
	if loc.IDHex != "" {
		sum := md5.Sum([]byte(loc.IDHex)) //nolint:gosec // identity key only
		return fmt.Sprintf("%x", sum), nil
	}

	info, err := os.Stat(loc.Path)
	if err != nil {
		return "", fmt.Errorf("dedup: stat %s: %w", loc.Path, err)
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%d|%d", loc.Path, info.Size(), info.ModTime().UnixNano()))) //nolint:gosec // identity key only
	return fmt.Sprintf("%x", sum), nil
}
