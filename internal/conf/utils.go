// conf/utils.go
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GetDefaultConfigPaths returns a list of default configuration
// directories for the current operating system, checked in order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("fetching user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		return []string{
			filepath.Join(homeDir, "AppData", "Roaming", "raextract"),
		}, nil
	default:
		return []string{
			filepath.Join(homeDir, ".config", "raextract"),
			"/etc/raextract",
		}, nil
	}
}
