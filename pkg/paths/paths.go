package paths

import (
	"os"
	"path/filepath"
)

const appDir = "wal"

// GetConfigDir returns the directory holding config.yaml.
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory.
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), "."+appDir+"-config"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".config", appDir))
}

// GetDataDir returns the directory for logs and saved themes.
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), "."+appDir))
	}
	return filepath.Clean(filepath.Join(homeDir, "."+appDir))
}

// GetThemesDir returns the default directory for theme documents.
func GetThemesDir() string {
	return filepath.Join(GetDataDir(), "themes")
}
