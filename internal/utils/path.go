package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// AppDirName is the directory name used under the user's config dir.
const AppDirName = "suggestbox"

// PathResolver provides path resolution relative to the running binary
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      platformConfigDir(homeDir),
	}

	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

// platformConfigDir returns the appropriate config directory for the platform
func platformConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppDirName)
		}
		return filepath.Join(homeDir, ".config", AppDirName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppDirName)
	default:
		return filepath.Join(homeDir, ".config", AppDirName)
	}
}

// GetDataDir resolves the directory holding dictionary files.
// Order: absolute user path, next to the executable, cwd, config dir.
func (pr *PathResolver) GetDataDir(userSpecifiedPath string) (string, error) {
	var candidates []string
	if filepath.IsAbs(userSpecifiedPath) {
		candidates = append(candidates, userSpecifiedPath)
	}
	execRelative := filepath.Join(pr.executableDir, userSpecifiedPath)
	candidates = append(candidates, execRelative)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userSpecifiedPath))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(pr.configDir, "data"),
	)

	for _, path := range candidates {
		if IsDataDir(path) {
			log.Debugf("Found valid data directory: %s", path)
			return path, nil
		}
		log.Debugf("Data directory candidate not valid: %s", path)
	}
	return execRelative, nil
}

// IsDataDir checks if path is a directory with at least one dictionary file
func IsDataDir(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".tsv", ".bin":
			return true
		}
	}
	return false
}
