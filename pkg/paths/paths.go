package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvCacheDir overrides the XDG cache directory for bpack
	EnvCacheDir = "BPACK_CACHE_DIR"

	// EnvConfigDir overrides the XDG config directory for bpack
	EnvConfigDir = "BPACK_CONFIG_DIR"
)

const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "bpack"

	// ConfigFileName is the user-level configuration file
	ConfigFileName = "config.toml"

	// CratesDir is the cache subdirectory holding extracted crates
	CratesDir = "crates"

	// ManifestName is the Cargo manifest file name
	ManifestName = "Cargo.toml"
)

// CacheDir returns the directory for downloaded crates and registry data
func CacheDir() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.CacheHome, AppDirName)
}

// CratesCacheDir returns where downloaded pack crates are extracted
func CratesCacheDir(cacheDir string) string {
	if cacheDir == "" {
		cacheDir = CacheDir()
	}
	return filepath.Join(ExpandHome(cacheDir), CratesDir)
}

// ConfigDir returns the user configuration directory
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// ConfigFile returns the user configuration file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// ExpandHome expands ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
