// Package paths provides centralized path handling for agentsync.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/agentsync-dev/agentsync/pkg/errors"
)

// Environment variable names
const (
	// EnvSourceDir is the primary environment variable for the canonical
	// source directory
	EnvSourceDir = "AGENTSYNC_SOURCE_DIR"

	// EnvDataDir overrides the XDG data directory for agentsync
	EnvDataDir = "AGENTSYNC_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for agentsync
	EnvConfigDir = "AGENTSYNC_CONFIG_DIR"
)

// Default directories and files.
// These constants define agentsync's internal state layout and are NOT
// user-configurable; they must stay consistent across installations.
const (
	// AppDirName is the directory name for agentsync-specific files
	AppDirName = "agentsync"

	// SourceDirName is the default canonical source directory inside a project
	SourceDirName = ".agentsync"

	// RegistryFileName is the installation registry document
	RegistryFileName = "registry.json"

	// LedgerFileName is the tracked-file ownership ledger document
	LedgerFileName = "ledger.json"

	// ConfigFileName is the per-project configuration file
	ConfigFileName = ".agentsync.yaml"

	// LogFileName is the name of the log file
	LogFileName = "agentsync.log"
)

// Paths provides centralized path management for agentsync
type Paths interface {
	// ProjectRoot is the project directory targeted by local-scope installs.
	ProjectRoot() string

	// SourceRoot is the canonical source directory holding agents/,
	// commands/, skills/, rules/ and config.yaml.
	SourceRoot() string

	// UsedFallback reports whether ProjectRoot fell back to the cwd.
	UsedFallback() bool

	HomeDir() string
	DataDir() string
	ConfigDir() string
	StateDir() string

	RegistryPath() string
	LedgerPath() string
	ConfigFilePath() string
	LogFilePath() string
}

type paths struct {
	projectRoot string
	sourceRoot  string
	homeDir     string

	xdgData   string
	xdgConfig string
	xdgState  string

	// usedFallback indicates if we fell back to cwd (for warning display)
	usedFallback bool
}

// New creates a new Paths instance rooted at the given project directory.
// If projectRoot is empty it is determined from the environment: the git
// repository root when available, the current directory otherwise.
func New(projectRoot string) (Paths, error) {
	p := &paths{}

	if projectRoot == "" {
		root, usedFallback, err := findProjectRoot()
		if err != nil {
			return nil, err
		}
		p.projectRoot = root
		p.usedFallback = usedFallback
	} else {
		p.projectRoot = expandHome(projectRoot)
	}

	absRoot, err := filepath.Abs(p.projectRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for project root")
	}
	p.projectRoot = absRoot

	if src := os.Getenv(EnvSourceDir); src != "" {
		p.sourceRoot = expandHome(src)
	} else {
		p.sourceRoot = filepath.Join(p.projectRoot, SourceDirName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve home directory")
	}
	p.homeDir = home

	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, AppDirName)
	}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	// XDG state: xdg.StateHome already honors XDG_STATE_HOME
	p.xdgState = filepath.Join(xdg.StateHome, AppDirName)
}

// findProjectRoot determines the project root using the following priority:
// 1. Git repository root (found via 'git rev-parse --show-toplevel')
// 2. Current working directory (fallback, flagged for warning display)
func findProjectRoot() (string, bool, error) {
	gitRoot, err := findGitRoot()
	if err == nil && gitRoot != "" {
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}
	return cwd, true, nil
}

// findGitRoot attempts to find the root of the current git repository
func findGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		// Not in a git repo or git not installed
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}
	return gitRoot, nil
}

// expandHome expands a leading ~/ to the user home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (p *paths) ProjectRoot() string { return p.projectRoot }
func (p *paths) SourceRoot() string  { return p.sourceRoot }
func (p *paths) UsedFallback() bool  { return p.usedFallback }
func (p *paths) HomeDir() string     { return p.homeDir }
func (p *paths) DataDir() string     { return p.xdgData }
func (p *paths) ConfigDir() string   { return p.xdgConfig }
func (p *paths) StateDir() string    { return p.xdgState }

func (p *paths) RegistryPath() string {
	return filepath.Join(p.xdgData, RegistryFileName)
}

func (p *paths) LedgerPath() string {
	return filepath.Join(p.xdgData, LedgerFileName)
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.projectRoot, ConfigFileName)
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}
