package hostinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// InstallState records where Anna's pieces were found on this host, so the
// daemon doesn't have to re-discover them on every restart.
type InstallState struct {
	BinaryPath     string `json:"binary_path,omitempty"`
	ConfigDir      string `json:"config_dir,omitempty"`
	PackageManager string `json:"package_manager,omitempty"` // "pacman", "apt", "unknown"
	DetectedAtUnix int64  `json:"detected_at_ts"`
}

// DetectInstallState probes the current process and host for install
// locations: its own executable path, the config directory it was given,
// and which package manager (if any) owns the binary.
func DetectInstallState(configDir string) InstallState {
	binPath, _ := os.Executable()
	return InstallState{
		BinaryPath:     binPath,
		ConfigDir:      configDir,
		PackageManager: detectPackageManager(),
		DetectedAtUnix: time.Now().Unix(),
	}
}

func detectPackageManager() string {
	for _, candidate := range []string{"pacman", "apt", "dnf", "zypper"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return "unknown"
}

// InstallStateStore persists a single InstallState at path, same
// write-temp-then-rename + single-writer-mutex idiom as pkg/recipe.Store
// and pkg/update.Store.
type InstallStateStore struct {
	path string
	mu   sync.Mutex
}

// NewInstallStateStore opens a store backed by the file at path, creating
// its parent directory if absent.
func NewInstallStateStore(path string) (*InstallStateStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("install state: create dir: %w", err)
	}
	return &InstallStateStore{path: path}, nil
}

// Load reads the install state from disk, returning the zero value if the
// file does not exist yet (e.g. first run).
func (s *InstallStateStore) Load() (InstallState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return InstallState{}, nil
	}
	if err != nil {
		return InstallState{}, fmt.Errorf("install state: read: %w", err)
	}
	var st InstallState
	if err := json.Unmarshal(data, &st); err != nil {
		return InstallState{}, fmt.Errorf("install state: decode: %w", err)
	}
	return st, nil
}

// Save persists st via write-temp-then-rename.
func (s *InstallStateStore) Save(st InstallState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("install state: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("install state: write: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// changed reports whether current differs from the last state recorded by
// this store in any field relevant to re-discovery.
func changed(a, b InstallState) bool {
	return !strings.EqualFold(a.BinaryPath, b.BinaryPath) ||
		a.ConfigDir != b.ConfigDir ||
		a.PackageManager != b.PackageManager
}

// RefreshInstallState loads the previously recorded state, detects the
// current one, and persists it only if something changed — avoiding a
// write (and a bumped DetectedAtUnix) on every restart when nothing moved.
func RefreshInstallState(store *InstallStateStore, configDir string) (InstallState, error) {
	previous, err := store.Load()
	if err != nil {
		return InstallState{}, err
	}
	current := DetectInstallState(configDir)
	if !changed(previous, current) {
		return previous, nil
	}
	if err := store.Save(current); err != nil {
		return InstallState{}, err
	}
	return current, nil
}
