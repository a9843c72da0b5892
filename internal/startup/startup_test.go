package startup

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version != Version {
		t.Errorf("Expected Version=%s, got %s", Version, info.Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("Expected GoVersion=%s, got %s", runtime.Version(), info.GoVersion)
	}
	if info.OS != runtime.GOOS {
		t.Errorf("Expected OS=%s, got %s", runtime.GOOS, info.OS)
	}
	if info.Arch != runtime.GOARCH {
		t.Errorf("Expected Arch=%s, got %s", runtime.GOARCH, info.Arch)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("STARTUP_TEST_KEY", "value")

	if got := getEnv("STARTUP_TEST_KEY", "default"); got != "value" {
		t.Errorf("Expected value, got %s", got)
	}
	if got := getEnv("STARTUP_TEST_MISSING", "default"); got != "default" {
		t.Errorf("Expected default, got %s", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"false", true, false},
		{"1", false, true},
		{"0", true, false},
		{"", true, true},
		{"", false, false},
		{"invalid", true, true},
		{"invalid", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if tt.value == "" {
				os.Unsetenv("STARTUP_TEST_BOOL")
			} else {
				t.Setenv("STARTUP_TEST_BOOL", tt.value)
			}
			if got := getEnvBool("STARTUP_TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("STARTUP_TEST_INT", "42")
	if got := getEnvInt("STARTUP_TEST_INT", 7); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}

	t.Setenv("STARTUP_TEST_INT", "not-a-number")
	if got := getEnvInt("STARTUP_TEST_INT", 7); got != 7 {
		t.Errorf("Expected default 7, got %d", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("HLS_DIR", filepath.Join(dataDir, "hls"))

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.RelayHost != "127.0.0.1" {
		t.Errorf("Expected RelayHost=127.0.0.1, got %s", config.RelayHost)
	}
	if config.RelayPort != 39221 {
		t.Errorf("Expected RelayPort=39221, got %d", config.RelayPort)
	}
	if config.AudioBitrate != "128k" {
		t.Errorf("Expected AudioBitrate=128k, got %s", config.AudioBitrate)
	}
	if config.AudioChannels != 2 {
		t.Errorf("Expected AudioChannels=2, got %d", config.AudioChannels)
	}
	if config.SettingsPath != filepath.Join(dataDir, "settings.db") {
		t.Errorf("Unexpected SettingsPath: %s", config.SettingsPath)
	}
	if !config.HLSEnabled {
		t.Error("Expected HLSEnabled=true for writable directory")
	}
	if !config.LogosEnabled {
		t.Error("Expected LogosEnabled=true for writable directory")
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("RELAY_PORT", "not-a-port")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for invalid RELAY_PORT")
	}
}

func TestEnsureDirectory(t *testing.T) {
	base := t.TempDir()

	// Creates a missing directory
	target := filepath.Join(base, "new-dir")
	if err := ensureDirectory(target, "test"); err != nil {
		t.Errorf("ensureDirectory failed for missing dir: %v", err)
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Error("Expected directory to be created")
	}

	// Accepts an existing directory
	if err := ensureDirectory(target, "test"); err != nil {
		t.Errorf("ensureDirectory failed for existing dir: %v", err)
	}

	// Rejects a file
	file := filepath.Join(base, "a-file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("Expected error when path is a file")
	}
}
