package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}
	if !strings.Contains(configDir, "indigo") {
		t.Errorf("GetConfigDir() = %v, should contain 'indigo'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Servers == nil {
		t.Error("NewRegistry().Servers should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.AutoDiscover != true {
		t.Error("NewRegistry().Preferences.AutoDiscover should be true by default")
	}
	if reg.Preferences.DiscoverTimeout != 10 {
		t.Errorf("NewRegistry().Preferences.DiscoverTimeout = %v, want 10", reg.Preferences.DiscoverTimeout)
	}
}

func TestRegistryEnsureServer(t *testing.T) {
	reg := NewRegistry()

	first := reg.EnsureServer("indigosky")
	if first == nil {
		t.Fatal("EnsureServer() returned nil")
	}
	if first.Port != 7624 {
		t.Errorf("new entry Port = %v, want the well-known 7624", first.Port)
	}

	second := reg.EnsureServer("indigosky")
	if first != second {
		t.Error("EnsureServer() should return same instance for same name")
	}

	third := reg.EnsureServer("observatory")
	if first == third {
		t.Error("EnsureServer() should create new instance for different name")
	}
}

func TestRegistrySetServer(t *testing.T) {
	reg := NewRegistry()

	reg.SetServer("indigosky", "192.168.4.16", 7624)

	server := reg.GetServer("indigosky")
	if server == nil {
		t.Fatal("Server should exist after SetServer()")
	}
	if server.Host != "192.168.4.16" {
		t.Errorf("Host = %v, want 192.168.4.16", server.Host)
	}
	if server.Port != 7624 {
		t.Errorf("Port = %v, want 7624", server.Port)
	}
}

func TestRegistryRemoveServer(t *testing.T) {
	reg := NewRegistry()
	reg.SetServer("indigosky", "localhost", 7624)

	reg.RemoveServer("indigosky")

	if reg.GetServer("indigosky") != nil {
		t.Error("removed server should not be found")
	}

	// Removing an unknown name is a no-op
	reg.RemoveServer("missing")
}

func TestRegistryUpdateServerLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateServerLastSeen("indigosky", "192.168.1.100")
	after := time.Now()

	server := reg.GetServer("indigosky")
	if server == nil {
		t.Fatal("Server should exist after UpdateServerLastSeen()")
	}
	if server.Host != "192.168.1.100" {
		t.Errorf("Host = %v, want 192.168.1.100", server.Host)
	}
	if server.LastSeen.Before(before) || server.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", server.LastSeen, before, after)
	}
}

func TestRegistryServerNames_Sorted(t *testing.T) {
	reg := NewRegistry()
	reg.SetServer("zulu", "localhost", 7624)
	reg.SetServer("alpha", "localhost", 7625)
	reg.SetServer("mike", "localhost", 7626)

	names := reg.ServerNames()
	want := []string{"alpha", "mike", "zulu"}
	if len(names) != len(want) {
		t.Fatalf("len(ServerNames()) = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ServerNames()[%d] = %v, want %v", i, names[i], want[i])
		}
	}
}

func TestRegistryAutoConnectServers(t *testing.T) {
	reg := NewRegistry()
	reg.SetServer("indigosky", "localhost", 7624)
	reg.SetServer("observatory", "remote", 7624)
	reg.SetAutoConnect("observatory", true)

	names := reg.AutoConnectServers()
	if len(names) != 1 || names[0] != "observatory" {
		t.Errorf("AutoConnectServers() = %v, want [observatory]", names)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	reg := NewRegistry()
	reg.SetServer("indigosky", "192.168.4.16", 7624)
	reg.SetAutoConnect("indigosky", true)
	reg.Preferences.DiscoverTimeout = 5

	if err := reg.saveToFile(configPath); err != nil {
		t.Fatalf("saveToFile() error = %v", err)
	}

	loaded, err := loadRegistryFromFile(configPath)
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}

	server := loaded.GetServer("indigosky")
	if server == nil {
		t.Fatal("Server should exist in loaded registry")
	}
	if server.Host != "192.168.4.16" {
		t.Errorf("Loaded Host = %v, want 192.168.4.16", server.Host)
	}
	if server.Port != 7624 {
		t.Errorf("Loaded Port = %v, want 7624", server.Port)
	}
	if !server.AutoConnect {
		t.Error("Loaded AutoConnect should be true")
	}
	if loaded.Preferences.DiscoverTimeout != 5 {
		t.Errorf("Loaded DiscoverTimeout = %v, want 5", loaded.Preferences.DiscoverTimeout)
	}
}

func TestLoadRegistryFromFile_Missing(t *testing.T) {
	loaded, err := loadRegistryFromFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}

	// A missing file yields a fresh default registry
	if loaded.Version != 1 {
		t.Errorf("Version = %v, want 1", loaded.Version)
	}
	if len(loaded.Servers) != 0 {
		t.Errorf("len(Servers) = %d, want 0", len(loaded.Servers))
	}
}

func TestLoadRegistryFromFile_BadVersion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("version: 99\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := loadRegistryFromFile(configPath); err == nil {
		t.Error("loading an unsupported version should fail")
	}
}

func TestLoadRegistryFromFile_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("version: [not\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := loadRegistryFromFile(configPath); err == nil {
		t.Error("loading malformed YAML should fail")
	}
}

func BenchmarkEnsureServer(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureServer("indigosky")
	}
}
