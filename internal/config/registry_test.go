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

	if !strings.Contains(configDir, "powerpack") {
		t.Errorf("GetConfigDir() = %v, should contain 'powerpack'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	dir := t.TempDir()
	t.Setenv(ConfigDirEnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "powerpack"); got != want {
		t.Errorf("GetConfigDir() = %v, want %v", got, want)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", path)
	}
}

func TestGetConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnvVar, dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("GetConfigDir() = %v, want %v", got, dir)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, filepath.Join(t.TempDir(), "nested", "powerpack"))

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	reg, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if reg.GetInstance("example") == nil {
		t.Error("default config should contain the example instance")
	}

	if _, err := CreateDefaultConfig(); err == nil {
		t.Error("second CreateDefaultConfig() should refuse to overwrite")
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Instances == nil {
		t.Error("NewRegistry().Instances should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", reg.Preferences.RequestTimeout, DefaultRequestTimeout)
	}
	if reg.Preferences.BridgeAddr != DefaultBridgeAddr {
		t.Errorf("BridgeAddr = %q, want %q", reg.Preferences.BridgeAddr, DefaultBridgeAddr)
	}
}

func TestSetInstance(t *testing.T) {
	reg := NewRegistry()

	first := reg.SetInstance("prod", "https://prod.example.com", "abc")
	if reg.Preferences.DefaultInstance != "prod" {
		t.Errorf("first instance should become default, got %q", reg.Preferences.DefaultInstance)
	}

	reg.SetInstance("staging", "https://staging.example.com", "def")
	if reg.Preferences.DefaultInstance != "prod" {
		t.Error("adding a second instance must not change the default")
	}

	again := reg.SetInstance("prod", "https://prod2.example.com", "xyz")
	if first != again {
		t.Error("SetInstance() should update the existing entry")
	}
	if again.BaseURL != "https://prod2.example.com" || again.ClientID != "xyz" {
		t.Errorf("instance = %+v", again)
	}

	if got := reg.InstanceNames(); len(got) != 2 || got[0] != "prod" || got[1] != "staging" {
		t.Errorf("InstanceNames() = %v", got)
	}
}

func TestTouchInstance(t *testing.T) {
	reg := NewRegistry()
	reg.SetInstance("prod", "https://prod.example.com", "abc")

	before := time.Now()
	reg.TouchInstance("prod")
	reg.TouchInstance("missing")

	if reg.GetInstance("prod").LastUsed.Before(before) {
		t.Error("LastUsed should be updated")
	}
	if reg.GetInstance("missing") != nil {
		t.Error("TouchInstance must not create instances")
	}
}

func TestResolve(t *testing.T) {
	reg := NewRegistry()
	reg.SetInstance("prod", "https://prod.example.com", "prod-id")
	reg.SetInstance("staging", "https://staging.example.com", "staging-id")
	reg.Preferences.RequestTimeout = 5

	tests := []struct {
		name     string
		o        Overrides
		wantURL  string
		wantID   string
		wantName string
		wantErr  bool
	}{
		{"default instance", Overrides{}, "https://prod.example.com", "prod-id", "prod", false},
		{"named instance", Overrides{Instance: "staging"}, "https://staging.example.com", "staging-id", "staging", false},
		{"flag overrides url", Overrides{BaseURL: "http://localhost:9999"}, "http://localhost:9999", "prod-id", "prod", false},
		{"flag overrides id", Overrides{Instance: "staging", ClientID: "other"}, "https://staging.example.com", "other", "staging", false},
		{"unknown instance", Overrides{Instance: "nope"}, "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := reg.Resolve(tt.o)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if target.BaseURL != tt.wantURL || target.ClientID != tt.wantID || target.Name != tt.wantName {
				t.Errorf("Resolve() = %+v", target)
			}
			if target.Timeout != 5*time.Second {
				t.Errorf("Timeout = %v, want 5s", target.Timeout)
			}
		})
	}
}

func TestResolve_Empty(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.Resolve(Overrides{}); err == nil {
		t.Error("Resolve() with nothing configured should fail")
	}
	if _, err := reg.Resolve(Overrides{BaseURL: "https://x.example.com"}); err == nil {
		t.Error("Resolve() without a client ID should fail")
	}

	target, err := reg.Resolve(Overrides{BaseURL: "https://x.example.com", ClientID: "id"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if target.Timeout != DefaultRequestTimeout*time.Second {
		t.Errorf("Timeout = %v", target.Timeout)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	reg := NewRegistry()
	reg.SetInstance("prod", "https://prod.example.com", "prod-id")
	reg.Preferences.Advertise = true
	reg.Preferences.BridgeAddr = ":9000"

	if err := reg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be gone after save")
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "client_secret") {
		t.Error("config file must not contain a client_secret key")
	}

	loaded, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatalf("LoadRegistryFile() error = %v", err)
	}
	inst := loaded.GetInstance("prod")
	if inst == nil || inst.BaseURL != "https://prod.example.com" || inst.ClientID != "prod-id" {
		t.Fatalf("loaded instance = %+v", inst)
	}
	if !loaded.Preferences.Advertise || loaded.Preferences.BridgeAddr != ":9000" {
		t.Errorf("loaded preferences = %+v", loaded.Preferences)
	}
}

func TestLoadRegistryFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		reg, err := LoadRegistryFile(filepath.Join(dir, "absent.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if reg.Version != CurrentVersion {
			t.Error("missing file should yield a default registry")
		}
	})

	t.Run("bad version", func(t *testing.T) {
		path := filepath.Join(dir, "v2.yaml")
		_ = os.WriteFile(path, []byte("version: 2\n"), 0600)
		if _, err := LoadRegistryFile(path); err == nil {
			t.Error("unsupported version should fail")
		}
	})

	t.Run("minimal file", func(t *testing.T) {
		path := filepath.Join(dir, "min.yaml")
		_ = os.WriteFile(path, []byte("version: 1\n"), 0600)
		reg, err := LoadRegistryFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if reg.Instances == nil || reg.Preferences == nil {
			t.Error("missing sections should be initialized")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		_ = os.WriteFile(path, []byte("version: [1\n"), 0600)
		if _, err := LoadRegistryFile(path); err == nil {
			t.Error("invalid YAML should fail")
		}
	})
}

func TestReadSecret_Env(t *testing.T) {
	t.Setenv(SecretEnvVar, "  s3cret \n")

	secret, err := ReadSecret("id")
	if err != nil {
		t.Fatalf("ReadSecret() error = %v", err)
	}
	if secret != "s3cret" {
		t.Errorf("ReadSecret() = %q, want s3cret", secret)
	}
}

func TestPrompt(t *testing.T) {
	var out strings.Builder

	got, err := Prompt(strings.NewReader("prod\n"), &out, "Instance name", "default")
	if err != nil || got != "prod" {
		t.Errorf("Prompt() = %q, %v", got, err)
	}
	if out.String() != "Instance name [default]: " {
		t.Errorf("prompt text = %q", out.String())
	}

	got, _ = Prompt(strings.NewReader("\n"), &out, "Instance name", "default")
	if got != "default" {
		t.Errorf("empty answer = %q, want default", got)
	}

	got, _ = Prompt(strings.NewReader("no newline"), &out, "x", "")
	if got != "no newline" {
		t.Errorf("EOF answer = %q", got)
	}
}

func BenchmarkResolve(b *testing.B) {
	reg := NewRegistry()
	reg.SetInstance("prod", "https://prod.example.com", "prod-id")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Resolve(Overrides{})
	}
}
