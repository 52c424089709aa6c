package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func envMap(values map[string]string) Option {
	return WithLookup(func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	})
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaultsHostWhenNothingConfigured(t *testing.T) {
	loaded, err := NewLoader(t.TempDir(), WithoutDotEnv(), envMap(nil)).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Host() != DefaultHost || !loaded.HostDefaulted {
		t.Fatalf("expected default host, got %+v", loaded)
	}
	if loaded.Token() != "" || loaded.Source != "" {
		t.Fatalf("expected no token and no source, got %+v", loaded)
	}
}

func TestLoadReadsJSONWithComments(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".privateplot", "{\n  // instance\n  \"instanceHost\": \"blog.example.com\",\n  \"internalAuthToken\": \"abc\",\n}\n")

	loaded, err := NewLoader(dir, WithoutDotEnv(), envMap(nil)).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Source != path || loaded.Host() != "blog.example.com" || loaded.Token() != "abc" {
		t.Fatalf("unexpected settings %+v", loaded)
	}
}

func TestLoadLookupOrderPrefersFirstFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".privateplot.yml", "instanceHost: yml.example.com\n")
	writeConfig(t, dir, ".privateplot.yaml", "instanceHost: yaml.example.com\n")

	loaded, err := NewLoader(dir, WithoutDotEnv(), envMap(nil)).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Host() != "yaml.example.com" {
		t.Fatalf("expected .privateplot.yaml to win, got %q", loaded.Host())
	}
}

func TestLoadEnvironmentTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".privateplot.yaml", "instanceHost: file.example.com\ninternalAuthToken: file-token\n")

	loaded, err := NewLoader(dir, WithoutDotEnv(), envMap(map[string]string{
		EnvHost:  "env.example.com",
		EnvToken: "env-token",
	})).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Host() != "env.example.com" || loaded.Token() != "env-token" {
		t.Fatalf("expected env values, got %+v", loaded.Effective)
	}
	if loaded.File.InstanceHost != "file.example.com" {
		t.Fatalf("file values must stay separate, got %+v", loaded.File)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".env", EnvHost+"=dotenv.example.com\n"+EnvToken+"=dotenv-token\n")
	t.Setenv(EnvToken, "real-token")
	// t.Setenv restores the value; make sure the host key starts unset
	t.Setenv(EnvHost, "")
	os.Unsetenv(EnvHost)

	loaded, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Host() != "dotenv.example.com" {
		t.Fatalf("expected host from .env, got %q", loaded.Host())
	}
	if loaded.Token() != "real-token" {
		t.Fatalf("real environment must win over .env, got %q", loaded.Token())
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".privateplot.yaml", "instanceHost: [not, a, string]\n")

	_, err := NewLoader(dir, WithoutDotEnv(), envMap(nil)).Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveWritesFirstConfigFileAsJSON(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(dir, WithoutDotEnv(), envMap(nil))
	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	path, err := loader.Save(loaded, Settings{InstanceHost: "blog.example.com", InternalAuthToken: "tok"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != ".privateplot" {
		t.Fatalf("expected .privateplot, got %s", path)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"instanceHost": "blog.example.com"`) {
		t.Fatalf("unexpected file content %s", raw)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected private permissions, got %v", info.Mode().Perm())
	}

	reloaded, err := loader.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Host() != "blog.example.com" || reloaded.Token() != "tok" {
		t.Fatalf("expected saved settings, got %+v", reloaded.Effective)
	}
}

func TestSaveKeepsYAMLSource(t *testing.T) {
	dir := t.TempDir()
	source := writeConfig(t, dir, ".privateplot.yml", "instanceHost: old.example.com\n")
	loader := NewLoader(dir, WithoutDotEnv(), envMap(nil))
	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	path, err := loader.Save(loaded, Settings{InstanceHost: "new.example.com"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if path != source {
		t.Fatalf("expected save to %s, got %s", source, path)
	}
	raw, _ := os.ReadFile(path)
	if strings.TrimSpace(string(raw)) != "instanceHost: new.example.com" {
		t.Fatalf("unexpected yaml %q", raw)
	}
}

func TestMaskToken(t *testing.T) {
	if MaskToken("") != "Not set" || MaskToken("secret") != "********" {
		t.Fatalf("unexpected masks")
	}
}
