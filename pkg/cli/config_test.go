package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Host: "http://localhost:8080", APIKey: "pk_default", Output: "table"},
			"staging": {Host: "https://staging.example.com", APIKey: "pk_staging", Output: "json"},
		},
	}

	t.Run("current profile when no override", func(t *testing.T) {
		p, err := cfg.ActiveProfile("")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", p.Host)
	})

	t.Run("override wins", func(t *testing.T) {
		p, err := cfg.ActiveProfile("staging")
		require.NoError(t, err)
		assert.Equal(t, "https://staging.example.com", p.Host)
	})

	t.Run("unknown override is an error", func(t *testing.T) {
		_, err := cfg.ActiveProfile("nonexistent")
		require.EqualError(t, err, `profile "nonexistent" not found`)
	})

	t.Run("stale current profile is tolerated", func(t *testing.T) {
		orphan := &UserConfig{CurrentProfile: "gone", Profiles: map[string]Profile{}}
		p, err := orphan.ActiveProfile("")
		require.NoError(t, err)
		assert.Equal(t, Profile{}, p)
	})
}

func TestSaveThenLoadUserConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {Host: "http://test:8080", APIKey: "pk_test"},
		},
	}))

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.CurrentProfile)
	require.Contains(t, loaded.Profiles, "test")
	assert.Equal(t, "http://test:8080", loaded.Profiles["test"].Host)
	assert.Equal(t, "pk_test", loaded.Profiles["test"].APIKey)
}

func TestSaveUserConfig_OwnerOnlyFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{"default": {Token: "secret"}},
	}))

	info, err := os.Stat(filepath.Join(dir, ".posgate", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadUserConfig_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadUserConfig()
	require.NoError(t, err, "a fresh machine has no config yet; that is not an error")
	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.NotNil(t, cfg.Profiles)
	assert.Empty(t, cfg.Profiles)
}

func TestLoadUserConfig_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".posgate"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".posgate", "config.yaml"),
		[]byte("current-profile: [this is not\n"), 0o600))

	_, err := LoadUserConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestNormalizeHostURL(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain http", "http://localhost:8080", "http://localhost:8080", false},
		{"https host", "https://pos.example.com", "https://pos.example.com", false},
		{"trailing slash dropped", "http://localhost:8080/", "http://localhost:8080", false},
		{"surrounding space trimmed", "  http://localhost:8080  ", "http://localhost:8080", false},
		{"missing scheme", "localhost:8080", "", true},
		{"wrong scheme", "ftp://example.com", "", true},
		{"path not allowed", "http://example.com/v1", "", true},
		{"query not allowed", "http://example.com?x=1", "", true},
		{"empty", "", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeHostURL(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
