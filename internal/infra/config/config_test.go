package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "data", cfg.Analytics.MoodSource)
	require.Equal(t, 250*time.Millisecond, cfg.Analytics.ReflowDelay)
	require.Equal(t, 30*time.Minute, cfg.Analytics.BoardTTL)
	require.Equal(t, 5000, cfg.Locator.DefaultRadius)
	require.Equal(t, 20.5937, cfg.Locator.FallbackLat)
	require.Equal(t, 5*time.Second, cfg.Locator.LocatingTimeout)
}

func TestLoadLayersFileDotEnvAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
http:
  address: ":9000"
analytics:
  moodSource: values
locator:
  defaultType: pharmacy
  defaultRadius: 2000
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GOOGLE_MAPS_API_KEY=from-dotenv\nLOCATOR_DEFAULT_RADIUS=3000\n"), 0o600))

	t.Setenv("CONFIG_PATH", yamlPath)
	t.Setenv("LOCATOR_DEFAULT_RADIUS", "4000")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	os.Unsetenv("GOOGLE_MAPS_API_KEY")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, "values", cfg.Analytics.MoodSource)
	require.Equal(t, "pharmacy", cfg.Locator.DefaultType)
	require.Equal(t, 4000, cfg.Locator.DefaultRadius)
	require.Equal(t, "from-dotenv", cfg.Places.APIKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"mood source":   func(c *Config) { c.Analytics.MoodSource = "both" },
		"board ttl":     func(c *Config) { c.Analytics.BoardTTL = 0 },
		"facility type": func(c *Config) { c.Locator.DefaultType = "spa" },
		"radius order":  func(c *Config) { c.Locator.DefaultRadius = c.Locator.MaxRadius + 1 },
		"fallback":      func(c *Config) { c.Locator.FallbackLat = 120 },
		"valkey addr":   func(c *Config) { c.Places.Valkey.Enabled = true },
		"rate limit":    func(c *Config) { c.HTTP.RateLimit.Burst = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, defaultConfig().Validate())
}
