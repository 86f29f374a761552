package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	v, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Export.DefaultDuration)
	assert.Equal(t, "ffmpeg", cfg.Tools.FFmpegPath)
	assert.Equal(t, time.Hour, cfg.Export.Retention)
	assert.False(t, cfg.S3.Enabled)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
export:
  outputDir: /var/slidecast
  defaultDuration: 8
  retention: 30m
tools:
  ffmpegPath: /opt/ffmpeg/bin/ffmpeg
`), 0o644))

	v, err := LoadConfig(path)
	require.NoError(t, err)
	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "/var/slidecast", cfg.Export.OutputDir)
	assert.Equal(t, 8.0, cfg.Export.DefaultDuration)
	assert.Equal(t, 30*time.Minute, cfg.Export.Retention)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Tools.FFmpegPath)
	assert.Equal(t, "marp", cfg.Tools.MarpPath)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("EXPORT_PARALLELISM", "7")

	v, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Export.Parallelism)
}

func TestValidate(t *testing.T) {
	v, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	base, err := ParseConfig(v)
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"empty work dir":      func(c *Config) { c.Export.WorkDir = "" },
		"duration too long":   func(c *Config) { c.Export.DefaultDuration = 31 },
		"no parallelism":      func(c *Config) { c.Export.Parallelism = 0 },
		"negative jobs":       func(c *Config) { c.Export.MaxConcurrentJobs = -1 },
		"zero retention":      func(c *Config) { c.Export.Retention = 0 },
		"negative retention":  func(c *Config) { c.Export.Retention = -time.Minute },
		"zero width":          func(c *Config) { c.Tools.Width = 0 },
		"s3 without a bucket": func(c *Config) { c.S3.Enabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
