package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Scraper.IdleTimeout)
	assert.Equal(t, 2*time.Second, cfg.Scraper.RenderGrace)
	assert.Equal(t, []string{"Accept", "Accepteren"}, cfg.Scraper.ConsentLabels)
	assert.Equal(t, "jobs.json", cfg.Output.CollectionFile)
	assert.Equal(t, FilenameCompanyFirst, cfg.Output.FilenameOrder)
	assert.True(t, cfg.Output.LogoBlock)
}

func TestLoadConfigYAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("JOBSCRIBE_TEST_OUT", "/tmp/listings")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scraper:
  idle_timeout: 4s
  consent_labels: ["Accept", "Alle akzeptieren"]
output:
  dir: ${JOBSCRIBE_TEST_OUT}
  filename_order: title_first
batch:
  delay_min: 1s
  delay_max: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4*time.Second, cfg.Scraper.IdleTimeout)
	assert.Equal(t, []string{"Accept", "Alle akzeptieren"}, cfg.Scraper.ConsentLabels)
	assert.Equal(t, "/tmp/listings", cfg.Output.Dir)
	assert.Equal(t, FilenameTitleFirst, cfg.Output.FilenameOrder)
	assert.Equal(t, time.Second, cfg.Batch.DelayMin)
	// untouched keys keep their defaults
	assert.Equal(t, 30*time.Second, cfg.Scraper.NavigationTimeout)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("JOBSCRIBE_HEADLESS", "false")
	t.Setenv("JOBSCRIBE_CONSENT_LABELS", "Accept, Tout accepter ,")
	t.Setenv("JOBSCRIBE_DELAY_MAX", "7s")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.False(t, cfg.Scraper.HeadlessMode)
	assert.Equal(t, []string{"Accept", "Tout accepter"}, cfg.Scraper.ConsentLabels)
	assert.Equal(t, 7*time.Second, cfg.Batch.DelayMax)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scraper: [unterminated"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestCollectionPath(t *testing.T) {
	cfg := Default()

	assert.Equal(t, filepath.Join("out", "jobs.json"), cfg.CollectionPath("out"))
	assert.Equal(t, filepath.Join("./output", "jobs.json"), cfg.CollectionPath(""))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".profile-dir"), ExpandHome("~/.profile-dir"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
}
