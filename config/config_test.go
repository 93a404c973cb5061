package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFullProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewcheck.yml")
	content := `
template_root: app/views
extensions: [".html.erb", ".erb"]
rules:
  skip-link: false
  color-contrast: true
ignore:
  - rule: missing-landmark
    reason: legacy admin layout
state_file: tmp/state.json
history_file: tmp/history.db
watch_interval: 750ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "app/views", p.TemplateRoot)
	assert.Equal(t, []string{".html.erb", ".erb"}, p.Extensions)
	assert.Equal(t, map[string]bool{"skip-link": false, "color-contrast": true}, p.Rules)
	require.Len(t, p.Ignore, 1)
	assert.Equal(t, "missing-landmark", p.Ignore[0].Rule)
	assert.Equal(t, "tmp/state.json", p.StateFile)
	assert.Equal(t, "tmp/history.db", p.HistoryFile)
	assert.Equal(t, Duration(750*time.Millisecond), p.WatchInterval)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	require.NotNil(t, p)

	assert.Equal(t, ".", p.TemplateRoot)
	assert.Equal(t, []string{".html.erb", ".erb", ".html"}, p.Extensions)
	assert.Equal(t, ".viewcheck-state.json", p.StateFile)
	assert.Equal(t, Duration(2*time.Second), p.WatchInterval)
	assert.Empty(t, p.HistoryFile)
}

func TestLoadBadYamlFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [not: a: map"), 0o644))

	p, err := Load(path)
	require.Error(t, err)
	require.NotNil(t, p)
	assert.Equal(t, ".viewcheck-state.json", p.StateFile)
	assert.Nil(t, p.Rules)
}

func TestLoadPartialProfileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yml")
	require.NoError(t, os.WriteFile(path, []byte("template_root: views\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "views", p.TemplateRoot)
	assert.Equal(t, []string{".html.erb", ".erb", ".html"}, p.Extensions)
	assert.Equal(t, Duration(2*time.Second), p.WatchInterval)
}

func TestDurationUnmarshal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad-duration.yml")
	require.NoError(t, os.WriteFile(path, []byte("watch_interval: soon\n"), 0o644))

	p, err := Load(path)
	require.Error(t, err)
	// The bad profile is discarded wholesale.
	assert.Equal(t, Duration(2*time.Second), p.WatchInterval)
}

func TestEngineResolution(t *testing.T) {
	p := &Profile{
		Rules:  map[string]bool{"skip-link": false},
		Ignore: nil,
	}
	cfg := p.Engine()
	require.NotNil(t, cfg)
	assert.Equal(t, p.Rules, cfg.Rules)
}

func TestScaffold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".viewcheck.yml")

	require.NoError(t, Scaffold(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "template_root:")

	// The scaffold parses as a valid profile.
	_, err = Load(path)
	assert.NoError(t, err)

	// A second scaffold refuses to overwrite.
	assert.Error(t, Scaffold(path))
}
