package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/webdsl/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultPort, cfg.Dev.Port)
	assert.Equal(t, DefaultHost, cfg.Dev.Host)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultPages, cfg.Pages)
	assert.Equal(t, "  ", cfg.IndentString())
	assert.True(t, cfg.Dev.Watch)
	assert.Equal(t, DefaultScriptTimeout, cfg.ScriptTimeout)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigNotFound))
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	data := `
name: demo
pages: src/pages
output: public
runtime: JavaScript
workers: "4"
scriptTimeout: 2s
log:
  level: debug
dev:
  port: 8080
  watch: false
publish:
  redis:
    addr: localhost:6379
    ttl: 60
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "webdsl.yaml"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, "javascript", cfg.Runtime)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.ScriptTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep defaults")
	assert.Equal(t, 8080, cfg.Dev.Port)
	assert.False(t, cfg.Dev.Watch)
	assert.Equal(t, "localhost:6379", cfg.Publish.Redis.Addr)
	assert.Equal(t, "webdsl:", cfg.Publish.Redis.Prefix)
	assert.Equal(t, time.Minute, cfg.Publish.Redis.TTL)

	assert.Equal(t, filepath.Join(dir, "src/pages"), cfg.PagesPath())
	assert.Equal(t, filepath.Join(dir, "public"), cfg.OutputPath())
	assert.Equal(t, "http://localhost:8080", cfg.DevURL())
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	data := `{"title": "Docs", "indent": 4, "publish": {"s3": {"bucket": "site", "prefix": "v1/"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "webdsl.json"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Docs", cfg.Title)
	assert.Equal(t, "    ", cfg.IndentString())
	assert.Equal(t, "site", cfg.Publish.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.Publish.S3.Region)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "pages: [unclosed"},
		{"unknown key", "pagez: src"},
		{"bad type", "workers: many"},
		{"bad runtime", "runtime: lua"},
		{"bad port", "dev: {port: 70000}"},
		{"bad log format", "log: {format: xml}"},
		{"absolute stylesheet", "stylesheet: /etc/site.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConfigInvalid), "got %v", err)
		})
	}
}

func TestLoadFileLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webdsl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indent: -1\n"), 0o644))

	_, err := LoadFile(path)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, path, e.Location.String())
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "pages", "blog")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "webdsl.yml"), []byte("name: x\n"), 0o644))

	found, err := FindProjectRoot(nested)
	require.NoError(t, err)

	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, want, got)
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, filepath.Join(dir, DefaultOutput), cfg.OutputPath())
}
