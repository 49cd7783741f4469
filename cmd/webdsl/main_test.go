package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/webdsl/internal/config"
	"github.com/vango-dev/webdsl/internal/errors"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile = ""
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var testSite = map[string]string{
	"webdsl.yaml": "title: Test\nlog:\n  level: error\n",
	"pages/index.js": `
css.rule("h1", {color: "navy"});
function greet(ev) { alert("hi"); }
html.body(function () {
  html.h1("Home");
  html.a("Form", {href: urlFor("contact/form")});
  html.button("Hi", {onclick: greet});
});
`,
	"pages/contact/form.js": `
html.body(function () {
  html.a("Home", {href: urlFor("index")});
});
`,
}

func TestBuildCommand(t *testing.T) {
	dir := writeProject(t, testSite)

	_, err := execute(t, "build", dir, "--workers", "2")
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(dir, "build", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<title>Test</title>")
	assert.Contains(t, string(index), `href="contact/form.html"`)
	assert.Contains(t, string(index), "function greet(ev)")

	form, err := os.ReadFile(filepath.Join(dir, "build", "contact", "form.html"))
	require.NoError(t, err)
	assert.Contains(t, string(form), `<link rel="stylesheet" href="../styles.css">`)

	var manifest map[string]string
	data, err := os.ReadFile(filepath.Join(dir, "build", "manifest.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Len(t, manifest, 3)

	_, err = execute(t, "verify", dir)
	assert.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "build", "styles.css")))
	_, err = execute(t, "verify", dir)
	assert.True(t, errors.Is(err, errors.ErrVerifyFailed))
}

func TestBuildCommandOutputFlag(t *testing.T) {
	dir := writeProject(t, testSite)
	out := filepath.Join(t.TempDir(), "public")

	_, err := execute(t, "build", dir, "--out", out, "--runtime", "brython")
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "brython")
}

func TestBuildCommandScriptError(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"webdsl.yaml":    "log:\n  level: error\n",
		"pages/index.js": "html.body(function () {\n  throw new Error('boom');\n});\n",
	})

	_, err := execute(t, "build", dir)
	assert.True(t, errors.Is(err, errors.ErrScriptFailed))
	_, statErr := os.Stat(filepath.Join(dir, "build", "index.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildCommandNoPages(t *testing.T) {
	dir := writeProject(t, map[string]string{"webdsl.yaml": "log:\n  level: error\n"})
	_, err := execute(t, "build", dir)
	assert.True(t, errors.Is(err, errors.ErrNoPages))
}

func TestConfigFlag(t *testing.T) {
	dir := writeProject(t, testSite)
	alt := filepath.Join(dir, "alt.yaml")
	require.NoError(t, os.WriteFile(alt, []byte("title: Alt\noutput: alt-out\nlog:\n  level: error\n"), 0o644))

	configFile = ""
	cmd := rootCmd()
	cmd.SetArgs([]string{"build", "--config", alt})
	require.NoError(t, cmd.Execute())

	index, err := os.ReadFile(filepath.Join(dir, "alt-out", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<title>Alt</title>")
	configFile = ""
}

func TestPublishWithoutTarget(t *testing.T) {
	dir := writeProject(t, testSite)
	_, err := execute(t, "publish", dir)
	assert.True(t, errors.Is(err, errors.ErrPublishFailed))
}

func TestMergeTargets(t *testing.T) {
	dst := config.PublishConfig{
		S3:    config.S3Config{Bucket: "a", Region: "us-east-1"},
		Redis: config.RedisConfig{Prefix: "webdsl:"},
	}
	mergeTargets(&dst,
		config.S3Config{Prefix: "www"},
		config.RedisConfig{Addr: "localhost:6379", TTL: time.Hour},
	)
	assert.Equal(t, "a", dst.S3.Bucket)
	assert.Equal(t, "www", dst.S3.Prefix)
	assert.Equal(t, "us-east-1", dst.S3.Region)
	assert.Equal(t, "localhost:6379", dst.Redis.Addr)
	assert.Equal(t, "webdsl:", dst.Redis.Prefix)
	assert.Equal(t, time.Hour, dst.Redis.TTL)

	sinks, names, release := targets(dst)
	defer release()
	assert.Len(t, sinks, 2)
	assert.Equal(t, []string{"s3://a/www", "redis://localhost:6379/webdsl:"}, names)
}

func TestExplainMarkdown(t *testing.T) {
	tmpl, ok := errors.Lookup("E104")
	require.True(t, ok)
	md := explainMarkdown("E104", tmpl)
	assert.True(t, strings.HasPrefix(md, "# E104 StackInvariantViolation"))
	assert.Contains(t, md, tmpl.Message)

	list := codesMarkdown()
	for _, code := range errors.Codes() {
		assert.Contains(t, list, "| "+code+" |")
	}
}

func TestExplainCommand(t *testing.T) {
	out, err := execute(t, "explain", "e201")
	require.NoError(t, err)
	assert.Contains(t, out, "E201")

	_, err = execute(t, "explain", "E999")
	assert.Error(t, err)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}
