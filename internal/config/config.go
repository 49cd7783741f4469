package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/webdsl/internal/errors"
)

const (
	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultPages is the default page script directory.
	DefaultPages = "pages"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "build"

	// DefaultStylesheet is the default site stylesheet file name.
	DefaultStylesheet = "styles.css"

	// DefaultTitle is the default document title.
	DefaultTitle = "WebDSL"

	// DefaultRuntime is the default client runtime for Go pages.
	DefaultRuntime = "brython"

	// DefaultScriptTimeout bounds the run time of one page script.
	DefaultScriptTimeout = 10 * time.Second
)

// FileNames are the configuration file names searched, in order.
var FileNames = []string{"webdsl.yaml", "webdsl.yml", "webdsl.json"}

// Config represents the complete webdsl.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `mapstructure:"name" yaml:"name,omitempty"`

	// Pages is the page script directory.
	Pages string `mapstructure:"pages" yaml:"pages,omitempty"`

	// Output is the build output directory.
	Output string `mapstructure:"output" yaml:"output,omitempty"`

	// Stylesheet is the site stylesheet file name, relative to Output.
	Stylesheet string `mapstructure:"stylesheet" yaml:"stylesheet,omitempty"`

	// Title is the document title of every page.
	Title string `mapstructure:"title" yaml:"title,omitempty"`

	// Runtime is the client runtime ("brython" or "javascript"). Empty lets
	// script pages default to javascript.
	Runtime string `mapstructure:"runtime" yaml:"runtime,omitempty"`

	// Indent is the number of spaces per nesting level in generated markup.
	Indent int `mapstructure:"indent" yaml:"indent,omitempty"`

	// Workers is the number of pages built in parallel.
	Workers int `mapstructure:"workers" yaml:"workers,omitempty"`

	// Verify re-reads generated output after every build.
	Verify bool `mapstructure:"verify" yaml:"verify,omitempty"`

	// ScriptTimeout bounds the run time of one page script.
	ScriptTimeout time.Duration `mapstructure:"scriptTimeout" yaml:"scriptTimeout,omitempty"`

	// Log configures the application logger.
	Log LogConfig `mapstructure:"log" yaml:"log,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `mapstructure:"dev" yaml:"dev,omitempty"`

	// Publish contains publishing targets.
	Publish PublishConfig `mapstructure:"publish" yaml:"publish,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `mapstructure:"format" yaml:"format,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Host is the host to bind to.
	Host string `mapstructure:"host" yaml:"host,omitempty"`

	// Port is the port to run the dev server on.
	Port int `mapstructure:"port" yaml:"port,omitempty"`

	// Open opens the browser on start.
	Open bool `mapstructure:"open" yaml:"open,omitempty"`

	// Watch rebuilds when page scripts change.
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// PublishConfig contains publishing targets.
type PublishConfig struct {
	S3    S3Config    `mapstructure:"s3" yaml:"s3,omitempty"`
	Redis RedisConfig `mapstructure:"redis" yaml:"redis,omitempty"`
}

// S3Config configures publishing to an S3 bucket.
type S3Config struct {
	Bucket   string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Region   string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
}

// RedisConfig configures publishing to Redis.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr,omitempty"`
	Password string        `mapstructure:"password" yaml:"password,omitempty"`
	DB       int           `mapstructure:"db" yaml:"db,omitempty"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix,omitempty"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Pages:         DefaultPages,
		Output:        DefaultOutput,
		Stylesheet:    DefaultStylesheet,
		Title:         DefaultTitle,
		Indent:        2,
		Workers:       1,
		ScriptTimeout: DefaultScriptTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Dev: DevConfig{
			Host:  DefaultHost,
			Port:  DefaultPort,
			Watch: true,
		},
		Publish: PublishConfig{
			S3:    S3Config{Region: "us-east-1"},
			Redis: RedisConfig{Prefix: "webdsl:"},
		},
	}
}

// Load reads configuration from the first config file found in dir.
// It returns an ErrConfigNotFound error when dir has none.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E302").
		WithDetail("No webdsl.yaml found in " + dir)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E302").WithDetail("No such file: " + path)
		}
		return nil, errors.New("E301").Wrap(err)
	}

	cfg, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Location = &errors.Location{File: path}
		}
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes configuration data on top of the defaults. JSON input is
// decoded with encoding/json, everything else as YAML.
func Parse(data []byte, isJSON bool) (*Config, error) {
	raw := map[string]any{}
	var err error
	if isJSON {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, errors.New("E301").
			WithDetail("Failed to parse configuration: " + err.Error())
	}

	cfg := New()
	if err := decode(raw, cfg); err != nil {
		return nil, errors.New("E301").
			WithDetail(err.Error()).
			WithSuggestion("Check the key names and value types against `webdsl explain E301`.")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode maps loosely typed input onto cfg. Strings such as "10s" become
// durations, numbers given as strings are accepted, and unknown keys fail.
func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			secondsToDurationHook,
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// secondsToDurationHook reads bare numbers as seconds for duration fields.
func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}

// applyDefaults fills in default values for fields set to empty values.
func (c *Config) applyDefaults() {
	if c.Pages == "" {
		c.Pages = DefaultPages
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Stylesheet == "" {
		c.Stylesheet = DefaultStylesheet
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Indent == 0 {
		c.Indent = 2
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.ScriptTimeout == 0 {
		c.ScriptTimeout = DefaultScriptTimeout
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	c.Runtime = strings.ToLower(c.Runtime)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch {
	case c.Dev.Port < 0 || c.Dev.Port > 65535:
		return errors.New("E301").WithDetail("dev.port must be between 0 and 65535")
	case c.Indent < 0 || c.Indent > 16:
		return errors.New("E301").WithDetail("indent must be between 0 and 16")
	case c.Workers < 0:
		return errors.New("E301").WithDetail("workers must not be negative")
	case c.ScriptTimeout < 0:
		return errors.New("E301").WithDetail("scriptTimeout must not be negative")
	case c.Runtime != "" && c.Runtime != "brython" && c.Runtime != "javascript":
		return errors.New("E301").WithDetailf("runtime %q is not one of brython, javascript", c.Runtime)
	case c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json":
		return errors.New("E301").WithDetailf("log.format %q is not one of text, json", c.Log.Format)
	case c.Publish.Redis.TTL < 0:
		return errors.New("E301").WithDetail("publish.redis.ttl must not be negative")
	case strings.ContainsAny(c.Stylesheet, `\`) || filepath.IsAbs(c.Stylesheet):
		return errors.New("E301").WithDetail("stylesheet must be a relative, slash-separated path")
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// IndentString returns the markup indentation unit.
func (c *Config) IndentString() string {
	return strings.Repeat(" ", c.Indent)
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return fmt.Sprintf("%s:%d", c.Dev.Host, c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// PagesPath returns the page script directory resolved against the config
// directory.
func (c *Config) PagesPath() string {
	return c.resolve(c.Pages)
}

// OutputPath returns the build output directory resolved against the config
// directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Output)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an ErrConfigNotFound
// error if there is none.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E302").
				WithDetail("No webdsl.yaml found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadOrDefault loads the configuration of the project containing dir, or
// returns the defaults rooted at dir when there is none.
func LoadOrDefault(dir string) (*Config, error) {
	root, err := FindProjectRoot(dir)
	if errors.Is(err, errors.ErrConfigNotFound) {
		cfg := New()
		if abs, aerr := filepath.Abs(dir); aerr == nil {
			cfg.configPath = filepath.Join(abs, FileNames[0])
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return Load(root)
}
