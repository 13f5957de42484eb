// Package config loads sparqltt settings from defaults, an optional YAML
// file and SPARQLTT_* environment variables, in increasing precedence.
//
//	schema: testdata/schema/wikidata.cue
//	cache: sparqltt.db
//	kb:
//	  fixture: ""
//	  endpoint: https://query.wikidata.org/sparql
//	  timeout: 30s
//	converter:
//	  similarity: f1
//	log:
//	  level: info
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/sparqltt/internal/kb"
	"github.com/roach88/sparqltt/internal/textutil"
)

// FileName is the config file searched for in the working directory.
const FileName = "sparqltt"

// EnvPrefix prefixes environment overrides: SPARQLTT_KB_TIMEOUT sets
// kb.timeout.
const EnvPrefix = "SPARQLTT"

// Config is the resolved configuration.
type Config struct {
	// Schema is the CUE schema file or package directory.
	Schema string

	// Cache is the SQLite cache path. Empty disables caching.
	Cache string

	KB        KB
	Converter Converter
	Log       Log

	// File is the config file that was read, empty when none was found.
	File string
}

// KB selects and tunes the knowledge base. A fixture replaces the live
// Wikidata services.
type KB struct {
	Fixture   string
	Endpoint  string
	API       string
	Timeout   time.Duration
	BatchWait time.Duration
}

// Converter holds the conversion options.
type Converter struct {
	ExcludeEntityDisplay bool
	Similarity           string
}

// Log holds the logging options.
type Log struct {
	Level string
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Schema: "schema",
		Cache:  "sparqltt.db",
		KB: KB{
			Endpoint:  kb.DefaultEndpoint,
			API:       kb.DefaultAPI,
			Timeout:   kb.DefaultTimeout,
			BatchWait: kb.DefaultBatchWait,
		},
		Converter: Converter{Similarity: string(textutil.F1)},
		Log:       Log{Level: "info"},
	}
}

// Load resolves the configuration. path names the config file to read; if
// empty, sparqltt.yaml is looked up in the working directory and skipped
// when absent.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Schema: v.GetString("schema"),
		Cache:  v.GetString("cache"),
		KB: KB{
			Fixture:   v.GetString("kb.fixture"),
			Endpoint:  v.GetString("kb.endpoint"),
			API:       v.GetString("kb.api"),
			Timeout:   v.GetDuration("kb.timeout"),
			BatchWait: v.GetDuration("kb.batch_wait"),
		},
		Converter: Converter{
			ExcludeEntityDisplay: v.GetBool("converter.exclude_entity_display"),
			Similarity:           v.GetString("converter.similarity"),
		},
		Log:  Log{Level: v.GetString("log.level")},
		File: v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	def := Default()
	v := viper.New()
	v.SetDefault("schema", def.Schema)
	v.SetDefault("cache", def.Cache)
	v.SetDefault("kb.fixture", def.KB.Fixture)
	v.SetDefault("kb.endpoint", def.KB.Endpoint)
	v.SetDefault("kb.api", def.KB.API)
	v.SetDefault("kb.timeout", def.KB.Timeout)
	v.SetDefault("kb.batch_wait", def.KB.BatchWait)
	v.SetDefault("converter.exclude_entity_display", def.Converter.ExcludeEntityDisplay)
	v.SetDefault("converter.similarity", def.Converter.Similarity)
	v.SetDefault("log.level", def.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate checks the values a typo could break.
func (c Config) Validate() error {
	if c.Schema == "" {
		return errors.New("config: schema is required")
	}
	if _, ok := textutil.ParseAlgorithm(c.Converter.Similarity); !ok {
		return fmt.Errorf("config: unknown converter.similarity %q", c.Converter.Similarity)
	}
	if c.KB.Timeout < 0 {
		return fmt.Errorf("config: negative kb.timeout %s", c.KB.Timeout)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}

// Similarity returns the parsed similarity algorithm.
func (c Config) Similarity() textutil.Algorithm {
	algo, _ := textutil.ParseAlgorithm(c.Converter.Similarity)
	return algo
}
