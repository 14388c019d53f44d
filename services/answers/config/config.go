// Package config loads the answers service configuration.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SEMWEB"

// Config holds service configuration.
type Config struct {
	Port string `mapstructure:"port"`
	// Web1Dir holds the plain pages, RDFaDir the enriched ones.
	Web1Dir string `mapstructure:"web1_dir"`
	RDFaDir string `mapstructure:"rdfa_dir"`
	// GraphDB is the SQLite file of the knowledge graph.
	GraphDB string `mapstructure:"graph_db"`
	// CrawlOnStart fills an empty knowledge graph from RDFaDir at startup.
	CrawlOnStart bool `mapstructure:"crawl_on_start"`
	// GenerateOnStart renders both sites from the bundled season when a
	// page directory is missing.
	GenerateOnStart bool `mapstructure:"generate_on_start"`
	LogJSON         bool `mapstructure:"log_json"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("web1_dir", "data/web_1.0_output")
	v.SetDefault("rdfa_dir", "data/web_3.0_rdfa_output")
	v.SetDefault("graph_db", "data/knowledge_graph.db")
	v.SetDefault("crawl_on_start", true)
	v.SetDefault("generate_on_start", true)
	v.SetDefault("log_json", false)
}

// New returns a viper instance reading SEMWEB_* variables over the defaults.
// PORT (Cloud Run standard) is checked before SEMWEB_PORT. When
// SEMWEB_CONFIG names a file (TOML, YAML or JSON by extension), its values
// sit between the defaults and the environment.
func New() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}

	// AutomaticEnv already covers SEMWEB_PORT; PORT overrides it.
	if port := os.Getenv("PORT"); port != "" {
		v.Set("port", port)
	}
	return v, nil
}

// Load reads configuration from defaults, the optional file and the
// environment.
func Load() (*Config, error) {
	v, err := New()
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes v, which may carry flag bindings from a CLI.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.Port == "" {
		return nil, errors.New("config: port is empty")
	}
	return &cfg, nil
}
