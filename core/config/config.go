package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"entity-sync/core/cassandra"
	"entity-sync/core/database"
	"entity-sync/core/logger"
	"entity-sync/core/server"
	"entity-sync/core/storage"
	"entity-sync/feature/schema"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the optional YAML config file looked up in the config directory.
const FileName = "entity-sync"

// Config is the root configuration, one section per component.
type Config struct {
	Server server.Config `mapstructure:"server"`
	Log    logger.Config `mapstructure:"log"`
	// Cassandra is the cluster whose schema is reconciled.
	Cassandra cassandra.Config `mapstructure:"cassandra"`
	// Database is the schema change history store.
	Database database.Config `mapstructure:"database"`
	// Storage receives published remediation scripts.
	Storage storage.Config `mapstructure:"storage"`
	Schema  schema.Config  `mapstructure:"schema"`
}

// LoadConfig resolves configuration from, in increasing precedence, struct
// defaults, dir/entity-sync.yaml, dir/.env and the process environment.
func LoadConfig(dir string) (*Config, error) {
	// .env is optional; deployments usually set the environment directly
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	registerDefaults(v, reflect.TypeOf(Config{}), "")

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	}

	// SCHEMA_POLICY -> schema.policy
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would only fail later at runtime.
func (c *Config) Validate() error {
	if _, _, err := c.Schema.StartupPolicy(); err != nil {
		return fmt.Errorf("schema.policy: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: unsupported format %q", c.Log.Format)
	}
	if c.Database.Enabled && c.Database.Name == "" {
		return errors.New("database.name is required when the history store is enabled")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required when publishing is enabled")
	}
	return nil
}

// registerDefaults walks the mapstructure tree and registers every leaf key
// with its default tag, which is also what makes AutomaticEnv see the key.
func registerDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct {
			registerDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
