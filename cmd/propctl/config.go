package main

import (
	"fmt"
	"strings"

	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/property"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of environment variables that override the
// configuration, e.g. PROPCTL_BACKEND or PROPCTL_POSTGRES_DSN.
const envPrefix = "PROPCTL"

// Config is the configuration of propctl.
type Config struct {
	Backend    string `mapstructure:"backend"`
	DataDir    string `mapstructure:"data_dir"`
	Namespace  string `mapstructure:"namespace"`
	Exclusive  bool   `mapstructure:"exclusive"`
	Interfaces string `mapstructure:"interfaces"`
	LogLevel   string `mapstructure:"log_level"`

	Postgres struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"postgres"`

	DynamoDB struct {
		Table    string `mapstructure:"table"`
		Endpoint string `mapstructure:"endpoint"`
		Region   string `mapstructure:"region"`
	} `mapstructure:"dynamodb"`

	S3 struct {
		Bucket   string `mapstructure:"bucket"`
		Endpoint string `mapstructure:"endpoint"`
		Region   string `mapstructure:"region"`
	} `mapstructure:"s3"`
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"backend":    "backend",
	"data-dir":   "data_dir",
	"namespace":  "namespace",
	"exclusive":  "exclusive",
	"interfaces": "interfaces",
	"log-level":  "log_level",
}

// loadConfig builds the configuration from, in increasing order of
// precedence, defaults, the config file, the environment and flags.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	v.SetDefault("backend", "pebble")
	v.SetDefault("data_dir", "./propctl-data")
	v.SetDefault("namespace", property.DefaultNamespace)
	v.SetDefault("log_level", "warn")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("dynamodb.table", "propertykit")
	v.SetDefault("dynamodb.endpoint", "")
	v.SetDefault("dynamodb.region", "us-east-1")
	v.SetDefault("s3.bucket", "propertykit")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}

	if file, _ := cmd.Flags().GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fault.InvalidArgument("failed to read config file: %s", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fault.InvalidArgument("failed to unmarshal config: %s", err)
	}

	return &cfg, nil
}
