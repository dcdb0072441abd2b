package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
}

// ViperLoader implements Loader using Viper for configuration management
type ViperLoader struct {
	configFile string
	envPrefix  string
	flags      *pflag.FlagSet
}

// NewViperLoader creates a new ViperLoader.
// configFile: path to configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (e.g., "YCSB")
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// WithFlags binds a parsed flag set whose values override file and env.
func (l *ViperLoader) WithFlags(flags *pflag.FlagSet) *ViperLoader {
	l.flags = flags
	return l
}

// Load loads configuration with precedence: flags > ENV > file > defaults
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	l.setDefaults(v, defaults)

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	if l.flags != nil {
		if err := l.bindFlags(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (l *ViperLoader) setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("ravendb.url", defaults.RavenDB.URL)
	v.SetDefault("ravendb.operation_timeout", defaults.RavenDB.OperationTimeout)
	v.SetDefault("ravendb.fieldfilter_enabled", defaults.RavenDB.FieldFilterEnabled)

	v.SetDefault("workload.table", defaults.Workload.Table)
	v.SetDefault("workload.record_count", defaults.Workload.RecordCount)
	v.SetDefault("workload.operation_count", defaults.Workload.OperationCount)
	v.SetDefault("workload.threads", defaults.Workload.Threads)
	v.SetDefault("workload.field_count", defaults.Workload.FieldCount)
	v.SetDefault("workload.field_length", defaults.Workload.FieldLength)
	v.SetDefault("workload.read_proportion", defaults.Workload.ReadProportion)
	v.SetDefault("workload.insert_proportion", defaults.Workload.InsertProportion)
	v.SetDefault("workload.delete_proportion", defaults.Workload.DeleteProportion)
	v.SetDefault("workload.target_ops", defaults.Workload.TargetOPS)
}

// bindEnvVars explicitly binds environment variables for nested structs
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("log.level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("log.format", l.prefixedEnv("LOG_FORMAT"))

	v.BindEnv("ravendb.url", l.prefixedEnv("RAVENDB_URL"))
	v.BindEnv("ravendb.operation_timeout", l.prefixedEnv("RAVENDB_OPERATION_TIMEOUT"))
	v.BindEnv("ravendb.fieldfilter_enabled", l.prefixedEnv("RAVENDB_FIELDFILTER_ENABLED"))

	v.BindEnv("workload.table", l.prefixedEnv("WORKLOAD_TABLE"))
	v.BindEnv("workload.record_count", l.prefixedEnv("WORKLOAD_RECORD_COUNT"))
	v.BindEnv("workload.operation_count", l.prefixedEnv("WORKLOAD_OPERATION_COUNT"))
	v.BindEnv("workload.threads", l.prefixedEnv("WORKLOAD_THREADS"))
	v.BindEnv("workload.field_count", l.prefixedEnv("WORKLOAD_FIELD_COUNT"))
	v.BindEnv("workload.field_length", l.prefixedEnv("WORKLOAD_FIELD_LENGTH"))
	v.BindEnv("workload.read_proportion", l.prefixedEnv("WORKLOAD_READ_PROPORTION"))
	v.BindEnv("workload.insert_proportion", l.prefixedEnv("WORKLOAD_INSERT_PROPORTION"))
	v.BindEnv("workload.delete_proportion", l.prefixedEnv("WORKLOAD_DELETE_PROPORTION"))
	v.BindEnv("workload.target_ops", l.prefixedEnv("WORKLOAD_TARGET_OPS"))
}

// bindFlags maps explicitly named flags onto config keys. Only flags the
// user actually set override lower-precedence sources.
func (l *ViperLoader) bindFlags(v *viper.Viper) error {
	bindings := map[string]string{
		"url":             "ravendb.url",
		"table":           "workload.table",
		"record-count":    "workload.record_count",
		"operation-count": "workload.operation_count",
		"threads":         "workload.threads",
		"target":          "workload.target_ops",
		"log-level":       "log.level",
	}
	var bindErr error
	l.flags.Visit(func(f *pflag.Flag) {
		key, ok := bindings[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func (l *ViperLoader) prefixedEnv(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return l.envPrefix + "_" + name
}
