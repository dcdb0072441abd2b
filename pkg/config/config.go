// Package config loads tool configuration with precedence ENV > file >
// defaults, backed by Viper.
package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config is the root configuration for the benchmark tool.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	RavenDB  RavenDBConfig  `mapstructure:"ravendb"`
	Workload WorkloadConfig `mapstructure:"workload"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RavenDBConfig configures the RavenDB binding.
type RavenDBConfig struct {
	// URL of the RavenDB server. Must start with "http://"; the binding
	// treats any other value as a fatal configuration error.
	URL string `mapstructure:"url"`

	// OperationTimeout bounds each backend round trip.
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`

	// FieldFilterEnabled makes reads honor the requested field subset
	// instead of returning every field.
	FieldFilterEnabled bool `mapstructure:"fieldfilter_enabled"`
}

// WorkloadConfig configures the workload driver.
type WorkloadConfig struct {
	Table            string  `mapstructure:"table"`
	RecordCount      int     `mapstructure:"record_count"`
	OperationCount   int     `mapstructure:"operation_count"`
	Threads          int     `mapstructure:"threads"`
	FieldCount       int     `mapstructure:"field_count"`
	FieldLength      int     `mapstructure:"field_length"`
	ReadProportion   float64 `mapstructure:"read_proportion"`
	InsertProportion float64 `mapstructure:"insert_proportion"`
	DeleteProportion float64 `mapstructure:"delete_proportion"`

	// TargetOPS throttles the run to a target operations/second across all
	// workers. Zero means unthrottled.
	TargetOPS int `mapstructure:"target_ops"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RavenDB: RavenDBConfig{
			URL:              "http://localhost:10301",
			OperationTimeout: 5 * time.Second,
		},
		Workload: WorkloadConfig{
			Table:            "usertable",
			RecordCount:      1000,
			OperationCount:   1000,
			Threads:          1,
			FieldCount:       10,
			FieldLength:      100,
			ReadProportion:   0.95,
			InsertProportion: 0.05,
		},
	}
}

// Validate checks configuration consistency. The ravendb.url scheme is
// deliberately not validated here: the binding performs that check itself
// and exits the process, matching the harness contract.
func (c *Config) Validate() error {
	if c.Workload.RecordCount < 0 {
		return fmt.Errorf("workload.record_count must not be negative")
	}
	if c.Workload.OperationCount < 0 {
		return fmt.Errorf("workload.operation_count must not be negative")
	}
	if c.Workload.Threads < 1 {
		return fmt.Errorf("workload.threads must be at least 1")
	}
	if c.Workload.FieldCount < 1 {
		return fmt.Errorf("workload.field_count must be at least 1")
	}
	if c.Workload.FieldLength < 1 {
		return fmt.Errorf("workload.field_length must be at least 1")
	}
	if c.Workload.TargetOPS < 0 {
		return fmt.Errorf("workload.target_ops must not be negative")
	}

	for _, p := range []struct {
		name  string
		value float64
	}{
		{"workload.read_proportion", c.Workload.ReadProportion},
		{"workload.insert_proportion", c.Workload.InsertProportion},
		{"workload.delete_proportion", c.Workload.DeleteProportion},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", p.name)
		}
	}
	if c.Workload.ReadProportion+c.Workload.InsertProportion+c.Workload.DeleteProportion <= 0 {
		return fmt.Errorf("workload proportions must sum to a positive value")
	}

	if c.RavenDB.OperationTimeout <= 0 {
		return fmt.Errorf("ravendb.operation_timeout must be positive")
	}
	return nil
}

// BindingProperties renders the RavenDB section as the flat property set
// the binding consumes at Init time.
func (c *Config) BindingProperties() map[string]string {
	return map[string]string{
		"ravendb.url":                 c.RavenDB.URL,
		"ravendb.operation_timeout":   c.RavenDB.OperationTimeout.String(),
		"ravendb.fieldfilter.enabled": strconv.FormatBool(c.RavenDB.FieldFilterEnabled),
	}
}
