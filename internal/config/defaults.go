package config

import (
	"github.com/leapstack-labs/gaiac/pkg/gaia"
	"github.com/leapstack-labs/gaiac/pkg/ism"
)

// Output format names.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Default configuration values.
const (
	DefaultOutput = OutputTable
)

// ApplyDefaults fills unset fields of a Config with the defaults.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.Compile.Engine == "" {
		c.Compile.Engine = gaia.DefaultEngine
	}
	if c.Compile.PSM == "" {
		c.Compile.PSM = gaia.DefaultPSM
	}
	if c.Merge.FieldOverlapThreshold == 0 {
		c.Merge.FieldOverlapThreshold = ism.DefaultFieldOverlapThreshold
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
}
