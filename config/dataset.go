package config

import (
	"fmt"
	"path/filepath"
)

// DatasetConfig locates the scenario input tables.
type DatasetConfig struct {
	Dir string `json:"dir"`
	// Name labels runs in metrics and the run store. Defaults to the base
	// name of Dir.
	Name           string `json:"name"`
	WorkFile       string `json:"work_file"`
	TimeFile       string `json:"time_file"`
	ParametersFile string `json:"parameters_file"`
	PriceColumn    string `json:"price_column"`
	CO2Column      string `json:"co2_column"`
}

// SetDefaults applies the file and column names of the scenario exports.
func (c *DatasetConfig) SetDefaults() {
	if c.WorkFile == "" {
		c.WorkFile = "work.csv"
	}
	if c.TimeFile == "" {
		c.TimeFile = "time_data.csv"
	}
	if c.ParametersFile == "" {
		c.ParametersFile = "parameters.csv"
	}
	if c.PriceColumn == "" {
		c.PriceColumn = "lambda_buy"
	}
	if c.CO2Column == "" {
		c.CO2Column = "lambda_CO2"
	}
	if c.Name == "" && c.Dir != "" {
		c.Name = filepath.Base(filepath.Clean(c.Dir))
	}
}

// Validate checks that a price and an emissions column are named.
func (c DatasetConfig) Validate() error {
	if c.PriceColumn == c.CO2Column {
		return fmt.Errorf("price_column and co2_column must differ")
	}
	return nil
}

// Path joins a dataset file name with Dir.
func (c DatasetConfig) Path(name string) string {
	return filepath.Join(c.Dir, name)
}
