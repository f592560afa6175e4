package config

import "fmt"

// OutputConfig selects the files written after a simulation. An empty file
// name disables that output.
type OutputConfig struct {
	Dir        string `json:"dir"`
	LedgerCSV  string `json:"ledger_csv"`
	LedgerJSON string `json:"ledger_json"`
	ProfileCSV string `json:"profile_csv"`
}

// SetDefaults writes the ledger CSV to ./out.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if c.LedgerCSV == "" && c.LedgerJSON == "" && c.ProfileCSV == "" {
		c.LedgerCSV = "simple_charging_schedule.csv"
	}
}

// Validate checks that distinct outputs do not overwrite each other.
func (c OutputConfig) Validate() error {
	seen := map[string]bool{}
	for _, f := range []string{c.LedgerCSV, c.LedgerJSON, c.ProfileCSV} {
		if f == "" {
			continue
		}
		if seen[f] {
			return fmt.Errorf("output file %s used twice", f)
		}
		seen[f] = true
	}
	return nil
}
