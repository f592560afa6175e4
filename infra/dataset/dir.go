package dataset

import (
	"fmt"
	"os"

	"github.com/kilianp07/cevcharge/config"
	"github.com/kilianp07/cevcharge/core/model"
)

// Scenario is the content of a scenario directory.
type Scenario struct {
	Name       string
	Work       []model.WorkRecord
	Rates      []model.TimeSlotRate
	Parameters map[string]float64
}

// LoadDir reads the tables named by cfg from cfg.Dir. The parameter table is
// optional.
func LoadDir(cfg config.DatasetConfig) (*Scenario, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("dataset directory not configured")
	}
	sc := &Scenario{Name: cfg.Name, Parameters: map[string]float64{}}

	f, err := os.Open(cfg.Path(cfg.WorkFile))
	if err != nil {
		return nil, err
	}
	sc.Work, err = LoadWork(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.WorkFile, err)
	}

	f, err = os.Open(cfg.Path(cfg.TimeFile))
	if err != nil {
		return nil, err
	}
	sc.Rates, err = LoadRates(f, cfg.PriceColumn, cfg.CO2Column)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.TimeFile, err)
	}

	f, err = os.Open(cfg.Path(cfg.ParametersFile))
	switch {
	case os.IsNotExist(err):
		return sc, nil
	case err != nil:
		return nil, err
	}
	sc.Parameters, err = LoadParameters(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.ParametersFile, err)
	}
	return sc, nil
}
