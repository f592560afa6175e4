// Package dataset reads scenario tables exported by the fleet planning tools.
//
// A scenario directory holds three CSV files:
//
//	work.csv        Location,EV,<one column per slot>
//	time_data.csv   one row per slot with price and emissions columns
//	parameters.csv  Parameter,Value
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/cevcharge/core/charging"
	"github.com/kilianp07/cevcharge/core/model"
)

// LoadWork reads a wide work table. The slot of a load column is its
// position after the Location and EV columns. Empty cells count as zero and
// only non-zero loads are returned.
func LoadWork(r io.Reader) ([]model.WorkRecord, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: work header: %v", charging.ErrDataAlignment, err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("%w: work table needs Location, EV and at least one slot column", charging.ErrDataAlignment)
	}
	var out []model.WorkRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: work line %d: %v", charging.ErrDataAlignment, line, err)
		}
		loc, veh := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		for i, cell := range row[2:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: work line %d column %s: %v", charging.ErrDataAlignment, line, header[i+2], err)
			}
			if v == 0 {
				continue
			}
			out = append(out, model.WorkRecord{Location: loc, Vehicle: veh, Slot: i, LoadKWh: v})
		}
	}
	return out, nil
}

// LoadRates reads the time table and returns one rate per row, indexed by
// row position. The price and emissions columns are located by name.
func LoadRates(r io.Reader, priceColumn, co2Column string) ([]model.TimeSlotRate, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: time header: %v", charging.ErrDataAlignment, err)
	}
	pi, ci := indexOf(header, priceColumn), indexOf(header, co2Column)
	if pi < 0 {
		return nil, fmt.Errorf("%w: time table has no %q column", charging.ErrDataAlignment, priceColumn)
	}
	if ci < 0 {
		return nil, fmt.Errorf("%w: time table has no %q column", charging.ErrDataAlignment, co2Column)
	}
	var out []model.TimeSlotRate
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: time line %d: %v", charging.ErrDataAlignment, line, err)
		}
		price, err := parseCell(row[pi])
		if err != nil {
			return nil, fmt.Errorf("%w: time line %d %s: %v", charging.ErrDataAlignment, line, priceColumn, err)
		}
		co2, err := parseCell(row[ci])
		if err != nil {
			return nil, fmt.Errorf("%w: time line %d %s: %v", charging.ErrDataAlignment, line, co2Column, err)
		}
		out = append(out, model.TimeSlotRate{Slot: len(out), Price: price, CO2Factor: co2})
	}
	return out, nil
}

// LoadParameters reads a Parameter,Value table. Rows whose value is not a
// finite number are skipped.
func LoadParameters(r io.Reader) (map[string]float64, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("parameters header: %w", err)
	}
	ni, vi := indexOf(header, "Parameter"), indexOf(header, "Value")
	if ni < 0 || vi < 0 {
		return nil, fmt.Errorf("parameters table needs Parameter and Value columns, got %v", header)
	}
	out := make(map[string]float64)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parameters: %w", err)
		}
		v, err := parseCell(row[vi])
		if err != nil || strings.TrimSpace(row[vi]) == "" {
			continue
		}
		out[strings.TrimSpace(row[ni])] = v
	}
	return out, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return cr
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
			return i
		}
	}
	return -1
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}
