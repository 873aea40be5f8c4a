package app

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/pvforecast/internal/aggregate"
	"github.com/chrissnell/pvforecast/internal/types"
)

// Report summarises a finished run.
type Report struct {
	RunID     string
	Output    string
	Rows      int
	Columns   int
	Scenarios []ScenarioSummary
}

// ScenarioSummary is the plant-level AC yield of one scenario.
type ScenarioSummary struct {
	Scenario       types.Scenario
	EnergyKWh      float64
	PeakW          float64
	Days           int
	DailyMeanKWh   float64
	DailyStdDevKWh float64
}

// summarize integrates ALL_AC_POWER per scenario. Each sample is held until
// the next timestamp; the last one reuses the preceding step. NaN samples
// contribute nothing. Days are calendar days in tz.
func summarize(t *aggregate.Table, tz *time.Location) *Report {
	report := &Report{Rows: t.Rows(), Columns: len(t.Names()) + 1}
	hours := stepHours(t.Index)

	for _, s := range types.Scenarios {
		power, ok := t.Column(aggregate.Key{Field: aggregate.TotalACField, Scenario: s})
		if !ok {
			continue
		}

		var days []string
		energy := make(map[string]float64)
		var valid []float64
		for i, p := range power {
			day := t.Index[i].In(tz).Format(time.DateOnly)
			if _, seen := energy[day]; !seen {
				days = append(days, day)
				energy[day] = 0
			}
			if math.IsNaN(p) {
				continue
			}
			energy[day] += p * hours[i] / 1000
			valid = append(valid, p)
		}

		daily := make([]float64, len(days))
		for i, d := range days {
			daily[i] = energy[d]
		}

		summary := ScenarioSummary{
			Scenario: s,
			Days:     len(days),
			PeakW:    math.NaN(),
		}
		if len(daily) > 0 {
			summary.EnergyKWh = floats.Sum(daily)
			summary.DailyMeanKWh = stat.Mean(daily, nil)
		}
		if len(daily) > 1 {
			summary.DailyStdDevKWh = stat.StdDev(daily, nil)
		}
		if len(valid) > 0 {
			summary.PeakW = floats.Max(valid)
		}
		report.Scenarios = append(report.Scenarios, summary)
	}
	return report
}

// stepHours returns the duration each sample of idx stands for, in hours.
func stepHours(idx types.Index) []float64 {
	out := make([]float64, len(idx))
	for i := range idx {
		switch {
		case i+1 < len(idx):
			out[i] = idx[i+1].Sub(idx[i]).Hours()
		case i > 0:
			out[i] = out[i-1]
		default:
			out[i] = 1
		}
	}
	return out
}
