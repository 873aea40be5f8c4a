// Package scenario runs the per-array performance model for every
// decomposition scenario.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/pvforecast/internal/decompose"
	"github.com/chrissnell/pvforecast/internal/log"
	"github.com/chrissnell/pvforecast/internal/pvsystem"
	"github.com/chrissnell/pvforecast/internal/types"
	"github.com/chrissnell/pvforecast/pkg/solar"
)

// PerformanceModel simulates one array.
type PerformanceModel interface {
	Array() pvsystem.ArrayConfig
	Run(ctx context.Context, in pvsystem.Input) (*pvsystem.Result, error)
}

// Decomposer supplies the prepared solar geometry and per-scenario
// irradiance components.
type Decomposer interface {
	Index() (types.Index, error)
	Positions() (solar.Positions, error)
	Decompose(scenario types.Scenario, weather *types.WeatherTable) (decompose.Components, error)
}

// Outcome groups the results of one scenario, ordered like the registry.
type Outcome struct {
	Scenario   types.Scenario
	Components decompose.Components
	Results    []*pvsystem.Result
}

// Runner executes performance models. Models are read-only after
// construction, so concurrent runs share them.
type Runner struct {
	models  []PerformanceModel
	workers int
}

// NewRunner builds one ModelChain per registered array. workers <= 0 selects
// GOMAXPROCS.
func NewRunner(reg *pvsystem.Registry, workers int) *Runner {
	params := reg.Params()
	arrays := reg.Arrays()
	models := make([]PerformanceModel, len(arrays))
	for i, a := range arrays {
		models[i] = pvsystem.NewModelChain(params, a)
	}
	return NewRunnerWithModels(models, workers)
}

// NewRunnerWithModels wraps arbitrary models, in output order.
func NewRunnerWithModels(models []PerformanceModel, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{models: models, workers: workers}
}

// Workers returns the concurrency limit.
func (r *Runner) Workers() int { return r.workers }

// Run simulates every array for one scenario and returns the results keyed
// by array id.
func (r *Runner) Run(ctx context.Context, scenario types.Scenario, in pvsystem.Input) (map[string]*pvsystem.Result, error) {
	ordered, err := r.RunOrdered(ctx, scenario, in)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*pvsystem.Result, len(ordered))
	for _, res := range ordered {
		out[res.ArrayID] = res
	}
	return out, nil
}

// RunOrdered is Run with results in registration order.
func (r *Runner) RunOrdered(ctx context.Context, scenario types.Scenario, in pvsystem.Input) ([]*pvsystem.Result, error) {
	in.Scenario = scenario
	if err := in.Validate(); err != nil {
		return nil, err
	}

	results := make([]*pvsystem.Result, len(r.models))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, m := range r.models {
		i, m := i, m
		g.Go(func() error {
			res, err := runModel(gctx, scenario, m, in)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunAll decomposes the weather for every scenario in the fixed order and
// simulates every (scenario, array) pair concurrently. The first failure
// cancels the remaining runs and is returned.
func (r *Runner) RunAll(ctx context.Context, dec Decomposer, weather *types.WeatherTable) ([]Outcome, error) {
	if err := weather.Validate(); err != nil {
		return nil, err
	}
	idx, err := dec.Index()
	if err != nil {
		return nil, err
	}
	if !idx.Equal(weather.Index) {
		return nil, fmt.Errorf("%w: weather index differs from the prepared index", types.ErrInputValidation)
	}
	pos, err := dec.Positions()
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(types.Scenarios))
	inputs := make([]pvsystem.Input, len(types.Scenarios))
	for s, scenario := range types.Scenarios {
		comp, err := dec.Decompose(scenario, weather)
		if err != nil {
			return nil, fmt.Errorf("error decomposing scenario %s: %w", scenario, err)
		}
		outcomes[s] = Outcome{
			Scenario:   scenario,
			Components: comp,
			Results:    make([]*pvsystem.Result, len(r.models)),
		}
		inputs[s] = pvsystem.Input{
			Scenario:  scenario,
			Index:     weather.Index,
			Positions: pos,
			GHI:       weather.GHI,
			DNI:       comp.DNI,
			DHI:       comp.DHI,
			TempAir:   weather.TempAir,
			WindSpeed: weather.WindSpeed,
		}
		if err := inputs[s].Validate(); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for s := range types.Scenarios {
		for a, m := range r.models {
			s, a, m := s, a, m
			g.Go(func() error {
				res, err := runModel(gctx, types.Scenarios[s], m, inputs[s])
				if err != nil {
					return err
				}
				outcomes[s].Results[a] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Infow("simulated all scenarios", "scenarios", len(types.Scenarios), "arrays", len(r.models),
		"workers", r.workers, "elapsed", time.Since(start))
	return outcomes, nil
}

// runModel runs m and labels failures with scenario and array. Context
// cancellation is passed through unwrapped.
func runModel(ctx context.Context, scenario types.Scenario, m PerformanceModel, in pvsystem.Input) (*pvsystem.Result, error) {
	id := m.Array().ID
	res, err := m.Run(ctx, in)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &types.UpstreamComputationError{Scenario: scenario, ArrayID: id, Err: err}
	}
	res.ArrayID = id
	res.Scenario = scenario
	log.Debugw("model run complete", "scenario", scenario, "array", id)
	return res, nil
}
