package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

const defaultChunkSize = 1024

// EngineConfig controla el Scenario Engine.
type EngineConfig struct {
	// Workers del pool. <= 0 usa runtime.NumCPU().
	Workers int
	// Seed opcional. nil = seed aleatorio, que igual queda en BatchResult.Seed.
	Seed *uint64
	// Reducer por trial. nil = Mean.
	Reducer Reducer
	// ChunkSize: trials por unidad de trabajo. <= 0 usa 1024.
	ChunkSize int
}

// Engine simula escenarios sobre una muestra fija. Sin estado entre corridas.
type Engine struct {
	cfg EngineConfig
}

// NewEngine crea un Engine.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Reducer == nil {
		cfg.Reducer = Mean
	}
	return &Engine{cfg: cfg}
}

// BatchResult es la salida de SimulateBatch.
// Cada escenario pedido aparece en Distributions o en Failures, nunca en los dos
// ni en ninguno. La n-ésima repetición de un id se registra como "id#n".
type BatchResult struct {
	Seed          uint64
	Distributions map[string]domain.Distribution
	BlockCounts   map[string]int
	Failures      map[string]error
}

// Simulate corre un único escenario.
func (e *Engine) Simulate(ctx context.Context, spec domain.ScenarioSpec, trialCount int, sample domain.RewardSample) (domain.Distribution, error) {
	res, err := e.SimulateBatch(ctx, []domain.ScenarioSpec{spec}, trialCount, sample)
	if err != nil {
		return nil, err
	}
	if ferr, ok := res.Failures[spec.ID]; ok {
		return nil, ferr
	}
	return res.Distributions[spec.ID], nil
}

// SimulateBatch simula todos los escenarios en paralelo.
//
// Errores de muestra o de trialCount abortan el batch. Errores de un escenario
// (parámetros inválidos, block count degenerado) lo descartan solo a él y quedan
// en Failures como *domain.ScenarioError.
func (e *Engine) SimulateBatch(ctx context.Context, specs []domain.ScenarioSpec, trialCount int, sample domain.RewardSample) (BatchResult, error) {
	if trialCount <= 0 {
		return BatchResult{}, fmt.Errorf("simulation.SimulateBatch: trial count %d: %w", trialCount, domain.ErrInvalidTrialCount)
	}
	if sample.Size() == 0 {
		return BatchResult{}, fmt.Errorf("simulation.SimulateBatch: %w", domain.ErrEmptySample)
	}

	seed := e.seed()
	res := BatchResult{
		Seed:          seed,
		Distributions: make(map[string]domain.Distribution, len(specs)),
		BlockCounts:   make(map[string]int, len(specs)),
		Failures:      make(map[string]error),
	}

	jobs := make([]scenarioJob, 0, len(specs))
	seen := make(map[string]int, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			res.fail(spec.ID, err)
			continue
		}
		if n := seen[spec.ID]; n > 0 {
			seen[spec.ID] = n + 1
			res.fail(fmt.Sprintf("%s#%d", spec.ID, n+1), fmt.Errorf("%w: duplicate id %q", domain.ErrInvalidScenario, spec.ID))
			continue
		}
		seen[spec.ID] = 1

		k, err := spec.BlockCount()
		if err != nil {
			res.fail(spec.ID, err)
			continue
		}
		jobs = append(jobs, scenarioJob{
			spec: spec,
			key:  scenarioKey(spec.ID),
			k:    k,
			dist: make(domain.Distribution, trialCount),
		})
	}

	failed, err := runTrialsConcurrent(ctx, e.cfg, jobs, sample, seed)
	if err != nil {
		return BatchResult{}, fmt.Errorf("simulation.SimulateBatch: %w", err)
	}

	for i, job := range jobs {
		if ferr, ok := failed[i]; ok {
			res.fail(job.spec.ID, ferr)
			continue
		}
		job.spec.ApplyFee(job.dist)
		res.Distributions[job.spec.ID] = job.dist
		res.BlockCounts[job.spec.ID] = job.k
	}

	slog.Debug("batch simulated",
		"scenarios", len(specs),
		"ok", len(res.Distributions),
		"failed", len(res.Failures),
		"trials", trialCount,
		"seed", seed,
	)
	return res, nil
}

func (e *Engine) seed() uint64 {
	if e.cfg.Seed != nil {
		return *e.cfg.Seed
	}
	return rand.Uint64()
}

// fail registra el error de un escenario. Un id vacío se registra como "".
func (r *BatchResult) fail(id string, err error) {
	var serr *domain.ScenarioError
	if !errors.As(err, &serr) {
		err = &domain.ScenarioError{ScenarioID: id, Err: err}
	}
	if _, dup := r.Failures[id]; dup {
		return
	}
	r.Failures[id] = err
	slog.Warn("scenario rejected", "scenario", id, "err", err)
}
