package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/poolsim/internal/domain"
	"github.com/alejandrodnm/poolsim/internal/ports"
	"github.com/google/uuid"
)

// RunConfig contiene la configuración de una corrida.
type RunConfig struct {
	Plan       Plan
	TrialCount int
	Engine     EngineConfig
	Mode       domain.ComparisonMode
}

// Runner orquesta una corrida: cargar muestra → simular → comparar → reportar.
// La I/O vive en los ports; Evaluate es puro (módulo aleatoriedad).
type Runner struct {
	cfg        RunConfig
	source     ports.SampleSource
	reporter   ports.Reporter
	storage    ports.RunStorage
	engine     *Engine
	comparator *Comparator
}

// NewRunner crea un Runner. reporter y storage pueden ser nil.
func NewRunner(cfg RunConfig, source ports.SampleSource, reporter ports.Reporter, storage ports.RunStorage) (*Runner, error) {
	cmp, err := NewComparator(cfg.Mode)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		reporter:   reporter,
		storage:    storage,
		engine:     NewEngine(cfg.Engine),
		comparator: cmp,
	}, nil
}

// Run ejecuta la corrida completa y devuelve el reporte.
// Un fallo del reporter o del storage se loguea pero no invalida el reporte.
func (r *Runner) Run(ctx context.Context) (domain.Report, error) {
	sample, err := r.source.LoadSample(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("simulation.Run: load sample: %w", err)
	}
	slog.Info("sample loaded", "blocks", sample.Size())

	report, err := r.Evaluate(ctx, sample)
	if err != nil {
		return domain.Report{}, err
	}

	if r.reporter != nil {
		if err := r.reporter.Report(ctx, report); err != nil {
			slog.Warn("reporter error", "err", err)
		}
	}
	if r.storage != nil {
		if err := r.storage.SaveRun(ctx, report); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("run complete",
		"run_id", report.RunID,
		"comparisons", len(report.Comparisons),
		"failures", len(report.Failures),
		"duration", report.Duration.Round(time.Millisecond),
	)
	return report, nil
}

// Evaluate simula el plan sobre la muestra y arma el reporte.
func (r *Runner) Evaluate(ctx context.Context, sample domain.RewardSample) (domain.Report, error) {
	start := time.Now()

	batch, err := r.engine.SimulateBatch(ctx, r.cfg.Plan.Scenarios, r.cfg.TrialCount, sample)
	if err != nil {
		return domain.Report{}, fmt.Errorf("simulation.Evaluate: %w", err)
	}

	report := domain.Report{
		RunID:      uuid.New().String(),
		CreatedAt:  start.UTC(),
		Seed:       batch.Seed,
		TrialCount: r.cfg.TrialCount,
		Mode:       r.comparator.Mode(),
		Sample: domain.SampleStats{
			Size:    sample.Size(),
			Mean:    sample.Mean(),
			Median:  sample.Median(),
			Buckets: domain.ComputeBucketShares(sample),
		},
		Scenarios:     make(map[string]domain.ScenarioSummary, len(batch.Distributions)),
		Probabilities: make(domain.ProbabilityResult, len(r.cfg.Plan.Comparisons)),
	}

	for _, spec := range r.cfg.Plan.Scenarios {
		dist, ok := batch.Distributions[spec.ID]
		if !ok {
			continue
		}
		report.Scenarios[spec.ID] = domain.ScenarioSummary{
			Spec:       spec,
			BlockCount: batch.BlockCounts[spec.ID],
			Summary:    dist.Summarize(),
		}
	}

	if len(batch.Failures) > 0 {
		report.Failures = make(map[string]string, len(batch.Failures))
		for id, ferr := range batch.Failures {
			report.Failures[id] = ferr.Error()
		}
	}

	for _, c := range r.cfg.Plan.Comparisons {
		res := domain.ComparisonResult{Comparison: c}
		if reason, failed := comparisonBlocked(c, batch); failed {
			res.Skipped = true
			res.Reason = reason
			report.Comparisons = append(report.Comparisons, res)
			continue
		}

		p, err := r.comparator.Compare(batch.Distributions[c.CandidateID], batch.Distributions[c.ReferenceID])
		if err != nil {
			// longitudes distintas: bug del engine, no del escenario
			return domain.Report{}, fmt.Errorf("simulation.Evaluate: compare %s: %w", c.ID, err)
		}
		res.Probability = p
		report.Probabilities[c.ID] = p
		report.Comparisons = append(report.Comparisons, res)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// comparisonBlocked devuelve el motivo si algún lado de la comparación no se simuló.
func comparisonBlocked(c domain.Comparison, batch BatchResult) (string, bool) {
	var reasons []string
	for _, id := range []string{c.CandidateID, c.ReferenceID} {
		if _, ok := batch.Distributions[id]; ok {
			continue
		}
		if ferr, ok := batch.Failures[id]; ok {
			reasons = append(reasons, ferr.Error())
		} else {
			reasons = append(reasons, fmt.Sprintf("scenario %q not in plan", id))
		}
	}
	if len(reasons) == 0 {
		return "", false
	}
	sort.Strings(reasons)
	if len(reasons) == 2 && reasons[0] == reasons[1] {
		reasons = reasons[:1]
	}
	return strings.Join(reasons, "; "), true
}
