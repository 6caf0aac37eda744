package simulation

// concurrent.go: worker pool sobre (escenario × chunk de trials).
//
// La muestra es read-only y cada unidad escribe un rango disjunto de la
// distribución de su escenario, así que no hay locks en el camino caliente.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

type scenarioJob struct {
	spec domain.ScenarioSpec
	key  uint64
	k    int
	dist domain.Distribution
}

// unit es un rango [lo, hi) de trials de un escenario.
type unit struct {
	job    int
	lo, hi int
}

type unitErr struct {
	job int
	err error
}

// runTrialsConcurrent llena job.dist para cada job. Devuelve los jobs que
// fallaron (índice → error). El error de retorno solo es no-nil si el contexto
// se canceló.
func runTrialsConcurrent(
	ctx context.Context,
	cfg EngineConfig,
	jobs []scenarioJob,
	sample domain.RewardSample,
	seed uint64,
) (map[int]error, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var units []unit
	for i, job := range jobs {
		for lo := 0; lo < len(job.dist); lo += cfg.ChunkSize {
			units = append(units, unit{job: i, lo: lo, hi: min(lo+cfg.ChunkSize, len(job.dist))})
		}
	}
	if workers > len(units) {
		workers = len(units)
	}

	workCh := make(chan unit, len(units))
	errCh := make(chan unitErr, len(units))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stream := newTrialStream()
			resampler := NewResampler(cfg.Reducer)
			for u := range workCh {
				if ctx.Err() != nil {
					continue // drenar
				}
				job := &jobs[u.job]
				for t := u.lo; t < u.hi; t++ {
					v, err := resampler.Resample(stream.reset(seed, job.key, t), sample, job.k)
					if err != nil {
						errCh <- unitErr{job: u.job, err: err}
						break
					}
					job.dist[t] = v
				}
			}
		}()
	}

	for _, u := range units {
		workCh <- u
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(errCh)
	}()

	failed := make(map[int]error)
	for ue := range errCh {
		if _, ok := failed[ue.job]; !ok {
			failed[ue.job] = ue.err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("trials complete",
		"jobs", len(jobs),
		"units", len(units),
		"workers", workers,
		"failed", len(failed),
	)
	return failed, nil
}
