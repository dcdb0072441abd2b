// Package workload drives a database binding with a YCSB-style key-value
// workload: a load phase that inserts the record set and a run phase that
// executes a read/insert/delete mix against it.
package workload

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/nimburion/ycsb-ravendb/pkg/observability/logger"
	"github.com/nimburion/ycsb-ravendb/pkg/observability/metrics"
	"github.com/nimburion/ycsb-ravendb/pkg/ycsb"
)

// Config holds workload parameters.
type Config struct {
	Table          string
	RecordCount    int
	OperationCount int
	Threads        int
	FieldCount     int
	FieldLength    int

	ReadProportion   float64
	InsertProportion float64
	DeleteProportion float64

	// TargetOPS throttles the run phase to a target operations/second
	// across all workers. Zero means unthrottled.
	TargetOPS int
}

// Factory creates one binding instance. The runner calls it once per worker
// goroutine, honoring the one-instance-per-worker ownership model.
type Factory func() ycsb.DB

// Runner executes workload phases against bindings produced by a Factory.
type Runner struct {
	cfg     Config
	factory Factory
	logger  logger.Logger
}

// NewRunner creates a workload runner.
func NewRunner(cfg Config, factory Factory, log logger.Logger) *Runner {
	return &Runner{cfg: cfg, factory: factory, logger: log}
}

// Load inserts the configured record set, splitting the key range across
// workers.
func (r *Runner) Load(ctx context.Context, props ycsb.Properties) (*Result, error) {
	runID := uuid.NewString()
	r.logger.Info("starting load phase",
		"run_id", runID,
		"records", r.cfg.RecordCount,
		"threads", r.cfg.Threads,
	)

	return r.execute(ctx, runID, "load", props, func(w *worker, i int) {
		key := recordKey(w.keyStart + i)
		w.do("insert", func(ctx context.Context, db ycsb.DB) ycsb.Status {
			return db.Insert(ctx, r.cfg.Table, key, w.nextRecord())
		})
	})
}

// Run executes the configured operation mix. Keys are drawn uniformly from
// the loaded key range.
func (r *Runner) Run(ctx context.Context, props ycsb.Properties) (*Result, error) {
	runID := uuid.NewString()
	r.logger.Info("starting run phase",
		"run_id", runID,
		"operations", r.cfg.OperationCount,
		"threads", r.cfg.Threads,
		"target_ops", r.cfg.TargetOPS,
	)

	return r.execute(ctx, runID, "run", props, func(w *worker, i int) {
		key := recordKey(w.rng.Intn(max(r.cfg.RecordCount, 1)))
		switch w.pickOperation() {
		case "read":
			w.do("read", func(ctx context.Context, db ycsb.DB) ycsb.Status {
				return db.Read(ctx, r.cfg.Table, key, nil, map[string][]byte{})
			})
		case "insert":
			w.do("insert", func(ctx context.Context, db ycsb.DB) ycsb.Status {
				return db.Insert(ctx, r.cfg.Table, key, w.nextRecord())
			})
		case "delete":
			w.do("delete", func(ctx context.Context, db ycsb.DB) ycsb.Status {
				return db.Delete(ctx, r.cfg.Table, key)
			})
		}
	})
}

// execute fans the per-worker operation counts out over Threads workers,
// each owning its own binding instance, and merges their measurements.
func (r *Runner) execute(ctx context.Context, runID, phase string, props ycsb.Properties, op func(w *worker, i int)) (*Result, error) {
	count := r.cfg.RecordCount
	if phase == "run" {
		count = r.cfg.OperationCount
	}

	var limiter *rate.Limiter
	if r.cfg.TargetOPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.TargetOPS), r.cfg.TargetOPS)
	}

	workers := make([]*worker, r.cfg.Threads)
	initErrs := make(chan error, r.cfg.Threads)
	start := time.Now()

	var wg sync.WaitGroup
	for t := 0; t < r.cfg.Threads; t++ {
		share, offset := split(count, r.cfg.Threads, t)
		w := &worker{
			runner:   r,
			ctx:      ctx,
			limiter:  limiter,
			keyStart: offset,
			rng:      rand.New(rand.NewSource(int64(t) + 1)),
			statuses: make(map[string]int64),
		}
		workers[t] = w

		wg.Add(1)
		go func(w *worker, share int) {
			defer wg.Done()

			db := r.factory()
			if err := db.Init(props); err != nil {
				initErrs <- fmt.Errorf("worker init failed: %w", err)
				return
			}
			defer func() {
				if err := db.Cleanup(); err != nil {
					r.logger.Error("worker cleanup failed", "error", err)
				}
			}()
			w.db = db

			for i := 0; i < share; i++ {
				if ctx.Err() != nil {
					return
				}
				op(w, i)
			}
		}(w, share)
	}

	wg.Wait()
	close(initErrs)
	if err := <-initErrs; err != nil {
		return nil, err
	}
	total := time.Since(start)

	var latencies []time.Duration
	statusCounts := make(map[string]int64)
	for _, w := range workers {
		latencies = append(latencies, w.latencies...)
		for status, n := range w.statuses {
			statusCounts[status] += n
		}
	}

	result := summarize(runID, phase, latencies, statusCounts, total)
	r.logger.Info("phase finished",
		"run_id", runID,
		"phase", phase,
		"operations", result.Operations,
		"errors", result.Errors,
		"throughput", result.Throughput,
	)
	return result, nil
}

// worker holds the per-goroutine state: its binding, rng, and measurements.
type worker struct {
	runner   *Runner
	ctx      context.Context
	db       ycsb.DB
	limiter  *rate.Limiter
	keyStart int
	rng      *rand.Rand

	latencies []time.Duration
	statuses  map[string]int64
}

// do runs one operation, applying throttling and recording latency, status
// counts and Prometheus metrics.
func (w *worker) do(name string, fn func(ctx context.Context, db ycsb.DB) ycsb.Status) {
	if w.limiter != nil {
		if err := w.limiter.Wait(w.ctx); err != nil {
			return
		}
	}

	start := time.Now()
	status := fn(w.ctx, w.db)
	elapsed := time.Since(start)

	w.latencies = append(w.latencies, elapsed)
	w.statuses[status.String()]++
	metrics.RecordOperation(name, status.String(), elapsed)
}

// pickOperation draws an operation name according to the configured
// proportions, normalized over their sum.
func (w *worker) pickOperation() string {
	total := w.runner.cfg.ReadProportion + w.runner.cfg.InsertProportion + w.runner.cfg.DeleteProportion
	roll := w.rng.Float64() * total
	if roll < w.runner.cfg.ReadProportion {
		return "read"
	}
	if roll < w.runner.cfg.ReadProportion+w.runner.cfg.InsertProportion {
		return "insert"
	}
	return "delete"
}

// nextRecord builds one record with the configured field shape. Values are
// printable ASCII so they survive the binding's string round-trip intact.
func (w *worker) nextRecord() []ycsb.Field {
	fields := make([]ycsb.Field, w.runner.cfg.FieldCount)
	for i := range fields {
		value := make([]byte, w.runner.cfg.FieldLength)
		for j := range value {
			value[j] = byte(' ' + w.rng.Intn('~'-' '+1))
		}
		fields[i] = ycsb.Field{Name: fmt.Sprintf("field%d", i), Value: value}
	}
	return fields
}

// recordKey maps a record index to its document key.
func recordKey(i int) string {
	return fmt.Sprintf("user%d", i)
}

// split divides count over n workers, giving worker t its share and the
// offset of its first item. The first count%n workers get one extra item.
func split(count, n, t int) (share, offset int) {
	base := count / n
	extra := count % n
	share = base
	if t < extra {
		share++
		offset = t * (base + 1)
		return share, offset
	}
	offset = extra*(base+1) + (t-extra)*base
	return share, offset
}
