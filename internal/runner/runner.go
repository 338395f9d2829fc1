// Package runner drives the two pipeline stages: blaming the files at
// HEAD into the log store, and folding stored logs into the truck
// factor.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/truckfactor/internal/blame"
	"github.com/Sumatoshi-tech/truckfactor/internal/decay"
	"github.com/Sumatoshi-tech/truckfactor/internal/factor"
	"github.com/Sumatoshi-tech/truckfactor/internal/filter"
	"github.com/Sumatoshi-tech/truckfactor/internal/logstore"
	"github.com/Sumatoshi-tech/truckfactor/internal/mailmap"
	"github.com/Sumatoshi-tech/truckfactor/internal/observability"
	"github.com/Sumatoshi-tech/truckfactor/internal/ownership"
	"github.com/Sumatoshi-tech/truckfactor/pkg/gitlib"
)

// ErrNoData means there was nothing to select a truck factor from:
// no stored logs, or logs with no attributable lines.
var ErrNoData = errors.New("no blame data to analyze")

// Metrics a computation can walk over.
const (
	MetricKnowledge  = "knowledge"
	MetricAuthorship = "authorship"
)

// GenerateOptions configures the blame stage.
type GenerateOptions struct {
	// RepoPath is the local repository to blame.
	RepoPath string

	Store  *logstore.Store
	Filter *filter.Filter

	// Workers is the number of concurrent blame workers. Each worker
	// opens its own repository handle; libgit2 handles are not safe
	// for shared use.
	Workers int

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.AnalysisMetrics
}

// GenerateLogs blames every admitted file at HEAD and stores the
// incremental text. Files that fail to blame are logged and skipped.
// It returns the number of logs written.
func GenerateLogs(ctx context.Context, opts GenerateOptions) (int, error) {
	ctx, span := opts.Tracer.Start(ctx, "runner.GenerateLogs")
	defer span.End()

	repo, err := gitlib.OpenRepository(opts.RepoPath)
	if err != nil {
		return 0, err
	}

	files, err := repo.ListFiles()
	repo.Free()

	if err != nil {
		return 0, err
	}

	admitted := make([]string, 0, len(files))
	for _, file := range files {
		if opts.Filter.Admit(file) {
			admitted = append(admitted, file)
		}
	}

	opts.Logger.InfoContext(ctx, "blaming files",
		"total", len(files), "admitted", len(admitted))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	paths := make(chan string)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		stored int
	)

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			count := blameWorker(ctx, opts, paths)

			mu.Lock()
			stored += count
			mu.Unlock()
		}()
	}

	for _, file := range admitted {
		select {
		case paths <- file:
		case <-ctx.Done():
			close(paths)
			wg.Wait()

			return stored, fmt.Errorf("generate logs: %w", ctx.Err())
		}
	}

	close(paths)
	wg.Wait()

	opts.Logger.InfoContext(ctx, "blame logs written", "count", stored)

	return stored, nil
}

// blameWorker blames paths until the channel closes, using its own
// repository handle. It returns how many logs it stored.
func blameWorker(ctx context.Context, opts GenerateOptions, paths <-chan string) int {
	repo, err := gitlib.OpenRepository(opts.RepoPath)
	if err != nil {
		opts.Logger.ErrorContext(ctx, "open repository for worker", "error", err)

		return 0
	}
	defer repo.Free()

	stored := 0

	for path := range paths {
		if blameOne(ctx, opts, repo, path) {
			stored++
		}
	}

	return stored
}

func blameOne(ctx context.Context, opts GenerateOptions, repo *gitlib.Repository, path string) bool {
	if opts.Store.Has(path) {
		return true
	}

	done := func() {}
	if opts.Metrics != nil {
		done = opts.Metrics.TrackInflight(ctx, "blame")
	}
	defer done()

	start := time.Now()

	text, err := repo.BlameIncremental(path)

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
	}

	if opts.Metrics != nil {
		opts.Metrics.RecordFile(ctx, "blame", status, time.Since(start))
	}

	if err != nil {
		opts.Logger.WarnContext(ctx, "blame failed", "file", path, "error", err)

		return false
	}

	if err := opts.Store.Write(path, text); err != nil {
		opts.Logger.WarnContext(ctx, "store blame log", "file", path, "error", err)

		return false
	}

	return true
}

// ComputeOptions configures the fold stage.
type ComputeOptions struct {
	Store    *logstore.Store
	Resolver *mailmap.Resolver

	Model decay.Model

	// Metric selects the tally the walk runs over.
	Metric       string
	CriticalLoss float64

	Workers int

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Result is the outcome of one truck-factor computation.
type Result struct {
	Metric       string
	CriticalLoss float64
	Reference    time.Time
	Files        int

	// Entries is the walk over the selected metric. Alternate is the
	// walk over the other metric, included so one run reports both
	// ranked lists. Alternate is nil when the other tally is empty.
	Entries   []factor.Entry
	Alternate []factor.Entry

	Tallies *ownership.Tallies
}

// TruckFactor returns the number of selected contributors.
func (r *Result) TruckFactor() int {
	return len(r.Entries)
}

// AlternateMetric names the metric the Alternate walk ran over.
func (r *Result) AlternateMetric() string {
	if r.Metric == MetricAuthorship {
		return MetricKnowledge
	}

	return MetricAuthorship
}

// Compute parses every stored log concurrently, folds the results into
// global tallies and walks the selection. The fold itself runs after
// all parses have joined, so the outcome is order-independent.
func Compute(ctx context.Context, opts ComputeOptions) (*Result, error) {
	ctx, span := opts.Tracer.Start(ctx, "runner.Compute")
	defer span.End()

	files, err := opts.Store.List()
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, ErrNoData
	}

	collector, err := parseLogs(ctx, opts, files)
	if err != nil {
		return nil, err
	}

	tallies := ownership.NewTallies()

	for _, log := range collector.Logs() {
		tallies.Add(ownership.ComputeFile(log, opts.Model, opts.Resolver))
	}

	result := &Result{
		Metric:       opts.Metric,
		CriticalLoss: opts.CriticalLoss,
		Reference:    opts.Model.Reference,
		Files:        tallies.TotalFiles(),
		Tallies:      tallies,
	}

	switch opts.Metric {
	case MetricAuthorship:
		total := tallies.TotalFiles()
		if total <= 0 {
			return nil, ErrNoData
		}

		result.Entries = factor.FromAuthorship(total, tallies.Authored, opts.CriticalLoss)

		if kt := tallies.TotalKnowledge(); kt > 0 {
			result.Alternate = factor.FromKnowledge(kt, tallies.Knowledge, opts.CriticalLoss)
		}
	default:
		total := tallies.TotalKnowledge()
		if total <= 0 {
			return nil, ErrNoData
		}

		result.Entries = factor.FromKnowledge(total, tallies.Knowledge, opts.CriticalLoss)

		if ft := tallies.TotalFiles(); ft > 0 {
			result.Alternate = factor.FromAuthorship(ft, tallies.Authored, opts.CriticalLoss)
		}
	}

	opts.Logger.InfoContext(ctx, "truck factor computed",
		"metric", result.Metric, "factor", result.TruckFactor(), "files", result.Files)

	return result, nil
}

func parseLogs(ctx context.Context, opts ComputeOptions, files []string) (*logstore.Collector, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	collector := logstore.NewCollector()
	paths := make(chan string)

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for path := range paths {
				log, parseErr := parseOne(opts.Store, path)
				if parseErr != nil {
					opts.Logger.WarnContext(ctx, "parse blame log", "file", path, "error", parseErr)

					continue
				}

				collector.Add(log)
			}
		}()
	}

	for _, file := range files {
		paths <- file
	}

	close(paths)
	wg.Wait()

	if collector.Len() == 0 {
		return nil, ErrNoData
	}

	return collector, nil
}

func parseOne(store *logstore.Store, path string) (*blame.FileLog, error) {
	reader, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return blame.Parse(reader, path)
}
