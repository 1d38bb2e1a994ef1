// Package categorizer assigns category labels to import decisions. Known
// merchants are answered from a cache built out of confirmed expenses; the
// rest go to an AI classification service in bounded concurrent batches,
// falling back to the generic category when the service is unavailable.
package categorizer

import (
	"context"
	"sync"
	"time"

	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
	"github.com/rafaelvasco/dindinho/internal/parsererror"
	"github.com/rafaelvasco/dindinho/internal/store"
)

const (
	// DefaultBatchSize is how many descriptions go into one service call.
	DefaultBatchSize = 20
	// DefaultConcurrency bounds the number of in-flight service calls.
	DefaultConcurrency = 3
	// DefaultMaxAttempts is the per-batch retry budget.
	DefaultMaxAttempts = 3
	// DefaultRetryBase is the first retry delay; it doubles per attempt.
	DefaultRetryBase = 500 * time.Millisecond
)

// Orchestrator coordinates cache lookups and batched AI classification.
// The cache lives for the orchestrator's lifetime: confirmed expenses seed
// it and every successful service answer is written back, so a description
// is classified at most once per run even across Categorize calls.
type Orchestrator struct {
	client      AIClient
	store       store.Store
	logger      logging.Logger
	batchSize   int
	concurrency int
	maxAttempts int
	retryBase   time.Duration

	mu    sync.Mutex
	cache map[string]string
}

// Option adjusts an Orchestrator.
type Option func(*Orchestrator)

// WithBatchSize overrides the per-call batch size.
func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithConcurrency overrides the worker pool size.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRetry overrides the retry budget and base delay.
func WithRetry(attempts int, base time.Duration) Option {
	return func(o *Orchestrator) {
		if attempts > 0 {
			o.maxAttempts = attempts
		}
		if base > 0 {
			o.retryBase = base
		}
	}
}

// NewOrchestrator creates a categorization orchestrator. A nil client
// disables the service; every unknown description then falls back to the
// generic category.
func NewOrchestrator(client AIClient, s store.Store, logger logging.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.GetLogger()
	}
	o := &Orchestrator{
		client:      client,
		store:       s,
		logger:      logger,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		maxAttempts: DefaultMaxAttempts,
		retryBase:   DefaultRetryBase,
		cache:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Categorize fills in the Category of every import-eligible decision, in
// place. Subscription matches always get the subscriptions label. Other
// actions are left untouched. Service failures never fail the call: the
// affected decisions fall back to the generic category after the retry
// budget is spent.
func (o *Orchestrator) Categorize(ctx context.Context, decisions []models.ImportDecision) error {
	if err := o.seedCache(ctx); err != nil {
		return err
	}

	// Collect the decisions that still need the service, deduplicating
	// descriptions so one merchant is classified once per run.
	pendingByDesc := make(map[string][]int)
	var unknown []string
	o.mu.Lock()
	for i := range decisions {
		switch decisions[i].ProposedAction {
		case models.ActionSubscriptionMatch:
			decisions[i].Category = models.CategorySubscriptions
		case models.ActionImport:
			desc := decisions[i].Transaction.NormalizedDescription
			if cat, ok := o.cache[desc]; ok {
				decisions[i].Category = cat
				continue
			}
			if _, seen := pendingByDesc[desc]; !seen {
				unknown = append(unknown, desc)
			}
			pendingByDesc[desc] = append(pendingByDesc[desc], i)
		}
	}
	o.mu.Unlock()

	if len(unknown) == 0 {
		return nil
	}

	labels, resolved, err := o.classifyAll(ctx, unknown)
	if err != nil {
		return err
	}

	o.mu.Lock()
	for i, desc := range unknown {
		for _, idx := range pendingByDesc[desc] {
			decisions[idx].Category = labels[i]
		}
		// Fallback labels are not remembered: a later call should get a
		// fresh chance once the service recovers.
		if resolved[i] {
			o.cache[desc] = labels[i]
		}
	}
	o.mu.Unlock()
	return nil
}

// seedCache merges the category of every human-confirmed expense into the
// run cache. Service answers written during earlier calls stay in place.
func (o *Orchestrator) seedCache(ctx context.Context) error {
	if o.store == nil {
		return nil
	}
	expenses, err := o.store.Expenses(ctx)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range expenses {
		if e.CategoryConfirmed {
			o.cache[e.NormalizedDescription] = e.Category
		}
	}
	return nil
}

// classifyAll splits descriptions into batches and runs them through a
// bounded worker pool, reassembling results positionally. The second slice
// flags, per description, whether the label came from the service rather
// than from a fallback.
func (o *Orchestrator) classifyAll(ctx context.Context, descriptions []string) ([]string, []bool, error) {
	if o.client == nil {
		o.logger.Info("Classification service disabled, using fallback category",
			logging.Field{Key: "descriptions", Value: len(descriptions)})
		return fallbackLabels(len(descriptions)), make([]bool, len(descriptions)), nil
	}

	type batch struct {
		start int
		descs []string
	}
	var batches []batch
	for start := 0; start < len(descriptions); start += o.batchSize {
		end := start + o.batchSize
		if end > len(descriptions) {
			end = len(descriptions)
		}
		batches = append(batches, batch{start: start, descs: descriptions[start:end]})
	}

	labels := make([]string, len(descriptions))
	resolved := make([]bool, len(descriptions))
	jobs := make(chan batch)
	var wg sync.WaitGroup

	workers := o.concurrency
	if workers > len(batches) {
		workers = len(batches)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				result, ok := o.classifyBatch(ctx, b.descs)
				copy(labels[b.start:], result)
				for i := range b.descs {
					resolved[b.start+i] = ok
				}
			}
		}()
	}
	for _, b := range batches {
		jobs <- b
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return labels, resolved, nil
}

// classifyBatch retries one service call with doubling delays, coercing
// unknown labels on success and falling back to the generic category once
// the retry budget runs out. The bool reports whether the service answered.
func (o *Orchestrator) classifyBatch(ctx context.Context, descs []string) ([]string, bool) {
	var lastErr error
	delay := o.retryBase
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		result, err := o.client.ClassifyBatch(ctx, descs)
		if err == nil {
			out := make([]string, len(descs))
			for i := range descs {
				if i < len(result) {
					out[i] = models.CoerceCategory(result[i])
				} else {
					out[i] = models.CategoryOther
				}
			}
			return out, true
		}
		lastErr = err
		o.logger.WithError(err).Warn("Classification attempt failed",
			logging.Field{Key: "attempt", Value: attempt},
			logging.Field{Key: "batch_size", Value: len(descs)})

		if attempt == o.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fallbackLabels(len(descs)), false
		case <-time.After(delay):
		}
		delay *= 2
	}

	o.logger.WithError(&parsererror.ClassificationServiceError{
		Attempts: o.maxAttempts,
		Err:      lastErr,
	}).Error("Classification gave up, using fallback category",
		logging.Field{Key: "batch_size", Value: len(descs)})
	return fallbackLabels(len(descs)), false
}

func fallbackLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = models.CategoryOther
	}
	return out
}
