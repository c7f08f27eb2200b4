package batch

import (
	"context"
	"log/slog"
	"time"

	"scribe/internal/logging"
	"scribe/internal/ocr"
	"scribe/internal/retry"
)

const (
	defaultConcurrency = 4
	defaultCallTimeout = 120 * time.Second
)

// SleepFunc waits out a retry delay, returning early with the context error if
// the context expires first. Tests inject a manual implementation.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Scheduler fans work items out to the OCR client with bounded concurrency.
// Each batch run is independent; a Scheduler holds no mutable state between
// runs and may serve concurrent Run calls.
type Scheduler struct {
	client      ocr.Client
	policy      retry.Policy
	concurrency int
	callTimeout time.Duration
	logger      *slog.Logger
	sleep       SleepFunc
	now         func() time.Time
}

// SchedulerOption configures optional scheduler behavior.
type SchedulerOption func(*Scheduler)

// WithConcurrency bounds the number of in-flight backend calls.
func WithConcurrency(limit int) SchedulerOption {
	return func(s *Scheduler) {
		if limit > 0 {
			s.concurrency = limit
		}
	}
}

// WithCallTimeout bounds a single backend call.
func WithCallTimeout(timeout time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.callTimeout = timeout
		}
	}
}

// WithPolicy overrides the retry policy.
func WithPolicy(policy retry.Policy) SchedulerOption {
	return func(s *Scheduler) {
		s.policy = policy
	}
}

// WithSleeper overrides how retry delays are waited out (used in tests).
func WithSleeper(sleep SleepFunc) SchedulerOption {
	return func(s *Scheduler) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithClock overrides the time source for attempt timestamps (used in tests).
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler constructs a scheduler around the provided backend client.
func NewScheduler(client ocr.Client, logger *slog.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		client:      client,
		policy:      retry.Default(),
		concurrency: defaultConcurrency,
		callTimeout: defaultCallTimeout,
		logger:      logger,
		sleep:       sleepContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s
}

// Run processes every work item and returns one terminal result per item, in
// input order. Cancelling ctx stops new attempts from starting and fails all
// non-terminal items with a cancelled error; backend calls already issued
// finish on their own timeout and their results are discarded.
func (s *Scheduler) Run(ctx context.Context, items []WorkItem) BatchResult {
	started := s.now()
	results := make([]ItemResult, len(items))

	sem := make(chan struct{}, s.concurrency)
	done := make(chan int, len(items))
	for i := range items {
		go func(idx int) {
			results[idx] = s.runItem(ctx, items[idx], sem)
			done <- idx
		}(i)
	}
	for range items {
		<-done
	}

	aggregated := Aggregate(results)
	aggregated.Elapsed = s.now().Sub(started)
	s.logger.Info("batch complete",
		logging.Int("items", len(items)),
		logging.Int("succeeded", aggregated.Succeeded),
		logging.Int("failed", aggregated.Failed),
		logging.Duration("elapsed", aggregated.Elapsed))
	return aggregated
}

// runItem drives one item to a terminal state. Attempts are strictly
// sequential within an item; the semaphore is held only while a call is in
// flight, never while waiting out a retry delay.
func (s *Scheduler) runItem(ctx context.Context, item WorkItem, sem chan struct{}) ItemResult {
	logger := s.logger.With(logging.String(logging.FieldItemID, item.ID))
	result := ItemResult{
		ID:     item.ID,
		Source: item.Source,
		Title:  item.Title,
		Status: StatusPending,
	}

	for {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return s.cancelItem(result, ctx.Err())
		}
		if ctx.Err() != nil {
			<-sem
			return s.cancelItem(result, ctx.Err())
		}

		attempt := Attempt{
			ItemID:    item.ID,
			Number:    len(result.Attempts) + 1,
			StartedAt: s.now(),
		}
		result.Status = StatusInFlight
		payload, callErr := s.invoke(ctx, item)
		<-sem

		if callErr == nil {
			result.Attempts = append(result.Attempts, attempt)
			result.Status = StatusSucceeded
			result.Payload = payload
			result.AttemptsUsed = attempt.Number
			logger.Info("item succeeded", logging.Int("attempts", attempt.Number))
			return result
		}

		record := ocr.Classify(callErr)
		attempt.Err = record
		result.Attempts = append(result.Attempts, attempt)

		if record.Kind == ocr.KindCancelled {
			return s.cancelItem(result, callErr)
		}

		decision := s.policy.Decide(record, attempt.Number)
		if !decision.Retry {
			result.Status = StatusFailed
			result.Err = record
			result.AttemptsUsed = attempt.Number
			logger.Warn("item failed",
				logging.String("kind", string(record.Kind)),
				logging.Int("attempts", attempt.Number),
				logging.Error(record))
			return result
		}

		result.Status = StatusRetryWait
		logger.Info("retrying item",
			logging.String("kind", string(record.Kind)),
			logging.Int("attempt", attempt.Number),
			logging.Duration("delay", decision.Delay))
		if err := s.sleep(ctx, decision.Delay); err != nil {
			return s.cancelItem(result, err)
		}
	}
}

// invoke issues one backend call bounded by the call timeout. The call context
// intentionally survives batch cancellation: an issued call completes or times
// out on its own, and the select discards its eventual result.
func (s *Scheduler) invoke(ctx context.Context, item WorkItem) (*ocr.Result, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)

	type outcome struct {
		payload *ocr.Result
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		defer cancel()
		payload, err := s.client.Process(callCtx, item.Source, item.Options)
		done <- outcome{payload: payload, err: err}
	}()

	select {
	case out := <-done:
		return out.payload, out.err
	case <-ctx.Done():
		return nil, ocr.WrapError(ocr.KindCancelled, "batch cancelled", ctx.Err())
	}
}

func (s *Scheduler) cancelItem(result ItemResult, cause error) ItemResult {
	result.Status = StatusFailed
	result.Err = ocr.WrapError(ocr.KindCancelled, "batch cancelled before item finished", cause)
	result.AttemptsUsed = len(result.Attempts)
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
