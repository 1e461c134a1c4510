package screening

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/ats-screener/internal/ai"
	"github.com/spigell/ats-screener/internal/logger"
	"github.com/spigell/ats-screener/internal/notify"
	"github.com/spigell/ats-screener/internal/resume"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultThreshold   = 79
	DefaultConcurrency = 1
)

// ErrNoRequest is returned when Evaluate is called without a URL list.
var ErrNoRequest = errors.New("resume urls are required")

type Resolver interface {
	Resolve(ctx context.Context, url string) resume.Reference
}

type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type Scorer interface {
	Score(ctx context.Context, resumeText string) (*ai.Assessment, error)
}

type Notifier interface {
	Notify(ctx context.Context, to string, score int) error
}

// Recorder receives one observation per finished item.
type Recorder interface {
	ObserveEvaluation(outcome string, score *int, notification string)
}

// Deps aggregates the pipeline stages used by the Screener.
type Deps struct {
	Resolver Resolver
	Fetcher  Fetcher
	Scorer   Scorer
	// Notifier may be nil, passing resumes are then recorded as skipped.
	Notifier Notifier
	Recorder Recorder
	Logger   *zap.Logger

	// ExtractText and ExtractEmail default to the resume package implementations.
	ExtractText  func(data []byte) (string, error)
	ExtractEmail func(text string) (string, bool)
}

// Config tunes a Screener.
type Config struct {
	// Threshold is the lowest passing score. Nil means DefaultThreshold, 0 passes everyone.
	Threshold *int
	// Concurrency below 1 means DefaultConcurrency.
	Concurrency int
}

// Screener runs the resume pipeline over batches of URLs.
type Screener struct {
	deps        Deps
	threshold   int
	concurrency int
	logger      *zap.Logger
}

func New(cfg Config, deps Deps) (*Screener, error) {
	switch {
	case deps.Resolver == nil:
		return nil, errors.New("resolver is required")
	case deps.Fetcher == nil:
		return nil, errors.New("fetcher is required")
	case deps.Scorer == nil:
		return nil, errors.New("scorer is required")
	}

	if deps.ExtractText == nil {
		deps.ExtractText = resume.ExtractText
	}
	if deps.ExtractEmail == nil {
		deps.ExtractEmail = resume.ExtractEmail
	}

	threshold := DefaultThreshold
	if cfg.Threshold != nil {
		threshold = *cfg.Threshold
	}
	if threshold < ai.MinScore || threshold > ai.MaxScore {
		return nil, fmt.Errorf("threshold %d is outside %d..%d", threshold, ai.MinScore, ai.MaxScore)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Screener{
		deps:        deps,
		threshold:   threshold,
		concurrency: concurrency,
		logger:      logger.WithFields(deps.Logger),
	}, nil
}

func (s *Screener) Threshold() int {
	return s.threshold
}

// Evaluate screens every URL and returns one result per URL in input order.
// Item failures become results. Only a missing request or a cancelled context
// is returned as an error.
func (s *Screener) Evaluate(ctx context.Context, urls []string) ([]Result, error) {
	if urls == nil {
		return nil, ErrNoRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation not started: %w", err)
	}

	results := make([]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, raw := range urls {
		g.Go(func() error {
			results[i] = s.evaluateItem(ctx, i, raw)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation interrupted: %w", err)
	}

	s.logSummary(results)

	return results, nil
}

func (s *Screener) evaluateItem(ctx context.Context, index int, raw string) (result Result) {
	log := s.logger.With(logger.ItemFields(index, raw)...)
	result.URL = raw

	defer func() {
		if r := recover(); r != nil {
			log.Error("resume evaluation panicked", zap.Any("panic", r))
			result = Result{URL: result.URL, Outcome: OutcomeError, Err: fmt.Errorf("%v", r)}
		}
		s.record(result)
	}()

	return s.pipeline(ctx, log, raw)
}

func (s *Screener) pipeline(ctx context.Context, log *zap.Logger, raw string) Result {
	ref := s.deps.Resolver.Resolve(ctx, raw)
	if !ref.Valid {
		log.Info("resume url rejected")
		return Result{URL: raw, Outcome: OutcomeInvalidURL}
	}

	result := Result{URL: ref.URL}

	data, err := s.deps.Fetcher.Download(ctx, ref.URL)
	if err != nil {
		if errors.Is(err, resume.ErrNoDocument) {
			log.Info("resume download failed", zap.Error(err))
			result.Outcome = OutcomeDownloadFailed
			return result
		}
		return failed(log, result, err)
	}

	text, err := s.deps.ExtractText(data)
	if err != nil {
		return failed(log, result, err)
	}

	email, ok := s.deps.ExtractEmail(text)
	if !ok {
		log.Info("no contact found in resume")
		result.Outcome = OutcomeNoEmail
		return result
	}

	assessment, err := s.deps.Scorer.Score(ctx, text)
	if err != nil {
		return failed(log, result, err)
	}

	score := assessment.Score
	result.Score = &score
	result.Email = &email

	log.Info("resume scored", zap.Int("score", score), zap.Int("threshold", s.threshold))

	if score < s.threshold {
		result.Outcome = OutcomeBelowThreshold
		return result
	}

	result.Outcome = OutcomePassed
	result.Notification = s.notify(ctx, log, email, score)
	return result
}

func (s *Screener) notify(ctx context.Context, log *zap.Logger, email string, score int) Notification {
	if s.deps.Notifier == nil {
		return NotificationSkipped
	}

	err := s.deps.Notifier.Notify(ctx, email, score)
	switch {
	case err == nil:
		return NotificationSent
	case errors.Is(err, notify.ErrDisabled):
		log.Debug("notification skipped", zap.Error(err))
		return NotificationSkipped
	default:
		// The candidate still passed, a lost e-mail does not change the result.
		log.Warn("notification failed", zap.Error(err))
		return NotificationFailed
	}
}

func failed(log *zap.Logger, result Result, err error) Result {
	log.Warn("resume evaluation failed", zap.Error(err))
	return Result{URL: result.URL, Outcome: OutcomeError, Err: err}
}

func (s *Screener) record(result Result) {
	if s.deps.Recorder == nil {
		return
	}
	s.deps.Recorder.ObserveEvaluation(result.Outcome.String(), result.Score, result.Notification.String())
}

func (s *Screener) logSummary(results []Result) {
	counts := make(map[Outcome]int)
	notified := 0
	for _, r := range results {
		counts[r.Outcome]++
		if r.Notification == NotificationSent {
			notified++
		}
	}

	s.logger.Info("screening batch",
		zap.Int("total", len(results)),
		zap.Int("passed", counts[OutcomePassed]),
		zap.Int("below_threshold", counts[OutcomeBelowThreshold]),
		zap.Int("invalid_url", counts[OutcomeInvalidURL]),
		zap.Int("download_failed", counts[OutcomeDownloadFailed]),
		zap.Int("no_email", counts[OutcomeNoEmail]),
		zap.Int("errors", counts[OutcomeError]),
		zap.Int("notified", notified),
	)
}
