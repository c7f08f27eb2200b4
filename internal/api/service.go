package api

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"scribe/internal/artifact"
	"scribe/internal/batch"
	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/ocr"
	"scribe/internal/resolve"
	"scribe/internal/retry"
)

// BatchParams configures one batch run. Input names a file, directory, or URL;
// URLs submits an explicit remote list instead and takes precedence when set.
// Pointer fields override the configured defaults when non-nil.
type BatchParams struct {
	Input         string
	URLs          []string
	OutputPath    string
	Concurrency   int
	IncludeImages *bool
	Recursive     *bool
	AllowEmpty    *bool
	// SkipArtifact suppresses the output artifact; callers receive the full
	// payload in the response instead.
	SkipArtifact bool
}

// Service runs batches end to end: resolve inputs, schedule backend calls, and
// write the aggregated artifact. It is safe for concurrent use.
type Service struct {
	cfg    *config.Config
	client ocr.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a batch service around the configured OCR client.
func NewService(cfg *config.Config, client ocr.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{cfg: cfg, client: client, logger: logger, now: time.Now}
}

// RunBatch processes the described inputs to completion and returns the
// aggregated response. Item failures do not fail the batch; resolution
// failures and an unwritable artifact do.
func (s *Service) RunBatch(ctx context.Context, params BatchParams) (*BatchResponse, error) {
	if timeout := s.cfg.Batch.TimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	label, items, err := s.resolveItems(params)
	if err != nil {
		return nil, err
	}

	scheduler := batch.NewScheduler(s.client, s.logger,
		batch.WithConcurrency(s.concurrency(params)),
		batch.WithCallTimeout(time.Duration(s.cfg.Mistral.TimeoutSeconds)*time.Second),
		batch.WithPolicy(s.policy()))

	s.logger.Info("starting batch",
		logging.String(logging.FieldInput, label),
		logging.Int("items", len(items)))
	result := scheduler.Run(ctx, items)

	response := FromBatchResult(label, result)
	response.CompletedAt = s.now().UTC().Format(dateTimeFormat)

	if !params.SkipArtifact {
		path := params.OutputPath
		if path == "" {
			path = s.artifactPath(label)
		}
		if err := artifact.WriteJSON(path, response); err != nil {
			return &response, fmt.Errorf("write artifact: %w", err)
		}
		response.ArtifactPath = path
	}
	return &response, nil
}

// resolveItems expands params into ordered work items and a display label for
// the batch.
func (s *Service) resolveItems(params BatchParams) (string, []batch.WorkItem, error) {
	opts := ocr.Options{
		IncludeImages: s.cfg.Mistral.IncludeImages,
		Model:         s.cfg.Mistral.Model,
	}
	if params.IncludeImages != nil {
		opts.IncludeImages = *params.IncludeImages
	}

	if len(params.URLs) > 0 {
		items, err := urlItems(params.URLs, opts)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%d remote documents", len(items)), items, nil
	}

	resolverOpts := resolve.Options{
		Recursive:  s.cfg.Resolver.Recursive,
		AllowEmpty: s.cfg.Resolver.AllowEmpty,
	}
	if params.Recursive != nil {
		resolverOpts.Recursive = *params.Recursive
	}
	if params.AllowEmpty != nil {
		resolverOpts.AllowEmpty = *params.AllowEmpty
	}

	items, err := resolve.New(resolverOpts).Resolve(params.Input, opts)
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(params.Input), items, nil
}

// urlItems builds work items from an explicit URL list.
func urlItems(urls []string, opts ocr.Options) ([]batch.WorkItem, error) {
	if len(urls) > MaxBatchURLs {
		return nil, ocr.NewError(ocr.KindInvalidInput,
			fmt.Sprintf("batch accepts at most %d urls, got %d", MaxBatchURLs, len(urls)))
	}
	items := make([]batch.WorkItem, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if !resolve.IsURL(raw) {
			return nil, ocr.NewError(ocr.KindInvalidInput, fmt.Sprintf("not a document url: %q", raw))
		}
		doc := ocr.URLDocument(raw)
		items = append(items, batch.WorkItem{
			ID:      batch.ItemID(len(items)),
			Source:  doc,
			Title:   resolve.DisplayTitle(doc),
			Options: opts,
		})
	}
	return items, nil
}

func (s *Service) concurrency(params BatchParams) int {
	if params.Concurrency > 0 {
		return params.Concurrency
	}
	return s.cfg.Batch.Concurrency
}

func (s *Service) policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: s.cfg.Batch.MaxAttempts,
		BaseDelay:   time.Duration(s.cfg.Batch.RetryBaseSeconds) * time.Second,
		MaxDelay:    time.Duration(s.cfg.Batch.RetryMaxSeconds) * time.Second,
	}
}

// artifactPath derives a timestamped artifact destination from the batch
// label.
func (s *Service) artifactPath(label string) string {
	name := artifactSlug(label)
	stamp := s.now().Format("20060102-150405")
	return filepath.Join(s.cfg.Paths.OutputDir, fmt.Sprintf("%s-%s.json", name, stamp))
}

func artifactSlug(label string) string {
	base := filepath.Base(strings.TrimRight(label, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "batch"
	}
	return slug
}
