// Package summarizer asks a language model for a short narrative of the
// groups with missing postings.
package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/ledger-gaps/internal/logging"
	"fjacquet/ledger-gaps/internal/models"
	"fjacquet/ledger-gaps/internal/pattern"

	"golang.org/x/time/rate"
)

// Summarizer produces a narrative for classified reports.
type Summarizer interface {
	Summarize(ctx context.Context, reports []models.GroupReport) (string, error)
}

// TextGenerator is the model backend. GeminiClient implements it.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// NoopSummarizer is used when AI summaries are disabled.
type NoopSummarizer struct{}

// Summarize returns an empty summary.
func (NoopSummarizer) Summarize(context.Context, []models.GroupReport) (string, error) {
	return "", nil
}

// Options configures an AISummarizer.
type Options struct {
	// Top is how many gap groups are sent to the model.
	Top int
	// RequestsPerMinute throttles calls to the backend. Zero disables the limit.
	RequestsPerMinute int
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration
}

// AISummarizer sends the top gap groups to a TextGenerator.
type AISummarizer struct {
	client  TextGenerator
	limiter *rate.Limiter
	opts    Options
	logger  logging.Logger
}

// NewAISummarizer wraps client with rate limiting and a request timeout.
func NewAISummarizer(client TextGenerator, opts Options, logger logging.Logger) *AISummarizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return &AISummarizer{client: client, limiter: limiter, opts: opts, logger: logger}
}

// Summarize returns "" without calling the model when no group has gaps.
func (s *AISummarizer) Summarize(ctx context.Context, reports []models.GroupReport) (string, error) {
	missing := pattern.Top(pattern.WithGaps(reports), s.opts.Top)
	if len(missing) == 0 {
		return "", nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("summary rate limit: %w", err)
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.client.GenerateText(ctx, BuildPrompt(missing))
	if err != nil {
		s.logger.WithError(err).Warn("Summary request failed", logging.F(logging.FieldCount, len(missing)))
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	s.logger.Debug("Summary generated",
		logging.F(logging.FieldCount, len(missing)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return strings.TrimSpace(text), nil
}

var monthNames = [models.MonthsPerYear]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// BuildPrompt describes each gap group on one line.
func BuildPrompt(reports []models.GroupReport) string {
	var b strings.Builder
	b.WriteString("The following recurring ledger postings have months without a posting.\n")
	b.WriteString("Write a short summary for a bookkeeper of what is probably missing.\n\n")
	for _, r := range reports {
		gaps := make([]string, len(r.Gaps))
		for i, m := range r.Gaps {
			gaps[i] = monthNames[m]
		}
		fmt.Fprintf(&b, "- %s: usually %s per month, missing in %s\n",
			r.Key, r.AverageAmount.StringFixed(2), strings.Join(gaps, ", "))
	}
	return b.String()
}
