package summarizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/ledger-gaps/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	prompts []string
	reply   string
	err     error
	delay   time.Duration
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func reports() []models.GroupReport {
	return []models.GroupReport{
		{Key: "Vastgoed BV | huur kantoor", AverageAmount: decimal.RequireFromString("-1500"), Gaps: []int{3}},
		{Key: "KPN | abonnement", AverageAmount: decimal.RequireFromString("-45.5"), Gaps: []int{5, 6}},
		{Key: "Drukkerij | visitekaartjes", Gaps: []int{}},
	}
}

func TestNoopSummarizer(t *testing.T) {
	summary, err := NoopSummarizer{}.Summarize(context.Background(), reports())
	assert.NoError(t, err)
	assert.Empty(t, summary)
}

func TestAISummarizer_SendsTopGapGroups(t *testing.T) {
	fake := &fakeGenerator{reply: "  April rent is missing.\n"}
	s := NewAISummarizer(fake, Options{Top: 1}, nil)

	summary, err := s.Summarize(context.Background(), reports())
	require.NoError(t, err)
	assert.Equal(t, "April rent is missing.", summary)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Vastgoed BV | huur kantoor: usually -1500.00 per month, missing in April")
	assert.NotContains(t, fake.prompts[0], "KPN")
}

func TestAISummarizer_NoGapsSkipsModel(t *testing.T) {
	fake := &fakeGenerator{reply: "unused"}
	summary, err := NewAISummarizer(fake, Options{}, nil).Summarize(context.Background(), reports()[2:])
	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.Empty(t, fake.prompts)
}

func TestAISummarizer_Errors(t *testing.T) {
	fake := &fakeGenerator{err: errors.New("quota exceeded")}
	_, err := NewAISummarizer(fake, Options{}, nil).Summarize(context.Background(), reports())
	assert.ErrorContains(t, err, "quota exceeded")

	slow := &fakeGenerator{delay: time.Second}
	_, err = NewAISummarizer(slow, Options{Timeout: 10 * time.Millisecond}, nil).Summarize(context.Background(), reports())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAISummarizer_RateLimitHonoursContext(t *testing.T) {
	fake := &fakeGenerator{reply: "ok"}
	s := NewAISummarizer(fake, Options{RequestsPerMinute: 1}, nil)

	_, err := s.Summarize(context.Background(), reports())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = s.Summarize(ctx, reports())
	assert.Error(t, err)
	assert.Len(t, fake.prompts, 1)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(reports()[1:2])
	assert.Contains(t, prompt, "KPN | abonnement: usually -45.50 per month, missing in June, July")
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "")
	assert.Error(t, err)
}
