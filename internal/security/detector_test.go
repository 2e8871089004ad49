package security_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/chatlore/internal/chat"
	"github.com/edgard/chatlore/internal/security"
)

func textMsg(sender, content string) chat.Message {
	return chat.Message{
		Timestamp: time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC),
		Sender:    sender,
		Content:   content,
		Type:      chat.TypeText,
		Language:  chat.LangEnglish,
	}
}

func TestDetectCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		category security.Category
		want     []string
	}{
		{"email", "write to john.doe@example.com please", security.CategoryEmail, []string{"john.doe@example.com"}},
		{"phone", "call me at 555-123-4567", security.CategoryPhone, []string{"555-123-4567"}},
		{"credit card", "card 1234-5678-9012-3456 expires soon", security.CategoryCreditCard, []string{"1234-5678-9012-3456"}},
		{"date", "meeting on 12/05/2024 ok?", security.CategoryDate, []string{"12/05/2024"}},
		{"address", "ship to 42 Baker Street please", security.CategoryAddress, []string{"42 Baker Street"}},
		{"location", "we met near Central Park yesterday", security.CategoryLocation, []string{"near Central Park"}},
		{"url", "read https://example.com/a", security.CategoryURL, []string{"https://example.com/a"}},
	}

	d := security.NewDetector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			findings := d.Detect(tt.text)
			assert.Equal(t, tt.want, findings[tt.category])
		})
	}
}

func TestDetectNoFindings(t *testing.T) {
	t.Parallel()

	d := security.NewDetector(nil)
	assert.Empty(t, d.Detect("nothing sensitive here"))
	assert.Empty(t, d.Detect(""))
}

func TestDetectMultipleCategoriesInOneMessage(t *testing.T) {
	t.Parallel()

	d := security.NewDetector(nil)
	findings := d.Detect("mail bob@site.org or call 555-123-4567")

	assert.Contains(t, findings, security.CategoryEmail)
	assert.Contains(t, findings, security.CategoryPhone)
}

func TestAnalyzePhoneScenario(t *testing.T) {
	t.Parallel()

	messages := []chat.Message{
		textMsg("A", "hi"),
		textMsg("B", "call me at 555-123-4567"),
	}

	d := security.NewDetector(nil)
	analysis := d.Analyze(messages)

	require.Len(t, analysis.Findings, 1)
	finding := analysis.Findings[0]

	assert.Equal(t, 1, finding.MessageIndex)
	assert.Equal(t, "B", finding.Sender)
	assert.Equal(t, security.RiskHigh, finding.RiskLevel)
	assert.Equal(t, []string{"555-123-4567"}, finding.Matches[security.CategoryPhone])
	assert.Equal(t, 1, analysis.RiskLevels.High)
}

func TestAnalyzeEmptyCorpus(t *testing.T) {
	t.Parallel()

	d := security.NewDetector(nil)
	analysis := d.Analyze(nil)

	assert.Equal(t, float64(100), analysis.SecurityScore)
	assert.Equal(t, 0, analysis.TotalFindings)
	assert.Empty(t, analysis.Findings)
	assert.Empty(t, analysis.Recommendations)
}

func TestAnalyzeScoreBounds(t *testing.T) {
	t.Parallel()

	// Every message drips sensitive data; the score must clamp at 0, not
	// go negative.
	var messages []chat.Message
	for range 5 {
		messages = append(messages, textMsg("A", "card 1234-5678-9012-3456, call 555-123-4567, mail a@b.co"))
	}

	d := security.NewDetector(nil)
	analysis := d.Analyze(messages)

	assert.GreaterOrEqual(t, analysis.SecurityScore, float64(0))
	assert.LessOrEqual(t, analysis.SecurityScore, float64(100))
	assert.Equal(t, float64(0), analysis.SecurityScore)
}

func TestAnalyzeSkipsNonTextMessages(t *testing.T) {
	t.Parallel()

	media := textMsg("A", "555-123-4567")
	media.Type = chat.TypeImage

	d := security.NewDetector(nil)
	analysis := d.Analyze([]chat.Message{media})

	assert.Empty(t, analysis.Findings)
	assert.Equal(t, float64(100), analysis.SecurityScore)
}

func TestAnalyzeRiskOrdering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want security.Risk
	}{
		{"credit card is high", "pay with 1234 5678 9012 3456", security.RiskHigh},
		{"location is medium", "see you near Marine Drive", security.RiskMedium},
		{"date alone is low", "party on 3/4/2024", security.RiskLow},
	}

	d := security.NewDetector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analysis := d.Analyze([]chat.Message{textMsg("A", tt.text)})
			require.Len(t, analysis.Findings, 1)
			assert.Equal(t, tt.want, analysis.Findings[0].RiskLevel)
		})
	}
}

func TestRecommendationsFromCategoryUnion(t *testing.T) {
	t.Parallel()

	messages := []chat.Message{
		textMsg("A", "call 555-123-4567"),
		textMsg("B", "at Juhu Beach tomorrow"),
	}

	d := security.NewDetector(nil)
	analysis := d.Analyze(messages)

	var titles []string
	for _, rec := range analysis.Recommendations {
		titles = append(titles, rec.Title)
	}

	assert.Contains(t, titles, "Be cautious with phone numbers")
	assert.Contains(t, titles, "Limit location sharing")
	assert.Contains(t, titles, "Review chat for sensitive information")
	assert.Contains(t, titles, "Use secure communication channels")

	// Deterministic: same input, same output.
	again := d.Analyze(messages)
	assert.Equal(t, analysis.Recommendations, again.Recommendations)
}

func TestRedact(t *testing.T) {
	t.Parallel()

	d := security.NewDetector(nil)

	redacted := d.Redact("mail me at bob@site.org or 555-123-4567")
	assert.NotContains(t, redacted, "bob@site.org")
	assert.NotContains(t, redacted, "555-123-4567")
	assert.Contains(t, redacted, "[REDACTED EMAIL]")
	assert.Contains(t, redacted, "[REDACTED PHONE]")
}

func TestRedactIdempotent(t *testing.T) {
	t.Parallel()

	d := security.NewDetector(nil)

	once := d.Redact("ping bob@site.org about 1234-5678-9012-3456 near Central Park")
	twice := d.Redact(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, strings.Count(once, "[REDACTED"), strings.Count(twice, "[REDACTED"))
}

func TestRedactPlainTextUnchanged(t *testing.T) {
	t.Parallel()

	d := security.NewDetector(nil)
	assert.Equal(t, "nothing to hide", d.Redact("nothing to hide"))
}

func TestCollectSensitiveData(t *testing.T) {
	t.Parallel()

	messages := []chat.Message{
		textMsg("A", "write to alice@example.com"),
		textMsg("B", "call 555-123-4567 or mail alice@example.com"),
		textMsg("A", "also bob@example.com works"),
	}

	d := security.NewDetector(nil)
	collected := d.CollectSensitiveData(messages)

	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, collected[security.CategoryEmail])
	assert.Equal(t, []string{"555-123-4567"}, collected[security.CategoryPhone])
}

func TestCollectSensitiveDataSkipsNonText(t *testing.T) {
	t.Parallel()

	media := textMsg("A", "mail alice@example.com")
	media.Type = chat.TypeImage

	d := security.NewDetector(nil)

	assert.Empty(t, d.CollectSensitiveData([]chat.Message{media}))
	assert.Empty(t, d.CollectSensitiveData(nil))
}
