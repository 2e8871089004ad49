// Package security scans message content for personally-identifying
// patterns and produces a risk assessment, recommendations, and redacted
// text. Detection is pattern based and inherently approximate.
package security

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/edgard/chatlore/internal/chat"
)

// Category names a class of sensitive data.
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryPhone      Category = "phone"
	CategoryCreditCard Category = "credit_card"
	CategoryDate       Category = "date"
	CategoryAddress    Category = "address"
	CategoryLocation   Category = "location"
	CategoryURL        Category = "url"
)

// Risk classifies the severity of a finding.
type Risk string

const (
	RiskHigh   Risk = "high"
	RiskMedium Risk = "medium"
	RiskLow    Risk = "low"
)

// rule associates a category with its detection pattern. Rules are kept in
// a slice, not a map, so detection and redaction iterate in a fixed order.
type rule struct {
	category Category
	pattern  *regexp.Regexp
}

// rules is the fixed detection set. The location heuristic is deliberately
// case sensitive: it keys on capitalized phrases after a preposition and is
// known to over-match common capitalized words. Tightening it would change
// detection behavior, so it is kept as is.
var rules = []rule{
	{CategoryEmail, regexp.MustCompile(`(?i)[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{CategoryPhone, regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{CategoryCreditCard, regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)},
	{CategoryDate, regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)},
	{CategoryAddress, regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z\s,]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Circle|Cir|Way)\b`)},
	{CategoryLocation, regexp.MustCompile(`\b(?:in|at|near|from)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)},
	{CategoryURL, regexp.MustCompile(`https?://(?:[-\w.]|%[\da-fA-F]{2})+`)},
}

// highRiskCategories and mediumRiskCategories drive the ordered risk rule:
// any high-risk category makes a message high risk, otherwise any
// medium-risk category makes it medium, otherwise low.
var (
	highRiskCategories   = []Category{CategoryCreditCard, CategoryPhone, CategoryEmail}
	mediumRiskCategories = []Category{CategoryAddress, CategoryLocation}
)

// Finding describes sensitive data detected in a single message.
type Finding struct {
	MessageIndex int                   `json:"message_index"`
	Sender       string                `json:"sender"`
	Timestamp    time.Time             `json:"timestamp"`
	RiskLevel    Risk                  `json:"risk_level"`
	Categories   []Category            `json:"categories"`
	Matches      map[Category][]string `json:"matches"`
	Description  string                `json:"description"`
}

// RiskCounts tallies findings by risk level.
type RiskCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Recommendation is a deterministic, template-based suggestion derived from
// the categories observed across all findings.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Analysis is the aggregate result of scanning a message sequence.
type Analysis struct {
	SecurityScore   float64          `json:"security_score"`
	TotalFindings   int              `json:"total_findings"`
	Findings        []Finding        `json:"findings"`
	RiskLevels      RiskCounts       `json:"risk_levels"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Detector scans text for sensitive data. It holds only compiled patterns
// and a logger; one instance is built per request.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a sensitive-data detector. A nil logger falls back to
// the default slog logger.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger.With("component", "security_detector")}
}

// Detect returns all matched substrings grouped by category. Categories
// with no match are absent from the result. Detect never fails on
// arbitrary input.
func (d *Detector) Detect(text string) map[Category][]string {
	findings := make(map[Category][]string)
	for _, r := range rules {
		if matches := r.pattern.FindAllString(text, -1); len(matches) > 0 {
			findings[r.category] = matches
		}
	}
	return findings
}

// CollectSensitiveData aggregates matched values per category across the
// text messages of the corpus. Within a category, values keep first-seen
// order and duplicates are dropped. Non-text messages are skipped.
func (d *Detector) CollectSensitiveData(messages []chat.Message) map[Category][]string {
	collected := make(map[Category][]string)
	seen := make(map[Category]map[string]bool)

	for _, msg := range messages {
		if msg.Type != chat.TypeText {
			continue
		}
		for category, matches := range d.Detect(msg.Content) {
			if seen[category] == nil {
				seen[category] = make(map[string]bool)
			}
			for _, match := range matches {
				if seen[category][match] {
					continue
				}
				seen[category][match] = true
				collected[category] = append(collected[category], match)
			}
		}
	}

	return collected
}

// Analyze scans text messages for sensitive data and produces a security
// analysis. Non-text messages are skipped. An empty corpus yields the
// maximal score and no findings.
func (d *Detector) Analyze(messages []chat.Message) Analysis {
	analysis := Analysis{
		Findings:        []Finding{},
		Recommendations: []Recommendation{},
	}

	var textCount, itemCount int
	for idx, msg := range messages {
		if msg.Type != chat.TypeText {
			continue
		}
		textCount++

		matches := d.Detect(msg.Content)
		if len(matches) == 0 {
			continue
		}

		categories := make([]Category, 0, len(matches))
		for _, r := range rules {
			if _, ok := matches[r.category]; ok {
				categories = append(categories, r.category)
			}
		}
		for _, items := range matches {
			itemCount += len(items)
		}

		risk := assessRisk(matches)
		switch risk {
		case RiskHigh:
			analysis.RiskLevels.High++
		case RiskMedium:
			analysis.RiskLevels.Medium++
		case RiskLow:
			analysis.RiskLevels.Low++
		}

		analysis.Findings = append(analysis.Findings, Finding{
			MessageIndex: idx,
			Sender:       msg.Sender,
			Timestamp:    msg.Timestamp,
			RiskLevel:    risk,
			Categories:   categories,
			Matches:      matches,
			Description:  describeCategories(categories),
		})
	}

	analysis.TotalFindings = len(analysis.Findings)
	analysis.SecurityScore = securityScore(textCount, itemCount, analysis.RiskLevels)
	analysis.Recommendations = recommendations(analysis.Findings)

	d.logger.Debug("security analysis complete",
		"text_messages", textCount,
		"findings", analysis.TotalFindings,
		"score", analysis.SecurityScore)

	return analysis
}

// Redact replaces every detected substring with a "[REDACTED CATEGORY]"
// tag. Replacement is substring based and applies in fixed category order,
// so overlapping matches across categories redact deterministically.
// Redacting already-redacted text is a no-op.
func (d *Detector) Redact(text string) string {
	redacted := text
	for _, r := range rules {
		tag := "[REDACTED " + strings.ToUpper(string(r.category)) + "]"
		for _, item := range r.pattern.FindAllString(text, -1) {
			redacted = strings.ReplaceAll(redacted, item, tag)
		}
	}
	return redacted
}

func assessRisk(matches map[Category][]string) Risk {
	for _, c := range highRiskCategories {
		if _, ok := matches[c]; ok {
			return RiskHigh
		}
	}
	for _, c := range mediumRiskCategories {
		if _, ok := matches[c]; ok {
			return RiskMedium
		}
	}
	return RiskLow
}

// securityScore starts from 100 and deducts up to 50 points for sensitive
// item density and up to 50 for risk-weighted density, clamped to [0,100]
// and rounded to two decimals.
func securityScore(textCount, itemCount int, risks RiskCounts) float64 {
	if textCount == 0 {
		return 100
	}

	density := float64(itemCount) / float64(textCount)
	weighted := float64(risks.High*3+risks.Medium*2+risks.Low) / float64(textCount)

	score := 100 - (density*50 + weighted*50)
	score = math.Max(0, math.Min(100, score))
	return math.Round(score*100) / 100
}

func describeCategories(categories []Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return fmt.Sprintf("Found sensitive data: %s", strings.Join(names, ", "))
}

// sortedCategoryUnion returns the distinct categories across all findings
// in fixed rule order.
func sortedCategoryUnion(findings []Finding) []Category {
	seen := make(map[Category]bool)
	for _, f := range findings {
		for _, c := range f.Categories {
			seen[c] = true
		}
	}

	union := make([]Category, 0, len(seen))
	for _, r := range rules {
		if seen[r.category] {
			union = append(union, r.category)
		}
	}
	return union
}
