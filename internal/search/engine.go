package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/edgard/chatlore/internal/chat"
	"github.com/edgard/chatlore/internal/gemini"
)

// contextWindowSize is the number of messages included before and after a
// search hit.
const contextWindowSize = 2

// noOracleExplanation is returned in place of an oracle explanation when no
// generator is configured.
const noOracleExplanation = "No API key provided for explanation generation"

// Options tunes the clustering stage.
type Options struct {
	ClusterEps       float64
	ClusterMinPoints int
	ClusterMetric    Metric
}

// DefaultOptions returns the empirically chosen clustering parameters.
func DefaultOptions() Options {
	return Options{
		ClusterEps:       0.3,
		ClusterMinPoints: 2,
		ClusterMetric:    MetricCosine,
	}
}

// Context is the window of message contents surrounding a search hit.
type Context struct {
	Before []string `json:"before"`
	After  []string `json:"after"`
}

// Result is one ranked search hit. It is recomputed per query and never
// persisted.
type Result struct {
	Message     chat.Message `json:"message"`
	Similarity  float64      `json:"similarity"`
	Context     Context      `json:"context"`
	Explanation string       `json:"explanation,omitempty"`
}

// Cluster is one detected topic grouping.
type Cluster struct {
	TopicID        string         `json:"topic_id"`
	MessageIndices []int          `json:"message_indices"`
	Messages       []chat.Message `json:"messages"`
	Summary        string         `json:"summary"`
}

// Engine ranks and clusters one message corpus. An Engine is built per
// request from the caller-supplied messages and holds no state shared
// across requests.
type Engine struct {
	logger     *slog.Logger
	oracle     gemini.Generator
	messages   []chat.Message
	vectorizer *vectorizer
	vectors    map[int][]float64
	opts       Options
}

// NewEngine fits a vectorizer over the text messages of the corpus and
// precomputes their vectors. oracle may be nil, in which case explanations
// and cluster summaries degrade to static fallbacks. An empty or
// all-media corpus produces an engine whose operations return empty
// results.
func NewEngine(logger *slog.Logger, oracle gemini.Generator, messages []chat.Message, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ClusterEps <= 0 {
		opts.ClusterEps = DefaultOptions().ClusterEps
	}
	if opts.ClusterMinPoints <= 0 {
		opts.ClusterMinPoints = DefaultOptions().ClusterMinPoints
	}

	e := &Engine{
		logger:   logger.With("component", "search_engine"),
		oracle:   oracle,
		messages: messages,
		vectors:  make(map[int][]float64),
		opts:     opts,
	}

	var texts []string
	for _, msg := range messages {
		if msg.Type == chat.TypeText {
			texts = append(texts, msg.Content)
		}
	}

	e.vectorizer = fitVectorizer(texts)
	if e.vectorizer == nil {
		e.logger.Debug("no text messages in corpus, search disabled")
		return e
	}

	for idx, msg := range messages {
		if msg.Type == chat.TypeText {
			e.vectors[idx] = e.vectorizer.vector(msg.Content)
		}
	}

	e.logger.Debug("search engine initialized",
		"messages", len(messages),
		"text_messages", len(texts),
		"vocabulary", len(e.vectorizer.vocab))

	return e
}

// Search ranks text messages by cosine similarity to the query. Messages
// strictly below minSimilarity are excluded; the rest are sorted by
// descending similarity with corpus order breaking ties, then truncated to
// limit. When withExplanation is set, each retained result carries an
// oracle-generated relevance rationale (or a fallback string on oracle
// failure).
func (e *Engine) Search(ctx context.Context, query string, minSimilarity float64, limit int, withExplanation bool) []Result {
	if e.vectorizer == nil {
		return []Result{}
	}

	queryVec := e.vectorizer.vector(query)

	var results []Result
	for idx := range e.messages {
		vec, ok := e.vectors[idx]
		if !ok || isZeroVector(vec) {
			continue
		}

		similarity := cosineSimilarity(queryVec, vec)
		if similarity < minSimilarity {
			continue
		}

		results = append(results, Result{
			Message:    e.messages[idx],
			Similarity: similarity,
			Context:    e.contextWindow(idx),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if withExplanation {
		for i := range results {
			results[i].Explanation = e.explain(ctx, query, &results[i])
		}
	}

	if results == nil {
		results = []Result{}
	}
	return results
}

// contextWindow collects the contents of up to contextWindowSize messages
// on each side of idx, clipped at corpus boundaries.
func (e *Engine) contextWindow(idx int) Context {
	start := max(0, idx-contextWindowSize)
	end := min(len(e.messages), idx+contextWindowSize+1)

	window := Context{Before: []string{}, After: []string{}}
	for _, msg := range e.messages[start:idx] {
		window.Before = append(window.Before, msg.Content)
	}
	for _, msg := range e.messages[idx+1 : end] {
		window.After = append(window.After, msg.Content)
	}
	return window
}

// explain asks the oracle why the result matches the query, degrading to a
// static string on oracle absence or failure.
func (e *Engine) explain(ctx context.Context, query string, result *Result) string {
	if e.oracle == nil {
		return noOracleExplanation
	}

	prompt := gemini.ExplanationPrompt(query, result.Message.Content, result.Context.Before, result.Context.After)
	text, err := e.oracle.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("explanation generation failed", "error", err)
		return gemini.FallbackText(err)
	}
	return text
}

// Clusters groups text messages into topics via density-based clustering
// over their vectors. Points in no dense region are noise and are dropped.
// Each cluster is summarized by the oracle, or by a term-frequency
// fallback when the oracle is absent or fails.
func (e *Engine) Clusters(ctx context.Context) []Cluster {
	if e.vectorizer == nil {
		return []Cluster{}
	}

	var points [][]float64
	var indices []int
	for idx := range e.messages {
		if vec, ok := e.vectors[idx]; ok {
			points = append(points, vec)
			indices = append(indices, idx)
		}
	}
	if len(points) == 0 {
		return []Cluster{}
	}

	labels := dbscan(points, e.opts.ClusterEps, e.opts.ClusterMinPoints, e.opts.ClusterMetric.distanceFunc())

	grouped := make(map[int][]int)
	var order []int
	for i, label := range labels {
		if label == noiseLabel {
			continue
		}
		if _, ok := grouped[label]; !ok {
			order = append(order, label)
		}
		grouped[label] = append(grouped[label], indices[i])
	}

	clusters := make([]Cluster, 0, len(order))
	for _, label := range order {
		memberIndices := grouped[label]
		members := make([]chat.Message, 0, len(memberIndices))
		for _, idx := range memberIndices {
			members = append(members, e.messages[idx])
		}

		clusters = append(clusters, Cluster{
			TopicID:        fmt.Sprintf("topic_%d", label),
			MessageIndices: memberIndices,
			Messages:       members,
			Summary:        e.summarize(ctx, members),
		})
	}

	e.logger.Debug("clustering complete", "points", len(points), "clusters", len(clusters))
	return clusters
}

// summarize produces a cluster summary via the oracle, or the
// size-and-common-terms fallback when the oracle is absent or fails.
func (e *Engine) summarize(ctx context.Context, members []chat.Message) string {
	if e.oracle != nil {
		text, err := e.oracle.Generate(ctx, gemini.InsightsPrompt(members))
		if err == nil {
			return text
		}
		e.logger.Warn("cluster summary generation failed, using fallback", "error", err)
	}
	return fallbackSummary(members)
}

// fallbackSummary reports the cluster size and its most frequent raw
// terms. Ties break by order of first appearance so the summary is
// deterministic.
func fallbackSummary(members []chat.Message) string {
	counts := make(map[string]int)
	var order []string
	for _, msg := range members {
		for _, word := range strings.Fields(msg.Content) {
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	if len(order) == 0 {
		return fmt.Sprintf("Cluster with %d messages", len(members))
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 5 {
		order = order[:5]
	}

	return fmt.Sprintf("Cluster with %d messages. Common terms: %s", len(members), strings.Join(order, ", "))
}
