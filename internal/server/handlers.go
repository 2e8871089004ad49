package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/edgard/chatlore/internal/chat"
	"github.com/edgard/chatlore/internal/gemini"
	"github.com/edgard/chatlore/internal/search"
	"github.com/edgard/chatlore/internal/security"
)

// Defaults applied when a search request leaves the field unset.
const (
	defaultSearchLimit   = 10
	defaultMinSimilarity = 0.3
)

// Handler serves the transcript analysis API. Every request carries its
// own corpus; the handler keeps no per-chat state.
type Handler struct {
	logger     *slog.Logger
	parser     *chat.Parser
	detector   *security.Detector
	oracle     gemini.Generator
	searchOpts search.Options
	validate   *validator.Validate
}

// NewHandler wires the parsing, detection, and search components behind
// the HTTP surface. oracle may be nil; AI-backed responses then degrade
// to static fallbacks.
func NewHandler(logger *slog.Logger, oracle gemini.Generator, searchOpts search.Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger.With("component", "http_handler"),
		parser:     chat.NewParser(logger),
		detector:   security.NewDetector(logger),
		oracle:     oracle,
		searchOpts: searchOpts,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// decode parses and validates a JSON request body into dst.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// HandleProcessChat parses a raw transcript export into structured
// messages with aggregate statistics.
func (h *Handler) HandleProcessChat(w http.ResponseWriter, r *http.Request) {
	var req ProcessChatRequest
	if !h.decode(w, r, &req) {
		return
	}

	messages, stats := h.parser.Parse(req.ChatText)
	h.logger.Info("transcript processed",
		"messages", len(messages),
		"participants", len(stats.Participants))

	respondJSON(w, http.StatusOK, ProcessChatResponse{
		ChatID:   uuid.NewString(),
		Messages: messages,
		Stats:    stats,
	})
}

// HandleAnalyze runs the full security analysis over the corpus.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req MessagesRequest
	if !h.decode(w, r, &req) {
		return
	}

	analysis := h.detector.Analyze(req.Messages)
	respondJSON(w, http.StatusOK, AnalyzeResponse{Analysis: analysis})
}

// HandleSensitiveData returns the detected values grouped by category,
// aggregated and deduplicated across the corpus.
func (h *Handler) HandleSensitiveData(w http.ResponseWriter, r *http.Request) {
	var req MessagesRequest
	if !h.decode(w, r, &req) {
		return
	}

	respondJSON(w, http.StatusOK, SensitiveDataResponse(h.detector.CollectSensitiveData(req.Messages)))
}

// HandleRedacted returns the messages that contain sensitive data, each
// paired with its redacted content. Clean messages are omitted.
func (h *Handler) HandleRedacted(w http.ResponseWriter, r *http.Request) {
	var req MessagesRequest
	if !h.decode(w, r, &req) {
		return
	}

	redacted := []RedactedMessage{}
	for _, msg := range req.Messages {
		if msg.Type != chat.TypeText {
			continue
		}
		if content := h.detector.Redact(msg.Content); content != msg.Content {
			redacted = append(redacted, RedactedMessage{
				Original:        msg,
				RedactedContent: content,
			})
		}
	}

	respondJSON(w, http.StatusOK, RedactedResponse{Messages: redacted})
}

// HandleSemanticSearch ranks the corpus against a free-text query.
func (h *Handler) HandleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req SemanticSearchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}

	engine := search.NewEngine(h.logger, h.oracle, req.Messages, h.searchOpts)
	results := engine.Search(r.Context(), req.Query, minSimilarityOrDefault(req.MinSimilarity), req.Limit, req.IncludeExplanation)

	respondJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// HandleSimilarMessages finds messages similar to the given message
// content, excluding exact matches of that content.
func (h *Handler) HandleSimilarMessages(w http.ResponseWriter, r *http.Request) {
	var req SimilarMessagesRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}

	engine := search.NewEngine(h.logger, h.oracle, req.Messages, h.searchOpts)

	// Fetch extra results so dropping exact matches still honors the
	// requested limit.
	results := engine.Search(r.Context(), req.Message, minSimilarityOrDefault(req.MinSimilarity), req.Limit+1, false)
	filtered := make([]search.Result, 0, len(results))
	for _, res := range results {
		if res.Message.Content == req.Message {
			continue
		}
		filtered = append(filtered, res)
	}
	if len(filtered) > req.Limit {
		filtered = filtered[:req.Limit]
	}

	respondJSON(w, http.StatusOK, SearchResponse{Results: filtered})
}

// HandleTopics groups the corpus into topic clusters.
func (h *Handler) HandleTopics(w http.ResponseWriter, r *http.Request) {
	var req MessagesRequest
	if !h.decode(w, r, &req) {
		return
	}

	engine := search.NewEngine(h.logger, h.oracle, req.Messages, h.searchOpts)
	respondJSON(w, http.StatusOK, TopicsResponse{Topics: engine.Clusters(r.Context())})
}

// HandleInsights produces a conversation-level AI summary, optionally
// restricted to messages inside the [start, end] window.
func (h *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	var req InsightsRequest
	if !h.decode(w, r, &req) {
		return
	}

	messages := req.Messages
	if req.Start != nil || req.End != nil {
		filtered := make([]chat.Message, 0, len(messages))
		for _, msg := range messages {
			if req.Start != nil && msg.Timestamp.Before(*req.Start) {
				continue
			}
			if req.End != nil && msg.Timestamp.After(*req.End) {
				continue
			}
			filtered = append(filtered, msg)
		}
		messages = filtered
	}

	respondJSON(w, http.StatusOK, InsightsResponse{
		Insights:  h.generate(r, gemini.InsightsPrompt(messages)),
		Timestamp: time.Now().UTC(),
	})
}

// HandleAnswerQuestion answers a free-form question about the corpus.
// The response reports whether the answer came from the oracle or is a
// fallback string.
func (h *Handler) HandleAnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var req AnswerQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp := AnswerQuestionResponse{
		Status:       "success",
		Timestamp:    time.Now().UTC(),
		Question:     req.Question,
		MessageCount: len(req.Messages),
	}

	switch text, err := h.tryGenerate(r, gemini.AnswerPrompt(req.Messages, req.Question)); {
	case errors.Is(err, errNoOracle):
		resp.Answer = gemini.NoKeyText
		resp.Status = "error"
		resp.ErrorType = "no_api_key"
	case err != nil:
		resp.Answer = gemini.FallbackText(err)
		resp.Status = "error"
		resp.ErrorType = errorType(err)
	default:
		resp.Answer = text
	}

	respondJSON(w, http.StatusOK, resp)
}

// errNoOracle reports a generation attempt without a configured oracle.
var errNoOracle = errors.New("no oracle configured")

// tryGenerate runs a prompt through the oracle, reporting failures to
// the caller.
func (h *Handler) tryGenerate(r *http.Request, prompt string) (string, error) {
	if h.oracle == nil {
		return "", errNoOracle
	}

	text, err := h.oracle.Generate(r.Context(), prompt)
	if err != nil {
		h.logger.Warn("generation failed", "error", err)
		return "", err
	}
	return text, nil
}

// generate is tryGenerate degraded to the matching fallback string.
func (h *Handler) generate(r *http.Request, prompt string) string {
	text, err := h.tryGenerate(r, prompt)
	switch {
	case errors.Is(err, errNoOracle):
		return gemini.NoKeyText
	case err != nil:
		return gemini.FallbackText(err)
	}
	return text
}

// errorType names the oracle failure shape for API responses.
func errorType(err error) string {
	switch {
	case errors.Is(err, gemini.ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, gemini.ErrUnavailable):
		return "model_unavailable"
	default:
		return "generation_failed"
	}
}

// minSimilarityOrDefault resolves an absent min_similarity to the
// default threshold while honoring an explicit zero.
func minSimilarityOrDefault(v *float64) float64 {
	if v == nil {
		return defaultMinSimilarity
	}
	return *v
}
