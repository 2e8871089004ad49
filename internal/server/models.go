package server

import (
	"time"

	"github.com/edgard/chatlore/internal/chat"
	"github.com/edgard/chatlore/internal/search"
	"github.com/edgard/chatlore/internal/security"
)

// ProcessChatRequest carries a raw transcript export for parsing.
type ProcessChatRequest struct {
	ChatText string `json:"chat_text" validate:"required"`
}

// ProcessChatResponse returns the parsed corpus with aggregate statistics.
// ChatID identifies this response only; nothing is retained server-side.
type ProcessChatResponse struct {
	ChatID   string         `json:"chat_id"`
	Messages []chat.Message `json:"messages"`
	Stats    chat.Stats     `json:"stats"`
}

// MessagesRequest is the common body for operations over an
// already-parsed corpus.
type MessagesRequest struct {
	Messages []chat.Message `json:"messages" validate:"required"`
}

// AnalyzeResponse wraps a full security analysis.
type AnalyzeResponse struct {
	Analysis security.Analysis `json:"analysis"`
}

// SensitiveDataResponse maps each detected category to the union of its
// matched values across the corpus, deduplicated in first-seen order.
type SensitiveDataResponse map[security.Category][]string

// RedactedMessage pairs a message containing sensitive data with its
// redacted content.
type RedactedMessage struct {
	Original        chat.Message `json:"original"`
	RedactedContent string       `json:"redacted_content"`
}

// RedactedResponse lists only the messages whose redaction differs from
// their original content.
type RedactedResponse struct {
	Messages []RedactedMessage `json:"messages"`
}

// SemanticSearchRequest ranks the corpus against a free-text query.
// MinSimilarity defaults to 0.3 when absent; an explicit 0 is honored.
type SemanticSearchRequest struct {
	Messages           []chat.Message `json:"messages"       validate:"required"`
	Query              string         `json:"query"          validate:"required"`
	MinSimilarity      *float64       `json:"min_similarity" validate:"omitempty,min=0,max=1"`
	Limit              int            `json:"limit"          validate:"min=0,max=50"`
	IncludeExplanation bool           `json:"include_explanation"`
}

// SimilarMessagesRequest finds messages similar to the given message
// content, excluding exact matches of that content from the results.
type SimilarMessagesRequest struct {
	Messages      []chat.Message `json:"messages"       validate:"required"`
	Message       string         `json:"message"        validate:"required"`
	MinSimilarity *float64       `json:"min_similarity" validate:"omitempty,min=0,max=1"`
	Limit         int            `json:"limit"          validate:"min=0,max=50"`
}

// SearchResponse carries ranked search hits.
type SearchResponse struct {
	Results []search.Result `json:"results"`
}

// TopicsResponse carries the detected topic clusters.
type TopicsResponse struct {
	Topics []search.Cluster `json:"topics"`
}

// InsightsRequest asks for conversation-level insights, optionally
// restricted to messages whose timestamps fall inside [start, end].
type InsightsRequest struct {
	Messages []chat.Message `json:"messages" validate:"required"`
	Start    *time.Time     `json:"start"`
	End      *time.Time     `json:"end"`
}

// InsightsResponse carries a conversation-level AI summary.
type InsightsResponse struct {
	Insights  string    `json:"insights"`
	Timestamp time.Time `json:"timestamp"`
}

// AnswerQuestionRequest asks a free-form question about the corpus.
type AnswerQuestionRequest struct {
	Messages []chat.Message `json:"messages" validate:"required"`
	Question string         `json:"question" validate:"required"`
}

// AnswerQuestionResponse carries the oracle's answer. Status is "success"
// when the answer came from the oracle and "error" when it is a fallback
// string, with ErrorType naming the failure shape.
type AnswerQuestionResponse struct {
	Answer       string    `json:"answer"`
	Status       string    `json:"status"`
	ErrorType    string    `json:"error_type,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Question     string    `json:"question"`
	MessageCount int       `json:"message_count"`
}
