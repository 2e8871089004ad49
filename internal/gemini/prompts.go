package gemini

import (
	"fmt"
	"strings"

	"github.com/edgard/chatlore/internal/chat"
)

// explanationPromptTemplate asks the model why a message is relevant to a
// search query, given the surrounding context. The format string expects
// the query, the message content, and the joined before/after context.
const explanationPromptTemplate = `Given the following search query and message with its context, explain why this message is relevant to the query.
Be concise and focus on the key points of relevance.

Query: %s

Message: %s

Context before: %s
Context after: %s

Explanation:`

// insightsPromptTemplate asks the model for a structured analysis of a
// conversation. The format string expects the rendered conversation text.
const insightsPromptTemplate = `Analyze this conversation and provide insights about:
1. Main topics discussed
2. Key decisions or plans made
3. Important information shared
4. Overall tone and sentiment
5. Notable patterns or trends

Conversation:
%s

Provide a structured analysis focusing on the most important points.`

// answerPromptTemplate asks the model to answer a question strictly from
// the conversation content. The format string expects the rendered
// conversation text and the question.
const answerPromptTemplate = `Answer the following question using only the information in this conversation. If the conversation does not contain the answer, say so.

Conversation:
%s

Question: %s

Answer:`

// ExplanationPrompt builds the relevance-explanation prompt for a search
// result.
func ExplanationPrompt(query, message string, before, after []string) string {
	return fmt.Sprintf(explanationPromptTemplate,
		query,
		message,
		strings.Join(before, " | "),
		strings.Join(after, " | "))
}

// InsightsPrompt builds the conversation-insights prompt over the text
// messages of the given sequence. Non-text messages carry no analyzable
// content and are skipped.
func InsightsPrompt(messages []chat.Message) string {
	return fmt.Sprintf(insightsPromptTemplate, renderConversation(messages))
}

// AnswerPrompt builds the question-answering prompt over the text messages
// of the given sequence.
func AnswerPrompt(messages []chat.Message, question string) string {
	return fmt.Sprintf(answerPromptTemplate, renderConversation(messages), question)
}

func renderConversation(messages []chat.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		if m.Type != chat.TypeText {
			continue
		}
		sb.WriteString(m.Sender)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
