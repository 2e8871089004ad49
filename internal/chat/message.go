// Package chat provides parsing of exported WhatsApp-style chat transcripts
// into structured message records and aggregate statistics.
package chat

import "time"

// Type identifies the kind of content a message carries.
type Type string

// Message types recognized by the parser. Anything without a media or call
// marker is treated as plain text.
const (
	TypeText      Type = "text"
	TypeImage     Type = "image"
	TypeVideo     Type = "video"
	TypeSticker   Type = "sticker"
	TypeGIF       Type = "gif"
	TypeDocument  Type = "document"
	TypeVoiceCall Type = "voice_call"
	TypeVideoCall Type = "video_call"
)

// Language tags assigned by the parser's coarse language heuristic.
const (
	LangEnglish    = "en"
	LangHindiMixed = "hi_en"
)

// Message is a single parsed transcript message. Once created by the parser
// it is never mutated; the slice order matches the transcript order.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Type      Type      `json:"message_type"`

	// Duration is only set for voice_call and video_call messages and keeps
	// the free-text duration phrase from the export (e.g. "5 min").
	Duration string `json:"duration,omitempty"`

	// URL is the first http(s) URL found in the content, if any.
	URL string `json:"url,omitempty"`

	Language string `json:"language"`

	// IsSystem marks transcript-level notices (end-to-end encryption banner).
	// System messages stay in the sequence but are excluded from participant
	// accounting.
	IsSystem bool `json:"is_system_message"`
}

// IsMedia reports whether the message carries non-text content.
func (m *Message) IsMedia() bool {
	return m.Type != TypeText
}
