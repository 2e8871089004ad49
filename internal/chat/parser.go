package chat

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// timestampLayout matches the export format "2/1/2006, 3:04:05 PM".
// Day and month may or may not be zero padded.
const timestampLayout = "2/1/2006, 3:04:05 PM"

// encryptionNotice is the fixed phrase WhatsApp inserts as a transcript-level
// system message.
const encryptionNotice = "Messages and calls are end-to-end encrypted"

var (
	// timestampPrefix recognizes the start of a new logical message. Lines
	// that do not match are continuations of the message being accumulated.
	timestampPrefix = regexp.MustCompile(`^\[([0-9/]+,\s*[0-9:]+\s*[APM]+)\]`)

	// messagePattern splits a flushed block into timestamp, sender, and
	// content. The content group is in dot-all mode so continuation lines
	// stay part of the same message.
	messagePattern = regexp.MustCompile(`(?s)^\[([0-9/]+,\s*[0-9:]+\s*[APM]+)\]\s*([^:\n]+):\s*(.*)$`)

	urlPattern = regexp.MustCompile(`https?://(?:[-\w.]|%[\da-fA-F]{2})+`)
)

// mediaMarker associates an inline export marker with a message type. Call
// markers additionally capture the trailing duration phrase. Exports wrap
// markers in U+200E (left-to-right mark), which may or may not survive
// copy/paste, so it is optional here.
type mediaMarker struct {
	msgType Type
	pattern *regexp.Regexp
}

// mediaMarkers is evaluated in order; the first match wins.
var mediaMarkers = []mediaMarker{
	{TypeImage, regexp.MustCompile(`\x{200E}?image omitted`)},
	{TypeVideo, regexp.MustCompile(`\x{200E}?video omitted`)},
	{TypeSticker, regexp.MustCompile(`\x{200E}?sticker omitted`)},
	{TypeVoiceCall, regexp.MustCompile(`\x{200E}?Voice call,\s*\x{200E}?([^\x{200E}\n]+)`)},
	{TypeVideoCall, regexp.MustCompile(`\x{200E}?Video call,\s*\x{200E}?([^\x{200E}\n]+)`)},
	{TypeDocument, regexp.MustCompile(`\x{200E}?document omitted`)},
	{TypeGIF, regexp.MustCompile(`\x{200E}?GIF omitted`)},
}

// Parser turns raw transcript text into an ordered message sequence plus
// statistics. A Parser is cheap to construct and is built per request; it
// holds no state shared across calls.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a transcript parser. A nil logger falls back to the
// default slog logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With("component", "chat_parser")}
}

// Parse processes a full transcript and returns the parsed messages in
// transcript order together with recomputed statistics. Blocks whose
// timestamp fails to parse are dropped silently; Parse never returns an
// error for malformed input.
func (p *Parser) Parse(raw string) ([]Message, Stats) {
	var messages []Message
	var block []string

	flush := func() {
		if len(block) == 0 {
			return
		}
		if msg, ok := p.parseBlock(strings.Join(block, "\n")); ok {
			messages = append(messages, msg)
		}
		block = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if timestampPrefix.MatchString(line) {
			flush()
			block = []string{line}
			continue
		}
		// Continuation of the current message; lines before the first
		// timestamped line have no message to attach to and are skipped.
		if len(block) > 0 {
			block = append(block, line)
		}
	}
	flush()

	stats := ComputeStats(messages)
	p.logger.Debug("transcript parsed",
		"messages", len(messages),
		"participants", len(stats.Participants),
		"media", stats.MediaCount)

	return messages, stats
}

// parseBlock builds a Message from one flushed block. Type, URL, and
// language detection run here, after the content is final, so continuation
// lines are taken into account.
func (p *Parser) parseBlock(block string) (Message, bool) {
	m := messagePattern.FindStringSubmatch(block)
	if m == nil {
		return Message{}, false
	}

	ts, err := time.Parse(timestampLayout, m[1])
	if err != nil {
		p.logger.Debug("dropping block with unparseable timestamp", "timestamp", m[1])
		return Message{}, false
	}

	content := strings.TrimSpace(m[3])
	msgType, duration := detectType(content)

	return Message{
		Timestamp: ts,
		Sender:    strings.TrimSpace(m[2]),
		Content:   content,
		Type:      msgType,
		Duration:  duration,
		URL:       firstURL(content),
		Language:  detectLanguage(content),
		IsSystem:  strings.Contains(content, encryptionNotice),
	}, true
}

func detectType(content string) (Type, string) {
	for _, marker := range mediaMarkers {
		m := marker.pattern.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		var duration string
		if len(m) > 1 {
			duration = strings.TrimSpace(m[1])
		}
		return marker.msgType, duration
	}
	return TypeText, ""
}

func firstURL(content string) string {
	return urlPattern.FindString(content)
}

// detectLanguage flags content containing any Devanagari character as mixed
// Hindi-English. This is a coarse signal, not language identification.
func detectLanguage(content string) string {
	for _, r := range content {
		if unicode.Is(unicode.Devanagari, r) {
			return LangHindiMixed
		}
	}
	return LangEnglish
}
