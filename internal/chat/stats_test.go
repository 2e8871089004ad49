package chat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/chatlore/internal/chat"
)

func msgAt(sender string, hour int, msgType chat.Type, url string) chat.Message {
	return chat.Message{
		Timestamp: time.Date(2024, time.March, 5, hour, 0, 0, 0, time.UTC),
		Sender:    sender,
		Content:   "content",
		Type:      msgType,
		URL:       url,
		Language:  chat.LangEnglish,
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	t.Parallel()

	stats := chat.ComputeStats(nil)

	assert.Equal(t, 0, stats.MessageCount)
	assert.Empty(t, stats.Participants)
	assert.NotNil(t, stats.ActivityByHour)
	assert.NotNil(t, stats.ActivityByDate)
	assert.NotNil(t, stats.ParticipantStats)
}

func TestComputeStatsAggregation(t *testing.T) {
	t.Parallel()

	messages := []chat.Message{
		msgAt("Alice", 9, chat.TypeText, ""),
		msgAt("Alice", 9, chat.TypeImage, ""),
		msgAt("Bob", 21, chat.TypeText, "https://example.com"),
	}

	stats := chat.ComputeStats(messages)

	assert.Equal(t, 3, stats.MessageCount)
	assert.Equal(t, 1, stats.MediaCount)
	assert.Equal(t, []string{"Alice", "Bob"}, stats.Participants)

	assert.Equal(t, 2, stats.ActivityByHour["09"])
	assert.Equal(t, 1, stats.ActivityByHour["21"])
	assert.Equal(t, 3, stats.ActivityByDate["2024-03-05"])

	alice := stats.ParticipantStats["Alice"]
	assert.Equal(t, 2, alice.MessageCount)
	assert.Equal(t, 1, alice.MediaCount)
	assert.Equal(t, 0, alice.URLsShared)

	bob := stats.ParticipantStats["Bob"]
	assert.Equal(t, 1, bob.MessageCount)
	assert.Equal(t, 1, bob.URLsShared)
}

func TestComputeStatsExcludesSystemSenders(t *testing.T) {
	t.Parallel()

	messages := []chat.Message{
		msgAt("Alice", 10, chat.TypeText, ""),
		{
			Timestamp: time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),
			Sender:    "Group",
			Content:   "Messages and calls are end-to-end encrypted.",
			Type:      chat.TypeText,
			IsSystem:  true,
		},
	}

	stats := chat.ComputeStats(messages)

	// System message counts toward totals and activity, but its sender is
	// not a participant.
	assert.Equal(t, 2, stats.MessageCount)
	assert.Equal(t, []string{"Alice"}, stats.Participants)
	assert.Equal(t, 2, stats.ActivityByHour["10"])
	assert.NotContains(t, stats.ParticipantStats, "Group")
}
