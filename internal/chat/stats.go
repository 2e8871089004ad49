package chat

import (
	"sort"
	"time"
)

// ParticipantStats aggregates per-sender activity.
type ParticipantStats struct {
	MessageCount int `json:"message_count"`
	MediaCount   int `json:"media_count"`
	URLsShared   int `json:"urls_shared"`
}

// DateRange is the span between the earliest and latest message timestamps.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Stats describes a parsed message sequence. It is recomputed as a whole
// whenever the sequence changes, never partially updated.
type Stats struct {
	Participants     []string                    `json:"participants"`
	MessageCount     int                         `json:"message_count"`
	MediaCount       int                         `json:"media_count"`
	DateRange        DateRange                   `json:"date_range"`
	ActivityByHour   map[string]int              `json:"activity_by_hour"`
	ActivityByDate   map[string]int              `json:"activity_by_date"`
	ParticipantStats map[string]ParticipantStats `json:"participant_stats"`
}

// ComputeStats derives statistics from a message sequence. An empty sequence
// yields zero-value stats with initialized maps, not an error.
func ComputeStats(messages []Message) Stats {
	stats := Stats{
		Participants:     []string{},
		MessageCount:     len(messages),
		ActivityByHour:   make(map[string]int),
		ActivityByDate:   make(map[string]int),
		ParticipantStats: make(map[string]ParticipantStats),
	}
	if len(messages) == 0 {
		return stats
	}

	stats.DateRange = DateRange{Start: messages[0].Timestamp, End: messages[0].Timestamp}

	for _, msg := range messages {
		if msg.Timestamp.Before(stats.DateRange.Start) {
			stats.DateRange.Start = msg.Timestamp
		}
		if msg.Timestamp.After(stats.DateRange.End) {
			stats.DateRange.End = msg.Timestamp
		}

		if msg.IsMedia() {
			stats.MediaCount++
		}

		stats.ActivityByHour[msg.Timestamp.Format("15")]++
		stats.ActivityByDate[msg.Timestamp.Format("2006-01-02")]++

		if msg.IsSystem {
			continue
		}

		ps := stats.ParticipantStats[msg.Sender]
		ps.MessageCount++
		if msg.IsMedia() {
			ps.MediaCount++
		}
		if msg.URL != "" {
			ps.URLsShared++
		}
		stats.ParticipantStats[msg.Sender] = ps
	}

	for sender := range stats.ParticipantStats {
		stats.Participants = append(stats.Participants, sender)
	}
	sort.Strings(stats.Participants)

	return stats
}
