package ticketing

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// TranscriptMessageLimit is how many recent messages a transcript covers.
	TranscriptMessageLimit = 100

	// TranscriptMaxLength is the maximum transcript length in characters.
	TranscriptMaxLength = 1900

	attachmentToken = "[attachment]"
)

// RenderTranscript renders messages oldest first as "[timestamp] author: content" lines.
func RenderTranscript(msgs []Message) string {
	sorted := make([]Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var b strings.Builder
	for i, m := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}

		parts := make([]string, 0, 1+m.Attachments)
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
		for n := 0; n < m.Attachments; n++ {
			parts = append(parts, attachmentToken)
		}

		fmt.Fprintf(&b, "[%s] %s: %s", m.Timestamp.UTC().Format(time.RFC3339), m.Author, strings.Join(parts, " "))
	}
	return b.String()
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
