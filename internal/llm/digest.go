package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/javiermolinar/marquee/internal/datatable/cell"
	"github.com/javiermolinar/marquee/internal/event"
)

const digestSystemPrompt = `You are a concise event programming analyst. Output ONLY the exact format shown - no markdown, no extra text.`

const digestPromptTemplate = `Summarize this event listing and output EXACTLY this format:

HEADLINE: [ 3-6 word summary ]

🎟  DEMAND: One sentence on which events sell best and worst.
📍 SPREAD: One sentence on cities and venues.
⚠️  ATTENTION: Drafts or cancellations that need action, if any.

Listing (%d events, as of %s):
%s

Rules:
- Keep each line under 80 characters
- Be specific with titles, cities and percentages from the data
- If there is nothing to flag, omit the ATTENTION line
- Output plain text only`

// maxDigestEvents bounds the prompt size.
const maxDigestEvents = 50

// Digest asks the model for a short overview of events.
func (a *Assistant) Digest(ctx context.Context, events []*event.Event, now time.Time) (string, error) {
	if len(events) == 0 {
		return "", fmt.Errorf("no events to summarize")
	}
	prompt := fmt.Sprintf(digestPromptTemplate, len(events), now.Format("Mon Jan 2, 2006"), formatListing(events, now))

	return a.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: digestSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
}

// formatListing renders one line per event, soonest first as given.
func formatListing(events []*event.Event, now time.Time) string {
	var sb strings.Builder
	for i, e := range events {
		if i == maxDigestEvents {
			fmt.Fprintf(&sb, "... and %d more\n", len(events)-i)
			break
		}
		fmt.Fprintf(&sb, "- %s | %s @ %s, %s | %s | %s sold of %s | %s\n",
			e.StartsAt.Format("Mon Jan 2 15:04"),
			e.Title,
			cell.Text(e.Venue),
			cell.Text(e.City),
			cell.Number(e.Price, cell.Price),
			cell.Number(e.SoldPercent(), cell.Percent),
			humanize.Comma(int64(e.Capacity)),
			statusNote(e, now),
		)
	}
	return sb.String()
}

func statusNote(e *event.Event, now time.Time) string {
	if e.IsUpcoming(now) {
		return fmt.Sprintf("%s, %s", e.Status, humanize.RelTime(e.StartsAt, now, "ago", "from now"))
	}
	return string(e.Status)
}
