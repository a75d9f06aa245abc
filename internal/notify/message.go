package notify

import (
	"fmt"
	"strings"
	"time"
)

// SlackMessage represents a Slack message with optional Block Kit formatting.
type SlackMessage struct {
	// Channel is the target channel (e.g., "#kitchen")
	Channel string `json:"channel,omitempty"`

	// Text is the fallback text for notifications
	Text string `json:"text"`

	// Blocks contains Block Kit blocks for rich formatting
	Blocks []Block `json:"blocks,omitempty"`

	// Attachments contains legacy attachments (for color bars)
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Block represents a Slack Block Kit block.
type Block struct {
	Type     string       `json:"type"`
	Text     *TextObject  `json:"text,omitempty"`
	Elements []Element    `json:"elements,omitempty"`
	Fields   []TextObject `json:"fields,omitempty"`
}

// TextObject represents text content in a block.
type TextObject struct {
	Type  string `json:"type"` // "plain_text" or "mrkdwn"
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Element represents a context item.
type Element struct {
	Type string      `json:"type"`
	Text *TextObject `json:"text,omitempty"`
}

// Attachment represents a legacy Slack attachment (used for color bars).
type Attachment struct {
	Color  string  `json:"color,omitempty"`
	Blocks []Block `json:"blocks,omitempty"`
}

// FormatText renders the one-line, human-readable form of an event.
func FormatText(event *Event) string {
	name := event.Recipe
	if name == "" {
		name = "recipe"
	}

	if !event.Success {
		msg := fmt.Sprintf("Could not %s %s", verb(event.Type), name)
		if event.Error != "" {
			msg += ": " + truncate(event.Error, 200)
		}

		if event.Transient {
			msg += " (temporary, try again)"
		}

		return msg
	}

	switch event.Type {
	case EventCreated:
		return fmt.Sprintf("Created %s", name)
	case EventUpdated:
		return fmt.Sprintf("Saved changes to %s", name)
	case EventDeleted:
		return fmt.Sprintf("Deleted %s", name)
	case EventRated:
		return fmt.Sprintf("Rated %s %s", name, Stars(event.Rating))
	case EventRefresh:
		return "Recipes refreshed"
	default:
		return fmt.Sprintf("%s: %s", toTitle(event.Type), name)
	}
}

// verb names the action an event type stands for.
func verb(eventType string) string {
	switch eventType {
	case EventCreated:
		return "create"
	case EventUpdated:
		return "save"
	case EventDeleted:
		return "delete"
	case EventRated:
		return "rate"
	case EventRefresh:
		return "refresh"
	default:
		return "update"
	}
}

// Stars renders a 0..5 rating as filled and empty stars.
func Stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// FormatSlackMessage creates a Slack message from an event.
func FormatSlackMessage(event *Event, channel string) *SlackMessage {
	text := FormatText(event)

	blocks := []Block{
		{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: text},
		},
	}

	if event.RecipeID != "" {
		blocks = append(blocks, Block{
			Type:   "section",
			Fields: []TextObject{{Type: "mrkdwn", Text: "*Recipe ID:*\n`" + event.RecipeID + "`"}},
		})
	}

	blocks = append(blocks, formatContextBlock(event))

	return &SlackMessage{
		Channel: channel,
		Text:    text,
		Attachments: []Attachment{{
			Color:  getEventColor(event),
			Blocks: blocks,
		}},
	}
}

// getEventColor returns the color for an event.
func getEventColor(event *Event) string {
	if !event.Success {
		return "#E01E5A" // Red for errors
	}

	switch event.Type {
	case EventDeleted:
		return "#ECB22E"
	case EventRated:
		return "#F2952F"
	default:
		return "#2EB67D"
	}
}

// formatContextBlock creates a context block with the event timestamp.
func formatContextBlock(event *Event) Block {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	contextText := fmt.Sprintf("<!date^%d^{date_short_pretty} at {time}|%s>",
		ts.Unix(),
		ts.Format("Jan 2, 2006 3:04 PM"))

	return Block{
		Type: "context",
		Elements: []Element{{
			Type: "mrkdwn",
			Text: &TextObject{Type: "mrkdwn", Text: contextText},
		}},
	}
}

// toTitle converts a string to title case.
func toTitle(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

// truncate shortens a string to the specified length.
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	// Remove newlines for single-line display
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")

	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
