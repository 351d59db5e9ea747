package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hurttlocker/chatlens/internal/handle"
)

// ConversationMessage is one message within a retrieved conversation
// window. Sender is "me" for outgoing messages, otherwise the
// formatted contact.
type ConversationMessage struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
	Sender    string `json:"sender"`
	Direction string `json:"direction"`
	Service   string `json:"service"`
	CharCount int    `json:"char_count"`
}

// DateRange bounds the kept conversation window.
type DateRange struct {
	FirstMessage string `json:"first_message,omitempty"`
	LastMessage  string `json:"last_message,omitempty"`
}

// ConversationResult is the full retrieval output: the kept message
// window in chronological order plus derived statistics.
type ConversationResult struct {
	Contact          string                `json:"contact"`
	MatchedContact   string                `json:"matched_contact"`
	TotalMessages    int                   `json:"total_messages"`
	MyMessages       int                   `json:"my_messages"`
	TheirMessages    int                   `json:"their_messages"`
	MyPercentage     float64               `json:"my_percentage"`
	TheirPercentage  float64               `json:"their_percentage"`
	AvgMessageLength float64               `json:"avg_message_length"`
	DateRange        DateRange             `json:"date_range"`
	MessagesShown    int                   `json:"messages_shown"`
	MessagesLimited  bool                  `json:"messages_limited"`
	Messages         []ConversationMessage `json:"messages"`
}

// Conversation retrieves the conversation matching query.
//
// Matching is a bidirectional case-insensitive substring test against
// both the formatted and the raw identifier: the query may be a
// fragment of the contact, or the contact a fragment of the query.
// This favors recall (partial numbers and partial names resolve) at
// the cost of false positives on short queries.
//
// Matched messages sort ascending by timestamp token (lexicographic;
// absent timestamps sort first). When more than limit messages match,
// only the most recent limit are kept and MessagesLimited is set:
// truncation always prefers recency over completeness.
//
// daysBack is accepted for interface compatibility but is a no-op:
// timestamp tokens are never parsed into calendar time at this layer.
func (a *Analyzer) Conversation(query string, limit, daysBack int) (*ConversationResult, error) {
	if len(a.msgs) == 0 {
		return nil, ErrNoMessages
	}
	if limit <= 0 {
		limit = 100
	}
	_ = daysBack

	normalized := strings.ToLower(strings.TrimSpace(query))

	type entry struct {
		msg    ConversationMessage
		key    string
		isMine bool
	}
	var matched []entry
	for _, m := range a.msgs {
		formatted := handle.Format(m.HandleID)
		if !contactMatches(normalized, formatted, m.HandleID) {
			continue
		}
		sender := formatted
		direction := "received"
		if m.IsFromMe {
			sender = "me"
			direction = "sent"
		}
		matched = append(matched, entry{
			msg: ConversationMessage{
				Text:      m.Text,
				Timestamp: m.Date,
				Sender:    sender,
				Direction: direction,
				Service:   m.Service,
				CharCount: len(m.Text),
			},
			key:    m.SortKey(),
			isMine: m.IsFromMe,
		})
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("no conversation found with %q; try a different contact name, phone number, or email address", query)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].key < matched[j].key
	})

	limited := len(matched) > limit
	if limited {
		matched = matched[len(matched)-limit:]
	}

	var mine, chars int
	msgs := make([]ConversationMessage, len(matched))
	for i, e := range matched {
		msgs[i] = e.msg
		chars += e.msg.CharCount
		if e.isMine {
			mine++
		}
	}
	total := len(msgs)
	theirs := total - mine

	matchedContact := query
	if msgs[0].Sender != "me" {
		matchedContact = msgs[0].Sender
	}

	return &ConversationResult{
		Contact:          query,
		MatchedContact:   matchedContact,
		TotalMessages:    total,
		MyMessages:       mine,
		TheirMessages:    theirs,
		MyPercentage:     round1(float64(mine) / float64(total) * 100),
		TheirPercentage:  round1(float64(theirs) / float64(total) * 100),
		AvgMessageLength: round1(float64(chars) / float64(total)),
		DateRange: DateRange{
			FirstMessage: msgs[0].Timestamp,
			LastMessage:  msgs[total-1].Timestamp,
		},
		MessagesShown:   total,
		MessagesLimited: limited,
		Messages:        msgs,
	}, nil
}

// contactMatches applies the bidirectional substring test to both
// identifier forms.
func contactMatches(normalizedQuery, formatted, raw string) bool {
	f := strings.ToLower(formatted)
	r := strings.ToLower(raw)
	return strings.Contains(f, normalizedQuery) ||
		strings.Contains(r, normalizedQuery) ||
		strings.Contains(normalizedQuery, f) ||
		strings.Contains(normalizedQuery, r)
}
