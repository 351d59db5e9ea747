// Package analyze computes descriptive statistics and conversation
// views over a loaded message collection.
//
// An Analyzer is a read-only view: it never mutates the collection and
// holds no caches, so every call recomputes from the messages it was
// given. All entry points return structured results; expected-empty
// outcomes (no messages loaded, no contact match) are ErrNoMessages or
// descriptive errors, never panics.
package analyze

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hurttlocker/chatlens/internal/handle"
	"github.com/hurttlocker/chatlens/internal/message"
)

// ErrNoMessages reports that the analyzer has an empty collection.
// This is an expected outcome of normal use, not a failure.
var ErrNoMessages = errors.New("no messages loaded")

// DefaultStopWords is the built-in stop-word vocabulary for word
// frequency. Overridable via Options for testing and localization.
func DefaultStopWords() []string {
	return []string{
		"the", "and", "but", "with", "for", "you", "are",
		"was", "this", "that", "have", "had",
	}
}

// DefaultAttachmentPatterns lists substrings that mark a message body
// as an attachment or reaction artifact rather than prose.
func DefaultAttachmentPatterns() []string {
	return []string{"<message", "attachment.>", "text,", "attachment", "shared", "location"}
}

// Options configures an Analyzer. Empty slices take the defaults.
type Options struct {
	StopWords          []string
	AttachmentPatterns []string
}

// Analyzer is a read-only analytics view over a message collection.
type Analyzer struct {
	msgs      []message.Message
	stops     map[string]struct{}
	artifacts []string
}

// New creates an Analyzer over msgs. The slice is not copied; callers
// must not mutate it afterward.
func New(msgs []message.Message, opts Options) *Analyzer {
	stopWords := opts.StopWords
	if len(stopWords) == 0 {
		stopWords = DefaultStopWords()
	}
	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	artifacts := opts.AttachmentPatterns
	if len(artifacts) == 0 {
		artifacts = DefaultAttachmentPatterns()
	}
	return &Analyzer{msgs: msgs, stops: stops, artifacts: artifacts}
}

// MessageCount returns the size of the underlying collection.
func (a *Analyzer) MessageCount() int {
	return len(a.msgs)
}

// BasicStats holds collection-wide statistics. TopSenders preserves
// rank order in JSON (insertion order = count descending, ties by
// first encounter).
type BasicStats struct {
	TotalMessages    int                                 `json:"total_messages"`
	UniqueSenders    int                                 `json:"unique_senders"`
	TopSenders       *orderedmap.OrderedMap[string, int] `json:"top_senders"`
	AvgMessageLength float64                             `json:"avg_message_length"`
	LongestMessage   int                                 `json:"longest_message"`
}

// BasicStats computes collection-wide statistics. Average length is
// taken over messages with non-empty text only; both length figures
// are 0 when no message has text.
func (a *Analyzer) BasicStats() (*BasicStats, error) {
	if len(a.msgs) == 0 {
		return nil, ErrNoMessages
	}

	counts := newRankedCounter()
	var lengths []int
	for _, m := range a.msgs {
		counts.add(handle.Format(m.HandleID))
		if m.Text != "" {
			lengths = append(lengths, len(m.Text))
		}
	}

	var sum, longest int
	for _, n := range lengths {
		sum += n
		if n > longest {
			longest = n
		}
	}
	avg := 0.0
	if len(lengths) > 0 {
		avg = float64(sum) / float64(len(lengths))
	}

	return &BasicStats{
		TotalMessages:    len(a.msgs),
		UniqueSenders:    counts.distinct(),
		TopSenders:       counts.top(5),
		AvgMessageLength: avg,
		LongestMessage:   longest,
	}, nil
}

// WordFrequency returns the topN most frequent tokens across all
// message bodies as an ordered mapping (insertion order = frequency
// rank, descending; ties by first encounter). Tokenization is
// deliberately trivial: lower-case, strip ",.!?", split on whitespace,
// drop tokens of length <= 2 and stop words. Messages whose body
// contains an attachment artifact are skipped entirely.
func (a *Analyzer) WordFrequency(topN int) (*orderedmap.OrderedMap[string, int], error) {
	if len(a.msgs) == 0 {
		return nil, ErrNoMessages
	}
	if topN <= 0 {
		topN = 10
	}

	strip := strings.NewReplacer(",", "", ".", "", "!", "", "?", "")
	counts := newRankedCounter()
	for _, m := range a.msgs {
		if m.Text == "" {
			continue
		}
		lower := strings.ToLower(m.Text)
		if a.isArtifact(lower) {
			continue
		}
		for _, word := range strings.Fields(strip.Replace(lower)) {
			if len(word) <= 2 {
				continue
			}
			if _, stop := a.stops[word]; stop {
				continue
			}
			counts.add(word)
		}
	}
	return counts.top(topN), nil
}

func (a *Analyzer) isArtifact(lowerText string) bool {
	for _, p := range a.artifacts {
		if strings.Contains(lowerText, p) {
			return true
		}
	}
	return false
}

// ConversationSummary describes per-contact dynamics for one
// conversation.
type ConversationSummary struct {
	Contact          string  `json:"contact"`
	TotalMessages    int     `json:"total_messages"`
	MyMessages       int     `json:"my_messages"`
	TheirMessages    int     `json:"their_messages"`
	MyPercentage     float64 `json:"my_percentage"`
	TheirPercentage  float64 `json:"their_percentage"`
	AvgMessageLength float64 `json:"avg_message_length"`
	WhoTalksMore     string  `json:"who_talks_more"`
}

// ConversationStats ranks conversations by message volume.
type ConversationStats struct {
	TotalConversations int                   `json:"total_conversations"`
	TopConversations   []ConversationSummary `json:"top_conversations"`
}

// conversationGroup accumulates per-contact aggregates during grouping.
type conversationGroup struct {
	key       string
	total     int
	mine      int
	theirs    int
	chars     int
	lastDate  string
	firstSeen int
}

// conversationGroups groups messages by formatted sender, preserving
// first-encounter order for deterministic tie-breaks.
func (a *Analyzer) conversationGroups() []*conversationGroup {
	byKey := make(map[string]*conversationGroup)
	var order []*conversationGroup
	for _, m := range a.msgs {
		key := handle.Format(m.HandleID)
		g, ok := byKey[key]
		if !ok {
			g = &conversationGroup{key: key, firstSeen: len(order)}
			byKey[key] = g
			order = append(order, g)
		}
		g.total++
		g.chars += len(m.Text)
		if m.IsFromMe {
			g.mine++
		} else {
			g.theirs++
		}
		if m.Date != "" && m.Date > g.lastDate {
			g.lastDate = m.Date
		}
	}
	return order
}

// ConversationStats computes per-contact totals, ratios, and the
// "who talks more" label for the topN busiest conversations. A
// mine-ratio of exactly 0.5 resolves to "Them"; the strict majority
// rule is intentional at this layer.
func (a *Analyzer) ConversationStats(topN int) (*ConversationStats, error) {
	if len(a.msgs) == 0 {
		return nil, ErrNoMessages
	}
	if topN <= 0 {
		topN = 5
	}

	groups := a.conversationGroups()
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].total > groups[j].total
	})

	stats := &ConversationStats{
		TotalConversations: len(groups),
		TopConversations:   make([]ConversationSummary, 0, topN),
	}
	for _, g := range groups {
		if len(stats.TopConversations) >= topN {
			break
		}
		myRatio := float64(g.mine) / float64(g.total)
		who := "Them"
		if myRatio > 0.5 {
			who = "Me"
		}
		stats.TopConversations = append(stats.TopConversations, ConversationSummary{
			Contact:          g.key,
			TotalMessages:    g.total,
			MyMessages:       g.mine,
			TheirMessages:    g.theirs,
			MyPercentage:     round1(myRatio * 100),
			TheirPercentage:  round1(float64(g.theirs) / float64(g.total) * 100),
			AvgMessageLength: round1(float64(g.chars) / float64(g.total)),
			WhoTalksMore:     who,
		})
	}
	return stats, nil
}

// ContactCount pairs a formatted contact with its message count.
type ContactCount struct {
	Contact      string `json:"contact"`
	MessageCount int    `json:"message_count"`
}

// ListContacts returns up to limit contacts ordered by message count
// descending, ties by first encounter.
func (a *Analyzer) ListContacts(limit int) ([]ContactCount, error) {
	if len(a.msgs) == 0 {
		return nil, ErrNoMessages
	}
	if limit <= 0 {
		limit = 20
	}

	groups := a.conversationGroups()
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].total > groups[j].total
	})

	out := make([]ContactCount, 0, limit)
	for _, g := range groups {
		if len(out) >= limit {
			break
		}
		out = append(out, ContactCount{Contact: g.key, MessageCount: g.total})
	}
	return out, nil
}

// SearchResult is one message matched by a text search.
type SearchResult struct {
	Sender   string `json:"sender"`
	Text     string `json:"text"`
	Date     string `json:"date"`
	IsFromMe bool   `json:"is_from_me"`
}

// SearchMessages returns up to limit messages whose body contains
// query, case-insensitively, in acquisition order. No match is an
// empty result, not an error.
func (a *Analyzer) SearchMessages(query string, limit int) ([]SearchResult, error) {
	if len(a.msgs) == 0 {
		return nil, ErrNoMessages
	}
	if limit <= 0 {
		limit = 10
	}

	q := strings.ToLower(query)
	results := make([]SearchResult, 0, limit)
	for _, m := range a.msgs {
		if m.Text == "" || !strings.Contains(strings.ToLower(m.Text), q) {
			continue
		}
		results = append(results, SearchResult{
			Sender:   handle.Format(m.HandleID),
			Text:     m.Text,
			Date:     m.Date,
			IsFromMe: m.IsFromMe,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// ContactStats holds detailed statistics for one exact contact.
type ContactStats struct {
	Contact          string  `json:"contact"`
	TotalMessages    int     `json:"total_messages"`
	MyMessages       int     `json:"my_messages"`
	TheirMessages    int     `json:"their_messages"`
	MyPercentage     float64 `json:"my_percentage"`
	TheirPercentage  float64 `json:"their_percentage"`
	AvgMessageLength float64 `json:"average_message_length"`
	WhoTalksMore     string  `json:"who_talks_more"`
}

// ContactStats computes statistics for messages whose formatted sender
// equals contact exactly. Unlike ConversationStats, the label here is
// three-way: "Me", "Them", or "Equal" on an exact tie.
func (a *Analyzer) ContactStats(contact string) (*ContactStats, error) {
	if len(a.msgs) == 0 {
		return nil, ErrNoMessages
	}

	var total, mine, chars int
	for _, m := range a.msgs {
		if handle.Format(m.HandleID) != contact {
			continue
		}
		total++
		chars += len(m.Text)
		if m.IsFromMe {
			mine++
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("no messages found for contact: %s", contact)
	}
	theirs := total - mine

	who := "Equal"
	switch {
	case mine > theirs:
		who = "Me"
	case theirs > mine:
		who = "Them"
	}
	return &ContactStats{
		Contact:          contact,
		TotalMessages:    total,
		MyMessages:       mine,
		TheirMessages:    theirs,
		MyPercentage:     round1(float64(mine) / float64(total) * 100),
		TheirPercentage:  round1(float64(theirs) / float64(total) * 100),
		AvgMessageLength: round1(float64(chars) / float64(total)),
		WhoTalksMore:     who,
	}, nil
}

// rankedCounter counts string keys while remembering first-encounter
// order, so ranking ties resolve deterministically.
type rankedCounter struct {
	counts map[string]int
	order  []string
}

func newRankedCounter() *rankedCounter {
	return &rankedCounter{counts: make(map[string]int)}
}

func (c *rankedCounter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *rankedCounter) distinct() int {
	return len(c.counts)
}

// top returns the n highest counts as an ordered mapping, count
// descending, ties by first encounter.
func (c *rankedCounter) top(n int) *orderedmap.OrderedMap[string, int] {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if n < len(keys) {
		keys = keys[:n]
	}
	om := orderedmap.New[string, int]()
	for _, k := range keys {
		om.Set(k, c.counts[k])
	}
	return om
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
