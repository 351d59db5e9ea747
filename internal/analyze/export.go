package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Snapshot is a persisted export of the main analytics results.
// Ordered mappings keep their rank order through a JSON round-trip,
// so a reloaded snapshot reproduces the same top_senders and
// word_frequency ordering.
type Snapshot struct {
	AnalysisID        string                              `json:"analysis_id"`
	AnalysisDate      string                              `json:"analysis_date"`
	BasicStats        *BasicStats                         `json:"basic_stats"`
	WordFrequency     *orderedmap.OrderedMap[string, int] `json:"word_frequency"`
	ConversationStats *ConversationStats                  `json:"conversation_stats"`
}

// Snapshot captures basic stats, word frequency (top 10), and
// conversation stats (top 5) with a timestamp and a fresh analysis id.
func (a *Analyzer) Snapshot() (*Snapshot, error) {
	basic, err := a.BasicStats()
	if err != nil {
		return nil, err
	}
	words, err := a.WordFrequency(10)
	if err != nil {
		return nil, err
	}
	convs, err := a.ConversationStats(5)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		AnalysisID:        uuid.NewString(),
		AnalysisDate:      time.Now().UTC().Format(time.RFC3339),
		BasicStats:        basic,
		WordFrequency:     words,
		ConversationStats: convs,
	}, nil
}

// WriteSnapshot writes s to path as indented JSON.
func WriteSnapshot(path string, s *Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot previously written by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &s, nil
}
