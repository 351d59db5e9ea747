package analyze

import (
	"path/filepath"
	"testing"

	"github.com/hurttlocker/chatlens/internal/message"
)

func TestSnapshotRoundTrip(t *testing.T) {
	msgs := []message.Message{
		mk("+15551234567", "coffee tomorrow morning", "2024-01-01T10:00:00", false),
		mk("+15551234567", "coffee works", "2024-01-01T10:05:00", true),
		mk("bob@example.com", "coffee again coffee", "2024-01-02T09:00:00", false),
	}
	a := New(msgs, Options{})

	snap, err := a.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.AnalysisID == "" || snap.AnalysisDate == "" {
		t.Error("snapshot missing id or date")
	}

	path := filepath.Join(t.TempDir(), "stats.json")
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}

	if got.AnalysisID != snap.AnalysisID {
		t.Errorf("AnalysisID changed across round-trip")
	}
	if got.BasicStats.TotalMessages != snap.BasicStats.TotalMessages {
		t.Errorf("total_messages = %d, want %d",
			got.BasicStats.TotalMessages, snap.BasicStats.TotalMessages)
	}
	if got.BasicStats.UniqueSenders != snap.BasicStats.UniqueSenders {
		t.Errorf("unique_senders = %d, want %d",
			got.BasicStats.UniqueSenders, snap.BasicStats.UniqueSenders)
	}

	// Tie-break determinism: top_conversations order must survive.
	want := snap.ConversationStats.TopConversations
	have := got.ConversationStats.TopConversations
	if len(have) != len(want) {
		t.Fatalf("top_conversations length %d, want %d", len(have), len(want))
	}
	for i := range want {
		if have[i].Contact != want[i].Contact {
			t.Errorf("top_conversations[%d] = %q, want %q", i, have[i].Contact, want[i].Contact)
		}
	}

	// Word frequency rank order must survive the JSON round-trip.
	wp, gp := snap.WordFrequency.Oldest(), got.WordFrequency.Oldest()
	for wp != nil && gp != nil {
		if wp.Key != gp.Key || wp.Value != gp.Value {
			t.Errorf("word frequency order diverged: %s=%d vs %s=%d",
				wp.Key, wp.Value, gp.Key, gp.Value)
		}
		wp, gp = wp.Next(), gp.Next()
	}
	if wp != nil || gp != nil {
		t.Error("word frequency lengths differ after round-trip")
	}
}

func TestSnapshotEmptyCollection(t *testing.T) {
	a := New(nil, Options{})
	if _, err := a.Snapshot(); err == nil {
		t.Error("Snapshot on empty collection must error")
	}
}
