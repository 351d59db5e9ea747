package message

import "testing"

func TestFromRowFullRow(t *testing.T) {
	m, keep := FromRow([]any{"+15551234567", "hello", "2024-01-02T10:00:00", "iMessage", "acct", true})
	if !keep {
		t.Fatal("expected row to be kept")
	}
	want := Message{
		HandleID: "+15551234567",
		Text:     "hello",
		Date:     "2024-01-02T10:00:00",
		Service:  "iMessage",
		Account:  "acct",
		IsFromMe: true,
	}
	if m != want {
		t.Errorf("FromRow = %+v, want %+v", m, want)
	}
}

func TestFromRowShortRows(t *testing.T) {
	tests := []struct {
		name string
		row  []any
		want Message
		keep bool
	}{
		{
			"empty row dropped",
			[]any{},
			Message{HandleID: "Unknown", Service: "Unknown", Account: "Unknown"},
			false,
		},
		{
			"handle only",
			[]any{"+15551234567"},
			Message{HandleID: "+15551234567", Service: "Unknown", Account: "Unknown"},
			true,
		},
		{
			"text only",
			[]any{nil, "hi"},
			Message{HandleID: "Unknown", Text: "hi", Service: "Unknown", Account: "Unknown"},
			true,
		},
		{
			"nil fields dropped",
			[]any{nil, nil, nil, nil, nil, nil},
			Message{HandleID: "Unknown", Service: "Unknown", Account: "Unknown"},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, keep := FromRow(tt.row)
			if keep != tt.keep {
				t.Errorf("keep = %v, want %v", keep, tt.keep)
			}
			if m != tt.want {
				t.Errorf("FromRow = %+v, want %+v", m, tt.want)
			}
		})
	}
}

func TestDateAt(t *testing.T) {
	tests := []struct {
		name string
		date any
		want string
	}{
		{"nil", nil, ""},
		{"string", "2024-01-02", "2024-01-02"},
		{"bytes", []byte("2024-01-02"), "2024-01-02"},
		{"int64", int64(726943000000000000), "726943000000000000"},
		{"int", 42, "42"},
		{"float", float64(1700000000), "1700000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := FromRow([]any{"h", "t", tt.date})
			if m.Date != tt.want {
				t.Errorf("date = %q, want %q", m.Date, tt.want)
			}
		})
	}
}

func TestFromRowDirectionCoercion(t *testing.T) {
	for _, v := range []any{true, int64(1), 1, float64(1)} {
		m, _ := FromRow([]any{"h", "t", nil, nil, nil, v})
		if !m.IsFromMe {
			t.Errorf("IsFromMe false for %T(%v)", v, v)
		}
	}
	for _, v := range []any{false, int64(0), 0, float64(0), nil, "yes"} {
		m, _ := FromRow([]any{"h", "t", nil, nil, nil, v})
		if m.IsFromMe {
			t.Errorf("IsFromMe true for %T(%v)", v, v)
		}
	}
}

func TestSortKey(t *testing.T) {
	m := Message{Date: "2024-01-02"}
	if m.SortKey() != "2024-01-02" {
		t.Errorf("SortKey = %q", m.SortKey())
	}
	empty := Message{}
	if empty.SortKey() != MinTimestamp {
		t.Errorf("SortKey for absent date = %q, want %q", empty.SortKey(), MinTimestamp)
	}
	if !(empty.SortKey() < "2024-01-02") {
		t.Error("absent date must sort before real timestamps")
	}
}
