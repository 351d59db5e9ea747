// Package message defines the canonical message record and the
// normalizer that builds it from raw store rows.
//
// Both acquisition paths (structured reader and raw SQL fallback)
// produce positional rows of varying arity and field types. FromRow
// collapses that variety into one immutable Message shape with
// documented defaults, so everything downstream reads a single form.
package message

import (
	"strconv"

	"github.com/hurttlocker/chatlens/internal/handle"
)

// MinTimestamp sorts before any real timestamp token. Used as the sort
// key for messages whose source row carried no date.
const MinTimestamp = "1970-01-01T00:00:00"

// Message is the canonical record for a single message. Immutable once
// created; the loaded collection is never mutated after ingestion.
//
// Date is an opaque timestamp token in whatever representation the
// source used (ISO string or Apple epoch integer rendered as decimal).
// It is never parsed into calendar time, only compared lexicographically.
type Message struct {
	HandleID string `json:"handle_id"`
	Text     string `json:"text"`
	Date     string `json:"date,omitempty"`
	Service  string `json:"service"`
	Account  string `json:"account"`
	IsFromMe bool   `json:"is_from_me"`
}

// SortKey returns the token used for chronological ordering, with the
// epoch floor for absent dates so they sort first.
func (m Message) SortKey() string {
	if m.Date == "" {
		return MinTimestamp
	}
	return m.Date
}

// CharCount returns the length of the message body in bytes.
func (m Message) CharCount() int {
	return len(m.Text)
}

// FromRow normalizes a raw positional row into a Message. Rows may have
// fewer than six fields; missing positions take their defaults
// (Unknown for identifier/service/account, empty text, empty date,
// not-from-me). The second return reports whether the record passes the
// retention rule: a message is kept only if it has text or a known
// sender. Rows with neither are noise and are dropped.
func FromRow(row []any) (Message, bool) {
	m := Message{
		HandleID: stringAt(row, 0, handle.Unknown),
		Text:     stringAt(row, 1, ""),
		Date:     dateAt(row, 2),
		Service:  stringAt(row, 3, handle.Unknown),
		Account:  stringAt(row, 4, handle.Unknown),
		IsFromMe: boolAt(row, 5),
	}
	return m, m.Text != "" || m.HandleID != handle.Unknown
}

func stringAt(row []any, i int, def string) string {
	if i >= len(row) || row[i] == nil {
		return def
	}
	switch v := row[i].(type) {
	case string:
		if v == "" {
			return def
		}
		return v
	case []byte:
		if len(v) == 0 {
			return def
		}
		return string(v)
	default:
		return def
	}
}

// dateAt renders the timestamp token. Numeric source values (Apple
// epoch) become their decimal string so lexicographic order matches
// numeric order for same-width values.
func dateAt(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func boolAt(row []any, i int) bool {
	if i >= len(row) || row[i] == nil {
		return false
	}
	switch v := row[i].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}
