package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText recovers a usable string from whatever the text column
// held. Byte payloads go through a ladder: UTF-8 if valid, then
// Latin-1, then a lossy replacement decode. The ladder is total; text
// decoding never fails past this point.
func decodeText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		if utf8.Valid(t) {
			return string(t)
		}
		if s, err := charmap.ISO8859_1.NewDecoder().Bytes(t); err == nil {
			return string(s)
		}
		return strings.ToValidUTF8(string(t), string(utf8.RuneError))
	default:
		return fmt.Sprint(t)
	}
}
