package handle

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "Unknown"},
		{"unknown sentinel", "Unknown", "Unknown"},
		{"us number", "+15551234567", "+1 (555) 123-4567"},
		{"us number other digits", "+19876543210", "+1 (987) 654-3210"},
		{"email", "alice@example.com", "alice@example.com"},
		{"email with plus one", "+1user@example.com", "+1user@example.com"},
		{"international", "+447911123456", "+447911123456"},
		{"contact name", "Alice Smith", "Alice Smith"},
		{"short plus one", "+1555", "+1555"},
		{"too long plus one", "+155512345678", "+155512345678"},
		{"plus one with letters", "+1555ABC4567", "+1555ABC4567"},
		{"bare digits", "5551234567", "5551234567"},
		{"already formatted", "+1 (555) 123-4567", "+1 (555) 123-4567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Digits must survive formatting verbatim, in order.
func TestFormatPreservesDigits(t *testing.T) {
	inputs := []string{"+15551234567", "+12025550123", "+10000000000"}
	for _, in := range inputs {
		got := Format(in)
		var digits []rune
		for _, r := range got {
			if r >= '0' && r <= '9' {
				digits = append(digits, r)
			}
		}
		if string(digits) != in[1:] {
			t.Errorf("Format(%q) = %q: digits %q, want %q", in, got, string(digits), in[1:])
		}
	}
}

func TestFormatEmailIdentity(t *testing.T) {
	for _, in := range []string{"a@b", "x.y@z.example", "weird+tag@host", "@"} {
		if got := Format(in); got != in {
			t.Errorf("Format(%q) = %q, want identity", in, got)
		}
	}
}
