package ingest

import "testing"

func TestCheckMacOSVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"10.14", false},
		{"10.14.6", false},
		{"10.15.7", false},
		{"11.0", false},
		{"14.5", false},
		{"26.0", false},
		{"10.13", true},
		{"10.13.6", true},
		{"10.9", true},
		{"9.2", true},
		{"", false},        // no version info: do not block
		{"garbage", false}, // unparseable: do not block
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := checkMacOSVersion(tt.version)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkMacOSVersion(%q) err = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string passthrough", "hello", "hello"},
		{"utf8 bytes", []byte("héllo"), "héllo"},
		{"latin-1 bytes", []byte{0x63, 0x61, 0x66, 0xE9}, "café"},
		{"empty bytes", []byte{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeText(tt.in); got != tt.want {
				t.Errorf("decodeText = %q, want %q", got, tt.want)
			}
		})
	}
}

// The ladder must be total: no byte sequence may panic or error out.
func TestDecodeTextNeverFails(t *testing.T) {
	inputs := [][]byte{
		{0xFF, 0xFE, 0x00},
		{0x80},
		{0xC3}, // truncated utf-8 sequence
	}
	for _, in := range inputs {
		if got := decodeText(in); got == "" {
			t.Errorf("decodeText(% x) returned empty, want recovered text", in)
		}
	}
}
