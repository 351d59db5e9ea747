package main

import "testing"

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"--db", "/tmp/chat.db", "--top", "7", "--verbose", "Alice"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opts.dbPath != "/tmp/chat.db" {
		t.Errorf("dbPath = %q", opts.dbPath)
	}
	if opts.top != 7 {
		t.Errorf("top = %d", opts.top)
	}
	if !opts.verbose {
		t.Error("verbose not set")
	}
	if len(opts.args) != 1 || opts.args[0] != "Alice" {
		t.Errorf("args = %v", opts.args)
	}
}

func TestParseArgsErrors(t *testing.T) {
	cases := [][]string{
		{"--db"},            // missing value
		{"--top", "seven"},  // non-numeric
		{"--limit"},         // missing value
		{"--bogus"},         // unknown flag
	}
	for _, args := range cases {
		if _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%v) succeeded, want error", args)
		}
	}
}
