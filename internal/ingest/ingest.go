// Package ingest loads the message collection from a local message store.
//
// Acquisition is two-tier. The primary path asks a structured Reader
// adapter for all messages; the adapter is treated as untrusted, so the
// call runs inside a containment boundary that converts panics (the Go
// face of a dependency trying to abort the process) into ordinary
// errors. Any primary-path failure triggers the fallback: a direct
// read-only SQLite query joining the message and handle tables, newest
// first, with per-row recovery so one bad row never sinks the load.
//
// The collection is loaded at most once per process and is read-only
// afterward, so analytics and retrieval can share it without locking.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hurttlocker/chatlens/internal/handle"
	"github.com/hurttlocker/chatlens/internal/message"
)

// DefaultRowCap bounds the fallback query so a large store cannot
// exhaust memory. Newest rows win.
const DefaultRowCap = 10000

// DefaultPlaceholder marks rows whose text column was empty, keeping
// "no content" distinguishable from "decoding failed".
const DefaultPlaceholder = "[attachment/reaction]"

// fallbackQuery joins messages to their sender handles, newest first.
const fallbackQuery = `
SELECT h.id, m.text, m.date, m.service, m.account, m.is_from_me
FROM message m
LEFT JOIN handle h ON m.handle_id = h.ROWID
ORDER BY m.date DESC
LIMIT ?`

// Reader is the structured adapter contract for the primary path.
// Rows are positional: identifier, text, date, service, account,
// direction. The engine tolerates any deviation (wrong arity, error,
// panic) by falling back to the raw query.
type Reader interface {
	Messages(ctx context.Context) ([][]any, error)
}

// Config configures an Engine. Zero values take the documented defaults.
type Config struct {
	// DBPath is the message store location. Required.
	DBPath string

	// Reader is the primary structured adapter. Nil means the primary
	// path is unavailable and the engine goes straight to fallback.
	Reader Reader

	// RowCap bounds the fallback query row count (default 10000).
	RowCap int

	// Placeholder substitutes for empty text in the fallback path
	// (default "[attachment/reaction]").
	Placeholder string

	// SkipPlatformCheck disables the OS precondition check. Intended
	// for tests and for stores copied off their origin machine.
	SkipPlatformCheck bool

	// Logger receives load diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// Engine owns the in-memory message collection for its process lifetime.
type Engine struct {
	cfg    Config
	log    *zap.Logger
	msgs   []message.Message
	loaded bool
}

// NewEngine creates an Engine. Load must be called before the
// collection is readable.
func NewEngine(cfg Config) *Engine {
	if cfg.RowCap <= 0 {
		cfg.RowCap = DefaultRowCap
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: log}
}

// Messages returns the loaded collection in acquisition order. The
// returned slice must be treated as read-only.
func (e *Engine) Messages() []message.Message {
	return e.msgs
}

// Loaded reports whether Load has completed successfully.
func (e *Engine) Loaded() bool {
	return e.loaded
}

// Load populates the message collection. An empty store is a valid
// success. Precondition failures (wrong platform, inaccessible store)
// return a *PrecondError and are never retried. Primary-path failures
// are never fatal: they trigger the fallback query, and only an
// outright fallback failure is reported to the caller.
func (e *Engine) Load(ctx context.Context) error {
	if !e.cfg.SkipPlatformCheck {
		if err := validatePlatform(); err != nil {
			return err
		}
	}
	if err := validateStoreAccess(e.cfg.DBPath); err != nil {
		return err
	}

	rows, err := e.fetchPrimary(ctx)
	if err != nil {
		e.log.Warn("primary reader failed, using fallback query",
			zap.String("db", e.cfg.DBPath),
			zap.Error(err))
		return e.fallback(ctx)
	}

	e.msgs = e.msgs[:0]
	for _, row := range rows {
		m, keep := message.FromRow(row)
		if keep {
			e.msgs = append(e.msgs, m)
		}
	}
	e.loaded = true
	e.log.Info("loaded messages",
		zap.Int("messages", len(e.msgs)),
		zap.Int("contacts", distinctHandles(e.msgs)),
		zap.String("path", "reader"))
	return nil
}

// fetchPrimary invokes the structured adapter inside the containment
// boundary. A panicking adapter (including one that would otherwise
// abort the process) surfaces as an ordinary error scoped to this call.
func (e *Engine) fetchPrimary(ctx context.Context) (rows [][]any, err error) {
	if e.cfg.Reader == nil {
		return nil, errors.New("no structured reader configured")
	}
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("reader aborted: %v", r)
		}
	}()
	return e.cfg.Reader.Messages(ctx)
}

// fallback reads the store directly. Zero rows is a valid empty load;
// individual bad rows are skipped with a warning.
func (e *Engine) fallback(ctx context.Context) error {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", e.cfg.DBPath))
	if err != nil {
		return fmt.Errorf("opening message store: %w", err)
	}
	defer db.Close()

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM message").Scan(&total); err != nil {
		return fmt.Errorf("counting messages: %w", err)
	}
	if total == 0 {
		e.msgs = e.msgs[:0]
		e.loaded = true
		e.log.Info("message store is empty")
		return nil
	}

	rows, err := db.QueryContext(ctx, fallbackQuery, e.cfg.RowCap)
	if err != nil {
		return fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	e.msgs = e.msgs[:0]
	skipped := 0
	for rows.Next() {
		var hid, text, date, service, account, fromMe any
		if err := rows.Scan(&hid, &text, &date, &service, &account, &fromMe); err != nil {
			skipped++
			e.log.Warn("skipping unreadable row", zap.Error(err))
			continue
		}
		body := decodeText(text)
		if body == "" {
			body = e.cfg.Placeholder
		}
		m, _ := message.FromRow([]any{hid, body, date, service, account, fromMe})
		if m.HandleID == handle.Unknown {
			continue
		}
		e.msgs = append(e.msgs, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading messages: %w", err)
	}

	if len(e.msgs) == 0 {
		return errors.New("no valid messages found")
	}
	e.loaded = true
	e.log.Info("loaded messages",
		zap.Int("messages", len(e.msgs)),
		zap.Int("contacts", distinctHandles(e.msgs)),
		zap.Int("skipped", skipped),
		zap.String("path", "fallback"))
	return nil
}

func distinctHandles(msgs []message.Message) int {
	seen := make(map[string]struct{}, 64)
	for _, m := range msgs {
		seen[m.HandleID] = struct{}{}
	}
	return len(seen)
}

// validateStoreAccess checks that the store file exists and is
// readable. Failures are fatal preconditions carrying remediation text.
func validateStoreAccess(path string) error {
	if path == "" {
		return &PrecondError{
			Reason: "no message store path configured",
			Remedy: "set db_path in the config file or pass --db",
		}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &PrecondError{
				Reason: fmt.Sprintf("message store not found at %s", path),
				Remedy: "check the path, or pass --db pointing at a chat.db copy",
			}
		}
		return &PrecondError{Reason: fmt.Sprintf("cannot stat message store: %v", err)}
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return &PrecondError{
				Reason: "permission denied reading the message store",
				Remedy: "grant Full Disk Access: System Settings → Privacy & Security → Full Disk Access",
			}
		}
		return &PrecondError{Reason: fmt.Sprintf("cannot open message store: %v", err)}
	}
	defer f.Close()
	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil && err != io.EOF {
		return &PrecondError{Reason: fmt.Sprintf("cannot read message store: %v", err)}
	}
	return nil
}

// PrecondError is a fatal load precondition failure. It is never
// retried; Remedy carries actionable guidance for the operator.
type PrecondError struct {
	Reason string
	Remedy string
}

func (e *PrecondError) Error() string {
	if e.Remedy == "" {
		return e.Reason
	}
	return e.Reason + " (" + e.Remedy + ")"
}
