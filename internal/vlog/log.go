package vlog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"vectorlog/internal/clock"
	"vectorlog/internal/order"
)

var (
	// ErrNoParticipant is returned when an append has no writer.
	ErrNoParticipant = errors.New("participant unset")
	// ErrSyncNotImplemented is returned by Sync. No merge protocol between
	// logs is defined yet.
	ErrSyncNotImplemented = errors.New("log sync not implemented")
)

// Entry is a single log record stamped with a vector clock.
type Entry struct {
	Clock   clock.VectorClock
	Content string
	Writer  string // Empty only for the root entry
}

// IsRoot reports whether this is the sentinel root entry.
func (e Entry) IsRoot() bool {
	return e.Writer == ""
}

func (e Entry) String() string {
	return fmt.Sprintf("%v %s:: %s", e.Clock, e.Writer, e.Content)
}

// Log is an append-only sequence of causally stamped entries.
// Appends are serialized so each one observes the full history.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates a log holding only the sentinel root entry: no writer, empty
// content and an empty clock.
func New() *Log {
	return &Log{
		entries: []Entry{{Clock: clock.New()}},
	}
}

// FromEntries rebuilds a log from previously stored entries. The entries
// must start with a root entry and satisfy the causal stamping invariant.
func FromEntries(entries []Entry) (*Log, error) {
	l := &Log{entries: append([]Entry(nil), entries...)}
	if err := l.Verify(); err != nil {
		return nil, err
	}
	return l, nil
}

// Append stamps content for the given participant and adds it to the log.
// On error the log is left unchanged.
func (l *Log) Append(participant, content string) (Entry, error) {
	if participant == "" {
		return Entry{}, ErrNoParticipant
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc := clock.New()
	for _, e := range l.entries {
		acc = acc.Join(e.Clock)
	}
	// Only safe to publish after incrementing for the writer
	acc = acc.Increment(participant)

	entry := Entry{
		Clock:   acc,
		Content: content,
		Writer:  participant,
	}
	l.entries = append(l.entries, entry)
	return entry, nil
}

// Entries returns the entries in append order. The returned slice is a
// copy and can be iterated any number of times.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// Clocks returns the clock of every entry in append order.
func (l *Log) Clocks() []clock.VectorClock {
	l.mu.RLock()
	defer l.mu.RUnlock()

	clocks := make([]clock.VectorClock, len(l.entries))
	for i, e := range l.entries {
		clocks[i] = e.Clock
	}
	return clocks
}

// Len returns the number of entries, root included.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Sync would merge a remote log into this one. It always fails with
// ErrSyncNotImplemented.
func (l *Log) Sync(ctx context.Context, remote *Log) error {
	return ErrSyncNotImplemented
}

// Verify checks the log invariants: only the first entry is a root, and
// every entry strictly dominates the join of all entries before it.
func (l *Log) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return errors.New("log has no root entry")
	}
	if !l.entries[0].IsRoot() {
		return fmt.Errorf("entry 0 has writer %q, expected root", l.entries[0].Writer)
	}

	acc := l.entries[0].Clock
	for i, e := range l.entries[1:] {
		pos := i + 1
		if e.IsRoot() {
			return fmt.Errorf("entry %d: %w", pos, ErrNoParticipant)
		}
		if !order.Dominates(e.Clock, acc) {
			return fmt.Errorf("entry %d: clock %v does not dominate history %v", pos, e.Clock, acc)
		}
		if _, ok := e.Clock.Get(e.Writer); !ok {
			return fmt.Errorf("entry %d: clock %v has no counter for writer %q", pos, e.Clock, e.Writer)
		}
		acc = acc.Join(e.Clock)
	}
	return nil
}
