package vlog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"vectorlog/internal/clock"
	"vectorlog/internal/order"
)

func mustClock(t *testing.T, m map[string]int64) clock.VectorClock {
	t.Helper()
	c, err := clock.FromMap(m)
	require.NoError(t, err)
	return c
}

func TestNew_HasRoot(t *testing.T) {
	l := New()

	entries := l.Entries()
	require.Len(t, entries, 1)
	require.True(t, entries[0].IsRoot())
	require.Empty(t, entries[0].Content)
	require.Equal(t, 0, entries[0].Clock.Len())
	require.NoError(t, l.Verify())
}

func TestAppend_ThreadsAccumulator(t *testing.T) {
	l := New()

	steps := []struct {
		writer  string
		content string
		want    map[string]int64
	}{
		{"alice", "hello", map[string]int64{"alice": 1}},
		{"bob", "world", map[string]int64{"alice": 1, "bob": 1}},
		{"alice", "again", map[string]int64{"alice": 2, "bob": 1}},
	}

	for _, s := range steps {
		e, err := l.Append(s.writer, s.content)
		require.NoError(t, err)
		require.Equal(t, s.writer, e.Writer)
		require.Equal(t, s.content, e.Content)
		require.Truef(t, e.Clock.Equal(mustClock(t, s.want)),
			"append(%s, %s): expected clock %v, got %v", s.writer, s.content, s.want, e.Clock)
	}

	entries := l.Entries()
	require.Len(t, entries, 4)
	for i, s := range steps {
		require.True(t, entries[i+1].Clock.Equal(mustClock(t, s.want)))
	}
	require.NoError(t, l.Verify())
}

func TestAppend_EmptyParticipant(t *testing.T) {
	l := New()
	_, err := l.Append("alice", "hello")
	require.NoError(t, err)

	_, err = l.Append("", "nobody")
	require.ErrorIs(t, err, ErrNoParticipant)
	require.Equal(t, 2, l.Len(), "failed append must leave the log unchanged")
}

func TestAppend_EachEntryDominatesHistory(t *testing.T) {
	l := New()
	writers := []string{"alice", "bob", "alice", "carol", "bob", "bob", "alice"}
	for _, w := range writers {
		_, err := l.Append(w, "msg from "+w)
		require.NoError(t, err)
	}

	entries := l.Entries()
	for j := 1; j < len(entries); j++ {
		for i := 0; i < j; i++ {
			require.Truef(t, order.Dominates(entries[j].Clock, entries[i].Clock),
				"entry %d %v should dominate entry %d %v", j, entries[j].Clock, i, entries[i].Clock)
		}
	}
	require.NoError(t, l.Verify())
}

func TestLog_ChainAlternatingWriters(t *testing.T) {
	l := New()
	for _, w := range []string{"alice", "bob", "alice"} {
		_, err := l.Append(w, "x")
		require.NoError(t, err)
	}

	clocks := l.Clocks()[1:]
	require.True(t, order.IsOrderable(clocks))
	require.NoError(t, l.Verify())

	// The key set grows from {alice} to {alice, bob}, which the strict
	// key set comparison refuses to order.
	require.False(t, order.IsIncreasing(clocks))
}

func TestLog_ChainIncreasingOnceKeysSettle(t *testing.T) {
	l := New()
	for _, w := range []string{"alice", "bob", "alice", "bob", "alice"} {
		_, err := l.Append(w, "x")
		require.NoError(t, err)
	}

	// From the second non-root entry on, every clock has both participants.
	clocks := l.Clocks()[2:]
	require.True(t, order.IsIncreasing(clocks))

	for i := 1; i < len(clocks); i++ {
		require.Equal(t, clock.Before, clocks[i-1].Compare(clocks[i]))
	}
}

func TestLog_ChainSingleWriter(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		_, err := l.Append("alice", "x")
		require.NoError(t, err)
	}
	require.True(t, order.IsIncreasing(l.Clocks()[1:]))
}

func TestEntries_ReturnsCopy(t *testing.T) {
	l := New()
	_, err := l.Append("alice", "hello")
	require.NoError(t, err)

	first := l.Entries()
	first[1].Content = "tampered"

	second := l.Entries()
	require.Equal(t, "hello", second[1].Content)

	// Restartable: iterating twice gives the same sequence
	require.Equal(t, l.Entries(), l.Entries())
}

func TestSync_NotImplemented(t *testing.T) {
	l := New()
	err := l.Sync(context.Background(), New())
	require.ErrorIs(t, err, ErrSyncNotImplemented)
	require.Equal(t, 1, l.Len())
}

func TestFromEntries(t *testing.T) {
	src := New()
	for _, w := range []string{"alice", "bob"} {
		_, err := src.Append(w, "x")
		require.NoError(t, err)
	}

	rebuilt, err := FromEntries(src.Entries())
	require.NoError(t, err)
	require.Equal(t, src.Len(), rebuilt.Len())

	e, err := rebuilt.Append("alice", "y")
	require.NoError(t, err)
	require.True(t, e.Clock.Equal(mustClock(t, map[string]int64{"alice": 2, "bob": 1})))
}

func TestFromEntries_RejectsBrokenLogs(t *testing.T) {
	root := Entry{Clock: clock.New()}

	tests := []struct {
		name    string
		entries []Entry
	}{
		{
			name: "empty",
		},
		{
			name:    "missing root",
			entries: []Entry{{Clock: mustClock(t, map[string]int64{"alice": 1}), Writer: "alice"}},
		},
		{
			// What an append that drops the joined/incremented clock produces
			name: "unstamped entries",
			entries: []Entry{
				root,
				{Clock: clock.New(), Content: "hello", Writer: "alice"},
				{Clock: clock.New(), Content: "world", Writer: "bob"},
			},
		},
		{
			name: "entry does not dominate history",
			entries: []Entry{
				root,
				{Clock: mustClock(t, map[string]int64{"alice": 2}), Writer: "alice"},
				{Clock: mustClock(t, map[string]int64{"alice": 1, "bob": 1}), Writer: "bob"},
			},
		},
		{
			name: "second root",
			entries: []Entry{
				root,
				{Clock: mustClock(t, map[string]int64{"alice": 1}), Writer: "alice"},
				{Clock: mustClock(t, map[string]int64{"alice": 2})},
			},
		},
		{
			name: "writer missing from its own clock",
			entries: []Entry{
				root,
				{Clock: mustClock(t, map[string]int64{"alice": 1}), Writer: "bob"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEntries(tt.entries)
			require.Error(t, err)
		})
	}
}

func TestAppend_Concurrent(t *testing.T) {
	l := New()
	writers := []string{"alice", "bob", "carol", "dave"}

	var wg sync.WaitGroup
	for _, w := range writers {
		wg.Add(1)
		go func(w string) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if _, err := l.Append(w, "x"); err != nil {
					t.Error(err)
				}
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, 1+len(writers)*25, l.Len())
	require.NoError(t, l.Verify())

	last := l.Entries()[l.Len()-1].Clock
	for _, w := range writers {
		c, ok := last.Get(w)
		require.True(t, ok)
		require.Equal(t, int64(25), c)
	}
}

func TestVerify_ReportsEntryPosition(t *testing.T) {
	l := &Log{entries: []Entry{
		{Clock: clock.New()},
		{Clock: clock.New(), Writer: "alice"},
	}}
	err := l.Verify()
	require.Error(t, err)
	require.Contains(t, err.Error(), "entry 1")
	require.False(t, errors.Is(err, ErrNoParticipant))
}
