package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempLog(t *testing.T) *Log {
	t.Helper()

	l, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	return l
}

func TestAppendAndRecent(t *testing.T) {
	l := tempLog(t)

	require.NoError(t, l.Append(Record{
		Group:   "note.md",
		Action:  "accept-chosen",
		Chosen:  "note.sync-conflict-20240101-113000-ABCDEF.md",
		Outcome: "resolved",
	}))

	records, err := l.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "note.md", rec.Group)
	assert.Equal(t, "resolved", rec.Outcome)
	assert.False(t, rec.Time.IsZero(), "Append sets the time when zero")
}

func TestRecent_NewestFirstAndLimited(t *testing.T) {
	l := tempLog(t)

	for i, group := range []string{"a.md", "b.md", "c.md"} {
		require.NoError(t, l.Append(Record{
			Group:   group,
			Action:  "accept-original",
			Outcome: "resolved",
			Time:    time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}))
	}

	records, err := l.Recent(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c.md", records[0].Group)
	assert.Equal(t, "b.md", records[1].Group)
}

func TestRecent_NoLimitReturnsAll(t *testing.T) {
	l := tempLog(t)

	for _, group := range []string{"a.md", "b.md"} {
		require.NoError(t, l.Append(Record{Group: group, Outcome: "manual"}))
	}

	records, err := l.Recent(0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecent_EmptyLog(t *testing.T) {
	l := tempLog(t)

	records, err := l.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Append(Record{Group: "note.md", Outcome: "failed-partial", Detail: "rename failed"}))
	require.NoError(t, l.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Recent(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "failed-partial", records[0].Outcome)
	assert.Equal(t, "rename failed", records[0].Detail)
}
