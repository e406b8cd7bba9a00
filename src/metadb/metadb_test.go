package metadb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/chameleon/src/anon"
)

func newTestMetaDB(t *testing.T) *MetaDB {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, CreateAndInitMetaDBIfRequired(dir))
	// second call finds the existing db
	require.NoError(t, CreateAndInitMetaDBIfRequired(dir))
	m, err := NewMetaDB(dir)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestJsonObjects(t *testing.T) {
	m := newTestMetaDB(t)
	type counter struct {
		N int `json:"n"`
	}

	var c counter
	found, err := m.GetJsonObject(nil, "counter", &c)
	require.NoError(t, err)
	assert.False(t, found)

	for i := 0; i < 3; i++ {
		require.NoError(t, UpdateJsonObjectInMetaDB(m, "counter", func(c *counter) { c.N++ }))
	}
	found, err = m.GetJsonObject(nil, "counter", &c)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, c.N)

	require.NoError(t, m.DeleteJsonObject("counter"))
	found, err = m.GetJsonObject(nil, "counter", &c)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadOrCreateSalt(t *testing.T) {
	m := newTestMetaDB(t)

	salt, err := LoadOrCreateSalt(m)
	require.NoError(t, err)
	assert.Len(t, salt, anon.SALT_SIZE)

	again, err := LoadOrCreateSalt(m)
	require.NoError(t, err)
	assert.Equal(t, salt, again)
}

func TestRuns(t *testing.T) {
	m := newTestMetaDB(t)

	r1 := &RunRecord{
		StartedAt:       time.Unix(1700000000, 0),
		Input:           "in.csv",
		Output:          "out.csv",
		Locale:          "en_US",
		SaltFingerprint: "abcd1234",
		ColumnConfig:    map[string]string{"Email": "email"},
	}
	require.NoError(t, m.StartRun(r1))
	assert.NotEmpty(t, r1.RunId)
	assert.Equal(t, RUN_STATUS_RUNNING, r1.Status)

	r2 := &RunRecord{StartedAt: time.Unix(1700000100, 0), Input: "b.xlsx", Output: "c.xlsx", ColumnConfig: map[string]string{}}
	require.NoError(t, m.StartRun(r2))
	require.NoError(t, m.FinishRun(r1.RunId, RUN_STATUS_COMPLETED, 42))
	assert.Error(t, m.FinishRun("no-such-run", RUN_STATUS_FAILED, 0))

	runs, err := m.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, r1.RunId, runs[0].RunId)
	assert.Equal(t, RUN_STATUS_COMPLETED, runs[0].Status)
	assert.Equal(t, int64(42), runs[0].RowsProcessed)
	assert.False(t, runs[0].FinishedAt.IsZero())
	assert.Equal(t, map[string]string{"Email": "email"}, runs[0].ColumnConfig)
	assert.Equal(t, "abcd1234", runs[0].SaltFingerprint)

	assert.Equal(t, RUN_STATUS_RUNNING, runs[1].Status)
	assert.True(t, runs[1].FinishedAt.IsZero())
}
