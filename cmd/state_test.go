package cmd

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/chameleon/src/lockfile"
	"github.com/yugabyte/chameleon/src/metadb"
	"github.com/yugabyte/chameleon/src/utils"
)

func TestInterruptFailsRunAndReleasesStateDir(t *testing.T) {
	dir := t.TempDir()
	code := -1
	utils.SetExitHook(func(c int) { code = c })
	defer utils.SetExitHook(nil)

	state, err := openStateDir(dir, "anonymize")
	require.NoError(t, err)
	run := &metadb.RunRecord{Input: "in.csv", Output: "out.csv"}
	require.NoError(t, state.metaDB.StartRun(run))
	state.trackRun(run.RunId)

	utils.Interrupt(syscall.SIGINT)
	assert.Equal(t, utils.EXIT_CODE_INTERRUPTED, code)
	assert.False(t, utils.FileOrFolderExists(lockfile.GetLockfilePath(dir, "anonymize")))

	m, err := metadb.NewMetaDB(dir)
	require.NoError(t, err)
	defer m.Close()
	runs, err := m.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, metadb.RUN_STATUS_FAILED, runs[0].Status)
}

func TestCloseForgetsStateDir(t *testing.T) {
	dir := t.TempDir()
	code := -1
	utils.SetExitHook(func(c int) { code = c })
	defer utils.SetExitHook(nil)

	state, err := openStateDir(dir, "anonymize")
	require.NoError(t, err)
	run := &metadb.RunRecord{Input: "in.csv", Output: "out.csv"}
	require.NoError(t, state.metaDB.StartRun(run))
	done := state.trackRun(run.RunId)
	require.NoError(t, state.metaDB.FinishRun(run.RunId, metadb.RUN_STATUS_COMPLETED, 3))
	done()
	state.Close()

	// nothing left to release or mark
	utils.ErrExit("later failure")
	assert.Equal(t, utils.EXIT_CODE_FAILURE, code)
	m, err := metadb.NewMetaDB(dir)
	require.NoError(t, err)
	defer m.Close()
	runs, err := m.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, metadb.RUN_STATUS_COMPLETED, runs[0].Status)
}
