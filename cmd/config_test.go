package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/chameleon/src/config"
	testutils "github.com/yugabyte/chameleon/test/utils"
)

// Helper to stub out anonymize so only flag resolution runs
func stubAnonymizeCmd(t *testing.T) {
	run, preRun := anonymizeCmd.Run, anonymizeCmd.PreRun
	anonymizeCmd.Run = func(cmd *cobra.Command, args []string) {}
	anonymizeCmd.PreRun = func(cmd *cobra.Command, args []string) {}
	t.Cleanup(func() {
		anonymizeCmd.Run, anonymizeCmd.PreRun = run, preRun
	})
}

func TestAnonymizeSettingsBinding(t *testing.T) {
	resetCommandState(t)
	stubAnonymizeCmd(t)
	state := t.TempDir()

	settings := testutils.CreateTempFile(t, "settings.yaml", `
log-level: debug
parallel-jobs: 8
disable-pb: true
state-dir: `+state+`

anonymize:
  config: /tmp/columns.json
  locale: fr_FR
  parallel-jobs: 3
  show-salt: true
`)

	_, err := execute(t, "anonymize", "in.csv", "out.csv", "--settings", settings, "--parallel-jobs", "2")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/columns.json", columnConfigFile)
	assert.Equal(t, "fr_FR", localeFlag)
	assert.Equal(t, 2, parallelJobs, "command line wins over settings")
	assert.True(t, showSalt)
	assert.True(t, disablePb, "global key applies when the section has none")
	assert.Equal(t, state, stateDir)
	assert.Equal(t, config.DEBUG, config.LogLevel)
}

func TestSettingsFromEnvironment(t *testing.T) {
	resetCommandState(t)
	stubAnonymizeCmd(t)
	t.Setenv("CHAMELEON_LOCALE", "de_DE")
	t.Setenv("CHAMELEON_ANONYMIZE_PARALLEL_JOBS", "4")

	settings := testutils.CreateTempFile(t, "settings.yaml", "locale: it_IT\n")
	t.Setenv(SETTINGS_FILE_ENV_VAR, settings)

	_, err := execute(t, "anonymize", "in.csv", "out.csv", "-c", "columns.json")
	require.NoError(t, err)
	assert.Equal(t, "de_DE", localeFlag, "environment wins over settings file")
	assert.Equal(t, 4, parallelJobs)
	assert.Equal(t, "columns.json", columnConfigFile)
}

func TestInvalidSettingsKeys(t *testing.T) {
	for name, content := range map[string]string{
		"salt is never a setting": "salt: abcd\n",
		"unknown section":         "export:\n  state-dir: /tmp\n",
		"unknown section key":     "anonymize:\n  salt: abcd\n",
		"key of another command":  "runs-list:\n  locale: en_US\n",
	} {
		resetCommandState(t)
		stubAnonymizeCmd(t)
		settings := testutils.CreateTempFile(t, "settings.yaml", content)
		err := executeExpectingErrExit(t, "anonymize", "in.csv", "out.csv", "--settings", settings)
		assert.ErrorContains(t, err, "invalid settings", name)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	resetCommandState(t)
	err := executeExpectingErrExit(t, "salt", "generate", "--log-level", "loud")
	assert.Error(t, err)
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "runs list", commandName(runsListCmd))
	assert.Equal(t, "anonymize", commandName(anonymizeCmd))
	assert.Equal(t, "", commandName(rootCmd))
}
