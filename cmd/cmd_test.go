package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yugabyte/chameleon/src/utils"
)

type exitCalled struct {
	code int
}

// resetCommandState puts every flag back to its default, since cobra keeps
// flag values in package state between Execute calls.
func resetCommandState(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(SETTINGS_FILE_ENV_VAR, "")

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.PersistentFlags(), c.Flags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
	utils.DoNotPrompt = false
	utils.SetPromptInput(nil)
	t.Cleanup(func() { utils.SetPromptInput(nil) })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

// executeExpectingErrExit runs args and returns the error chameleon exited with.
func executeExpectingErrExit(t *testing.T, args ...string) (err error) {
	t.Helper()
	utils.SetExitHook(func(code int) { panic(exitCalled{code: code}) })
	defer utils.SetExitHook(nil)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected %v to exit with an error", args)
		}
		if _, ok := r.(exitCalled); !ok {
			panic(r)
		}
		err = utils.ErrExitErr
	}()
	_, _ = execute(t, args...)
	return nil
}
