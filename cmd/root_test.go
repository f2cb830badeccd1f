package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/accident-risk/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"serve", "derive", "check", "runs"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "accident-risk", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"log-level", "artifacts"} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "root should have --%s flag", name)
		assert.Empty(t, flag.DefValue)
	}
}

func TestApplyGlobalFlags(t *testing.T) {
	t.Cleanup(func() { logLevelFlag, artifactsFlag = "", "" })

	c := &config.Config{
		Log:       config.LogConfig{Level: "info", Format: "json"},
		Artifacts: config.ArtifactsConfig{Dir: "artifacts"},
	}
	applyGlobalFlags(c)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "artifacts", c.Artifacts.Dir)

	logLevelFlag, artifactsFlag = "debug", "/srv/accident-risk/artifacts"
	applyGlobalFlags(c)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "/srv/accident-risk/artifacts", c.Artifacts.Dir)
	assert.Equal(t, "json", c.Log.Format)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestDeriveCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"dataset", "sheet", "out", "record"} {
		flag := deriveCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "derive should have --%s flag", flagName)
	}
}

func TestCheckCommand_Args(t *testing.T) {
	assert.Error(t, checkCmd.Args(checkCmd, nil))
	assert.NoError(t, checkCmd.Args(checkCmd, []string{"Poblacion"}))
	assert.NoError(t, checkCmd.Args(checkCmd, []string{"Poblacion", "Dagupan City"}))
	assert.Error(t, checkCmd.Args(checkCmd, []string{"a", "b", "c"}))
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])

	flag := runsListCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
}
