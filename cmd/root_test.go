package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailtracker/trailtracker/internal/buildinfo"
	"github.com/trailtracker/trailtracker/internal/conf"
)

func TestRootCommand_LoadsConfigBeforeSubcommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("main:\n  name: ridge-cams\nmqtt:\n  password: hunter2\n"), 0o600))

	settings := &conf.Settings{}
	root := RootCommand(settings, buildinfo.NewContext("1.0.0", "", ""))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "config"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "ridge-cams", settings.Main.Name)
	assert.Contains(t, out.String(), "ridge-cams")
	assert.NotContains(t, out.String(), "hunter2")
}

func TestRootCommand_Version(t *testing.T) {
	root := RootCommand(&conf.Settings{}, buildinfo.NewContext("1.0.0", "2024-05-01", "abc1234"))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "trailtracker 1.0.0 (commit abc1234, built 2024-05-01)\n", out.String())
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	root := RootCommand(&conf.Settings{}, buildinfo.NewContext("", "", ""))
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "config"})
	root.SetOut(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := RootCommand(&conf.Settings{}, buildinfo.NewContext("", "", ""))

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "summary", "config"})
}
