package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailtracker/trailtracker/internal/conf"
)

func TestCommand_RedactsSecrets(t *testing.T) {
	settings := &conf.Settings{}
	settings.Output.MySQL.Password = "hunter2"
	settings.MQTT.Password = "mqtt-secret"

	var out bytes.Buffer
	cmd := Command(settings)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.NotContains(t, out.String(), "hunter2")
	assert.NotContains(t, out.String(), "mqtt-secret")
	assert.Contains(t, out.String(), "[redacted]")

	out.Reset()
	cmd = Command(settings)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--show-secrets"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "hunter2")
}

func TestCommand_Defaults(t *testing.T) {
	var out bytes.Buffer
	cmd := Command(&conf.Settings{})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--defaults"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, string(conf.DefaultConfig()), out.String())
}
