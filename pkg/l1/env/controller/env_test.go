package controller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/degu.go/pkg/l1"
)

func TestNewEnv(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref.ID = "dev1"
	conf.MQTTBrokerURL = "mqtt://localhost:1883/degu/"
	env, err := conf.NewEnv(nil)
	require.NoError(t, err)
	require.Equal(t, []string{conf.MQTTBrokerURL}, env.RegistryURLs)
	require.Len(t, env.Runnables(), 1)
}

func TestNewEnvWithoutBroker(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref.ID = "dev1"
	conf.MQTTBrokerURL = ""
	env, err := conf.NewEnv(nil)
	require.NoError(t, err)
	require.Empty(t, env.Runnables())
}

func TestNewEnvErrors(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref = l1.ControllerRef{Type: l1.DeviceType}
	_, err := conf.NewEnv(nil)
	require.Error(t, err)

	conf.Info.Ref.ID = "dev1"
	conf.MQTTBrokerURL = "http://localhost"
	_, err = conf.NewEnv(nil)
	require.Error(t, err)
}
