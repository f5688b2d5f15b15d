package controller

import (
	"flag"
	"fmt"
	"os"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1"
	"github.com/robotalks/degu.go/pkg/l1/comm"
	"github.com/robotalks/degu.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/degu.go/pkg/l1/env"
)

// Config provides common options to register a device.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL specifies the MQTT broker to use, empty to disable.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
}

var defaultConfig = Config{
	Info: l1.ControllerInfo{
		Ref:  l1.ControllerRef{Type: l1.DeviceType},
		Meta: l1.ControllerMeta{Description: "degu mesh sensor"},
	},
	MQTTBrokerURL: "mqtt://localhost:1883/degu/",
}

func init() {
	if val := os.Getenv("DEGU_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("DEGU_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	} else {
		defaultConfig.Info.Ref.ID = env.DefaultID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the env for a registered device.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewEnv creates Env from config, commands are served by handler.
func (c *Config) NewEnv(handler l1.CommandHandler) (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device id must be specified")
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info, handler)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %w", err)
		}
		env.Registrar.Add(reg)
		env.RegistryURLs = append(env.RegistryURLs, c.MQTTBrokerURL)
	}
	return env, nil
}

// Runnables returns the registrars to run.
func (e *Env) Runnables() []fx.Runnable {
	return e.Registrar.Runnables()
}
