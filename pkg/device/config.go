package device

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/robotalks/degu.go/pkg/l1/env/controller"
)

// Config provides options to setup a device.
type Config struct {
	// ShadowURL is the transport to the CoAP shadow server.
	// e.g. udp://host:5683, serial:///dev/ttyACM0?baud=115200
	ShadowURL  string
	ShadowPath string
	// Timeout bounds each CoAP transaction, 0 for no bound.
	Timeout time.Duration
	// Controllers overrides the GPIO controllers of a simulated board,
	// name to number of pins.
	Controllers map[string]int

	Registry controller.Config
}

// File is the YAML form of Config. Fields left out keep their values.
type File struct {
	ShadowURL   string            `yaml:"shadow_url"`
	ShadowPath  string            `yaml:"shadow_path"`
	Timeout     time.Duration     `yaml:"timeout"`
	ID          string            `yaml:"id"`
	MQTT        *string           `yaml:"mqtt"`
	Description string            `yaml:"description"`
	Labels      map[string]string `yaml:"labels"`
	Controllers map[string]int    `yaml:"controllers"`
}

// DefaultTimeout is the default bound of a CoAP transaction.
const DefaultTimeout = 5 * time.Second

var defaultConfig = Config{
	ShadowURL:  "udp://localhost:5683",
	ShadowPath: DefaultShadowPath,
	Timeout:    DefaultTimeout,
}

func init() {
	if val := os.Getenv("DEGU_SHADOW_URL"); val != "" {
		defaultConfig.ShadowURL = val
	}
	defaultConfig.Registry = *controller.Default()
}

// SetupFlags sets command line flags. The file named by DEGU_CONFIG is
// loaded first so flags override it.
func SetupFlags() {
	if path := os.Getenv("DEGU_CONFIG"); path != "" {
		if err := defaultConfig.LoadFile(path); err != nil {
			log.Fatalln(err)
		}
	}
	flag.StringVar(&defaultConfig.ShadowURL, "shadow", defaultConfig.ShadowURL, "Shadow server transport URL")
	flag.StringVar(&defaultConfig.ShadowPath, "shadow-path", defaultConfig.ShadowPath, "Shadow resource path")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "CoAP transaction timeout, 0 for none")
	flag.StringVar(&defaultConfig.Registry.Info.Ref.ID, "id", defaultConfig.Registry.Info.Ref.ID, "Device ID")
	flag.StringVar(&defaultConfig.Registry.MQTTBrokerURL, "mqtt", defaultConfig.Registry.MQTTBrokerURL, "MQTT broker URL, empty to disable")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile applies a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	var f File
	if err = yaml.UnmarshalStrict(data, &f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.Apply(&f)
	return nil
}

// Apply overrides the config with fields set in f.
func (c *Config) Apply(f *File) {
	if f.ShadowURL != "" {
		c.ShadowURL = f.ShadowURL
	}
	if f.ShadowPath != "" {
		c.ShadowPath = f.ShadowPath
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.ID != "" {
		c.Registry.Info.Ref.ID = f.ID
	}
	if f.MQTT != nil {
		c.Registry.MQTTBrokerURL = *f.MQTT
	}
	if f.Description != "" {
		c.Registry.Info.Meta.Description = f.Description
	}
	if len(f.Labels) > 0 {
		labels := make(map[string]string, len(f.Labels))
		for k, v := range c.Registry.Info.Meta.Labels {
			labels[k] = v
		}
		for k, v := range f.Labels {
			labels[k] = v
		}
		c.Registry.Info.Meta.Labels = labels
	}
	if len(f.Controllers) > 0 {
		c.Controllers = f.Controllers
	}
}
