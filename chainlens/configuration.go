package chainlens

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRollingWindow = 10
	MinRollingWindow     = 5
	MaxRollingWindow     = 30
)

type Configuration struct {
	RollingWindow int    `yaml:"rollingWindow"`
	LogLevel      string `yaml:"logLevel"`
	ShowProgress  bool   `yaml:"showProgress"`
	ColumnStats   bool   `yaml:"columnStats"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		RollingWindow: DefaultRollingWindow,
		LogLevel:      "info",
		ShowProgress:  false,
		ColumnStats:   true,
	}
}

// LoadConfiguration applies a YAML file on top of the defaults. An empty path yields the defaults.
func LoadConfiguration(path string) (Configuration, error) {
	configuration := DefaultConfiguration()
	if path == "" {
		return configuration, nil
	}
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	err = yaml.Unmarshal(yamlData, &configuration)
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to unmarshal configuration (%s): %w", path, err)
	}
	err = configuration.Validate()
	if err != nil {
		return Configuration{}, err
	}
	return configuration, nil
}

func (c Configuration) Validate() error {
	if c.RollingWindow < MinRollingWindow || c.RollingWindow > MaxRollingWindow {
		return fmt.Errorf("rolling window must be between %d and %d, got %d", MinRollingWindow, MaxRollingWindow, c.RollingWindow)
	}
	return nil
}
