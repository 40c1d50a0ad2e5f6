package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// DefaultConfigFile is read when no path is given and it exists
const DefaultConfigFile = "nrf24tools.toml"

// ErrUnsupportedFormat indicates a config file extension other than
// .toml, .yaml, .yml or .json
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Load reads path over the defaults. An empty path falls back to
// DefaultConfigFile in the working directory, or plain defaults if that
// does not exist either.
func Load(path string) (*File, error) {
	configuration := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return configuration, nil
		}
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch format(path) {
	case "toml":
		_, err = toml.Decode(string(data), configuration)
	case "yaml":
		err = yaml.Unmarshal(data, configuration)
	case "json":
		err = json.Unmarshal(data, configuration)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return configuration, nil
}

// Save writes the configuration in the format implied by the extension
func Save(configuration *File, path string) error {
	var (
		data []byte
		err  error
	)
	switch format(path) {
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(configuration)
		data = buf.Bytes()
	case "yaml":
		data, err = yaml.Marshal(configuration)
	case "json":
		data, err = json.MarshalIndent(configuration, "", "  ")
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return ""
}
