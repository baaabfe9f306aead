// Package config loads device settings from the environment, an optional .env
// file and an optional YAML locations file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/breatheroute/weatherpager/internal/location"
)

// ErrConfiguration is returned for any invalid or missing startup setting.
// It is fatal: the device cannot run without a valid configuration.
var ErrConfiguration = errors.New("configuration error")

// ErrMissingAPIKey is returned when no provider API key is configured.
var ErrMissingAPIKey = fmt.Errorf("%w: missing API key", ErrConfiguration)

// APIKeyEnv is the environment variable holding the OpenWeatherMap key.
const APIKeyEnv = "OWM_API_KEY"

var validate = validator.New(validator.WithRequiredStructEnabled())

// LocationsFile is the on-disk layout of a locations file:
//
//	locations:
//	  - name: Potton,uk
//	    latitude: "52.1291"
//	    longitude: "-0.2156"
type LocationsFile struct {
	Locations []location.Location `yaml:"locations" validate:"required,min=1,dive"`
}

// LoadEnv loads KEY=value pairs from path into the process environment.
// Variables already set take precedence. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: loading %s: %w", ErrConfiguration, path, err)
	}
	return nil
}

// LoadLocations reads the locations file at path. An empty path returns the
// built-in locations.
func LoadLocations(path string) ([]location.Location, error) {
	if path == "" {
		return location.DefaultLocations(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading locations: %w", ErrConfiguration, err)
	}

	locations, err := ParseLocations(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return locations, nil
}

// ParseLocations decodes and validates a locations document.
func ParseLocations(data []byte) ([]location.Location, error) {
	var file LocationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing locations: %w", ErrConfiguration, err)
	}

	if err := Validate(file); err != nil {
		return nil, err
	}
	return file.Locations, nil
}

// APIKey returns the provider key from the environment.
func APIKey() (string, error) {
	key := os.Getenv(APIKeyEnv)
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// Validate checks v against its validate struct tags.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q validation", ErrConfiguration, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}
