// Package location holds the configured forecast locations and the current selection.
package location

import "errors"

// Location errors.
var (
	ErrNoLocations = errors.New("no locations configured")
)

// Location is a named point the device can fetch forecasts for.
// Coordinates are kept as the decimal strings they were configured with and are
// passed to the provider verbatim.
type Location struct {
	Name      string `yaml:"name" validate:"required"`
	Latitude  string `yaml:"latitude" validate:"required,latitude"`
	Longitude string `yaml:"longitude" validate:"required,longitude"`
}

// DefaultLocations returns the locations shipped with the device.
func DefaultLocations() []Location {
	return []Location{
		{Name: "North Walsham,uk", Latitude: "52.8227", Longitude: "1.3860"},
		{Name: "Potton,uk", Latitude: "52.1291", Longitude: "-0.2156"},
		{Name: "Halstead,uk", Latitude: "51.9450", Longitude: "0.6390"},
	}
}
