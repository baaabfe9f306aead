package location

// Registry is the cyclic, ordered list of locations and the current selection.
// It is owned by the control loop and is not safe for concurrent use.
type Registry struct {
	locations []Location
	current   int
}

// NewRegistry creates a registry selecting the first location.
// The slice is copied; later changes to it are not observed.
func NewRegistry(locations []Location) (*Registry, error) {
	if len(locations) == 0 {
		return nil, ErrNoLocations
	}

	locs := make([]Location, len(locations))
	copy(locs, locations)

	return &Registry{locations: locs}, nil
}

// Current returns the selected location.
func (r *Registry) Current() Location {
	return r.locations[r.current]
}

// Advance selects the next location, wrapping to the first after the last.
func (r *Registry) Advance() {
	r.current = (r.current + 1) % len(r.locations)
}

// Index returns the position of the selected location.
func (r *Registry) Index() int {
	return r.current
}

// Len returns the number of configured locations.
func (r *Registry) Len() int {
	return len(r.locations)
}

// All returns a copy of the configured locations in cycle order.
func (r *Registry) All() []Location {
	out := make([]Location, len(r.locations))
	copy(out, r.locations)
	return out
}
