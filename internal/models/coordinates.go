package models

// Coordinates is a WGS84 position in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is where a provider (or a parent) is based.
type Location struct {
	City        string       `json:"city"`
	Area        string       `json:"area"`
	Pincode     string       `json:"pincode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	// Online marks providers that only teach remotely.
	Online bool `json:"online,omitempty"`
}

// UserLocation is the saved location preference of the signed in user.
type UserLocation struct {
	City        string       `json:"city"`
	Area        string       `json:"area"`
	Pincode     string       `json:"pincode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}
