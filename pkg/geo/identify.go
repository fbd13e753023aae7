package geo

import "strings"

var cities = []string{
	"Ahmedabad", "Bangalore", "Chennai", "Delhi", "Faridabad", "Ghaziabad", "Gurgaon",
	"Hyderabad", "Jaipur", "Kolkata", "Lucknow", "Mumbai", "Noida", "Pune",
}

// IsKnownCity reports whether place is one of the cities the directory serves.
func IsKnownCity(place string) bool {
	for _, c := range cities {
		if strings.EqualFold(c, strings.TrimSpace(place)) {
			return true
		}
	}
	return false
}

// CanonicalCity returns the directory spelling of a known city, or the
// trimmed input when the city is unknown.
func CanonicalCity(place string) string {
	place = strings.TrimSpace(place)
	for _, c := range cities {
		if strings.EqualFold(c, place) {
			return c
		}
	}
	return place
}

// ExtractCity pulls a city name out of free text such as
// "Music Academy, Sector 15, Gurgaon" or "Coaching in Delhi".
func ExtractCity(text string) string {
	text = strings.TrimSpace(text)

	candidate := ""
	for _, prep := range []string{" in ", " at "} {
		if idx := strings.LastIndex(strings.ToLower(text), prep); idx != -1 {
			candidate = strings.TrimSpace(text[idx+len(prep):])
			break
		}
	}
	if candidate == "" {
		if idx := strings.LastIndex(text, ","); idx != -1 {
			candidate = strings.TrimSpace(text[idx+1:])
		}
	}
	if candidate == "" {
		return ""
	}
	return CanonicalCity(candidate)
}
