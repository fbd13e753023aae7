// Package keys builds object-store keys for channel values.
package keys

import (
	"fmt"
	"strings"
)

// sanitizeKey replaces spaces and slashes with hyphens and lowercases the
// string so user supplied names stay inside their prefix.
func sanitizeKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "-", "/", "-").Replace(s)
	return strings.ToLower(s)
}

// ChannelValue returns the object key holding key within namespace.
func ChannelValue(namespace, key string) string {
	if namespace == "" {
		namespace = "default"
	}
	return fmt.Sprintf("channels/%s/%s.json", sanitizeKey(namespace), sanitizeKey(key))
}
