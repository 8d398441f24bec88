package confloader

import (
	"errors"
	"strings"
)

// ErrReadBytesNotSupported is returned by ReadBytes of the map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider does not support ReadBytes")

// mapProvider is a koanf provider over a map keyed by dotted paths.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the map with dotted keys expanded into nested maps.
func (m mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any)
	for key, v := range m {
		cur := out
		parts := strings.Split(key, ".")
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = v
	}
	return out, nil
}
