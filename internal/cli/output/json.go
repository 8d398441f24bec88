package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format formats data as indented JSON. A *Table is emitted as a list of
// objects keyed by lower-cased header.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(plain(data))
}
