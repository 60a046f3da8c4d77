package jsonx

import (
	"bytes"
	"encoding/json"
)

// Marshal returns the JSON representation of v in compact form.
//
// Unlike json.Marshal(), HTML-sensitive characters are not escaped and there
// is no trailing newline, so the result is suitable for transmission as-is.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	// Encode() appends a newline that is not part of the value itself.
	data := buf.Bytes()

	return data[:len(data)-1], nil
}
