//go:build jsonv2

package jsoncompat

import (
	json "encoding/json/v2"
	"io"
)

// Marshal proxies to encoding/json/v2 Marshal when jsonv2 build tag is present.
func Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal proxies to encoding/json/v2 Unmarshal when jsonv2 build tag is present.
func Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Decode reads one JSON value from r.
func Decode(r io.Reader, v any) error { return json.UnmarshalRead(r, v) }

// Encode writes v to w followed by a newline.
func Encode(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
