//go:build !jsonv2

package jsoncompat

import (
	"io"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal encodes with sonic using standard library compatible settings.
func Marshal(v any) ([]byte, error) { return api.Marshal(v) }

// Unmarshal decodes with sonic using standard library compatible settings.
func Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }

// Decode reads one JSON value from r.
func Decode(r io.Reader, v any) error { return api.NewDecoder(r).Decode(v) }

// Encode writes v to w followed by a newline.
func Encode(w io.Writer, v any) error { return api.NewEncoder(w).Encode(v) }
