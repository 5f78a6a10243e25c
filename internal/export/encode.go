package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// plantumlAlphabet is the base64 variant used by PlantUML servers.
const plantumlAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

var plantumlEncoding = base64.NewEncoding(plantumlAlphabet).WithPadding(base64.NoPadding)

// Encode compresses markup with raw deflate and encodes it for a PlantUML
// server URL path.
func Encode(markup string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("plantuml encode: %w", err)
	}
	if _, err := io.WriteString(w, markup); err != nil {
		return "", fmt.Errorf("plantuml encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("plantuml encode: %w", err)
	}

	// The server groups input in 3-byte blocks and expects a trailing
	// partial block zero-filled to four characters.
	data := buf.Bytes()
	if rem := len(data) % 3; rem != 0 {
		data = append(data, make([]byte, 3-rem)...)
	}
	return plantumlEncoding.EncodeToString(data), nil
}

// Decode reverses Encode.
func Decode(encoded string) (string, error) {
	data, err := plantumlEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("plantuml decode: %w", err)
	}
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("plantuml decode: %w", err)
	}
	return string(out), nil
}
