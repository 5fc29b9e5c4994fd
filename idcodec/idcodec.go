// Package idcodec provides the reversible encoding used to carry numeric
// entity ids across navigable URLs, so raw primary keys never appear in a
// query string. The encoding is standard base64 over the decimal form of
// the id; it is an obfuscation for URLs, not a security measure.
package idcodec

import (
	"encoding/base64"
	"errors"
	"strconv"
)

// ErrInvalidToken is returned when a token cannot be decoded back to an id.
var ErrInvalidToken = errors.New("idcodec: invalid id token")

// Encode returns the opaque URL-safe token for a non-negative id.
func Encode(id int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// Decode reverses Encode. It fails closed: malformed base64, non-numeric
// content, empty input and negative values all yield ErrInvalidToken, never
// a zero id masquerading as valid.
func Decode(token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id < 0 {
		return 0, ErrInvalidToken
	}

	return id, nil
}
