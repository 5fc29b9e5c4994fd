package idcodec

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ids := []int64{0, 1, 5, 42, 999, 123456789, 1<<62 - 1}

	for _, id := range ids {
		token := Encode(id)
		decoded, err := Decode(token)
		if err != nil {
			t.Fatalf("Decode(Encode(%d)) failed: %v", id, err)
		}
		if decoded != id {
			t.Errorf("Decode(Encode(%d)) = %d, want %d", id, decoded, id)
		}
	}
}

func TestDecodeFailsClosed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"base64 of non-numeric", base64.StdEncoding.EncodeToString([]byte("abc"))},
		{"base64 of negative", base64.StdEncoding.EncodeToString([]byte("-7"))},
		{"base64 of empty", base64.StdEncoding.EncodeToString([]byte(""))},
		{"base64 of mixed", base64.StdEncoding.EncodeToString([]byte("12abc"))},
		{"raw digits, not encoded", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Decode(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
			if id != 0 {
				t.Errorf("Decode(%q) returned id %d alongside an error", tt.token, id)
			}
		})
	}
}
