package views

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Messages shown by the editor screens. Kept as constants so every editor
// words the same situation the same way.
const (
	MsgNoChanges    = "No changes detected."
	MsgAccessDenied = "You can't access this page. Please login first."
	MsgLoadFailed   = "Failed to load data. Please try again."
)

// ErrBadSnapshot reports a form snapshot that cannot be decoded. A
// tampered or truncated snapshot is treated as "everything changed" by
// Changed, so the submission still goes through.
var ErrBadSnapshot = errors.New("views: invalid form snapshot")

// Snapshot encodes the form's loaded values into an opaque token carried
// in a hidden field. On submit the token is compared against the posted
// values to detect no-op saves without another upstream read.
func Snapshot(fields map[string]string) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeSnapshot reverses Snapshot.
func DecodeSnapshot(token string) (map[string]string, error) {
	if token == "" {
		return nil, ErrBadSnapshot
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrBadSnapshot
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, ErrBadSnapshot
	}
	return fields, nil
}

// Changed reports whether current differs from the snapshotted values.
// An undecodable snapshot counts as changed, never as a silent no-op.
func Changed(snapshot string, current map[string]string) bool {
	loaded, err := DecodeSnapshot(snapshot)
	if err != nil {
		return true
	}
	if len(loaded) != len(current) {
		return true
	}
	for key, was := range loaded {
		now, ok := current[key]
		if !ok || now != was {
			return true
		}
	}
	return false
}
