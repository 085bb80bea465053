// Package cursor encodes pagination offsets as opaque, URL-safe cursors.
//
// A cursor is the base64 encoding of "cursor:<offset>". Clients must treat it
// as opaque; Decode rejects anything that does not round-trip.
package cursor

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

const prefix = "cursor:"

// ErrPrefix is wrapped when the decoded payload lacks the cursor prefix.
var ErrPrefix = errors.New("missing cursor prefix")

// DecodeError is returned by Decode for any cursor that cannot be decoded.
type DecodeError struct {
	Cursor string
	Err    error
}

func (e *DecodeError) Error() string {
	return "cursor: decode " + strconv.Quote(e.Cursor) + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode returns the cursor for offset.
func Encode(offset int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(prefix + strconv.FormatInt(offset, 10)))
}

// Decode returns the offset held by s.
func Decode(s string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, &DecodeError{Cursor: s, Err: err}
	}
	payload, ok := strings.CutPrefix(string(raw), prefix)
	if !ok {
		return 0, &DecodeError{Cursor: s, Err: ErrPrefix}
	}
	offset, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return 0, &DecodeError{Cursor: s, Err: err}
	}
	if offset < 0 {
		return 0, &DecodeError{Cursor: s, Err: errors.New("negative offset")}
	}
	return offset, nil
}
