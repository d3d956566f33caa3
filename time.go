package jwtkit

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// maxUnixTime is 9999-12-31T23:59:59Z.
const maxUnixTime = 253402300799

// NumericDate is a JSON numeric date (RFC 7519): seconds since the Unix epoch.
// Put one in a Payload to emit an integer timestamp.
type NumericDate struct {
	time.Time
}

// NewNumericDate truncates t to whole seconds.
func NewNumericDate(t time.Time) NumericDate {
	return NumericDate{Time: t.Truncate(time.Second)}
}

// MarshalJSON implements json.Marshaler. The value receiver lets dates stored
// in a Payload map marshal as numbers.
func (date NumericDate) MarshalJSON() ([]byte, error) {
	if date.Time.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, date.Unix(), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler. Integer and fractional seconds are
// accepted; fractions are truncated.
func (date *NumericDate) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "" || s == "null" {
		date.Time = time.Time{}
		return nil
	}

	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return date.setUnix(unix)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid time format: expected unix timestamp, got %s", s)
	}
	return date.setUnix(int64(f))
}

func (date *NumericDate) setUnix(unix int64) error {
	if unix < 0 || unix > maxUnixTime {
		return fmt.Errorf("invalid unix timestamp: %d", unix)
	}
	date.Time = time.Unix(unix, 0).UTC()
	return nil
}
