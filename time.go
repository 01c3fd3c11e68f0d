package htlc

import (
	"encoding/json"
	"time"

	"github.com/iov-one/htlc/errors"
)

// UnixTime is a second precision timestamp. Swap start times, deadlines
// and transition times are stored in this form.
type UnixTime int64

// AsUnixTime truncates t to whole seconds.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// Time returns t in UTC.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

func (t UnixTime) IsZero() bool {
	return t == 0
}

// AddSeconds returns t moved by n seconds.
func (t UnixTime) AddSeconds(n int64) UnixTime {
	return t + UnixTime(n)
}

// Reached tells whether deadline is at or before t. A deadline belongs to
// the period after it, so a swap expires at the exact second of its
// deadline.
func (t UnixTime) Reached(deadline UnixTime) bool {
	return t >= deadline
}

func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrValidation, "time before epoch")
	}
	return nil
}

func (t UnixTime) String() string {
	return t.Time().Format(time.RFC3339)
}

// UnmarshalJSON accepts seconds since epoch as well as an RFC 3339 string,
// which is easier to write by hand in a genesis file.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var parsed UnixTime
	var secs int64
	var stamp time.Time
	switch {
	case json.Unmarshal(raw, &secs) == nil:
		parsed = UnixTime(secs)
	case json.Unmarshal(raw, &stamp) == nil:
		parsed = AsUnixTime(stamp)
	default:
		return errors.Wrapf(errors.ErrValidation, "cannot read time from %s", raw)
	}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*t = parsed
	return nil
}
