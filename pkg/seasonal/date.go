package seasonal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the date-only form accepted and produced for billing dates.
const DateLayout = "2006-01-02"

// ManagedDate wraps a point in time and answers ordering questions about it.
// It is a value type; copies are independent and nothing mutates it.
type ManagedDate struct {
	t time.Time
}

// NewManagedDate wraps t.
func NewManagedDate(t time.Time) ManagedDate {
	return ManagedDate{t: t}
}

// ParseManagedDate parses a date-only string (UTC midnight) or an RFC 3339
// timestamp.
func ParseManagedDate(s string) (ManagedDate, error) {
	t, err := parseTime(s)
	if err != nil {
		return ManagedDate{}, err
	}
	return ManagedDate{t: t}, nil
}

// IsBefore reports whether the wrapped time is strictly earlier than other.
func (d ManagedDate) IsBefore(other time.Time) bool {
	return d.t.Before(other)
}

// IsAfter reports whether the wrapped time is strictly later than other.
func (d ManagedDate) IsAfter(other time.Time) bool {
	return d.t.After(other)
}

// Time returns the wrapped time.
func (d ManagedDate) Time() time.Time {
	return d.t
}

func (d ManagedDate) String() string {
	return formatTime(d.t)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func formatTime(t time.Time) string {
	if t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour)) {
		return t.Format(DateLayout)
	}
	return t.Format(time.RFC3339)
}

// IsZero reports whether the date was never set.
func (d ManagedDate) IsZero() bool {
	return d.t.IsZero()
}

func (d ManagedDate) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(formatTime(d.t))
}

func (d *ManagedDate) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	if s == nil || *s == "" {
		*d = ManagedDate{}
		return nil
	}
	parsed, err := ParseManagedDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
