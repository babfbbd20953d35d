package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var retentionRe = regexp.MustCompile(`^(\d+)([dwh])$`)

// ParseRetention parses a ledger retention window.
// Supported formats:
//   - "never", "0" or "" - keep records forever (returns 0)
//   - "30d", "2w", "48h" - days, weeks or hours
//   - any Go duration like "90m" or "2h30m"
func ParseRetention(s string) (time.Duration, error) {
	if s == "" || s == "never" || s == "0" {
		return 0, nil
	}

	if dur, err := time.ParseDuration(s); err == nil {
		if dur < 0 {
			return 0, fmt.Errorf("retention must not be negative: %s", s)
		}
		return dur, nil
	}

	matches := retentionRe.FindStringSubmatch(s)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid retention format: %s (use 'never', '30d', '2w', '48h' or any Go duration)", s)
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in retention: %s", s)
	}

	switch matches[2] {
	case "d":
		return time.Duration(num) * 24 * time.Hour, nil
	case "w":
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	default:
		return time.Duration(num) * time.Hour, nil
	}
}
