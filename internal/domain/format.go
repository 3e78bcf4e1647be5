package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const infinity = "∞"

// maxDurationSeconds is the largest value that fits a time.Duration.
const maxDurationSeconds = float64(math.MaxInt64 / 1e9)

// FormatDuration renders seconds as "Ns", "Mm Ss" or "Hh Mm". Values too
// large for int64 arithmetic render as infinity.
func FormatDuration(sec float64) string {
	if IsUnreachable(sec) || sec > maxDurationSeconds {
		return infinity
	}
	s := int64(math.Round(sec))
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	mins := s / 60
	if mins < 60 {
		return fmt.Sprintf("%dm %ds", mins, s%60)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// FormatDistance renders meters as "N m" or "X.XX km".
func FormatDistance(m float64) string {
	if IsUnreachable(m) {
		return infinity
	}
	if m >= 1000 {
		return fmt.Sprintf("%.2f km", m/1000)
	}
	return fmt.Sprintf("%d m", int64(math.Round(m)))
}

// ParseClock parses a "HH:MM" time of day.
func ParseClock(s string) (int, int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, NewConfigurationError("day_start_time", "%q is not in HH:MM form", s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, NewConfigurationError("day_start_time", "invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, NewConfigurationError("day_start_time", "invalid minute in %q", s)
	}

	return hour, minute, nil
}
