package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/handiism/rehearsal-markers/internal/apperr"
)

const (
	maxMinutes = (math.MaxInt64 - 60000) / 60000
	maxSeconds = float64(math.MaxInt64 / 1000)
)

// FormatTimestamp renders milliseconds as "m:ss.mmm".
func FormatTimestamp(ms int64) string {
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	return fmt.Sprintf("%s%d:%02d.%03d", sign, ms/60000, (ms/1000)%60, ms%1000)
}

// ParseTimestamp parses a position typed by a user.
//
// Accepted forms:
//   - "1:23.5" or "1:23" - minutes and seconds
//   - "83.5" - seconds
//   - "83500ms" - milliseconds
//
// The result is never negative.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperr.Invalid("parse timestamp", fmt.Errorf("empty timestamp"))
	}

	if raw, ok := strings.CutSuffix(s, "ms"); ok {
		ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || ms < 0 {
			return 0, apperr.Invalid("parse timestamp", fmt.Errorf("invalid milliseconds %q", s))
		}
		return ms, nil
	}

	var minutes int64
	secPart := s
	if m, sec, ok := strings.Cut(s, ":"); ok {
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil || v < 0 {
			return 0, apperr.Invalid("parse timestamp", fmt.Errorf("invalid minutes in %q", s))
		}
		minutes = v
		secPart = sec
	}

	seconds, err := strconv.ParseFloat(secPart, 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, apperr.Invalid("parse timestamp", fmt.Errorf("invalid seconds in %q", s))
	}
	if minutes > 0 && seconds >= 60 {
		return 0, apperr.Invalid("parse timestamp", fmt.Errorf("seconds out of range in %q", s))
	}
	// With minutes present seconds are below 60, so one bound per form
	// keeps the millisecond total inside int64.
	if minutes > maxMinutes || seconds >= maxSeconds {
		return 0, apperr.Invalid("parse timestamp", fmt.Errorf("timestamp %q is too large", s))
	}

	return minutes*60000 + int64(seconds*1000+0.5), nil
}
