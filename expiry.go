package bucketfs

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// absoluteLayouts are tried in order for absolute expiry expressions.
// Slash dates are month first.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
}

var (
	relativeExprRegex = regexp.MustCompile(`^(?:[+-]?\s*\d+\s*[a-z]+\s*)+$`)
	relativeTermRegex = regexp.MustCompile(`([+-]?)\s*(\d+)\s*([a-z]+)`)
)

// ResolveExpiry returns the Unix time a Timeout ends at, relative to now.
// The boolean is false when a textual expression cannot be understood; the
// returned timestamp is then 0.
func ResolveExpiry(t Timeout, now time.Time) (int64, bool) {
	if t.Expr == "" {
		return now.Unix() + t.Seconds, true
	}

	expr := strings.ToLower(strings.TrimSpace(t.Expr))
	switch {
	case expr == "now":
		return now.Unix(), true
	case strings.HasPrefix(expr, "@"):
		n, err := strconv.ParseInt(expr[1:], 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case relativeExprRegex.MatchString(expr):
		at, ok := applyRelative(expr, now)
		if !ok {
			return 0, false
		}
		return at.Unix(), true
	}

	for _, layout := range absoluteLayouts {
		if at, err := time.ParseInLocation(layout, strings.TrimSpace(t.Expr), now.Location()); err == nil {
			return at.Unix(), true
		}
	}
	return 0, false
}

func applyRelative(expr string, now time.Time) (time.Time, bool) {
	at := now
	for _, m := range relativeTermRegex.FindAllStringSubmatch(expr, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, false
		}
		if m[1] == "-" {
			n = -n
		}

		switch strings.TrimSuffix(m[3], "s") {
		case "sec", "second":
			at = at.Add(time.Duration(n) * time.Second)
		case "min", "minute":
			at = at.Add(time.Duration(n) * time.Minute)
		case "hour":
			at = at.Add(time.Duration(n) * time.Hour)
		case "day":
			at = at.AddDate(0, 0, n)
		case "week":
			at = at.AddDate(0, 0, 7*n)
		case "month":
			at = at.AddDate(0, n, 0)
		case "year":
			at = at.AddDate(n, 0, 0)
		default:
			return time.Time{}, false
		}
	}
	return at, true
}
