package bucketfs

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRange parses a single HTTP byte range. "" selects the whole object
// as (0, -1). "bytes=a-" gives (a, -1) and the suffix form "bytes=-n" gives
// (-n, -1). Multiple ranges are rejected with ErrInvalidInput.
func ParseRange(r string) (offset, length int64, err error) {
	if r == "" {
		return 0, -1, nil
	}

	spec, ok := strings.CutPrefix(r, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return 0, 0, fmt.Errorf("range %q: %w", r, ErrInvalidInput)
	}
	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, 0, fmt.Errorf("range %q: %w", r, ErrInvalidInput)
	}

	if startStr == "" {
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("range %q: %w", r, ErrInvalidInput)
		}
		return -n, -1, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("range %q: %w", r, ErrInvalidInput)
	}
	if endStr == "" {
		return start, -1, nil
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("range %q: %w", r, ErrInvalidInput)
	}
	return start, end - start + 1, nil
}

// ContentRange renders a Content-Range value for n bytes from start of an
// object of size bytes.
func ContentRange(start, n, size int64) string {
	if n <= 0 {
		return fmt.Sprintf("bytes */%d", size)
	}
	return fmt.Sprintf("bytes %d-%d/%d", start, start+n-1, size)
}

// CheckRange reports ErrRangeNotSatisfiable when a requested range, as
// returned by ParseRange, starts at or past size. Suffix ranges always
// select something and are accepted.
func CheckRange(offset, size int64) error {
	if offset >= 0 && offset >= size {
		return fmt.Errorf("range starts at %d of %d bytes: %w", offset, size, ErrRangeNotSatisfiable)
	}
	return nil
}

// CheckConditions evaluates opts.IfMatch and opts.IfNoneMatch against etag,
// returning ErrPreconditionFailed or ErrNotModified. "*" matches any etag.
func CheckConditions(etag string, opts ReadOptions) error {
	if opts.IfMatch != "" && !etagMatches(opts.IfMatch, etag) {
		return ErrPreconditionFailed
	}
	if opts.IfNoneMatch != "" && etagMatches(opts.IfNoneMatch, etag) {
		return ErrNotModified
	}
	return nil
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.Trim(candidate, `"`) == strings.Trim(etag, `"`) {
			return true
		}
	}
	return false
}
