// Package ranges parses the compact notation describing a contiguous span of
// consumed episodes or tomes: a single bound "5", or an interval "1-4" whose
// upper bound must be strictly greater than the lower.
package ranges

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMalformed is returned for any token that is not valid range notation
var ErrMalformed = errors.New("malformed range token")

var tokenPattern = regexp.MustCompile(`^(\d+)(?:-(\d+))?$`)

// Range is a parsed watched span. A single-bound token "N" parses as [N, N].
type Range struct {
	Start int
	End   int
}

// Upper returns the highest consumed episode/tome number
func (r Range) Upper() int {
	return r.End
}

// Parse validates a range token and returns its bounds
func Parse(token string) (Range, error) {
	match := tokenPattern.FindStringSubmatch(token)
	if match == nil {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformed, token)
	}

	start, err := strconv.Atoi(match[1])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformed, token)
	}

	if match[2] == "" {
		return Range{Start: start, End: start}, nil
	}

	end, err := strconv.Atoi(match[2])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformed, token)
	}
	if end <= start {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformed, token)
	}

	return Range{Start: start, End: end}, nil
}

// Valid reports whether a token is valid range notation
func Valid(token string) bool {
	_, err := Parse(token)
	return err == nil
}

// Upper returns the upper bound of a token, or 0 when the token is empty or
// malformed. Used where a missing range means "nothing consumed".
func Upper(token string) int {
	r, err := Parse(token)
	if err != nil {
		return 0
	}
	return r.Upper()
}
