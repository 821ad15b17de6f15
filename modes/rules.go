package modes

import (
	"fmt"
	"strconv"
	"strings"
)

// Predicate is one position of an In Mode's match pattern, applied to
// one byte of a normalized 5-byte message [status, data1, data2,
// reserved, channel]. This models a mixed int/string rule as a
// tagged variant instead of relying on integer sign as a side
// channel, while preserving the sign-flipping "accept-and-rotate"
// semantic.
type Predicate interface {
	// apply checks byte b (at the predicate's position) against prev,
	// the same position of the previously accepted message. It returns
	// ok=false if the predicate is not met (match fails outright), and
	// rotate=true if meeting it should flip the sign of the row's
	// combined result (accept-and-rotate).
	apply(b int, prev int) (ok bool, rotate bool)
}

// Equal matches a byte against an exact value.
type Equal int

func (p Equal) apply(b int, _ int) (bool, bool) { return b == int(p), false }

// AtLeastOrRotate matches a byte that is >= the threshold, and
// signals that a match should flip the sign of the row's combined
// result, the "accept and rotate" semantic an In Mode rule can carry.
type AtLeastOrRotate int

func (p AtLeastOrRotate) apply(b int, _ int) (bool, bool) { return b >= int(p), true }

// MatchPrevious matches a byte equal to the same position of the
// previously accepted message.
type MatchPrevious struct{}

func (MatchPrevious) apply(b int, prev int) (bool, bool) { return b == prev, false }

// Wildcard always matches.
type Wildcard struct{}

func (Wildcard) apply(int, int) (bool, bool) { return true, false }

// EvaluateRow applies one in_rules row against a normalized 5-byte
// message. result is 1 (accept-and-continue), -1 (accept-and-finalize,
// i.e. an odd number of AtLeastOrRotate predicates matched, each one
// flipping the sign) or 0 (no match). prev is the previously accepted message,
// consulted by MatchPrevious predicates; pass the zero value on the
// very first evaluation.
func EvaluateRow(row []Predicate, message [5]int, prev [5]int) int {
	result := 1
	for i, pred := range row {
		if i >= len(message) {
			break
		}
		ok, rotate := pred.apply(message[i], prev[i])
		if !ok {
			return 0
		}
		if rotate {
			result = -result
		}
	}
	return result
}

// EncodePredicate renders a Predicate as a preset-document token:
// "eq:N", "ge:N" (accept-and-rotate), "match", or "*" (wildcard).
func EncodePredicate(p Predicate) string {
	switch v := p.(type) {
	case Equal:
		return fmt.Sprintf("eq:%d", int(v))
	case AtLeastOrRotate:
		return fmt.Sprintf("ge:%d", int(v))
	case MatchPrevious:
		return "match"
	case Wildcard:
		return "*"
	default:
		return "*"
	}
}

// DecodePredicate parses a token produced by EncodePredicate.
func DecodePredicate(token string) (Predicate, error) {
	switch {
	case token == "*" || token == "":
		return Wildcard{}, nil
	case token == "match":
		return MatchPrevious{}, nil
	case strings.HasPrefix(token, "eq:"):
		n, err := strconv.Atoi(strings.TrimPrefix(token, "eq:"))
		if err != nil {
			return nil, fmt.Errorf("modes: invalid eq predicate %q: %w", token, err)
		}
		return Equal(n), nil
	case strings.HasPrefix(token, "ge:"):
		n, err := strconv.Atoi(strings.TrimPrefix(token, "ge:"))
		if err != nil {
			return nil, fmt.Errorf("modes: invalid ge predicate %q: %w", token, err)
		}
		return AtLeastOrRotate(n), nil
	default:
		return nil, fmt.Errorf("modes: unrecognized predicate token %q", token)
	}
}
