// Package shorthand computes short, typeable aliases for table rows, so a
// terminal user can say "feed remove @sdf" instead of pasting a content hash. Two
// distinct schemes are used, one per kind of reference:
//
//   - Feed shorthands re-encode a feed's hex id in a 9-symbol home-row
//     alphabet, then keep only the shortest prefix that stays unique across
//     all subscribed feeds.
//   - Post shorthands are purely positional: the Nth post in a fixed sort
//     order gets the Nth value of a 34-symbol alphabet, so the same post
//     keeps the same shorthand across a session without needing its hash at
//     all.
package shorthand

// homeRow is the 9-symbol alphabet feed shorthands are encoded in.
var homeRow = []rune("asdfghjkl")

// postAlphabet is the 34-symbol alphabet post shorthands are drawn from.
var postAlphabet = []rune("asdfghjklASDFGHJKLqwertyiopzxcvbnm")

// hexToCustomBase re-encodes a hex digit string as a string over alphabet,
// via repeated long division — the same technique needed to convert an
// arbitrary-precision hex id without overflowing a machine integer.
func hexToCustomBase(hex string, alphabet []rune) string {
	base := len(alphabet)
	if hex == "" {
		return string(alphabet[0])
	}

	digits := make([]int, len(hex))
	for i, c := range hex {
		d, err := hexDigit(c)
		if err != nil {
			d = 0
		}
		digits[i] = d
	}

	var remainders []int
	for {
		remainder := 0
		quotient := make([]int, 0, len(digits))
		for _, d := range digits {
			current := remainder*16 + d
			quotient = append(quotient, current/base)
			remainder = current % base
		}
		remainders = append(remainders, remainder)

		start := 0
		for start < len(quotient) && quotient[start] == 0 {
			start++
		}
		digits = quotient[start:]
		if len(digits) == 0 {
			break
		}
	}

	out := make([]rune, len(remainders))
	for i, r := range remainders {
		out[len(remainders)-1-i] = alphabet[r]
	}
	return string(out)
}

func hexDigit(c rune) (int, error) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), nil
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, nil
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, nil
	default:
		return 0, errInvalidHexDigit
	}
}

// HexToHomeRow re-encodes a hex id in the 9-symbol home-row alphabet.
func HexToHomeRow(hex string) string {
	return hexToCustomBase(hex, homeRow)
}

// ComputeShorthands assigns every id in ids (in the given order) the
// shortest home-row-encoded prefix that is unique across the whole set. If
// no prefix length achieves uniqueness (ids collide in base9 too), it falls
// back to the full encoded string for every id.
func ComputeShorthands(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	encoded := make([]string, len(ids))
	maxLen := 0
	for i, id := range ids {
		encoded[i] = HexToHomeRow(id)
		if len(encoded[i]) > maxLen {
			maxLen = len(encoded[i])
		}
	}

	if len(encoded) == 1 {
		return []string{string([]rune(encoded[0])[:1])}
	}

	for length := 1; length <= maxLen; length++ {
		prefixes := make([]string, len(encoded))
		seen := make(map[string]int, len(encoded))
		for i, s := range encoded {
			runes := []rune(s)
			if length > len(runes) {
				prefixes[i] = s
			} else {
				prefixes[i] = string(runes[:length])
			}
			seen[prefixes[i]]++
		}
		unique := true
		for _, count := range seen {
			if count > 1 {
				unique = false
				break
			}
		}
		if unique {
			return prefixes
		}
	}

	return encoded
}

// Resolve returns the index into ids whose computed shorthand matches
// shorthand, or false if no id matches.
func Resolve(ids []string, shorthand string) (int, bool) {
	shorthands := ComputeShorthands(ids)
	for i, sh := range shorthands {
		if sh == shorthand {
			return i, true
		}
	}
	return 0, false
}

// IndexToPositional converts a zero-based rank into the positional post
// alphabet: rank 0 is the alphabet's first symbol, rank 1 its second, and
// ranks at or beyond the alphabet size carry into additional symbols the
// same way hexToCustomBase does for a single-digit input.
func IndexToPositional(n int) string {
	base := len(postAlphabet)
	if n == 0 {
		return string(postAlphabet[0])
	}
	var chars []rune
	for n > 0 {
		chars = append(chars, postAlphabet[n%base])
		n /= base
	}
	for i, j := 0, len(chars)-1; i < j; i, j = i+1, j-1 {
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

type invalidHexDigitError struct{}

func (invalidHexDigitError) Error() string { return "invalid hex digit" }

var errInvalidHexDigit = invalidHexDigitError{}
