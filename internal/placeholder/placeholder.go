// Package placeholder scans and renders the printf-like tokens used in
// translation strings: sequential %s/%d/%v/%f/%i, Qt numbered %1..%99
// (and %L1), the count token %n (and %Ln), and the %% escape.
package placeholder

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind classifies a token.
type Kind int

const (
	Escape Kind = iota
	Sequential
	Numbered
	Count
)

// Token is one placeholder occurrence in a string; Start and End are byte offsets.
type Token struct {
	Kind   Kind
	Start  int
	End    int
	Verb   byte
	Number int
}

// ErrMissingArgument is matched by *MissingError through errors.Is.
var ErrMissingArgument = errors.New("missing substitution argument")

// MissingError reports a token with no value to substitute.
type MissingError struct {
	Token string
	// Position is the 1-based argument slot that was empty; 0 for %n.
	Position int
}

func (e *MissingError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("no count available for %s", e.Token)
	}
	return fmt.Sprintf("no argument %d for %s", e.Position, e.Token)
}

func (e *MissingError) Is(target error) bool {
	return target == ErrMissingArgument
}

// Scan returns the tokens of s in order. A lone "%" that starts no token is
// ordinary text.
func Scan(s string) []Token {
	var tokens []Token
	for i := 0; i < len(s); i++ {
		if s[i] != '%' || i+1 >= len(s) {
			continue
		}
		start := i
		j := i + 1
		if s[j] == '%' {
			tokens = append(tokens, Token{Kind: Escape, Start: start, End: j + 1, Verb: '%'})
			i = j
			continue
		}
		if s[j] == 'L' && j+1 < len(s) && (s[j+1] == 'n' || isNonZeroDigit(s[j+1])) {
			j++
		}
		switch c := s[j]; {
		case c == 'n':
			tokens = append(tokens, Token{Kind: Count, Start: start, End: j + 1, Verb: 'n'})
			i = j
		case isNonZeroDigit(c):
			end := j + 1
			if end < len(s) && s[end] >= '0' && s[end] <= '9' {
				end++
			}
			n, _ := strconv.Atoi(s[j:end])
			tokens = append(tokens, Token{Kind: Numbered, Start: start, End: end, Number: n})
			i = end - 1
		case c == 's' || c == 'd' || c == 'v' || c == 'f' || c == 'i':
			tokens = append(tokens, Token{Kind: Sequential, Start: start, End: j + 1, Verb: c})
			i = j
		}
	}
	return tokens
}

// Render substitutes tokens in s. Sequential tokens consume args left to
// right, numbered tokens pick args[N-1], %n renders count. Extra args are
// ignored; a token without a value is a *MissingError.
func Render(s string, count *int, args []any) (string, error) {
	tokens := Scan(s)
	if len(tokens) == 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	last, next := 0, 0
	for _, tok := range tokens {
		b.WriteString(s[last:tok.Start])
		last = tok.End

		switch tok.Kind {
		case Escape:
			b.WriteByte('%')
		case Count:
			if count == nil {
				return "", &MissingError{Token: s[tok.Start:tok.End]}
			}
			b.WriteString(strconv.Itoa(*count))
		case Numbered:
			if tok.Number > len(args) {
				return "", &MissingError{Token: s[tok.Start:tok.End], Position: tok.Number}
			}
			b.WriteString(format(args[tok.Number-1], 0))
		case Sequential:
			if next >= len(args) {
				return "", &MissingError{Token: s[tok.Start:tok.End], Position: next + 1}
			}
			b.WriteString(format(args[next], tok.Verb))
			next++
		}
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

// Signature lists the substituting tokens of s in a canonical order so two
// strings can be compared for placeholder parity. Escapes are ignored and
// %s/%d/%v/%f/%i count as the same sequential slot.
func Signature(s string) []string {
	var sig []string
	for _, tok := range Scan(s) {
		switch tok.Kind {
		case Sequential:
			sig = append(sig, "%s")
		case Numbered:
			sig = append(sig, "%"+strconv.Itoa(tok.Number))
		case Count:
			sig = append(sig, "%n")
		}
	}
	sort.Strings(sig)
	return sig
}

func format(v any, verb byte) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		if verb == 'd' || verb == 'i' {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		if verb == 'd' || verb == 'i' {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	default:
		return fmt.Sprint(value)
	}
}

func isNonZeroDigit(c byte) bool {
	return c >= '1' && c <= '9'
}
