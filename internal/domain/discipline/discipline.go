package discipline

import (
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLength bounds a discipline name as entered by a scheduler.
const MaxLength = 60

// Domain errors
var (
	ErrEmpty   = errors.New("discipline cannot be empty")
	ErrTooLong = errors.New("discipline cannot exceed 60 characters")
)

// Key is the canonical, comparable form of a discipline name.
// Two names match iff their keys are equal.
type Key string

// Normalize folds a raw discipline name into its Key.
// PRE: none
// POST: returns a lowercase key with surrounding space trimmed and inner runs of space collapsed
func Normalize(raw string) Key {
	return Key(strings.ToLower(strings.Join(strings.Fields(raw), " ")))
}

// Parse normalizes raw and rejects empty or oversized names.
// PRE: none
// POST: returns a non-empty Key or an error
func Parse(raw string) (Key, error) {
	k := Normalize(raw)
	if k == "" {
		return "", ErrEmpty
	}
	if utf8.RuneCountInString(string(k)) > MaxLength {
		return "", ErrTooLong
	}
	return k, nil
}

// String returns the key as stored.
func (k Key) String() string { return string(k) }

// Display renders the key in title case for presentation ("table tennis" -> "Table Tennis").
// Only the first rune of each word changes; scripts without case pass through.
func (k Key) Display() string {
	words := strings.Fields(string(k))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Set is an unordered collection of discipline keys.
type Set map[Key]struct{}

// NewSet builds a Set from raw names, dropping empties.
func NewSet(raw ...string) Set {
	s := make(Set, len(raw))
	for _, r := range raw {
		s.Add(Normalize(r))
	}
	return s
}

// Add inserts k unless it is empty.
func (s Set) Add(k Key) {
	if k != "" {
		s[k] = struct{}{}
	}
}

// Has reports whether k is in the set.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the keys in ascending order.
func (s Set) Sorted() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
