// Package branch derives git branch names from free-form task text.
package branch

import "strings"

// MaxLen is the maximum length of a generated branch name.
const MaxLen = 50

// Slug converts free-form task text into a branch-safe identifier:
// everything that is not an ASCII letter, digit, or space is dropped,
// the rest is lowercased, runs of spaces collapse to a single hyphen,
// and the result is truncated to MaxLen bytes.
//
// Slug is total: any input (including the empty string) yields a valid,
// possibly empty, result. Two different descriptions can produce the
// same slug; callers treat an existing worktree at the target path as
// the collision signal.
func Slug(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inSpace := false
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			inSpace = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			inSpace = false
		case r == ' ':
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
		}
	}
	s := b.String()
	if len(s) > MaxLen {
		s = s[:MaxLen]
	}
	return s
}
