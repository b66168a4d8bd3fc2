package post

import "strings"

// Slugify lowercases the title and collapses every run of non-alphanumeric
// characters into a single hyphen, e.g. "Hello, World!" -> "hello-world".
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastDash := true // suppress a leading dash

	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
