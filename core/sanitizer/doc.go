// Package sanitizer normalizes user input in place using `sanitize` struct
// tags, e.g. `sanitize:"trim,lower"` for emails or `sanitize:"name"` for
// display names. Sanitizers run left to right; unknown names are ignored.
package sanitizer
