package builder

import (
	"regexp"
	"strings"
)

// NameSeparator sits between the emoji prefix and the channel name.
const NameSeparator = "│"

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses every run of other characters to "-".
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// FormatName builds the Discord channel name for raw. With a prefix the
// result is prefix + "│" + slug; the prefix is never doubled.
func FormatName(raw, prefix string) string {
	name := Slug(raw)
	if name == "" {
		name = "channel"
	}
	if prefix == "" {
		return name
	}
	name = strings.TrimPrefix(name, prefix+NameSeparator)
	return prefix + NameSeparator + name
}

var slugOnly = regexp.MustCompile(`^[a-z0-9-]*$`)

// StripPrefix undoes FormatName's prefix, used when exporting a guild. The
// text before the separator only counts as a prefix when it is not itself
// slug text, so hand-made names keep their separator.
func StripPrefix(name string) string {
	i := strings.Index(name, NameSeparator)
	if i < 0 || slugOnly.MatchString(name[:i]) {
		return name
	}
	return name[i+len(NameSeparator):]
}
