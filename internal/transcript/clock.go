package transcript

import (
	"strings"
	"time"
	"unicode"
)

// TimestampLayout renders utterance and chat timestamps, e.g. "10/17/2026, 03:04 PM".
const TimestampLayout = "01/02/2006, 03:04 PM"

// FormatTimestamp renders t for an utterance or chat message.
func FormatTimestamp(t time.Time) string {
	return strings.ToUpper(t.Format(TimestampLayout))
}

// FormatStartTimestamp renders a session start time that is safe in a filename.
func FormatStartTimestamp(t time.Time) string {
	return strings.NewReplacer("/", "-", ":", "-").Replace(FormatTimestamp(t))
}

var reservedNames = []string{"CON", "PRN", "AUX", "NUL"}

// SanitizeTitle replaces characters that are not valid in a filename with "_".
func SanitizeTitle(title string) string {
	runes := []rune(title)
	for i, r := range runes {
		if invalidTitleRune(r) {
			runes[i] = '_'
		}
	}
	if n := len(runes); n > 0 {
		if edgeRune(runes[0]) {
			runes[0] = '_'
		}
		if edgeRune(runes[n-1]) {
			runes[n-1] = '_'
		}
	}
	out := string(runes)
	if n := reservedPrefix(out); n > 0 {
		out = "_" + out[n:]
	}
	return out
}

func invalidTitleRune(r rune) bool {
	switch {
	case strings.ContainsRune(`:?"*<>|~/\`, r):
		return true
	case r >= 0x01 && r <= 0x1f, r == 0x7f, r >= 0x80 && r <= 0x9f:
		return true
	case unicode.Is(unicode.Cf, r):
		return true
	}
	return false
}

func edgeRune(r rune) bool {
	return r == '.' || r == 0 || unicode.In(r, unicode.Zl, unicode.Zp, unicode.Zs)
}

// reservedPrefix returns the length of a leading Windows device name that is
// followed by "." or the end of the title.
func reservedPrefix(s string) int {
	upper := strings.ToUpper(s)
	match := func(name string) int {
		if !strings.HasPrefix(upper, name) {
			return 0
		}
		if len(upper) == len(name) || upper[len(name)] == '.' {
			return len(name)
		}
		return 0
	}
	for _, name := range reservedNames {
		if n := match(name); n > 0 {
			return n
		}
	}
	for _, prefix := range []string{"COM", "LPT"} {
		for d := '1'; d <= '9'; d++ {
			if n := match(prefix + string(d)); n > 0 {
				return n
			}
		}
	}
	return 0
}
