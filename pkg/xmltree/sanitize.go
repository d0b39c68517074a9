package xmltree

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	tagLegal   = regexp.MustCompile(`^[a-zA-Z0-9\-_.]+$`)
	tagIllegal = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)
	tagStart   = regexp.MustCompile(`^[a-zA-Z_]`)
	xmlPrefix  = regexp.MustCompile(`^[xX][mM][lL]`)
)

// FixText replaces characters that are illegal in XML 1.0 text content with
// "?". That covers the C0 controls other than tab/LF/CR, the surrogate range,
// the 0xFFFE/0xFFFF non-characters, and bytes that do not decode as UTF-8.
// It never fails: malformed input is corrected, not rejected.
func FixText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20:
			return '?'
		case r == utf8.RuneError:
			return '?'
		case r >= 0xD800 && r <= 0xDFFF:
			return '?'
		case r == 0xFFFE || r == 0xFFFF:
			return '?'
		}

		return r
	}, s)
}

// FixTag applies FixText plus the element/attribute name rules: only letters,
// digits, hyphens, underscores and periods are kept (anything else becomes a
// period), and names that don't start with a letter or underscore, or that
// start with the reserved "xml" prefix in any case, gain a leading underscore.
// Every correction is logged; the caller always gets a legal name back.
func FixTag(s string) string {
	s = FixText(s)
	if s == "" {
		logger.Log("event", "fix_xml_tag", "msg", "replacing empty tag", "to", "_")
		return "_"
	}

	if !tagLegal.MatchString(s) {
		was := s
		s = tagIllegal.ReplaceAllString(s, ".")
		logger.Log("event", "fix_xml_tag", "msg", "replaced illegal tag characters", "from", was, "to", s)
	}

	if !tagStart.MatchString(s) || xmlPrefix.MatchString(s) {
		logger.Log("event", "fix_xml_tag", "msg", "prepended underscore to illegal tag", "from", s, "to", "_"+s)
		s = "_" + s
	}

	return s
}
