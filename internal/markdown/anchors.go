package markdown

import "strings"

// percentEncodeUnreserved preserves alphanumerics and -_.~ (RFC 3986
// unreserved characters), percent-encodes everything else, and writes
// spaces as %20 — which falls out of the general rule, since %20 is
// the percent encoding of a space, but is called out explicitly in the
// glossary so it is handled first for clarity.
func percentEncodeUnreserved(s string) string {
	var b strings.Builder
	for _, r := range []byte(s) {
		switch {
		case r == ' ':
			b.WriteString("%20")
		case isUnreserved(r):
			b.WriteByte(r)
		default:
			b.WriteString("%")
			b.WriteString(strings.ToUpper(hexByte(r)))
		}
	}
	return b.String()
}

func isUnreserved(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_' || b == '.' || b == '~':
		return true
	default:
		return false
	}
}

const hexDigits = "0123456789abcdef"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0x0f]})
}
