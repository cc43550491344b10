// Package str holds the string helpers shared by the veeox packages.
package str

// Name is the identifying name reported by Str.
const Name = "veeox-string::Str"

// Str is the string utility type
type Str struct{}

// Name returns the fixed identifying name of the type
func (Str) Name() string {
	return Name
}

// tokenTable marks the bytes allowed in an RFC 7230 token
var tokenTable = [256]bool{}

func init() {
	for c := '0'; c <= '9'; c++ {
		tokenTable[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		tokenTable[c] = true
		tokenTable[c-'a'+'A'] = true
	}
	for _, c := range "!#$%&'*+-.^_`|~" {
		tokenTable[c] = true
	}
}

// IsTokenByte reports whether c may appear in a token
func IsTokenByte(c byte) bool {
	return tokenTable[c]
}

// IsToken reports whether s is a non-empty RFC 7230 token
func IsToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !tokenTable[s[i]] {
			return false
		}
	}
	return true
}

// CanonicalHeaderKey returns the canonical form of a header key:
// the first letter and any letter following a hyphen upper case, the rest
// lower case. Keys with non-token bytes are returned unchanged.
func CanonicalHeaderKey(s string) string {
	upper := true
	canonical := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !tokenTable[c] {
			return s
		}
		if upper && 'a' <= c && c <= 'z' {
			canonical = false
		} else if !upper && 'A' <= c && c <= 'Z' {
			canonical = false
		}
		upper = c == '-'
	}
	if canonical {
		return s
	}

	b := []byte(s)
	upper = true
	for i, c := range b {
		if upper && 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		} else if !upper && 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
		upper = c == '-'
	}
	return string(b)
}

// TrimOWS trims optional whitespace (spaces and horizontal tabs)
func TrimOWS(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// ValidHeaderValue reports whether s is an RFC 7230 field-value: no control
// bytes other than horizontal tab
func ValidHeaderValue(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; (c < ' ' && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}

// IsDigits reports whether s is a non-empty run of ASCII digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
