package str

import "testing"

func TestStrName(t *testing.T) {
	if got := (Str{}).Name(); got != "veeox-string::Str" {
		t.Errorf("Expected veeox-string::Str, got %s", got)
	}
	if (Str{}).Name() != (Str{}).Name() {
		t.Error("Name should be deterministic")
	}
}

func TestCanonicalHeaderKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"content-type", "Content-Type"},
		{"CONTENT-LENGTH", "Content-Length"},
		{"Host", "Host"},
		{"x-request-id", "X-Request-Id"},
		{"", ""},
		{"bad key", "bad key"},
		{"a", "A"},
	}

	for _, tt := range tests {
		if got := CanonicalHeaderKey(tt.in); got != tt.want {
			t.Errorf("CanonicalHeaderKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsToken(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"GET", true},
		{"M-SEARCH", true},
		{"", false},
		{"GE T", false},
		{"GET\r", false},
		{"a(b)", false},
	}

	for _, tt := range tests {
		if got := IsToken(tt.in); got != tt.want {
			t.Errorf("IsToken(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTrimOWS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  value\t", "value"},
		{"\t\t", ""},
		{"a b", "a b"},
	}

	for _, tt := range tests {
		if got := string(TrimOWS([]byte(tt.in))); got != tt.want {
			t.Errorf("TrimOWS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func BenchmarkCanonicalHeaderKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = CanonicalHeaderKey("content-type")
	}
}

func TestValidHeaderValue(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"text/html; charset=utf-8", true},
		{"a\tb", true},
		{"caf\xc3\xa9", true},
		{"abc\rSet-Cookie: x=1", false},
		{"a\nb", false},
		{"a\x00b", false},
		{"a\x7fb", false},
	}

	for _, tt := range tests {
		if got := ValidHeaderValue(tt.in); got != tt.want {
			t.Errorf("ValidHeaderValue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"1234", true},
		{"", false},
		{"+3", false},
		{"-1", false},
		{"1 2", false},
		{"0x10", false},
	}

	for _, tt := range tests {
		if got := IsDigits(tt.in); got != tt.want {
			t.Errorf("IsDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
