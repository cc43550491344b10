package codec

import (
	"errors"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestJSONCodec(t *testing.T) {
	c := JSON()

	type TestStruct struct {
		Name  string
		Value int
	}

	original := &TestStruct{Name: "test", Value: 42}

	data, err := c.Encode(original)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded := &TestStruct{}
	if err := c.Decode(data, decoded); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if *decoded != *original {
		t.Errorf("Mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestProtobufCodec(t *testing.T) {
	c := Protobuf()

	original := wrapperspb.Int32(42)

	data, err := c.Encode(original)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded := &wrapperspb.Int32Value{}
	if err := c.Decode(data, decoded); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if !proto.Equal(decoded, original) {
		t.Errorf("Mismatch: got %d, want %d", decoded.GetValue(), original.GetValue())
	}
}

func TestProtobufCodecInvalidType(t *testing.T) {
	c := Protobuf()

	if _, err := c.Encode("not a proto message"); !errors.Is(err, ErrNotProtoMessage) {
		t.Errorf("Expected ErrNotProtoMessage, got %v", err)
	}

	var s string
	if err := c.Decode([]byte{}, &s); !errors.Is(err, ErrNotProtoMessage) {
		t.Errorf("Expected ErrNotProtoMessage, got %v", err)
	}
}

func TestForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{"", "json", false},
		{"application/json", "json", false},
		{"application/json; charset=utf-8", "json", false},
		{"application/x-protobuf", "protobuf", false},
		{"application/protobuf", "protobuf", false},
		{"text/plain", "", true},
		{";;", "", true},
	}

	for _, tt := range tests {
		c, err := ForContentType(tt.contentType)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedCodec) {
				t.Errorf("%q: expected ErrUnsupportedCodec, got %v", tt.contentType, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.contentType, err)
			continue
		}
		if c.Name() != tt.want {
			t.Errorf("%q: expected %s codec, got %s", tt.contentType, tt.want, c.Name())
		}
	}
}

func BenchmarkJSONEncode(b *testing.B) {
	c := JSON()
	data := map[string]any{
		"name":  "benchmark",
		"value": 123,
		"items": []int{1, 2, 3, 4, 5},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Encode(data)
	}
}

func BenchmarkProtobufEncode(b *testing.B) {
	c := Protobuf()
	msg := wrapperspb.String("benchmark message with some data")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Encode(msg)
	}
}

func BenchmarkProtobufDecode(b *testing.B) {
	c := Protobuf()
	data, _ := proto.Marshal(wrapperspb.String("benchmark message"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		decoded := &wrapperspb.StringValue{}
		_ = c.Decode(data, decoded)
	}
}
