// Package codec encodes and decodes message bodies by content type.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"

	"google.golang.org/protobuf/proto"
)

// Content types understood by the codecs
const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/x-protobuf"
)

var (
	ErrUnsupportedCodec = errors.New("unsupported codec")
	ErrNotProtoMessage  = errors.New("value must implement proto.Message")
)

// Codec defines the interface for encoding/decoding message bodies
type Codec interface {
	// Encode encodes a value to bytes
	Encode(v any) ([]byte, error)

	// Decode decodes bytes to a value
	Decode(data []byte, v any) error

	// ContentType returns the media type produced by Encode
	ContentType() string

	// Name returns the codec name
	Name() string
}

var (
	jsonCodec     Codec = JSONCodec{}
	protobufCodec Codec = ProtobufCodec{}
)

// JSON returns the JSON codec
func JSON() Codec { return jsonCodec }

// Protobuf returns the protobuf codec
func Protobuf() Codec { return protobufCodec }

// ForContentType returns the codec for a Content-Type header value.
// Parameters such as charset are ignored; an empty value selects JSON.
func ForContentType(contentType string) (Codec, error) {
	if contentType == "" {
		return jsonCodec, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, contentType)
	}

	switch mediaType {
	case ContentTypeJSON:
		return jsonCodec, nil
	case ContentTypeProtobuf, "application/protobuf":
		return protobufCodec, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, mediaType)
	}
}

// JSONCodec implements JSON encoding/decoding
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) ContentType() string { return ContentTypeJSON }

func (JSONCodec) Name() string { return "json" }

// ProtobufCodec implements Protocol Buffers encoding/decoding
type ProtobufCodec struct{}

func (ProtobufCodec) Encode(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrNotProtoMessage, v)
	}
	return proto.Marshal(msg)
}

func (ProtobufCodec) Decode(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w, got %T", ErrNotProtoMessage, v)
	}
	return proto.Unmarshal(data, msg)
}

func (ProtobufCodec) ContentType() string { return ContentTypeProtobuf }

func (ProtobufCodec) Name() string { return "protobuf" }
