package crunchbase

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrMalformedResponse indicates a body that is not JSON or lacks the
	// structure an operation expects.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrInvalidQuery indicates arguments that cannot form a request.
	ErrInvalidQuery = errors.New("invalid query")
)

// Decode parses a response body leniently. Raw control characters inside
// strings are accepted and keep their value. Anything else must be valid
// JSON, and only objects and arrays are valid responses.
func Decode(body []byte) (gjson.Result, error) {
	clean := escapeControlChars(body)
	if !gjson.ValidBytes(clean) {
		return gjson.Result{}, fmt.Errorf("%w: body is not valid JSON", ErrMalformedResponse)
	}

	result := gjson.ParseBytes(clean)
	if !result.IsObject() && !result.IsArray() {
		return gjson.Result{}, fmt.Errorf("%w: body is not a JSON object or array", ErrMalformedResponse)
	}
	return result, nil
}

// ValidateBody reports whether body would decode. It is installed as the
// caching client's validator so malformed bodies never enter the cache.
func ValidateBody(body []byte) error {
	_, err := Decode(body)
	return err
}

const hexDigits = "0123456789abcdef"

// escapeControlChars returns body with raw bytes below 0x20 inside string
// literals replaced by their JSON escapes. body is returned unchanged when
// there is nothing to escape.
func escapeControlChars(body []byte) []byte {
	var out []byte
	inString, escaped := false, false

	for i, b := range body {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			case b < 0x20:
				if out == nil {
					out = make([]byte, 0, len(body)+16)
					out = append(out, body[:i]...)
				}
				out = appendEscaped(out, b)
				continue
			}
		} else if b == '"' {
			inString = true
		}

		if out != nil {
			out = append(out, b)
		}
	}

	if out == nil {
		return body
	}
	return out
}

func appendEscaped(out []byte, b byte) []byte {
	switch b {
	case '\n':
		return append(out, '\\', 'n')
	case '\r':
		return append(out, '\\', 'r')
	case '\t':
		return append(out, '\\', 't')
	case '\b':
		return append(out, '\\', 'b')
	case '\f':
		return append(out, '\\', 'f')
	}
	return append(out, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xf])
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
