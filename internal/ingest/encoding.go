// Package ingest implements the dataset ingestion pipeline primitives:
// encoding detection, line cleaning, and per-type row parsing. Uploaded code
// set files (ICD-10-CM, HCPCS, and friends) arrive as loosely formatted text;
// this package turns them into code<TAB>description rows ready for bulk
// insertion.
package ingest

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
)

// validEncodings is the allow-list of charset names we know how to decode.
var validEncodings = map[string]struct{}{
	"utf-8":  {},
	"utf8":   {},
	"ascii":  {},
	"latin1": {},
	"base64": {},
}

// DetectEncoding returns a normalized encoding name for the raw file bytes.
// Valid UTF-8 (which includes all ASCII) is reported as utf-8 without
// consulting the statistical detector: detectors routinely classify plain
// code/description lines as ISO-8859-1, and for byte-identical content the
// utf-8 decode path is the correct one anyway. Only invalid-UTF-8 input is
// handed to chardet; anything outside the allow-list falls back to "utf-8"
// with a warning. It never fails: undetectable or empty input is utf-8.
func DetectEncoding(data []byte, log zerolog.Logger) string {
	if utf8.Valid(data) {
		return "utf-8"
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}

	normalized := strings.ToLower(result.Charset)
	switch normalized {
	case "iso-8859-1", "windows-1252":
		normalized = "latin1"
	case "us-ascii":
		normalized = "ascii"
	}

	if _, ok := validEncodings[normalized]; !ok {
		log.Warn().Str("detected", result.Charset).Msg("unsupported encoding detected, defaulting to utf-8")
		return "utf-8"
	}
	return normalized
}

// decode converts raw file bytes to a string according to the given encoding
// name. utf-8 and ascii content is validated, not transformed; latin1 is
// transcoded; base64 is unwrapped and then validated as utf-8.
func decode(data []byte, encoding string) (string, error) {
	switch encoding {
	case "utf-8", "utf8", "ascii":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("decode: content is not valid %s", encoding)
		}
		return string(data), nil
	case "latin1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode latin1: %w", err)
		}
		return string(decoded), nil
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return "", fmt.Errorf("decode base64: %w", err)
		}
		if !utf8.Valid(decoded) {
			return "", fmt.Errorf("decode base64: payload is not valid utf-8")
		}
		return string(decoded), nil
	default:
		return "", fmt.Errorf("decode: unknown encoding %q", encoding)
	}
}

// decodeLenient replaces invalid UTF-8 sequences instead of failing. Used on
// the utf-8 retry path so a stray byte cannot sink a whole file.
func decodeLenient(data []byte) string {
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
