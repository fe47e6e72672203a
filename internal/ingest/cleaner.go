package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultDelimiter separates code from description in cleaned output.
const DefaultDelimiter = "\t"

// maxCodeLen is the longest token still treated as a code. ICD-10-CM and
// HCPCS codes never exceed 7 characters.
const maxCodeLen = 7

// unwantedPhrases are boilerplate fragments (legal notices, section headers)
// found in published ICD/HCPCS files. Any line containing one, case
// insensitively, is dropped.
var unwantedPhrases = []string{
	"future cpt",
	"the physician",
	"include",
	"following codes",
	"vaccine codes",
	"eligible for use",
	"1cpt codes, descriptions and other data only are copyright",
	"epo and other dialysis-related drugs",
	"this code list is effective january 1, 2025",
	"list of cpt1/hcpcs codes used to define certain designated health service categories2 under section 1877 of the social security act",
}

// codeLinePattern splits a line into its leading non-whitespace token and the
// remainder.
var codeLinePattern = regexp.MustCompile(`^(\S+)\s+(.*)$`)

// Cleaner standardizes raw dataset files into delimiter-separated
// code/description lines.
type Cleaner struct {
	log zerolog.Logger
}

func NewCleaner(log zerolog.Logger) *Cleaner {
	return &Cleaner{log: log}
}

// StandardizeAndFilter reads inputPath using its detected encoding (retrying
// as utf-8 on decode failure), drops empty and boilerplate lines, reformats
// surviving lines as code<delimiter>description, and writes the result to
// outputPath as utf-8. An empty input produces an empty output file. The
// returned path equals outputPath.
func (c *Cleaner) StandardizeAndFilter(inputPath, outputPath, delimiter string) (string, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	encoding := DetectEncoding(raw, c.log)
	content, err := decode(raw, encoding)
	if err != nil {
		c.log.Warn().Err(err).Str("encoding", encoding).Str("file", inputPath).
			Msg("decode failed, retrying as utf-8")
		content = decodeLenient(raw)
	}

	cleaned := CleanLines(content, delimiter)

	if err := os.WriteFile(outputPath, []byte(strings.Join(cleaned, "\n")), 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return outputPath, nil
}

// CleanLines applies the filtering and standardization rules to raw file
// content and returns the surviving lines:
//
//   - blank lines and lines containing a boilerplate phrase are dropped
//   - the leading token must be a plausible code (≤ maxCodeLen chars)
//   - the remainder must be a meaningful description (> 2 words)
//   - lines not matching token-then-remainder are dropped silently
func CleanLines(content, delimiter string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || containsUnwantedPhrase(line) {
			continue
		}

		m := codeLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		code, description := m[1], m[2]
		if len(code) > maxCodeLen {
			continue
		}
		if len(strings.Fields(description)) <= 2 {
			continue
		}
		out = append(out, code+delimiter+description)
	}
	return out
}

func containsUnwantedPhrase(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range unwantedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
