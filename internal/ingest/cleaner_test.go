package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestCleanLinesKeepsCodeLines(t *testing.T) {
	content := "A01   Typhoid fever caused by Salmonella typhi\n" +
		"B20 Human immunodeficiency virus disease status\n"

	lines := CleanLines(content, "\t")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "A01\tTyphoid fever caused by Salmonella typhi" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "B20\t") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestCleanLinesDropsBoilerplate(t *testing.T) {
	content := strings.Join([]string{
		"A01 Typhoid fever caused by Salmonella typhi",
		"NOTE The following codes are listed for reference only",
		"CPT1 1CPT codes, descriptions and other data only are COPYRIGHT",
		"EPO EPO and other dialysis-related drugs appear below here",
	}, "\n")

	lines := CleanLines(content, "\t")
	if len(lines) != 1 {
		t.Fatalf("expected only the code line to survive, got %d: %v", len(lines), lines)
	}
}

func TestCleanLinesDropsLongCodes(t *testing.T) {
	content := "TOOLONGCODE description with enough words here\n" +
		"A01.123 exactly seven chars is still fine here\n"

	lines := CleanLines(content, "\t")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "A01.123\t") {
		t.Errorf("unexpected survivor: %q", lines[0])
	}
}

func TestCleanLinesDropsShortDescriptions(t *testing.T) {
	content := "A01 two words\n" +
		"A02 three words here\n"

	lines := CleanLines(content, "\t")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %v", len(lines), lines)
	}
	if lines[0] != "A02\tthree words here" {
		t.Errorf("unexpected survivor: %q", lines[0])
	}
}

func TestCleanLinesDropsBlankAndUnmatchedLines(t *testing.T) {
	content := "\n   \nSINGLETOKEN\nA01 Typhoid fever caused by Salmonella\n"

	lines := CleanLines(content, "\t")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %v", len(lines), lines)
	}
}

func TestCleanLinesEmptyInput(t *testing.T) {
	if lines := CleanLines("", "\t"); len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
}

func TestCleanLinesIdempotent(t *testing.T) {
	content := "A01   Typhoid fever caused by Salmonella typhi\n" +
		"garbage line without a usable description x\n"

	first := CleanLines(content, "\t")
	second := CleanLines(strings.Join(first, "\n"), "\t")

	if len(first) != len(second) {
		t.Fatalf("second pass changed line count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("line %d changed on second pass: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestStandardizeAndFilterWritesCleanedFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw.txt")
	output := filepath.Join(dir, "raw.txt.cleaned")

	raw := "A01 Typhoid fever caused by Salmonella typhi\n" +
		"future CPT codes may be assigned later on\n"
	if err := os.WriteFile(input, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCleaner(zerolog.Nop())
	got, err := c.StandardizeAndFilter(input, output, "")
	if err != nil {
		t.Fatalf("StandardizeAndFilter: %v", err)
	}
	if got != output {
		t.Errorf("returned path %q, want %q", got, output)
	}

	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "A01\tTyphoid fever caused by Salmonella typhi" {
		t.Errorf("unexpected cleaned content: %q", content)
	}
}

func TestStandardizeAndFilterEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.txt")
	output := filepath.Join(dir, "empty.txt.cleaned")
	if err := os.WriteFile(input, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCleaner(zerolog.Nop())
	if _, err := c.StandardizeAndFilter(input, output, "\t"); err != nil {
		t.Fatalf("StandardizeAndFilter: %v", err)
	}

	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(content) != 0 {
		t.Errorf("expected empty output, got %q", content)
	}
}

func TestStandardizeAndFilterMissingInput(t *testing.T) {
	c := NewCleaner(zerolog.Nop())
	if _, err := c.StandardizeAndFilter("/nonexistent/input.txt", "/tmp/out.txt", "\t"); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestStandardizeAndFilterInvalidUTF8Recovers(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "mixed.txt")
	output := filepath.Join(dir, "mixed.txt.cleaned")

	// Valid structure with one invalid byte in the description.
	raw := append([]byte("A01 Typhoid fever caused by Salmonella"), 0xff, '\n')
	if err := os.WriteFile(input, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCleaner(zerolog.Nop())
	if _, err := c.StandardizeAndFilter(input, output, "\t"); err != nil {
		t.Fatalf("expected lenient recovery, got %v", err)
	}
}
