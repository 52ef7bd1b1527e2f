package knowledge

import (
	"fmt"
	"regexp"
	"strings"
)

// Minimum lengths for keeping text fragments, matching the source
// document's structure (short stray lines carry no product information).
const (
	minSectionLen = 30
	minChunkLen   = 20
)

var (
	// blankRuns collapses three or more consecutive newlines to two.
	blankRuns = regexp.MustCompile(`\n{3,}`)

	// sectionHeader matches lines that open a product section: a short
	// capitalized line such as "Debit Cards" or "Loan Products".
	sectionHeader = regexp.MustCompile(`\n[A-Z][^\n]{2,50}\n`)

	// numberedItem matches numbered product entries like "1. Salary Advance Loan".
	numberedItem = regexp.MustCompile(`\n\d+\. `)
)

// Normalize cleans raw document text: CRLF to LF, blank-run collapse, trim.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// SplitChunks splits normalized document text into retrieval chunks.
//
// Strategy: primary split on product section headers; sections exceeding
// maxChunkSize are re-split on numbered items. Fragments shorter than 20
// characters are dropped.
func SplitChunks(text string, maxChunkSize int) []Chunk {
	var chunks []Chunk

	for _, section := range splitBefore(text, sectionHeader) {
		section = strings.TrimSpace(section)
		if len(section) < minSectionLen {
			continue
		}

		header, _, _ := strings.Cut(section, "\n")

		parts := []string{section}
		if len(section) > maxChunkSize {
			parts = splitBefore(section, numberedItem)
		}

		for _, part := range parts {
			part = strings.TrimSpace(part)
			if len(part) <= minChunkLen {
				continue
			}
			chunks = append(chunks, Chunk{
				ID:      fmt.Sprintf("chunk-%03d", len(chunks)),
				Text:    part,
				Section: header,
				Ordinal: len(chunks),
			})
		}
	}

	return chunks
}

// splitBefore splits text at each match of re, keeping the matched text at
// the head of the following piece. RE2 has no lookahead, so boundary
// positions are computed from match offsets: the cut lands just after the
// leading newline of each match.
func splitBefore(text string, re *regexp.Regexp) []string {
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}

	var pieces []string
	prev := 0
	for _, m := range matches {
		cut := m[0] + 1 // keep the header line, drop into the next piece
		if cut > prev {
			pieces = append(pieces, text[prev:cut])
		}
		prev = cut
	}
	pieces = append(pieces, text[prev:])
	return pieces
}
