package llm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// The batch micro-format packs N items into one completion request as
// "{n}. {content}" lines, 1-indexed, and expects the response to use the
// same numbering. Response lines may arrive in any order; items map back to
// the caller's ordering via the parsed index, never via line position.

// EncodeNumberedList renders an instruction followed by one numbered line
// per item.
func EncodeNumberedList(instruction string, items []string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

// ParseNumberedList extracts up to n numbered payloads from a response.
// The result has exactly n entries; indices absent from the response are nil.
func ParseNumberedList(response string, n int) []*string {
	results := make([]*string, n)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !unicode.IsDigit(rune(line[0])) {
			continue
		}
		idxStr, payload, found := strings.Cut(line, ".")
		if !found {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
		if err != nil || idx < 1 || idx > n {
			continue
		}
		text := strings.TrimSpace(payload)
		if text == "" {
			continue
		}
		results[idx-1] = &text
	}
	return results
}

// parseGeneratedLines extracts statements from numbered or bulleted model
// output, discarding lines shorter than minLen and truncating to count.
func parseGeneratedLines(response string, count, minLen int) []string {
	var out []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.)-*• ")
		line = strings.Trim(line, `"`)
		if len(line) < minLen {
			continue
		}
		out = append(out, line)
		if len(out) == count {
			break
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `."'`)))
}
