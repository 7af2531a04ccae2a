package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var codeRe = regexp.MustCompile(`^([A-Z][A-Z0-9]*)-(\d+)$`)

// ParsedCode holds the structured data parsed from a reel code.
type ParsedCode struct {
	Prefix string
	Seq    int
}

// ParseCode extracts the prefix and sequence number from a reel code such
// as "BOB-001". Codes are normalized to upper case before matching.
func ParseCode(raw string) (ParsedCode, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))

	matches := codeRe.FindStringSubmatch(s)
	if matches == nil {
		return ParsedCode{}, fmt.Errorf("unable to parse reel code: %q", raw)
	}

	seq, err := strconv.Atoi(matches[2])
	if err != nil {
		return ParsedCode{}, fmt.Errorf("unable to parse sequence from reel code %q: %w", raw, err)
	}

	return ParsedCode{Prefix: matches[1], Seq: seq}, nil
}
