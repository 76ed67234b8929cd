package classifier

import (
	"encoding/json"
	"regexp"
	"strings"
)

// rawClassification is one element of the model's JSON array
type rawClassification struct {
	Index      *int   `json:"index"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Pricing    string `json:"pricing"`
	IsRelevant *bool  `json:"isRelevant"`
}

var (
	bracketSpan   = regexp.MustCompile(`(?s)\[.*\]`)
	fencedBlock   = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	fenceMarker   = regexp.MustCompile("```[a-zA-Z]*")
	trailingComma = regexp.MustCompile(`,\s*([\]}])`)
)

// parseStep is one rung of the recovery ladder. Steps never panic and report
// whether they produced a result.
type parseStep func(text string) ([]rawClassification, bool)

// parseLadder is tried in order; the first step that succeeds wins
var parseLadder = []parseStep{
	parseDirect,
	parseBracketSpan,
	parseFenced,
	parseRepaired,
}

// parseClassifications recovers the classification array from free-form
// model output
func parseClassifications(text string) ([]rawClassification, bool) {
	for _, step := range parseLadder {
		if out, ok := step(text); ok {
			return out, true
		}
	}
	return nil, false
}

// decodeArray needs s to be a JSON array. Elements are decoded one by one
// and a malformed element is dropped, so its index falls back to the
// heuristic while the rest of the batch keeps the model's answers.
func decodeArray(s string) ([]rawClassification, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(s), &elems); err != nil {
		return nil, false
	}
	out := make([]rawClassification, 0, len(elems))
	for _, e := range elems {
		var r rawClassification
		if err := json.Unmarshal(e, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, true
}

// parseDirect: the whole trimmed response is the array
func parseDirect(text string) ([]rawClassification, bool) {
	return decodeArray(strings.TrimSpace(text))
}

// parseBracketSpan: the first '[' through the last ']'
func parseBracketSpan(text string) ([]rawClassification, bool) {
	span := bracketSpan.FindString(text)
	if span == "" {
		return nil, false
	}
	return decodeArray(span)
}

// parseFenced: the body of a ``` fenced block
func parseFenced(text string) ([]rawClassification, bool) {
	m := fencedBlock.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return decodeArray(strings.TrimSpace(m[1]))
}

// parseRepaired: drop fence markers and trailing commas, then take the
// bracket span again
func parseRepaired(text string) ([]rawClassification, bool) {
	cleaned := fenceMarker.ReplaceAllString(text, "")
	cleaned = trailingComma.ReplaceAllString(cleaned, "$1")
	return parseBracketSpan(cleaned)
}
