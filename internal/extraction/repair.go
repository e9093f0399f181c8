package extraction

import (
	"regexp"
	"strings"
)

var (
	// `{ specializations":` or `, cleanQuery":` with the opening quote missing.
	missingKeyQuote = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)":`)
	// `{specializations:` with both quotes missing.
	bareKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// repairJSON fixes the formatting slips chat models make most often in tool
// arguments: unquoted or half quoted keys and trailing commas.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	s = missingKeyQuote.ReplaceAllString(s, `$1"$2":`)
	s = bareKey.ReplaceAllString(s, `$1"$2":`)
	return trailingComma.ReplaceAllString(s, "$1")
}
