package recipients

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// separators matches runs of newline, comma, and semicolon. The three are
// interchangeable and consecutive ones collapse into one split point.
var separators = regexp.MustCompile(`[\n,;]+`)

// Stats summarizes one normalization pass.
type Stats struct {
	// Total counts non-empty tokens before deduplication.
	Total int `json:"total"`

	// Unique is the number of addresses kept.
	Unique int `json:"unique"`

	// Duplicates is always Total - Unique.
	Duplicates int `json:"duplicates"`
}

// List is the normalized projection of some raw recipient text. It is a
// value; every edit produces a new List through Normalize.
type List struct {
	RawText   string   `json:"raw_text"`
	Addresses []string `json:"addresses"`
	Stats     Stats    `json:"stats"`
}

// Normalize splits raw on newline, comma, and semicolon, trims and
// lower-cases each token, drops empty tokens, and removes duplicates while
// keeping the first occurrence in place. It never fails.
func Normalize(raw string) List {
	tokens := lo.FilterMap(separators.Split(raw, -1), func(tok string, _ int) (string, bool) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		return tok, tok != ""
	})
	unique := lo.Uniq(tokens)

	return List{
		RawText:   raw,
		Addresses: unique,
		Stats: Stats{
			Total:      len(tokens),
			Unique:     len(unique),
			Duplicates: len(tokens) - len(unique),
		},
	}
}

// Text renders the address set one per line, the form shown back to the
// user after an import.
func (l List) Text() string {
	return strings.Join(l.Addresses, "\n")
}

// Len returns the number of unique addresses.
func (l List) Len() int {
	return len(l.Addresses)
}
