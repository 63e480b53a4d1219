package classifier

import (
	"encoding/json"
	"errors"
	"strings"
)

// Extraction holds the fields the model was asked for. Values are raw and unvalidated.
type Extraction struct {
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
}

var errUnbalanced = errors.New("unterminated object")

// Extract parses the first JSON object embedded in a model reply, ignoring surrounding prose
func Extract(reply string) (*Extraction, error) {
	start := strings.IndexByte(reply, '{')
	if start < 0 {
		return nil, &FormatError{Text: reply}
	}

	end, err := objectEnd(reply, start)
	if err != nil {
		return nil, &FormatError{Text: reply, Err: err}
	}

	dec := json.NewDecoder(strings.NewReader(reply[start : end+1]))
	dec.UseNumber()
	var out Extraction
	if err := dec.Decode(&out); err != nil {
		return nil, &FormatError{Text: reply, Err: err}
	}
	return &out, nil
}

// objectEnd returns the index of the brace closing the object opened at start.
// Braces inside string literals are ignored.
func objectEnd(s string, start int) (int, error) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errUnbalanced
}
