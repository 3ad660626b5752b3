package mysql

import (
	"encoding/json"
	"strings"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// encodeHeaders stores the header row as a JSON array.
func encodeHeaders(h []string) (string, error) {
	if h == nil {
		h = []string{}
	}
	b, err := json.Marshal(h)
	return string(b), err
}

func decodeHeaders(s string) ([]string, error) {
	var h []string
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}
	err := json.Unmarshal([]byte(s), &h)
	return h, err
}
