package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
)

// flexInt accepts 7, 7.0 and "7".
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = flexInt(math.Round(f))
	return nil
}

// flexBool accepts true and "true".
type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(string(b), `"`))
	*v = flexBool(s == "true" || s == "1")
	return nil
}

type labelWire struct {
	Sentiment  string   `json:"sentiment"`
	Category   string   `json:"category"`
	Score      flexInt  `json:"score"`
	Summary    string   `json:"summary"`
	IsCritical flexBool `json:"is_critical"`
}

type themeWire struct {
	Theme                 string  `json:"theme"`
	Title                 string  `json:"title"`
	Count                 flexInt `json:"count"`
	RepresentativeComment string  `json:"representative_comment"`
}

// ParseLabels reads the classification answer, either a bare array or an
// object holding one, and normalizes every label.
func ParseLabels(raw string) ([]feedback.Label, error) {
	var wire []labelWire
	if err := decodeArray(raw, &wire); err != nil {
		return nil, err
	}
	labels := make([]feedback.Label, len(wire))
	for i, w := range wire {
		labels[i] = feedback.Label{
			Sentiment:       feedback.ParseSentiment(w.Sentiment),
			Category:        feedback.ParseCategory(w.Category),
			ImportanceScore: int(w.Score),
			Summary:         w.Summary,
			IsCritical:      bool(w.IsCritical),
		}.Normalize()
	}
	return labels, nil
}

// ParseThemes reads the clustering answer in the same two shapes.
func ParseThemes(raw string) ([]feedback.Theme, error) {
	var wire []themeWire
	if err := decodeArray(raw, &wire); err != nil {
		return nil, err
	}
	themes := make([]feedback.Theme, 0, len(wire))
	for _, w := range wire {
		title := w.Theme
		if title == "" {
			title = w.Title
		}
		themes = append(themes, feedback.Theme{
			Title:                 title,
			ApproximateCount:      max(int(w.Count), 0),
			RepresentativeComment: w.RepresentativeComment,
		})
	}
	return themes, nil
}

// decodeArray unmarshals raw into dst, accepting "[...]" or an object whose
// first array-valued field holds the items. Code fences are stripped.
func decodeArray(raw string, dst any) error {
	body := []byte(stripFences(raw))
	if len(body) == 0 {
		return fmt.Errorf("%w: empty", feedback.ErrMalformedResponse)
	}

	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("%w: %w", feedback.ErrMalformedResponse, err)
		}
		return nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return fmt.Errorf("%w: %w", feedback.ErrMalformedResponse, err)
		}
		for _, key := range []string{"results", "themes", "items", "data"} {
			if v, ok := obj[key]; ok {
				return decodeArray(string(v), dst)
			}
		}
		for _, v := range obj {
			if t := bytes.TrimSpace(v); len(t) > 0 && t[0] == '[' {
				return decodeArray(string(t), dst)
			}
		}
		return fmt.Errorf("%w: object without an array field", feedback.ErrMalformedResponse)
	default:
		return fmt.Errorf("%w: expected JSON array or object", feedback.ErrMalformedResponse)
	}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
