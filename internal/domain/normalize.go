package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Ingredients is an ingredient list that also decodes older shapes:
// a newline separated string, or an array of "name amount" strings.
type Ingredients []Ingredient

// Steps is a step list that also decodes a newline separated string
// or an array of plain strings.
type Steps []Step

var stepNumber = regexp.MustCompile(`^\d+[.．]\s*`)

// ParseIngredientLine splits "五花肉 500g" into name and amount on the first run of whitespace
func ParseIngredientLine(line string) Ingredient {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Ingredient{}
	}
	return Ingredient{Name: fields[0], Amount: strings.Join(fields[1:], " ")}
}

// ParseIngredientLines parses one ingredient per line, skipping blank lines
func ParseIngredientLines(text string) Ingredients {
	var out Ingredients
	for _, line := range strings.Split(text, "\n") {
		ing := ParseIngredientLine(line)
		if ing.Name == "" {
			continue
		}
		out = append(out, ing)
	}
	return out
}

// ParseStepLines parses one step per line, stripping "1." style numbering
func ParseStepLines(text string) Steps {
	var out Steps
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(stepNumber.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, Step{Text: line})
	}
	return out
}

// UnmarshalJSON accepts structured objects, plain strings or one delimited string
func (l *Ingredients) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decode ingredients text: %w", err)
		}
		*l = ParseIngredientLines(text)
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode ingredients: %w", err)
	}

	out := make(Ingredients, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var line string
			if err := json.Unmarshal(item, &line); err != nil {
				return fmt.Errorf("decode ingredient: %w", err)
			}
			if ing := ParseIngredientLine(line); ing.Name != "" {
				out = append(out, ing)
			}
			continue
		}
		var ing Ingredient
		if err := json.Unmarshal(item, &ing); err != nil {
			return fmt.Errorf("decode ingredient: %w", err)
		}
		out = append(out, ing)
	}
	*l = out
	return nil
}

// legacyStep covers step objects that stored their picture under stepImage
type legacyStep struct {
	Text      string `json:"text"`
	Image     string `json:"image"`
	StepImage string `json:"stepImage"`
}

// UnmarshalJSON accepts structured objects, plain strings or one delimited string
func (l *Steps) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decode steps text: %w", err)
		}
		*l = ParseStepLines(text)
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode steps: %w", err)
	}

	out := make(Steps, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var text string
			if err := json.Unmarshal(item, &text); err != nil {
				return fmt.Errorf("decode step: %w", err)
			}
			out = append(out, Step{Text: text})
			continue
		}
		var s legacyStep
		if err := json.Unmarshal(item, &s); err != nil {
			return fmt.Errorf("decode step: %w", err)
		}
		img := s.Image
		if img == "" {
			img = s.StepImage
		}
		out = append(out, Step{Text: s.Text, Image: img})
	}
	*l = out
	return nil
}
