package model

import (
	"strings"
)

// Prompt is a survey item that asks for a value. Each PromptType has its
// own implementation carrying only the fields that kind needs.
type Prompt interface {
	SurveyItem
	Kind() PromptType
	Unit() string
	Text() string
	AbbreviatedText() string
	ExplanationText() string
	SkipLabel() string
	DisplayType() DisplayType
	DisplayLabel() string
	// ValidateValue coerces a submitted value into the kind's native type,
	// or returns the NoResponse the value stands for.
	ValidateValue(v any) (any, error)
}

// PromptParams are the fields every prompt kind shares.
type PromptParams struct {
	ItemParams
	Unit            string
	Text            string
	AbbreviatedText string
	ExplanationText string
	Skippable       bool
	SkipLabel       string
	DisplayType     DisplayType
	DisplayLabel    string
}

type promptBase struct {
	itemBase
	kind            PromptType
	unit            string
	text            string
	abbreviatedText string
	explanationText string
	skippable       bool
	skipLabel       string
	displayType     DisplayType
	displayLabel    string
}

func newPromptBase(kind PromptType, p PromptParams) (promptBase, error) {
	base, err := newItemBase(p.ItemParams)
	if err != nil {
		return promptBase{}, err
	}
	switch {
	case strings.TrimSpace(p.Text) == "":
		return promptBase{}, Errorf(CodeMissingField, "prompt %q has no text", p.ID)
	case p.Skippable && strings.TrimSpace(p.SkipLabel) == "":
		return promptBase{}, Errorf(CodeMissingField, "skippable prompt %q has no skip label", p.ID)
	case strings.TrimSpace(p.DisplayLabel) == "":
		return promptBase{}, Errorf(CodeMissingField, "prompt %q has no display label", p.ID)
	}
	if _, err := ParseDisplayType(string(p.DisplayType)); err != nil {
		return promptBase{}, err
	}
	return promptBase{
		itemBase:        base,
		kind:            kind,
		unit:            p.Unit,
		text:            p.Text,
		abbreviatedText: p.AbbreviatedText,
		explanationText: p.ExplanationText,
		skippable:       p.Skippable,
		skipLabel:       p.SkipLabel,
		displayType:     p.DisplayType,
		displayLabel:    p.DisplayLabel,
	}, nil
}

func (p *promptBase) Type() ItemType           { return PromptItem }
func (p *promptBase) Kind() PromptType         { return p.kind }
func (p *promptBase) Unit() string             { return p.unit }
func (p *promptBase) Text() string             { return p.text }
func (p *promptBase) AbbreviatedText() string  { return p.abbreviatedText }
func (p *promptBase) ExplanationText() string  { return p.explanationText }
func (p *promptBase) Skippable() bool          { return p.skippable }
func (p *promptBase) SkipLabel() string        { return p.skipLabel }
func (p *promptBase) DisplayType() DisplayType { return p.displayType }
func (p *promptBase) DisplayLabel() string     { return p.displayLabel }
func (p *promptBase) ItemCount() int           { return 1 }
func (p *promptBase) PromptCount() int         { return 1 }

// noResponse recognises the SKIPPED and NOT_DISPLAYED markers in a
// submitted value. handled is false for any other value.
func (p *promptBase) noResponse(v any) (nr NoResponse, handled bool, err error) {
	switch x := v.(type) {
	case NoResponse:
		nr, handled = x, x == Skipped || x == NotDisplayed
	case string:
		nr, handled = ParseNoResponse(x)
	}
	if !handled {
		return "", false, nil
	}
	if nr == Skipped && !p.skippable {
		return "", true, Errorf(CodeResponseSkipped, "prompt %q is not skippable", p.id)
	}
	return nr, true, nil
}

func (p *promptBase) typeMismatch(want string, v any) error {
	return Errorf(CodeResponseType, "prompt %q expects %s, got %v", p.id, want, v)
}

func (p *promptBase) baseJSON() map[string]any {
	out := p.itemBase.baseJSON()
	out["prompt_type"] = p.kind
	out["display_type"] = p.displayType
	out["display_label"] = p.displayLabel
	out["prompt_text"] = p.text
	out["skippable"] = p.skippable
	if p.unit != "" {
		out["unit"] = p.unit
	}
	if p.abbreviatedText != "" {
		out["abbreviated_text"] = p.abbreviatedText
	}
	if p.explanationText != "" {
		out["explanation_text"] = p.explanationText
	}
	if p.skippable {
		out["skip_label"] = p.skipLabel
	}
	return out
}
