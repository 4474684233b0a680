package model

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mbolis/quick-campaign/condition"
)

// TextPrompt asks for free text whose length lies within bounds.
type TextPrompt struct {
	promptBase
	min, max int
	def      *string
}

func NewTextPrompt(p PromptParams, min, max int, def *string) (*TextPrompt, error) {
	base, err := newPromptBase(Text, p)
	if err != nil {
		return nil, err
	}
	if min < 0 || min > max {
		return nil, Errorf(CodeInvalidProperty, "text prompt %q has invalid length bounds [%d, %d]", p.ID, min, max)
	}
	if def != nil {
		d := *def
		def = &d
	}
	return &TextPrompt{promptBase: base, min: min, max: max, def: def}, nil
}

func (p *TextPrompt) Min() int { return p.min }
func (p *TextPrompt) Max() int { return p.max }

func (p *TextPrompt) Default() (string, bool) {
	if p.def == nil {
		return "", false
	}
	return *p.def, true
}

func (p *TextPrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, p.typeMismatch("text", v)
	}
	if n := utf8.RuneCountInString(s); n < p.min || n > p.max {
		return nil, Errorf(CodeResponseType, "prompt %q text length %d is outside [%d, %d]", p.id, n, p.min, p.max)
	}
	return s, nil
}

func (p *TextPrompt) ValidateCondition(c condition.Pair) error {
	return noConditions(p, "text prompt", c)
}

func (p *TextPrompt) toJSON() map[string]any {
	out := p.baseJSON()
	out["min"] = p.min
	out["max"] = p.max
	if p.def != nil {
		out["default"] = *p.def
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimestampPrompt asks for a date, optionally with a time.
type TimestampPrompt struct {
	promptBase
}

func NewTimestampPrompt(p PromptParams) (*TimestampPrompt, error) {
	base, err := newPromptBase(Timestamp, p)
	if err != nil {
		return nil, err
	}
	return &TimestampPrompt{base}, nil
}

func (p *TimestampPrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
	}
	return nil, p.typeMismatch("an ISO-8601 date or date-time", v)
}

func (p *TimestampPrompt) ValidateCondition(c condition.Pair) error {
	return noConditions(p, "timestamp prompt", c)
}

func (p *TimestampPrompt) toJSON() map[string]any {
	return p.baseJSON()
}

// PhotoPrompt asks for a picture, answered with the picture's id.
type PhotoPrompt struct {
	promptBase
	resolution int
}

func NewPhotoPrompt(p PromptParams, resolution int) (*PhotoPrompt, error) {
	base, err := newPromptBase(Photo, p)
	if err != nil {
		return nil, err
	}
	if resolution < 0 {
		return nil, Errorf(CodeInvalidProperty, "photo prompt %q has a negative resolution", p.ID)
	}
	return &PhotoPrompt{promptBase: base, resolution: resolution}, nil
}

func (p *PhotoPrompt) Resolution() int { return p.resolution }

func (p *PhotoPrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	return parseMediaID(&p.promptBase, v)
}

func (p *PhotoPrompt) ValidateCondition(c condition.Pair) error {
	return noConditions(p, "photo prompt", c)
}

func (p *PhotoPrompt) toJSON() map[string]any {
	out := p.baseJSON()
	out["vertical_resolution"] = p.resolution
	return out
}

// VideoPrompt asks for a recording of bounded length.
type VideoPrompt struct {
	promptBase
	maxSeconds int
}

func NewVideoPrompt(p PromptParams, maxSeconds int) (*VideoPrompt, error) {
	base, err := newPromptBase(Video, p)
	if err != nil {
		return nil, err
	}
	if maxSeconds <= 0 {
		return nil, Errorf(CodeInvalidProperty, "video prompt %q needs a positive max_seconds", p.ID)
	}
	return &VideoPrompt{promptBase: base, maxSeconds: maxSeconds}, nil
}

func (p *VideoPrompt) MaxSeconds() int { return p.maxSeconds }

func (p *VideoPrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	return parseMediaID(&p.promptBase, v)
}

func (p *VideoPrompt) ValidateCondition(c condition.Pair) error {
	return noConditions(p, "video prompt", c)
}

func (p *VideoPrompt) toJSON() map[string]any {
	out := p.baseJSON()
	out["max_seconds"] = p.maxSeconds
	return out
}

func parseMediaID(p *promptBase, v any) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case string:
		if id, err := uuid.Parse(x); err == nil {
			return id, nil
		}
	}
	return nil, p.typeMismatch("a media UUID", v)
}
