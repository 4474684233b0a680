package model

import (
	"github.com/mbolis/quick-campaign/condition"
)

type boundedPrompt struct {
	promptBase
	min, max int64
	def      *int64
}

func newBoundedPrompt(kind PromptType, p PromptParams, min, max int64, def *int64) (boundedPrompt, error) {
	base, err := newPromptBase(kind, p)
	if err != nil {
		return boundedPrompt{}, err
	}
	if min > max {
		return boundedPrompt{}, Errorf(CodeInvalidProperty, "prompt %q has min %d greater than max %d", p.ID, min, max)
	}
	if def != nil {
		if *def < min || *def > max {
			return boundedPrompt{}, Errorf(CodeInvalidDefault, "prompt %q default %d is outside [%d, %d]", p.ID, *def, min, max)
		}
		d := *def
		def = &d
	}
	return boundedPrompt{promptBase: base, min: min, max: max, def: def}, nil
}

func (p *boundedPrompt) Min() int64 { return p.min }
func (p *boundedPrompt) Max() int64 { return p.max }

func (p *boundedPrompt) Default() (int64, bool) {
	if p.def == nil {
		return 0, false
	}
	return *p.def, true
}

func (p *boundedPrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	n, ok := parseWholeNumber(v)
	if !ok {
		return nil, p.typeMismatch("a whole number", v)
	}
	if n < p.min || n > p.max {
		return nil, Errorf(CodeResponseType, "prompt %q value %d is outside [%d, %d]", p.id, n, p.min, p.max)
	}
	return n, nil
}

func (p *boundedPrompt) ValidateCondition(c condition.Pair) error {
	if handled, err := noResponseCondition(p, c); handled {
		return err
	}
	n, ok := parseWholeNumber(c.Value)
	if !ok {
		return Errorf(CodeConditionValue, "prompt %q compares with %q, not a whole number", p.id, c.Value)
	}
	if n < p.min || n > p.max {
		return Errorf(CodeConditionValue, "prompt %q compares with %d, outside [%d, %d]", p.id, n, p.min, p.max)
	}
	return nil
}

func (p *boundedPrompt) toJSON() map[string]any {
	out := p.baseJSON()
	out["min"] = p.min
	out["max"] = p.max
	if p.def != nil {
		out["default"] = *p.def
	}
	return out
}

// NumberPrompt asks for a whole number within bounds.
type NumberPrompt struct {
	boundedPrompt
}

func NewNumberPrompt(p PromptParams, min, max int64, def *int64) (*NumberPrompt, error) {
	b, err := newBoundedPrompt(Number, p, min, max, def)
	if err != nil {
		return nil, err
	}
	return &NumberPrompt{b}, nil
}

// HoursBeforeNowPrompt asks how many hours ago something happened.
type HoursBeforeNowPrompt struct {
	boundedPrompt
}

func NewHoursBeforeNowPrompt(p PromptParams, min, max int64, def *int64) (*HoursBeforeNowPrompt, error) {
	b, err := newBoundedPrompt(HoursBeforeNow, p, min, max, def)
	if err != nil {
		return nil, err
	}
	return &HoursBeforeNowPrompt{b}, nil
}
