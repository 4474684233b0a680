package model

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mbolis/quick-campaign/condition"
)

// ListSeparator splits multi-valued defaults and comma list responses.
const ListSeparator = ","

type choicePrompt struct {
	promptBase
	choices map[int]LabelValuePair
}

func newChoicePrompt(kind PromptType, p PromptParams, choices map[int]LabelValuePair) (choicePrompt, error) {
	base, err := newPromptBase(kind, p)
	if err != nil {
		return choicePrompt{}, err
	}
	labels := make(map[string]int, len(choices))
	copied := make(map[int]LabelValuePair, len(choices))
	for _, key := range sortedKeys(choices) {
		if key < 0 {
			return choicePrompt{}, Errorf(CodeInvalidProperty, "prompt %q has negative choice key %d", p.ID, key)
		}
		label := choices[key].Label()
		if other, ok := labels[label]; ok {
			return choicePrompt{}, Errorf(CodeDuplicateProperty, "prompt %q uses label %q for choices %d and %d", p.ID, label, other, key)
		}
		labels[label] = key
		copied[key] = choices[key]
	}
	return choicePrompt{promptBase: base, choices: copied}, nil
}

// Choices returns the declared choices by key.
func (p *choicePrompt) Choices() map[int]LabelValuePair {
	return copyChoices(p.choices)
}

func copyChoices(m map[int]LabelValuePair) map[int]LabelValuePair {
	out := make(map[int]LabelValuePair, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (p *choicePrompt) checkKey(key int) error {
	if _, ok := p.choices[key]; !ok {
		return Errorf(CodeInvalidDefault, "prompt %q has no choice %d", p.id, key)
	}
	return nil
}

// parseKey reads a choice key out of a response or condition value.
func (p *choicePrompt) parseKey(v any) (int, bool) {
	n, ok := parseWholeNumber(v)
	if !ok || n < 0 || n > int64(^uint(0)>>1) {
		return 0, false
	}
	return int(n), true
}

func (p *choicePrompt) validateKeyCondition(self SurveyItem, c condition.Pair, equalityOnly bool) error {
	if handled, err := noResponseCondition(self, c); handled {
		return err
	}
	if equalityOnly && !c.Op.IsEquality() {
		return Errorf(CodeConditionValue, "prompt %q can only be compared with == or !=", p.id)
	}
	key, ok := p.parseKey(c.Value)
	if !ok {
		return Errorf(CodeConditionValue, "prompt %q compares with %q, not a choice key", p.id, c.Value)
	}
	if _, ok := p.choices[key]; !ok {
		return Errorf(CodeConditionValue, "prompt %q has no choice %d", p.id, key)
	}
	return nil
}

func (p *choicePrompt) glossary() map[string]any {
	out := make(map[string]any, len(p.choices))
	for key, choice := range p.choices {
		entry := map[string]any{"label": choice.Label()}
		if v, ok := choice.Value(); ok {
			entry["value"] = v.Value()
		}
		out[strconv.Itoa(key)] = entry
	}
	return out
}

// splitList turns a submitted multi-value into its elements. It accepts a
// JSON array, a string holding a JSON array, or a comma separated string.
func splitList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case float64, int, int64:
		return []any{x}, true
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "[") {
			var arr []any
			if err := json.Unmarshal([]byte(s), &arr); err != nil {
				return nil, false
			}
			return arr, true
		}
		if s == "" {
			return []any{}, true
		}
		parts := strings.Split(s, ListSeparator)
		out := make([]any, len(parts))
		for i, part := range parts {
			out[i] = strings.TrimSpace(part)
		}
		return out, true
	}
	return nil, false
}

// SingleChoicePrompt asks to pick exactly one declared choice.
type SingleChoicePrompt struct {
	choicePrompt
	def *int
}

func NewSingleChoicePrompt(p PromptParams, choices map[int]LabelValuePair, def *int) (*SingleChoicePrompt, error) {
	return newSingleChoicePrompt(SingleChoice, p, choices, def)
}

func newSingleChoicePrompt(kind PromptType, p PromptParams, choices map[int]LabelValuePair, def *int) (*SingleChoicePrompt, error) {
	c, err := newChoicePrompt(kind, p, choices)
	if err != nil {
		return nil, err
	}
	if def != nil {
		if err := c.checkKey(*def); err != nil {
			return nil, err
		}
		d := *def
		def = &d
	}
	return &SingleChoicePrompt{choicePrompt: c, def: def}, nil
}

func (p *SingleChoicePrompt) Default() (int, bool) {
	if p.def == nil {
		return 0, false
	}
	return *p.def, true
}

func (p *SingleChoicePrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	key, ok := p.parseKey(v)
	if !ok {
		return nil, p.typeMismatch("a choice key", v)
	}
	if _, ok := p.choices[key]; !ok {
		return nil, Errorf(CodeResponseType, "prompt %q has no choice %d", p.id, key)
	}
	return key, nil
}

func (p *SingleChoicePrompt) ValidateCondition(c condition.Pair) error {
	return p.validateKeyCondition(p, c, false)
}

func (p *SingleChoicePrompt) toJSON() map[string]any {
	out := p.baseJSON()
	out["choice_glossary"] = p.glossary()
	if p.def != nil {
		out["default"] = *p.def
	}
	return out
}

// SingleChoiceCustomPrompt lets the user pick a declared choice or type a
// new label.
type SingleChoiceCustomPrompt struct {
	SingleChoicePrompt
	custom map[int]LabelValuePair
}

func NewSingleChoiceCustomPrompt(p PromptParams, choices map[int]LabelValuePair, def *int) (*SingleChoiceCustomPrompt, error) {
	s, err := newSingleChoicePrompt(SingleChoiceCustom, p, choices, def)
	if err != nil {
		return nil, err
	}
	return &SingleChoiceCustomPrompt{SingleChoicePrompt: *s, custom: map[int]LabelValuePair{}}, nil
}

// CustomChoices are the choices users added. A built prompt never gains
// any: new labels only live in responses.
func (p *SingleChoiceCustomPrompt) CustomChoices() map[int]LabelValuePair {
	return copyChoices(p.custom)
}

// ValidateValue returns the chosen label.
func (p *SingleChoiceCustomPrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, p.typeMismatch("a choice label", v)
	}
	return s, nil
}

// MultiChoicePrompt asks to pick any number of declared choices.
type MultiChoicePrompt struct {
	choicePrompt
	def []int
}

func NewMultiChoicePrompt(p PromptParams, choices map[int]LabelValuePair, def []int) (*MultiChoicePrompt, error) {
	return newMultiChoicePrompt(MultiChoice, p, choices, def)
}

func newMultiChoicePrompt(kind PromptType, p PromptParams, choices map[int]LabelValuePair, def []int) (*MultiChoicePrompt, error) {
	c, err := newChoicePrompt(kind, p, choices)
	if err != nil {
		return nil, err
	}
	for _, key := range def {
		if err := c.checkKey(key); err != nil {
			return nil, err
		}
	}
	return &MultiChoicePrompt{choicePrompt: c, def: append([]int(nil), def...)}, nil
}

func (p *MultiChoicePrompt) Default() []int {
	return append([]int(nil), p.def...)
}

// ValidateValue returns the chosen keys, sorted and without repetitions.
func (p *MultiChoicePrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	elems, ok := splitList(v)
	if !ok {
		return nil, p.typeMismatch("a list of choice keys", v)
	}
	seen := map[int]bool{}
	keys := []int{}
	for _, e := range elems {
		key, ok := p.parseKey(e)
		if !ok {
			return nil, p.typeMismatch("a list of choice keys", v)
		}
		if _, ok := p.choices[key]; !ok {
			return nil, Errorf(CodeResponseType, "prompt %q has no choice %d", p.id, key)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Ints(keys)
	return keys, nil
}

func (p *MultiChoicePrompt) ValidateCondition(c condition.Pair) error {
	return p.validateKeyCondition(p, c, true)
}

func (p *MultiChoicePrompt) toJSON() map[string]any {
	out := p.baseJSON()
	out["choice_glossary"] = p.glossary()
	if len(p.def) > 0 {
		parts := make([]string, len(p.def))
		for i, key := range p.def {
			parts[i] = strconv.Itoa(key)
		}
		out["default"] = strings.Join(parts, ListSeparator)
	}
	return out
}

// MultiChoiceCustomPrompt lets the user pick declared choices and add new
// labels.
type MultiChoiceCustomPrompt struct {
	MultiChoicePrompt
	custom map[int]LabelValuePair
}

func NewMultiChoiceCustomPrompt(p PromptParams, choices map[int]LabelValuePair, def []int) (*MultiChoiceCustomPrompt, error) {
	m, err := newMultiChoicePrompt(MultiChoiceCustom, p, choices, def)
	if err != nil {
		return nil, err
	}
	return &MultiChoiceCustomPrompt{MultiChoicePrompt: *m, custom: map[int]LabelValuePair{}}, nil
}

func (p *MultiChoiceCustomPrompt) CustomChoices() map[int]LabelValuePair {
	return copyChoices(p.custom)
}

// ValidateValue returns the chosen labels in submission order, without
// repetitions.
func (p *MultiChoiceCustomPrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	elems, ok := splitList(v)
	if !ok {
		return nil, p.typeMismatch("a list of choice labels", v)
	}
	seen := map[string]bool{}
	labels := []string{}
	for _, e := range elems {
		s, ok := e.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, p.typeMismatch("a list of choice labels", v)
		}
		if !seen[s] {
			seen[s] = true
			labels = append(labels, s)
		}
	}
	return labels, nil
}
