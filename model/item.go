package model

import (
	"sort"
	"strings"

	"github.com/mbolis/quick-campaign/condition"
)

type ItemType string

const (
	MessageItem       ItemType = "message"
	PromptItem        ItemType = "prompt"
	RepeatableSetItem ItemType = "repeatable_set"
)

// SurveyItem is a Message, a Prompt or a RepeatableSet. The set is closed:
// only this package implements it.
type SurveyItem interface {
	ID() string
	Condition() string
	Index() int
	// ParentID is the id of the enclosing RepeatableSet, empty at the top
	// level of a survey.
	ParentID() string
	Type() ItemType
	Skippable() bool
	// ItemCount counts this item and everything nested in it.
	ItemCount() int
	// PromptCount counts the prompts among ItemCount.
	PromptCount() int
	// ValidateCondition checks a comparison another item's condition makes
	// against this one.
	ValidateCondition(p condition.Pair) error

	toJSON() map[string]any
}

// ItemParams are the fields shared by every kind of survey item.
type ItemParams struct {
	ID        string
	Condition string
	Index     int
	ParentID  string
}

type itemBase struct {
	id        string
	condition string
	index     int
	parentID  string
}

func newItemBase(p ItemParams) (itemBase, error) {
	if !IsValidItemID(p.ID) {
		return itemBase{}, Errorf(CodeInvalidID, "invalid item id: %q", p.ID)
	}
	if p.Index < 0 {
		return itemBase{}, Errorf(CodeInvalidValue, "item %q has a negative index", p.ID)
	}
	return itemBase{
		id:        p.ID,
		condition: p.Condition,
		index:     p.Index,
		parentID:  p.ParentID,
	}, nil
}

func (b *itemBase) ID() string        { return b.id }
func (b *itemBase) Condition() string { return b.condition }
func (b *itemBase) Index() int        { return b.index }
func (b *itemBase) ParentID() string  { return b.parentID }
func (b *itemBase) Skippable() bool   { return false }

func (b *itemBase) baseJSON() map[string]any {
	out := map[string]any{
		"id":    b.id,
		"index": b.index,
	}
	if b.condition != "" {
		out["condition"] = b.condition
	}
	return out
}

// noResponseCondition accepts the SKIPPED and NOT_DISPLAYED literals for any
// item. handled is false when the value is not one of them.
func noResponseCondition(item SurveyItem, p condition.Pair) (handled bool, err error) {
	nr, ok := ParseNoResponse(p.Value)
	if !ok {
		return false, nil
	}
	if !p.Op.IsEquality() {
		return true, Errorf(CodeConditionValue, "%s can only be compared with == or !=", nr)
	}
	if nr == Skipped && !item.Skippable() {
		return true, Errorf(CodeConditionValue, "item %q is not skippable", item.ID())
	}
	return true, nil
}

func noConditions(item SurveyItem, kind string, p condition.Pair) error {
	handled, err := noResponseCondition(item, p)
	if handled {
		return err
	}
	return Errorf(CodeConditionValue, "%s %q only accepts %s or %s in conditions, found %q",
		kind, item.ID(), Skipped, NotDisplayed, p.Value)
}

// Message shows text to the user and records no answer.
type Message struct {
	itemBase
	text string
}

func NewMessage(p ItemParams, text string) (*Message, error) {
	base, err := newItemBase(p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, Errorf(CodeMissingField, "message %q has no text", p.ID)
	}
	return &Message{itemBase: base, text: text}, nil
}

func (m *Message) Text() string     { return m.text }
func (m *Message) Type() ItemType   { return MessageItem }
func (m *Message) ItemCount() int   { return 1 }
func (m *Message) PromptCount() int { return 0 }

func (m *Message) ValidateCondition(p condition.Pair) error {
	return noConditions(m, "message", p)
}

func (m *Message) toJSON() map[string]any {
	out := m.baseJSON()
	out["message_text"] = m.text
	return out
}

// Items is an ordered container of survey items whose indexes match their
// positions.
type Items struct {
	list []SurveyItem
	byID map[string]int
}

func NewItems(items []SurveyItem) (Items, error) {
	if len(items) == 0 {
		return Items{}, Errorf(CodeEmptyContent, "no survey items")
	}
	byID := make(map[string]int, len(items))
	for i, item := range items {
		if item.Index() != i {
			return Items{}, Errorf(CodeInvalidValue, "item %q has index %d at position %d", item.ID(), item.Index(), i)
		}
		if _, ok := byID[item.ID()]; ok {
			return Items{}, Errorf(CodeDuplicateItem, "duplicate item id: %q", item.ID())
		}
		byID[item.ID()] = i
	}
	return Items{list: append([]SurveyItem(nil), items...), byID: byID}, nil
}

func (it Items) Len() int { return len(it.list) }

func (it Items) At(index int) (SurveyItem, bool) {
	if index < 0 || index >= len(it.list) {
		return nil, false
	}
	return it.list[index], true
}

func (it Items) ByID(id string) (SurveyItem, bool) {
	i, ok := it.byID[id]
	if !ok {
		return nil, false
	}
	return it.list[i], true
}

// All returns the items in index order.
func (it Items) All() []SurveyItem {
	return append([]SurveyItem(nil), it.list...)
}

func (it Items) ItemCount() (n int) {
	for _, item := range it.list {
		n += item.ItemCount()
	}
	return
}

func (it Items) PromptCount() (n int) {
	for _, item := range it.list {
		n += item.PromptCount()
	}
	return
}

func (it Items) toJSON() []map[string]any {
	out := make([]map[string]any, len(it.list))
	for i, item := range it.list {
		out[i] = item.toJSON()
	}
	return out
}

// Termination describes the question that ends a repeatable set.
type Termination struct {
	Question    string
	TrueLabel   string
	FalseLabel  string
	SkipEnabled bool
	SkipLabel   string
}

// RepeatableSet groups items that the user answers once per iteration.
type RepeatableSet struct {
	itemBase
	termination Termination
	items       Items
}

// NewRepeatableSet builds a set around children already bound to it by
// their ParentID. Unless allowNested, no child can be a set itself.
func NewRepeatableSet(p ItemParams, t Termination, children []SurveyItem, allowNested bool) (*RepeatableSet, error) {
	base, err := newItemBase(p)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.TrimSpace(t.Question) == "":
		return nil, Errorf(CodeMissingField, "repeatable set %q has no termination question", p.ID)
	case strings.TrimSpace(t.TrueLabel) == "":
		return nil, Errorf(CodeMissingField, "repeatable set %q has no termination true label", p.ID)
	case strings.TrimSpace(t.FalseLabel) == "":
		return nil, Errorf(CodeMissingField, "repeatable set %q has no termination false label", p.ID)
	case t.SkipEnabled && strings.TrimSpace(t.SkipLabel) == "":
		return nil, Errorf(CodeMissingField, "repeatable set %q enables skipping without a skip label", p.ID)
	}
	for _, child := range children {
		if child.ParentID() != p.ID {
			return nil, Errorf(CodeInvalidValue, "item %q does not belong to repeatable set %q", child.ID(), p.ID)
		}
		if _, nested := child.(*RepeatableSet); nested && !allowNested {
			return nil, Errorf(CodeNestedRepeatable, "repeatable set %q contains repeatable set %q", p.ID, child.ID())
		}
	}
	items, err := NewItems(children)
	if err != nil {
		return nil, Wrap(CodeEmptyContent, err, "repeatable set %q", p.ID)
	}
	return &RepeatableSet{itemBase: base, termination: t, items: items}, nil
}

func (s *RepeatableSet) Termination() Termination { return s.termination }
func (s *RepeatableSet) Items() Items             { return s.items }
func (s *RepeatableSet) Type() ItemType           { return RepeatableSetItem }
func (s *RepeatableSet) ItemCount() int           { return 1 + s.items.ItemCount() }
func (s *RepeatableSet) PromptCount() int         { return s.items.PromptCount() }

func (s *RepeatableSet) ValidateCondition(p condition.Pair) error {
	return noConditions(s, "repeatable set", p)
}

func (s *RepeatableSet) toJSON() map[string]any {
	out := s.baseJSON()
	out["termination_question"] = s.termination.Question
	out["termination_true_label"] = s.termination.TrueLabel
	out["termination_false_label"] = s.termination.FalseLabel
	out["termination_skip_enabled"] = s.termination.SkipEnabled
	if s.termination.SkipEnabled {
		out["termination_skip_label"] = s.termination.SkipLabel
	}
	out["prompts"] = s.items.toJSON()
	return out
}

// ItemToJSON projects any survey item.
func ItemToJSON(item SurveyItem) map[string]any {
	return item.toJSON()
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
