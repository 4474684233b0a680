package model

import "strings"

type SurveyParams struct {
	ID          string
	Title       string
	Description string
	IntroText   string
	SubmitText  string
	ShowSummary bool
	// EditSummary is required when ShowSummary is set.
	EditSummary *bool
	SummaryText string
	Anytime     bool
	Items       []SurveyItem
}

// Survey is an ordered list of survey items with its presentation texts.
type Survey struct {
	id          string
	title       string
	description string
	introText   string
	submitText  string
	showSummary bool
	editSummary bool
	summaryText string
	anytime     bool
	items       Items
}

func NewSurvey(p SurveyParams) (*Survey, error) {
	switch {
	case !IsValidItemID(p.ID):
		return nil, Errorf(CodeInvalidID, "invalid survey id: %q", p.ID)
	case strings.TrimSpace(p.Title) == "":
		return nil, Errorf(CodeMissingField, "survey %q has no title", p.ID)
	case strings.TrimSpace(p.SubmitText) == "":
		return nil, Errorf(CodeMissingField, "survey %q has no submit text", p.ID)
	case p.ShowSummary && p.EditSummary == nil:
		return nil, Errorf(CodeMissingField, "survey %q shows a summary but does not say whether it is editable", p.ID)
	case p.ShowSummary && strings.TrimSpace(p.SummaryText) == "":
		return nil, Errorf(CodeMissingField, "survey %q shows a summary but has no summary text", p.ID)
	}
	for _, item := range p.Items {
		if item.ParentID() != "" {
			return nil, Errorf(CodeInvalidValue, "item %q of survey %q belongs to %q", item.ID(), p.ID, item.ParentID())
		}
	}
	items, err := NewItems(p.Items)
	if err != nil {
		return nil, Wrap(CodeEmptyContent, err, "survey %q", p.ID)
	}

	s := &Survey{
		id:          p.ID,
		title:       p.Title,
		description: p.Description,
		introText:   p.IntroText,
		submitText:  p.SubmitText,
		showSummary: p.ShowSummary,
		summaryText: p.SummaryText,
		anytime:     p.Anytime,
		items:       items,
	}
	if p.EditSummary != nil {
		s.editSummary = *p.EditSummary
	}
	return s, nil
}

func (s *Survey) ID() string          { return s.id }
func (s *Survey) Title() string       { return s.title }
func (s *Survey) Description() string { return s.description }
func (s *Survey) IntroText() string   { return s.introText }
func (s *Survey) SubmitText() string  { return s.submitText }
func (s *Survey) ShowSummary() bool   { return s.showSummary }
func (s *Survey) EditSummary() bool   { return s.editSummary }
func (s *Survey) SummaryText() string { return s.summaryText }
func (s *Survey) Anytime() bool       { return s.anytime }
func (s *Survey) Items() Items        { return s.items }
func (s *Survey) ItemCount() int      { return s.items.ItemCount() }
func (s *Survey) PromptCount() int    { return s.items.PromptCount() }

// Find looks an item up by id at the top level and inside repeatable sets.
func (s *Survey) Find(id string) (SurveyItem, bool) {
	if item, ok := s.items.ByID(id); ok {
		return item, true
	}
	for _, item := range s.items.list {
		if set, ok := item.(*RepeatableSet); ok {
			if child, ok := set.items.ByID(id); ok {
				return child, true
			}
		}
	}
	return nil, false
}

// Parent resolves the repeatable set enclosing item, if any.
func (s *Survey) Parent(item SurveyItem) (*RepeatableSet, bool) {
	if item.ParentID() == "" {
		return nil, false
	}
	parent, ok := s.items.ByID(item.ParentID())
	if !ok {
		return nil, false
	}
	set, ok := parent.(*RepeatableSet)
	return set, ok
}
