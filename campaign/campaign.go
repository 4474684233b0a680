// Package campaign builds validated campaigns out of their XML definitions.
package campaign

import (
	"errors"
	"time"

	"github.com/mbolis/quick-campaign/condition"
	"github.com/mbolis/quick-campaign/log"
	"github.com/mbolis/quick-campaign/model"
	"github.com/mbolis/quick-campaign/xmldoc"
)

// ConditionParser extracts the comparisons of a condition.
type ConditionParser interface {
	Parse(src string) (condition.Result, error)
}

type sharedParser struct{}

func (sharedParser) Parse(src string) (condition.Result, error) {
	return condition.Parse(src)
}

type options struct {
	description  string
	runningState model.RunningState
	privacyState model.PrivacyState
	createdAt    time.Time
	roles        map[string][]model.Role
	classes      []string
	allowNested  bool
	parser       ConditionParser
}

type Option func(*options)

func WithDescription(description string) Option {
	return func(o *options) { o.description = description }
}

func WithRunningState(state model.RunningState) Option {
	return func(o *options) { o.runningState = state }
}

func WithPrivacyState(state model.PrivacyState) Option {
	return func(o *options) { o.privacyState = state }
}

func WithCreationTime(t time.Time) Option {
	return func(o *options) { o.createdAt = t }
}

// WithUserRoles grants roles to username. Grants add up.
func WithUserRoles(username string, roles ...model.Role) Option {
	return func(o *options) {
		if o.roles == nil {
			o.roles = map[string][]model.Role{}
		}
		o.roles[username] = append(o.roles[username], roles...)
	}
}

// WithClasses associates the campaign with classes (groups of users).
func WithClasses(classes ...string) Option {
	return func(o *options) { o.classes = append(o.classes, classes...) }
}

// AllowNestedRepeatableSets lifts the one-level limit on repeatable sets.
func AllowNestedRepeatableSets() Option {
	return func(o *options) { o.allowNested = true }
}

// WithConditionParser replaces the process-wide shared condition parser.
func WithConditionParser(p ConditionParser) Option {
	return func(o *options) { o.parser = p }
}

// Parse validates a campaign definition and builds it. The first problem
// found is returned as a *model.Error.
func Parse(xml string, opts ...Option) (*model.Campaign, error) {
	o := options{
		runningState: model.Running,
		privacyState: model.Private,
		parser:       sharedParser{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.createdAt.IsZero() {
		o.createdAt = time.Now()
	}

	b := builder{options: o}
	c, err := b.campaign(xml)
	if err != nil {
		log.Debugf("campaign.parse: %s", err)
		return nil, err
	}
	log.Debugf("campaign.parse: built %s with %d surveys", c.ID(), len(c.Surveys()))
	return c, nil
}

// Validate checks a campaign definition and returns its id and name.
func Validate(xml string) (id, name string, err error) {
	c, err := Parse(xml)
	if err != nil {
		return "", "", err
	}
	return c.ID(), c.Name(), nil
}

type builder struct {
	options
}

func (b *builder) campaign(xml string) (*model.Campaign, error) {
	root, err := xmldoc.ParseString(xml)
	if err != nil {
		return nil, model.Wrap(model.CodeMalformedDocument, err, "campaign definition is not well formed XML")
	}
	if root.Name != "campaign" {
		return nil, model.Errorf(model.CodeMalformedDocument, "root element is <%s>, expected <campaign>", root.Name)
	}

	id, err := root.OneText("campaignUrn")
	if err != nil {
		return nil, fieldError(err, "campaign")
	}
	if !model.IsValidURN(id) {
		return nil, model.Errorf(model.CodeInvalidID, "campaign id is not a valid URN: %q", id)
	}
	name, err := root.OneText("campaignName")
	if err != nil {
		return nil, fieldError(err, "campaign "+id)
	}
	serverURL, _, err := root.OptionalText("serverUrl")
	if err != nil {
		return nil, fieldError(err, "campaign "+id)
	}
	iconURL, _, err := root.OptionalText("iconUrl")
	if err != nil {
		return nil, fieldError(err, "campaign "+id)
	}
	authoredBy, _, err := root.OptionalText("authoredBy")
	if err != nil {
		return nil, fieldError(err, "campaign "+id)
	}

	surveysEl, err := root.One("surveys")
	if err != nil {
		return nil, fieldError(err, "campaign "+id)
	}
	surveyEls := surveysEl.All("survey")
	if len(surveyEls) == 0 {
		return nil, model.Errorf(model.CodeEmptyContent, "campaign %s has no surveys", id)
	}
	surveys := make([]*model.Survey, 0, len(surveyEls))
	seen := map[string]bool{}
	for _, el := range surveyEls {
		s, err := b.survey(el)
		if err != nil {
			return nil, err
		}
		if seen[s.ID()] {
			return nil, model.Errorf(model.CodeDuplicateSurvey, "campaign %s has two surveys with id %q", id, s.ID())
		}
		seen[s.ID()] = true
		surveys = append(surveys, s)
	}

	return model.NewCampaign(model.CampaignParams{
		ID:           id,
		Name:         name,
		Description:  b.description,
		ServerURL:    serverURL,
		IconURL:      iconURL,
		AuthoredBy:   authoredBy,
		RunningState: b.runningState,
		PrivacyState: b.privacyState,
		CreatedAt:    b.createdAt,
		XML:          xml,
		Surveys:      surveys,
		Roles:        b.roles,
		Classes:      b.classes,
	})
}

// fieldError turns a lookup failure into a domain error.
func fieldError(err error, where string) error {
	var cardErr *xmldoc.CardinalityError
	if errors.As(err, &cardErr) {
		code := model.CodeDuplicateField
		if cardErr.Found == 0 {
			code = model.CodeMissingField
		}
		return model.Wrap(code, err, "%s", where)
	}
	return model.Wrap(model.CodeMalformedDocument, err, "%s", where)
}

// boolField reads a child that must hold exactly "true" or "false".
func boolField(el *xmldoc.Element, name, where string) (bool, error) {
	text, err := el.OneText(name)
	if err != nil {
		return false, fieldError(err, where)
	}
	v, ok := model.ParseBool(text)
	if !ok {
		return false, model.Errorf(model.CodeInvalidValue, "%s: <%s> must be true or false, found %q", where, name, text)
	}
	return v, nil
}

func optionalBoolField(el *xmldoc.Element, name, where string) (*bool, error) {
	text, ok, err := el.OptionalText(name)
	if err != nil {
		return nil, fieldError(err, where)
	}
	if !ok {
		return nil, nil
	}
	v, ok := model.ParseBool(text)
	if !ok {
		return nil, model.Errorf(model.CodeInvalidValue, "%s: <%s> must be true or false, found %q", where, name, text)
	}
	return &v, nil
}
