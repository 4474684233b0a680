package model

import (
	"sort"
	"strings"
	"time"
)

type CampaignParams struct {
	ID           string
	Name         string
	Description  string
	ServerURL    string
	IconURL      string
	AuthoredBy   string
	RunningState RunningState
	PrivacyState PrivacyState
	CreatedAt    time.Time
	XML          string
	Surveys      []*Survey
	// Roles maps usernames to the roles they hold in the campaign.
	Roles   map[string][]Role
	Classes []string
}

// Campaign is a validated campaign definition. It never changes once built.
type Campaign struct {
	id           string
	name         string
	description  string
	serverURL    string
	iconURL      string
	authoredBy   string
	runningState RunningState
	privacyState PrivacyState
	createdAt    time.Time
	xml          string
	surveys      []*Survey
	surveyIndex  map[string]int
	roles        map[string]map[Role]bool
	classes      []string
}

func NewCampaign(p CampaignParams) (*Campaign, error) {
	switch {
	case !IsValidURN(p.ID):
		return nil, Errorf(CodeInvalidID, "invalid campaign id: %q", p.ID)
	case strings.TrimSpace(p.Name) == "":
		return nil, Errorf(CodeMissingField, "campaign %q has no name", p.ID)
	case len(p.Name) > MaxLength:
		return nil, Errorf(CodeTooLong, "campaign name is longer than %d characters", MaxLength)
	case p.ServerURL != "" && !IsValidURL(p.ServerURL):
		return nil, Errorf(CodeInvalidURL, "invalid server URL: %q", p.ServerURL)
	case p.IconURL != "" && !IsValidURL(p.IconURL):
		return nil, Errorf(CodeInvalidURL, "invalid icon URL: %q", p.IconURL)
	case len(p.Surveys) == 0:
		return nil, Errorf(CodeEmptyContent, "campaign %q has no surveys", p.ID)
	}
	if _, err := ParseRunningState(string(p.RunningState)); err != nil {
		return nil, err
	}
	if _, err := ParsePrivacyState(string(p.PrivacyState)); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(p.Surveys))
	for i, s := range p.Surveys {
		if _, ok := index[s.ID()]; ok {
			return nil, Errorf(CodeDuplicateSurvey, "duplicate survey id: %q", s.ID())
		}
		index[s.ID()] = i
	}

	roles := make(map[string]map[Role]bool, len(p.Roles))
	for username, userRoles := range p.Roles {
		if strings.TrimSpace(username) == "" {
			return nil, Errorf(CodeInvalidRole, "role granted to a blank username")
		}
		for _, role := range userRoles {
			if _, err := ParseRole(string(role)); err != nil {
				return nil, err
			}
			if roles[username] == nil {
				roles[username] = map[Role]bool{}
			}
			roles[username][role] = true
		}
	}

	return &Campaign{
		id:           p.ID,
		name:         p.Name,
		description:  p.Description,
		serverURL:    p.ServerURL,
		iconURL:      p.IconURL,
		authoredBy:   p.AuthoredBy,
		runningState: p.RunningState,
		privacyState: p.PrivacyState,
		createdAt:    p.CreatedAt,
		xml:          p.XML,
		surveys:      append([]*Survey(nil), p.Surveys...),
		surveyIndex:  index,
		roles:        roles,
		classes:      append([]string(nil), p.Classes...),
	}, nil
}

func (c *Campaign) ID() string                 { return c.id }
func (c *Campaign) Name() string               { return c.name }
func (c *Campaign) Description() string        { return c.description }
func (c *Campaign) ServerURL() string          { return c.serverURL }
func (c *Campaign) IconURL() string            { return c.iconURL }
func (c *Campaign) AuthoredBy() string         { return c.authoredBy }
func (c *Campaign) RunningState() RunningState { return c.runningState }
func (c *Campaign) PrivacyState() PrivacyState { return c.privacyState }
func (c *Campaign) CreatedAt() time.Time       { return c.createdAt }
func (c *Campaign) XML() string                { return c.xml }

// Surveys returns the surveys in definition order.
func (c *Campaign) Surveys() []*Survey {
	return append([]*Survey(nil), c.surveys...)
}

func (c *Campaign) Survey(id string) (*Survey, bool) {
	i, ok := c.surveyIndex[id]
	if !ok {
		return nil, false
	}
	return c.surveys[i], true
}

func (c *Campaign) Classes() []string {
	return append([]string(nil), c.classes...)
}

// Roles lists the roles username holds, in Roles order.
func (c *Campaign) Roles(username string) []Role {
	var out []Role
	for _, role := range Roles {
		if c.roles[username][role] {
			out = append(out, role)
		}
	}
	return out
}

func (c *Campaign) HasRole(username string, role Role) bool {
	return c.roles[username][role]
}

// Users lists, sorted, the users holding role.
func (c *Campaign) Users(role Role) []string {
	var out []string
	for username, roles := range c.roles {
		if roles[role] {
			out = append(out, username)
		}
	}
	sort.Strings(out)
	return out
}
