package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Provider  string
	Time      int64
	Timezone  string
}

type LaunchContext struct {
	LaunchTime     int64
	LaunchTimezone string
	ActiveTriggers []string
}

type SurveyResponseParams struct {
	SurveyKey      uuid.UUID
	Username       string
	CampaignID     string
	Client         string
	Date           time.Time
	Time           int64
	Timezone       *time.Location
	LaunchContext  LaunchContext
	LocationStatus LocationStatus
	Location       *Location
	PrivacyState   ResponsePrivacyState
	Survey         *Survey
	// Responses maps top-level item indexes to their responses.
	Responses map[int]Response
}

// SurveyResponse is one reconciled submission of a survey.
type SurveyResponse struct {
	surveyKey      uuid.UUID
	username       string
	campaignID     string
	client         string
	date           time.Time
	time           int64
	timezone       *time.Location
	launchContext  LaunchContext
	locationStatus LocationStatus
	location       *Location
	privacyState   ResponsePrivacyState
	survey         *Survey
	responses      map[int]Response
}

func NewSurveyResponse(p SurveyResponseParams) (*SurveyResponse, error) {
	switch {
	case p.Survey == nil:
		return nil, Errorf(CodeResponseShape, "survey response has no survey")
	case strings.TrimSpace(p.Username) == "":
		return nil, Errorf(CodeResponseShape, "survey response has no username")
	case strings.TrimSpace(p.CampaignID) == "":
		return nil, Errorf(CodeResponseShape, "survey response has no campaign id")
	case strings.TrimSpace(p.Client) == "":
		return nil, Errorf(CodeResponseShape, "survey response has no client")
	case p.Timezone == nil:
		return nil, Errorf(CodeResponseShape, "survey response has no timezone")
	case p.Location == nil && p.LocationStatus != LocationUnavailable:
		return nil, Errorf(CodeResponseShape, "location status %s requires a location", p.LocationStatus)
	}
	if _, err := ParseLocationStatus(string(p.LocationStatus)); err != nil {
		return nil, err
	}
	privacy := p.PrivacyState
	if privacy == "" {
		privacy = ResponsePrivate
	}
	if _, err := ParseResponsePrivacyState(string(privacy)); err != nil {
		return nil, err
	}

	responses := make(map[int]Response, len(p.Responses))
	for index, resp := range p.Responses {
		item, ok := p.Survey.items.At(index)
		if !ok || item.ID() != resp.Item().ID() {
			return nil, Errorf(CodeResponseShape, "response for %q does not match survey %q at index %d",
				resp.Item().ID(), p.Survey.ID(), index)
		}
		responses[index] = resp
	}

	key := p.SurveyKey
	if key == uuid.Nil {
		key = uuid.New()
	}
	var location *Location
	if p.Location != nil {
		l := *p.Location
		location = &l
	}
	launch := p.LaunchContext
	launch.ActiveTriggers = append([]string(nil), launch.ActiveTriggers...)

	return &SurveyResponse{
		surveyKey:      key,
		username:       p.Username,
		campaignID:     p.CampaignID,
		client:         p.Client,
		date:           p.Date,
		time:           p.Time,
		timezone:       p.Timezone,
		launchContext:  launch,
		locationStatus: p.LocationStatus,
		location:       location,
		privacyState:   privacy,
		survey:         p.Survey,
		responses:      responses,
	}, nil
}

func (r *SurveyResponse) SurveyKey() uuid.UUID               { return r.surveyKey }
func (r *SurveyResponse) Username() string                   { return r.username }
func (r *SurveyResponse) CampaignID() string                 { return r.campaignID }
func (r *SurveyResponse) Client() string                     { return r.client }
func (r *SurveyResponse) Date() time.Time                    { return r.date }
func (r *SurveyResponse) Time() int64                        { return r.time }
func (r *SurveyResponse) Timezone() *time.Location           { return r.timezone }
func (r *SurveyResponse) LocationStatus() LocationStatus     { return r.locationStatus }
func (r *SurveyResponse) PrivacyState() ResponsePrivacyState { return r.privacyState }
func (r *SurveyResponse) Survey() *Survey                    { return r.survey }

func (r *SurveyResponse) LaunchContext() LaunchContext {
	l := r.launchContext
	l.ActiveTriggers = append([]string(nil), l.ActiveTriggers...)
	return l
}

func (r *SurveyResponse) Location() (Location, bool) {
	if r.location == nil {
		return Location{}, false
	}
	return *r.location, true
}

// Responses returns the top-level responses in item order.
func (r *SurveyResponse) Responses() []Response {
	out := make([]Response, 0, len(r.responses))
	for _, index := range sortedKeys(r.responses) {
		out = append(out, r.responses[index])
	}
	return out
}

// Response returns the response recorded for the top-level item at index.
func (r *SurveyResponse) Response(index int) (Response, bool) {
	resp, ok := r.responses[index]
	return resp, ok
}
