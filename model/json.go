package model

import (
	"strings"
	"time"
)

// CampaignOutput selects the optional parts of a campaign projection.
type CampaignOutput struct {
	WithID      bool
	WithClasses bool
	WithRoles   bool
	WithXML     bool
	WithSurveys bool
}

var (
	ShortCampaignOutput = CampaignOutput{WithID: true}
	LongCampaignOutput  = CampaignOutput{WithID: true, WithClasses: true, WithRoles: true, WithSurveys: true}
)

const timestampFormat = "2006-01-02 15:04:05"

func (c *Campaign) ToJSON(o CampaignOutput) map[string]any {
	out := map[string]any{
		"name":               c.name,
		"running_state":      c.runningState,
		"privacy_state":      c.privacyState,
		"creation_timestamp": c.createdAt.Format(timestampFormat),
	}
	if o.WithID {
		out["campaign_id"] = c.id
	}
	if c.description != "" {
		out["description"] = c.description
	}
	if c.serverURL != "" {
		out["server_url"] = c.serverURL
	}
	if c.iconURL != "" {
		out["icon_url"] = c.iconURL
	}
	if c.authoredBy != "" {
		out["authored_by"] = c.authoredBy
	}
	if o.WithClasses {
		out["classes"] = c.Classes()
	}
	if o.WithRoles {
		roles := make(map[string]any, len(Roles))
		for _, role := range Roles {
			users := c.Users(role)
			if users == nil {
				users = []string{}
			}
			roles[strings.ToLower(string(role))] = users
		}
		out["user_role_campaign"] = roles
	}
	if o.WithXML {
		out["xml"] = c.xml
	}
	if o.WithSurveys {
		surveys := make([]map[string]any, len(c.surveys))
		for i, s := range c.surveys {
			surveys[i] = s.ToJSON(true)
		}
		out["surveys"] = surveys
	}
	return out
}

func (s *Survey) ToJSON(withItems bool) map[string]any {
	out := map[string]any{
		"id":           s.id,
		"title":        s.title,
		"submit_text":  s.submitText,
		"show_summary": s.showSummary,
		"anytime":      s.anytime,
	}
	if s.description != "" {
		out["description"] = s.description
	}
	if s.introText != "" {
		out["intro_text"] = s.introText
	}
	if s.showSummary {
		out["edit_summary"] = s.editSummary
		out["summary_text"] = s.summaryText
	}
	if withItems {
		out["prompts"] = s.items.toJSON()
	}
	return out
}

func (r *SurveyResponse) ToJSON(withID bool) map[string]any {
	out := map[string]any{
		"username":        r.username,
		"campaign_id":     r.campaignID,
		"client":          r.client,
		"survey_id":       r.survey.ID(),
		"time":            r.time,
		"timezone":        r.timezone.String(),
		"location_status": r.locationStatus,
		"privacy_state":   r.privacyState,
		"survey_launch_context": map[string]any{
			"launch_time":     r.launchContext.LaunchTime,
			"launch_timezone": r.launchContext.LaunchTimezone,
			"active_triggers": r.LaunchContext().ActiveTriggers,
		},
	}
	if withID {
		out["survey_key"] = r.surveyKey.String()
	}
	if !r.date.IsZero() {
		out["date"] = r.date.In(r.timezone).Format(timestampFormat)
	}
	if r.location != nil {
		out["location"] = map[string]any{
			"latitude":  r.location.Latitude,
			"longitude": r.location.Longitude,
			"accuracy":  r.location.Accuracy,
			"provider":  r.location.Provider,
			"time":      r.location.Time,
			"timezone":  r.location.Timezone,
		}
	}
	responses := make([]map[string]any, 0, len(r.responses))
	for _, resp := range r.Responses() {
		responses = append(responses, resp.toJSON(true))
	}
	out["responses"] = responses
	return out
}

// FormatTime renders timestamps the way projections do.
func FormatTime(t time.Time) string {
	return t.Format(timestampFormat)
}
