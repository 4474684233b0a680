package model

import "time"

// CampaignRecord is a stored campaign definition. The object graph is
// rebuilt from XML on demand.
type CampaignRecord struct {
	ID           int          `json:"-"`
	URN          string       `json:"campaign_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	XML          string       `json:"-"`
	RunningState RunningState `json:"running_state"`
	PrivacyState PrivacyState `json:"privacy_state"`
	CreatedAt    time.Time    `json:"creation_timestamp"`
}

// RoleGrant assigns a campaign role to a user.
type RoleGrant struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// SubmissionRecord is a stored survey response, already reconciled.
type SubmissionRecord struct {
	ID             int            `json:"-"`
	SurveyKey      string         `json:"survey_key"`
	CampaignURN    string         `json:"campaign_id"`
	SurveyID       string         `json:"survey_id"`
	Username       string         `json:"username"`
	Client         string         `json:"client"`
	Time           int64          `json:"time"`
	Timezone       string         `json:"timezone"`
	LocationStatus LocationStatus `json:"location_status"`
	PrivacyState   string         `json:"privacy_state"`
	UploadedAt     time.Time      `json:"upload_timestamp"`
	Data           map[string]any `json:"data"`
}
