package submission

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-campaign/campaign"
	"github.com/mbolis/quick-campaign/model"
)

const definition = `<campaign>
  <campaignUrn>urn:campaign:test:diary</campaignUrn>
  <campaignName>Diary</campaignName>
  <surveys>
    <survey>
      <id>daily</id>
      <title>Daily</title>
      <submitText>Done</submitText>
      <showSummary>false</showSummary>
      <anytime>true</anytime>
      <contentList>
        <message>
          <id>intro</id>
          <messageText>Welcome back</messageText>
        </message>
        <prompt>
          <id>p1</id>
          <promptText>Hours slept?</promptText>
          <skippable>false</skippable>
          <displayType>count</displayType>
          <displayLabel>sleep</displayLabel>
          <promptType>number</promptType>
          <properties>
            <property><key>min</key><label>0</label></property>
            <property><key>max</key><label>12</label></property>
          </properties>
        </prompt>
        <repeatableSet>
          <id>rs1</id>
          <terminationQuestion>Another meal?</terminationQuestion>
          <terminationTrueLabel>Yes</terminationTrueLabel>
          <terminationFalseLabel>No</terminationFalseLabel>
          <terminationSkipEnabled>false</terminationSkipEnabled>
          <prompts>
            <prompt>
              <id>p2</id>
              <promptText>What did you eat?</promptText>
              <skippable>true</skippable>
              <skipLabel>Skip</skipLabel>
              <displayType>category</displayType>
              <displayLabel>meal</displayLabel>
              <promptType>single_choice</promptType>
              <properties>
                <property><key>0</key><label>fruit</label></property>
                <property><key>1</key><label>pasta</label></property>
              </properties>
            </prompt>
          </prompts>
        </repeatableSet>
      </contentList>
    </survey>
  </surveys>
</campaign>`

func testCampaign(t *testing.T) *model.Campaign {
	t.Helper()
	c, err := campaign.Parse(definition)
	require.NoError(t, err)
	return c
}

// payload builds a survey response around the given responses array.
func payload(responses string) []byte {
	return []byte(`{
  "survey_key": "6f1c3a52-9f0e-4b8e-a2a4-6d1f7d8e0c11",
  "time": 1325412000000,
  "timezone": "UTC",
  "survey_id": "daily",
  "survey_launch_context": {"launch_time": 1325411990000, "active_triggers": ["t1"]},
  "location_status": "valid",
  "location": {"latitude": 45.4, "longitude": 9.2, "accuracy": 12.5, "provider": "gps", "time": 1325411995000, "timezone": "UTC"},
  "responses": ` + responses + `
}`)
}

func requireCode(t *testing.T, err error, code model.Code) {
	t.Helper()
	require.Error(t, err)
	e, ok := model.AsError(err)
	require.True(t, ok, "not a domain error: %v", err)
	assert.Equal(t, code, e.Code, e.Error())
}

func TestReconcile(t *testing.T) {
	c := testCampaign(t)

	sr, err := Reconcile(c, "alice", "android", payload(`[
		{"prompt_id": "p1", "value": 7},
		{"repeatable_set_id": "rs1", "not_displayed": false, "responses": [
			[{"prompt_id": "p2", "value": 1}],
			[{"prompt_id": "p2", "value": "SKIPPED"}]
		]}
	]`))
	require.NoError(t, err)

	assert.Equal(t, "6f1c3a52-9f0e-4b8e-a2a4-6d1f7d8e0c11", sr.SurveyKey().String())
	assert.Equal(t, "alice", sr.Username())
	assert.Equal(t, "urn:campaign:test:diary", sr.CampaignID())
	assert.Equal(t, "daily", sr.Survey().ID())
	assert.Equal(t, model.LocationValid, sr.LocationStatus())
	assert.Equal(t, model.ResponsePrivate, sr.PrivacyState())
	assert.Equal(t, time.Date(2012, 1, 1, 10, 0, 0, 0, time.UTC), sr.Date().UTC())
	assert.Equal(t, []string{"t1"}, sr.LaunchContext().ActiveTriggers)
	loc, ok := sr.Location()
	require.True(t, ok)
	assert.Equal(t, "gps", loc.Provider)

	responses := sr.Responses()
	require.Len(t, responses, 2)

	p1 := responses[0].(*model.PromptResponse)
	assert.Equal(t, int64(7), p1.Value())
	assert.Equal(t, 0, p1.Iteration())

	rs := responses[1].(*model.RepeatableSetResponse)
	require.Equal(t, 2, rs.Iterations())
	first := rs.Iteration(1)[0].(*model.PromptResponse)
	assert.Equal(t, 1, first.Value())
	assert.Equal(t, 1, first.Iteration())
	second := rs.Iteration(2)[0].(*model.PromptResponse)
	assert.Equal(t, model.Skipped, second.NoResponse())
	assert.Equal(t, 2, second.Iteration())

	want := []map[string]any{
		{"prompt_id": "p1", "value": int64(7)},
		{
			"repeatable_set_id": "rs1",
			"skipped":           false,
			"not_displayed":     false,
			"responses": [][]map[string]any{
				{{"prompt_id": "p2", "value": 1}},
				{{"prompt_id": "p2", "value": "SKIPPED"}},
			},
		},
	}
	if diff := cmp.Diff(want, sr.ToJSON(true)["responses"]); diff != "" {
		t.Errorf("responses mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileCompleteness(t *testing.T) {
	c := testCampaign(t)

	_, err := Reconcile(c, "alice", "android", payload(`[{"prompt_id": "p1", "value": 3}]`))
	requireCode(t, err, model.CodeResponseIncomplete)
	assert.Contains(t, err.Error(), `"rs1"`)

	sr, err := Reconcile(c, "alice", "android", payload(`[
		{"prompt_id": "p1", "value": 3},
		{"repeatable_set_id": "rs1", "not_displayed": true}
	]`))
	require.NoError(t, err)
	rs, ok := sr.Response(2)
	require.True(t, ok)
	assert.Equal(t, model.NotDisplayed, rs.NoResponse())
	assert.Equal(t, 0, rs.(*model.RepeatableSetResponse).Iterations())

	_, err = Reconcile(c, "alice", "android", payload(`[
		{"prompt_id": "p1", "value": 3},
		{"repeatable_set_id": "rs1", "not_displayed": false, "responses": [[]]}
	]`))
	requireCode(t, err, model.CodeResponseIncomplete)
	assert.Contains(t, err.Error(), `"p2"`)
}

func TestReconcileItemErrors(t *testing.T) {
	tests := []struct {
		name      string
		responses string
		code      model.Code
	}{
		{"unknown prompt", `[{"prompt_id": "nope", "value": 1}]`, model.CodeResponseUnknownID},
		{"set answered as prompt", `[{"prompt_id": "rs1", "value": 1}]`, model.CodeResponseWrongKind},
		{"prompt answered as set", `[{"repeatable_set_id": "p1", "not_displayed": true}]`, model.CodeResponseWrongKind},
		{"message answered", `[{"prompt_id": "intro", "value": 1}]`, model.CodeResponseWrongKind},
		{"prompt of a set at top level", `[{"prompt_id": "p2", "value": 1}]`, model.CodeResponseUnknownID},
		{"out of range", `[{"prompt_id": "p1", "value": 13}]`, model.CodeResponseType},
		{"not a number", `[{"prompt_id": "p1", "value": "lots"}]`, model.CodeResponseType},
		{"skipped but not skippable", `[{"prompt_id": "p1", "value": "SKIPPED"}]`, model.CodeResponseSkipped},
		{"no value", `[{"prompt_id": "p1"}]`, model.CodeResponseShape},
		{"answered twice", `[{"prompt_id": "p1", "value": 1}, {"prompt_id": "p1", "value": 2}]`, model.CodeResponseShape},
		{"neither kind", `[{"value": 1}]`, model.CodeResponseShape},
		{"not an object", `[42]`, model.CodeResponseShape},
		{"set without not_displayed", `[{"prompt_id": "p1", "value": 1}, {"repeatable_set_id": "rs1", "responses": []}]`, model.CodeResponseShape},
		{"set without responses", `[{"prompt_id": "p1", "value": 1}, {"repeatable_set_id": "rs1", "not_displayed": false}]`, model.CodeResponseShape},
		{"iteration not an array", `[{"prompt_id": "p1", "value": 1}, {"repeatable_set_id": "rs1", "not_displayed": false, "responses": [{"prompt_id": "p2", "value": 1}]}]`, model.CodeResponseShape},
		{"unknown choice in iteration", `[{"prompt_id": "p1", "value": 1}, {"repeatable_set_id": "rs1", "not_displayed": false, "responses": [[{"prompt_id": "p2", "value": 9}]]}]`, model.CodeResponseType},
	}
	c := testCampaign(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(c, "alice", "android", payload(tt.responses))
			requireCode(t, err, tt.code)
		})
	}
}

func TestReconcileEnvelope(t *testing.T) {
	c := testCampaign(t)
	answers := `"responses": [{"prompt_id": "p1", "value": 1}, {"repeatable_set_id": "rs1", "not_displayed": true}]`
	launch := `"survey_launch_context": {"launch_time": 1}`

	tests := []struct {
		name string
		body string
		code model.Code
	}{
		{"ok without location", `{"time": 1, "timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "UNAVAILABLE", ` + answers + `}`, ""},
		{"not json", `{"time": `, model.CodeResponseShape},
		{"missing time", `{"timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "UNAVAILABLE", ` + answers + `}`, model.CodeResponseShape},
		{"missing launch time", `{"time": 1, "timezone": "UTC", "survey_id": "daily", "survey_launch_context": {}, "location_status": "UNAVAILABLE", ` + answers + `}`, model.CodeResponseShape},
		{"missing responses", `{"time": 1, "timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "UNAVAILABLE"}`, model.CodeResponseShape},
		{"bad survey key", `{"survey_key": "abc", "time": 1, "timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "UNAVAILABLE", ` + answers + `}`, model.CodeResponseShape},
		{"unknown survey", `{"time": 1, "timezone": "UTC", "survey_id": "weekly", ` + launch + `, "location_status": "UNAVAILABLE", ` + answers + `}`, model.CodeResponseUnknownID},
		{"unknown timezone", `{"time": 1, "timezone": "Mars/Olympus", "survey_id": "daily", ` + launch + `, "location_status": "UNAVAILABLE", ` + answers + `}`, model.CodeInvalidValue},
		{"unknown location status", `{"time": 1, "timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "GPS_OFF", ` + answers + `}`, model.CodeUnknownEnum},
		{"location required", `{"time": 1, "timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "VALID", ` + answers + `}`, model.CodeResponseShape},
		{"location out of range", `{"time": 1, "timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "VALID", "location": {"latitude": 91, "longitude": 0, "accuracy": 1, "provider": "gps"}, ` + answers + `}`, model.CodeResponseShape},
		{"unknown privacy state", `{"time": 1, "timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "UNAVAILABLE", "privacy_state": "PUBLIC", ` + answers + `}`, model.CodeUnknownEnum},
		{"bad date", `{"date": "yesterday", "time": 1, "timezone": "UTC", "survey_id": "daily", ` + launch + `, "location_status": "UNAVAILABLE", ` + answers + `}`, model.CodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(c, "alice", "android", []byte(tt.body))
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			requireCode(t, err, tt.code)
		})
	}
}

func TestReconcileExplicitDateAndPrivacy(t *testing.T) {
	c := testCampaign(t)
	body := `{"date": "2012-01-01 11:30:00", "time": 1325413800000, "timezone": "Europe/Rome", "survey_id": "daily",
		"survey_launch_context": {"launch_time": 1}, "location_status": "unavailable", "privacy_state": "shared",
		"responses": [{"prompt_id": "p1", "value": "4"}, {"repeatable_set_id": "rs1", "not_displayed": true}]}`

	sr, err := Reconcile(c, "bob", "ios", []byte(body))
	require.NoError(t, err)
	assert.Equal(t, model.ResponseShared, sr.PrivacyState())
	assert.Equal(t, "Europe/Rome", sr.Timezone().String())
	assert.Equal(t, time.Date(2012, 1, 1, 10, 30, 0, 0, time.UTC), sr.Date().UTC())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", sr.SurveyKey().String())
	_, ok := sr.Location()
	assert.False(t, ok)
}

func TestReconcileRequiresUserAndClient(t *testing.T) {
	c := testCampaign(t)
	_, err := Reconcile(c, "", "android", payload(`[{"prompt_id": "p1", "value": 1}, {"repeatable_set_id": "rs1", "not_displayed": true}]`))
	requireCode(t, err, model.CodeResponseShape)
	_, err = Reconcile(c, "alice", " ", payload(`[{"prompt_id": "p1", "value": 1}, {"repeatable_set_id": "rs1", "not_displayed": true}]`))
	requireCode(t, err, model.CodeResponseShape)
}

func TestReconcileUpload(t *testing.T) {
	c := testCampaign(t)
	answers := `[{"prompt_id": "p1", "value": 1}, {"repeatable_set_id": "rs1", "not_displayed": true}]`

	upload := "[" + string(payload(answers)) + "," + string(payload(answers)) + "]"
	out, err := ReconcileUpload(c, "alice", "android", []byte(upload))
	require.NoError(t, err)
	assert.Len(t, out, 2)

	upload = "[" + string(payload(answers)) + "," + string(payload(`[{"prompt_id": "p1", "value": 99}]`)) + "]"
	_, err = ReconcileUpload(c, "alice", "android", []byte(upload))
	requireCode(t, err, model.CodeResponseType)
	assert.Contains(t, err.Error(), "survey response 1")

	_, err = ReconcileUpload(c, "alice", "android", []byte(`[]`))
	requireCode(t, err, model.CodeResponseShape)

	_, err = ReconcileUpload(c, "alice", "android", payload(answers))
	requireCode(t, err, model.CodeResponseShape)
}
