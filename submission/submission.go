// Package submission reconciles uploaded survey responses against the
// campaign they answer.
package submission

import (
	"time"
	_ "time/tzdata"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mbolis/quick-campaign/log"
	"github.com/mbolis/quick-campaign/model"
)

// Reconcile decodes one survey response and checks every answer in it
// against campaign c.
func Reconcile(c *model.Campaign, username, client string, payload []byte) (*model.SurveyResponse, error) {
	env, err := decodeEnvelope(payload)
	if err != nil {
		return nil, err
	}
	return reconcile(c, username, client, env)
}

// ReconcileUpload handles an upload, a JSON array of survey responses. It
// fails on the first response that does not reconcile.
func ReconcileUpload(c *model.Campaign, username, client string, payload []byte) ([]*model.SurveyResponse, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, model.Wrap(model.CodeResponseShape, err, "upload is not a JSON array")
	}
	if len(raw) == 0 {
		return nil, model.Errorf(model.CodeResponseShape, "upload holds no survey responses")
	}

	out := make([]*model.SurveyResponse, 0, len(raw))
	for i, r := range raw {
		sr, err := Reconcile(c, username, client, r)
		if err != nil {
			code := model.CodeResponseShape
			if e, ok := model.AsError(err); ok {
				code = e.Code
			}
			return nil, model.Wrap(code, err, "survey response %d", i)
		}
		out = append(out, sr)
	}
	return out, nil
}

func reconcile(c *model.Campaign, username, client string, env *envelope) (*model.SurveyResponse, error) {
	survey, ok := c.Survey(env.SurveyID)
	if !ok {
		return nil, model.Errorf(model.CodeResponseUnknownID, "campaign %s has no survey %q", c.ID(), env.SurveyID)
	}

	p := model.SurveyResponseParams{
		Username:   username,
		CampaignID: c.ID(),
		Client:     client,
		Time:       *env.Time,
		Survey:     survey,
		LaunchContext: model.LaunchContext{
			LaunchTime:     *env.LaunchContext.LaunchTime,
			LaunchTimezone: env.LaunchContext.LaunchTimezone,
			ActiveTriggers: env.LaunchContext.ActiveTriggers,
		},
	}

	if env.SurveyKey != "" {
		key, err := uuid.Parse(env.SurveyKey)
		if err != nil {
			return nil, model.Wrap(model.CodeResponseShape, err, "survey key %q", env.SurveyKey)
		}
		p.SurveyKey = key
	}

	tz, err := time.LoadLocation(env.Timezone)
	if err != nil {
		return nil, model.Wrap(model.CodeInvalidValue, err, "unknown timezone %q", env.Timezone)
	}
	p.Timezone = tz
	if env.Date != "" {
		if p.Date, err = time.ParseInLocation(dateFormat, env.Date, tz); err != nil {
			return nil, model.Wrap(model.CodeInvalidValue, err, "survey response date %q", env.Date)
		}
	} else {
		p.Date = time.UnixMilli(*env.Time).In(tz)
	}

	if p.LocationStatus, err = model.ParseLocationStatus(env.LocationStatus); err != nil {
		return nil, err
	}
	if env.Location != nil {
		p.Location = &model.Location{
			Latitude:  env.Location.Latitude,
			Longitude: env.Location.Longitude,
			Accuracy:  env.Location.Accuracy,
			Provider:  env.Location.Provider,
			Time:      env.Location.Time,
			Timezone:  env.Location.Timezone,
		}
	}
	if env.PrivacyState != "" {
		if p.PrivacyState, err = model.ParseResponsePrivacyState(env.PrivacyState); err != nil {
			return nil, err
		}
	}

	if p.Responses, err = responses(survey.Items(), survey.ID(), env.Responses, 0); err != nil {
		return nil, err
	}

	sr, err := model.NewSurveyResponse(p)
	if err != nil {
		return nil, err
	}
	log.Debugf("submission.reconcile: %s %s from %s, %d responses", c.ID(), survey.ID(), username, len(p.Responses))
	return sr, nil
}

// responses reconciles the entries answering the items of one container,
// a survey or one iteration of a repeatable set.
func responses(items model.Items, containerID string, entries []json.RawMessage, iteration int) (map[int]model.Response, error) {
	out := make(map[int]model.Response, len(entries))
	for _, raw := range entries {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, model.Wrap(model.CodeResponseShape, err, "response in %q is not a JSON object", containerID)
		}

		var (
			resp model.Response
			err  error
		)
		switch {
		case e.PromptID != "":
			resp, err = promptResponse(items, containerID, e, iteration)
		case e.RepeatableSetID != "":
			resp, err = repeatableSetResponse(items, containerID, e)
		default:
			return nil, model.Errorf(model.CodeResponseShape, "response in %q has neither prompt_id nor repeatable_set_id", containerID)
		}
		if err != nil {
			return nil, err
		}

		index := resp.Item().Index()
		if _, ok := out[index]; ok {
			return nil, model.Errorf(model.CodeResponseShape, "%q is answered twice in %q", resp.Item().ID(), containerID)
		}
		out[index] = resp
	}

	for _, item := range items.All() {
		if item.Type() == model.MessageItem {
			continue
		}
		if _, ok := out[item.Index()]; !ok {
			return nil, model.Errorf(model.CodeResponseIncomplete, "missing response for %q in %q", item.ID(), containerID)
		}
	}
	return out, nil
}

func lookup(items model.Items, containerID, id string) (model.SurveyItem, error) {
	item, ok := items.ByID(id)
	if !ok {
		return nil, model.Errorf(model.CodeResponseUnknownID, "%q has no item %q", containerID, id)
	}
	return item, nil
}

func promptResponse(items model.Items, containerID string, e entry, iteration int) (model.Response, error) {
	item, err := lookup(items, containerID, e.PromptID)
	if err != nil {
		return nil, err
	}
	prompt, ok := item.(model.Prompt)
	if !ok {
		return nil, model.Errorf(model.CodeResponseWrongKind, "%q in %q is a %s, not a prompt", e.PromptID, containerID, item.Type())
	}
	if len(e.Value) == 0 {
		return nil, model.Errorf(model.CodeResponseShape, "response to %q has no value", e.PromptID)
	}

	var value any
	if err := json.Unmarshal(e.Value, &value); err != nil {
		return nil, model.Wrap(model.CodeResponseShape, err, "response to %q", e.PromptID)
	}
	resp, err := model.NewPromptResponse(prompt, iteration, value)
	if err != nil {
		code := model.CodeResponseType
		if de, ok := model.AsError(err); ok {
			code = de.Code
		}
		return nil, model.Wrap(code, err, "response to %q", e.PromptID)
	}
	return resp, nil
}

func repeatableSetResponse(items model.Items, containerID string, e entry) (model.Response, error) {
	item, err := lookup(items, containerID, e.RepeatableSetID)
	if err != nil {
		return nil, err
	}
	set, ok := item.(*model.RepeatableSet)
	if !ok {
		return nil, model.Errorf(model.CodeResponseWrongKind, "%q in %q is a %s, not a repeatable set", e.RepeatableSetID, containerID, item.Type())
	}

	if e.NotDisplayed == nil {
		return nil, model.Errorf(model.CodeResponseShape, "repeatable set %q is missing not_displayed", set.ID())
	}
	if *e.NotDisplayed {
		return model.NewRepeatableSetResponse(set, model.NotDisplayed, nil)
	}
	if e.Responses == nil {
		return nil, model.Errorf(model.CodeResponseShape, "repeatable set %q is missing its responses", set.ID())
	}

	iterations := make([]map[int]model.Response, 0, len(e.Responses))
	for i, raw := range e.Responses {
		var children []json.RawMessage
		if err := json.Unmarshal(raw, &children); err != nil || children == nil {
			return nil, model.Errorf(model.CodeResponseShape, "iteration %d of repeatable set %q is not an array", i+1, set.ID())
		}
		iteration, err := responses(set.Items(), containerID+"/"+set.ID(), children, i+1)
		if err != nil {
			return nil, err
		}
		iterations = append(iterations, iteration)
	}
	return model.NewRepeatableSetResponse(set, "", iterations)
}
