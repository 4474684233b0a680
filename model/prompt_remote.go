package model

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/mbolis/quick-campaign/condition"
)

// RemoteApp describes the external application a REMOTE_ACTIVITY
// prompt launches.
type RemoteApp struct {
	Package    string
	Activity   string
	Action     string
	Autolaunch bool
	Retries    int
	MinRuns    int
	Input      string
}

// RemoteActivityPrompt hands control to another application and records
// the scores it reports back.
type RemoteActivityPrompt struct {
	promptBase
	app RemoteApp
}

func NewRemoteActivityPrompt(p PromptParams, app RemoteApp) (*RemoteActivityPrompt, error) {
	base, err := newPromptBase(RemoteActivity, p)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.TrimSpace(app.Package) == "":
		return nil, Errorf(CodeMissingProperty, "remote activity prompt %q has no package", p.ID)
	case strings.TrimSpace(app.Activity) == "":
		return nil, Errorf(CodeMissingProperty, "remote activity prompt %q has no activity", p.ID)
	case strings.TrimSpace(app.Action) == "":
		return nil, Errorf(CodeMissingProperty, "remote activity prompt %q has no action", p.ID)
	case app.Retries < 0:
		return nil, Errorf(CodeInvalidProperty, "remote activity prompt %q has negative retries", p.ID)
	case app.MinRuns < 0:
		return nil, Errorf(CodeInvalidProperty, "remote activity prompt %q has negative min_runs", p.ID)
	}
	return &RemoteActivityPrompt{promptBase: base, app: app}, nil
}

func (p *RemoteActivityPrompt) App() RemoteApp { return p.app }

// ValidateValue expects a list of runs, each an object with a numeric
// "score".
func (p *RemoteActivityPrompt) ValidateValue(v any) (any, error) {
	if nr, handled, err := p.noResponse(v); handled {
		return nr, err
	}
	var runs []any
	switch x := v.(type) {
	case []any:
		runs = x
	case string:
		if err := json.Unmarshal([]byte(x), &runs); err != nil {
			return nil, p.typeMismatch("a JSON array of runs", v)
		}
	default:
		return nil, p.typeMismatch("a list of runs", v)
	}
	out := make([]map[string]any, len(runs))
	for i, run := range runs {
		obj, ok := run.(map[string]any)
		if !ok {
			return nil, Errorf(CodeResponseType, "prompt %q run %d is not an object", p.id, i)
		}
		switch obj["score"].(type) {
		case float64, float32, int, int64, interface{ Float64() (float64, error) }:
		default:
			return nil, Errorf(CodeResponseType, "prompt %q run %d has no numeric score", p.id, i)
		}
		out[i] = obj
	}
	return out, nil
}

func (p *RemoteActivityPrompt) ValidateCondition(c condition.Pair) error {
	return noConditions(p, "remote activity prompt", c)
}

func (p *RemoteActivityPrompt) toJSON() map[string]any {
	out := p.baseJSON()
	out["package"] = p.app.Package
	out["activity"] = p.app.Activity
	out["action"] = p.app.Action
	out["autolaunch"] = p.app.Autolaunch
	out["retries"] = p.app.Retries
	out["min_runs"] = p.app.MinRuns
	if p.app.Input != "" {
		out["input"] = p.app.Input
	}
	return out
}
