package campaign

import (
	"strconv"
	"strings"

	"github.com/mbolis/quick-campaign/model"
	"github.com/mbolis/quick-campaign/xmldoc"
)

// Property keys understood by the prompt kinds.
const (
	propMin        = "min"
	propMax        = "max"
	propResolution = "res"
	propMaxSeconds = "max_seconds"
	propPackage    = "package"
	propActivity   = "activity"
	propAction     = "action"
	propAutolaunch = "autolaunch"
	propRetries    = "retries"
	propMinRuns    = "min_runs"
	propInput      = "input"
)

func (b *builder) prompt(el *xmldoc.Element, base model.ItemParams) (model.Prompt, error) {
	where := "prompt " + base.ID

	p := model.PromptParams{ItemParams: base}
	var err error
	if p.Unit, _, err = el.OptionalText("unit"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.Text, err = el.OneText("promptText"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.AbbreviatedText, _, err = el.OptionalText("abbreviatedText"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.ExplanationText, _, err = el.OptionalText("explanationText"); err != nil {
		return nil, fieldError(err, where)
	}
	if p.Skippable, err = boolField(el, "skippable", where); err != nil {
		return nil, err
	}
	if p.SkipLabel, _, err = el.OptionalText("skipLabel"); err != nil {
		return nil, fieldError(err, where)
	}
	displayType, err := el.OneText("displayType")
	if err != nil {
		return nil, fieldError(err, where)
	}
	if p.DisplayType, err = model.ParseDisplayType(displayType); err != nil {
		return nil, model.Wrap(model.CodeUnknownEnum, err, "%s", where)
	}
	if p.DisplayLabel, err = el.OneText("displayLabel"); err != nil {
		return nil, fieldError(err, where)
	}

	var def *string
	if text, ok, err := el.OptionalText("default"); err != nil {
		return nil, fieldError(err, where)
	} else if ok {
		def = &text
	}

	promptType, err := el.OneText("promptType")
	if err != nil {
		return nil, fieldError(err, where)
	}
	kind, err := model.ParsePromptType(promptType)
	if err != nil {
		return nil, model.Wrap(model.CodeUnknownEnum, err, "%s", where)
	}

	props, err := readProperties(el, base.ID)
	if err != nil {
		return nil, err
	}
	return newPrompt(kind, p, props, def)
}

// properties are the key -> (label, value) pairs declared by a prompt, in
// document order.
type properties struct {
	prompt string
	keys   []string
	byKey  map[string]model.LabelValuePair
}

func readProperties(el *xmldoc.Element, promptID string) (properties, error) {
	props := properties{prompt: promptID, byKey: map[string]model.LabelValuePair{}}
	where := "properties of prompt " + promptID

	list, err := el.Optional("properties")
	if err != nil {
		return props, fieldError(err, where)
	}
	if list == nil {
		return props, nil
	}
	for _, prop := range list.All("property") {
		key, err := prop.OneText("key")
		if err != nil {
			return props, fieldError(err, where)
		}
		if _, ok := props.byKey[key]; ok {
			return props, model.Errorf(model.CodeDuplicateProperty, "prompt %q declares property %q twice", promptID, key)
		}
		label, err := prop.OneText("label")
		if err != nil {
			return props, fieldError(err, where)
		}
		var value *model.PropertyValue
		if text, ok, err := prop.OptionalText("value"); err != nil {
			return props, fieldError(err, where)
		} else if ok {
			v, err := model.DecodePropertyValue(text)
			if err != nil {
				return props, model.Wrap(model.CodePropertyNotNumber, err, "prompt %q property %q", promptID, key)
			}
			value = &v
		}
		pair, err := model.NewLabelValuePair(label, value)
		if err != nil {
			return props, model.Wrap(model.CodeInvalidProperty, err, "prompt %q property %q", promptID, key)
		}
		props.keys = append(props.keys, key)
		props.byKey[key] = pair
	}
	return props, nil
}

func (ps properties) label(key string) (string, error) {
	p, ok := ps.byKey[key]
	if !ok {
		return "", model.Errorf(model.CodeMissingProperty, "prompt %q is missing property %q", ps.prompt, key)
	}
	return p.Label(), nil
}

func (ps properties) integer(key string) (int64, error) {
	label, err := ps.label(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(label, 0, 32)
	if err != nil {
		return 0, model.Wrap(model.CodeInvalidProperty, err, "prompt %q property %q is not an integer", ps.prompt, key)
	}
	return n, nil
}

func (ps properties) boolean(key string) (bool, error) {
	label, err := ps.label(key)
	if err != nil {
		return false, err
	}
	v, ok := model.ParseBool(label)
	if !ok {
		return false, model.Errorf(model.CodeInvalidProperty, "prompt %q property %q must be true or false", ps.prompt, key)
	}
	return v, nil
}

// choices reads every property as a choice keyed by a non-negative integer.
func (ps properties) choices() (map[int]model.LabelValuePair, error) {
	out := make(map[int]model.LabelValuePair, len(ps.keys))
	for _, key := range ps.keys {
		k, err := decodeInt(key)
		if err != nil || k < 0 {
			return nil, model.Errorf(model.CodeInvalidProperty, "prompt %q choice key %q is not a non-negative integer", ps.prompt, key)
		}
		out[k] = ps.byKey[key]
	}
	return out, nil
}

func (ps properties) bounds() (min, max int64, err error) {
	if min, err = ps.integer(propMin); err != nil {
		return
	}
	max, err = ps.integer(propMax)
	return
}

func noDefault(kind model.PromptType, id string, def *string) error {
	if def != nil {
		return model.Errorf(model.CodeDefaultNotAllowed, "%s prompt %q cannot have a default", kind, id)
	}
	return nil
}

// decodeInt reads decimal, 0x hex and leading-zero octal integers.
func decodeInt(s string) (int, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	return int(n), err
}

func choiceKey(id, s string) (int, error) {
	k, err := decodeInt(strings.TrimSpace(s))
	if err != nil {
		return 0, model.Wrap(model.CodeInvalidDefault, err, "prompt %q default %q is not a choice key", id, s)
	}
	return k, nil
}

// newPrompt builds the prompt kind out of its properties and default.
func newPrompt(kind model.PromptType, p model.PromptParams, props properties, def *string) (model.Prompt, error) {
	switch kind {
	case model.Number, model.HoursBeforeNow:
		min, max, err := props.bounds()
		if err != nil {
			return nil, err
		}
		var d *int64
		if def != nil {
			n, err := strconv.ParseInt(*def, 10, 64)
			if err != nil {
				return nil, model.Wrap(model.CodeInvalidDefault, err, "prompt %q default %q is not an integer", p.ID, *def)
			}
			d = &n
		}
		if kind == model.Number {
			return model.NewNumberPrompt(p, min, max, d)
		}
		return model.NewHoursBeforeNowPrompt(p, min, max, d)

	case model.Text:
		min, max, err := props.bounds()
		if err != nil {
			return nil, err
		}
		return model.NewTextPrompt(p, int(min), int(max), def)

	case model.SingleChoice, model.SingleChoiceCustom:
		choices, err := props.choices()
		if err != nil {
			return nil, err
		}
		var d *int
		if def != nil {
			k, err := choiceKey(p.ID, *def)
			if err != nil {
				return nil, err
			}
			d = &k
		}
		if kind == model.SingleChoice {
			return model.NewSingleChoicePrompt(p, choices, d)
		}
		return model.NewSingleChoiceCustomPrompt(p, choices, d)

	case model.MultiChoice, model.MultiChoiceCustom:
		choices, err := props.choices()
		if err != nil {
			return nil, err
		}
		var d []int
		if def != nil && strings.TrimSpace(*def) != "" {
			for _, s := range strings.Split(*def, model.ListSeparator) {
				k, err := choiceKey(p.ID, s)
				if err != nil {
					return nil, err
				}
				d = append(d, k)
			}
		}
		if kind == model.MultiChoice {
			return model.NewMultiChoicePrompt(p, choices, d)
		}
		return model.NewMultiChoiceCustomPrompt(p, choices, d)

	case model.Photo:
		if err := noDefault(kind, p.ID, def); err != nil {
			return nil, err
		}
		res, err := props.integer(propResolution)
		if err != nil {
			return nil, err
		}
		return model.NewPhotoPrompt(p, int(res))

	case model.Video:
		if err := noDefault(kind, p.ID, def); err != nil {
			return nil, err
		}
		seconds, err := props.integer(propMaxSeconds)
		if err != nil {
			return nil, err
		}
		return model.NewVideoPrompt(p, int(seconds))

	case model.RemoteActivity:
		if err := noDefault(kind, p.ID, def); err != nil {
			return nil, err
		}
		return remoteActivity(p, props)

	case model.Timestamp:
		if err := noDefault(kind, p.ID, def); err != nil {
			return nil, err
		}
		return model.NewTimestampPrompt(p)
	}
	return nil, model.Errorf(model.CodeUnknownEnum, "unknown prompt type %q", kind)
}

func remoteActivity(p model.PromptParams, props properties) (model.Prompt, error) {
	var app model.RemoteApp
	var err error
	if app.Package, err = props.label(propPackage); err != nil {
		return nil, err
	}
	if app.Activity, err = props.label(propActivity); err != nil {
		return nil, err
	}
	if app.Action, err = props.label(propAction); err != nil {
		return nil, err
	}
	if app.Autolaunch, err = props.boolean(propAutolaunch); err != nil {
		return nil, err
	}
	retries, err := props.integer(propRetries)
	if err != nil {
		return nil, err
	}
	minRuns, err := props.integer(propMinRuns)
	if err != nil {
		return nil, err
	}
	app.Retries, app.MinRuns = int(retries), int(minRuns)
	if input, ok := props.byKey[propInput]; ok {
		app.Input = input.Label()
	}
	return model.NewRemoteActivityPrompt(p, app)
}
