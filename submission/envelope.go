package submission

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/mbolis/quick-campaign/model"
)

const dateFormat = "2006-01-02 15:04:05"

type envelope struct {
	SurveyKey      string            `json:"survey_key" validate:"omitempty,uuid"`
	Date           string            `json:"date"`
	Time           *int64            `json:"time" validate:"required"`
	Timezone       string            `json:"timezone" validate:"required"`
	SurveyID       string            `json:"survey_id" validate:"required"`
	LaunchContext  *launchContext    `json:"survey_launch_context" validate:"required"`
	LocationStatus string            `json:"location_status" validate:"required"`
	Location       *location         `json:"location"`
	PrivacyState   string            `json:"privacy_state"`
	Responses      []json.RawMessage `json:"responses" validate:"required"`
}

type launchContext struct {
	LaunchTime     *int64   `json:"launch_time" validate:"required"`
	LaunchTimezone string   `json:"launch_timezone"`
	ActiveTriggers []string `json:"active_triggers"`
}

type location struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Accuracy  float64 `json:"accuracy" validate:"min=0"`
	Provider  string  `json:"provider" validate:"required"`
	Time      int64   `json:"time"`
	Timezone  string  `json:"timezone"`
}

// entry answers one survey item: a prompt through prompt_id and value, a
// repeatable set through repeatable_set_id, not_displayed and responses.
type entry struct {
	PromptID        string            `json:"prompt_id"`
	Value           json.RawMessage   `json:"value"`
	RepeatableSetID string            `json:"repeatable_set_id"`
	NotDisplayed    *bool             `json:"not_displayed"`
	Responses       []json.RawMessage `json:"responses"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func decodeEnvelope(payload []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, model.Wrap(model.CodeResponseShape, err, "survey response is not a JSON object")
	}
	if err := validate.Struct(&env); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			if fe.Tag() == "required" {
				return nil, model.Errorf(model.CodeResponseShape, "survey response is missing %q", fieldPath(fe))
			}
			return nil, model.Errorf(model.CodeResponseShape, "survey response field %q is invalid: %v", fieldPath(fe), fe.Value())
		}
		return nil, model.Wrap(model.CodeResponseShape, err, "survey response")
	}
	return &env, nil
}

// fieldPath drops the struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return path
}
