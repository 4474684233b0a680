package model

import "strings"

type RunningState string

const (
	Running RunningState = "RUNNING"
	Stopped RunningState = "STOPPED"
)

type PrivacyState string

const (
	Private PrivacyState = "PRIVATE"
	Shared  PrivacyState = "SHARED"
)

type Role string

const (
	Supervisor  Role = "SUPERVISOR"
	Author      Role = "AUTHOR"
	Analyst     Role = "ANALYST"
	Participant Role = "PARTICIPANT"
)

// Roles lists every campaign role in projection order.
var Roles = []Role{Supervisor, Author, Analyst, Participant}

type DisplayType string

const (
	Measurement DisplayType = "MEASUREMENT"
	Event       DisplayType = "EVENT"
	Count       DisplayType = "COUNT"
	Category    DisplayType = "CATEGORY"
	Metadata    DisplayType = "METADATA"
)

type PromptType string

const (
	Timestamp          PromptType = "TIMESTAMP"
	Number             PromptType = "NUMBER"
	HoursBeforeNow     PromptType = "HOURS_BEFORE_NOW"
	Text               PromptType = "TEXT"
	SingleChoice       PromptType = "SINGLE_CHOICE"
	SingleChoiceCustom PromptType = "SINGLE_CHOICE_CUSTOM"
	MultiChoice        PromptType = "MULTI_CHOICE"
	MultiChoiceCustom  PromptType = "MULTI_CHOICE_CUSTOM"
	Photo              PromptType = "PHOTO"
	RemoteActivity     PromptType = "REMOTE_ACTIVITY"
	Video              PromptType = "VIDEO"
)

type LocationStatus string

const (
	LocationValid       LocationStatus = "VALID"
	LocationNetwork     LocationStatus = "NETWORK"
	LocationInaccurate  LocationStatus = "INACCURATE"
	LocationStale       LocationStatus = "STALE"
	LocationUnavailable LocationStatus = "UNAVAILABLE"
)

type ResponsePrivacyState string

const (
	ResponsePrivate   ResponsePrivacyState = "PRIVATE"
	ResponseShared    ResponsePrivacyState = "SHARED"
	ResponseInvisible ResponsePrivacyState = "INVISIBLE"
)

// NoResponse marks an item that was answered with no value.
type NoResponse string

const (
	Skipped      NoResponse = "SKIPPED"
	NotDisplayed NoResponse = "NOT_DISPLAYED"
)

// ParseNoResponse recognises the exact marker strings. Markers are case
// sensitive, a lowercase "skipped" is an ordinary value.
func ParseNoResponse(s string) (NoResponse, bool) {
	switch NoResponse(s) {
	case Skipped, NotDisplayed:
		return NoResponse(s), true
	}
	return "", false
}

func parseEnum[T ~string](field, s string, values ...T) (T, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, v := range values {
		if string(v) == upper {
			return v, nil
		}
	}
	var zero T
	return zero, Errorf(CodeUnknownEnum, "unknown %s: %q", field, s)
}

func ParseRunningState(s string) (RunningState, error) {
	return parseEnum("running state", s, Running, Stopped)
}

func ParsePrivacyState(s string) (PrivacyState, error) {
	return parseEnum("privacy state", s, Private, Shared)
}

func ParseRole(s string) (Role, error) {
	return parseEnum("campaign role", s, Roles...)
}

func ParseDisplayType(s string) (DisplayType, error) {
	return parseEnum("display type", s, Measurement, Event, Count, Category, Metadata)
}

func ParsePromptType(s string) (PromptType, error) {
	return parseEnum("prompt type", s,
		Timestamp, Number, HoursBeforeNow, Text,
		SingleChoice, SingleChoiceCustom, MultiChoice, MultiChoiceCustom,
		Photo, RemoteActivity, Video)
}

func ParseLocationStatus(s string) (LocationStatus, error) {
	return parseEnum("location status", s,
		LocationValid, LocationNetwork, LocationInaccurate, LocationStale, LocationUnavailable)
}

func ParseResponsePrivacyState(s string) (ResponsePrivacyState, error) {
	return parseEnum("privacy state", s, ResponsePrivate, ResponseShared, ResponseInvisible)
}
