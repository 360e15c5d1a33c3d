// Package validate checks untrusted input before it reaches the ledger or account
// services. Validators collect every violated rule instead of stopping at the first.
package validate

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/timecalc"
)

const (
	// MaxProjectLength is the maximum length of a project label.
	MaxProjectLength = 128
	// MaxDescriptionLength is the maximum length of an entry description.
	MaxDescriptionLength = 4096
)

// Messages reported by Entry.
const (
	MsgDateRequired       = "date is required"
	MsgDateInvalid        = "date is invalid"
	MsgProjectRequired    = "project is required"
	MsgProjectTooLong     = "project must be 128 characters or fewer"
	MsgStartRequired      = "start time is required"
	MsgEndRequired        = "end time is required"
	MsgStartFormat        = "start time must be in HH:MM format"
	MsgEndFormat          = "end time must be in HH:MM format"
	MsgHoursPositive      = "hours must be greater than zero"
	MsgEndAfterStart      = "end time must be after start time"
	MsgDescriptionTooLong = "description must be 4096 characters or fewer"
)

const entrySchemaJSON = `{
  "type": "object",
  "properties": {
    "date": { "type": "string" },
    "project": { "type": "string" },
    "startTime": { "type": "string" },
    "endTime": { "type": "string" },
    "hours": { "type": ["number", "null"] },
    "description": { "type": ["string", "null"] },
    "version": { "type": ["integer", "null"] }
  }
}`

var entrySchemaLoader = gojsonschema.NewStringLoader(entrySchemaJSON)

// ruleMessages maps each payload field to the rule messages it can produce, so a
// mistyped field is reported once by the schema rather than again by the rules.
var ruleMessages = map[string][]string{
	"date":        {MsgDateRequired, MsgDateInvalid},
	"project":     {MsgProjectRequired, MsgProjectTooLong},
	"startTime":   {MsgStartRequired, MsgStartFormat, MsgEndAfterStart},
	"endTime":     {MsgEndRequired, MsgEndFormat, MsgEndAfterStart},
	"hours":       {MsgHoursPositive},
	"description": {MsgDescriptionTooLong},
}

// DecodeEntry checks the field types of a raw entry body against the entry schema and
// decodes it. When some fields are mistyped, the well-typed ones are still checked
// against the entry rules and every problem is reported in one ValidationError.
func DecodeEntry(body []byte) (models.EntryPayload, error) {
	var payload models.EntryPayload

	result, err := gojsonschema.Validate(entrySchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return payload, apperrors.NewValidationError("invalid request body", "body must be a JSON object")
	}
	if result.Valid() {
		if err := json.Unmarshal(body, &payload); err != nil {
			return payload, apperrors.NewValidationError("invalid request body", err.Error())
		}
		return payload, nil
	}

	details := make([]string, 0, len(result.Errors()))
	mistyped := make(map[string]bool)
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
		mistyped[desc.Field()] = true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return payload, apperrors.NewValidationError("invalid data", details...)
	}
	for name := range mistyped {
		delete(fields, name)
	}
	wellTyped, err := json.Marshal(fields)
	if err == nil {
		err = json.Unmarshal(wellTyped, &payload)
	}
	if err != nil {
		return models.EntryPayload{}, apperrors.NewValidationError("invalid data", details...)
	}

	for _, msg := range EntryErrors(payload) {
		if !reportedBySchema(msg, mistyped) {
			details = append(details, msg)
		}
	}
	return models.EntryPayload{}, apperrors.NewValidationError("invalid data", details...)
}

func reportedBySchema(msg string, mistyped map[string]bool) bool {
	for field := range mistyped {
		for _, m := range ruleMessages[field] {
			if m == msg {
				return true
			}
		}
	}
	return false
}

// EntryErrors returns every rule the payload violates, in rule order. An empty
// result means the payload is valid.
func EntryErrors(p models.EntryPayload) []string {
	var errs []string

	if strings.TrimSpace(p.Date) == "" {
		errs = append(errs, MsgDateRequired)
	} else if _, err := timecalc.ParseDate(p.Date); err != nil {
		errs = append(errs, MsgDateInvalid)
	}

	project := strings.TrimSpace(p.Project)
	if project == "" {
		errs = append(errs, MsgProjectRequired)
	} else if utf8.RuneCountInString(project) > MaxProjectLength {
		errs = append(errs, MsgProjectTooLong)
	}

	startOK, endOK := false, false
	if strings.TrimSpace(p.StartTime) == "" {
		errs = append(errs, MsgStartRequired)
	} else if _, err := timecalc.ParseClock(p.StartTime); err != nil {
		errs = append(errs, MsgStartFormat)
	} else {
		startOK = true
	}

	if strings.TrimSpace(p.EndTime) == "" {
		errs = append(errs, MsgEndRequired)
	} else if _, err := timecalc.ParseClock(p.EndTime); err != nil {
		errs = append(errs, MsgEndFormat)
	} else {
		endOK = true
	}

	if p.Hours != nil && *p.Hours <= 0 {
		errs = append(errs, MsgHoursPositive)
	}

	if startOK && endOK {
		if _, err := timecalc.HoursBetween(p.StartTime, p.EndTime); errors.Is(err, timecalc.ErrEndNotAfterStart) {
			errs = append(errs, MsgEndAfterStart)
		}
	}

	if p.Description != nil && utf8.RuneCountInString(*p.Description) > MaxDescriptionLength {
		errs = append(errs, MsgDescriptionTooLong)
	}

	return errs
}

// Entry validates a payload and builds the draft the ledger writes. Hours are always
// recomputed from the start and end times; a client-supplied value is discarded.
func Entry(p models.EntryPayload) (models.EntryDraft, error) {
	if errs := EntryErrors(p); len(errs) > 0 {
		return models.EntryDraft{}, apperrors.NewValidationError("invalid data", errs...)
	}

	date, _ := timecalc.ParseDate(p.Date)
	start, _ := timecalc.NormalizeClock(p.StartTime)
	end, _ := timecalc.NormalizeClock(p.EndTime)
	hours, err := timecalc.HoursBetween(start, end)
	if err != nil {
		return models.EntryDraft{}, apperrors.NewValidationError("invalid data", MsgEndAfterStart)
	}

	var description *string
	if p.Description != nil {
		if d := strings.TrimSpace(*p.Description); d != "" {
			description = &d
		}
	}

	return models.EntryDraft{
		Date:        date,
		Project:     strings.TrimSpace(p.Project),
		StartTime:   start,
		EndTime:     end,
		Hours:       hours,
		Description: description,
		Version:     p.Version,
	}, nil
}
