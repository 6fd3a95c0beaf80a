package model

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Field names accepted by ApplyFields. They match the wire names used by the
// conversational engine and the template context keys.
const (
	FieldFullName         = "full_name"
	FieldEmail            = "email"
	FieldPhoneNumber      = "phone_number"
	FieldLinkedInProfile  = "linkedin_profile"
	FieldPortfolioWebsite = "portfolio_website"
	FieldSummary          = "summary"
	FieldSkills           = "skills"
	FieldExperience       = "experience"
	FieldEducation        = "education"
)

// Required keys for list-section entries.
var (
	ExperienceKeys = []string{"job_title", "company_name", "start_date", "end_date", "description"}
	EducationKeys  = []string{"institution_name", "degree", "field_of_study", "start_date", "end_date", "description"}
)

// Entry is a free-text section item. Values carry no format constraints
// beyond being text; only key presence is validated.
type Entry map[string]string

// CVModel is the record assembled across a form session. A nil list means
// the field was never supplied; an empty non-nil list means it was supplied
// empty, which matters to the validator.
type CVModel struct {
	FullName         string   `json:"full_name"`
	Email            string   `json:"email"`
	PhoneNumber      string   `json:"phone_number,omitempty"`
	LinkedInProfile  string   `json:"linkedin_profile,omitempty"`
	PortfolioWebsite string   `json:"portfolio_website,omitempty"`
	Summary          string   `json:"summary"`
	Skills           []string `json:"skills,omitempty"`
	Experience       []Entry  `json:"experience,omitempty"`
	Education        []Entry  `json:"education,omitempty"`
}

// Clone returns an independent deep copy, used to hand the render pipeline a
// read-only snapshot.
func (m CVModel) Clone() CVModel {
	out := m
	if m.Skills != nil {
		out.Skills = append([]string(nil), m.Skills...)
	}
	out.Experience = cloneEntries(m.Experience)
	out.Education = cloneEntries(m.Education)
	return out
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		copied := make(Entry, len(entry))
		for k, v := range entry {
			copied[k] = v
		}
		out[i] = copied
	}
	return out
}

// ApplyFields merges a partial field map from one conversational turn into
// the model. The merge is all-or-nothing: every value is coerced first and
// nothing is written unless the whole payload coerces, so a rejected turn
// leaves the record exactly as it was. Unknown field names are skipped so
// the engine can send extra context without breaking the form. Text values
// are stripped of embedded markup before they reach the template.
func ApplyFields(m *CVModel, fields map[string]any) error {
	writes := make([]func(*CVModel), 0, len(fields))
	for name, raw := range fields {
		switch name {
		case FieldFullName, FieldEmail, FieldPhoneNumber, FieldLinkedInProfile, FieldPortfolioWebsite, FieldSummary:
			value, err := coerceText(name, raw)
			if err != nil {
				return err
			}
			field := name
			writes = append(writes, func(m *CVModel) { setScalar(m, field, value) })
		case FieldSkills:
			list, err := coerceTextList(name, raw)
			if err != nil {
				return err
			}
			writes = append(writes, func(m *CVModel) { m.Skills = list })
		case FieldExperience:
			entries, err := coerceEntryList(name, raw)
			if err != nil {
				return err
			}
			writes = append(writes, func(m *CVModel) { m.Experience = entries })
		case FieldEducation:
			entries, err := coerceEntryList(name, raw)
			if err != nil {
				return err
			}
			writes = append(writes, func(m *CVModel) { m.Education = entries })
		}
	}
	for _, write := range writes {
		write(m)
	}
	return nil
}

func setScalar(m *CVModel, name, value string) {
	switch name {
	case FieldFullName:
		m.FullName = value
	case FieldEmail:
		m.Email = value
	case FieldPhoneNumber:
		m.PhoneNumber = value
	case FieldLinkedInProfile:
		m.LinkedInProfile = value
	case FieldPortfolioWebsite:
		m.PortfolioWebsite = value
	case FieldSummary:
		m.Summary = value
	}
}

func coerceText(field string, raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return StripMarkup(v), nil
	default:
		return "", fmt.Errorf("field %s: expected text, got %T", field, raw)
	}
}

func coerceTextList(field string, raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, StripMarkup(item))
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("field %s[%d]: expected text, got %T", field, i, item)
			}
			out = append(out, StripMarkup(s))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %s: expected list of text values, got %T", field, raw)
	}
}

func coerceEntryList(field string, raw any) ([]Entry, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []Entry:
		out := make([]Entry, 0, len(v))
		for _, entry := range v {
			out = append(out, sanitizeEntry(entry))
		}
		return out, nil
	case []map[string]string:
		out := make([]Entry, 0, len(v))
		for _, entry := range v {
			out = append(out, sanitizeEntry(entry))
		}
		return out, nil
	case []any:
		out := make([]Entry, 0, len(v))
		for i, item := range v {
			entry, err := coerceEntry(field, i, item)
			if err != nil {
				return nil, err
			}
			out = append(out, entry)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %s: expected list of entries, got %T", field, raw)
	}
}

func coerceEntry(field string, index int, raw any) (Entry, error) {
	switch v := raw.(type) {
	case map[string]string:
		return sanitizeEntry(v), nil
	case Entry:
		return sanitizeEntry(v), nil
	case map[string]any:
		entry := make(Entry, len(v))
		for k, val := range v {
			switch typed := val.(type) {
			case string:
				entry[k] = StripMarkup(typed)
			case nil:
				entry[k] = ""
			default:
				entry[k] = StripMarkup(fmt.Sprint(typed))
			}
		}
		return entry, nil
	default:
		return nil, fmt.Errorf("field %s[%d]: expected entry mapping, got %T", field, index, raw)
	}
}

func sanitizeEntry(src map[string]string) Entry {
	entry := make(Entry, len(src))
	for k, v := range src {
		entry[k] = StripMarkup(v)
	}
	return entry
}

var textPolicy = bluemonday.StrictPolicy()

// StripMarkup removes any HTML the caller managed to smuggle into a text
// field. The sanitizer entity-escapes what remains, so the escaping is
// undone to keep stored values plain text; the template engine re-escapes
// at render time.
func StripMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
