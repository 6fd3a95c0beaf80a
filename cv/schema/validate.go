package schema

import (
	"fmt"
	"net/url"
	"strings"

	"cvbuilder-backend/cv/model"
)

// IssueCode identifies a class of validation failure.
type IssueCode string

const (
	IssueMissingRequiredField IssueCode = "missing_required_field"
	IssueInvalidURL           IssueCode = "invalid_url"
	IssueEmptySkillList       IssueCode = "empty_skill_list"
	IssueIncompleteListEntry  IssueCode = "incomplete_list_entry"
)

// Issue is one violated constraint. EntryIndex is the position of the
// offending entry for incomplete_list_entry issues and -1 otherwise.
type Issue struct {
	Code        IssueCode `json:"code"`
	Field       string    `json:"field"`
	EntryIndex  int       `json:"entry_index"`
	MissingKeys []string  `json:"missing_keys,omitempty"`
	Message     string    `json:"message"`
}

// ValidationError carries every violated constraint of a completeness check.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Message)
	}
	return "cv record incomplete: " + strings.Join(parts, "; ")
}

// Incremental reports every outstanding constraint violation for a record
// that is still being collected. It is a pure function: issues appear in
// schema declaration order, list entries in input order, and repeated calls
// on an unmodified record return identical results.
func Incremental(m model.CVModel) []Issue {
	var issues []Issue
	for _, f := range Fields() {
		issues = append(issues, checkField(f, m)...)
	}
	return issues
}

// Complete is the strict gate run once before rendering. It returns a
// *ValidationError enumerating all violations, or nil when the record
// satisfies the full schema.
func Complete(m model.CVModel) error {
	issues := Incremental(m)
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

func checkField(f Field, m model.CVModel) []Issue {
	switch f.Kind {
	case KindText:
		if f.Required && strings.TrimSpace(scalarValue(f.Name, m)) == "" {
			return []Issue{missingIssue(f)}
		}
	case KindURL:
		value := strings.TrimSpace(scalarValue(f.Name, m))
		if value == "" {
			if f.Required {
				return []Issue{missingIssue(f)}
			}
			return nil
		}
		if !isFullURL(value) {
			return []Issue{{
				Code:       IssueInvalidURL,
				Field:      f.Name,
				EntryIndex: -1,
				Message:    fmt.Sprintf("%s must be a full http(s) URL", f.Name),
			}}
		}
	case KindTextList:
		list := textListValue(f.Name, m)
		if list == nil {
			if f.Required {
				return []Issue{missingIssue(f)}
			}
			return nil
		}
		if len(list) == 0 {
			return []Issue{{
				Code:       IssueEmptySkillList,
				Field:      f.Name,
				EntryIndex: -1,
				Message:    fmt.Sprintf("%s list cannot be empty", f.Name),
			}}
		}
	case KindEntryList:
		entries := entryListValue(f.Name, m)
		if entries == nil {
			if f.Required {
				return []Issue{missingIssue(f)}
			}
			return nil
		}
		return checkEntries(f, entries)
	}
	return nil
}

func checkEntries(f Field, entries []model.Entry) []Issue {
	var issues []Issue
	for i, entry := range entries {
		var missing []string
		for _, key := range f.EntryKeys {
			if _, ok := entry[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, Issue{
				Code:        IssueIncompleteListEntry,
				Field:       f.Name,
				EntryIndex:  i,
				MissingKeys: missing,
				Message:     fmt.Sprintf("%s[%d] is missing keys: %s", f.Name, i, strings.Join(missing, ", ")),
			})
		}
	}
	return issues
}

func missingIssue(f Field) Issue {
	return Issue{
		Code:       IssueMissingRequiredField,
		Field:      f.Name,
		EntryIndex: -1,
		Message:    fmt.Sprintf("%s is required", f.Name),
	}
}

func scalarValue(name string, m model.CVModel) string {
	switch name {
	case model.FieldFullName:
		return m.FullName
	case model.FieldEmail:
		return m.Email
	case model.FieldPhoneNumber:
		return m.PhoneNumber
	case model.FieldLinkedInProfile:
		return m.LinkedInProfile
	case model.FieldPortfolioWebsite:
		return m.PortfolioWebsite
	case model.FieldSummary:
		return m.Summary
	}
	return ""
}

func textListValue(name string, m model.CVModel) []string {
	if name == model.FieldSkills {
		return m.Skills
	}
	return nil
}

func entryListValue(name string, m model.CVModel) []model.Entry {
	switch name {
	case model.FieldExperience:
		return m.Experience
	case model.FieldEducation:
		return m.Education
	}
	return nil
}

func isFullURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
