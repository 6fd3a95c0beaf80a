package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cvbuilder-backend/cv/model"
)

func completeRecord() model.CVModel {
	return model.CVModel{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Summary:  "Engineer",
		Skills:   []string{"math"},
		Experience: []model.Entry{
			{
				"job_title":    "Analyst",
				"company_name": "X",
				"start_date":   "2020",
				"end_date":     "2021",
				"description":  "...",
			},
		},
		Education: []model.Entry{
			{
				"institution_name": "Y",
				"degree":           "BSc",
				"field_of_study":   "Math",
				"start_date":       "2016",
				"end_date":         "2020",
				"description":      "...",
			},
		},
	}
}

func missingFieldNames(issues []Issue) []string {
	var out []string
	for _, issue := range issues {
		if issue.Code == IssueMissingRequiredField {
			out = append(out, issue.Field)
		}
	}
	return out
}

func TestIncrementalEmptyRecordReportsExactlyMissingFields(t *testing.T) {
	issues := Incremental(model.CVModel{})

	want := []string{"full_name", "email", "summary", "skills", "experience", "education"}
	if diff := cmp.Diff(want, missingFieldNames(issues)); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}
	for _, issue := range issues {
		if issue.Code != IssueMissingRequiredField {
			t.Fatalf("unexpected issue code %s for empty record", issue.Code)
		}
	}
}

func TestIncrementalPartialRecordReportsOnlyWhatIsMissing(t *testing.T) {
	rec := completeRecord()
	rec.Email = ""
	rec.Summary = "  "

	got := missingFieldNames(Incremental(rec))
	want := []string{"email", "summary"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionalFieldsDoNotReportMissing(t *testing.T) {
	rec := completeRecord()
	// phone_number, linkedin_profile, portfolio_website absent
	if issues := Incremental(rec); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestInvalidURLReported(t *testing.T) {
	for _, bad := range []string{"notaurl", "ftp://example.com/x", "http://"} {
		rec := completeRecord()
		rec.LinkedInProfile = bad

		issues := Incremental(rec)
		if len(issues) != 1 {
			t.Fatalf("url %q: expected 1 issue, got %+v", bad, issues)
		}
		if issues[0].Code != IssueInvalidURL || issues[0].Field != "linkedin_profile" {
			t.Fatalf("url %q: unexpected issue %+v", bad, issues[0])
		}
	}
}

func TestValidURLAccepted(t *testing.T) {
	rec := completeRecord()
	rec.LinkedInProfile = "https://www.linkedin.com/in/ada"
	rec.PortfolioWebsite = "http://ada.example.com"

	if issues := Incremental(rec); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestEmptySkillListReported(t *testing.T) {
	rec := completeRecord()
	rec.Skills = []string{}

	issues := Incremental(rec)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", issues)
	}
	if issues[0].Code != IssueEmptySkillList || issues[0].Field != "skills" {
		t.Fatalf("unexpected issue %+v", issues[0])
	}
}

func TestIncompleteEntriesReportedInInputOrder(t *testing.T) {
	rec := completeRecord()
	rec.Experience = []model.Entry{
		{"job_title": "Analyst", "company_name": "X", "start_date": "2020", "end_date": "2021", "description": "..."},
		{"job_title": "Engineer"},
		{"company_name": "Z", "description": "..."},
	}

	issues := Incremental(rec)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}

	first := issues[0]
	if first.Code != IssueIncompleteListEntry || first.Field != "experience" || first.EntryIndex != 1 {
		t.Fatalf("unexpected first issue %+v", first)
	}
	if diff := cmp.Diff([]string{"company_name", "start_date", "end_date", "description"}, first.MissingKeys); diff != "" {
		t.Fatalf("first entry missing keys (-want +got):\n%s", diff)
	}

	second := issues[1]
	if second.EntryIndex != 2 {
		t.Fatalf("expected second issue at entry 2, got %+v", second)
	}
	if diff := cmp.Diff([]string{"job_title", "start_date", "end_date"}, second.MissingKeys); diff != "" {
		t.Fatalf("second entry missing keys (-want +got):\n%s", diff)
	}
}

func TestEducationEntryKeySet(t *testing.T) {
	rec := completeRecord()
	rec.Education = []model.Entry{
		{"institution_name": "Y", "degree": "BSc"},
	}

	issues := Incremental(rec)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", issues)
	}
	if diff := cmp.Diff([]string{"field_of_study", "start_date", "end_date", "description"}, issues[0].MissingKeys); diff != "" {
		t.Fatalf("education missing keys (-want +got):\n%s", diff)
	}
}

func TestEmptyEntryListsAreComplete(t *testing.T) {
	// Present-but-empty section lists are allowed; only key presence inside
	// entries is enforced.
	rec := completeRecord()
	rec.Experience = []model.Entry{}
	rec.Education = []model.Entry{}

	if issues := Incremental(rec); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestCompletenessCheckIdempotent(t *testing.T) {
	rec := completeRecord()
	rec.Experience[0] = model.Entry{"job_title": "Analyst"}

	first := Incremental(rec)
	second := Incremental(rec)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated checks differ (-first +second):\n%s", diff)
	}

	errFirst := Complete(rec)
	errSecond := Complete(rec)
	if (errFirst == nil) != (errSecond == nil) {
		t.Fatalf("repeated Complete calls disagree: %v vs %v", errFirst, errSecond)
	}
	if errFirst.Error() != errSecond.Error() {
		t.Fatalf("repeated Complete errors differ: %q vs %q", errFirst, errSecond)
	}
}

func TestCompleteReturnsTypedError(t *testing.T) {
	err := Complete(model.CVModel{})
	if err == nil {
		t.Fatal("expected error for empty record")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Issues) == 0 {
		t.Fatal("expected issues in validation error")
	}

	if err := Complete(completeRecord()); err != nil {
		t.Fatalf("expected complete record to pass, got %v", err)
	}
}
