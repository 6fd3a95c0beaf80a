package schema

import "cvbuilder-backend/cv/model"

// Kind classifies how a field is collected and validated.
type Kind string

const (
	KindText      Kind = "text"
	KindURL       Kind = "url"
	KindTextList  Kind = "text_list"
	KindEntryList Kind = "entry_list"
)

// Field describes one collectable field of the CV record. The schema is a
// plain description object checked imperatively; the human-readable
// descriptions are handed to the conversational engine so it can phrase
// follow-up prompts.
type Field struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Kind        Kind     `json:"kind"`
	EntryKeys   []string `json:"entry_keys,omitempty"`
}

var fields = []Field{
	{Name: model.FieldFullName, Description: "Full name of the individual", Required: true, Kind: KindText},
	{Name: model.FieldEmail, Description: "Email address of the individual", Required: true, Kind: KindText},
	{Name: model.FieldPhoneNumber, Description: "Phone number in international format (e.g., +123456789)", Kind: KindText},
	{Name: model.FieldLinkedInProfile, Description: "URL to the individual's LinkedIn profile", Kind: KindURL},
	{Name: model.FieldPortfolioWebsite, Description: "URL to the individual's personal portfolio website", Kind: KindURL},
	{Name: model.FieldSummary, Description: "A brief summary or objective of the individual", Required: true, Kind: KindText},
	{Name: model.FieldSkills, Description: "A list of skills relevant to the job", Required: true, Kind: KindTextList},
	{Name: model.FieldExperience, Description: "A list of work experiences", Required: true, Kind: KindEntryList, EntryKeys: model.ExperienceKeys},
	{Name: model.FieldEducation, Description: "A list of education details", Required: true, Kind: KindEntryList, EntryKeys: model.EducationKeys},
}

// Fields returns the schema in declaration order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Describe returns the human-readable description for a field name, or the
// name itself when unknown.
func Describe(name string) string {
	for _, f := range fields {
		if f.Name == name {
			return f.Description
		}
	}
	return name
}
