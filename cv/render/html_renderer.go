package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"

	"cvbuilder-backend/cv/model"
	templatestore "cvbuilder-backend/internal/shared/storage/template"
)

// DefaultTemplate is the fixed template this core renders with. Multi-template
// selection is an extension point, not wired here.
const DefaultTemplate = "cv_classic_v1.html"

// ErrTemplateBinding marks a template/schema mismatch. It is a configuration
// fault, not user-correctable.
var ErrTemplateBinding = errors.New("template binding failed")

// Renderer binds a completeness-checked CV record to an HTML template fetched
// from the template store.
type Renderer struct {
	Store templatestore.Store
}

// NewRenderer constructs a Renderer backed by the given template store.
func NewRenderer(store templatestore.Store) *Renderer {
	return &Renderer{Store: store}
}

// Render produces the HTML document for the record. The template is checked
// against sentinel values first, so a template emitting unresolved tokens
// fails before any record data is bound.
func (r *Renderer) Render(ctx context.Context, templateName string, cv model.CVModel) (string, error) {
	if r.Store == nil {
		return "", fmt.Errorf("%w: no template store configured", ErrTemplateBinding)
	}
	if strings.TrimSpace(templateName) == "" {
		templateName = DefaultTemplate
	}

	body, err := r.Store.Open(ctx, templateName)
	if err != nil {
		return "", fmt.Errorf("%w: open template %s: %v", ErrTemplateBinding, templateName, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: read template %s: %v", ErrTemplateBinding, templateName, err)
	}

	tpl, err := pongo2.FromBytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: parse template %s: %v", ErrTemplateBinding, templateName, err)
	}

	if err := verifyBinding(tpl, templateName); err != nil {
		return "", err
	}

	out, err := tpl.Execute(buildContext(cv))
	if err != nil {
		return "", fmt.Errorf("%w: execute template %s: %v", ErrTemplateBinding, templateName, err)
	}

	return out, nil
}

// verifyBinding executes the template against a fixed sentinel record and
// scans that output for leftover template tokens. Running the check on
// sentinel values keeps it a pure template/schema property: record text
// containing brace pairs can never trip it.
func verifyBinding(tpl *pongo2.Template, templateName string) error {
	out, err := tpl.Execute(buildContext(bindingCheckRecord()))
	if err != nil {
		return fmt.Errorf("%w: execute template %s: %v", ErrTemplateBinding, templateName, err)
	}
	if pos := tokenIndex(out); pos != -1 {
		return fmt.Errorf("%w: template %s emits unresolved tokens near %q", ErrTemplateBinding, templateName, snippetAround(out, pos, 80))
	}
	return nil
}

func bindingCheckRecord() model.CVModel {
	entry := func(keys []string) model.Entry {
		e := make(model.Entry, len(keys))
		for _, key := range keys {
			e[key] = "value"
		}
		return e
	}
	return model.CVModel{
		FullName:         "value",
		Email:            "value",
		PhoneNumber:      "value",
		LinkedInProfile:  "value",
		PortfolioWebsite: "value",
		Summary:          "value",
		Skills:           []string{"value"},
		Experience:       []model.Entry{entry(model.ExperienceKeys)},
		Education:        []model.Entry{entry(model.EducationKeys)},
	}
}

func buildContext(cv model.CVModel) pongo2.Context {
	return pongo2.Context{
		model.FieldFullName:         cv.FullName,
		model.FieldEmail:            cv.Email,
		model.FieldPhoneNumber:      cv.PhoneNumber,
		model.FieldLinkedInProfile:  cv.LinkedInProfile,
		model.FieldPortfolioWebsite: cv.PortfolioWebsite,
		model.FieldSummary:          cv.Summary,
		model.FieldSkills:           cv.Skills,
		model.FieldExperience:       cv.Experience,
		model.FieldEducation:        cv.Education,
	}
}

func tokenIndex(text string) int {
	for _, token := range []string{"{{", "}}", "{%", "%}"} {
		if idx := strings.Index(text, token); idx != -1 {
			return idx
		}
	}
	return -1
}

func snippetAround(text string, pos, maxLen int) string {
	start := pos - maxLen/2
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
