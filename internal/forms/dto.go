package forms

import "cvbuilder-backend/cv/schema"

type createSessionRequest struct {
	RequireConfirm *bool  `json:"require_confirm"`
	Template       string `json:"template"`
	Filename       string `json:"filename"`
}

type createSessionResponse struct {
	SessionID      string         `json:"session_id"`
	State          State          `json:"state"`
	RequireConfirm bool           `json:"require_confirm"`
	Template       string         `json:"template"`
	Schema         []schema.Field `json:"schema"`
}

type updateRequest struct {
	Fields map[string]any `json:"fields"`
}

type confirmRequest struct {
	Confirmed *bool `json:"confirmed"`
}

type progressResponse struct {
	SessionID string         `json:"session_id"`
	State     State          `json:"state"`
	Issues    []schema.Issue `json:"issues,omitempty"`
	Missing   []string       `json:"missing,omitempty"`
}

type outcomeResponse struct {
	SessionID string `json:"session_id"`
	Outcome
}
