package forms

import (
	"context"
	"fmt"

	"cvbuilder-backend/cv/convert"
	"cvbuilder-backend/cv/deliver"
	"cvbuilder-backend/cv/model"
	"cvbuilder-backend/cv/render"
	"cvbuilder-backend/cv/schema"
	"cvbuilder-backend/internal/shared/metrics"
	"cvbuilder-backend/internal/shared/telemetry"
)

// OutcomeKind names the result of one inbound operation, matching the wire
// outcomes the conversational engine dispatches on.
type OutcomeKind string

const (
	OutcomeContinue             OutcomeKind = "continue"
	OutcomeAwaitingConfirmation OutcomeKind = "awaiting_confirmation"
	OutcomeSubmitted            OutcomeKind = "submitted"
	OutcomeCancelled            OutcomeKind = "cancelled"
)

// Summary is the structured recap handed to the engine when the form is
// complete and awaiting confirmation. The engine embeds it into its own
// prompt template; no natural language is generated here.
type Summary struct {
	Record          model.CVModel `json:"record"`
	SkillCount      int           `json:"skill_count"`
	ExperienceCount int           `json:"experience_count"`
	EducationCount  int           `json:"education_count"`
}

// Outcome is the result of an update/confirm/cancel operation.
type Outcome struct {
	Kind    OutcomeKind      `json:"outcome"`
	State   State            `json:"state"`
	Issues  []schema.Issue   `json:"issues,omitempty"`
	Missing []string         `json:"missing,omitempty"`
	Summary *Summary         `json:"summary,omitempty"`
	Payload *deliver.Payload `json:"delivery,omitempty"`
}

// Service drives the form lifecycle and runs the render pipeline on the
// terminal submit transition.
type Service struct {
	Sessions *Store
	Renderer *render.Renderer

	// Convert turns rendered markup into artifact bytes. Overridable so
	// tests can inject converter faults.
	Convert func(markup string) ([]byte, error)
}

// NewService constructs a Service with the production converter.
func NewService(sessions *Store, renderer *render.Renderer) *Service {
	return &Service{
		Sessions: sessions,
		Renderer: renderer,
		Convert:  convert.HTMLToPDF,
	}
}

// Start opens a new session and returns it in COLLECTING state.
func (s *Service) Start(opts StartOptions) *Session {
	sess := s.Sessions.Create(opts)
	metrics.IncSessionStarted()
	telemetry.Info("form.session_started", map[string]any{
		"session_id":      sess.ID,
		"require_confirm": sess.RequireConfirm,
		"template":        sess.TemplateName,
	})
	return sess
}

// Update merges one turn's partial field map into the session record and
// advances the state machine.
func (s *Service) Update(ctx context.Context, sessionID string, fields map[string]any) (Outcome, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return Outcome{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State.Terminal() {
		return Outcome{}, fmt.Errorf("%w: session is %s", ErrInvalidState, sess.State)
	}

	if err := model.ApplyFields(&sess.Record, fields); err != nil {
		// ApplyFields is all-or-nothing, so a rejected turn leaves the
		// record untouched; the caller re-prompts and the session stays
		// open.
		return Outcome{}, fmt.Errorf("%w: %v", ErrBadFields, err)
	}
	s.Sessions.Touch(sess)

	return s.advance(ctx, sess)
}

// Confirm resolves an AWAITING_CONFIRMATION session: confirmed submits,
// rejected returns to COLLECTING with the record retained.
func (s *Service) Confirm(ctx context.Context, sessionID string, confirmed bool) (Outcome, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return Outcome{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State != StateAwaitingConfirmation {
		return Outcome{}, fmt.Errorf("%w: confirm requires %s, session is %s", ErrInvalidState, StateAwaitingConfirmation, sess.State)
	}
	s.Sessions.Touch(sess)

	if !confirmed {
		sess.State = StateCollecting
		return Outcome{
			Kind:    OutcomeContinue,
			State:   sess.State,
			Issues:  nil,
			Summary: buildSummary(sess.Record),
		}, nil
	}

	return s.submit(ctx, sess)
}

// Cancel aborts a session from any non-terminal state.
func (s *Service) Cancel(sessionID string) (Outcome, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return Outcome{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State.Terminal() {
		return Outcome{}, fmt.Errorf("%w: session is %s", ErrInvalidState, sess.State)
	}

	sess.State = StateCancelled
	sess.discardRecord()
	s.Sessions.Touch(sess)
	metrics.IncSessionCancelled()
	telemetry.Info("form.session_cancelled", map[string]any{"session_id": sess.ID})

	return Outcome{Kind: OutcomeCancelled, State: sess.State}, nil
}

// Progress reports the session state and outstanding issues without
// mutating anything, so the engine can phrase a nudge.
func (s *Service) Progress(sessionID string) (State, []schema.Issue, error) {
	sess, err := s.Sessions.Get(sessionID)
	if err != nil {
		return "", nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State.Terminal() {
		return sess.State, nil, nil
	}
	return sess.State, schema.Incremental(sess.Record), nil
}

// advance runs the incremental check and picks the next state. Caller holds
// the session lock.
func (s *Service) advance(ctx context.Context, sess *Session) (Outcome, error) {
	issues := schema.Incremental(sess.Record)
	if len(issues) > 0 {
		sess.State = StateCollecting
		return Outcome{
			Kind:    OutcomeContinue,
			State:   sess.State,
			Issues:  issues,
			Missing: missingFields(issues),
		}, nil
	}

	if sess.RequireConfirm {
		sess.State = StateAwaitingConfirmation
		return Outcome{
			Kind:    OutcomeAwaitingConfirmation,
			State:   sess.State,
			Summary: buildSummary(sess.Record),
		}, nil
	}

	return s.submit(ctx, sess)
}

// submit runs the render -> convert -> encode pipeline exactly once, on a
// record that has passed the completeness check. Caller holds the session
// lock. Pipeline failure is terminal for the session.
func (s *Service) submit(ctx context.Context, sess *Session) (Outcome, error) {
	if err := schema.Complete(sess.Record); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrBadFields, err)
	}

	started := metrics.NowMillis()
	snapshot := sess.Record.Clone()

	markup, err := s.Renderer.Render(ctx, sess.TemplateName, snapshot)
	if err != nil {
		return Outcome{}, s.failPipeline(sess, "render", err)
	}

	artifact, err := s.Convert(markup)
	if err != nil {
		return Outcome{}, s.failPipeline(sess, "convert", err)
	}

	payload, err := deliver.EncodePDF(artifact, sess.Filename)
	if err != nil {
		return Outcome{}, s.failPipeline(sess, "encode", err)
	}

	sess.State = StateSubmitted
	sess.discardRecord()
	metrics.IncSessionSubmitted()
	metrics.ObservePipelineDurationMs(metrics.NowMillis() - started)
	telemetry.Info("form.session_submitted", map[string]any{
		"session_id":     sess.ID,
		"filename":       payload.Filename,
		"artifact_bytes": len(artifact),
	})

	return Outcome{Kind: OutcomeSubmitted, State: sess.State, Payload: &payload}, nil
}

// failPipeline closes the session after a pipeline-stage failure. The record
// is not rolled back to COLLECTING; the caller starts a new session.
func (s *Service) failPipeline(sess *Session, stage string, err error) error {
	sess.State = StateCancelled
	sess.discardRecord()
	metrics.IncPipelineFailed()
	telemetry.Error("form.pipeline_failed", map[string]any{
		"session_id": sess.ID,
		"stage":      stage,
		"error":      err.Error(),
	})
	return err
}

func buildSummary(record model.CVModel) *Summary {
	return &Summary{
		Record:          record.Clone(),
		SkillCount:      len(record.Skills),
		ExperienceCount: len(record.Experience),
		EducationCount:  len(record.Education),
	}
}

func missingFields(issues []schema.Issue) []string {
	var out []string
	for _, issue := range issues {
		if issue.Code == schema.IssueMissingRequiredField {
			out = append(out, issue.Field)
		}
	}
	return out
}
