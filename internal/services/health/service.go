package health

// SessionCounter reports how many form sessions are live.
type SessionCounter interface {
	Len() int
}

// Service encapsulates health-related checks.
type Service struct {
	sessions SessionCounter
}

// NewService constructs a new health service.
func NewService(sessions SessionCounter) *Service {
	return &Service{sessions: sessions}
}

// Status returns a simple health payload.
func (s *Service) Status() map[string]any {
	out := map[string]any{"ok": true}
	if s.sessions != nil {
		out["live_sessions"] = s.sessions.Len()
	}
	return out
}
