package moderation

import (
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
)

var (
	// ErrNotInvoker means someone other than the original invoker tried
	// to resolve a confirmation.
	ErrNotInvoker = errors.New("only the invoker may resolve this confirmation")
	// ErrResolved means the confirmation was already confirmed, cancelled
	// or expired. Repeat presses are no-ops.
	ErrResolved = errors.New("confirmation already resolved")
)

// State is the lifecycle state of a confirmation session.
type State int

const (
	StatePending State = iota
	StateConfirmed
	StateCancelled
	StateExpired
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateCancelled:
		return "cancelled"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Target identifies the user a moderation action is performed against.
type Target struct {
	ID   snowflake.ID
	Name string
}

// Session gates one destructive action behind an explicit confirm/cancel
// choice. It transitions Pending -> {Confirmed, Cancelled, Expired}
// exactly once; only the original invoker may resolve it.
type Session struct {
	ID        string
	InvokerID snowflake.ID
	GuildID   snowflake.ID
	Action    types.ActionType
	Target    Target
	Reason    string
	CreatedAt time.Time

	mu    sync.Mutex
	state State
	timer *time.Timer
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// resolve performs the one-way state transition for an invoker decision.
func (s *Session) resolve(userID snowflake.ID, confirm bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != s.InvokerID {
		return ErrNotInvoker
	}

	if s.state != StatePending {
		return ErrResolved
	}

	if confirm {
		s.state = StateConfirmed
	} else {
		s.state = StateCancelled
	}

	if s.timer != nil {
		s.timer.Stop()
	}

	return nil
}

// expire transitions the session to Expired if it is still pending.
func (s *Session) expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending {
		return false
	}

	s.state = StateExpired

	return true
}

// Registry tracks live confirmation sessions keyed by the session ID
// embedded in component custom IDs. Sessions are independent; there is no
// cross-session state beyond the map itself.
type Registry struct {
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a session registry with the given expiry timeout.
func NewRegistry(timeout time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		timeout:  timeout,
		logger:   logger.Named("confirm"),
		sessions: make(map[string]*Session),
	}
}

// Create registers a new pending session. onExpire runs at most once, only
// if the session times out before being resolved; it is the caller's hook
// to disable the prompt UI.
func (r *Registry) Create(
	invokerID, guildID snowflake.ID,
	action types.ActionType,
	target Target,
	reason string,
	onExpire func(*Session),
) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		InvokerID: invokerID,
		GuildID:   guildID,
		Action:    action,
		Target:    target,
		Reason:    reason,
		CreatedAt: time.Now(),
		state:     StatePending,
	}

	s.timer = time.AfterFunc(r.timeout, func() {
		if !s.expire() {
			return
		}

		r.remove(s.ID)
		r.logger.Debug("Confirmation expired",
			zap.String("session_id", s.ID),
			zap.String("action", string(s.Action)))

		if onExpire != nil {
			onExpire(s)
		}
	})

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get returns the live session with the given ID, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sessions[id]
}

// Resolve applies an invoker decision to a session and removes it from
// the registry on success.
func (r *Registry) Resolve(s *Session, userID snowflake.ID, confirm bool) error {
	if err := s.resolve(userID, confirm); err != nil {
		return err
	}

	r.remove(s.ID)
	r.logger.Debug("Confirmation resolved",
		zap.String("session_id", s.ID),
		zap.String("action", string(s.Action)),
		zap.String("state", s.State().String()))

	return nil
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
