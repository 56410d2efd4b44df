package assistant

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/model/chat"
	"github.com/zhouzirui/shree/backend/internal/model/persona"
	"github.com/zhouzirui/shree/backend/internal/model/speech"
	"github.com/zhouzirui/shree/backend/internal/service/reply"
	speechService "github.com/zhouzirui/shree/backend/internal/service/speech"
)

var (
	ErrPersonaRequired = errors.New("persona id is required")
	ErrPersonaNotFound = errors.New("persona not found")
	ErrSessionNotFound = errors.New("session not found")
)

// EngineFactory builds the speech backend for a new session.
type EngineFactory func(sessionID string) speechService.Engine

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Speech speech.SpeechConfig
	// Seed makes replies reproducible: session n draws from Seed+n.
	Seed    *uint64
	Engines EngineFactory
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager owns the live sessions and their event loops.
type Manager struct {
	personas persona.Store
	cfg      ManagerConfig
	logger   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
	created  uint64
}

// NewManager creates an empty manager. Without an engine factory sessions
// get a NoopEngine.
func NewManager(personas persona.Store, cfg ManagerConfig, logger zerolog.Logger) *Manager {
	if cfg.Engines == nil {
		cfg.Engines = func(string) speechService.Engine { return speechService.NewNoopEngine() }
	}
	return &Manager{
		personas: personas,
		cfg:      cfg,
		logger:   logger.With().Str("component", "sessions").Logger(),
		sessions: make(map[string]*entry),
	}
}

// CreateSession provisions an anonymous session bound to a persona and
// starts its event loop.
func (m *Manager) CreateSession(_ context.Context, personaID string) (*Session, error) {
	if personaID == "" {
		return nil, ErrPersonaRequired
	}
	p, ok := m.personas.FindByID(personaID)
	if !ok {
		return nil, ErrPersonaNotFound
	}

	info := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: p.ID,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	n := m.created
	m.created++
	m.mu.Unlock()

	session := NewSession(info, p, SessionConfig{
		Engine: m.cfg.Engines(info.ID),
		Speech: m.cfg.Speech,
		Picker: m.picker(n),
		Logger: m.logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{session: session, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(e.done)
		session.Run(ctx)
	}()

	m.mu.Lock()
	m.sessions[info.ID] = e
	m.mu.Unlock()

	m.logger.Info().Str("session", info.ID).Str("persona", p.ID).Msg("session created")
	return session, nil
}

// GetSession retrieves a session by identifier.
func (m *Manager) GetSession(_ context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// CloseSession stops the session's loop and releases its engine.
func (m *Manager) CloseSession(sessionID string) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	m.shutdown(e)
	return nil
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for id, e := range m.sessions {
		entries = append(entries, e)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, e := range entries {
		m.shutdown(e)
	}
	m.logger.Info().Int("sessions", len(entries)).Msg("session manager closed")
}

func (m *Manager) shutdown(e *entry) {
	e.cancel()
	<-e.done
	e.session.Close()
	if closer, ok := e.session.Engine().(interface{ Close() }); ok {
		closer.Close()
	}
}

func (m *Manager) picker(n uint64) reply.Picker {
	if m.cfg.Seed != nil {
		return rand.New(rand.NewPCG(*m.cfg.Seed+n, 0))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
