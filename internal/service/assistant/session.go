package assistant

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/analysis/mood"
	"github.com/zhouzirui/shree/backend/internal/model/chat"
	"github.com/zhouzirui/shree/backend/internal/model/persona"
	"github.com/zhouzirui/shree/backend/internal/model/speech"
	chatService "github.com/zhouzirui/shree/backend/internal/service/chat"
	"github.com/zhouzirui/shree/backend/internal/service/reply"
	speechService "github.com/zhouzirui/shree/backend/internal/service/speech"
)

// Snapshot is the consistent view of a session published after every change.
type Snapshot struct {
	SessionID       string               `json:"sessionId"`
	PersonaID       string               `json:"personaId"`
	Version         uint64               `json:"version"`
	Messages        []chat.Message       `json:"messages"`
	IsSpeaking      bool                 `json:"isSpeaking"`
	SpeechSupported bool                 `json:"speechSupported"`
	AutoVoice       bool                 `json:"autoVoice"`
	Playback        speech.PlaybackState `json:"playback"`
	MoodSummary     string               `json:"moodSummary"`
	QuickPrompts    []string             `json:"quickPrompts,omitempty"`
}

// SessionConfig carries the collaborators of one session.
type SessionConfig struct {
	Engine              speechService.Engine
	Speech              speech.SpeechConfig
	Picker              reply.Picker
	Logger              zerolog.Logger
	ConversationOptions []chatService.Option
}

// Session binds a conversation to its playback controller. Every method is
// safe for concurrent use; the mutex is the only serialization point.
type Session struct {
	info    chat.Session
	persona persona.Persona
	engine  speechService.Engine
	logger  zerolog.Logger

	mu           sync.Mutex
	conversation *chatService.Conversation
	controller   *speechService.Controller
	version      uint64
	subs         map[int]chan Snapshot
	nextSub      int
	closed       bool
}

// NewSession seeds the conversation with the persona's opening line. The
// opening is marked voiced so it is only ever spoken through Repeat.
func NewSession(info chat.Session, p persona.Persona, cfg SessionConfig) *Session {
	if cfg.Engine == nil {
		cfg.Engine = speechService.NewNoopEngine()
	}
	if len(cfg.Speech.LocalePriority) == 0 {
		cfg.Speech.LocalePriority = append([]string(nil), p.LocalePriority...)
	}
	if cfg.Speech.DefaultLanguage == "" {
		cfg.Speech.DefaultLanguage = p.Language
	}

	logger := cfg.Logger.With().Str("session", info.ID).Str("persona", p.ID).Logger()

	opening := chat.Message{ID: persona.OpeningMessageID, Role: chat.RoleAssistant, Content: p.OpeningLine}
	conversation := chatService.NewConversation(opening, reply.NewComposer(cfg.Picker), cfg.ConversationOptions...)

	controller := speechService.NewController(cfg.Engine, cfg.Speech, logger)
	controller.MarkVoiced(persona.OpeningMessageID)

	return &Session{
		info:         info,
		persona:      p,
		engine:       cfg.Engine,
		logger:       logger,
		conversation: conversation,
		controller:   controller,
		subs:         make(map[int]chan Snapshot),
	}
}

// Info returns the session metadata.
func (s *Session) Info() chat.Session {
	return s.info
}

// Persona returns the persona the session speaks as.
func (s *Session) Persona() persona.Persona {
	return s.persona
}

// Engine exposes the speech backend so transports can attach to it.
func (s *Session) Engine() speechService.Engine {
	return s.engine
}

// Submit appends the user's text and its reply, then voices the reply when
// auto-voice allows it. Blank text is ignored and reported as false.
func (s *Session) Submit(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, assistant, ok := s.conversation.Submit(text)
	if !ok {
		return false
	}
	s.controller.Observe(assistant)

	s.logger.Info().
		Str("user_message", user.ID).
		Str("assistant_message", assistant.ID).
		Int("messages", s.conversation.Len()).
		Msg("reply composed")
	s.publishLocked()
	return true
}

// Stop cancels any playback.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.Stop()
	s.publishLocked()
}

// Repeat replays the latest assistant message. It returns false when speech
// is unavailable.
func (s *Session) Repeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, ok := s.conversation.MostRecent(chat.RoleAssistant, "")
	if !ok {
		return false
	}
	played := s.controller.Repeat(latest)
	s.publishLocked()
	return played
}

// ToggleAutoVoice flips automatic playback and returns the new setting.
// Turning it back on voices the latest reply if it was never spoken.
func (s *Session) ToggleAutoVoice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := !s.controller.AutoVoice()
	s.controller.SetAutoVoice(enabled)
	if enabled {
		if latest, ok := s.conversation.MostRecent(chat.RoleAssistant, ""); ok {
			s.controller.Observe(latest)
		}
	}

	s.logger.Debug().Bool("auto_voice", enabled).Msg("auto voice toggled")
	s.publishLocked()
	return enabled
}

// VoicesChanged recomputes the voice profile from the engine's new list.
// A voice list that arrives with the engine unable to speak drops any
// tracked playback, as EngineChanged does.
func (s *Session) VoicesChanged(voices []speech.Voice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.VoicesChanged(voices)
	if !s.controller.Supported() {
		s.controller.Reset()
	}
	s.publishLocked()
}

// EngineChanged republishes after the engine's capability changed. Playback
// tracked on an engine that can no longer speak is dropped.
func (s *Session) EngineChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.controller.Supported() {
		s.controller.Reset()
	}
	s.publishLocked()
}

// HandleEvent applies an engine notification. Stale events change nothing
// and publish nothing.
func (s *Session) HandleEvent(ev speech.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, speaking := s.controller.State(), s.controller.IsSpeaking()
	s.controller.HandleEvent(ev)
	if s.controller.State() == before && s.controller.IsSpeaking() == speaking {
		return
	}
	s.publishLocked()
}

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that always holds the newest snapshot. A slow
// reader skips intermediate versions. The returned func unsubscribes.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

// Run feeds engine events into HandleEvent until ctx is done or the engine
// closes its event channel.
func (s *Session) Run(ctx context.Context) {
	events := s.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				s.logger.Debug().Msg("engine event channel closed")
				return
			}
			s.HandleEvent(ev)
		}
	}
}

// Close stops playback and ends every subscription.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.controller.Stop()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	latestUser, found := s.conversation.MostRecent(chat.RoleUser, "")
	return Snapshot{
		SessionID:       s.info.ID,
		PersonaID:       s.info.PersonaID,
		Version:         s.version,
		Messages:        s.conversation.Messages(),
		IsSpeaking:      s.controller.IsSpeaking(),
		SpeechSupported: s.controller.Supported(),
		AutoVoice:       s.controller.AutoVoice(),
		Playback:        s.controller.State(),
		MoodSummary:     mood.Summarize(latestUser.Content, found),
		QuickPrompts:    append([]string(nil), s.persona.QuickPrompts...),
	}
}

func (s *Session) publishLocked() {
	s.version++
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Replace the unread snapshot with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
