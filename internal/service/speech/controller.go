package speech

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/model/chat"
	"github.com/zhouzirui/shree/backend/internal/model/speech"
)

// Controller coordinates voice selection and playback for one conversation.
// It is not safe for concurrent use; the owning session serializes calls,
// including delivery of engine events through HandleEvent.
type Controller struct {
	engine Engine
	cfg    speech.SpeechConfig
	logger zerolog.Logger

	autoVoice  bool
	state      speech.PlaybackState
	speaking   bool
	lastVoiced string

	profile    speech.VoiceProfile
	hasProfile bool
	resolved   bool

	newUtteranceID func() string
}

// NewController returns an idle controller. A nil engine behaves like an
// unsupported one.
func NewController(engine Engine, cfg speech.SpeechConfig, logger zerolog.Logger) *Controller {
	if engine == nil {
		engine = NewNoopEngine()
	}
	return &Controller{
		engine:         engine,
		cfg:            cfg,
		logger:         logger.With().Str("component", "playback").Logger(),
		autoVoice:      cfg.AutoVoice,
		newUtteranceID: uuid.NewString,
	}
}

// MarkVoiced records id as already dispatched so Observe will skip it.
func (c *Controller) MarkVoiced(id string) {
	c.lastVoiced = id
}

// LastVoiced returns the id of the last message handed to the engine.
func (c *Controller) LastVoiced() string {
	return c.lastVoiced
}

// Supported reports whether the engine can currently speak.
func (c *Controller) Supported() bool {
	return c.engine.Supported()
}

// State returns the tracked playback.
func (c *Controller) State() speech.PlaybackState {
	return c.state
}

// IsSpeaking reflects the engine's start notification for the tracked utterance.
func (c *Controller) IsSpeaking() bool {
	return c.speaking
}

// AutoVoice reports whether new assistant messages are spoken automatically.
func (c *Controller) AutoVoice() bool {
	return c.autoVoice
}

// SetAutoVoice toggles automatic playback.
func (c *Controller) SetAutoVoice(enabled bool) {
	c.autoVoice = enabled
}

// Profile returns the cached voice profile, if any.
func (c *Controller) Profile() (speech.VoiceProfile, bool) {
	return c.profile, c.hasProfile
}

// Observe reacts to a newly appended assistant message. It returns true when
// playback was requested.
func (c *Controller) Observe(msg chat.Message) bool {
	if msg.Role != chat.RoleAssistant {
		return false
	}
	if !c.autoVoice || !c.engine.Supported() {
		return false
	}
	if msg.ID == c.lastVoiced {
		return false
	}

	c.lastVoiced = msg.ID
	return c.play(msg)
}

// Repeat replays msg regardless of the auto-voice setting. msg becomes the
// last voiced message even when the engine cannot speak.
func (c *Controller) Repeat(msg chat.Message) bool {
	c.lastVoiced = msg.ID
	if !c.engine.Supported() {
		return false
	}
	return c.play(msg)
}

// Stop cancels playback and returns to Idle.
func (c *Controller) Stop() {
	if !c.engine.Supported() {
		return
	}
	c.engine.Cancel()
	c.clear()
}

// Reset drops the tracked playback without contacting the engine, for when
// the engine went away mid-utterance.
func (c *Controller) Reset() {
	c.clear()
}

// VoicesChanged recomputes the cached profile.
func (c *Controller) VoicesChanged(voices []speech.Voice) {
	c.profile, c.hasProfile = SelectVoice(voices, c.cfg.LocalePriority)
	c.resolved = true
	c.logger.Debug().
		Int("voices", len(voices)).
		Str("locale", c.profile.LocaleTag).
		Str("voice", c.profile.EngineIdentifier).
		Msg("voice profile recomputed")
}

// HandleEvent applies an engine notification. Events for an utterance that
// is no longer tracked are dropped.
func (c *Controller) HandleEvent(ev speech.Event) {
	if c.state.Idle() || ev.UtteranceID != c.state.UtteranceID {
		c.logger.Debug().
			Str("kind", string(ev.Kind)).
			Str("utterance", ev.UtteranceID).
			Msg("ignoring stale playback event")
		return
	}

	switch ev.Kind {
	case speech.EventStart:
		c.speaking = true
	case speech.EventEnd:
		c.clear()
	case speech.EventError:
		c.logger.Warn().
			Str("utterance", ev.UtteranceID).
			Str("error", ev.Error).
			Msg("playback error reported by engine")
		c.clear()
	default:
		c.logger.Debug().Str("kind", string(ev.Kind)).Msg("unknown playback event")
	}
}

func (c *Controller) play(msg chat.Message) bool {
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return false
	}

	c.engine.Cancel()
	c.clear()

	if !c.resolved {
		c.VoicesChanged(c.engine.Voices())
	}

	req := speech.SpeakRequest{
		UtteranceID: c.newUtteranceID(),
		MessageID:   msg.ID,
		Text:        text,
		Language:    c.cfg.DefaultLanguage,
		Pitch:       c.cfg.Pitch,
		Rate:        c.cfg.Rate,
	}
	if c.hasProfile {
		profile := c.profile
		req.Voice = &profile
		if profile.LocaleTag != "" {
			req.Language = profile.LocaleTag
		}
	}

	c.state = speech.PlaybackState{Status: speech.StatusSpeaking, MessageID: msg.ID, UtteranceID: req.UtteranceID}
	if err := c.engine.Speak(req); err != nil {
		c.logger.Warn().Err(err).Str("message", msg.ID).Msg("speak request failed")
		c.clear()
		return false
	}

	c.logger.Debug().
		Str("message", msg.ID).
		Str("utterance", req.UtteranceID).
		Str("language", req.Language).
		Msg("playback requested")
	return true
}

func (c *Controller) clear() {
	c.state = speech.PlaybackState{Status: speech.StatusIdle}
	c.speaking = false
}
