package speech

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/shree/backend/internal/model/speech"
)

var _ Engine = (*CommandEngine)(nil)

// ArgsFunc builds the command line for one utterance.
type ArgsFunc func(req speech.SpeakRequest) []string

// CommandConfig configures a CommandEngine.
type CommandConfig struct {
	Binary string
	Voices []speech.Voice
	Args   ArgsFunc // defaults to EspeakArgs
}

// CommandEngine speaks through a local synthesizer process, one process per
// utterance. Cancel kills the running process.
type CommandEngine struct {
	path   string
	voices []speech.Voice
	args   ArgsFunc
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
	events chan speech.Event
}

// NewCommandEngine resolves cfg.Binary on PATH. An unresolved binary yields
// an unsupported engine rather than an error.
func NewCommandEngine(cfg CommandConfig, logger zerolog.Logger) *CommandEngine {
	logger = logger.With().Str("component", "command-engine").Str("binary", cfg.Binary).Logger()

	path, err := exec.LookPath(cfg.Binary)
	if err != nil {
		logger.Warn().Err(err).Msg("speech binary not found, voice disabled")
		path = ""
	}

	args := cfg.Args
	if args == nil {
		args = EspeakArgs
	}

	return &CommandEngine{
		path:   path,
		voices: append([]speech.Voice(nil), cfg.Voices...),
		args:   args,
		logger: logger,
		events: make(chan speech.Event, 16),
	}
}

// EspeakArgs maps a request onto espeak-ng flags. espeak pitch runs 0-99
// with 50 as neutral; speed is words per minute with 175 as neutral.
func EspeakArgs(req speech.SpeakRequest) []string {
	voice := req.Language
	if req.Voice != nil && req.Voice.EngineIdentifier != "" {
		voice = req.Voice.EngineIdentifier
	}

	pitch := clampInt(int(math.Round(req.Pitch*50)), 0, 99)
	speed := clampInt(int(math.Round(req.Rate*175)), 80, 450)

	args := make([]string, 0, 7)
	if voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, "-p", strconv.Itoa(pitch), "-s", strconv.Itoa(speed), "--", req.Text)
	return args
}

func (e *CommandEngine) Supported() bool {
	return e.path != ""
}

func (e *CommandEngine) Voices() []speech.Voice {
	return append([]speech.Voice(nil), e.voices...)
}

func (e *CommandEngine) Speak(req speech.SpeakRequest) error {
	if req.Text == "" {
		return ErrEmptyText
	}
	if e.path == "" {
		return ErrEngineDetached
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineDetached
	}
	e.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, e.path, e.args(req)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start speech process: %w", err)
	}
	e.cancel = cancel

	e.emit(speech.Event{Kind: speech.EventStart, UtteranceID: req.UtteranceID})

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		if err := cmd.Wait(); err != nil {
			e.emit(speech.Event{Kind: speech.EventError, UtteranceID: req.UtteranceID, Error: err.Error()})
			return
		}
		e.emit(speech.Event{Kind: speech.EventEnd, UtteranceID: req.UtteranceID})
	}()
	return nil
}

func (e *CommandEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *CommandEngine) Events() <-chan speech.Event {
	return e.events
}

// Close kills any running process, waits for it to exit and closes Events.
func (e *CommandEngine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopLocked()
	e.mu.Unlock()

	e.wg.Wait()
	close(e.events)
}

func (e *CommandEngine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// emit never blocks; a full buffer means nobody is draining events.
func (e *CommandEngine) emit(ev speech.Event) {
	select {
	case e.events <- ev:
	default:
		e.logger.Warn().Str("kind", string(ev.Kind)).Str("utterance", ev.UtteranceID).Msg("event buffer full, dropping")
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
