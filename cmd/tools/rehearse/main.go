// Command rehearse runs one assistant session in the terminal, optionally
// voicing replies through a local speech synthesizer.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/shree/backend/internal/config"
	"github.com/zhouzirui/shree/backend/internal/logging"
	"github.com/zhouzirui/shree/backend/internal/model/persona"
	"github.com/zhouzirui/shree/backend/internal/service/assistant"
	"github.com/zhouzirui/shree/backend/internal/service/speech"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		seed      uint64
		noVoice   bool
		command   string
		personaID string
	)

	cmd := &cobra.Command{
		Use:   "rehearse",
		Short: "Talk to the assistant from the terminal",
		Long: `Reads lines from stdin and submits them to a fresh session.

Commands: /stop cancels playback, /repeat replays the last reply,
/auto toggles automatic playback, /quit exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cmd.Flags().Changed("seed") {
				cfg.Assistant.Seed = &seed
			}
			if !cmd.Flags().Changed("command") {
				command = cfg.Speech.Command
			}
			if personaID != "" {
				cfg.Assistant.PersonaID = personaID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return rehearse(ctx, cfg, !noVoice, command, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed replies for reproducible output")
	cmd.Flags().BoolVar(&noVoice, "no-voice", false, "do not start a speech process")
	cmd.Flags().StringVar(&command, "command", "espeak-ng", "speech synthesizer binary (default from SPEECH_COMMAND)")
	cmd.Flags().StringVar(&personaID, "persona", "", "persona id (default from ASSISTANT_PERSONA)")
	return cmd
}

func rehearse(ctx context.Context, cfg *config.Config, voice bool, command string, in io.Reader, out io.Writer) error {
	logger := logging.New(cfg.Log)

	engines := func(string) speech.Engine { return speech.NewNoopEngine() }
	if voice {
		engines = func(string) speech.Engine {
			return speech.NewCommandEngine(speech.CommandConfig{
				Binary: command,
				Voices: cfg.Speech.CommandVoices,
			}, logger)
		}
	}

	manager := assistant.NewManager(persona.NewMemoryStore(persona.Seed()), assistant.ManagerConfig{
		Speech:  cfg.Speech.Playback,
		Seed:    cfg.Assistant.Seed,
		Engines: engines,
	}, logger)
	defer manager.Close()

	session, err := manager.CreateSession(ctx, cfg.Assistant.PersonaID)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return newREPL(session, out).Run(ctx, in)
}
