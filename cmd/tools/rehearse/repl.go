package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zhouzirui/shree/backend/internal/model/chat"
	"github.com/zhouzirui/shree/backend/internal/service/assistant"
)

// repl maps terminal lines onto session commands.
type repl struct {
	session *assistant.Session
	out     io.Writer
	name    string
}

func newREPL(session *assistant.Session, out io.Writer) *repl {
	return &repl{session: session, out: out, name: session.Persona().Name}
}

// Run prints the opening line, then handles lines until EOF, /quit or ctx.
func (r *repl) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snap := r.session.Snapshot()
	if len(snap.Messages) > 0 {
		r.say(snap.Messages[0].Content)
	}
	r.mood(snap.MoodSummary)
	for i, prompt := range snap.QuickPrompts {
		fmt.Fprintf(r.out, "  %d) %s\n", i+1, prompt)
	}

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			return err
		case line := <-lines:
			if !r.handle(strings.TrimSpace(line)) {
				return nil
			}
		}
	}
}

// handle returns false when the user asked to quit.
func (r *repl) handle(line string) bool {
	switch line {
	case "":
		return true
	case "/quit", "/exit":
		return false
	case "/stop":
		r.session.Stop()
		fmt.Fprintln(r.out, "(stopped)")
	case "/repeat":
		if !r.session.Repeat() {
			fmt.Fprintln(r.out, "(voice unavailable)")
		}
	case "/auto":
		state := "off"
		if r.session.ToggleAutoVoice() {
			state = "on"
		}
		fmt.Fprintf(r.out, "(auto voice %s)\n", state)
	default:
		if !r.session.Submit(line) {
			return true
		}
		snap := r.session.Snapshot()
		if latest, ok := chat.MostRecent(snap.Messages, chat.RoleAssistant, ""); ok {
			r.say(latest.Content)
		}
		r.mood(snap.MoodSummary)
	}
	return true
}

func (r *repl) say(text string) {
	fmt.Fprintf(r.out, "%s: %s\n", r.name, text)
}

func (r *repl) mood(summary string) {
	fmt.Fprintf(r.out, "[%s]\n", summary)
}
