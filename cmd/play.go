package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/fishbowl/internal/adapters/messenger/console"
	"github.com/bnema/fishbowl/internal/application"
	"github.com/bnema/fishbowl/internal/domain"
)

func newPlayCmd(opts *rootOptions) *cobra.Command {
	var (
		channel        string
		confirmTimeout time.Duration
		seed           uint64
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play at a shared terminal",
		Long: `Reads one command per line in the form "<player>[@channel] <command> [args]",
for example "alice add cat \"sea lion\"" or "bob@lobby draw 2".
Answer a pass, take or show request with "<player> yes" or "<player> no".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("confirm-timeout") {
				settings.ConfirmTimeout = confirmTimeout
				if err := settings.Validate(); err != nil {
					return err
				}
			}

			app, err := wireApp(settings, cmd.OutOrStdout(), cmd.ErrOrStderr(), seed)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go app.service.RunSweeper(ctx)

			return newTable(app, domain.ChannelID(channel)).run(ctx, cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "table", "channel commands are typed in unless a line names one")
	cmd.Flags().DurationVar(&confirmTimeout, "confirm-timeout", 0, "how long a pass, take or show request waits for an answer")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for draws and shuffles (0 picks one at random)")

	return cmd
}

// table feeds typed lines to the game. Commands run one at a time; a command
// waiting for another player's answer is parked so the next line can run.
type table struct {
	app     *app
	channel domain.ChannelID
	parked  map[domain.UserID][]<-chan struct{}
	wg      sync.WaitGroup
}

func newTable(app *app, channel domain.ChannelID) *table {
	return &table{
		app:     app,
		channel: channel,
		parked:  map[domain.UserID][]<-chan struct{}{},
	}
}

func (t *table) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		t.handle(ctx, raw)
	}

	// Parked requests still resolve, by timeout if nobody answers.
	t.wg.Wait()
	return scanner.Err()
}

func (t *table) handle(ctx context.Context, raw string) {
	l, err := parseLine(raw, t.channel)
	if err != nil {
		t.printError("", err)
		return
	}
	t.app.messenger.Register(l.user)

	switch l.verb {
	case "yes", "y":
		t.answer(l.user, true)
		return
	case "no", "n":
		t.answer(l.user, false)
		return
	}

	cmd, err := parseCommand(l.verb, l.args)
	if err != nil {
		t.printError(l.user, err)
		return
	}
	t.await(t.launch(ctx, application.Invocation{Actor: l.user, Channel: l.channel}, cmd))
}

func (t *table) launch(ctx context.Context, inv application.Invocation, cmd application.Command) <-chan struct{} {
	done := make(chan struct{})
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(done)

		result, err := t.app.service.Execute(ctx, inv, cmd)
		if err != nil {
			t.printError(inv.Actor, err)
			return
		}
		rendered, err := t.app.renderer.Result(cmd, result)
		if err != nil {
			t.app.logger.Printf("render %s: %v", cmd.Name(), err)
			t.printError(inv.Actor, domain.ErrInternal)
			return
		}
		t.print(inv.Actor, rendered)
	}()
	return done
}

// await blocks until the command finishes or parks on a confirmation. Only
// the command being awaited can print a new prompt; parked ones already did.
func (t *table) await(done <-chan struct{}) {
	select {
	case <-done:
		select {
		case <-t.app.messenger.Prompted():
		default:
		}
	case target := <-t.app.messenger.Prompted():
		t.parked[target] = append(t.parked[target], done)
	}
}

// answer resolves the oldest request waiting on user, then lets the command
// that asked run to completion.
func (t *table) answer(user domain.UserID, accepted bool) {
	queue := t.parked[user][:0]
	for _, done := range t.parked[user] {
		if !isClosed(done) {
			queue = append(queue, done)
		}
	}

	if err := t.app.messenger.Respond(user, accepted); err != nil {
		t.parked[user] = queue
		if errors.Is(err, console.ErrNoPendingPrompt) {
			t.print(user, "Nothing is waiting for your answer.")
			return
		}
		t.printError(user, err)
		return
	}

	if len(queue) == 0 {
		delete(t.parked, user)
		return
	}
	next := queue[0]
	t.parked[user] = queue[1:]
	t.await(next)
}

func (t *table) print(user domain.UserID, text string) {
	fmt.Fprintf(t.app.messenger, "%s> %s\n", user, text)
}

func (t *table) printError(user domain.UserID, err error) {
	if user == "" {
		fmt.Fprintf(t.app.messenger, "! %s\n", t.app.renderer.Error(err))
		return
	}
	fmt.Fprintf(t.app.messenger, "%s> %s\n", user, t.app.renderer.Error(err))
}

func isClosed(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
