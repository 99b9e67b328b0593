// Package console is a Messenger for a shared terminal. Every player types
// into the same prompt, so users are plain names and confirmations are
// answered by lines such as "bob yes".
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bnema/fishbowl/internal/domain"
	"github.com/bnema/fishbowl/internal/ports"
)

var ErrNoPendingPrompt = errors.New("no request is waiting for an answer")

// Formatter turns a notice into the text printed for it.
type Formatter func(ports.Notice) string

type Messenger struct {
	mu       sync.Mutex
	out      io.Writer
	format   Formatter
	known    map[domain.UserID]struct{}
	pending  map[domain.UserID][]chan bool
	prompted chan domain.UserID
}

var _ ports.Messenger = (*Messenger)(nil)

func New(out io.Writer, format Formatter) *Messenger {
	if format == nil {
		format = PlainFormat
	}

	return &Messenger{
		out:      out,
		format:   format,
		known:    map[domain.UserID]struct{}{},
		pending:  map[domain.UserID][]chan bool{},
		prompted: make(chan domain.UserID, 16),
	}
}

// Write serializes writes to the terminal with notices and prompts.
func (m *Messenger) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.Write(p)
}

// Register makes a name resolvable. The REPL registers every user who types.
func (m *Messenger) Register(user domain.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.known[user] = struct{}{}
}

func (m *Messenger) ResolveUser(_ context.Context, ref string) (domain.UserID, error) {
	name := domain.UserID(strings.TrimPrefix(strings.TrimSpace(ref), "@"))

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.known[name]; !ok || name == "" {
		return "", fmt.Errorf("player %q: %w", ref, domain.ErrNotFound)
	}
	return name, nil
}

func (m *Messenger) Notify(ctx context.Context, notice ports.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(m, m.format(notice))
	return err
}

// RequestConfirmation prints the prompt and parks until Respond answers it
// or ctx is done.
func (m *Messenger) RequestConfirmation(ctx context.Context, target domain.UserID, prompt ports.Notice) (ports.Confirmation, error) {
	answer := make(chan bool, 1)

	m.mu.Lock()
	m.pending[target] = append(m.pending[target], answer)
	prompt.To = ports.Address{User: target}
	prompt.Text = fmt.Sprintf("%s [%s yes|no]", prompt.Text, target)
	_, err := io.WriteString(m.out, m.format(prompt))
	m.mu.Unlock()
	if err != nil {
		m.drop(target, answer)
		return ports.ConfirmationTimedOut, fmt.Errorf("write prompt: %w", err)
	}

	select {
	case m.prompted <- target:
	default:
	}

	select {
	case accepted := <-answer:
		if accepted {
			return ports.ConfirmationAccepted, nil
		}
		return ports.ConfirmationDenied, nil
	case <-ctx.Done():
		m.drop(target, answer)
		return ports.ConfirmationTimedOut, nil
	}
}

// Respond answers the oldest prompt waiting on user.
func (m *Messenger) Respond(user domain.UserID, accepted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.pending[user]
	if len(queue) == 0 {
		return fmt.Errorf("%s: %w", user, ErrNoPendingPrompt)
	}
	answer := queue[0]
	m.setQueue(user, queue[1:])
	answer <- accepted
	return nil
}

// Prompted yields the target of each prompt as it is printed.
func (m *Messenger) Prompted() <-chan domain.UserID {
	return m.prompted
}

// Waiting reports how many prompts are parked on user.
func (m *Messenger) Waiting(user domain.UserID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending[user])
}

func (m *Messenger) drop(user domain.UserID, answer chan bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.pending[user]
	for i, ch := range queue {
		if ch == answer {
			m.setQueue(user, append(queue[:i:i], queue[i+1:]...))
			return
		}
	}
}

func (m *Messenger) setQueue(user domain.UserID, queue []chan bool) {
	if len(queue) == 0 {
		delete(m.pending, user)
		return
	}
	m.pending[user] = queue
}

// PlainFormat writes a notice as an addressed line followed by its entries.
func PlainFormat(notice ports.Notice) string {
	var b strings.Builder
	switch {
	case notice.To.User != "":
		fmt.Fprintf(&b, "@%s: ", notice.To.User)
	case notice.To.Channel != "":
		fmt.Fprintf(&b, "#%s: ", notice.To.Channel)
	}
	if notice.Title != "" {
		b.WriteString(notice.Title)
		b.WriteString(" ")
	}
	b.WriteString(notice.Text)
	b.WriteString("\n")
	for _, entry := range notice.Entries {
		fmt.Fprintf(&b, "  - %s\n", entry)
	}
	return b.String()
}
