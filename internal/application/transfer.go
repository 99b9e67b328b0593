package application

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/fishbowl/internal/domain"
	"github.com/bnema/fishbowl/internal/ports"
)

type transferPair struct {
	requester domain.UserID
	target    domain.UserID
}

// TransferRequest asks Target to consent to something Requester wants to do
// to their hand.
type TransferRequest struct {
	Requester domain.UserID
	Target    domain.UserID
	Prompt    ports.Notice
}

// TransferProtocol runs the consent handshake between two players. At most
// one request is in flight per ordered pair.
type TransferProtocol struct {
	messenger ports.Messenger
	timeout   time.Duration
	logger    *log.Logger

	mu      sync.Mutex
	pending map[transferPair]string
}

func NewTransferProtocol(messenger ports.Messenger, timeout time.Duration, logger *log.Logger) *TransferProtocol {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &TransferProtocol{
		messenger: messenger,
		timeout:   timeout,
		logger:    logger,
		pending:   map[transferPair]string{},
	}
}

// Request blocks until the target accepts, denies, or the timeout passes.
// It returns nil only on acceptance. The pair is free again when it returns.
func (p *TransferProtocol) Request(ctx context.Context, req TransferRequest) error {
	pair := transferPair{requester: req.Requester, target: req.Target}
	requestID, err := p.claim(pair)
	if err != nil {
		return err
	}
	defer p.release(pair)

	waitCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type answer struct {
		confirmation ports.Confirmation
		err          error
	}
	answers := make(chan answer, 1)
	go func() {
		confirmation, err := p.messenger.RequestConfirmation(waitCtx, req.Target, req.Prompt)
		answers <- answer{confirmation: confirmation, err: err}
	}()

	outcome := ports.ConfirmationTimedOut
	select {
	case a := <-answers:
		if a.err != nil {
			p.logger.Printf("transfer %s: confirmation from %s failed: %v", requestID, req.Target, a.err)
			return fmt.Errorf("request confirmation from %s: %w", req.Target, a.err)
		}
		outcome = a.confirmation
	case <-waitCtx.Done():
	}
	p.logger.Printf("transfer %s: %s -> %s %s", requestID, req.Requester, req.Target, outcome)

	switch outcome {
	case ports.ConfirmationAccepted:
		return nil
	case ports.ConfirmationDenied:
		p.notify(ctx, req.Requester, fmt.Sprintf("%s denied your request.", req.Target))
		return domain.ErrRequestDenied
	default:
		p.notify(ctx, req.Requester, fmt.Sprintf("%s did not answer in time.", req.Target))
		p.notify(ctx, req.Target, fmt.Sprintf("The request from %s timed out.", req.Requester))
		return domain.ErrRequestTimedOut
	}
}

// Pending reports whether a request from requester to target is in flight.
func (p *TransferProtocol) Pending(requester, target domain.UserID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.pending[transferPair{requester: requester, target: target}]
	return ok
}

func (p *TransferProtocol) claim(pair transferPair) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, busy := p.pending[pair]; busy {
		return "", fmt.Errorf("%s -> %s: %w", pair.requester, pair.target, domain.ErrAlreadyPending)
	}
	id := uuid.NewString()
	p.pending[pair] = id
	return id, nil
}

func (p *TransferProtocol) release(pair transferPair) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.pending, pair)
}

func (p *TransferProtocol) notify(ctx context.Context, user domain.UserID, text string) {
	if err := p.messenger.Notify(ctx, ports.Notice{To: ports.Address{User: user}, Text: text}); err != nil {
		p.logger.Printf("notify %s: %v", user, err)
	}
}
