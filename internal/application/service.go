package application

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/bnema/fishbowl/internal/domain"
	"github.com/bnema/fishbowl/internal/ports"
	"github.com/bnema/fishbowl/internal/random"
)

// Invocation identifies who issued a command and where.
type Invocation struct {
	Actor   domain.UserID
	Channel domain.ChannelID
}

// Service runs game commands against the registry. Each command holds its
// session lock for its whole read-modify-write; notices go out after the lock
// is released.
type Service struct {
	registry  *Registry
	transfers *TransferProtocol
	messenger ports.Messenger
	clock     ports.Clock
	rng       domain.Rand
	settings  Settings
	logger    *log.Logger
}

func NewService(settings Settings, messenger ports.Messenger, clock ports.Clock, rng domain.Rand, logger *log.Logger) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if rng == nil {
		rng = random.NewSource(uint64(clock.Now().UnixNano()))
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Service{
		registry:  NewRegistry(settings.MaxSessions, settings.Limits(), clock),
		transfers: NewTransferProtocol(messenger, settings.ConfirmTimeout, logger),
		messenger: messenger,
		clock:     clock,
		rng:       rng,
		settings:  settings,
		logger:    logger,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

func (s *Service) Transfers() *TransferProtocol {
	return s.transfers
}

// outbox collects notices produced while a session is locked.
type outbox []ports.Notice

func (o *outbox) toUser(user domain.UserID, text string, entries ...string) {
	*o = append(*o, ports.Notice{To: ports.Address{User: user}, Text: text, Entries: entries})
}

func (o *outbox) toChannel(channel domain.ChannelID, text string, entries ...string) {
	*o = append(*o, ports.Notice{To: ports.Address{Channel: channel}, Text: text, Entries: entries})
}

// announce mirrors activity to the home channel when the command came from
// somewhere else.
func (o *outbox) announce(inv Invocation, session *domain.Session, text string) {
	if session.HomeChannel == "" || session.HomeChannel == inv.Channel {
		return
	}
	o.toChannel(session.HomeChannel, fmt.Sprintf("[#%d] %s", session.ID, text))
}

func (s *Service) flush(ctx context.Context, out outbox) {
	for _, notice := range out {
		if err := s.messenger.Notify(ctx, notice); err != nil {
			s.logger.Printf("notify %+v: %v", notice.To, err)
		}
	}
}

func (s *Service) withSession(ctx context.Context, user domain.UserID, fn func(tx *sessionTx, out *outbox) error) error {
	tx, err := s.registry.acquire(user)
	if err != nil {
		return err
	}

	var out outbox
	func() {
		defer tx.release()
		err = fn(tx, &out)
	}()
	s.flush(ctx, out)
	return err
}

func (s *Service) resolve(ctx context.Context, ref string) (domain.UserID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &domain.ValidationError{Reason: "name a player"}
	}
	user, err := s.messenger.ResolveUser(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("resolve player %q: %w", ref, err)
	}
	return user, nil
}

func (s *Service) Start(ctx context.Context, inv Invocation) (domain.Summary, error) {
	summary, err := s.registry.Start(inv.Actor, inv.Channel)
	if err != nil {
		return domain.Summary{}, err
	}
	s.logger.Printf("session #%d started by %s in %q", summary.ID, inv.Actor, inv.Channel)
	return summary, nil
}

func (s *Service) Join(ctx context.Context, inv Invocation, id domain.SessionID) (domain.Summary, error) {
	summary, err := s.registry.Join(inv.Actor, id)
	if err != nil {
		return domain.Summary{}, err
	}
	if summary.HomeChannel != "" && summary.HomeChannel != inv.Channel {
		s.flush(ctx, outbox{{
			To:   ports.Address{Channel: summary.HomeChannel},
			Text: fmt.Sprintf("[#%d] %s joined the session.", id, inv.Actor),
		}})
	}
	return summary, nil
}

// Leave removes the actor. successorRef names the next creator and may be
// empty.
func (s *Service) Leave(ctx context.Context, inv Invocation, successorRef string) (domain.LeaveResult, error) {
	var successor domain.UserID
	if strings.TrimSpace(successorRef) != "" {
		user, err := s.resolve(ctx, successorRef)
		if err != nil {
			return domain.LeaveResult{}, err
		}
		successor = user
	}

	var result domain.LeaveResult
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		var err error
		result, err = tx.session.Leave(inv.Actor, successor, s.rng)
		if err != nil {
			return err
		}
		id := tx.session.ID
		if result.Ended {
			tx.end(inv.Actor)
			s.logger.Printf("session #%d ended: last player %s left", id, inv.Actor)
			return nil
		}

		tx.detach(inv.Actor)
		out.announce(inv, tx.session, fmt.Sprintf("%s left the session.", inv.Actor))
		if result.NewCreator != "" {
			out.toUser(result.NewCreator, fmt.Sprintf("You are now the creator of session #%d.", id))
			out.announce(inv, tx.session, fmt.Sprintf("%s is now the session creator.", result.NewCreator))
		}
		return nil
	})
	return result, err
}

// End disbands the actor's session. Creator only.
func (s *Service) End(ctx context.Context, inv Invocation) (domain.Summary, error) {
	var summary domain.Summary
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		if err := tx.session.RequireCreator(inv.Actor); err != nil {
			return err
		}
		summary = tx.session.Summary()
		for _, player := range tx.session.Players() {
			if player != inv.Actor {
				out.toUser(player, fmt.Sprintf("Session #%d was ended by %s.", summary.ID, inv.Actor))
			}
		}
		tx.end()
		s.logger.Printf("session #%d ended by %s", summary.ID, inv.Actor)
		return nil
	})
	return summary, err
}

func (s *Service) Info(ctx context.Context, inv Invocation) (domain.Summary, error) {
	var summary domain.Summary
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, _ *outbox) error {
		summary = tx.session.Summary()
		return nil
	})
	return summary, err
}

// Add puts texts in the bowl or in the actor's hand.
func (s *Service) Add(ctx context.Context, inv Invocation, target domain.PileKind, texts []string) (domain.AddResult, error) {
	if len(texts) == 0 {
		return domain.AddResult{}, &domain.ValidationError{Reason: "give me at least one scrap"}
	}

	var result domain.AddResult
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		var err error
		switch target {
		case domain.PileBowl:
			result, err = tx.session.AddToBowl(inv.Actor, texts)
		case domain.PileHand:
			result, err = tx.session.AddToHand(inv.Actor, texts)
		default:
			err = &domain.ValidationError{Reason: "cannot add to", Value: string(target)}
		}
		if err != nil {
			return err
		}
		if len(result.Added) > 0 {
			out.announce(inv, tx.session, fmt.Sprintf("%s added %d scrap(s) to the %s.", inv.Actor, len(result.Added), target))
		}
		return nil
	})
	return result, err
}

func (s *Service) Draw(ctx context.Context, inv Invocation, source domain.PileKind, args []string) (domain.DrawResult, error) {
	spec, err := domain.ParseDrawSpec(args)
	if err != nil {
		return domain.DrawResult{}, err
	}

	var result domain.DrawResult
	err = s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		var err error
		result, err = tx.session.Draw(inv.Actor, source, spec, s.rng)
		if err != nil {
			return err
		}
		if len(result.Drawn) > 0 {
			out.announce(inv, tx.session, fmt.Sprintf("%s drew %d scrap(s) from the %s.", inv.Actor, len(result.Drawn), source))
		}
		return nil
	})
	return result, err
}

func (s *Service) Peek(ctx context.Context, inv Invocation, n int) ([]domain.Scrap, error) {
	var scraps []domain.Scrap
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, _ *outbox) error {
		var err error
		scraps, err = tx.session.Peek(inv.Actor, n, s.rng)
		return err
	})
	return scraps, err
}

func (s *Service) Hand(ctx context.Context, inv Invocation) ([]domain.Scrap, error) {
	var hand []domain.Scrap
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, _ *outbox) error {
		var err error
		hand, err = tx.session.Hand(inv.Actor)
		return err
	})
	return hand, err
}

// See lists the bowl or the discard pile.
func (s *Service) See(ctx context.Context, inv Invocation, pile domain.PileKind) ([]domain.Scrap, error) {
	var scraps []domain.Scrap
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, _ *outbox) error {
		var err error
		scraps, err = tx.session.Pile(pile)
		return err
	})
	return scraps, err
}

func (s *Service) Edit(ctx context.Context, inv Invocation, oldValue, newValue string) (domain.EditResult, error) {
	var result domain.EditResult
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		var err error
		result, err = tx.session.Edit(inv.Actor, oldValue, newValue)
		if err != nil {
			return err
		}
		if result.Scope == domain.PileBowl {
			out.announce(inv, tx.session, fmt.Sprintf("%s edited a scrap in the bowl.", inv.Actor))
		}
		return nil
	})
	return result, err
}

// Move sends scraps from the actor's hand by value, or the whole hand when
// all is set.
func (s *Service) Move(ctx context.Context, inv Invocation, kind domain.MoveKind, queries []string, all bool) (domain.MoveResult, error) {
	var result domain.MoveResult
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		var err error
		if all {
			result, err = tx.session.MoveHand(inv.Actor, kind)
		} else {
			result, err = tx.session.Move(inv.Actor, kind, queries)
		}
		if err != nil {
			return err
		}
		if len(result.Moved) > 0 {
			out.announce(inv, tx.session, fmt.Sprintf("%s: %s %d scrap(s).", inv.Actor, kind, len(result.Moved)))
		}
		return nil
	})
	return result, err
}

func (s *Service) Recall(ctx context.Context, inv Invocation) (int, error) {
	var n int
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		var err error
		if n, err = tx.session.RecallHands(inv.Actor); err != nil {
			return err
		}
		out.announce(inv, tx.session, fmt.Sprintf("%s returned every hand to the bowl.", inv.Actor))
		return nil
	})
	return n, err
}

func (s *Service) Shuffle(ctx context.Context, inv Invocation) (int, error) {
	var n int
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		var err error
		if n, err = tx.session.ShuffleDiscard(inv.Actor); err != nil {
			return err
		}
		out.announce(inv, tx.session, fmt.Sprintf("%s shuffled the discard pile into the bowl.", inv.Actor))
		return nil
	})
	return n, err
}

func (s *Service) Reset(ctx context.Context, inv Invocation, scope domain.ResetScope) (domain.Summary, error) {
	var summary domain.Summary
	err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		if err := tx.session.Reset(inv.Actor, scope); err != nil {
			return err
		}
		summary = tx.session.Summary()
		out.announce(inv, tx.session, fmt.Sprintf("%s reset %s.", inv.Actor, scope))
		return nil
	})
	return summary, err
}

func (s *Service) Ban(ctx context.Context, inv Invocation, targetRef string) (domain.BanResult, domain.UserID, error) {
	target, err := s.resolve(ctx, targetRef)
	if err != nil {
		return domain.BanResult{}, "", err
	}

	var result domain.BanResult
	err = s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		var err error
		result, err = tx.session.Ban(inv.Actor, target, s.settings.BotID)
		if err != nil {
			return err
		}
		if result.Removed {
			tx.detach(target)
			out.toUser(target, fmt.Sprintf("You were removed from session #%d.", tx.session.ID))
			out.announce(inv, tx.session, fmt.Sprintf("%s was banned from the session.", target))
		}
		s.logger.Printf("session #%d: %s banned %s", tx.session.ID, inv.Actor, target)
		return nil
	})
	return result, target, err
}

func (s *Service) Unban(ctx context.Context, inv Invocation, targetRef string) (domain.UserID, error) {
	target, err := s.resolve(ctx, targetRef)
	if err != nil {
		return "", err
	}

	err = s.withSession(ctx, inv.Actor, func(tx *sessionTx, _ *outbox) error {
		return tx.session.Unban(inv.Actor, target, s.settings.BotID)
	})
	return target, err
}

// ShowHand shows the actor's hand to the invocation channel when public, or
// to one other player once they accept.
func (s *Service) ShowHand(ctx context.Context, inv Invocation, targetRef string, public bool) ([]domain.Scrap, error) {
	if public {
		var hand []domain.Scrap
		err := s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
			var err error
			if hand, err = tx.session.Hand(inv.Actor); err != nil {
				return err
			}
			out.toChannel(inv.Channel, fmt.Sprintf("%s's hand (%d):", inv.Actor, len(hand)), domain.Texts(hand)...)
			return nil
		})
		return hand, err
	}

	target, err := s.resolve(ctx, targetRef)
	if err != nil {
		return nil, err
	}
	var staged *sessionEntry
	err = s.withSession(ctx, inv.Actor, func(tx *sessionTx, _ *outbox) error {
		if target == inv.Actor {
			return fmt.Errorf("%w: use hand to see your own hand", domain.ErrSelfTarget)
		}
		if !tx.session.IsPlayer(target) {
			return fmt.Errorf("player %s: %w", target, domain.ErrNotInSession)
		}
		staged = tx.entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.transfers.Request(ctx, TransferRequest{
		Requester: inv.Actor,
		Target:    target,
		Prompt: ports.Notice{
			To:   ports.Address{User: target},
			Text: fmt.Sprintf("%s wants to show you their hand. Accept?", inv.Actor),
		},
	})
	if err != nil {
		return nil, err
	}

	var hand []domain.Scrap
	err = s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		if tx.entry != staged || !tx.session.IsPlayer(target) {
			return fmt.Errorf("player %s: %w", target, domain.ErrNotInSession)
		}
		var err error
		if hand, err = tx.session.Hand(inv.Actor); err != nil {
			return err
		}
		out.toUser(target, fmt.Sprintf("%s's hand (%d):", inv.Actor, len(hand)), domain.Texts(hand)...)
		return nil
	})
	return hand, err
}

// Transfer passes scraps to, or takes them from, another player. Nothing
// moves until the target consents; matched scraps are committed by identity
// so a hand that changed during the wait fails the whole transfer.
func (s *Service) Transfer(ctx context.Context, inv Invocation, dir domain.TransferDirection, targetRef string, args []string) (domain.TransferPlan, error) {
	target, err := s.resolve(ctx, targetRef)
	if err != nil {
		return domain.TransferPlan{}, err
	}

	// Ids are reused once a session ends, so the commit is pinned to the
	// session instance the plan was staged against.
	var plan domain.TransferPlan
	var staged *sessionEntry
	var sessionID domain.SessionID
	err = s.withSession(ctx, inv.Actor, func(tx *sessionTx, _ *outbox) error {
		var err error
		plan, err = tx.session.StageTransfer(inv.Actor, target, dir, args, s.rng)
		staged, sessionID = tx.entry, tx.session.ID
		return err
	})
	if err != nil || len(plan.Scraps) == 0 {
		return plan, err
	}

	err = s.transfers.Request(ctx, TransferRequest{
		Requester: inv.Actor,
		Target:    target,
		Prompt:    transferPrompt(plan),
	})
	if err != nil {
		return domain.TransferPlan{}, err
	}

	err = s.withSession(ctx, inv.Actor, func(tx *sessionTx, out *outbox) error {
		if tx.entry != staged {
			return fmt.Errorf("session #%d: %w", sessionID, domain.ErrNotFound)
		}
		if err := tx.session.CommitTransfer(plan); err != nil {
			return err
		}
		texts := domain.Texts(plan.Scraps)
		n := len(plan.Scraps)
		if dir == domain.TransferPass {
			out.toUser(plan.To, fmt.Sprintf("%s passed you %d scrap(s):", plan.From, n), texts...)
			out.announce(inv, tx.session, fmt.Sprintf("%s passed %d scrap(s) to %s.", plan.From, n, plan.To))
		} else {
			out.toUser(plan.From, fmt.Sprintf("%s took %d scrap(s) from you:", plan.To, n), texts...)
			out.announce(inv, tx.session, fmt.Sprintf("%s took %d scrap(s) from %s.", plan.To, n, plan.From))
		}
		return nil
	})
	if err != nil {
		return domain.TransferPlan{}, err
	}
	s.logger.Printf("session #%d: %s %s %d scrap(s) with %s", sessionID, inv.Actor, dir, len(plan.Scraps), target)
	return plan, nil
}

func transferPrompt(plan domain.TransferPlan) ports.Notice {
	verb := "pass you"
	if plan.Direction == domain.TransferTake {
		verb = "take from you"
	}
	text := fmt.Sprintf("%s wants to %s %d scrap(s). Accept?", plan.Requester, verb, len(plan.Scraps))

	notice := ports.Notice{To: ports.Address{User: plan.Target}, Text: text}
	if !plan.Random {
		notice.Entries = domain.Texts(plan.Scraps)
	}
	return notice
}

// Sweep ends idle sessions and tells their players.
func (s *Service) Sweep(ctx context.Context) []domain.Summary {
	evicted := s.registry.Sweep(s.clock.Now(), s.settings.SessionTimeout)

	var out outbox
	for _, summary := range evicted {
		s.logger.Printf("session #%d evicted after %s idle", summary.ID, s.settings.SessionTimeout)
		for _, player := range summary.Players {
			text := fmt.Sprintf("Session #%d ended after %s without activity.", summary.ID, s.settings.SessionTimeout)
			if player.User == summary.Creator {
				text += " Use end when you are done next time."
			}
			out.toUser(player.User, text)
		}
	}
	s.flush(ctx, out)
	return evicted
}
