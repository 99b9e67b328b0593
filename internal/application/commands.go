package application

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/bnema/fishbowl/internal/domain"
)

// Command is one game action with its arguments already typed.
type Command interface {
	Name() string
}

type StartCommand struct{}

type JoinCommand struct {
	Session domain.SessionID
}

type LeaveCommand struct {
	Successor string
}

type EndCommand struct{}

type InfoCommand struct{}

type CheckCommand struct{}

type AddCommand struct {
	Target domain.PileKind
	Scraps []string
}

type DrawCommand struct {
	Source domain.PileKind
	Args   []string
}

type PeekCommand struct {
	Count int
}

type HandCommand struct{}

type SeeCommand struct {
	Pile domain.PileKind
}

type EditCommand struct {
	Old string
	New string
}

type MoveCommand struct {
	Kind   domain.MoveKind
	Scraps []string
	All    bool
}

type RecallCommand struct{}

type ShuffleCommand struct{}

type ResetCommand struct {
	Scope domain.ResetScope
}

type BanCommand struct {
	Target string
}

type UnbanCommand struct {
	Target string
}

type ShowHandCommand struct {
	Target string
	Public bool
}

type TransferCommand struct {
	Direction domain.TransferDirection
	Target    string
	Args      []string
}

func (StartCommand) Name() string    { return "start" }
func (JoinCommand) Name() string     { return "join" }
func (LeaveCommand) Name() string    { return "leave" }
func (EndCommand) Name() string      { return "end" }
func (InfoCommand) Name() string     { return "info" }
func (CheckCommand) Name() string    { return "check" }
func (c AddCommand) Name() string    { return "add to " + string(c.Target) }
func (c DrawCommand) Name() string   { return "draw from " + string(c.Source) }
func (PeekCommand) Name() string     { return "peek" }
func (HandCommand) Name() string     { return "hand" }
func (SeeCommand) Name() string      { return "see" }
func (EditCommand) Name() string     { return "edit" }
func (c MoveCommand) Name() string   { return string(c.Kind) }
func (RecallCommand) Name() string   { return "recall" }
func (ShuffleCommand) Name() string  { return "shuffle" }
func (ResetCommand) Name() string    { return "reset" }
func (BanCommand) Name() string      { return "ban" }
func (UnbanCommand) Name() string    { return "unban" }
func (ShowHandCommand) Name() string { return "show" }
func (c TransferCommand) Name() string {
	return string(c.Direction)
}

// Result carries what a command produced. Only the fields that command fills
// are set.
type Result struct {
	Summary  *domain.Summary
	Add      *domain.AddResult
	Draw     *domain.DrawResult
	Move     *domain.MoveResult
	Edit     *domain.EditResult
	Leave    *domain.LeaveResult
	Ban      *domain.BanResult
	Transfer *domain.TransferPlan
	Scraps   []domain.Scrap
	Count    int
	User     domain.UserID
}

// Execute dispatches cmd. A panic inside a command is logged and reported as
// ErrInternal.
func (s *Service) Execute(ctx context.Context, inv Invocation, cmd Command) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("command %q by %s panicked: %v\n%s", cmd.Name(), inv.Actor, r, debug.Stack())
			result, err = Result{}, domain.ErrInternal
		}
	}()

	switch c := cmd.(type) {
	case StartCommand:
		summary, err := s.Start(ctx, inv)
		return Result{Summary: &summary}, err
	case JoinCommand:
		summary, err := s.Join(ctx, inv, c.Session)
		return Result{Summary: &summary}, err
	case LeaveCommand:
		leave, err := s.Leave(ctx, inv, c.Successor)
		return Result{Leave: &leave}, err
	case EndCommand:
		summary, err := s.End(ctx, inv)
		return Result{Summary: &summary}, err
	case InfoCommand, CheckCommand:
		summary, err := s.Info(ctx, inv)
		return Result{Summary: &summary}, err
	case AddCommand:
		add, err := s.Add(ctx, inv, c.Target, c.Scraps)
		return Result{Add: &add}, err
	case DrawCommand:
		draw, err := s.Draw(ctx, inv, c.Source, c.Args)
		return Result{Draw: &draw}, err
	case PeekCommand:
		scraps, err := s.Peek(ctx, inv, c.Count)
		return Result{Scraps: scraps, Count: c.Count}, err
	case HandCommand:
		scraps, err := s.Hand(ctx, inv)
		return Result{Scraps: scraps}, err
	case SeeCommand:
		scraps, err := s.See(ctx, inv, c.Pile)
		return Result{Scraps: scraps}, err
	case EditCommand:
		edit, err := s.Edit(ctx, inv, c.Old, c.New)
		return Result{Edit: &edit}, err
	case MoveCommand:
		move, err := s.Move(ctx, inv, c.Kind, c.Scraps, c.All)
		return Result{Move: &move}, err
	case RecallCommand:
		n, err := s.Recall(ctx, inv)
		return Result{Count: n}, err
	case ShuffleCommand:
		n, err := s.Shuffle(ctx, inv)
		return Result{Count: n}, err
	case ResetCommand:
		summary, err := s.Reset(ctx, inv, c.Scope)
		return Result{Summary: &summary}, err
	case BanCommand:
		ban, user, err := s.Ban(ctx, inv, c.Target)
		return Result{Ban: &ban, User: user}, err
	case UnbanCommand:
		user, err := s.Unban(ctx, inv, c.Target)
		return Result{User: user}, err
	case ShowHandCommand:
		scraps, err := s.ShowHand(ctx, inv, c.Target, c.Public)
		return Result{Scraps: scraps}, err
	case TransferCommand:
		plan, err := s.Transfer(ctx, inv, c.Direction, c.Target, c.Args)
		return Result{Transfer: &plan}, err
	default:
		return Result{}, fmt.Errorf("%w: unknown command %T", domain.ErrInternal, cmd)
	}
}
