package text

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bnema/fishbowl/internal/application"
	"github.com/bnema/fishbowl/internal/domain"
	"github.com/bnema/fishbowl/internal/ports"
)

const (
	scrapsKey  = "%d scraps"
	playersKey = "%d players"
)

var registerPlurals = sync.OnceValue(func() error {
	if err := message.Set(language.English, scrapsKey,
		plural.Selectf(1, "%d", "=1", "%d scrap", "other", "%d scraps")); err != nil {
		return fmt.Errorf("register %q: %w", scrapsKey, err)
	}
	if err := message.Set(language.English, playersKey,
		plural.Selectf(1, "%d", "=1", "%d player", "other", "%d players")); err != nil {
		return fmt.Errorf("register %q: %w", playersKey, err)
	}
	return nil
})

// Renderer turns command outcomes into the text players read.
type Renderer struct {
	styles  styles
	printer *message.Printer
	catalog *Catalog
	limits  domain.Limits
}

func NewRenderer(limits domain.Limits) (*Renderer, error) {
	if err := registerPlurals(); err != nil {
		return nil, err
	}
	return &Renderer{
		styles:  newStyles(),
		printer: message.NewPrinter(language.English),
		catalog: DefaultCatalog(),
		limits:  limits,
	}, nil
}

func (r *Renderer) scraps(n int) string {
	return r.printer.Sprintf(scrapsKey, n)
}

func (r *Renderer) players(n int) string {
	return r.printer.Sprintf(playersKey, n)
}

func (r *Renderer) list(header string, scraps []domain.Scrap) string {
	lines := []string{header}
	for _, scrap := range scraps {
		lines = append(lines, r.styles.entry.Render("  - "+scrap.Text))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) missing(text string, notFound []string) string {
	if len(notFound) == 0 {
		return text
	}
	return text + "\n" + r.styles.warning.Render("Couldn't find: "+strings.Join(notFound, ", "))
}

// Result describes what cmd did for the player who ran it.
func (r *Renderer) Result(cmd application.Command, res application.Result) (string, error) {
	switch c := cmd.(type) {
	case application.StartCommand:
		return r.styles.success.Render(fmt.Sprintf("Started session #%d! Others can join with join %d.", res.Summary.ID, res.Summary.ID)), nil
	case application.JoinCommand:
		return r.styles.success.Render(fmt.Sprintf("Joined session #%d with %s.", res.Summary.ID, r.players(len(res.Summary.Players)))), nil
	case application.LeaveCommand:
		return r.leave(*res.Leave), nil
	case application.EndCommand:
		return fmt.Sprintf("Ended session #%d.", res.Summary.ID), nil
	case application.InfoCommand, application.CheckCommand:
		return RenderBoard(*res.Summary, r.limits)
	case application.AddCommand:
		return r.add(c.Target, *res.Add), nil
	case application.DrawCommand:
		return r.draw(*res.Draw), nil
	case application.PeekCommand:
		return r.list(fmt.Sprintf("Peeking at %s in the bowl:", r.scraps(len(res.Scraps))), res.Scraps), nil
	case application.HandCommand:
		if len(res.Scraps) == 0 {
			return r.styles.empty.Render("Your hand is empty."), nil
		}
		return r.list(fmt.Sprintf("Your hand (%s):", r.scraps(len(res.Scraps))), res.Scraps), nil
	case application.SeeCommand:
		if len(res.Scraps) == 0 {
			return r.styles.empty.Render(fmt.Sprintf("The %s is empty.", c.Pile)), nil
		}
		return r.list(fmt.Sprintf("The %s holds %s:", c.Pile, r.scraps(len(res.Scraps))), res.Scraps), nil
	case application.EditCommand:
		return fmt.Sprintf("Edited a scrap in the %s: %s", res.Edit.Scope, res.Edit.Scrap.Text), nil
	case application.MoveCommand:
		return r.move(*res.Move), nil
	case application.RecallCommand:
		return fmt.Sprintf("Returned %s from every hand to the bowl.", r.scraps(res.Count)), nil
	case application.ShuffleCommand:
		return fmt.Sprintf("Shuffled %s from the discard pile into the bowl.", r.scraps(res.Count)), nil
	case application.ResetCommand:
		return fmt.Sprintf("Reset %s. The session now holds %s.", c.Scope, r.scraps(res.Summary.Total)), nil
	case application.BanCommand:
		text := fmt.Sprintf("Banned %s.", res.User)
		if res.Ban.Removed {
			text += fmt.Sprintf(" They were removed and %s left the game.", r.scraps(len(res.Ban.Forfeited)))
		}
		return text, nil
	case application.UnbanCommand:
		return fmt.Sprintf("Unbanned %s.", res.User), nil
	case application.ShowHandCommand:
		if c.Public {
			return fmt.Sprintf("Showed %s to the channel.", r.scraps(len(res.Scraps))), nil
		}
		return fmt.Sprintf("Showed %s to %s.", r.scraps(len(res.Scraps)), c.Target), nil
	case application.TransferCommand:
		return r.transfer(*res.Transfer), nil
	default:
		return "", fmt.Errorf("render %T: %w", cmd, domain.ErrInternal)
	}
}

func (r *Renderer) leave(result domain.LeaveResult) string {
	text := "You left the session."
	if len(result.Forfeited) > 0 {
		text += fmt.Sprintf(" Your %s left with you.", r.scraps(len(result.Forfeited)))
	}
	if result.Ended {
		text += " It had no players left and has ended."
	} else if result.NewCreator != "" {
		text += fmt.Sprintf(" %s is the new creator.", result.NewCreator)
	}
	return text
}

func (r *Renderer) add(target domain.PileKind, result domain.AddResult) string {
	where := "the bowl"
	if target == domain.PileHand {
		where = "your hand"
	}

	lines := []string{fmt.Sprintf("Added %s to %s (now %d).", r.scraps(len(result.Added)), where, result.PileSize)}
	if len(result.Rejected) > 0 {
		lines = append(lines, r.styles.warning.Render(fmt.Sprintf("Rejected %s:", r.scraps(len(result.Rejected)))))
		for _, rejected := range result.Rejected {
			lines = append(lines, r.styles.warning.Render(fmt.Sprintf("  - %s (%s)", rejected.Text, reasonOf(rejected.Err))))
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) draw(result domain.DrawResult) string {
	text := r.list(fmt.Sprintf("Drew %s from the %s:", r.scraps(len(result.Drawn)), result.Source), result.Drawn)
	return r.missing(text, result.NotFound)
}

func (r *Renderer) move(result domain.MoveResult) string {
	var header string
	switch result.Kind {
	case domain.MoveDiscard:
		header = fmt.Sprintf("Discarded %s:", r.scraps(len(result.Moved)))
	case domain.MoveDestroy:
		header = fmt.Sprintf("Destroyed %s:", r.scraps(len(result.Moved)))
	default:
		header = fmt.Sprintf("Returned %s to the bowl:", r.scraps(len(result.Moved)))
	}
	return r.missing(r.list(header, result.Moved), result.NotFound)
}

func (r *Renderer) transfer(plan domain.TransferPlan) string {
	if len(plan.Scraps) == 0 {
		return r.missing(r.styles.empty.Render("Nothing to "+string(plan.Direction)+"."), plan.NotFound)
	}

	var header string
	if plan.Direction == domain.TransferPass {
		header = fmt.Sprintf("Passed %s to %s:", r.scraps(len(plan.Scraps)), plan.To)
	} else {
		header = fmt.Sprintf("Took %s from %s:", r.scraps(len(plan.Scraps)), plan.From)
	}
	return r.missing(r.list(header, plan.Scraps), plan.NotFound)
}

// Error renders err through the message catalog.
func (r *Renderer) Error(err error) string {
	code := CodeOf(err)
	return r.styles.failure.Render(r.catalog.Format(code, map[string]string{"Detail": detailOf(err)}))
}

// Notice formats a message addressed to a player or channel.
func (r *Renderer) Notice(notice ports.Notice) string {
	var b strings.Builder
	switch {
	case notice.To.User != "":
		b.WriteString(r.styles.header.Render("@" + string(notice.To.User) + ":"))
		b.WriteString(" ")
	case notice.To.Channel != "":
		b.WriteString(r.styles.header.Render("#" + string(notice.To.Channel) + ":"))
		b.WriteString(" ")
	}
	if notice.Title != "" {
		b.WriteString(r.styles.title.Render(notice.Title))
		b.WriteString(" ")
	}
	b.WriteString(notice.Text)
	b.WriteString("\n")
	for _, entry := range notice.Entries {
		b.WriteString(r.styles.entry.Render("  - " + entry))
		b.WriteString("\n")
	}
	return b.String()
}

// detailOf is the part of err worth showing beyond its code.
func detailOf(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		if verr.Value == "" {
			return verr.Reason
		}
		return fmt.Sprintf("%s: %s", verr.Reason, verr.Value)
	}

	for _, c := range codes {
		if errors.Is(err, c.err) {
			if err.Error() == c.err.Error() {
				return ""
			}
			return err.Error()
		}
	}
	return ""
}

func reasonOf(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return err.Error()
}
