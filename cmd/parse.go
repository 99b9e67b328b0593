package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/bnema/fishbowl/internal/application"
	"github.com/bnema/fishbowl/internal/domain"
)

// line is one typed REPL line: who typed it, where, and what.
type line struct {
	user    domain.UserID
	channel domain.ChannelID
	verb    string
	args    []string
}

// parseLine reads "<user>[@channel] <verb> [args...]". Arguments are split on
// spaces; double quotes group words into one argument.
func parseLine(raw string, defaultChannel domain.ChannelID) (line, error) {
	words, err := splitWords(raw)
	if err != nil {
		return line{}, err
	}
	if len(words) < 2 {
		return line{}, &domain.ValidationError{Reason: "expected <player> <command> [args]", Value: strings.TrimSpace(raw)}
	}

	user, channel, _ := strings.Cut(words[0], "@")
	if user == "" {
		return line{}, &domain.ValidationError{Reason: "missing player name", Value: words[0]}
	}
	if channel == "" {
		channel = string(defaultChannel)
	}

	return line{
		user:    domain.UserID(user),
		channel: domain.ChannelID(channel),
		verb:    strings.ToLower(words[1]),
		args:    words[2:],
	}, nil
}

func splitWords(raw string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		quoted  bool
		started bool
	)

	for _, r := range raw {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			if started {
				words = append(words, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, &domain.ValidationError{Reason: "unterminated quote", Value: raw}
	}
	if started {
		words = append(words, current.String())
	}
	return words, nil
}

var publicWords = map[string]bool{"all": true, "public": true, "hand": true, "show": true, "force": true}

// parseCommand maps a verb and its arguments to a typed command. Verbs
// include the aliases players already know from the chat bot.
func parseCommand(verb string, args []string) (application.Command, error) {
	switch verb {
	case "start":
		return application.StartCommand{}, nil
	case "join":
		if len(args) == 0 {
			return nil, &domain.ValidationError{Reason: "which session? use join <id>"}
		}
		id, err := parseSessionID(args[0])
		if err != nil {
			return nil, err
		}
		return application.JoinCommand{Session: id}, nil
	case "leave", "exit":
		return application.LeaveCommand{Successor: firstArg(args)}, nil
	case "end":
		return application.EndCommand{}, nil
	case "session", "info":
		return application.InfoCommand{}, nil
	case "check":
		return application.CheckCommand{}, nil
	case "add":
		return application.AddCommand{Target: domain.PileBowl, Scraps: args}, nil
	case "addtohand", "add2hand":
		return application.AddCommand{Target: domain.PileHand, Scraps: args}, nil
	case "draw":
		return application.DrawCommand{Source: domain.PileBowl, Args: args}, nil
	case "drawfromdiscard", "drawdiscard", "discarddraw":
		return application.DrawCommand{Source: domain.PileDiscard, Args: args}, nil
	case "peek":
		n := 1
		if len(args) > 0 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, &domain.ValidationError{Reason: "peek takes a number", Value: args[0]}
			}
			n = parsed
		}
		return application.PeekCommand{Count: n}, nil
	case "hand":
		if len(args) == 0 {
			return application.HandCommand{}, nil
		}
		if publicWords[strings.ToLower(args[0])] {
			return application.ShowHandCommand{Public: true}, nil
		}
		return nil, &domain.ValidationError{Reason: "don't know what that means", Value: args[0]}
	case "see", "look":
		if len(args) == 0 {
			return nil, &domain.ValidationError{Reason: "see what? use see bowl or see discard"}
		}
		pile, err := domain.ParsePileKind(args[0])
		if err != nil {
			return nil, err
		}
		return application.SeeCommand{Pile: pile}, nil
	case "show":
		if len(args) == 0 {
			return nil, &domain.ValidationError{Reason: "show to whom? use show <player> or show all"}
		}
		if publicWords[strings.ToLower(args[0])] {
			return application.ShowHandCommand{Public: true}, nil
		}
		return application.ShowHandCommand{Target: args[0]}, nil
	case "edit":
		if len(args) < 2 {
			return nil, &domain.ValidationError{Reason: "use edit <old> <new>"}
		}
		return application.EditCommand{Old: args[0], New: args[1]}, nil
	case "discard", "play":
		return application.MoveCommand{Kind: domain.MoveDiscard, Scraps: args}, nil
	case "destroy":
		return application.MoveCommand{Kind: domain.MoveDestroy, Scraps: args}, nil
	case "return":
		return application.MoveCommand{Kind: domain.MoveReturn, Scraps: args}, nil
	case "playhand", "playall", "discardhand", "discardall":
		return application.MoveCommand{Kind: domain.MoveDiscard, All: true}, nil
	case "destroyhand", "destroyall":
		return application.MoveCommand{Kind: domain.MoveDestroy, All: true}, nil
	case "returnhand", "returnall":
		return application.MoveCommand{Kind: domain.MoveReturn, All: true}, nil
	case "recall":
		return application.RecallCommand{}, nil
	case "shuffle":
		return application.ShuffleCommand{}, nil
	case "reset", "empty", "dump":
		scope, err := domain.ParseResetScope(firstArg(args))
		if err != nil {
			return nil, err
		}
		return application.ResetCommand{Scope: scope}, nil
	case "ban":
		return application.BanCommand{Target: firstArg(args)}, nil
	case "unban":
		return application.UnbanCommand{Target: firstArg(args)}, nil
	case "pass", "give":
		return transferCommand(domain.TransferPass, args)
	case "take", "steal":
		return transferCommand(domain.TransferTake, args)
	default:
		return nil, &domain.ValidationError{Reason: "unknown command", Value: verb}
	}
}

func transferCommand(dir domain.TransferDirection, args []string) (application.Command, error) {
	if len(args) == 0 {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("use %s <player> [scraps or count]", dir)}
	}
	return application.TransferCommand{Direction: dir, Target: args[0], Args: args[1:]}, nil
}

func parseSessionID(raw string) (domain.SessionID, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if err != nil || id < 0 {
		return 0, &domain.ValidationError{Reason: "session ids are numbers", Value: raw}
	}
	return domain.SessionID(id), nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
