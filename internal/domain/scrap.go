package domain

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type (
	UserID    string
	ChannelID string
	SessionID int
	ScrapID   uint64
)

func (id SessionID) String() string {
	return strconv.Itoa(int(id))
}

// Scrap is one text token. The ID identifies the instance across piles; the
// text may change through an edit, the ID never does.
type Scrap struct {
	ID   ScrapID
	Text string
}

const (
	ReasonEmpty          = "scrap is empty"
	ReasonTooLong        = "scrap is too long"
	ReasonNumeric        = "scrap is a number"
	ReasonBacktick       = "scrap contains a back-tick"
	ReasonUserMention    = "scrap contains a user mention"
	ReasonChannelMention = "scrap contains a channel mention"
)

var (
	userMentionPattern    = regexp.MustCompile(`<@[!&]?\d+>`)
	channelMentionPattern = regexp.MustCompile(`<#\d+>`)
)

// CleanScrapText trims surrounding whitespace and trailing commas.
func CleanScrapText(raw string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(raw), ","))
}

// ValidateScrapText reports why text cannot be a scrap, or nil.
func ValidateScrapText(text string, maxLen int) error {
	if text == "" {
		return invalid(ReasonEmpty, text)
	}
	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		return invalid(ReasonTooLong, text)
	}
	if _, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		return invalid(ReasonNumeric, text)
	}
	if strings.Contains(text, "`") {
		return invalid(ReasonBacktick, text)
	}
	if userMentionPattern.MatchString(text) {
		return invalid(ReasonUserMention, text)
	}
	if channelMentionPattern.MatchString(text) {
		return invalid(ReasonChannelMention, text)
	}
	return nil
}

// RejectedScrap pairs an input with the validation error that rejected it.
type RejectedScrap struct {
	Text string
	Err  error
}

// Texts returns the text of each scrap in order.
func Texts(scraps []Scrap) []string {
	out := make([]string, 0, len(scraps))
	for _, s := range scraps {
		out = append(out, s.Text)
	}
	return out
}
