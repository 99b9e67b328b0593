package text

import (
	"bytes"
	"errors"
	"text/template"

	"github.com/bnema/fishbowl/internal/application"
	"github.com/bnema/fishbowl/internal/domain"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown         Code = "UNKNOWN"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeNotInSession    Code = "NOT_IN_SESSION"
	CodeNotCreator      Code = "NOT_CREATOR"
	CodeAlreadySeated   Code = "ALREADY_SEATED"
	CodeSessionFull     Code = "SESSION_FULL"
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	CodeRegistryFull    Code = "REGISTRY_FULL"
	CodeBanned          Code = "BANNED"
	CodeAlreadyBanned   Code = "ALREADY_BANNED"
	CodeSelfTarget      Code = "SELF_TARGET"
	CodeInsufficient    Code = "INSUFFICIENT_SUPPLY"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyPending  Code = "ALREADY_PENDING"
	CodeRequestDenied   Code = "REQUEST_DENIED"
	CodeRequestTimedOut Code = "REQUEST_TIMED_OUT"
	CodeInvalidSettings Code = "INVALID_SETTINGS"
	CodeInternal        Code = "INTERNAL"
)

// codes is checked in order; the first sentinel the error matches wins.
var codes = []struct {
	err  error
	code Code
}{
	{domain.ErrValidation, CodeInvalidInput},
	{domain.ErrNotInSession, CodeNotInSession},
	{domain.ErrNotCreator, CodeNotCreator},
	{domain.ErrAlreadySeated, CodeAlreadySeated},
	{domain.ErrSessionFull, CodeSessionFull},
	{domain.ErrSessionNotFound, CodeSessionNotFound},
	{domain.ErrRegistryFull, CodeRegistryFull},
	{domain.ErrBanned, CodeBanned},
	{domain.ErrAlreadyBanned, CodeAlreadyBanned},
	{domain.ErrSelfTarget, CodeSelfTarget},
	{domain.ErrInsufficientSupply, CodeInsufficient},
	{domain.ErrNotFound, CodeNotFound},
	{domain.ErrAlreadyPending, CodeAlreadyPending},
	{domain.ErrRequestDenied, CodeRequestDenied},
	{domain.ErrRequestTimedOut, CodeRequestTimedOut},
	{application.ErrInvalidSettings, CodeInvalidSettings},
	{domain.ErrInternal, CodeInternal},
}

// CodeOf classifies err.
func CodeOf(err error) Code {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

var englishMessages = map[Code]string{
	CodeUnknown:         "Oops, something went wrong.",
	CodeInvalidInput:    "Invalid input: {{.Detail}}.",
	CodeNotInSession:    "{{if .Detail}}Not in the session ({{.Detail}}).{{else}}You're not in a session! Start one with start or join one with join <id>.{{end}}",
	CodeNotCreator:      "Only the session creator can do that!",
	CodeAlreadySeated:   "Already in a session!{{if .Detail}} ({{.Detail}}){{end}}",
	CodeSessionFull:     "That session is full!",
	CodeSessionNotFound: "Can't find that session! Did you type the number correctly?",
	CodeRegistryFull:    "Handling too many sessions right now! Please try again later.",
	CodeBanned:          "You're banned from that session!",
	CodeAlreadyBanned:   "Already banned!{{if .Detail}} ({{.Detail}}){{end}}",
	CodeSelfTarget:      "Can't target yourself here!{{if .Detail}} ({{.Detail}}){{end}}",
	CodeInsufficient:    "Not enough scraps!{{if .Detail}} ({{.Detail}}){{end}}",
	CodeNotFound:        "Can't find that!{{if .Detail}} ({{.Detail}}){{end}}",
	CodeAlreadyPending:  "Already waiting for a response from this player!",
	CodeRequestDenied:   "Request denied.",
	CodeRequestTimedOut: "Request timed out.",
	CodeInvalidSettings: "Bad configuration!{{if .Detail}} ({{.Detail}}){{end}}",
	CodeInternal:        "Oops, internal error! The session is unchanged.",
}

// Catalog maps error codes to message templates.
type Catalog struct {
	messages map[Code]string
}

func NewCatalog(messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{messages: cloned}
}

// DefaultCatalog holds the English messages.
func DefaultCatalog() *Catalog {
	return NewCatalog(englishMessages)
}

// Format renders the template for code with metadata, falling back to the
// code itself.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return string(code)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
