package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

type PileKind string

const (
	PileBowl    PileKind = "bowl"
	PileDiscard PileKind = "discard"
	PileHand    PileKind = "hand"
)

// ParsePileKind accepts the words players use for the shared piles.
func ParsePileKind(word string) (PileKind, error) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "bowl", "deck":
		return PileBowl, nil
	case "discard", "graveyard", "grave":
		return PileDiscard, nil
	default:
		return "", invalid("unknown pile", word)
	}
}

type ResetScope string

const (
	ResetBowl    ResetScope = "bowl"
	ResetDiscard ResetScope = "discard"
	ResetHands   ResetScope = "hands"
	ResetAll     ResetScope = "all"
)

func ParseResetScope(word string) (ResetScope, error) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "all", "session":
		return ResetAll, nil
	case "bowl", "deck":
		return ResetBowl, nil
	case "discard", "graveyard", "trash":
		return ResetDiscard, nil
	case "hands":
		return ResetHands, nil
	default:
		return "", invalid("unknown reset scope", word)
	}
}

// MoveKind is where scraps leaving a hand end up.
type MoveKind string

const (
	MoveDiscard MoveKind = "discard"
	MoveDestroy MoveKind = "destroy"
	MoveReturn  MoveKind = "return"
)

type TransferDirection string

const (
	TransferPass TransferDirection = "pass"
	TransferTake TransferDirection = "take"
)

// DrawSpec is either a count or a list of literal values.
type DrawSpec struct {
	Count  int
	Values []string
}

// ParseDrawSpec reads draw arguments: none means one scrap, a leading integer
// is a count, anything else is a list of values.
func ParseDrawSpec(args []string) (DrawSpec, error) {
	if len(args) == 0 {
		return DrawSpec{Count: 1}, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil {
		if n < 0 {
			return DrawSpec{}, invalid("cannot draw a negative number of scraps", args[0])
		}
		return DrawSpec{Count: n}, nil
	}
	return DrawSpec{Values: args}, nil
}

type AddResult struct {
	Added    []Scrap
	Rejected []RejectedScrap
	PileSize int
}

type DrawResult struct {
	Source   PileKind
	Drawn    []Scrap
	NotFound []string
	ByValue  bool
}

type MoveResult struct {
	Kind     MoveKind
	Moved    []Scrap
	NotFound []string
}

type EditResult struct {
	Scope PileKind
	Scrap Scrap
}

type LeaveResult struct {
	Forfeited  []Scrap
	NewCreator UserID
	Ended      bool
}

type BanResult struct {
	Removed   bool
	Forfeited []Scrap
}

// TransferPlan is a pass or take staged against copies of both hands. It is
// applied by scrap ID so a stale plan can be detected at commit time.
type TransferPlan struct {
	Direction TransferDirection
	Requester UserID
	Target    UserID
	From      UserID
	To        UserID
	Scraps    []Scrap
	NotFound  []string
	Random    bool
}

type PlayerSummary struct {
	User     UserID
	HandSize int
}

type Summary struct {
	ID           SessionID
	Creator      UserID
	HomeChannel  ChannelID
	Players      []PlayerSummary
	Banned       []UserID
	Bowl         int
	Discard      int
	Total        int
	LastModified time.Time
}

// Session is the state of one game: who is playing and where every scrap is.
// It is not safe for concurrent use; callers serialize access per session.
type Session struct {
	ID          SessionID
	HomeChannel ChannelID

	creator      UserID
	players      []UserID
	hands        map[UserID]*Pile
	banned       []UserID
	bowl         *Pile
	discard      *Pile
	total        int
	nextScrapID  ScrapID
	lastModified time.Time
	limits       Limits
}

func NewSession(id SessionID, creator UserID, home ChannelID, limits Limits, now time.Time) *Session {
	return &Session{
		ID:           id,
		HomeChannel:  home,
		creator:      creator,
		players:      []UserID{creator},
		hands:        map[UserID]*Pile{creator: NewPile()},
		bowl:         NewPile(),
		discard:      NewPile(),
		lastModified: now,
		limits:       limits,
	}
}

func (s *Session) Creator() UserID         { return s.creator }
func (s *Session) Total() int              { return s.total }
func (s *Session) LastModified() time.Time { return s.lastModified }
func (s *Session) Limits() Limits          { return s.limits }

// Touch records activity; the idle sweep measures from here.
func (s *Session) Touch(now time.Time) {
	s.lastModified = now
}

func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.lastModified)
}

func (s *Session) Players() []UserID {
	return slices.Clone(s.players)
}

func (s *Session) IsPlayer(user UserID) bool {
	_, ok := s.hands[user]
	return ok
}

func (s *Session) IsBanned(user UserID) bool {
	return slices.Contains(s.banned, user)
}

func (s *Session) BanList() []UserID {
	return slices.Clone(s.banned)
}

func (s *Session) Hand(user UserID) ([]Scrap, error) {
	hand, err := s.hand(user)
	if err != nil {
		return nil, err
	}
	return hand.Scraps(), nil
}

// Pile returns the contents of the bowl or the discard pile.
func (s *Session) Pile(kind PileKind) ([]Scrap, error) {
	switch kind {
	case PileBowl:
		return s.bowl.Scraps(), nil
	case PileDiscard:
		return s.discard.Scraps(), nil
	default:
		return nil, invalid("unknown pile", string(kind))
	}
}

func (s *Session) Join(user UserID) error {
	if s.IsPlayer(user) {
		return ErrAlreadySeated
	}
	if s.IsBanned(user) {
		return ErrBanned
	}
	if s.limits.MaxPlayers > 0 && len(s.players) >= s.limits.MaxPlayers {
		return ErrSessionFull
	}
	s.players = append(s.players, user)
	s.hands[user] = NewPile()
	return nil
}

// Leave removes user and forfeits their hand. A departing creator hands the
// session to successor, or to a random remaining player when successor is
// empty. The last player leaving ends the session.
func (s *Session) Leave(user, successor UserID, rng Rand) (LeaveResult, error) {
	if !s.IsPlayer(user) {
		return LeaveResult{}, ErrNotInSession
	}
	if successor != "" {
		if successor == user {
			return LeaveResult{}, fmt.Errorf("%w: cannot hand the session to yourself", ErrSelfTarget)
		}
		if !s.IsPlayer(successor) {
			return LeaveResult{}, fmt.Errorf("successor %s: %w", successor, ErrNotInSession)
		}
	}

	result := LeaveResult{Forfeited: s.removePlayer(user)}
	if len(s.players) == 0 {
		result.Ended = true
		return result, nil
	}
	if s.creator == user {
		if successor == "" {
			successor = s.players[rng.IntN(len(s.players))]
		}
		s.creator = successor
		result.NewCreator = successor
	}
	return result, nil
}

func (s *Session) AddToBowl(actor UserID, texts []string) (AddResult, error) {
	if err := s.requireSeated(actor); err != nil {
		return AddResult{}, err
	}
	return s.add(s.bowl, texts)
}

func (s *Session) AddToHand(actor UserID, texts []string) (AddResult, error) {
	hand, err := s.hand(actor)
	if err != nil {
		return AddResult{}, err
	}
	return s.add(hand, texts)
}

func (s *Session) add(target *Pile, texts []string) (AddResult, error) {
	if s.limits.MaxTotalScraps > 0 && s.total+len(texts) > s.limits.MaxTotalScraps {
		return AddResult{PileSize: target.Len()}, &ValidationError{
			Reason: fmt.Sprintf("too many scraps in the session (max %d)", s.limits.MaxTotalScraps),
		}
	}

	candidates := make([]Scrap, 0, len(texts))
	for _, text := range texts {
		s.nextScrapID++
		candidates = append(candidates, Scrap{ID: s.nextScrapID, Text: CleanScrapText(text)})
	}
	added, rejected := target.Add(candidates, s.limits.MaxScrapLength)
	s.total += len(added)
	return AddResult{Added: added, Rejected: rejected, PileSize: target.Len()}, nil
}

// Draw moves scraps from the bowl or discard pile into actor's hand.
func (s *Session) Draw(actor UserID, source PileKind, spec DrawSpec, rng Rand) (DrawResult, error) {
	hand, err := s.hand(actor)
	if err != nil {
		return DrawResult{}, err
	}
	var pile *Pile
	switch source {
	case PileBowl:
		pile = s.bowl
	case PileDiscard:
		pile = s.discard
	default:
		return DrawResult{}, invalid("cannot draw from", string(source))
	}

	result := DrawResult{Source: source}
	if len(spec.Values) > 0 {
		result.ByValue = true
		result.Drawn, result.NotFound = pile.DrawByValue(spec.Values)
	} else {
		if spec.Count < 0 {
			return DrawResult{}, invalid("cannot draw a negative number of scraps", strconv.Itoa(spec.Count))
		}
		result.Drawn, err = pile.DrawRandom(rng, spec.Count)
		if err != nil {
			return DrawResult{}, err
		}
	}
	hand.Append(result.Drawn...)
	return result, nil
}

// Peek samples n bowl scraps without removing them.
func (s *Session) Peek(actor UserID, n int, rng Rand) ([]Scrap, error) {
	if err := s.requireSeated(actor); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, invalid("cannot peek at a negative number of scraps", strconv.Itoa(n))
	}
	return s.bowl.Sample(rng, n)
}

// Edit rewrites a scrap in actor's hand, or in the bowl if actor created the
// session. The hand is always searched first.
func (s *Session) Edit(actor UserID, oldValue, newValue string) (EditResult, error) {
	hand, err := s.hand(actor)
	if err != nil {
		return EditResult{}, err
	}
	newValue = CleanScrapText(newValue)
	if err := ValidateScrapText(newValue, s.limits.MaxScrapLength); err != nil {
		return EditResult{}, err
	}
	if scrap, ok := hand.ReplaceExact(oldValue, newValue); ok {
		return EditResult{Scope: PileHand, Scrap: scrap}, nil
	}
	if s.bowl.indexExact(oldValue) < 0 {
		return EditResult{}, fmt.Errorf("scrap %q: %w", oldValue, ErrNotFound)
	}
	if actor != s.creator {
		return EditResult{}, fmt.Errorf("edit bowl: %w", ErrNotCreator)
	}
	scrap, _ := s.bowl.ReplaceExact(oldValue, newValue)
	return EditResult{Scope: PileBowl, Scrap: scrap}, nil
}

// Move sends matching scraps from actor's hand to the discard pile, the bowl,
// or nowhere. Unmatched queries are reported, not fatal.
func (s *Session) Move(actor UserID, kind MoveKind, queries []string) (MoveResult, error) {
	hand, err := s.hand(actor)
	if err != nil {
		return MoveResult{}, err
	}
	dest, err := s.moveTarget(kind)
	if err != nil {
		return MoveResult{}, err
	}
	if len(queries) == 0 {
		return MoveResult{}, invalid("name the scraps to "+string(kind), "")
	}
	if hand.Len() == 0 {
		return MoveResult{}, fmt.Errorf("hand is empty: %w", ErrInsufficientSupply)
	}

	result := MoveResult{Kind: kind}
	result.Moved, result.NotFound = hand.DrawByValue(queries)
	s.deliver(dest, result.Moved)
	return result, nil
}

// MoveHand is Move for the whole hand at once.
func (s *Session) MoveHand(actor UserID, kind MoveKind) (MoveResult, error) {
	hand, err := s.hand(actor)
	if err != nil {
		return MoveResult{}, err
	}
	dest, err := s.moveTarget(kind)
	if err != nil {
		return MoveResult{}, err
	}
	if hand.Len() == 0 {
		return MoveResult{}, fmt.Errorf("hand is empty: %w", ErrInsufficientSupply)
	}

	moved := hand.Scraps()
	hand.Reset()
	s.deliver(dest, moved)
	return MoveResult{Kind: kind, Moved: moved}, nil
}

func (s *Session) moveTarget(kind MoveKind) (*Pile, error) {
	switch kind {
	case MoveDiscard:
		return s.discard, nil
	case MoveReturn:
		return s.bowl, nil
	case MoveDestroy:
		return nil, nil
	default:
		return nil, invalid("unknown move", string(kind))
	}
}

// deliver appends to dest, or destroys the scraps when dest is nil.
func (s *Session) deliver(dest *Pile, scraps []Scrap) {
	if dest == nil {
		s.total -= len(scraps)
		return
	}
	dest.Append(scraps...)
}

// StageTransfer resolves a pass or take without touching any pile. Literal
// values are matched first; when nothing matches and the only argument is an
// integer, that many scraps are sampled from the source hand instead.
func (s *Session) StageTransfer(requester, target UserID, dir TransferDirection, args []string, rng Rand) (TransferPlan, error) {
	if err := s.requireSeated(requester); err != nil {
		return TransferPlan{}, err
	}
	if requester == target {
		return TransferPlan{}, fmt.Errorf("%w: cannot %s yourself", ErrSelfTarget, dir)
	}
	if !s.IsPlayer(target) {
		return TransferPlan{}, fmt.Errorf("player %s: %w", target, ErrNotInSession)
	}
	if len(args) == 0 {
		return TransferPlan{}, invalid("name the scraps to "+string(dir), "")
	}

	plan := TransferPlan{Direction: dir, Requester: requester, Target: target}
	switch dir {
	case TransferPass:
		plan.From, plan.To = requester, target
	case TransferTake:
		plan.From, plan.To = target, requester
	default:
		return TransferPlan{}, invalid("unknown transfer", string(dir))
	}

	source := s.hands[plan.From].Clone()
	plan.Scraps, plan.NotFound = source.DrawByValue(args)
	if len(plan.Scraps) > 0 || len(args) != 1 {
		return plan, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return plan, nil
	}
	if n < 0 {
		return TransferPlan{}, invalid("cannot "+string(dir)+" a negative number of scraps", args[0])
	}
	drawn, err := source.DrawRandom(rng, n)
	if err != nil {
		return TransferPlan{}, fmt.Errorf("hand of %s: %w", plan.From, err)
	}
	plan.Scraps, plan.NotFound, plan.Random = drawn, nil, true
	return plan, nil
}

// CommitTransfer applies a staged plan. Every staged scrap must still be in
// the source hand, otherwise nothing moves.
func (s *Session) CommitTransfer(plan TransferPlan) error {
	from, err := s.hand(plan.From)
	if err != nil {
		return fmt.Errorf("player %s: %w", plan.From, err)
	}
	to, err := s.hand(plan.To)
	if err != nil {
		return fmt.Errorf("player %s: %w", plan.To, err)
	}
	for _, scrap := range plan.Scraps {
		if !from.Contains(scrap.ID) {
			return fmt.Errorf("scrap %q left the hand of %s: %w", scrap.Text, plan.From, ErrNotFound)
		}
	}
	for _, scrap := range plan.Scraps {
		moved, _ := from.RemoveByID(scrap.ID)
		to.Append(moved)
	}
	return nil
}

// RecallHands empties every hand into the bowl.
func (s *Session) RecallHands(actor UserID) (int, error) {
	if err := s.RequireCreator(actor); err != nil {
		return 0, err
	}
	recalled := 0
	for _, player := range s.players {
		recalled += len(s.hands[player].ReassignAll(s.bowl))
	}
	return recalled, nil
}

// ShuffleDiscard empties the discard pile into the bowl.
func (s *Session) ShuffleDiscard(actor UserID) (int, error) {
	if err := s.RequireCreator(actor); err != nil {
		return 0, err
	}
	return len(s.discard.ReassignAll(s.bowl)), nil
}

// Reset clears the piles in scope and recounts the total from what is left.
func (s *Session) Reset(actor UserID, scope ResetScope) error {
	if err := s.RequireCreator(actor); err != nil {
		return err
	}
	switch scope {
	case ResetBowl:
		s.bowl.Reset()
	case ResetDiscard:
		s.discard.Reset()
	case ResetHands:
		s.resetHands()
	case ResetAll:
		s.bowl.Reset()
		s.discard.Reset()
		s.resetHands()
	default:
		return invalid("unknown reset scope", string(scope))
	}
	s.total = s.count()
	return nil
}

func (s *Session) resetHands() {
	for _, hand := range s.hands {
		hand.Reset()
	}
}

// Ban bars target from the session, removing them if seated. botID is the
// bot's own identity, which can never be banned.
func (s *Session) Ban(actor, target, botID UserID) (BanResult, error) {
	if err := s.RequireCreator(actor); err != nil {
		return BanResult{}, err
	}
	if s.IsBanned(target) {
		return BanResult{}, fmt.Errorf("%s: %w", target, ErrAlreadyBanned)
	}
	if err := checkBanTarget(actor, target, botID, "ban"); err != nil {
		return BanResult{}, err
	}
	s.banned = append(s.banned, target)
	if !s.IsPlayer(target) {
		return BanResult{}, nil
	}
	return BanResult{Removed: true, Forfeited: s.removePlayer(target)}, nil
}

func (s *Session) Unban(actor, target, botID UserID) error {
	if err := s.RequireCreator(actor); err != nil {
		return err
	}
	if err := checkBanTarget(actor, target, botID, "unban"); err != nil {
		return err
	}
	i := slices.Index(s.banned, target)
	if i < 0 {
		return fmt.Errorf("%s in ban list: %w", target, ErrNotFound)
	}
	s.banned = slices.Delete(s.banned, i, i+1)
	return nil
}

func checkBanTarget(actor, target, botID UserID, verb string) error {
	if target == actor {
		return fmt.Errorf("%w: cannot %s yourself", ErrSelfTarget, verb)
	}
	if botID != "" && target == botID {
		return fmt.Errorf("%w: cannot %s the bot", ErrSelfTarget, verb)
	}
	return nil
}

func (s *Session) Summary() Summary {
	players := make([]PlayerSummary, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, PlayerSummary{User: p, HandSize: s.hands[p].Len()})
	}
	return Summary{
		ID:           s.ID,
		Creator:      s.creator,
		HomeChannel:  s.HomeChannel,
		Players:      players,
		Banned:       s.BanList(),
		Bowl:         s.bowl.Len(),
		Discard:      s.discard.Len(),
		Total:        s.total,
		LastModified: s.lastModified,
	}
}

// CheckInvariants verifies the running total and that no scrap instance sits
// in two piles.
func (s *Session) CheckInvariants() error {
	if got := s.count(); got != s.total {
		return fmt.Errorf("session %d: total %d, piles hold %d", s.ID, s.total, got)
	}
	if len(s.hands) != len(s.players) {
		return fmt.Errorf("session %d: %d hands for %d players", s.ID, len(s.hands), len(s.players))
	}
	seen := make(map[ScrapID]struct{}, s.total)
	piles := []*Pile{s.bowl, s.discard}
	for _, p := range s.players {
		piles = append(piles, s.hands[p])
	}
	for _, pile := range piles {
		for _, scrap := range pile.scraps {
			if _, dup := seen[scrap.ID]; dup {
				return fmt.Errorf("session %d: scrap %d is in two piles", s.ID, scrap.ID)
			}
			seen[scrap.ID] = struct{}{}
		}
	}
	return nil
}

func (s *Session) count() int {
	n := s.bowl.Len() + s.discard.Len()
	for _, hand := range s.hands {
		n += hand.Len()
	}
	return n
}

func (s *Session) removePlayer(user UserID) []Scrap {
	forfeited := s.hands[user].Scraps()
	s.total -= len(forfeited)
	delete(s.hands, user)
	s.players = slices.DeleteFunc(s.players, func(p UserID) bool { return p == user })
	return forfeited
}

func (s *Session) hand(user UserID) (*Pile, error) {
	hand, ok := s.hands[user]
	if !ok {
		return nil, ErrNotInSession
	}
	return hand, nil
}

func (s *Session) requireSeated(user UserID) error {
	if !s.IsPlayer(user) {
		return ErrNotInSession
	}
	return nil
}

// RequireCreator fails unless user is seated and created the session.
func (s *Session) RequireCreator(user UserID) error {
	if err := s.requireSeated(user); err != nil {
		return err
	}
	if user != s.creator {
		return ErrNotCreator
	}
	return nil
}
