package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClanNameTaken = errors.New("clan name taken")
	ErrAlreadyInClan = errors.New("already in a clan")
	ErrNotInClan     = errors.New("not in a clan")
	ErrNoSuchClan    = errors.New("no such clan")
)

// State is the entire mutable world. It is owned by the game loop goroutine;
// nothing outside that goroutine touches it (the saver works on clones).
type State struct {
	Players map[int64]*Player      `json:"players"`
	Clans   map[string]*Clan       `json:"clans"`
	Invites map[int64]*ClanInvite  `json:"clanInvites"`
	Battles []*ClanBattle          `json:"clanBattles"`

	// Open PvP challenges. Ephemeral: never persisted, swept by TTL.
	PvpRequests map[int64]*PvpRequest `json:"-"`
}

func NewState() *State {
	return &State{
		Players:     make(map[int64]*Player),
		Clans:       make(map[string]*Clan),
		Invites:     make(map[int64]*ClanInvite),
		PvpRequests: make(map[int64]*PvpRequest),
	}
}

// EnsurePlayer creates the player on first contact and refreshes the display
// identity on every later call. Idempotent: existing progress is never reset.
func (s *State) EnsurePlayer(id int64, username, name string) *Player {
	p, ok := s.Players[id]
	if !ok {
		p = &Player{
			ID:    id,
			HP:    BaseMaxHP,
			MaxHP: BaseMaxHP,
		}
		s.Players[id] = p
	}
	if username != "" {
		p.Username = username
	}
	if name != "" {
		p.Name = name
	}
	if p.MaxHP < BaseMaxHP {
		p.MaxHP = BaseMaxHP
	}
	if p.HP < 0 {
		p.HP = 0
	}
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	if p.BestSurvivalDays < p.SurvivalDays {
		p.BestSurvivalDays = p.SurvivalDays
	}
	if p.PvpRatingBest < p.PvpRating {
		p.PvpRatingBest = p.PvpRating
	}
	return p
}

// PlayerByIdent resolves "123", "@name" or "name" to a player.
func (s *State) PlayerByIdent(ident string) *Player {
	ident = strings.TrimSpace(strings.TrimPrefix(ident, "@"))
	if ident == "" {
		return nil
	}
	if id, err := strconv.ParseInt(ident, 10, 64); err == nil {
		if p, ok := s.Players[id]; ok {
			return p
		}
	}
	for _, p := range s.Players {
		if strings.EqualFold(p.Username, ident) {
			return p
		}
	}
	return nil
}

// ── Clans ──────────────────────────────────────────────────────────

// ClanByName finds a clan case-insensitively.
func (s *State) ClanByName(name string) *Clan {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, c := range s.Clans {
		if strings.ToLower(c.Name) == lower {
			return c
		}
	}
	return nil
}

// CreateClan makes a new clan with the creator as sole member and leader.
func (s *State) CreateClan(name string, creator *Player) (*Clan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty clan name")
	}
	if creator.ClanID != "" {
		return nil, ErrAlreadyInClan
	}
	if s.ClanByName(name) != nil {
		return nil, ErrClanNameTaken
	}
	c := &Clan{
		ID:       uuid.NewString(),
		Name:     name,
		Members:  []int64{creator.ID},
		LeaderID: creator.ID,
	}
	s.Clans[c.ID] = c
	creator.ClanID = c.ID
	return c, nil
}

// JoinClan appends the player to the roster and fixes the back-reference.
func (s *State) JoinClan(c *Clan, p *Player) error {
	if p.ClanID != "" {
		return ErrAlreadyInClan
	}
	if !c.HasMember(p.ID) {
		c.Members = append(c.Members, p.ID)
	}
	p.ClanID = c.ID
	c.EnsureLeader()
	return nil
}

// LeaveClan removes the player; leadership is promoted and empty clans die.
func (s *State) LeaveClan(p *Player) (*Clan, error) {
	if p.ClanID == "" {
		return nil, ErrNotInClan
	}
	c := s.Clans[p.ClanID]
	p.ClanID = ""
	if c == nil {
		return nil, ErrNoSuchClan
	}
	s.removeMember(c, p.ID)
	return c, nil
}

// KickMember removes a target from the clan roster.
func (s *State) KickMember(c *Clan, targetID int64) {
	if p, ok := s.Players[targetID]; ok && p.ClanID == c.ID {
		p.ClanID = ""
	}
	s.removeMember(c, targetID)
}

func (s *State) removeMember(c *Clan, id int64) {
	for i, m := range c.Members {
		if m == id {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			break
		}
	}
	if len(c.Members) == 0 {
		delete(s.Clans, c.ID)
		return
	}
	if c.LeaderID == id {
		c.LeaderID = 0
	}
	c.EnsureLeader()
}

// ClanOf returns the player's clan, or nil.
func (s *State) ClanOf(p *Player) *Clan {
	if p == nil || p.ClanID == "" {
		return nil
	}
	return s.Clans[p.ClanID]
}

// ── TTL sweeps ─────────────────────────────────────────────────────

// SweepInvites drops expired clan invites and returns how many were removed.
func (s *State) SweepInvites(now time.Time) int {
	n := 0
	for id, inv := range s.Invites {
		if inv.ExpiresAt <= now.Unix() {
			delete(s.Invites, id)
			n++
		}
	}
	return n
}

// SweepPvpRequests drops expired open challenges.
func (s *State) SweepPvpRequests(now time.Time) int {
	n := 0
	for id, req := range s.PvpRequests {
		if req.ExpiresAt <= now.Unix() {
			delete(s.PvpRequests, id)
			n++
		}
	}
	return n
}

// PvpRequestByIdent finds an open challenge by challenger id or username.
func (s *State) PvpRequestByIdent(ident string) *PvpRequest {
	ident = strings.TrimSpace(strings.TrimPrefix(ident, "@"))
	if ident == "" {
		return nil
	}
	if id, err := strconv.ParseInt(ident, 10, 64); err == nil {
		if req, ok := s.PvpRequests[id]; ok {
			return req
		}
	}
	for _, req := range s.PvpRequests {
		if strings.EqualFold(req.Username, ident) {
			return req
		}
	}
	return nil
}

// ── Reconciliation & snapshots ─────────────────────────────────────

// Reconcile restores invariants after a load: hp clamps, clan back-references,
// leader promotion, record counters.
func (s *State) Reconcile() {
	for _, p := range s.Players {
		if p.MaxHP < BaseMaxHP {
			p.MaxHP = BaseMaxHP
		}
		p.ClampHP()
		if p.Infection < 0 {
			p.Infection = 0
		}
		if p.BestSurvivalDays < p.SurvivalDays {
			p.BestSurvivalDays = p.SurvivalDays
		}
		if p.PvpRatingBest < p.PvpRating {
			p.PvpRatingBest = p.PvpRating
		}
		if p.ClanID != "" {
			if c, ok := s.Clans[p.ClanID]; !ok || c == nil {
				p.ClanID = ""
			}
		}
	}
	for id, c := range s.Clans {
		kept := c.Members[:0]
		for _, m := range c.Members {
			if p, ok := s.Players[m]; ok && p.ClanID == c.ID {
				kept = append(kept, m)
			}
		}
		c.Members = kept
		if len(c.Members) == 0 {
			delete(s.Clans, id)
			continue
		}
		c.EnsureLeader()
	}
}

// Clone deep-copies the persistent portion of the state (JSON round-trip).
// Called on the game loop; the copy is handed to the save chain.
func (s *State) Clone() *State {
	raw, err := json.Marshal(s)
	if err != nil {
		return NewState()
	}
	cp := NewState()
	if err := json.Unmarshal(raw, cp); err != nil {
		return NewState()
	}
	// Extra maps are json:"-"; carry them across by reference copy.
	for id, p := range s.Players {
		if q, ok := cp.Players[id]; ok {
			q.Extra = copyExtra(p.Extra)
		}
	}
	for id, c := range s.Clans {
		if q, ok := cp.Clans[id]; ok {
			q.Extra = copyExtra(c.Extra)
		}
	}
	for id, inv := range s.Invites {
		if q, ok := cp.Invites[id]; ok {
			q.Extra = copyExtra(inv.Extra)
		}
	}
	if cp.Players == nil {
		cp.Players = make(map[int64]*Player)
	}
	return cp
}

func copyExtra(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
