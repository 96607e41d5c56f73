package world

// Clan is a persistent player group. Members is the authoritative roster;
// each member Player carries the back-reference in ClanID.
type Clan struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Points   int            `json:"points"`
	Members  []int64        `json:"members"`
	LeaderID int64          `json:"leaderId,omitempty"`
	Extra    map[string]any `json:"-"`
}

// HasMember reports roster membership.
func (c *Clan) HasMember(playerID int64) bool {
	for _, id := range c.Members {
		if id == playerID {
			return true
		}
	}
	return false
}

// AddPoints adjusts clan points, floored at zero.
func (c *Clan) AddPoints(amount int) {
	c.Points += amount
	if c.Points < 0 {
		c.Points = 0
	}
}

// EnsureLeader promotes the head of the roster when the leader is missing.
func (c *Clan) EnsureLeader() {
	if len(c.Members) == 0 {
		c.LeaderID = 0
		return
	}
	if c.LeaderID == 0 || !c.HasMember(c.LeaderID) {
		c.LeaderID = c.Members[0]
	}
}

// ClanInvite is a pending membership offer, keyed by invitee.
type ClanInvite struct {
	PlayerID  int64          `json:"playerId"`
	ClanID    string         `json:"clanId"`
	FromID    int64          `json:"fromId"`
	ExpiresAt int64          `json:"expiresAt"`
	Extra     map[string]any `json:"-"`
}

// Clan battle statuses.
const (
	BattlePending  = "pending"
	BattleActive   = "active"
	BattleFinished = "finished"
)

// ClanBattle is one row of the append-only battle log.
type ClanBattle struct {
	ID             string         `json:"id"`
	ClanID         string         `json:"clanId"`
	OpponentClanID string         `json:"opponentClanId"`
	Status         string         `json:"status"`
	CreatedAt      int64          `json:"createdAt"`
	AcceptedBy     int64          `json:"acceptedBy,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

// PvpRequest is an open duel challenge with a wall-clock TTL.
type PvpRequest struct {
	ChallengerID int64  `json:"challengerId"`
	Username     string `json:"username,omitempty"`
	ChatID       int64  `json:"chatId"`
	CreatedAt    int64  `json:"createdAt"`
	ExpiresAt    int64  `json:"expiresAt"`
}
