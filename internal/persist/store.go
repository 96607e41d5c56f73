package persist

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crimecore/server/internal/world"
)

// Store is the world snapshot boundary. LoadAll runs once at startup; SaveAll
// runs only through the single-writer chain (Saver).
type Store interface {
	LoadAll(ctx context.Context) (*world.State, error)
	SaveAll(ctx context.Context, s *world.State) error
	ClearAll(ctx context.Context) error
}

// SQLStore persists the world into the four structured tables over any
// Querier engine.
type SQLStore struct {
	q   Querier
	log *zap.Logger
	now func() time.Time
}

func NewSQLStore(q Querier, log *zap.Logger) *SQLStore {
	return &SQLStore{q: q, log: log, now: time.Now}
}

// LoadAll reads the structured tables; when they are all empty it attempts a
// one-time migration from the legacy bot_state blob.
func (s *SQLStore) LoadAll(ctx context.Context) (*world.State, error) {
	st := world.NewState()

	if err := s.loadPlayers(ctx, st); err != nil {
		return nil, err
	}
	if err := s.loadClans(ctx, st); err != nil {
		return nil, err
	}
	if err := s.loadBattles(ctx, st); err != nil {
		return nil, err
	}
	if err := s.loadInvites(ctx, st); err != nil {
		return nil, err
	}

	if len(st.Players) == 0 && len(st.Clans) == 0 {
		if legacy := s.loadLegacy(ctx); legacy != nil {
			legacy.Reconcile()
			if err := s.SaveAll(ctx, legacy); err != nil {
				s.log.Warn("legacy state migration save failed", zap.Error(err))
			} else {
				s.log.Info("migrated legacy bot_state blob",
					zap.Int("players", len(legacy.Players)),
					zap.Int("clans", len(legacy.Clans)))
			}
			return legacy, nil
		}
	}

	st.Reconcile()
	return st, nil
}

func (s *SQLStore) loadPlayers(ctx context.Context, st *world.State) error {
	rows, err := s.q.Query(ctx, `SELECT id, username, name, hp, max_hp, infection,
		survival_days, best_survival_days, clan_id, inventory, monster, monster_stun,
		damage_boost_turns, damage_reduction_turns, radiation_boost, first_attack,
		last_hunt, pending_drop, pvp_wins, pvp_losses, last_gift_time,
		hunt_cooldown_warned, current_danger, current_danger_msg_id, base_url,
		pvp, extra FROM players`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		p := &world.Player{}
		var inventory, monster, pendingDrop, currentDanger, pvp, extra []byte
		var clanID, baseURL string
		if err := rows.Scan(&p.ID, &p.Username, &p.Name, &p.HP, &p.MaxHP, &p.Infection,
			&p.SurvivalDays, &p.BestSurvivalDays, &clanID, &inventory, &monster, &p.MonsterStun,
			&p.DamageBoostTurns, &p.DamageReductionTurns, &p.RadiationBoost, &p.FirstAttack,
			&p.LastHunt, &pendingDrop, &p.PvpWins, &p.PvpLosses, &p.LastGiftTime,
			&p.HuntCooldownWarned, &currentDanger, &p.CurrentDangerMsgID, &baseURL,
			&pvp, &extra); err != nil {
			return err
		}
		p.ClanID = clanID
		p.BaseURL = baseURL
		unmarshalJSON(inventory, &p.Inventory)
		unmarshalJSON(monster, &p.Monster)
		unmarshalJSON(pendingDrop, &p.PendingDrop)
		unmarshalJSON(currentDanger, &p.CurrentDanger)
		unmarshalJSON(pvp, &p.Pvp)
		decodePlayerExtra(extra, p)
		st.Players[p.ID] = p
	}
	return rows.Err()
}

func (s *SQLStore) loadClans(ctx context.Context, st *world.State) error {
	rows, err := s.q.Query(ctx, `SELECT id, name, points, members, extra FROM clans`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c := &world.Clan{}
		var members, extra []byte
		if err := rows.Scan(&c.ID, &c.Name, &c.Points, &members, &extra); err != nil {
			return err
		}
		unmarshalJSON(members, &c.Members)
		decodeClanExtra(extra, c)
		st.Clans[c.ID] = c
	}
	return rows.Err()
}

func (s *SQLStore) loadBattles(ctx context.Context, st *world.State) error {
	rows, err := s.q.Query(ctx, `SELECT id, clan_id, opponent_clan_id, status,
		created_at, accepted_by, data FROM clan_battles`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		b := &world.ClanBattle{}
		var payload []byte
		if err := rows.Scan(&b.ID, &b.ClanID, &b.OpponentClanID, &b.Status,
			&b.CreatedAt, &b.AcceptedBy, &payload); err != nil {
			return err
		}
		unmarshalJSON(payload, &b.Data)
		st.Battles = append(st.Battles, b)
	}
	return rows.Err()
}

func (s *SQLStore) loadInvites(ctx context.Context, st *world.State) error {
	rows, err := s.q.Query(ctx, `SELECT player_id, clan_id, from_id, expires, extra FROM clan_invites`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		inv := &world.ClanInvite{}
		var extra []byte
		if err := rows.Scan(&inv.PlayerID, &inv.ClanID, &inv.FromID, &inv.ExpiresAt, &extra); err != nil {
			return err
		}
		inv.Extra = unknownKeys(extra, nil)
		st.Invites[inv.PlayerID] = inv
	}
	return rows.Err()
}

// loadLegacy reads the single-row bot_state blob, returning nil when absent.
func (s *SQLStore) loadLegacy(ctx context.Context) *world.State {
	rows, err := s.q.Query(ctx, `SELECT state FROM bot_state WHERE id = ?`, 1)
	if err != nil {
		// Table usually does not exist on fresh installs.
		return nil
	}
	defer rows.Close()

	if !rows.Next() {
		return nil
	}
	var raw []byte
	if err := rows.Scan(&raw); err != nil {
		s.log.Warn("bot_state scan failed", zap.Error(err))
		return nil
	}
	legacy := world.NewState()
	unmarshalJSON(raw, legacy)
	if len(legacy.Players) == 0 && len(legacy.Clans) == 0 {
		return nil
	}
	return legacy
}

// SaveAll rewrites every table in one transaction: DELETE then INSERT.
// Engines without transactions degrade to direct writes.
func (s *SQLStore) SaveAll(ctx context.Context, st *world.State) error {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		// Tolerated: fall back to unwrapped writes.
		s.log.Debug("save without transaction", zap.Error(err))
		return s.writeAll(ctx, execFunc(s.q.Exec), st)
	}
	if err := s.writeAll(ctx, tx.Exec, st); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no transaction") {
			return nil
		}
		return err
	}
	return nil
}

type execFunc func(ctx context.Context, query string, args ...any) error

func (s *SQLStore) writeAll(ctx context.Context, exec execFunc, st *world.State) error {
	now := s.now().Unix()
	for _, table := range []string{"players", "clans", "clan_battles", "clan_invites"} {
		if err := exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	for _, p := range st.Players {
		if err := exec(ctx, `INSERT INTO players (id, username, name, hp, max_hp,
			infection, survival_days, best_survival_days, clan_id, inventory, monster,
			monster_stun, damage_boost_turns, damage_reduction_turns, radiation_boost,
			first_attack, last_hunt, pending_drop, pvp_wins, pvp_losses, last_gift_time,
			hunt_cooldown_warned, current_danger, current_danger_msg_id, base_url, pvp,
			extra, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Username, p.Name, p.HP, p.MaxHP,
			p.Infection, p.SurvivalDays, p.BestSurvivalDays, p.ClanID,
			marshalJSON(p.Inventory), marshalJSON(p.Monster),
			p.MonsterStun, p.DamageBoostTurns, p.DamageReductionTurns, p.RadiationBoost,
			p.FirstAttack, p.LastHunt, marshalJSON(p.PendingDrop), p.PvpWins, p.PvpLosses,
			p.LastGiftTime, p.HuntCooldownWarned, marshalJSON(p.CurrentDanger),
			p.CurrentDangerMsgID, p.BaseURL, marshalJSON(p.Pvp),
			encodePlayerExtra(p), now); err != nil {
			return err
		}
	}
	for _, c := range st.Clans {
		if err := exec(ctx, `INSERT INTO clans (id, name, points, members, extra, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Points, marshalJSON(c.Members), encodeClanExtra(c), now); err != nil {
			return err
		}
	}
	for _, b := range st.Battles {
		if err := exec(ctx, `INSERT INTO clan_battles (id, clan_id, opponent_clan_id,
			status, created_at, accepted_by, data, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.ClanID, b.OpponentClanID, b.Status, b.CreatedAt, b.AcceptedBy,
			marshalJSON(b.Data), now); err != nil {
			return err
		}
	}
	for _, inv := range st.Invites {
		if err := exec(ctx, `INSERT INTO clan_invites (player_id, clan_id, from_id,
			expires, extra, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			inv.PlayerID, inv.ClanID, inv.FromID, inv.ExpiresAt,
			mergeExtra(struct{}{}, inv.Extra), now); err != nil {
			return err
		}
	}
	return nil
}

// ClearAll truncates every structured table.
func (s *SQLStore) ClearAll(ctx context.Context) error {
	for _, table := range []string{"players", "clans", "clan_battles", "clan_invites"} {
		if err := s.q.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
