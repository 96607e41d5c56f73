package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/crimecore/server/internal/combat"
	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/loot"
	"github.com/crimecore/server/internal/sched"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// Duel statuses.
const (
	duelActive = "active"
	duelDone   = "done"
)

// duelSide is one participant: a real player (PlayerID set) or a
// synthesized opponent.
type duelSide struct {
	PlayerID int64
	Fighter  combat.Fighter
	Status   *combat.Status
}

func (s *duelSide) alive() bool { return s.Status.HP > 0 }

// Duel is a running alternating-turn fight. Sides[0] moves first.
type Duel struct {
	Status string
	ChatID int64
	MsgID  int
	Sides  [2]*duelSide
	Turn   int
	Ranked bool

	timer    *sched.Timer
	pace     func() time.Duration
	onFinish func(winner, loser *duelSide)
}

func playerSide(p *world.Player) *duelSide {
	return &duelSide{
		PlayerID: p.ID,
		Fighter:  combat.PlayerFighter(p),
		Status:   combat.PlayerStatus(p),
	}
}

func (d *Deps) cmdPvp(cmd *transport.Command) {
	if ident := arg0(cmd.Args); ident != "" {
		d.acceptPvpRequest(cmd, ident)
		return
	}
	d.openPvpRequest(cmd)
}

func (d *Deps) cmdPvpRequest(cmd *transport.Command) {
	d.openPvpRequest(cmd)
}

func (d *Deps) openPvpRequest(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	if msg := d.pvpBlocked(p); msg != "" {
		d.sendText(cmd.Chat.ID, msg, nil)
		return
	}
	now := d.Now()
	d.World.PvpRequests[p.ID] = &world.PvpRequest{
		ChallengerID: p.ID,
		Username:     p.Username,
		ChatID:       cmd.Chat.ID,
		CreatedAt:    now.Unix(),
		ExpiresAt:    now.Add(pvpRequestTTL).Unix(),
	}
	d.sendText(cmd.Chat.ID, fmt.Sprintf(
		"⚔️ %s бросает вызов! Принять: /pvp %d%s\nВызов действует минуту.",
		p.DisplayName(), p.ID, usernameHint(p)), nil)
}

func usernameHint(p *world.Player) string {
	if p.Username == "" {
		return ""
	}
	return " или /pvp @" + p.Username
}

func (d *Deps) acceptPvpRequest(cmd *transport.Command, ident string) {
	p := d.ensureFrom(cmd.From)
	req := d.World.PvpRequestByIdent(ident)
	if req == nil || req.ExpiresAt <= d.Now().Unix() {
		d.sendText(cmd.Chat.ID, "🤷 Такого вызова нет или он истёк.", nil)
		return
	}
	if req.ChallengerID == p.ID {
		d.sendText(cmd.Chat.ID, "Сам с собой драться нельзя.", nil)
		return
	}
	challenger, ok := d.World.Players[req.ChallengerID]
	if !ok {
		delete(d.World.PvpRequests, req.ChallengerID)
		return
	}
	if msg := d.pvpBlocked(p); msg != "" {
		d.sendText(cmd.Chat.ID, msg, nil)
		return
	}
	if msg := d.pvpBlocked(challenger); msg != "" {
		d.sendText(cmd.Chat.ID, "Противник сейчас не может драться.", nil)
		return
	}
	delete(d.World.PvpRequests, req.ChallengerID)
	d.startPlayerDuel(cmd.Chat.ID, challenger, p, false)
}

// pvpBlocked reports why a player may not start a PvP fight, or "".
func (d *Deps) pvpBlocked(p *world.Player) string {
	if _, fighting := d.Sessions.Duels[p.ID]; fighting || p.InCombat() {
		return "⚔️ Ты уже в бою."
	}
	if d.Now().Unix()-p.LastPvpStartAt < int64(pvpStartCooldown.Seconds()) {
		return "⏳ Отдышись, следующий бой через 20 секунд."
	}
	return ""
}

func (d *Deps) cbPvpMenu(cb *transport.Callback) {
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID, "⚔️ Арена. Выбирай бой:",
		&transport.SendOpts{ReplyMarkup: pvpMenuKeyboard()})
}

func (d *Deps) cbPvpChat(cb *transport.Callback) {
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		"💬 Напиши /pvp в любом чате со мной, чтобы бросить открытый вызов. Принимают его командой /pvp <id> или /pvp @ник.",
		&transport.SendOpts{ReplyMarkup: pvpMenuKeyboard()})
}

func (d *Deps) cbPvpFind(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	if msg := d.pvpBlocked(p); msg != "" {
		d.answer(cb, msg, true)
		return
	}
	d.answer(cb, "", false)
	bot := d.randomOpponent()
	d.startDuel(cb.Chat.ID, playerSide(p), bot, false, nil)
}

func (d *Deps) cbPvpRanked(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	if msg := d.pvpBlocked(p); msg != "" {
		d.answer(cb, msg, true)
		return
	}
	d.answer(cb, "", false)
	bot := d.rankedOpponent(p.RankedStage())
	d.startDuel(cb.Chat.ID, playerSide(p), bot, true, nil)
}

// randomOpponent synthesizes a fighter with uniformly drawn gear and a coin
// flip for the sign slot.
func (d *Deps) randomOpponent() *duelSide {
	f := combat.Fighter{
		Name:     "🤖 Бродяга " + randomCallsign(d.Rng),
		Weapon:   d.Loot.UniformPick(d.Catalog.ItemsByKind(data.KindWeapon)),
		Helmet:   d.Loot.UniformPick(d.Catalog.ItemsByKind(data.KindHelmet)),
		Mutation: d.Loot.UniformPick(d.Catalog.ItemsByKind(data.KindMutation)),
		Extra:    d.Loot.UniformPick(d.Catalog.ItemsByKind(data.KindExtra)),
	}
	if d.Loot.Chance(0.5) {
		f.Sign = d.Loot.UniformPick(d.Catalog.ItemsByKind(data.KindSign))
	}
	return synthSide(f, d.Loot.UniformPick(d.Catalog.ItemsByKind(data.KindArmor)))
}

// rankedOpponent synthesizes a fighter whose gear tracks the challenger's
// rating stage.
func (d *Deps) rankedOpponent(stage int) *duelSide {
	f := combat.Fighter{
		Name:     "🏅 Претендент " + randomCallsign(d.Rng),
		Weapon:   d.Loot.PickRankedItem(d.Catalog.ItemsByKind(data.KindWeapon), stage),
		Helmet:   d.Loot.PickRankedItem(d.Catalog.ItemsByKind(data.KindHelmet), stage),
		Mutation: d.Loot.PickRankedItem(d.Catalog.ItemsByKind(data.KindMutation), stage),
		Extra:    d.Loot.PickRankedItem(d.Catalog.ItemsByKind(data.KindExtra), stage),
		Sign:     d.Loot.PickRankedSign(d.Catalog.ItemsByKind(data.KindSign), stage),
	}
	return synthSide(f, d.Loot.PickRankedItem(d.Catalog.ItemsByKind(data.KindArmor), stage))
}

func synthSide(f combat.Fighter, armor *data.Item) *duelSide {
	maxHP := world.BaseMaxHP
	if armor != nil {
		maxHP += armor.HP
	}
	return &duelSide{
		Fighter: f,
		Status:  &combat.Status{HP: maxHP, MaxHP: maxHP},
	}
}

var callsigns = []string{"Шрам", "Клык", "Ржавый", "Тень", "Костыль", "Вьюга", "Стилет", "Гарь"}

func randomCallsign(rng loot.Rand) string {
	return callsigns[rng.Intn(len(callsigns))]
}

func (d *Deps) startPlayerDuel(chatID int64, a, b *world.Player, ranked bool) {
	d.startDuel(chatID, playerSide(a), playerSide(b), ranked, nil)
}

// startDuel registers the session, stamps cooldowns and schedules the first
// round. onFinish, when set, replaces the default reward logic. Callers may
// override pace on the returned duel before the first round fires.
func (d *Deps) startDuel(chatID int64, a, b *duelSide, ranked bool, onFinish func(winner, loser *duelSide)) *Duel {
	duel := &Duel{
		Status:   duelActive,
		ChatID:   chatID,
		Sides:    [2]*duelSide{a, b},
		Ranked:   ranked,
		onFinish: onFinish,
	}
	duel.pace = func() time.Duration {
		return time.Duration(d.Loot.IntBetween(
			int(pvpRoundPaceMin.Milliseconds()), int(pvpRoundPaceMax.Milliseconds()),
		)) * time.Millisecond
	}

	now := d.Now().Unix()
	for _, s := range duel.Sides {
		if p, ok := d.World.Players[s.PlayerID]; ok {
			p.LastPvpStartAt = now
			p.ResetSignOneShots()
			p.Pvp = &world.PvpRef{Ranked: ranked}
			d.Sessions.Duels[p.ID] = duel
		}
	}
	if pa, ok := d.World.Players[a.PlayerID]; ok {
		pa.Pvp.OpponentID = b.PlayerID
		pa.Pvp.OpponentName = b.Fighter.Name
	}
	if pb, ok := d.World.Players[b.PlayerID]; ok {
		pb.Pvp.OpponentID = a.PlayerID
		pb.Pvp.OpponentName = a.Fighter.Name
	}

	duel.MsgID = d.sendText(chatID, duelText(duel, []string{"Бой начинается!"}), nil)
	duel.timer = d.Timers.After(duel.pace(), func() { d.duelRound(duel) })
	return duel
}

// duelRound plays one turn and reschedules itself until someone drops.
func (d *Deps) duelRound(duel *Duel) {
	if duel.Status != duelActive {
		return
	}
	actor := duel.Sides[duel.Turn]
	target := duel.Sides[1-duel.Turn]

	var log []string
	if actor.Status.Stun > 0 {
		actor.Status.Stun--
		log = []string{fmt.Sprintf("⚡ %s оглушён и пропускает ход!", actor.Fighter.Name)}
	} else {
		log = combat.Attack(d.Rng, actor.Fighter, target.Fighter, actor.Status, target.Status, false)
	}
	duel.Turn = 1 - duel.Turn

	// A sign save may have revived either side; check both.
	for i, s := range duel.Sides {
		if !s.alive() {
			d.finishDuel(duel, duel.Sides[1-i], s, log)
			return
		}
	}

	duel.MsgID = d.editOrSend(duel.ChatID, duel.MsgID, duelText(duel, log), nil)
	duel.timer = d.Timers.After(duel.pace(), func() { d.duelRound(duel) })
}

func duelText(duel *Duel, log []string) string {
	a, b := duel.Sides[0], duel.Sides[1]
	head := fmt.Sprintf("⚔️ %s (%d/%d)  vs  %s (%d/%d)",
		a.Fighter.Name, a.Status.HP, a.Status.MaxHP,
		b.Fighter.Name, b.Status.HP, b.Status.MaxHP)
	if len(log) == 0 {
		return head
	}
	return head + "\n\n" + strings.Join(log, "\n")
}

func (d *Deps) finishDuel(duel *Duel, winner, loser *duelSide, log []string) {
	duel.Status = duelDone
	duel.timer.Cancel()

	for _, s := range duel.Sides {
		p, ok := d.World.Players[s.PlayerID]
		if !ok {
			continue
		}
		delete(d.Sessions.Duels, p.ID)
		combat.CommitPlayer(p, s.Status)
		p.Pvp = nil
		p.ResetSignOneShots()
		if p.HP < 1 {
			p.HP = 1
		}
	}

	lines := append(log, "", fmt.Sprintf("🏆 %s побеждает!", winner.Fighter.Name))

	if duel.onFinish != nil {
		duel.onFinish(winner, loser)
	} else {
		lines = append(lines, d.duelRewards(duel, winner, loser)...)
	}

	d.editOrSend(duel.ChatID, duel.MsgID, duelText(duel, lines), nil)
	d.save()
}

func (d *Deps) duelRewards(duel *Duel, winner, loser *duelSide) []string {
	var lines []string
	if pw, ok := d.World.Players[winner.PlayerID]; ok {
		pw.PvpWins++
		if duel.Ranked {
			pw.GrantRankedPvpPoints(world.RankedPointsPerWin)
			lines = append(lines, fmt.Sprintf("🏅 Рейтинг: %d (+%d)", pw.PvpRating, world.RankedPointsPerWin))
		} else {
			pw.AddInfection(pvpWinInfection)
			lines = append(lines, fmt.Sprintf("☣️ +%d заражения победителю.", pvpWinInfection))
		}
	}
	if pl, ok := d.World.Players[loser.PlayerID]; ok {
		pl.PvpLosses++
		if duel.Ranked {
			pl.ResetPvpRating()
			lines = append(lines, "📉 Рейтинг проигравшего сброшен.")
		}
	}
	return lines
}
