package handler

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/crimecore/server/internal/combat"
	"github.com/crimecore/server/internal/sched"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// Clash statuses.
const (
	clashCountdown = "countdown"
	clashReady     = "ready"
	clashActive    = "active"
	clashDone      = "done"
)

// PendingClash is the single in-flight clan battle: pairing, countdown,
// acceptance and the sequential duel chain.
type PendingClash struct {
	Status   string
	ChatID   int64
	MsgID    int
	AID, BID string // A initiated the pairing
	AQueue   []int64
	BQueue   []int64
	AIdx     int
	BIdx     int
	Accepted bool
	Turn     int // which side strikes first this round
	Record   *world.ClanBattle

	fighters map[int64]*duelSide
	timer    *sched.Timer
}

func (d *Deps) cmdClanBattle(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	clan := d.World.ClanOf(p)
	if clan == nil {
		d.sendText(cmd.Chat.ID, "Сначала вступи в клан.", nil)
		return
	}
	if d.Sessions.PendingClash != nil && d.Sessions.PendingClash.Status != clashDone {
		d.sendText(cmd.Chat.ID, "⚔️ Битва уже собирается, подожди её конца.", nil)
		return
	}
	for _, id := range d.Sessions.BattleQueues[clan.ID] {
		if id == p.ID {
			d.sendText(cmd.Chat.ID, "Ты уже в очереди.", nil)
			return
		}
	}
	d.Sessions.BattleQueues[clan.ID] = append(d.Sessions.BattleQueues[clan.ID], p.ID)
	d.sendText(cmd.Chat.ID, fmt.Sprintf(
		"⚔️ %s встаёт в строй «%s» (%d в очереди).",
		p.DisplayName(), clan.Name, len(d.Sessions.BattleQueues[clan.ID])), nil)
	d.tryStartClashCountdown(cmd.Chat.ID, clan.ID)
}

// tryStartClashCountdown pairs the first two distinct clans that both have
// two or more queued fighters and opens the 20 second countdown.
func (d *Deps) tryStartClashCountdown(chatID int64, aID string) {
	if len(d.Sessions.BattleQueues[aID]) < 2 {
		return
	}
	var bID string
	for id, q := range d.Sessions.BattleQueues {
		if id != aID && len(q) >= 2 {
			bID = id
			break
		}
	}
	if bID == "" {
		return
	}
	a, b := d.World.Clans[aID], d.World.Clans[bID]
	if a == nil || b == nil {
		return
	}

	record := &world.ClanBattle{
		ID:             uuid.NewString(),
		ClanID:         aID,
		OpponentClanID: bID,
		Status:         world.BattlePending,
		CreatedAt:      d.Now().Unix(),
	}
	d.World.Battles = append(d.World.Battles, record)

	clash := &PendingClash{
		Status: clashCountdown,
		ChatID: chatID,
		AID:    aID,
		BID:    bID,
		Record: record,
	}
	d.Sessions.PendingClash = clash

	clash.MsgID = d.sendText(chatID, fmt.Sprintf(
		"⚔️ «%s» против «%s»!\nБойцы «%s», подтвердите бой командой /acceptbattle. Отсчёт: 20 секунд.",
		a.Name, b.Name, b.Name), nil)

	clash.timer = d.Timers.After(clanBattleCountdown, func() {
		if d.Sessions.PendingClash != clash || clash.Status != clashCountdown {
			return
		}
		if len(d.Sessions.BattleQueues[aID]) < 2 || len(d.Sessions.BattleQueues[bID]) < 2 {
			d.abortClash(clash, "⚠️ Бойцы разбежались, битва отменена.")
			return
		}
		clash.Status = clashReady
		if clash.Accepted {
			d.startClash(clash)
		}
	})
}

func (d *Deps) cmdAcceptBattle(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	clash := d.Sessions.PendingClash
	if clash == nil || (clash.Status != clashCountdown && clash.Status != clashReady) {
		d.sendText(cmd.Chat.ID, "Подтверждать нечего.", nil)
		return
	}
	clan := d.World.ClanOf(p)
	if clan == nil || clan.ID != clash.BID {
		d.sendText(cmd.Chat.ID, "Подтвердить бой может только вызванный клан.", nil)
		return
	}
	if clash.Accepted {
		d.sendText(cmd.Chat.ID, "Уже подтверждено, ждём отсчёта.", nil)
		return
	}
	clash.Accepted = true
	clash.Record.AcceptedBy = p.ID
	if clash.Status == clashReady {
		d.startClash(clash)
		return
	}
	d.sendText(cmd.Chat.ID, "✅ Бой подтверждён. Начнём после отсчёта.", nil)
}

func (d *Deps) abortClash(clash *PendingClash, reason string) {
	clash.Status = clashDone
	clash.timer.Cancel()
	clash.Record.Status = world.BattleFinished
	delete(d.Sessions.BattleQueues, clash.AID)
	delete(d.Sessions.BattleQueues, clash.BID)
	d.Sessions.PendingClash = nil
	d.sendText(clash.ChatID, reason, nil)
}

// startClash freezes both rosters and schedules the duel chain.
func (d *Deps) startClash(clash *PendingClash) {
	clash.Status = clashActive
	clash.Record.Status = world.BattleActive
	clash.AQueue = append([]int64(nil), d.Sessions.BattleQueues[clash.AID]...)
	clash.BQueue = append([]int64(nil), d.Sessions.BattleQueues[clash.BID]...)
	clash.fighters = make(map[int64]*duelSide, len(clash.AQueue)+len(clash.BQueue))
	for _, id := range append(append([]int64(nil), clash.AQueue...), clash.BQueue...) {
		if p, ok := d.World.Players[id]; ok {
			p.ResetSignOneShots()
			clash.fighters[id] = playerSide(p)
		}
	}
	clash.MsgID = d.sendText(clash.ChatID, d.clashText(clash, []string{"Стенка на стенку. Поехали!"}), nil)
	clash.timer = d.Timers.After(clanBattleRoundPace, func() { d.clashRound(clash) })
}

// front returns the first still-registered fighter at or after idx.
func clashFront(queue []int64, idx int, fighters map[int64]*duelSide) *duelSide {
	for idx < len(queue) {
		if s, ok := fighters[queue[idx]]; ok {
			return s
		}
		idx++
	}
	return nil
}

// clashRound plays one front-vs-front exchange and reschedules itself.
func (d *Deps) clashRound(clash *PendingClash) {
	if d.Sessions.PendingClash != clash || clash.Status != clashActive {
		return
	}
	af := clashFront(clash.AQueue, clash.AIdx, clash.fighters)
	bf := clashFront(clash.BQueue, clash.BIdx, clash.fighters)
	if af == nil || bf == nil {
		d.finishClash(clash, af != nil)
		return
	}

	first, second := af, bf
	if clash.Turn == 1 {
		first, second = bf, af
	}
	clash.Turn = 1 - clash.Turn

	var log []string
	log = append(log, d.clashStrike(first, second)...)
	if second.alive() {
		log = append(log, d.clashStrike(second, first)...)
	}

	if !af.alive() {
		clash.AIdx++
		log = append(log, fmt.Sprintf("💀 %s выбывает!", af.Fighter.Name))
	}
	if !bf.alive() {
		clash.BIdx++
		log = append(log, fmt.Sprintf("💀 %s выбывает!", bf.Fighter.Name))
	}

	if clash.AIdx >= len(clash.AQueue) || clash.BIdx >= len(clash.BQueue) {
		d.finishClash(clash, clash.BIdx >= len(clash.BQueue))
		return
	}
	clash.MsgID = d.editOrSend(clash.ChatID, clash.MsgID, d.clashText(clash, log), nil)
	clash.timer = d.Timers.After(clanBattleRoundPace, func() { d.clashRound(clash) })
}

func (d *Deps) clashStrike(atk, def *duelSide) []string {
	if atk.Status.Stun > 0 {
		atk.Status.Stun--
		return []string{fmt.Sprintf("⚡ %s оглушён и пропускает ход!", atk.Fighter.Name)}
	}
	return combat.Attack(d.Rng, atk.Fighter, def.Fighter, atk.Status, def.Status, false)
}

func (d *Deps) clashText(clash *PendingClash, log []string) string {
	a, b := d.World.Clans[clash.AID], d.World.Clans[clash.BID]
	head := fmt.Sprintf("⚔️ «%s» (%d бойцов)  vs  «%s» (%d бойцов)",
		a.Name, len(clash.AQueue)-clash.AIdx, b.Name, len(clash.BQueue)-clash.BIdx)
	if len(log) == 0 {
		return head
	}
	return head + "\n\n" + strings.Join(log, "\n")
}

// finishClash settles the 500-point stake and releases both queues.
func (d *Deps) finishClash(clash *PendingClash, aWon bool) {
	clash.Status = clashDone
	clash.timer.Cancel()

	winID, loseID := clash.AID, clash.BID
	if !aWon {
		winID, loseID = clash.BID, clash.AID
	}
	winner, loser := d.World.Clans[winID], d.World.Clans[loseID]
	if winner != nil {
		winner.AddPoints(clanBattleStake)
	}
	if loser != nil {
		loser.AddPoints(-clanBattleStake)
	}

	for id, s := range clash.fighters {
		if p, ok := d.World.Players[id]; ok {
			combat.CommitPlayer(p, s.Status)
			p.ResetSignOneShots()
			if p.HP < 1 {
				p.HP = 1
			}
		}
	}

	clash.Record.Status = world.BattleFinished
	clash.Record.Data = map[string]any{"winner": winID}

	delete(d.Sessions.BattleQueues, clash.AID)
	delete(d.Sessions.BattleQueues, clash.BID)
	d.Sessions.PendingClash = nil

	name := "клан"
	if winner != nil {
		name = "«" + winner.Name + "»"
	}
	d.sendText(clash.ChatID, fmt.Sprintf(
		"🏆 Побеждает %s! +%d очков, проигравшие теряют %d.",
		name, clanBattleStake, clanBattleStake), nil)
	d.save()
}
