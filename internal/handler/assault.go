package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crimecore/server/internal/sched"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// Assault statuses.
const (
	assaultIdle       = "idle"       // base held, waiting for the next expedition
	assaultExpedition = "expedition" // scout in the field, attack window open
	assaultDuel       = "duel"       // interceptor fight in progress
)

// AssaultKey identifies one clan's base in one chat. Several clans may hold
// bases in the same chat.
type AssaultKey struct {
	ChatID int64
	ClanID string
}

// AssaultState is the expedition cycle of one occupied base.
type AssaultState struct {
	Status       string
	Key          AssaultKey
	ExpeditionID string
	ScoutID      int64

	windowTimer  *sched.Timer
	cadenceTimer *sched.Timer
}

func (d *Deps) cmdAssault(cmd *transport.Command) {
	if cmd.Chat.IsPrivate() {
		d.sendText(cmd.Chat.ID, "Базу можно захватить только в групповом чате.", nil)
		return
	}
	p := d.ensureFrom(cmd.From)
	clan := d.World.ClanOf(p)
	if clan == nil {
		d.sendText(cmd.Chat.ID, "Сначала вступи в клан.", nil)
		return
	}
	count, err := d.Msg.ChatMemberCount(cmd.Chat.ID)
	if err != nil {
		d.Log.Warn("member count failed", zap.Int64("chat", cmd.Chat.ID), zap.Error(err))
		d.sendText(cmd.Chat.ID, "Не удалось оценить чат, попробуй позже.", nil)
		return
	}
	if count < assaultMinMembers {
		d.sendText(cmd.Chat.ID, fmt.Sprintf(
			"Для базы нужен чат хотя бы из %d человек.", assaultMinMembers), nil)
		return
	}
	key := AssaultKey{ChatID: cmd.Chat.ID, ClanID: clan.ID}
	if _, held := d.Sessions.Assaults[key]; held {
		d.sendText(cmd.Chat.ID, "Этот чат уже под вашей базой.", nil)
		return
	}

	st := &AssaultState{Status: assaultIdle, Key: key}
	d.Sessions.Assaults[key] = st
	d.scheduleExpedition(st)
	d.sendText(cmd.Chat.ID, fmt.Sprintf(
		"🏭 «%s» разворачивает базу в этом чате! Вылазки каждые 35 минут.", clan.Name), nil)
}

func (d *Deps) cmdUnassault(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	clan := d.World.ClanOf(p)
	if clan == nil {
		d.sendText(cmd.Chat.ID, "Ты не в клане.", nil)
		return
	}
	key := AssaultKey{ChatID: cmd.Chat.ID, ClanID: clan.ID}
	st, held := d.Sessions.Assaults[key]
	if !held {
		d.sendText(cmd.Chat.ID, "У вашего клана здесь нет базы.", nil)
		return
	}
	d.removeAssault(st)
	d.sendText(cmd.Chat.ID, fmt.Sprintf("🏳️ «%s» сворачивает базу.", clan.Name), nil)
}

func (d *Deps) removeAssault(st *AssaultState) {
	st.windowTimer.Cancel()
	st.cadenceTimer.Cancel()
	delete(d.Sessions.Assaults, st.Key)
}

func (d *Deps) scheduleExpedition(st *AssaultState) {
	st.Status = assaultIdle
	st.cadenceTimer = d.Timers.After(assaultCadence, func() {
		if d.Sessions.Assaults[st.Key] != st || st.Status != assaultIdle {
			return
		}
		d.startExpedition(st)
	})
}

// startExpedition sends a clan scout into the chat and opens the five minute
// interception window.
func (d *Deps) startExpedition(st *AssaultState) {
	clan := d.World.Clans[st.Key.ClanID]
	if clan == nil || len(clan.Members) == 0 {
		d.removeAssault(st)
		return
	}
	scout := d.randomMember(clan)
	if scout == nil {
		d.scheduleExpedition(st)
		return
	}

	st.Status = assaultExpedition
	st.ExpeditionID = uuid.NewString()
	st.ScoutID = scout.ID

	kb := transport.NewKeyboard(transport.Row(transport.Btn("⚔️ Перехватить",
		fmt.Sprintf("assault_attack:%d:%s:%s", st.Key.ChatID, st.Key.ClanID, st.ExpeditionID))))
	d.sendText(st.Key.ChatID, fmt.Sprintf(
		"🏭 Вылазка «%s»: разведчик %s уходит в рейд по окрестностям.\nЧужаки могут перехватить его в течение 5 минут.",
		clan.Name, scout.DisplayName()), &transport.SendOpts{ReplyMarkup: kb})

	expID := st.ExpeditionID
	st.windowTimer = d.Timers.After(assaultWindow, func() {
		if d.Sessions.Assaults[st.Key] != st || st.Status != assaultExpedition || st.ExpeditionID != expID {
			return
		}
		d.expeditionUnchallenged(st, clan)
	})
}

func (d *Deps) randomMember(clan *world.Clan) *world.Player {
	ids := make([]int64, 0, len(clan.Members))
	for _, id := range clan.Members {
		if _, ok := d.World.Players[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return d.World.Players[ids[d.Rng.Intn(len(ids))]]
}

// expeditionUnchallenged rolls the 34/40/26 outcome split.
func (d *Deps) expeditionUnchallenged(st *AssaultState, clan *world.Clan) {
	roll := d.Rng.Float64()
	var points int
	var text string
	switch {
	case roll < 0.34:
		points = 300
		text = "💰 Разведчик вернулся с богатой добычей!"
	case roll < 0.74:
		points = 100
		text = "📦 Разведчик принёс кое-что полезное."
	default:
		points = 30
		text = "🥀 Вылазка почти впустую, пара мелочей."
	}
	clan.AddPoints(points)
	d.sendText(st.Key.ChatID, fmt.Sprintf("%s «%s» +%d очков.", text, clan.Name, points), nil)
	d.scheduleExpedition(st)
	d.save()
}

// cbAssaultAttack starts the interceptor duel against the scout.
func (d *Deps) cbAssaultAttack(cb *transport.Callback, arg string) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) != 3 {
		d.answer(cb, "", false)
		return
	}
	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		d.answer(cb, "", false)
		return
	}
	key := AssaultKey{ChatID: chatID, ClanID: parts[1]}
	st := d.Sessions.Assaults[key]
	if st == nil || st.Status != assaultExpedition || st.ExpeditionID != parts[2] {
		d.answer(cb, "Разведчик уже ушёл.", true)
		return
	}

	attacker := d.ensureFrom(cb.From)
	scout, ok := d.World.Players[st.ScoutID]
	if !ok {
		d.answer(cb, "Разведчик уже ушёл.", true)
		return
	}
	if attacker.ClanID == "" || attacker.ClanID == st.Key.ClanID {
		d.answer(cb, "Перехватить может только боец другого клана.", true)
		return
	}
	if _, busy := d.Sessions.Duels[attacker.ID]; busy || attacker.InCombat() {
		d.answer(cb, "Ты сейчас занят другим боем.", true)
		return
	}
	if _, busy := d.Sessions.Duels[scout.ID]; busy || scout.InCombat() {
		d.answer(cb, "Разведчик уже дерётся.", true)
		return
	}
	d.answer(cb, "", false)

	st.Status = assaultDuel
	st.windowTimer.Cancel()
	attackerClanID := attacker.ClanID

	duel := d.startDuel(st.Key.ChatID, playerSide(attacker), playerSide(scout), false,
		func(winner, _ *duelSide) {
			winID := st.Key.ClanID
			if winner.PlayerID == attacker.ID {
				winID = attackerClanID
			}
			if clan := d.World.Clans[winID]; clan != nil {
				clan.AddPoints(assaultWinPoints)
				d.sendText(st.Key.ChatID, fmt.Sprintf(
					"🏭 «%s» забирает добычу вылазки: +%d очков.", clan.Name, assaultWinPoints), nil)
			}
			if d.Sessions.Assaults[st.Key] == st {
				d.scheduleExpedition(st)
			}
		})
	duel.pace = func() time.Duration { return assaultDuelTick }
}
