package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crimecore/server/internal/combat"
	"github.com/crimecore/server/internal/sched"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// Raid statuses.
const (
	raidLobby  = "lobby"
	raidStyle  = "style"
	raidChoice = "choice"
	raidBattle = "battle"
	raidDone   = "done"
)

// Raid styles.
const (
	styleStealth    = "stealth"
	styleIntellect  = "intellect"
	styleAggression = "aggression"
)

type raidStage struct {
	HP     int
	Dmg    int
	Reward int
	Choice bool
}

// raidStages is the fixed nine-stage ladder.
var raidStages = []raidStage{
	{HP: 370, Dmg: 30, Reward: 100},
	{HP: 1650, Dmg: 320, Reward: 350},
	{HP: 3000, Dmg: 440, Reward: 700, Choice: true},
	{HP: 6300, Dmg: 555, Reward: 1500},
	{HP: 8300, Dmg: 710, Reward: 3000, Choice: true},
	{HP: 9500, Dmg: 800, Reward: 5000},
	{HP: 10000, Dmg: 830, Reward: 7500},
	{HP: 12000, Dmg: 900, Reward: 15000},
	{HP: 17500, Dmg: 1300, Reward: 25000},
}

type raidMember struct {
	PlayerID int64
	Fighter  combat.Fighter
	Status   *combat.Status
}

func (m *raidMember) alive() bool { return m.Status.HP > 0 }

// RaidSession is one clan's run of the nine-stage ladder.
type RaidSession struct {
	Status   string
	ClanID   string
	ChatID   int64
	MsgID    int
	LeaderID int64
	Members  []*raidMember
	Style    string

	Stage         int // 1-based
	LastCleared   int
	DoubleReward  bool
	RewardGranted bool

	Enemy    *combat.Status
	EnemyDmg int
	turnIdx  int
	timer    *sched.Timer
}

// openRaidLobby starts the 130 second gathering window.
func (d *Deps) openRaidLobby(initiator *world.Player, chatID int64, double bool) {
	clan := d.World.ClanOf(initiator)
	if clan == nil {
		d.sendText(chatID, "Сначала вступи в клан.", nil)
		return
	}
	if _, running := d.Sessions.Raids[clan.ID]; running {
		d.sendText(chatID, "🧨 Клан уже в рейде.", nil)
		return
	}
	raid := &RaidSession{
		Status:       raidLobby,
		ClanID:       clan.ID,
		ChatID:       chatID,
		LeaderID:     initiator.ID,
		DoubleReward: double,
	}
	d.Sessions.Raids[clan.ID] = raid
	d.raidJoin(raid, initiator)

	suffix := ""
	if double {
		suffix = "\n💰 Добыча этого рейда удвоена!"
	}
	raid.MsgID = d.sendText(chatID, fmt.Sprintf(
		"🧨 «%s» собирается в рейд! Вступить: /acceptmission\nСбор 130 секунд, максимум %d бойцов.%s",
		clan.Name, raidMaxMembers, suffix), nil)

	raid.timer = d.Timers.After(raidLobbyDuration, func() {
		if d.Sessions.Raids[raid.ClanID] != raid || raid.Status != raidLobby {
			return
		}
		d.raidStyleSelection(raid)
	})
}

func (d *Deps) raidJoin(raid *RaidSession, p *world.Player) {
	p.ResetSignOneShots()
	p.ApplyArmorHelmetBonuses()
	raid.Members = append(raid.Members, &raidMember{
		PlayerID: p.ID,
		Fighter:  combat.PlayerFighter(p),
		Status:   combat.PlayerStatus(p),
	})
}

func (d *Deps) cmdAcceptMission(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	clan := d.World.ClanOf(p)
	if clan == nil {
		d.sendText(cmd.Chat.ID, "Сначала вступи в клан.", nil)
		return
	}
	raid, ok := d.Sessions.Raids[clan.ID]
	if !ok || raid.Status != raidLobby {
		d.sendText(cmd.Chat.ID, "Сбора сейчас нет.", nil)
		return
	}
	for _, m := range raid.Members {
		if m.PlayerID == p.ID {
			d.sendText(cmd.Chat.ID, "Ты уже в отряде.", nil)
			return
		}
	}
	if len(raid.Members) >= raidMaxMembers {
		d.sendText(cmd.Chat.ID, "Отряд уже полон.", nil)
		return
	}
	d.raidJoin(raid, p)
	d.sendText(cmd.Chat.ID, fmt.Sprintf(
		"✅ %s в отряде (%d/%d).", p.DisplayName(), len(raid.Members), raidMaxMembers), nil)
}

func (d *Deps) raidStyleSelection(raid *RaidSession) {
	raid.Status = raidStyle
	kb := transport.NewKeyboard(
		transport.Row(transport.Btn("🤫 Скрытность", raidStyleData(raid.ClanID, styleStealth))),
		transport.Row(transport.Btn("🧠 Интеллект", raidStyleData(raid.ClanID, styleIntellect))),
		transport.Row(transport.Btn("😡 Агрессия", raidStyleData(raid.ClanID, styleAggression))),
	)
	raid.MsgID = d.sendText(raid.ChatID, fmt.Sprintf(
		"🧨 Сбор окончен, в отряде %d бойцов. Лидер, выбирай стиль прохождения:",
		len(raid.Members)), &transport.SendOpts{ReplyMarkup: kb})
}

func raidStyleData(clanID, style string) string {
	return "raid_style:" + clanID + ":" + style
}

func (d *Deps) cbRaidStyle(cb *transport.Callback, arg string) {
	clanID, style, ok := strings.Cut(arg, ":")
	if !ok {
		d.answer(cb, "", false)
		return
	}
	raid := d.Sessions.Raids[clanID]
	if raid == nil || raid.Status != raidStyle {
		d.answer(cb, "Рейд уже идёт.", true)
		return
	}
	if cb.From.ID != raid.LeaderID {
		d.answer(cb, "Стиль выбирает лидер рейда.", true)
		return
	}
	switch style {
	case styleStealth, styleIntellect, styleAggression:
	default:
		d.answer(cb, "", false)
		return
	}
	raid.Style = style
	d.answer(cb, "", false)
	d.raidEnterStage(raid, 1)
}

// raidEnterStage prepares stage number n and either asks the leader for a
// choice or opens the battle.
func (d *Deps) raidEnterStage(raid *RaidSession, n int) {
	raid.Stage = n
	st := raidStages[n-1]
	raid.Enemy = &combat.Status{HP: st.HP, MaxHP: st.HP}
	raid.EnemyDmg = st.Dmg
	raid.turnIdx = 0

	if st.Choice {
		raid.Status = raidChoice
		kb := transport.NewKeyboard(
			transport.Row(transport.Btn("⚔️ В лоб", raidChoiceData(raid.ClanID, n, "attack"))),
			transport.Row(transport.Btn("🤫 Обойти", raidChoiceData(raid.ClanID, n, "stealth"))),
		)
		raid.MsgID = d.sendText(raid.ChatID, fmt.Sprintf(
			"🚧 Этап %d: пост охраны (%d HP). Лидер, как действуем?", n, st.HP),
			&transport.SendOpts{ReplyMarkup: kb})
		return
	}
	d.raidOpenBattle(raid)
}

func raidChoiceData(clanID string, stage int, choice string) string {
	return fmt.Sprintf("raid_choice:%s:%d:%s", clanID, stage, choice)
}

func (d *Deps) cbRaidChoice(cb *transport.Callback, arg string) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) != 3 {
		d.answer(cb, "", false)
		return
	}
	raid := d.Sessions.Raids[parts[0]]
	stage, _ := strconv.Atoi(parts[1])
	if raid == nil || raid.Status != raidChoice || raid.Stage != stage {
		d.answer(cb, "Этот выбор уже не актуален.", true)
		return
	}
	if cb.From.ID != raid.LeaderID {
		d.answer(cb, "Решает лидер рейда.", true)
		return
	}
	d.answer(cb, "", false)

	if parts[2] == "stealth" {
		chance := 0.10
		if raid.Style == styleStealth {
			chance = 0.70
		}
		if d.Loot.Chance(chance) {
			raid.MsgID = d.sendText(raid.ChatID,
				fmt.Sprintf("🤫 Отряд проскользнул мимо поста! Этап %d пройден.", raid.Stage), nil)
			d.raidStageCleared(raid)
			return
		}
		d.sendText(raid.ChatID, "🚨 Вас заметили! Придётся драться.", nil)
	}
	d.raidOpenBattle(raid)
}

func (d *Deps) raidOpenBattle(raid *RaidSession) {
	raid.Status = raidBattle
	if raid.Style == styleAggression && d.Loot.Chance(0.5) {
		raid.EnemyDmg = raid.EnemyDmg * 3 / 4
		if raid.EnemyDmg < 1 {
			raid.EnemyDmg = 1
		}
		d.sendText(raid.ChatID, "😡 Яростный натиск! Враг дерётся вполсилы.", nil)
	}
	raid.MsgID = d.sendText(raid.ChatID, d.raidBattleText(raid, nil), nil)
	raid.timer = d.Timers.After(raidBattleTick, func() { d.raidBattleRound(raid) })
}

func (d *Deps) raidAliveMembers(raid *RaidSession) []*raidMember {
	alive := make([]*raidMember, 0, len(raid.Members))
	for _, m := range raid.Members {
		if m.alive() {
			alive = append(alive, m)
		}
	}
	return alive
}

// raidBattleRound is one member turn plus the enemy's counterstrike.
func (d *Deps) raidBattleRound(raid *RaidSession) {
	if d.Sessions.Raids[raid.ClanID] != raid || raid.Status != raidBattle {
		return
	}
	alive := d.raidAliveMembers(raid)
	if len(alive) == 0 {
		d.finalizeRaid(raid, false)
		return
	}
	m := alive[raid.turnIdx%len(alive)]
	raid.turnIdx++

	enemyName := fmt.Sprintf("Страж этапа %d", raid.Stage)
	var log []string
	if m.Status.Stun > 0 {
		m.Status.Stun--
		log = append(log, fmt.Sprintf("⚡ %s оглушён и пропускает ход!", m.Fighter.Name))
	} else {
		log = combat.Attack(d.Rng, m.Fighter, combat.Fighter{Name: enemyName}, m.Status, raid.Enemy, true)
	}

	if raid.Enemy.HP <= 0 {
		d.editOrSend(raid.ChatID, raid.MsgID, d.raidBattleText(raid, log), nil)
		d.sendText(raid.ChatID, fmt.Sprintf("💀 Страж пал! Этап %d пройден.", raid.Stage), nil)
		d.raidStageCleared(raid)
		return
	}

	if raid.Enemy.Stun > 0 {
		raid.Enemy.Stun--
		log = append(log, "⚡ Враг оглушён и не отвечает!")
	} else {
		log = append(log, combat.Retaliate(d.Rng, enemyName, raid.EnemyDmg, m.Fighter, raid.Enemy, m.Status)...)
		if !m.alive() {
			log = append(log, fmt.Sprintf("💀 %s падает без сознания.", m.Fighter.Name))
		}
	}

	if len(d.raidAliveMembers(raid)) == 0 {
		d.editOrSend(raid.ChatID, raid.MsgID, d.raidBattleText(raid, log), nil)
		d.finalizeRaid(raid, false)
		return
	}

	raid.MsgID = d.editOrSend(raid.ChatID, raid.MsgID, d.raidBattleText(raid, log), nil)
	raid.timer = d.Timers.After(raidBattleTick, func() { d.raidBattleRound(raid) })
}

func (d *Deps) raidBattleText(raid *RaidSession, log []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚧 Этап %d/%d. Страж: %d/%d HP\n", raid.Stage, len(raidStages),
		raid.Enemy.HP, raid.Enemy.MaxHP)
	for _, m := range raid.Members {
		mark := "❤️"
		if !m.alive() {
			mark = "💀"
		}
		fmt.Fprintf(&b, "%s %s: %d/%d\n", mark, m.Fighter.Name, m.Status.HP, m.Status.MaxHP)
	}
	if len(log) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(log, "\n"))
	}
	return b.String()
}

// raidStageCleared banks the stage and moves on after a short breather.
func (d *Deps) raidStageCleared(raid *RaidSession) {
	raid.LastCleared = raid.Stage
	if raid.Stage >= len(raidStages) {
		d.finalizeRaid(raid, true)
		return
	}

	// Supply roll between stages.
	chance := 0.20
	if raid.Style == styleIntellect {
		chance = 0.70
	}
	if d.Loot.Chance(chance) {
		for _, m := range d.raidAliveMembers(raid) {
			m.Status.HP += raidMedkitHeal
			if m.Status.HP > m.Status.MaxHP {
				m.Status.HP = m.Status.MaxHP
			}
		}
		d.sendText(raid.ChatID, "💉 Найдены аптечки! +300 HP каждому живому бойцу.", nil)
	}

	next := raid.Stage + 1
	raid.timer = d.Timers.After(raidTransition, func() {
		if d.Sessions.Raids[raid.ClanID] != raid || raid.Status == raidDone {
			return
		}
		d.raidEnterStage(raid, next)
	})
}

// finalizeRaid banks the last cleared stage's reward exactly once and tears
// the session down.
func (d *Deps) finalizeRaid(raid *RaidSession, victory bool) {
	if raid.RewardGranted {
		return
	}
	raid.RewardGranted = true
	raid.Status = raidDone
	raid.timer.Cancel()
	delete(d.Sessions.Raids, raid.ClanID)

	reward := 0
	if raid.LastCleared > 0 {
		reward = raidStages[raid.LastCleared-1].Reward
	}
	if raid.DoubleReward {
		reward *= 2
	}

	clan := d.World.Clans[raid.ClanID]
	if clan != nil && reward > 0 {
		clan.AddPoints(reward)
	}
	for _, m := range raid.Members {
		p, ok := d.World.Players[m.PlayerID]
		if !ok {
			continue
		}
		combat.CommitPlayer(p, m.Status)
		p.ResetSignOneShots()
		if p.HP < 1 {
			p.HP = 1
		}
		if reward > 0 {
			p.AddInfection(reward)
		}
	}

	if victory {
		d.sendText(raid.ChatID, fmt.Sprintf(
			"🏆 Логово зачищено! Клан получает %d очков, каждый участник +%d заражения.",
			reward, reward), nil)
	} else if reward > 0 {
		d.sendText(raid.ChatID, fmt.Sprintf(
			"☠️ Отряд разбит на этапе %d. За пройденное: клан +%d очков, участники +%d заражения.",
			raid.Stage, reward, reward), nil)
	} else {
		d.sendText(raid.ChatID, "☠️ Отряд разбит у самого входа. Добычи нет.", nil)
	}
	d.save()
}
