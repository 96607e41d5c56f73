package handler

import (
	"fmt"
	"strings"

	"github.com/crimecore/server/internal/combat"
	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// cbHunt rolls the encounter ladder. The branches are mutually exclusive:
// the first roll that hits consumes the encounter.
func (d *Deps) cbHunt(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)

	cd := huntCooldown
	if d.Cfg.IsAdmin(p.ID) {
		cd = adminHuntCooldown
	}
	now := d.Now().Unix()
	if now-p.LastHunt < int64(cd.Seconds()) {
		left := int64(cd.Seconds()) - (now - p.LastHunt)
		if !p.HuntCooldownWarned {
			p.HuntCooldownWarned = true
			d.answer(cb, fmt.Sprintf("⏳ Рано. Подожди ещё %d сек.", left), true)
		} else {
			d.answer(cb, "", false)
		}
		return
	}
	p.LastHunt = now
	p.HuntCooldownWarned = false
	d.answer(cb, "", false)

	p.ClearCombatState()
	p.ApplyArmorHelmetBonuses()

	switch {
	case d.Loot.Chance(0.01):
		d.startRescue(p, cb)
	case d.Loot.Chance(0.05):
		d.startHuntRaidOffer(p, cb)
	case d.Loot.Chance(0.12):
		d.supplyDrop(p, cb)
	case d.Loot.Chance(0.05):
		d.startBossFight(p, cb)
	case d.Loot.Chance(0.01):
		d.startSpecialFight(p, cb)
	case d.Loot.Chance(0.10):
		d.startDanger(p, cb)
	case d.Loot.Chance(0.075):
		d.startStoryEvent(p, cb)
	default:
		d.startMonsterFight(p, cb)
	}
}

func (d *Deps) startRescue(p *world.Player, cb *transport.Callback) {
	p.PendingRescueGift = true
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		"🆘 Ты спас выжившего из лап мутантов! В благодарность он предлагает выбрать награду:",
		&transport.SendOpts{ReplyMarkup: rescueKeyboard()})
}

func (d *Deps) cbRescueReward(cb *transport.Callback, slot string) {
	p := d.ensureFrom(cb.From)
	if !p.PendingRescueGift {
		d.answer(cb, "Награда уже получена.", true)
		return
	}
	kind := data.Kind(slot)
	pool := d.Catalog.ItemsByKind(kind)
	item := d.Loot.WeightedPick(pool)
	if item == nil {
		d.answer(cb, "Тут пусто.", true)
		return
	}
	p.PendingRescueGift = false
	p.PendingDrop = item
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		fmt.Sprintf("🎁 Выживший протягивает: %s %s", item.Rarity.Emoji(), item.Name),
		&transport.SendOpts{ReplyMarkup: dropKeyboard()})
}

func (d *Deps) startHuntRaidOffer(p *world.Player, cb *transport.Callback) {
	clan := d.World.ClanOf(p)
	if clan == nil {
		// No clan to raid with; degrade to an ordinary encounter.
		d.startMonsterFight(p, cb)
		return
	}
	p.PendingHuntRaid = true
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		"🧨 Ты наткнулся на вход в логово. Можно позвать клан на рейд — добыча будет удвоена!",
		&transport.SendOpts{ReplyMarkup: huntRaidKeyboard()})
}

func (d *Deps) cbHuntRaidStart(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	if !p.PendingHuntRaid {
		d.answer(cb, "Вход уже обвалился.", true)
		return
	}
	p.PendingHuntRaid = false
	d.answer(cb, "", false)
	d.openRaidLobby(p, cb.Chat.ID, true)
}

func (d *Deps) cbHuntRaidLeave(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	p.PendingHuntRaid = false
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID, "☣️ Главное меню",
		&transport.SendOpts{ReplyMarkup: mainMenuKeyboard()})
}

func (d *Deps) supplyDrop(p *world.Player, cb *transport.Callback) {
	var text string
	if d.Loot.Chance(0.5) {
		healed := p.Heal(supplyMedkitHeal)
		text = fmt.Sprintf("💉 Сброс припасов: аптечка! +%d HP (%d/%d)", healed, p.HP, p.MaxHP)
	} else {
		healed := p.Heal(supplyFoodHeal)
		text = fmt.Sprintf("🥫 Сброс припасов: консервы. +%d HP (%d/%d)", healed, p.HP, p.MaxHP)
	}
	p.GrantSurvivalDay()
	text += fmt.Sprintf("\n🧟 Дней выживания: %d", p.SurvivalDays)
	d.editOrSend(cb.Chat.ID, cb.MessageID, text,
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}

func (d *Deps) startBossFight(p *world.Player, cb *transport.Callback) {
	p.Monster = &world.Monster{
		Name:      "👹 Исполин Зоны",
		HP:        5300,
		MaxHP:     5300,
		Dmg:       600,
		Tier:      world.TierBoss,
		Infection: bossInfection,
	}
	d.showBattle(p, cb.Chat.ID, cb.MessageID,
		"👹 Из тумана выходит Исполин Зоны. Такой шанс выпадает раз в жизни.")
}

func (d *Deps) startSpecialFight(p *world.Player, cb *transport.Callback) {
	p.Monster = &world.Monster{
		Name:      "🧪 Особый образец",
		HP:        2222,
		MaxHP:     2222,
		Dmg:       333,
		Tier:      world.TierSpecial,
		Infection: specialInfection,
	}
	d.showBattle(p, cb.Chat.ID, cb.MessageID,
		"🧪 Из лаборатории вырвался особый образец. Он не отпустит тебя живым.")
}

func (d *Deps) startMonsterFight(p *world.Player, cb *transport.Callback) {
	p.Monster = d.spawnMonster()
	d.showBattle(p, cb.Chat.ID, cb.MessageID,
		fmt.Sprintf("☠️ Ты выследил монстра: %s", p.Monster.Name))
}

// spawnMonster rolls the 80/16/4 tier split with tier-specific stat ranges.
func (d *Deps) spawnMonster() *world.Monster {
	roll := d.Rng.Float64()
	switch {
	case roll < 0.80:
		hp := d.Loot.IntBetween(50, 130)
		return &world.Monster{
			Name: "🧟 Гниющий зомби", HP: hp, MaxHP: hp,
			Dmg: d.Loot.IntBetween(11, 26), Tier: world.TierWeak,
			Infection: 20, DropChance: 0.20,
		}
	case roll < 0.96:
		hp := d.Loot.IntBetween(201, 400)
		return &world.Monster{
			Name: "🐗 Мутировавший кабан", HP: hp, MaxHP: hp,
			Dmg: d.Loot.IntBetween(51, 86), Tier: world.TierMedium,
			Infection: 35, DropChance: 0.35,
		}
	default:
		hp := d.Loot.IntBetween(701, 900)
		return &world.Monster{
			Name: "🦏 Жирный мясник", HP: hp, MaxHP: hp,
			Dmg: d.Loot.IntBetween(301, 351), Tier: world.TierFat,
			Infection: 60, DropChance: 0.60,
		}
	}
}

func battleText(p *world.Player, log []string) string {
	m := p.Monster
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n❤️ %d/%d\n\n🫵 %s\n❤️ %d/%d", m.Name, m.HP, m.MaxHP,
		p.DisplayName(), p.HP, p.MaxHP)
	if len(log) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(log, "\n"))
	}
	return b.String()
}

func (d *Deps) showBattle(p *world.Player, chatID int64, messageID int, intro string) {
	text := intro + "\n\n" + battleText(p, nil)
	p.BattleMsgID = d.editOrSend(chatID, messageID, text,
		&transport.SendOpts{ReplyMarkup: battleKeyboard()})
}

// cbAttack runs one full exchange: player strike, then monster retaliation
// if it survives.
func (d *Deps) cbAttack(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	m := p.Monster
	if m == nil {
		d.answer(cb, "Бой уже закончился.", true)
		return
	}
	d.answer(cb, "", false)
	p.FirstAttack = true

	ps := combat.PlayerStatus(p)
	ms := combat.MonsterStatus(p, m)
	log := combat.Attack(d.Rng, combat.PlayerFighter(p), combat.Fighter{Name: m.Name}, ps, ms, true)
	combat.CommitPlayer(p, ps)
	combat.CommitMonster(p, m, ms)

	if m.HP <= 0 {
		d.monsterKilled(p, cb.Chat.ID, log)
		return
	}

	if p.MonsterStun > 0 {
		p.MonsterStun--
		log = append(log, fmt.Sprintf("⚡ %s оглушён и пропускает ход!", m.Name))
	} else {
		ps = combat.PlayerStatus(p)
		ms = combat.MonsterStatus(p, m)
		log = append(log, combat.Retaliate(d.Rng, m.Name, m.Dmg, combat.PlayerFighter(p), ms, ps)...)
		combat.CommitPlayer(p, ps)
		combat.CommitMonster(p, m, ms)
	}

	if p.HP <= 0 {
		d.playerKilled(p, cb.Chat.ID, log)
		return
	}

	p.BattleMsgID = d.editOrSend(cb.Chat.ID, p.BattleMsgID, battleText(p, log),
		&transport.SendOpts{ReplyMarkup: battleKeyboard()})
}

func (d *Deps) cbRunBeforeStart(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	if p.Monster == nil {
		d.answer(cb, "Бежать не от кого.", true)
		return
	}
	if p.FirstAttack {
		d.answer(cb, "Поздно бежать, бой уже начался!", true)
		return
	}
	p.ClearCombatState()
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		"🏃 Ты тихо отступил. Монстр даже не заметил.",
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}

func (d *Deps) monsterKilled(p *world.Player, chatID int64, log []string) {
	m := p.Monster
	reward := m.Infection
	if p.RadiationBoost {
		reward *= 2
	}
	p.AddInfection(reward)
	p.GrantSurvivalDay()

	lines := append(log, "", fmt.Sprintf("💀 %s повержен! +%d заражения, +1 день выживания.", m.Name, reward))

	drop := d.rollDrop(m)
	msgID := p.BattleMsgID
	p.ClearCombatState()

	if drop != nil {
		p.PendingDrop = drop
		lines = append(lines, fmt.Sprintf("🎁 Выпало: %s %s", drop.Rarity.Emoji(), drop.Name))
		d.editOrSend(chatID, msgID, strings.Join(lines, "\n"),
			&transport.SendOpts{ReplyMarkup: dropKeyboard()})
		return
	}
	d.editOrSend(chatID, msgID, strings.Join(lines, "\n"),
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}

// rollDrop resolves the kill reward. Bosses always yield the full-heal sign;
// the special subject rolls uniformly; ordinary tiers roll weighted with the
// tier's drop chance.
func (d *Deps) rollDrop(m *world.Monster) *data.Item {
	switch m.Tier {
	case world.TierBoss:
		return d.finalSignTemplate()
	case world.TierSpecial:
		return d.Loot.UniformPick(d.Catalog.DropPool())
	default:
		if !d.Loot.Chance(m.DropChance) {
			return nil
		}
		return d.Loot.WeightedPick(d.Catalog.DropPool())
	}
}

func (d *Deps) finalSignTemplate() *data.Item {
	for _, it := range d.Catalog.ItemsByKind(data.KindSign) {
		if it.Sign != nil && it.Sign.PreventLethal == data.PreventFinal {
			return it.Clone()
		}
	}
	return nil
}

func (d *Deps) playerKilled(p *world.Player, chatID int64, log []string) {
	tier := p.Monster.Tier
	msgID := p.BattleMsgID
	p.ClearCombatState()
	p.ResetSurvival()
	p.HP = p.MaxHP

	lines := append(log, "", "☠️ Ты погиб. Дни выживания обнулились.")
	if tier == world.TierSpecial {
		p.AddInfection(-specialDeathToll)
		lines = append(lines, fmt.Sprintf("☣️ Образец высосал %d заражения.", specialDeathToll))
	}
	d.editOrSend(chatID, msgID, strings.Join(lines, "\n"),
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}

func (d *Deps) cbTakeDrop(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	item := p.PendingDrop
	if item == nil {
		d.answer(cb, "Брать нечего.", true)
		return
	}
	p.PendingDrop = nil
	prev := p.Equip(item)
	d.answer(cb, "", false)

	text := fmt.Sprintf("✅ Надето: %s %s", item.Rarity.Emoji(), item.Name)
	if prev != nil {
		text += fmt.Sprintf("\n🗑 %s отправляется на свалку.", prev.Name)
	}
	d.editOrSend(cb.Chat.ID, cb.MessageID, text,
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}

func (d *Deps) cbDiscardDrop(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	if p.PendingDrop == nil {
		d.answer(cb, "Выбрасывать нечего.", true)
		return
	}
	name := p.PendingDrop.Name
	p.PendingDrop = nil
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		fmt.Sprintf("🗑 %s остаётся гнить в Зоне.", name),
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}
