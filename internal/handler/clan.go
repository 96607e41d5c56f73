package handler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

func (d *Deps) cmdClanCreate(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	name := strings.TrimSpace(strings.Join(cmd.Args, " "))
	if name == "" {
		d.sendText(cmd.Chat.ID, "Название? /clan_create <название>", nil)
		return
	}
	clan, err := d.World.CreateClan(name, p)
	switch {
	case errors.Is(err, world.ErrClanNameTaken):
		d.sendText(cmd.Chat.ID, "🏴 Такой клан уже есть.", nil)
		return
	case errors.Is(err, world.ErrAlreadyInClan):
		d.sendText(cmd.Chat.ID, "Сначала выйди из текущего клана: /clan_leave", nil)
		return
	case err != nil:
		d.sendText(cmd.Chat.ID, "Не получилось создать клан.", nil)
		return
	}
	d.sendText(cmd.Chat.ID, fmt.Sprintf(
		"🏴 Клан «%s» основан! Зови людей: /inviteclan <id или @ник>", clan.Name), nil)
}

func (d *Deps) cmdInviteClan(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	clan := d.World.ClanOf(p)
	if clan == nil {
		d.sendText(cmd.Chat.ID, "Ты не в клане.", nil)
		return
	}
	target := d.World.PlayerByIdent(arg0(cmd.Args))
	if target == nil {
		d.sendText(cmd.Chat.ID, "🤷 Не нашёл такого выжившего.", nil)
		return
	}
	if target.ClanID == clan.ID {
		d.sendText(cmd.Chat.ID, "Он уже с нами.", nil)
		return
	}
	// A newer invite overwrites any pending one.
	d.World.Invites[target.ID] = &world.ClanInvite{
		PlayerID:  target.ID,
		ClanID:    clan.ID,
		FromID:    p.ID,
		ExpiresAt: d.Now().Add(inviteTTL).Unix(),
	}
	d.sendText(cmd.Chat.ID, fmt.Sprintf("📨 Приглашение для %s отправлено.", target.DisplayName()), nil)
	d.sendText(target.ID, fmt.Sprintf(
		"📨 %s зовёт тебя в клан «%s». Принять: /acceptclan\nПриглашение живёт 5 минут.",
		p.DisplayName(), clan.Name), nil)
}

func (d *Deps) cmdAcceptClan(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	inv, ok := d.World.Invites[p.ID]
	if !ok || inv.ExpiresAt <= d.Now().Unix() {
		d.sendText(cmd.Chat.ID, "🤷 Приглашений нет.", nil)
		return
	}
	clan, ok := d.World.Clans[inv.ClanID]
	if !ok {
		delete(d.World.Invites, p.ID)
		d.sendText(cmd.Chat.ID, "Клан уже распался.", nil)
		return
	}
	// An explicit clan name must match the pending invite; on a mismatch the
	// invite stays open.
	if want := strings.TrimSpace(strings.Join(cmd.Args, " ")); want != "" {
		if named := d.World.ClanByName(want); named == nil || named.ID != inv.ClanID {
			d.sendText(cmd.Chat.ID, "🤷 От этого клана приглашений нет.", nil)
			return
		}
	}
	delete(d.World.Invites, p.ID)
	if err := d.World.JoinClan(clan, p); err != nil {
		d.sendText(cmd.Chat.ID, "Сначала выйди из текущего клана: /clan_leave", nil)
		return
	}
	d.sendText(cmd.Chat.ID, fmt.Sprintf("🏴 Добро пожаловать в «%s»!", clan.Name), nil)
}

func (d *Deps) cmdClanLeave(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	clan, err := d.World.LeaveClan(p)
	if err != nil {
		d.sendText(cmd.Chat.ID, "Ты не в клане.", nil)
		return
	}
	if _, stillExists := d.World.Clans[clan.ID]; !stillExists {
		d.sendText(cmd.Chat.ID, fmt.Sprintf("🏴 Ты ушёл, и клан «%s» прекратил существование.", clan.Name), nil)
		return
	}
	d.sendText(cmd.Chat.ID, fmt.Sprintf("🚪 Ты покинул «%s».", clan.Name), nil)
}

func (d *Deps) cmdKick(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	clan := d.World.ClanOf(p)
	if clan == nil {
		d.sendText(cmd.Chat.ID, "Ты не в клане.", nil)
		return
	}
	if clan.LeaderID != p.ID {
		d.sendText(cmd.Chat.ID, "Выгонять может только лидер.", nil)
		return
	}
	target := d.World.PlayerByIdent(arg0(cmd.Args))
	if target == nil || !clan.HasMember(target.ID) {
		d.sendText(cmd.Chat.ID, "🤷 В клане такого нет.", nil)
		return
	}
	if target.ID == p.ID {
		d.sendText(cmd.Chat.ID, "Себя выгоняют через /clan_leave.", nil)
		return
	}
	d.World.KickMember(clan, target.ID)
	d.sendText(cmd.Chat.ID, fmt.Sprintf("👢 %s изгнан из клана.", target.DisplayName()), nil)
	d.sendText(target.ID, fmt.Sprintf("👢 Тебя выгнали из клана «%s».", clan.Name), nil)
}

func (d *Deps) cbClansMenu(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	d.answer(cb, "", false)
	var head string
	if clan := d.World.ClanOf(p); clan != nil {
		head = fmt.Sprintf("🏴 Твой клан: «%s»\n⭐ Очки: %d\n👥 Бойцов: %d",
			clan.Name, clan.Points, len(clan.Members))
	} else {
		head = "🏴 Ты пока одиночка."
	}
	d.editOrSend(cb.Chat.ID, cb.MessageID, head,
		&transport.SendOpts{ReplyMarkup: clansMenuKeyboard()})
}

func (d *Deps) cbClansCreateJoin(cb *transport.Callback) {
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		"➕ Создать клан: /clan_create <название>\n📨 Позвать бойца: /inviteclan <id или @ник>\n✅ Принять приглашение: /acceptclan",
		&transport.SendOpts{ReplyMarkup: clansMenuKeyboard()})
}

func (d *Deps) cbClansBattleInfo(cb *transport.Callback) {
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		"⚔️ Клановая битва: каждый боец пишет /clan_battle. Когда у двух кланов наберётся по 2+ бойцов, второй клан подтверждает бой командой /acceptbattle. Ставка 500 очков.",
		&transport.SendOpts{ReplyMarkup: clansMenuKeyboard()})
}

func (d *Deps) cbClansAssaultInfo(cb *transport.Callback) {
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		"🏭 Захват базы: в групповом чате (от 4 человек) напиши /assault. Клан будет отправлять вылазки каждые 35 минут; чужаки могут перехватывать разведчиков. Снять базу: /unassault.",
		&transport.SendOpts{ReplyMarkup: clansMenuKeyboard()})
}

func (d *Deps) cbClansRaidMission(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	clan := d.World.ClanOf(p)
	if clan == nil {
		d.answer(cb, "Сначала вступи в клан.", true)
		return
	}
	if clan.LeaderID != p.ID {
		d.answer(cb, "Рейд собирает лидер клана.", true)
		return
	}
	d.answer(cb, "", false)
	d.openRaidLobby(p, cb.Chat.ID, false)
}

func (d *Deps) cmdClanTop(cmd *transport.Command) {
	d.sendText(cmd.Chat.ID, d.clanTopText(), nil)
}

func (d *Deps) clanTopText() string {
	clans := make([]*world.Clan, 0, len(d.World.Clans))
	for _, c := range d.World.Clans {
		clans = append(clans, c)
	}
	sortClansByPoints(clans)
	if len(clans) > 10 {
		clans = clans[:10]
	}
	var b strings.Builder
	b.WriteString("🏆 Топ кланов:\n")
	for i, c := range clans {
		fmt.Fprintf(&b, "%d. «%s» — %d очков (%d бойцов)\n", i+1, c.Name, c.Points, len(c.Members))
	}
	if len(clans) == 0 {
		b.WriteString("Пока пусто. Будь первым: /clan_create")
	}
	return b.String()
}

func sortClansByPoints(clans []*world.Clan) {
	sort.Slice(clans, func(i, j int) bool {
		if clans[i].Points != clans[j].Points {
			return clans[i].Points > clans[j].Points
		}
		return clans[i].Name < clans[j].Name
	})
}
