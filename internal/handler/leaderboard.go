package handler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

func (d *Deps) cmdLeaderboard(cmd *transport.Command) {
	d.ensureFrom(cmd.From)
	d.sendText(cmd.Chat.ID, d.survivalTopText(), nil)
}

func (d *Deps) cbLeaderboardMenu(cb *transport.Callback) {
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID, "🏆 Рейтинги Зоны:",
		&transport.SendOpts{ReplyMarkup: leaderboardMenuKeyboard()})
}

func (d *Deps) cbLeaderboardSurvival(cb *transport.Callback) {
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID, d.survivalTopText(),
		&transport.SendOpts{ReplyMarkup: leaderboardMenuKeyboard()})
}

func (d *Deps) cbPvpLeaderboard(cb *transport.Callback) {
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID, d.pvpTopText(),
		&transport.SendOpts{ReplyMarkup: leaderboardMenuKeyboard()})
}

func (d *Deps) survivalTopText() string {
	top := d.topPlayers(func(p *world.Player) int { return p.SurvivalDays })
	var b strings.Builder
	b.WriteString("🧟 Топ выживших:\n")
	for i, p := range top {
		fmt.Fprintf(&b, "%d. %s — %d дней\n", i+1, p.DisplayName(), p.SurvivalDays)
	}
	if len(top) == 0 {
		b.WriteString("Пока никто не продержался и дня.")
	}
	return b.String()
}

func (d *Deps) pvpTopText() string {
	top := d.topPlayers(func(p *world.Player) int { return p.PvpRating })
	var b strings.Builder
	b.WriteString("🏅 Топ бойцов арены:\n")
	for i, p := range top {
		fmt.Fprintf(&b, "%d. %s — %d (рекорд %d)\n", i+1, p.DisplayName(), p.PvpRating, p.PvpRatingBest)
	}
	if len(top) == 0 {
		b.WriteString("Арена пока пустует.")
	}
	return b.String()
}

// topPlayers returns up to ten players ordered by the key, zeros excluded.
func (d *Deps) topPlayers(key func(*world.Player) int) []*world.Player {
	players := make([]*world.Player, 0, len(d.World.Players))
	for _, p := range d.World.Players {
		if key(p) > 0 {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if key(players[i]) != key(players[j]) {
			return key(players[i]) > key(players[j])
		}
		return players[i].ID < players[j].ID
	})
	if len(players) > 10 {
		players = players[:10]
	}
	return players
}
