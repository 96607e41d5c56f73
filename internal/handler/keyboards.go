package handler

import (
	"fmt"

	"github.com/crimecore/server/internal/transport"
)

func mainMenuKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("☠️ Охота", "hunt")),
		transport.Row(
			transport.Btn("🎒 Инвентарь", "inventory"),
			transport.Btn("📦 Кейсы", "cases"),
		),
		transport.Row(
			transport.Btn("⚔️ PvP", "pvp_menu"),
			transport.Btn("🏴 Кланы", "clans_menu"),
		),
		transport.Row(
			transport.Btn("🏆 Рейтинг", "leaderboard_menu"),
			transport.Btn("🌍 Сообщество", "community"),
		),
	)
}

func battleKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("🗡 Атаковать", "attack")),
		transport.Row(transport.Btn("🏃 Сбежать", "run_before_start")),
	)
}

func dropKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(
			transport.Btn("✅ Забрать", "take_drop"),
			transport.Btn("🗑 Выбросить", "discard_drop"),
		),
	)
}

func backToMenuKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("◀️ В меню", "play")),
	)
}

func rescueKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(
			transport.Btn("🪖 Шлем", "rescue_reward:helmet"),
			transport.Btn("🦺 Броня", "rescue_reward:armor"),
		),
		transport.Row(
			transport.Btn("🔪 Оружие", "rescue_reward:weapon"),
			transport.Btn("🧬 Мутация", "rescue_reward:mutation"),
		),
		transport.Row(transport.Btn("🎒 Снаряжение", "rescue_reward:extra")),
	)
}

func huntRaidKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("🚀 Выдвигаемся", "hunt_raid_start")),
		transport.Row(transport.Btn("🚪 Не сейчас", "hunt_raid_leave")),
	)
}

func eventKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("👀 Проверить", "event_action")),
	)
}

func dangerKeyboard(options []string) *transport.Keyboard {
	rows := make([][]transport.Button, 0, len(options))
	for i, opt := range options {
		rows = append(rows, transport.Row(
			transport.Btn(opt, fmt.Sprintf("danger_move:%d", i)),
		))
	}
	return &transport.Keyboard{Rows: rows}
}

func pvpMenuKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("🎲 Случайный противник", "pvp_find")),
		transport.Row(transport.Btn("🏅 Рейтинговый бой", "pvp_ranked")),
		transport.Row(transport.Btn("💬 Вызов в чате", "pvp_chat")),
		transport.Row(transport.Btn("🏆 Рейтинг бойцов", "pvp_leaderboard")),
		transport.Row(transport.Btn("◀️ В меню", "play")),
	)
}

func clansMenuKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("➕ Создать или вступить", "clans_create_join")),
		transport.Row(transport.Btn("⚔️ Клановые битвы", "clans_battle_info")),
		transport.Row(transport.Btn("🏭 Захват баз", "clans_assault_info")),
		transport.Row(transport.Btn("🧨 Рейд-миссия", "clans_raid_mission")),
		transport.Row(transport.Btn("◀️ В меню", "play")),
	)
}

func leaderboardMenuKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("🧟 Дни выживания", "leaderboard_survival")),
		transport.Row(transport.Btn("⚔️ PvP рейтинг", "pvp_leaderboard")),
		transport.Row(transport.Btn("◀️ В меню", "play")),
	)
}

func casesKeyboard() *transport.Keyboard {
	rows := make([][]transport.Button, 0, 8)
	for _, c := range casesMenu() {
		rows = append(rows, transport.Row(
			transport.Btn(c.Title, "case_info:"+string(c.Type)),
		))
	}
	rows = append(rows, transport.Row(transport.Btn("◀️ В меню", "play")))
	return &transport.Keyboard{Rows: rows}
}

func caseKeyboard(id string) *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("🔓 Открыть", "case_open:"+id)),
		transport.Row(transport.Btn("👀 Что внутри", "preview_case:"+id)),
		transport.Row(transport.Btn("◀️ К кейсам", "cases")),
	)
}

func inventoryKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(transport.Btn("🪙 Crimecoins", "inventory:crimecoins")),
		transport.Row(transport.Btn("◀️ В меню", "play")),
	)
}

func broadcastConfirmKeyboard() *transport.Keyboard {
	return transport.NewKeyboard(
		transport.Row(
			transport.Btn("✅ Разослать", "admin_broadcast:confirm"),
			transport.Btn("❌ Отмена", "admin_broadcast:cancel"),
		),
	)
}
