package handler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/crimecore/server/internal/transport"
)

// HandleEvent is the single entry point for inbound transport events.
// It always runs on the game loop.
func (d *Deps) HandleEvent(ev transport.Event) {
	switch {
	case ev.Command != nil:
		d.handleCommand(ev.Command)
		d.save()
	case ev.Callback != nil:
		d.handleCallback(ev.Callback)
		d.save()
	case ev.Message != nil:
		d.handleMessage(ev.Message)
	}
}

func (d *Deps) handleCommand(cmd *transport.Command) {
	switch cmd.Name {
	case "start":
		d.cmdStart(cmd)
	case "play":
		d.cmdPlay(cmd)
	case "inventory":
		d.cmdInventory(cmd)
	case "leaderboard":
		d.cmdLeaderboard(cmd)
	case "pvp":
		d.cmdPvp(cmd)
	case "pvp_request":
		d.cmdPvpRequest(cmd)
	case "clan_create", "clancreate":
		d.cmdClanCreate(cmd)
	case "clan_leave", "clanleave":
		d.cmdClanLeave(cmd)
	case "clan_top", "clantop":
		d.cmdClanTop(cmd)
	case "clan_battle", "clanbattle":
		d.cmdClanBattle(cmd)
	case "acceptbattle":
		d.cmdAcceptBattle(cmd)
	case "inviteclan":
		d.cmdInviteClan(cmd)
	case "acceptclan":
		d.cmdAcceptClan(cmd)
	case "kick":
		d.cmdKick(cmd)
	case "assault":
		d.cmdAssault(cmd)
	case "unassault":
		d.cmdUnassault(cmd)
	case "acceptmission":
		d.cmdAcceptMission(cmd)
	case "report":
		d.cmdReport(cmd)
	case "admingive":
		d.cmdAdminGive(cmd)
	case "giveto":
		d.cmdGiveTo(cmd)
	case "pointsto":
		d.cmdPointsTo(cmd)
	case "crimecoins":
		d.cmdCrimecoins(cmd)
	case "sendall":
		d.cmdSendAll(cmd)
	case "reboot":
		d.cmdReboot(cmd)
	case "pull":
		d.cmdPull(cmd)
	default:
		// Unknown commands are ignored; group chats are full of them.
	}
}

// groupAllowed reports whether a callback may run outside private chats.
// Only PvP and clan flows are playable in groups.
func groupAllowed(action string) bool {
	for _, prefix := range []string{"pvp", "clans", "raid_", "assault_", "clan"} {
		if strings.HasPrefix(action, prefix) {
			return true
		}
	}
	return false
}

func (d *Deps) handleCallback(cb *transport.Callback) {
	action, arg, _ := strings.Cut(cb.Data, ":")

	if !cb.Chat.IsPrivate() && !groupAllowed(action) {
		d.answer(cb, "Продолжим в личных сообщениях — нажми на мой профиль.", true)
		return
	}

	switch action {
	case "play":
		d.cbPlay(cb)
	case "hunt":
		d.cbHunt(cb)
	case "attack":
		d.cbAttack(cb)
	case "run_before_start":
		d.cbRunBeforeStart(cb)
	case "event_action":
		d.cbEventAction(cb)
	case "take_drop":
		d.cbTakeDrop(cb)
	case "discard_drop":
		d.cbDiscardDrop(cb)
	case "danger_move":
		d.cbDangerMove(cb, arg)
	case "rescue_reward":
		d.cbRescueReward(cb, arg)
	case "hunt_raid_start":
		d.cbHuntRaidStart(cb)
	case "hunt_raid_leave":
		d.cbHuntRaidLeave(cb)
	case "cases":
		d.cbCases(cb)
	case "case_info":
		d.cbCaseInfo(cb, arg)
	case "case_open":
		d.cbCaseOpen(cb, arg)
	case "preview_case":
		d.cbCasePreview(cb, arg)
	case "inventory":
		if arg == "crimecoins" {
			d.cbCrimecoins(cb)
			return
		}
		d.cbInventory(cb)
	case "leaderboard_menu":
		d.cbLeaderboardMenu(cb)
	case "leaderboard_survival":
		d.cbLeaderboardSurvival(cb)
	case "pvp_menu", "pvp_request":
		d.cbPvpMenu(cb)
	case "pvp_chat":
		d.cbPvpChat(cb)
	case "pvp_find":
		d.cbPvpFind(cb)
	case "pvp_ranked":
		d.cbPvpRanked(cb)
	case "pvp_leaderboard":
		d.cbPvpLeaderboard(cb)
	case "clans_menu":
		d.cbClansMenu(cb)
	case "clans_create_join":
		d.cbClansCreateJoin(cb)
	case "clans_battle_info":
		d.cbClansBattleInfo(cb)
	case "clans_assault_info":
		d.cbClansAssaultInfo(cb)
	case "clans_raid_mission":
		d.cbClansRaidMission(cb)
	case "raid_style":
		d.cbRaidStyle(cb, arg)
	case "raid_choice":
		d.cbRaidChoice(cb, arg)
	case "assault_attack":
		d.cbAssaultAttack(cb, arg)
	case "community":
		d.cbCommunity(cb)
	case "admin_broadcast":
		d.cbAdminBroadcast(cb, arg)
	default:
		d.answer(cb, "", false)
		d.Log.Debug("unknown callback", zap.String("data", cb.Data))
	}
}

func (d *Deps) handleMessage(msg *transport.Message) {
	// Plain text only matters inside the admin broadcast flow.
	if d.captureBroadcast(msg) {
		d.save()
	}
}

func arg0(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
