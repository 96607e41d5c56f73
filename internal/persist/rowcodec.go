package persist

import (
	"encoding/json"

	"github.com/crimecore/server/internal/world"
)

// playerExtra carries the known fields that have no dedicated column. It is
// merged with the unknown-key map into the row's extra JSON.
type playerExtra struct {
	Crimecoins           int               `json:"crimecoins,omitempty"`
	PvpRating            int               `json:"pvpRating,omitempty"`
	PvpRatingBest        int               `json:"pvpRatingBest,omitempty"`
	LastPvpStartAt       int64             `json:"lastPvpStartAt,omitempty"`
	InviteCasesAvailable int               `json:"inviteCasesAvailable,omitempty"`
	InviteCasesOpened    int               `json:"inviteCasesOpened,omitempty"`
	InvitedUserIDs       []int64           `json:"invitedUserIds,omitempty"`
	CurrentEvent         *world.EventState `json:"currentEvent,omitempty"`
	PendingRescueGift    bool              `json:"pendingRescueGift,omitempty"`
	PendingHuntRaid      bool              `json:"pendingHuntRaid,omitempty"`
	SignRadiationUsed    bool              `json:"signRadiationUsed,omitempty"`
	SignFinalUsed        bool              `json:"signFinalUsed,omitempty"`
	BattleMsgID          int               `json:"battleMsgId,omitempty"`
}

var playerExtraKeys = []string{
	"crimecoins", "pvpRating", "pvpRatingBest", "lastPvpStartAt",
	"inviteCasesAvailable", "inviteCasesOpened", "invitedUserIds",
	"currentEvent", "pendingRescueGift", "pendingHuntRaid",
	"signRadiationUsed", "signFinalUsed", "battleMsgId",
}

// encodePlayerExtra merges the supplementary known fields with preserved
// unknown keys into one JSON blob.
func encodePlayerExtra(p *world.Player) []byte {
	known := playerExtra{
		Crimecoins:           p.Crimecoins,
		PvpRating:            p.PvpRating,
		PvpRatingBest:        p.PvpRatingBest,
		LastPvpStartAt:       p.LastPvpStartAt,
		InviteCasesAvailable: p.InviteCasesAvailable,
		InviteCasesOpened:    p.InviteCasesOpened,
		InvitedUserIDs:       p.InvitedUserIDs,
		CurrentEvent:         p.CurrentEvent,
		PendingRescueGift:    p.PendingRescueGift,
		PendingHuntRaid:      p.PendingHuntRaid,
		SignRadiationUsed:    p.SignRadiationUsed,
		SignFinalUsed:        p.SignFinalUsed,
		BattleMsgID:          p.BattleMsgID,
	}
	return mergeExtra(known, p.Extra)
}

// decodePlayerExtra splits a row's extra blob back into known fields and the
// preserved unknown remainder.
func decodePlayerExtra(raw []byte, p *world.Player) {
	if len(raw) == 0 {
		return
	}
	var known playerExtra
	if err := json.Unmarshal(raw, &known); err == nil {
		p.Crimecoins = known.Crimecoins
		p.PvpRating = known.PvpRating
		p.PvpRatingBest = known.PvpRatingBest
		p.LastPvpStartAt = known.LastPvpStartAt
		p.InviteCasesAvailable = known.InviteCasesAvailable
		p.InviteCasesOpened = known.InviteCasesOpened
		p.InvitedUserIDs = known.InvitedUserIDs
		p.CurrentEvent = known.CurrentEvent
		p.PendingRescueGift = known.PendingRescueGift
		p.PendingHuntRaid = known.PendingHuntRaid
		p.SignRadiationUsed = known.SignRadiationUsed
		p.SignFinalUsed = known.SignFinalUsed
		p.BattleMsgID = known.BattleMsgID
	}
	p.Extra = unknownKeys(raw, playerExtraKeys)
}

type clanExtra struct {
	LeaderID int64 `json:"leaderId,omitempty"`
}

var clanExtraKeys = []string{"leaderId"}

func encodeClanExtra(c *world.Clan) []byte {
	return mergeExtra(clanExtra{LeaderID: c.LeaderID}, c.Extra)
}

func decodeClanExtra(raw []byte, c *world.Clan) {
	if len(raw) == 0 {
		return
	}
	var known clanExtra
	if err := json.Unmarshal(raw, &known); err == nil {
		c.LeaderID = known.LeaderID
	}
	c.Extra = unknownKeys(raw, clanExtraKeys)
}

// mergeExtra marshals known into a map and overlays preserved unknown keys.
func mergeExtra(known any, unknown map[string]any) []byte {
	m := map[string]any{}
	if raw, err := json.Marshal(known); err == nil {
		_ = json.Unmarshal(raw, &m)
	}
	for k, v := range unknown {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return []byte("{}")
	}
	return raw
}

// unknownKeys returns the blob's keys minus the known set, or nil when empty.
func unknownKeys(raw []byte, known []string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	for _, k := range known {
		delete(m, k)
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// marshalJSON is the nil-tolerant serializer for JSON columns.
func marshalJSON(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return raw
}

// unmarshalJSON parses a JSON column into dst, tolerating empty and "null".
func unmarshalJSON(raw []byte, dst any) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	_ = json.Unmarshal(raw, dst)
}
