package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

func (d *Deps) cmdInventory(cmd *transport.Command) {
	p := d.ensureFrom(cmd.From)
	d.showInventory(cmd.Chat.ID, p)
}

func (d *Deps) cbInventory(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	d.answer(cb, "", false)
	d.showInventory(cb.Chat.ID, p)
}

var slotTitles = map[data.Kind]string{
	data.KindArmor:    "🦺 Броня",
	data.KindHelmet:   "🪖 Шлем",
	data.KindWeapon:   "🔪 Оружие",
	data.KindMutation: "🧬 Мутация",
	data.KindExtra:    "🎒 Снаряжение",
	data.KindSign:     "☢️ Знак",
}

func inventoryText(p *world.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎒 %s\n\n❤️ HP: %d/%d\n☣️ Заражение: %d\n🧟 Дней выживания: %d (рекорд %d)\n⚔️ PvP: %d побед / %d поражений\n\n",
		p.DisplayName(), p.HP, p.MaxHP, p.Infection, p.SurvivalDays, p.BestSurvivalDays,
		p.PvpWins, p.PvpLosses)
	for _, kind := range data.Kinds {
		slot := p.Inventory.Slot(kind)
		if slot != nil && *slot != nil {
			fmt.Fprintf(&b, "%s: %s %s\n", slotTitles[kind], (*slot).Rarity.Emoji(), (*slot).Name)
		} else {
			fmt.Fprintf(&b, "%s: —\n", slotTitles[kind])
		}
	}
	return b.String()
}

// showInventory renders the equipment portrait off the loop and falls back
// to plain text when any image step fails.
func (d *Deps) showInventory(chatID int64, p *world.Player) {
	text := inventoryText(p)
	opts := &transport.SendOpts{ReplyMarkup: inventoryKeyboard()}

	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = d.Catalog.BasePortraitURL()
	}
	if d.Composer == nil || baseURL == "" {
		d.sendText(chatID, text, opts)
		return
	}

	var layerURLs []string
	for _, kind := range data.Kinds {
		if slot := p.Inventory.Slot(kind); slot != nil && *slot != nil {
			if u := d.Catalog.ImageURL((*slot).Name); u != "" {
				layerURLs = append(layerURLs, u)
			}
		}
	}

	go func() {
		photo, err := d.composePortrait(baseURL, layerURLs)
		d.Loop.Post(func() {
			if err != nil {
				d.Log.Debug("portrait failed, sending text", zap.Error(err))
				d.sendText(chatID, text, opts)
				return
			}
			if _, err := d.Msg.SendPhoto(chatID, transport.Photo{Bytes: photo}, text, opts); err != nil {
				d.Log.Warn("send photo failed", zap.Error(err))
				d.sendText(chatID, text, opts)
			}
		})
	}()
}

func (d *Deps) composePortrait(baseURL string, layerURLs []string) ([]byte, error) {
	base, err := fetchImage(baseURL)
	if err != nil {
		return nil, err
	}
	layers := make([][]byte, 0, len(layerURLs))
	for _, u := range layerURLs {
		img, err := fetchImage(u)
		if err != nil {
			return nil, err
		}
		layers = append(layers, img)
	}
	return d.Composer.Compose(base, layers)
}

var imageClient = &http.Client{Timeout: 10 * time.Second}

func fetchImage(url string) ([]byte, error) {
	resp, err := imageClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

func (d *Deps) cbCrimecoins(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID, fmt.Sprintf(
		"🪙 Твои crimecoins: %d\n\nКупить или узнать подробности: %s",
		p.Crimecoins, d.Cfg.Bot.DonationContact),
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}
