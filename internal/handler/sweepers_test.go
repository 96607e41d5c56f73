package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartSweepersTestMode(t *testing.T) {
	env := newTestEnv(t)

	tickers := env.d.StartSweepers()
	assert.Len(t, tickers, 2) // no autosave in test mode
	for _, tk := range tickers {
		tk.Stop()
	}
}

func TestStartSweepersWithAutosave(t *testing.T) {
	env := newTestEnv(t)
	env.d.Cfg.Bot.TestMode = false

	tickers := env.d.StartSweepers()
	assert.Len(t, tickers, 3)
	for _, tk := range tickers {
		tk.Stop()
	}
}
