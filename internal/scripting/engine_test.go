package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleScript = `
register_event{
  id = "test_cellar",
  title = "Подвал",
  text = "Спуститься в подвал?",
  good_text = "Внизу нашлись припасы.",
  bad_text = "Внизу ждала стая крыс.",
  bad = { type = "infection", amount = 120 },
}

register_event{
  id = "test_trade",
  title = "Обмен",
  text = "Меняться?",
  good_text = "Повезло.",
  bad_text = "Обманули, отняли шлем.",
  bad = { type = "slot", slot = "helmet" },
}

register_scenario{
  name = "Тестовый коридор",
  intro = "Темно и сыро.",
  branches = {
    {
      { prompt = "Шаг 1?", options = { "Налево", "Направо", "Прямо" } },
      { prompt = "Шаг 2?", options = { "Бежать", "Красться", "Ждать" } },
      { prompt = "Шаг 3?", options = { "Дверь", "Окно", "Лаз" } },
    },
  },
}

-- A malformed branch (two steps) must be skipped, not registered.
register_scenario{
  name = "Битый коридор",
  intro = "...",
  branches = {
    {
      { prompt = "Шаг 1?", options = { "А", "Б", "В" } },
      { prompt = "Шаг 2?", options = { "А", "Б", "В" } },
    },
  },
}
`

func loadEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.lua"), []byte(script), 0o644))
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestEngineLoadsScripts(t *testing.T) {
	e := loadEngine(t, sampleScript)

	require.Len(t, e.StoryEvents(), 2)

	ev := e.EventByID("test_cellar")
	require.NotNil(t, ev)
	assert.Equal(t, "Подвал", ev.Title)
	assert.Equal(t, BadInfection, ev.Bad.Type)
	assert.Equal(t, 120, ev.Bad.Amount)

	ev = e.EventByID("test_trade")
	require.NotNil(t, ev)
	assert.Equal(t, BadSlot, ev.Bad.Type)
	assert.Equal(t, "helmet", ev.Bad.Slot)

	assert.Nil(t, e.EventByID("missing"))
}

func TestEngineSkipsMalformedBranches(t *testing.T) {
	e := loadEngine(t, sampleScript)

	require.Len(t, e.DangerScenarios(), 1, "a scenario with only broken branches is dropped")
	sc := e.Scenario(0)
	require.NotNil(t, sc)
	assert.Equal(t, "Тестовый коридор", sc.Name)
	require.Len(t, sc.Branches, 1)
	require.Len(t, sc.Branches[0].Steps, 3)
	assert.Equal(t, []string{"Налево", "Направо", "Прямо"}, sc.Branches[0].Steps[0].Options)

	assert.Nil(t, e.Scenario(-1))
	assert.Nil(t, e.Scenario(99))
}

func TestEngineMissingDirFallsBackToDefaults(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.NotEmpty(t, e.StoryEvents())
	assert.NotEmpty(t, e.DangerScenarios())
}

func TestEngineRejectsEventWithoutID(t *testing.T) {
	dir := t.TempDir()
	script := `register_event{ title = "Безымянное" }`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte(script), 0o644))
	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}

func TestDefaultsShape(t *testing.T) {
	e := Defaults()
	assert.NotEmpty(t, e.StoryEvents())
	for _, sc := range e.DangerScenarios() {
		require.NotEmpty(t, sc.Branches, sc.Name)
		for _, b := range sc.Branches {
			assert.Len(t, b.Steps, 3, sc.Name)
			for _, st := range b.Steps {
				assert.Len(t, st.Options, 3, sc.Name)
			}
		}
	}
	e.Close() // nil VM must be safe
}
