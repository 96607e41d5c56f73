package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// BadEffect kinds.
const (
	BadInfection = "infection"
	BadSlot      = "slot"
)

// BadEffect is the penalty side of a story event.
type BadEffect struct {
	Type   string // BadInfection or BadSlot
	Amount int    // infection loss
	Slot   string // inventory slot to strip
}

// StoryEvent is one flavor card shown on a hunt roll.
type StoryEvent struct {
	ID       string
	Title    string
	Text     string
	GoodText string
	BadText  string
	Bad      BadEffect
}

// DangerStep is one move inside a danger room: a prompt with three options.
type DangerStep struct {
	Prompt  string
	Options []string
}

// DangerBranch is a fixed 3-step corridor.
type DangerBranch struct {
	Steps []DangerStep
}

// DangerScenario is a danger-room setting with alternative branches.
type DangerScenario struct {
	Name     string
	Intro    string
	Branches []DangerBranch
}

// Engine wraps a single gopher-lua VM that game-content scripts run in.
// Single-goroutine access only (game loop).
type Engine struct {
	vm        *lua.LState
	log       *zap.Logger
	events    []StoryEvent
	scenarios []DangerScenario
}

// NewEngine creates the VM, registers the content API and loads every .lua
// file in the scripts directory. A missing directory yields built-in content.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("register_event", vm.NewFunction(e.luaRegisterEvent))
	vm.SetGlobal("register_scenario", vm.NewFunction(e.luaRegisterScenario))

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	if len(e.events) == 0 {
		e.events = defaultEvents()
	}
	if len(e.scenarios) == 0 {
		e.scenarios = defaultScenarios()
	}
	log.Info("content scripts loaded",
		zap.Int("story_events", len(e.events)),
		zap.Int("danger_scenarios", len(e.scenarios)))
	return e, nil
}

// Defaults returns an engine with only built-in content and no VM. Tests use it.
func Defaults() *Engine {
	return &Engine{events: defaultEvents(), scenarios: defaultScenarios()}
}

// Close shuts the VM down.
func (e *Engine) Close() {
	if e.vm != nil {
		e.vm.Close()
	}
}

// StoryEvents returns all registered flavor cards.
func (e *Engine) StoryEvents() []StoryEvent { return e.events }

// EventByID finds a story event, or nil.
func (e *Engine) EventByID(id string) *StoryEvent {
	for i := range e.events {
		if e.events[i].ID == id {
			return &e.events[i]
		}
	}
	return nil
}

// DangerScenarios returns all registered danger rooms.
func (e *Engine) DangerScenarios() []DangerScenario { return e.scenarios }

// Scenario returns a scenario by index, or nil.
func (e *Engine) Scenario(i int) *DangerScenario {
	if i < 0 || i >= len(e.scenarios) {
		return nil
	}
	return &e.scenarios[i]
}

func (e *Engine) loadDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// luaRegisterEvent implements register_event{ id=..., title=..., ... }.
func (e *Engine) luaRegisterEvent(L *lua.LState) int {
	tbl := L.CheckTable(1)
	ev := StoryEvent{
		ID:       tableString(tbl, "id"),
		Title:    tableString(tbl, "title"),
		Text:     tableString(tbl, "text"),
		GoodText: tableString(tbl, "good_text"),
		BadText:  tableString(tbl, "bad_text"),
	}
	if bad, ok := tbl.RawGetString("bad").(*lua.LTable); ok {
		ev.Bad = BadEffect{
			Type:   tableString(bad, "type"),
			Amount: tableInt(bad, "amount"),
			Slot:   tableString(bad, "slot"),
		}
	}
	if ev.ID == "" {
		L.RaiseError("register_event: id is required")
	}
	e.events = append(e.events, ev)
	return 0
}

// luaRegisterScenario implements register_scenario{ name=..., branches={...} }.
func (e *Engine) luaRegisterScenario(L *lua.LState) int {
	tbl := L.CheckTable(1)
	sc := DangerScenario{
		Name:  tableString(tbl, "name"),
		Intro: tableString(tbl, "intro"),
	}
	branches, ok := tbl.RawGetString("branches").(*lua.LTable)
	if !ok {
		L.RaiseError("register_scenario: branches is required")
		return 0
	}
	branches.ForEach(func(_, bv lua.LValue) {
		bt, ok := bv.(*lua.LTable)
		if !ok {
			return
		}
		var branch DangerBranch
		bt.ForEach(func(_, sv lua.LValue) {
			st, ok := sv.(*lua.LTable)
			if !ok {
				return
			}
			step := DangerStep{Prompt: tableString(st, "prompt")}
			if opts, ok := st.RawGetString("options").(*lua.LTable); ok {
				opts.ForEach(func(_, ov lua.LValue) {
					step.Options = append(step.Options, ov.String())
				})
			}
			branch.Steps = append(branch.Steps, step)
		})
		if len(branch.Steps) == 3 {
			sc.Branches = append(sc.Branches, branch)
		} else if e.log != nil {
			e.log.Warn("scenario branch must have exactly 3 steps, skipped",
				zap.String("scenario", sc.Name), zap.Int("steps", len(branch.Steps)))
		}
	})
	if len(sc.Branches) > 0 {
		e.scenarios = append(e.scenarios, sc)
	}
	return 0
}

func tableString(tbl *lua.LTable, key string) string {
	if v := tbl.RawGetString(key); v != lua.LNil {
		return v.String()
	}
	return ""
}

func tableInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}
