package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
)

// Manager owns one sandboxed LState holding every loaded hook and dispatches
// hook calls into it.
//
// Manager is safe for concurrent use; calls into the VM are serialised.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	src       dice.Source
	logger    *zap.Logger
}

var _ weapon.MotionSelector = (*Manager)(nil)

// NewManager creates a Manager with an empty VM.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager; instLimit <= 0 uses DefaultInstructionLimit.
func NewManager(src dice.Source, logger *zap.Logger, instLimit int) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	m := &Manager{instLimit: instLimit, src: src, logger: logger}
	m.state = m.newState()
	return m
}

func (m *Manager) newState() *lua.LState {
	L := NewSandboxedState()
	m.RegisterModules(L)
	return L
}

// LoadDir replaces the VM with a fresh one and executes every *.lua file in
// dir in lexicographic order. On error the previous VM is kept.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error naming the failing file, or nil.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	L := m.newState()
	for _, path := range files {
		if err := runLimited(L, m.instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	old := m.state
	m.state = L
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}
	m.logger.Info("scripts loaded", zap.String("dir", dir), zap.Int("files", len(files)))
	return nil
}

// LoadString executes src in the current VM.
//
// Postcondition: Returns an error if src fails to compile, raises, or
// exceeds the instruction limit.
func (m *Manager) LoadString(src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return fmt.Errorf("scripting: manager closed")
	}
	return DoStringLimited(m.state, src, m.instLimit)
}

// HasHook reports whether hook is defined as a Lua function.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return false
	}
	_, ok := m.state.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// CallHook calls the named Lua global function. Returns LNil if the hook is not
// defined or the manager is closed. Lua runtime errors, including exceeding
// the instruction limit, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) lua.LValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callLocked(hook, args...)
}

func (m *Manager) callLocked(hook string, args ...lua.LValue) lua.LValue {
	L := m.state
	if L == nil {
		return lua.LNil
	}
	fn, ok := L.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		m.logger.Debug("scripting: hook not defined", zap.String("hook", hook))
		return lua.LNil
	}

	err := runLimited(L, m.instLimit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret
}

// SelectMotion calls hook with a table describing the strike and returns the
// motion name it yields. ok is false when the hook is missing, fails, or does
// not return a non-empty string.
func (m *Manager) SelectMotion(hook string, ctx weapon.StrikeContext) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return "", false
	}
	ret := m.callLocked(hook, m.strikeTable(m.state, ctx))
	s, ok := ret.(lua.LString)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

func (m *Manager) strikeTable(L *lua.LState, ctx weapon.StrikeContext) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("weapon", lua.LString(ctx.WeaponID))
	t.RawSetString("wielder", lua.LString(ctx.WielderID))
	t.RawSetString("primary", lua.LBool(ctx.Primary))
	t.RawSetString("hold", lua.LBool(ctx.Hold))
	t.RawSetString("index", lua.LNumber(ctx.StrikeIndex))
	t.RawSetString("default", lua.LString(ctx.Default.String()))
	t.RawSetString("in_range", lua.LNumber(ctx.InRange))
	t.RawSetString("nearest", lua.LNumber(ctx.Nearest))
	return t
}

// Close releases the VM. Subsequent hook calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
