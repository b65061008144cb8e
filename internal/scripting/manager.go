package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/game/dice"
)

// GlobalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when a scope has none of its own.
const GlobalScope = "__global__"

// CombatantInfo is a snapshot of a combatant passed to Lua.
type CombatantInfo struct {
	UID         string
	Name        string
	Side        int
	HP          int
	MaxHP       int
	Movement    int
	X, Y        int
	Surrendered bool
}

type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	cancel context.CancelFunc
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook. Each VM is single-threaded; its
// own mutex serializes calls into it.
type Manager struct {
	mu     sync.RWMutex
	states map[string]*vm
	src    dice.Source
	logger *zap.Logger

	// GetCombatant is injected after construction. nil makes
	// engine.combatant return nil.
	GetCombatant func(uid string) *CombatantInfo
}

// NewManager creates a Manager.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		states: make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers the engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order. A
// previous VM for scope is replaced.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: the VM is registered; returns error on read or Lua load failure.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	if scope == "" {
		return fmt.Errorf("scripting.LoadScope: scope must not be empty")
	}
	return m.loadInto(scope, scriptDir, instLimit)
}

// LoadGlobal creates the GlobalScope VM, the fallback for every scope.
//
// Precondition: scriptDir must be a readable directory.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(GlobalScope, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.states[key]
	m.states[key] = &vm{L: L, limit: instLimit, cancel: cancel}
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	m.logger.Debug("scripting: scope loaded", zap.String("scope", key), zap.Int("files", len(luaFiles)))
	return nil
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	v.L.Close()
}

// HasScope reports whether scope has its own VM.
func (m *Manager) HasScope(scope string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.states[scope]
	return ok
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	states := m.states
	m.states = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range states {
		v.close()
	}
}

// CallHook calls the named Lua global function in scope's VM. If the scope has
// no VM, the GlobalScope VM is tried. Returns (LNil, nil) if the hook is not
// defined or no VM exists. Lua runtime errors, including an exhausted
// instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.states[scope]
	if !ok {
		v = m.states[GlobalScope]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if v.cancel != nil {
		v.cancel()
	}
	v.cancel = rearm(L, v.limit)

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}
