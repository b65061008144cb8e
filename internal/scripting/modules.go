package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/game/dice"
)

// RegisterModules registers the engine.* Lua tables into L:
//   - engine.log.{debug,info,warn,error}(msg)
//   - engine.dice.roll(expr) returns the rolled total, or nil for a bad expression
//   - engine.combatant(uid) returns a snapshot table, or nil
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "combatant", L.NewFunction(m.luaCombatant))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr, err := dice.Parse(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(expr.Roll(m.src)))
		return 1
	}))
	return mod
}

// luaCombatant implements engine.combatant(uid).
func (m *Manager) luaCombatant(L *lua.LState) int {
	uid := L.CheckString(1)
	if m.GetCombatant == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.GetCombatant(uid)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(info.UID))
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "side", lua.LNumber(info.Side))
	L.SetField(t, "hp", lua.LNumber(info.HP))
	L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
	L.SetField(t, "movement", lua.LNumber(info.Movement))
	L.SetField(t, "x", lua.LNumber(info.X))
	L.SetField(t, "y", lua.LNumber(info.Y))
	L.SetField(t, "surrendered", lua.LBool(info.Surrendered))
	L.Push(t)
	return 1
}
