package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L.
//
//	engine.log(msg)        -- info log tagged with the script scope
//	engine.random()        -- uniform float in [0, 1) from the logged roller
//	engine.chance(p)       -- true with probability p
//	engine.actor(id)       -- table {id, class, faction, health, max_health} or nil
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, scope string) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			m.logger.Info("lua", zap.String("scope", scope), zap.String("msg", L.CheckString(1)))
			return 0
		},
		"random": func(L *lua.LState) int {
			L.Push(lua.LNumber(m.roller.Uniform(0, 1, "lua_random")))
			return 1
		},
		"chance": func(L *lua.LState) int {
			L.Push(lua.LBool(m.roller.Chance(float64(L.CheckNumber(1)), "lua_chance")))
			return 1
		},
		"actor": func(L *lua.LState) int {
			id := L.CheckString(1)
			if m.GetActor == nil {
				L.Push(lua.LNil)
				return 1
			}
			info := m.GetActor(id)
			if info == nil {
				L.Push(lua.LNil)
				return 1
			}
			t := L.NewTable()
			t.RawSetString("id", lua.LString(info.ID))
			t.RawSetString("class", lua.LString(info.Class))
			t.RawSetString("faction", lua.LString(info.Faction))
			t.RawSetString("health", lua.LNumber(info.Health))
			t.RawSetString("max_health", lua.LNumber(info.MaxHealth))
			L.Push(t)
			return 1
		},
	})
	L.SetGlobal("engine", engine)
}
