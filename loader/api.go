package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if coll.game != nil {
			L.RaiseError("Game{} defined more than once")
		}
		coll.game = tbl
		return 0
	}))

	// SideEffect "id" { ... }, Location "id" { ... } and so on: curried,
	// the constructor returns a function that takes the definition table.
	for _, kind := range []string{kindSideEffect, kindLocation, kindNPC, kindEnemy, kindItem, kindQuest} {
		L.SetGlobal(kind, curried(L, coll, kind))
	}

	// On("event_type", { match_key = value, say = "..." })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))
}

func curried(L *lua.LState, coll *collector, kind string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.defs = append(coll.defs, rawDef{kind: kind, id: id, table: tbl})
			return 0
		}))
		return 1
	})
}
