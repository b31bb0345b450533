// Package script implements a small Lua console for the demo CLI, letting
// a user create sources, set properties, and wire up routes interactively
// via github.com/yuin/gopher-lua instead of a bespoke command grammar.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Engine is exposed to the console as a table of Go functions the Lua
// script can call; Console wires an Engine's methods into the Lua state
// as global functions named the same way.
type Engine interface {
	CreateSource(kind string) (handle int, err error)
	CreateGenerator(kind string, args map[string]string) (handle int, err error)
	CreateEffect(kind string) (handle int, err error)
	AttachGenerator(sourceHandle, generatorHandle int) error
	SetProperty(handle int, name string, value float64) error
	ConfigRoute(sourceHandle, effectHandle int, gain, fadeSeconds float64) error
	RemoveRoute(sourceHandle, effectHandle int, fadeSeconds float64) error
}

// Console is a Lua interpreter pre-bound to an Engine's operations.
type Console struct {
	state *lua.LState
}

// NewConsole creates a console bound to engine. Close must be called to
// release the Lua state.
func NewConsole(engine Engine) *Console {
	L := lua.NewState()
	c := &Console{state: L}
	c.registerBuiltins(engine)
	return c
}

func (c *Console) registerBuiltins(engine Engine) {
	L := c.state

	L.SetGlobal("create_source", L.NewFunction(func(L *lua.LState) int {
		kind := L.CheckString(1)
		handle, err := engine.CreateSource(kind)
		return pushHandleResult(L, handle, err)
	}))

	L.SetGlobal("create_generator", L.NewFunction(func(L *lua.LState) int {
		kind := L.CheckString(1)
		args := map[string]string{}
		if L.GetTop() >= 2 {
			tbl := L.CheckTable(2)
			tbl.ForEach(func(k, v lua.LValue) {
				args[k.String()] = v.String()
			})
		}
		handle, err := engine.CreateGenerator(kind, args)
		return pushHandleResult(L, handle, err)
	}))

	L.SetGlobal("create_effect", L.NewFunction(func(L *lua.LState) int {
		kind := L.CheckString(1)
		handle, err := engine.CreateEffect(kind)
		return pushHandleResult(L, handle, err)
	}))

	L.SetGlobal("attach_generator", L.NewFunction(func(L *lua.LState) int {
		err := engine.AttachGenerator(L.CheckInt(1), L.CheckInt(2))
		return pushErrResult(L, err)
	}))

	L.SetGlobal("set_property", L.NewFunction(func(L *lua.LState) int {
		err := engine.SetProperty(L.CheckInt(1), L.CheckString(2), float64(L.CheckNumber(3)))
		return pushErrResult(L, err)
	}))

	L.SetGlobal("config_route", L.NewFunction(func(L *lua.LState) int {
		fadeSeconds := float64(L.OptNumber(4, 0))
		err := engine.ConfigRoute(L.CheckInt(1), L.CheckInt(2), float64(L.CheckNumber(3)), fadeSeconds)
		return pushErrResult(L, err)
	}))

	L.SetGlobal("remove_route", L.NewFunction(func(L *lua.LState) int {
		fadeSeconds := float64(L.OptNumber(3, 0))
		err := engine.RemoveRoute(L.CheckInt(1), L.CheckInt(2), fadeSeconds)
		return pushErrResult(L, err)
	}))
}

func pushHandleResult(L *lua.LState, handle int, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(handle))
	return 1
}

func pushErrResult(L *lua.LState, err error) int {
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	return 0
}

// Run executes a chunk of Lua source against the console's bound engine.
func (c *Console) Run(source string) error {
	if err := c.state.DoString(source); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// Close releases the underlying Lua state.
func (c *Console) Close() {
	c.state.Close()
}
