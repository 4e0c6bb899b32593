//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/squine/oscillo/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(engine.DefaultSettings())

	// Create the engine API object
	oscilloEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	oscilloEngine.Set("setMode", js.FuncOf(setMode))
	oscilloEngine.Set("setSides", js.FuncOf(setSides))
	oscilloEngine.Set("setRotation", js.FuncOf(setRotation))
	oscilloEngine.Set("setFrequency", js.FuncOf(setFrequency))
	oscilloEngine.Set("pointerDown", js.FuncOf(pointerDown))
	oscilloEngine.Set("pointerMove", js.FuncOf(pointerMove))
	oscilloEngine.Set("pointerUp", js.FuncOf(pointerUp))
	oscilloEngine.Set("play", js.FuncOf(play))
	oscilloEngine.Set("pause", js.FuncOf(pause))
	oscilloEngine.Set("togglePlay", js.FuncOf(togglePlay))
	oscilloEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	oscilloEngine.Set("render", js.FuncOf(render))
	oscilloEngine.Set("getState", js.FuncOf(getState))

	// Register on global scope
	js.Global().Set("oscilloEngine", oscilloEngine)

	// Signal that WASM is ready
	js.Global().Set("oscilloWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func setMode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing mode"})
	}
	m, err := engine.ParseMode(args[0].String())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	eng.SetMode(m)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setSides(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetSides(args[0].Int())
	return nil
}

func setRotation(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetRotation(args[0].Float())
	return nil
}

func setFrequency(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetFrequency(args[0].Float())
	return nil
}

// pointerArgs reads (x, y, button) where button 2 is the secondary button,
// matching MouseEvent.button.
func pointerArgs(args []js.Value) (r2.Vec, engine.Button, bool) {
	if len(args) < 2 {
		return r2.Vec{}, engine.ButtonPrimary, false
	}
	p := r2.Vec{X: args[0].Float(), Y: args[1].Float()}
	b := engine.ButtonPrimary
	if len(args) > 2 && args[2].Type() == js.TypeNumber && args[2].Int() == 2 {
		b = engine.ButtonSecondary
	}
	return p, b, true
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if p, b, ok := pointerArgs(args); ok {
		eng.PointerDown(p, b)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if p, b, ok := pointerArgs(args); ok {
		eng.PointerMove(p, b)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if p, b, ok := pointerArgs(args); ok {
		eng.PointerUp(p, b)
	}
	return nil
}

func play(this js.Value, args []js.Value) interface{} {
	eng.Play()
	return nil
}

func pause(this js.Value, args []js.Value) interface{} {
	eng.Pause()
	return nil
}

func togglePlay(this js.Value, args []js.Value) interface{} {
	eng.TogglePlay()
	return nil
}

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(commandsJSON(eng.Tick()))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(commandsJSON(eng.Render()))
}

func getState(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(eng.State())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func commandsJSON(f *engine.Frame) string {
	out, err := engine.DrawCommandsToJSON(engine.CompileDrawCommands(f))
	if err != nil {
		return "[]"
	}
	return out
}
