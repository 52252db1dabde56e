package script

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

// Check compiles src without running it and returns the first syntax error.
func Check(src string) error {
	if _, err := goja.Compile("patch.js", src, false); err != nil {
		return fmt.Errorf("script does not compile: %w", err)
	}
	return nil
}

// Effects records what a script did to a stubbed page.
type Effects struct {
	Properties [][2]string `json:"properties"`
	Rules      []string    `json:"rules"`
	Scripts    []string    `json:"scripts"`
	Delays     []int64     `json:"delays"`
	Warnings   []string    `json:"warnings"`
	// Sheet is the stylesheet once the script ran, starting from a single
	// PageRule.
	Sheet []string `json:"sheet"`
}

// PageRule is the rule the stubbed stylesheet holds before a script runs.
const PageRule = "body { margin: 0; }"

// page is a minimal document with one stylesheet. Timers are collected and
// run once the script returns.
const page = `
var __effects = {properties: [], rules: [], scripts: [], delays: [], warnings: []};
var __timers = [];
var console = {
  log: function () {},
  warn: function () { __effects.warnings.push(Array.prototype.map.call(arguments, String).join(" ")); },
};
var window = {};
var document = {
  documentElement: {
    style: { setProperty: function (k, v) { __effects.properties.push([String(k), String(v)]); } },
    appendChild: function (el) { __effects.scripts.push(el.src); return el; },
  },
  head: { appendChild: function (el) { __effects.scripts.push(el.src); return el; } },
  styleSheets: [{
    cssRules: [__pageRule],
    insertRule: function (rule, index) {
      if (index === undefined) index = 0;
      this.cssRules.splice(index, 0, rule);
      __effects.rules.push(rule);
      return index;
    },
  }],
  createElement: function (tag) { return { tagName: tag }; },
};
function setTimeout(fn, delay) { __effects.delays.push(delay); __timers.push(fn); return __timers.length; }
`

// Simulate runs src against a stubbed page and reports its effects. It does
// not reproduce the target application; it only catches scripts that throw
// and shows what would be applied.
func Simulate(src string) (*Effects, error) {
	vm := goja.New()
	if err := vm.Set("__pageRule", PageRule); err != nil {
		return nil, fmt.Errorf("failed to prepare page: %w", err)
	}
	if _, err := vm.RunString(page); err != nil {
		return nil, fmt.Errorf("failed to prepare page: %w", err)
	}
	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}
	if _, err := vm.RunString("for (const fn of __timers) fn();"); err != nil {
		return nil, fmt.Errorf("timer failed: %w", err)
	}

	v, err := vm.RunString("__effects.sheet = document.styleSheets[0].cssRules.slice(); JSON.stringify(__effects)")
	if err != nil {
		return nil, err
	}
	var effects Effects
	if err := json.Unmarshal([]byte(v.String()), &effects); err != nil {
		return nil, fmt.Errorf("failed to read effects: %w", err)
	}
	return &effects, nil
}
