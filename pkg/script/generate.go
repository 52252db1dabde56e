// Package script turns a theme patch into the page script injected into the
// target archive.
package script

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/walassistant/wal/pkg/theme"
)

const (
	// CustomScriptStart and CustomScriptEnd delimit the user supplied script.
	CustomScriptStart = "// WAL CUSTOM SCRIPT START"
	CustomScriptEnd   = "// WAL CUSTOM SCRIPT END"

	// DevToolsURL is the in-page debug console loaded when dev tools are on.
	DevToolsURL = "https://cdn.jsdelivr.net/npm/eruda"
)

// DevToolsInitDelay is how long the generated script waits for the debug
// console to load before initializing it.
const DevToolsInitDelay = time.Second

// Generate returns the script for p. The output only depends on p: every
// value is serialized into the text and the same patch always produces the
// same bytes.
func Generate(p theme.Patch) string {
	base := p.Common()

	var b strings.Builder
	b.WriteString("(function () {\n")
	b.WriteString("{\n")
	writeColors(&b, base.ColorOverrides)
	if base.StyleOverridesBySelector.Len() > 0 {
		writeRules(&b, base.StyleOverridesBySelector)
	}
	if base.EnableDevTools {
		writeDevTools(&b)
	}
	b.WriteString("}\n")

	// Function scope, after the block-scoped generated code.
	b.WriteString(CustomScriptStart)
	b.WriteString("\n")
	b.WriteString(base.CustomScript)
	b.WriteString("\n")
	b.WriteString(CustomScriptEnd)
	b.WriteString("\n")
	b.WriteString("})();\n")
	return b.String()
}

// Rules renders the CSS rules of a patch, one per selector.
func Rules(styles theme.Dict[theme.Declarations]) []string {
	rules := make([]string, 0, styles.Len())
	for selector, decls := range styles.All() {
		var rule strings.Builder
		rule.WriteString(selector)
		rule.WriteString(" {")
		for property, value := range decls.All() {
			fmt.Fprintf(&rule, " %s: %s;", property, value)
		}
		rule.WriteString(" }")
		rules = append(rules, rule.String())
	}
	return rules
}

func writeColors(b *strings.Builder, colors theme.Dict[string]) {
	pairs := make([][2]string, 0, colors.Len())
	for key, value := range colors.All() {
		pairs = append(pairs, [2]string{key, value})
	}
	fmt.Fprintf(b, "  const colors = %s;\n", literal(pairs))
	b.WriteString("  const root = document.documentElement;\n")
	b.WriteString("  for (const [key, value] of colors) {\n")
	b.WriteString("    root.style.setProperty(key, value);\n")
	b.WriteString("  }\n")
}

// writeRules inserts every rule at the top of the first stylesheet, so the
// last selector of the patch ends up first.
func writeRules(b *strings.Builder, styles theme.Dict[theme.Declarations]) {
	fmt.Fprintf(b, "  const rules = %s;\n", literal(Rules(styles)))
	b.WriteString("  if (document.styleSheets.length > 0) {\n")
	b.WriteString("    const sheet = document.styleSheets[0];\n")
	b.WriteString("    for (const rule of rules) {\n")
	b.WriteString("      try {\n")
	b.WriteString("        sheet.insertRule(rule, 0);\n")
	b.WriteString("      } catch (err) {\n")
	b.WriteString("        console.warn(\"failed to insert rule\", rule, err);\n")
	b.WriteString("      }\n")
	b.WriteString("    }\n")
	b.WriteString("  }\n")
}

func writeDevTools(b *strings.Builder) {
	b.WriteString("  const devtools = document.createElement(\"script\");\n")
	fmt.Fprintf(b, "  devtools.src = %s;\n", literal(DevToolsURL))
	b.WriteString("  devtools.onerror = (err) => console.warn(\"failed to load devtools\", err);\n")
	b.WriteString("  (document.head || document.documentElement).appendChild(devtools);\n")
	b.WriteString("  setTimeout(() => {\n")
	b.WriteString("    try {\n")
	b.WriteString("      if (window.eruda) {\n")
	b.WriteString("        window.eruda.init();\n")
	b.WriteString("        window.eruda.show();\n")
	b.WriteString("      }\n")
	b.WriteString("    } catch (err) {\n")
	b.WriteString("      console.warn(\"failed to start devtools\", err);\n")
	b.WriteString("    }\n")
	fmt.Fprintf(b, "  }, %d);\n", DevToolsInitDelay.Milliseconds())
}

// literal encodes v as a JavaScript literal. JSON is a subset of JavaScript
// for the string and array values used here.
func literal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("script: cannot encode %T: %v", v, err))
	}
	return string(data)
}
