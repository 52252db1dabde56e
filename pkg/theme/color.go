package theme

import (
	"regexp"
	"strings"
)

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

var colorFuncPrefixes = []string{"rgb(", "rgba(", "hsl(", "hsla("}

var namedColors = map[string]bool{
	"red": true, "green": true, "blue": true, "black": true, "white": true,
	"pink": true, "gray": true, "grey": true, "orange": true, "yellow": true,
	"purple": true, "cyan": true, "magenta": true, "transparent": true,
	"darkgray": true, "darkgrey": true, "lightgray": true, "lightgrey": true,
	"darkblue": true, "darkcyan": true, "darkmagenta": true, "darkred": true,
	"darkgreen": true,
}

// IsColorLike reports whether v looks like a CSS color: a hex literal, an
// rgb/hsl function or a common color name. It is used to decide whether to
// render a swatch and is not a validator.
func IsColorLike(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return false
	}
	if hexColorRegex.MatchString(v) {
		return true
	}
	for _, prefix := range colorFuncPrefixes {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return namedColors[v]
}
