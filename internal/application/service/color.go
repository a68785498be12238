package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Default tag colors.
const (
	DefaultTagBG = "#000000"
	DefaultTagFG = "#ffffff"
)

// Colors is a background and foreground hex pair.
type Colors struct {
	Background string
	Foreground string
}

var namedColors = map[string]string{
	"red":       "#ff0000",
	"crimson":   "#dc143c",
	"maroon":    "#800000",
	"pink":      "#ffc0cb",
	"magenta":   "#ff00ff",
	"orange":    "#ffa500",
	"coral":     "#ff7f50",
	"gold":      "#ffd700",
	"yellow":    "#ffff00",
	"beige":     "#f5f5dc",
	"olive":     "#808000",
	"lime":      "#00ff00",
	"green":     "#008000",
	"teal":      "#008080",
	"turquoise": "#40e0d0",
	"cyan":      "#00ffff",
	"blue":      "#0000ff",
	"navy":      "#000080",
	"indigo":    "#4b0082",
	"purple":    "#800080",
	"violet":    "#ee82ee",
	"lavender":  "#e6e6fa",
	"brown":     "#a52a2a",
	"black":     "#000000",
	"white":     "#ffffff",
	"gray":      "#808080",
	"grey":      "#808080",
	"silver":    "#c0c0c0",
}

var hexColorPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

// ParseColorCommand turns a phrase such as "dark blue tag" or "#ff8800"
// into a background color and a contrasting foreground. ok is false when
// the phrase names no color.
func ParseColorCommand(command string) (Colors, bool) {
	phrase := strings.ToLower(strings.TrimSpace(command))
	if phrase == "" {
		return Colors{}, false
	}

	if hex := hexColorPattern.FindString(phrase); hex != "" {
		bg := expandHex(hex)
		return Colors{Background: bg, Foreground: contrastFor(bg)}, true
	}

	words := strings.FieldsFunc(phrase, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	shade := 0.0
	for _, w := range words {
		switch w {
		case "light", "pale", "bright":
			shade = 0.4
			continue
		case "dark", "deep":
			shade = -0.4
			continue
		}
		hex, ok := namedColors[w]
		if !ok {
			continue
		}
		bg := adjust(hex, shade)
		return Colors{Background: bg, Foreground: contrastFor(bg)}, true
	}
	return Colors{}, false
}

func expandHex(hex string) string {
	hex = strings.ToLower(hex)
	if len(hex) == 4 {
		return "#" + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2) + strings.Repeat(hex[3:4], 2)
	}
	return hex
}

func rgb(hex string) (r, g, b float64) {
	v, _ := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	return float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)
}

// adjust mixes hex toward white (amount > 0) or black (amount < 0).
func adjust(hex string, amount float64) string {
	if amount == 0 {
		return hex
	}
	r, g, b := rgb(hex)
	mix := func(c float64) int {
		if amount > 0 {
			return int(c + (255-c)*amount + 0.5)
		}
		return int(c*(1+amount) + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(r), mix(g), mix(b))
}

// contrastFor picks black or white text by relative luminance.
func contrastFor(hex string) string {
	r, g, b := rgb(hex)
	if (0.299*r+0.587*g+0.114*b)/255 > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}
