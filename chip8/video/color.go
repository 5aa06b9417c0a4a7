package video

import (
	"fmt"
	"strconv"
	"strings"
)

// RGBA splits the packed color into its channels.
func (c Color) RGBA() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Color) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// ParseColor accepts RRGGBB or RRGGBBAA hex, with an optional # or 0x prefix.
// Six digit colors are fully opaque.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")

	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return 0, fmt.Errorf("invalid color %q: expected RRGGBB or RRGGBBAA", s)
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return Color(value), nil
}
