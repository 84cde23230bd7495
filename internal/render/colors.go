package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorGrid     = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorBorder   = color.RGBA{0xcb, 0xd5, 0xe1, 0xff}
	colorLine     = color.RGBA{0x25, 0x63, 0xeb, 0xff}
	colorText     = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	colorSubtle   = color.RGBA{0x64, 0x74, 0x8b, 0xff}
	colorBar      = color.RGBA{0x60, 0xa5, 0xfa, 0xff}
	colorFit      = color.RGBA{0xdc, 0x26, 0x26, 0xff}
)

// css renders c as a #rrggbb string.
func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseHex reads "#rrggbb". Anything else is transparent.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}
