package ui

import "image/color"

type Theme struct {
	Background   color.RGBA
	Border       color.RGBA
	Console      color.RGBA
	ConsoleRule  color.RGBA
	ConsoleText  color.RGBA
	ConsoleError color.RGBA

	BorderDp      int
	ConsoleLineDp int
	ConsolePadDp  int
}

func DefaultTheme() Theme {
	return Theme{
		Background:    color.RGBA{0x1E, 0x22, 0x2A, 0xFF},
		Border:        color.RGBA{0x3A, 0x44, 0x55, 0xFF},
		Console:       color.RGBA{0x14, 0x17, 0x1D, 0xFF},
		ConsoleRule:   color.RGBA{0x2B, 0x57, 0x9A, 0xFF},
		ConsoleText:   color.RGBA{0xC8, 0xCF, 0xDB, 0xFF},
		ConsoleError:  color.RGBA{0xE5, 0x6B, 0x6B, 0xFF},
		BorderDp:      1,
		ConsoleLineDp: 16,
		ConsolePadDp:  6,
	}
}
