package term

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Espalier.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Greens fading into violet.
	lines := []struct {
		text  string
		color string
	}{
		{`                        _ _`, "#4ade80"},
		{`   ___  ___ _ __   __ _| (_) ___ _ __`, "#34d399"},
		{`  / _ \/ __| '_ \ / _` + "`" + ` | | |/ _ \ '__|`, "#2dd4bf"},
		{` |  __/\__ \ |_) | (_| | | |  __/ |`, "#818cf8"},
		{`  \___||___/ .__/ \__,_|_|_|\___|_|`, "#a78bfa"},
		{`           |_|`, "#c084fc"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
}
