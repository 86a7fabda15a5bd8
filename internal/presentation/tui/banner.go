package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the espalier ASCII art banner.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Emerald gradient, darkening toward the roots.
	s1 := termenv.String(" _____                 _ _").Foreground(p.Color("#6ee7b7"))
	s2 := termenv.String("| ____|___ _ __   __ _| (_) ___ _ __").Foreground(p.Color("#34d399"))
	s3 := termenv.String("|  _| / __| '_ \\ / _` | | |/ _ \\ '__|").Foreground(p.Color("#10b981"))
	s4 := termenv.String("| |___\\__ \\ |_) | (_| | | |  __/ |").Foreground(p.Color("#059669"))
	s5 := termenv.String("|_____|___/ .__/ \\__,_|_|_|\\___|_|").Foreground(p.Color("#047857"))
	s6 := termenv.String("           |_|").Foreground(p.Color("#065f46"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}

// StatusBadge colors a validation verdict for terminal output.
func StatusBadge(clean bool) string {
	p := termenv.ColorProfile()
	if clean {
		return termenv.String(" PASS ").Foreground(p.Color("#052e16")).Background(p.Color("#4ade80")).Bold().String()
	}
	return termenv.String(" FAIL ").Foreground(p.Color("#450a0a")).Background(p.Color("#f87171")).Bold().String()
}
