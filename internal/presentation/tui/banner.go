package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown by interactive commands.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Green-to-amber gradient, one color per row.
	s1 := termenv.String("   __                      __ _               ").Foreground(p.Color("#4ade80"))
	s2 := termenv.String("  / _| ___  _ __ _ __ ___ / _| | _____      __").Foreground(p.Color("#86efac"))
	s3 := termenv.String(" | |_ / _ \\| '__| '_ ` _ \\ |_| |/ _ \\ \\ /\\ / /").Foreground(p.Color("#bef264"))
	s4 := termenv.String(" |  _| (_) | |  | | | | | | _| | (_) \\ V  V / ").Foreground(p.Color("#fde047"))
	s5 := termenv.String(" |_|  \\___/|_|  |_| |_| |_|_| |_|\\___/ \\_/\\_/ ").Foreground(p.Color("#fbbf24"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
