package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the CLI banner for interactive sessions.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String("            _   _  __ _               ").Foreground(p.Color("#34d399"))
	s2 := termenv.String("  __ _  ___| |_(_)/ _| | _____      __").Foreground(p.Color("#2dd4bf"))
	s3 := termenv.String(" / _` |/ __| __| | |_| |/ _ \\ \\ /\\ / /").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String("| (_| | (__| |_| |  _| | (_) \\ V  V / ").Foreground(p.Color("#38bdf8"))
	s5 := termenv.String(" \\__,_|\\___|\\__|_|_| |_|\\___/ \\_/\\_/  ").Foreground(p.Color("#60a5fa"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
