// Command ls-orrery-gl draws the orrery in a window.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/litescript/ls-orrery/internal/app"
	"github.com/litescript/ls-orrery/internal/glview"
	"github.com/litescript/ls-orrery/internal/version"
)

func main() {
	opts := app.DefaultOptions()
	opts.RegisterFlags(flag.CommandLine)
	width := flag.Int("width", glview.DefaultWidth, "Window width in pixels")
	height := flag.Int("height", glview.DefaultHeight, "Window height in pixels")
	flag.Parse()

	a, err := app.New(opts, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()
	a.Start()

	g := glview.New(a.Scene, a.State, a.Logger.Named("window"))
	g.OnFrame(a.ObserveFrame)

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("ls-orrery " + version.Version)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(g); err != nil {
		a.Logger.Error("window: %v", err)
		a.Close()
		os.Exit(1)
	}
}
