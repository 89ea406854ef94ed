package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up    key.Binding
	down  key.Binding
	left  key.Binding
	right key.Binding
	quit  key.Binding
}

var keys = keyMap{
	up:    key.NewBinding(key.WithKeys("up", "k")),
	down:  key.NewBinding(key.WithKeys("down", "j")),
	left:  key.NewBinding(key.WithKeys("left", "h")),
	right: key.NewBinding(key.WithKeys("right", "l")),
	quit:  key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
