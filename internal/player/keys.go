package player

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Toggle        key.Binding
	Back          key.Binding
	Forward       key.Binding
	BackMinute    key.Binding
	ForwardMinute key.Binding
	BackLong      key.Binding
	ForwardLong   key.Binding
	Speed         key.Binding
	Rates         []key.Binding
	Fullscreen    key.Binding
	Reload        key.Binding
	Close         key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:        key.NewBinding(key.WithKeys(" ", "k"), key.WithHelp("space", "play/pause")),
		Back:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "-10s")),
		Forward:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "+10s")),
		BackMinute:    key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("⇧←", "-1m")),
		ForwardMinute: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("⇧→", "+1m")),
		BackLong:      key.NewBinding(key.WithKeys("[", "pgdown"), key.WithHelp("[", "-10m")),
		ForwardLong:   key.NewBinding(key.WithKeys("]", "pgup"), key.WithHelp("]", "+10m")),
		Speed:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "speed")),
		Rates: []key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "0.5x")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "1x")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "1.5x")),
			key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "2x")),
		},
		Fullscreen: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close menu")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Back, k.Forward, k.Speed, k.Fullscreen, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Back, k.Forward, k.BackMinute, k.ForwardMinute},
		{k.BackLong, k.ForwardLong, k.Speed, k.Rates[0], k.Rates[1], k.Rates[2], k.Rates[3]},
		{k.Fullscreen, k.Reload, k.Close, k.Help, k.Quit},
	}
}

func (c *Controller) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := c.keys
	switch {
	case key.Matches(msg, k.Quit):
		c.Close()
		return tea.Quit
	case key.Matches(msg, k.Toggle):
		return c.TogglePlay()
	case key.Matches(msg, k.Back):
		return c.Skip(-TapSkip)
	case key.Matches(msg, k.Forward):
		return c.Skip(TapSkip)
	case key.Matches(msg, k.BackMinute):
		return c.Skip(-ShortSkip)
	case key.Matches(msg, k.ForwardMinute):
		return c.Skip(ShortSkip)
	case key.Matches(msg, k.BackLong):
		return c.Skip(-LongSkip)
	case key.Matches(msg, k.ForwardLong):
		return c.Skip(LongSkip)
	case key.Matches(msg, k.Speed):
		return c.ToggleSpeedMenu()
	case key.Matches(msg, k.Fullscreen):
		return tea.Batch(c.showControls(), c.ToggleFullscreen())
	case key.Matches(msg, k.Reload):
		return c.Reload()
	case key.Matches(msg, k.Close):
		c.menuOpen = false
		return c.showControls()
	case key.Matches(msg, k.Help):
		c.help.ShowAll = !c.help.ShowAll
		return c.showControls()
	}

	for i, b := range k.Rates {
		if key.Matches(msg, b) {
			return c.SetPlaybackRate(Rates[i])
		}
	}
	return c.showControls()
}
