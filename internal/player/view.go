package player

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#FACC15")
	muted  = lipgloss.Color("#737373")

	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(accent).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3A3A3")).Bold(true)
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E5E5"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(accent).Bold(true)
	timeStyle     = lipgloss.NewStyle().Foreground(accent).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(muted)
	glyphStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	feedbackStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
)

func newProgressBar() progress.Model {
	return progress.New(progress.WithSolidFill(string(accent)), progress.WithoutPercentage())
}

func newSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(glyphStyle))
}

// region is the part of the screen a pointer landed on.
type region int

const (
	regionSurface region = iota
	regionBar
	regionChrome
)

// button is a clickable control placed at a cell column.
type button struct {
	label  string
	x      int
	active bool
	action func(*Controller) tea.Cmd
}

func (b button) contains(col int) bool {
	return col >= b.x && col < b.x+lipgloss.Width(b.label)
}

// layout is the row arrangement of the control overlay.
type layout struct {
	barRow      int
	controlsRow int
	menuRow     int
	helpRow     int
	barX        int
	barWidth    int
}

// minChromeHeight is the smallest terminal that fits the overlay.
const minChromeHeight = 6

func (c *Controller) layout() (layout, bool) {
	if c.height < minChromeHeight || c.width < 4 {
		return layout{}, false
	}
	return layout{
		barRow:      c.height - 4,
		controlsRow: c.height - 3,
		menuRow:     c.height - 2,
		helpRow:     c.height - 1,
		barX:        1,
		barWidth:    c.width - 2,
	}, true
}

func (c *Controller) resize(width, height int) {
	c.width, c.height = width, height
	if l, ok := c.layout(); ok {
		c.bar.Width = l.barWidth
	}
	c.help.Width = width
}

// hitTest finds what the pointer is over. The overlay stays clickable
// while hidden: a press reveals it and hits the control underneath.
func (c *Controller) hitTest(p Pointer) (region, *button) {
	l, ok := c.layout()
	if !ok {
		return regionSurface, nil
	}
	col := int(p.X / c.settings.CellWidth)
	row := int(p.Y / c.settings.CellHeight)

	if row == l.barRow && col >= l.barX && col < l.barX+l.barWidth {
		return regionBar, nil
	}
	if row > 0 && row < l.barRow {
		return regionSurface, nil
	}
	for _, b := range c.buttonsAt(row, l) {
		if b.contains(col) {
			return regionChrome, &b
		}
	}
	return regionChrome, nil
}

// barPercent maps a horizontal pixel position on the progress bar to a
// percent of the duration.
func (c *Controller) barPercent(x float64) float64 {
	l, ok := c.layout()
	if !ok || l.barWidth <= 0 {
		return 0
	}
	left := float64(l.barX) * c.settings.CellWidth
	width := float64(l.barWidth) * c.settings.CellWidth
	p := (x - left) / width * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (c *Controller) buttonsAt(row int, l layout) []button {
	switch row {
	case 0:
		return c.topButtons()
	case l.controlsRow:
		return c.controlButtons()
	case l.menuRow:
		if c.menuOpen {
			return c.menuButtons()
		}
	}
	return nil
}

func (c *Controller) topButtons() []button {
	label := "[⟳ reload]"
	return []button{{
		label:  label,
		x:      c.width - 1 - lipgloss.Width(label),
		action: (*Controller).Reload,
	}}
}

func skipAction(delta float64) func(*Controller) tea.Cmd {
	return func(c *Controller) tea.Cmd { return c.Skip(delta) }
}

func (c *Controller) controlButtons() []button {
	play := "[▶]"
	if c.state.Playing {
		play = "[❚❚]"
	}
	left := []button{
		{label: play, action: (*Controller).TogglePlay},
		{label: "[-10m]", action: skipAction(-LongSkip)},
		{label: "[-1m]", action: skipAction(-ShortSkip)},
		{label: "[+1m]", action: skipAction(ShortSkip)},
		{label: "[+10m]", action: skipAction(LongSkip)},
	}
	x := 1
	for i := range left {
		left[i].x = x
		x += lipgloss.Width(left[i].label) + 1
	}

	right := []button{
		{label: "[⚙ " + c.state.Rate.String() + "]", active: c.menuOpen, action: (*Controller).ToggleSpeedMenu},
		{label: "[⛶ fullscreen]", active: c.state.Fullscreen, action: (*Controller).ToggleFullscreen},
	}
	x = c.width - 1
	for i := len(right) - 1; i >= 0; i-- {
		x -= lipgloss.Width(right[i].label)
		right[i].x = x
		x--
	}
	return append(left, right...)
}

func (c *Controller) menuButtons() []button {
	buttons := make([]button, len(Rates))
	x := c.width - 1
	for i := len(Rates) - 1; i >= 0; i-- {
		rate := Rates[i]
		label := "[" + rate.String() + "]"
		x -= lipgloss.Width(label)
		buttons[i] = button{
			label:  label,
			x:      x,
			active: rate == c.state.Rate,
			action: func(c *Controller) tea.Cmd { return c.SetPlaybackRate(rate) },
		}
		x--
	}
	return buttons
}

// View implements tea.Model.
func (c *Controller) View() string {
	if c.width == 0 || c.height == 0 {
		return ""
	}

	rows := make([]string, c.height)
	l, chrome := c.layout()
	visible := chrome && c.ControlsVisible()

	surfaceTop, surfaceBottom := 0, c.height
	if visible {
		surfaceTop, surfaceBottom = 1, l.barRow
		rows[0] = c.renderTopBar()
		rows[l.barRow] = strings.Repeat(" ", l.barX) + c.bar.ViewAs(c.state.Progress/100)
		rows[l.controlsRow] = c.renderControls()
		if c.menuOpen {
			rows[l.menuRow] = placeButtons(c.width, c.menuButtons(), nil)
		}
		bindings := c.keys.ShortHelp()
		if c.help.ShowAll {
			bindings = nil
			for _, group := range c.keys.FullHelp() {
				bindings = append(bindings, group...)
			}
		}
		rows[l.helpRow] = c.help.ShortHelpView(bindings)
	}

	mid := surfaceTop + (surfaceBottom-surfaceTop)/2
	if mid < c.height {
		rows[mid] = c.renderCenter()
	}
	if c.feedback.Visible && mid+1 < c.height {
		rows[mid+1] = c.renderFeedback()
	}

	for i := range rows {
		rows[i] = lipgloss.NewStyle().MaxWidth(c.width).Render(rows[i])
	}
	return strings.Join(rows, "\n")
}

func (c *Controller) renderTopBar() string {
	left := " " + badgeStyle.Render(" CINEBOX ") + " " + titleStyle.Render(c.title)
	return placeButtons(c.width, c.topButtons(), []placed{{x: 0, text: left, width: lipgloss.Width(left)}})
}

func (c *Controller) renderControls() string {
	buttons := c.controlButtons()
	last := buttons[4]
	clock := timeStyle.Render(FormatTime(c.state.CurrentTime)) + dimStyle.Render(" / ") + FormatTime(c.state.Duration)
	extra := placed{x: last.x + lipgloss.Width(last.label) + 2, text: clock, width: lipgloss.Width(clock)}
	return placeButtons(c.width, buttons, []placed{extra})
}

func (c *Controller) renderCenter() string {
	var text string
	switch {
	case c.gesture.scrubbing:
		text = feedbackStyle.Render(formatScrub(c.gesture.scrubOffset)) + dimStyle.Render("  drag to seek")
	case !c.state.Ready:
		text = c.spinner.View() + dimStyle.Render(" connecting...")
	case !c.state.Playing || c.ControlsVisible():
		text = glyphStyle.Render("▶")
		if c.state.Playing {
			text = glyphStyle.Render("❚❚")
		}
	}
	return lipgloss.PlaceHorizontal(c.width, lipgloss.Center, text)
}

func (c *Controller) renderFeedback() string {
	if c.feedback.Direction == Backward {
		text := feedbackStyle.Render("« " + c.feedback.Label)
		return strings.Repeat(" ", c.width/8) + text
	}
	text := feedbackStyle.Render(c.feedback.Label + " »")
	pad := c.width - c.width/8 - lipgloss.Width(text)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + text
}

// formatScrub formats a scrub offset in whole seconds: "⏩ +12s".
func formatScrub(offset float64) string {
	if offset < 0 {
		return "⏪ " + strconv.Itoa(int(offset)) + "s"
	}
	return "⏩ +" + strconv.Itoa(int(offset)) + "s"
}

type placed struct {
	x     int
	text  string
	width int
}

// placeButtons lays out buttons and extra text on one row of the given
// width, each at its own column.
func placeButtons(width int, buttons []button, extra []placed) string {
	items := append([]placed(nil), extra...)
	for _, b := range buttons {
		style := buttonStyle
		if b.active {
			style = activeStyle
		}
		items = append(items, placed{x: b.x, text: style.Render(b.label), width: lipgloss.Width(b.label)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].x < items[j].x })

	var sb strings.Builder
	col := 0
	for _, it := range items {
		if it.x < col || it.x+it.width > width {
			continue
		}
		sb.WriteString(strings.Repeat(" ", it.x-col))
		sb.WriteString(it.text)
		col = it.x + it.width
	}
	return sb.String()
}
