// Package console prints display frames and notifications to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/lambda-display/internal/display"
	"github.com/sweeney/lambda-display/internal/notify"
)

var (
	colorBlack  = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#e0e0e0"}
	colorOrange = lipgloss.Color("#e36f27")
	colorRed    = lipgloss.Color("#b30000")
	colorDim    = lipgloss.Color("243")
)

// Console writes one line per frame. It is a display.Sink and the notify
// displays. Blink visibility is not rendered.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time

	stamp  lipgloss.Style
	label  lipgloss.Style
	byTone map[display.Color]lipgloss.Style
	info   lipgloss.Style
	err    lipgloss.Style
}

// New creates a Console writing to w. Colors are dropped when w is not a
// terminal.
func New(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		out:   w,
		now:   time.Now,
		stamp: r.NewStyle().Foreground(colorDim),
		label: r.NewStyle().Bold(true).Width(8),
		byTone: map[display.Color]lipgloss.Style{
			display.ColorBlack:  r.NewStyle().Foreground(colorBlack),
			display.ColorOrange: r.NewStyle().Foreground(colorOrange),
			display.ColorRed:    r.NewStyle().Foreground(colorRed).Bold(true),
		},
		info: r.NewStyle().Foreground(colorOrange),
		err:  r.NewStyle().Foreground(colorRed).Bold(true),
	}
}

// Apply prints the frame as "time  bank1 ... | bank2 ...".
func (c *Console) Apply(frame display.Frame) {
	banks := [][]display.ChannelID{
		{display.Bank1, display.Lambda1, display.AFR1, display.Temp1},
		{display.Bank2, display.Lambda2, display.AFR2, display.Temp2},
	}
	parts := make([]string, 0, len(banks))
	for _, ids := range banks {
		var cells []string
		for i, id := range ids {
			r, ok := frame.Channels[id]
			if !ok {
				continue
			}
			style := c.tone(r.Color)
			if i == 0 {
				style = style.Inherit(c.label)
			}
			cells = append(cells, style.Render(r.Text))
		}
		parts = append(parts, strings.Join(cells, "  "))
	}
	c.println(strings.Join(parts, " │ "))
}

// SetVisible is a no-op; the console log is append-only.
func (c *Console) SetVisible(display.ChannelID, bool) {}

// ShowInfos prints the joined info lines. An empty queue prints nothing.
func (c *Console) ShowInfos(lines []string) {
	if len(lines) == 0 {
		return
	}
	c.println(c.info.Render("info: " + strings.Join(lines, "; ")))
}

// ShowError prints a server error and its hint, if any.
func (c *Console) ShowError(n *notify.ErrorNotice) {
	if n == nil {
		return
	}
	c.println(c.err.Render(fmt.Sprintf("error [%s]: %s", n.Type, n.Exc)))
	if n.Hint != "" {
		c.println(c.info.Render(n.Hint))
	}
}

func (c *Console) tone(color display.Color) lipgloss.Style {
	if s, ok := c.byTone[color]; ok {
		return s
	}
	return c.byTone[display.ColorBlack]
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s  %s\n", c.stamp.Render(c.now().Format("15:04:05")), line)
}
