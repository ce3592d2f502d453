package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/kinelab/internal/animation"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/scenes"
	"github.com/san-kum/kinelab/internal/session"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 300
	seekStep        = 0.5
	minSpeed        = 0.125
	maxSpeed        = 8
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// plotted are the history series the g key cycles through.
var plotted = []string{"gforce", "velocity", "position", "acceleration"}

// TickMsg is the host frame signal.
type TickMsg time.Time

// history collects one quantity per rendered frame. It is shared by pointer
// because the session's render callback outlives any one Model value.
type history struct {
	quantity string
	values   []float64
	last     float64
}

func (h *history) push(s dynamo.Snapshot) {
	// A seek backwards or a reset restarts the trace.
	if s.Time < h.last {
		h.values = h.values[:0]
	}
	h.last = s.Time
	v, _ := s.Quantity(h.quantity)
	h.values = append(h.values, v)
	if len(h.values) > historyCapacity {
		h.values = h.values[1:]
	}
}

func (h *history) clear() {
	h.values = h.values[:0]
	h.last = 0
}

// Model is the live view of one scene. tea.Tick messages are fed to the
// frame queue, which runs the animation loop on the bubbletea goroutine.
type Model struct {
	sess     *session.Session
	queue    *animation.FrameQueue
	fps      int
	canvas   *Canvas
	view     Viewport
	bounds   bounds
	trace    *history
	plot     int
	selected int
	frame    int
	err      error
	showHelp bool
	back     bool
}

// NewModel binds scene to a fresh session and starts it playing.
func NewModel(scene dynamo.Scene, opts animation.Options, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	m := Model{
		queue:  animation.NewFrameQueue(),
		fps:    fps,
		canvas: NewCanvas(canvasWidth, canvasHeight),
		trace:  &history{quantity: plotted[0]},
	}
	m.sess = session.New(scene, m.queue, opts, m.trace.push)
	m.refit()
	m.sess.Play()
	return m
}

// Session exposes the underlying session.
func (m Model) Session() *session.Session { return m.sess }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and forwards host frames to the loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.back = true
			return m, nil
		case " ":
			m.sess.Toggle()
		case "r":
			m.sess.Reset()
		case "[":
			m.sess.SkipTo(m.sess.Loop().SimTime() - seekStep)
		case "]":
			m.sess.SkipTo(m.sess.Loop().SimTime() + seekStep)
		case "+", "=":
			m.sess.SetSpeed(math.Min(m.sess.Loop().Speed()*2, maxSpeed))
		case "-", "_":
			m.sess.SetSpeed(math.Max(m.sess.Loop().Speed()/2, minSpeed))
		case "tab":
			m.cycleParam(1)
		case "shift+tab":
			m.cycleParam(-1)
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "g":
			m.plot = (m.plot + 1) % len(plotted)
			m.trace.quantity = plotted[m.plot]
			m.trace.clear()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.queue.Fire(time.Time(msg))
		m.frame++
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) specs() []scenes.ParamSpec {
	if d, ok := m.sess.Scene().(scenes.Describer); ok {
		return d.Specs()
	}
	return nil
}

func (m *Model) cycleParam(dir int) {
	n := len(m.specs())
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

// adjustParam nudges the selected slider by one increment and restarts the scene with the new value.
func (m *Model) adjustParam(dir int) {
	specs := m.specs()
	if len(specs) == 0 {
		return
	}
	spec := specs[m.selected]
	step := spec.Increment()
	cur := m.sess.Scene().GetParams()[spec.Name]
	if err := m.sess.SetParam(spec.Name, cur+float64(dir)*step); err != nil {
		m.err = err
		return
	}
	m.trace.clear()
	m.refit()
	m.sess.Play()
}

func (m *Model) refit() {
	m.bounds = sceneBounds(m.sess.Scene(), m.sess.Loop().SimTime())
	m.view = FitViewport(m.bounds.minX, m.bounds.maxX, m.bounds.minY, m.bounds.maxY,
		m.canvas.PixelWidth(), m.canvas.PixelHeight(), 0.08)
}

// View renders the canvas beside the readouts.
func (m Model) View() string {
	snap := m.sess.Snapshot()
	loop := m.sess.Loop()
	drawScene(m.canvas, m.view, m.bounds, m.sess.Scene().GetParams(), snap)

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.sess.Scene().Name()), CurrentTheme.Primary, CurrentTheme.Secondary) + "\n")
	if loop.Running() {
		s.WriteString(StatusRunning.Render(Spinner(m.frame) + " PLAYING"))
	} else {
		s.WriteString(StatusPaused.Render("‖ PAUSED"))
	}
	s.WriteString(Subtle.Render(fmt.Sprintf("  x%g", loop.Speed())) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + value + "\n")
	}
	// The live clock is read directly; the snapshot may lag a frame.
	row("Time", MetricValue.Render(fmt.Sprintf("%.2f / %.2fs", loop.SimTime(), loop.MaxTime())))
	row("Phase", MetricValue.Render(snap.Phase))
	row("Progress", ProgressBar(snap.Progress, 20))
	row("Position", MetricValue.Render(fmt.Sprintf("%.3f m", snap.Position)))
	row("Velocity", MetricValue.Render(fmt.Sprintf("%.3f m/s", snap.Velocity)))
	row("Accel", MetricValue.Render(fmt.Sprintf("%.3f m/s²", snap.Acceleration)))
	row("Weight", MetricValue.Render(fmt.Sprintf("%.1f N", snap.ApparentWeight))+"  "+WeightState(snap.WeightState))
	row("G-force", MetricValue.Render(fmt.Sprintf("%.2f g", snap.GForce)))
	if snap.CollisionProgress > 0 {
		row("Contact", ProgressBar(snap.CollisionProgress, 20))
	}

	if len(snap.Quantities) > 0 {
		s.WriteString("\n")
		names := make([]string, 0, len(snap.Quantities))
		for k := range snap.Quantities {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			row(k, MetricLabel.Render(fmt.Sprintf("%.3f", snap.Quantities[k])))
		}
	}

	if len(m.trace.values) > 1 {
		chart := asciigraph.Plot(m.trace.values, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(m.trace.quantity))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n" + Title.Render("PARAMETERS") + "\n")
	params := m.sess.Scene().GetParams()
	for i, spec := range m.specs() {
		line := fmt.Sprintf("%-13s %8.3g %s", spec.Name, params[spec.Name], spec.Unit)
		if locked(m.sess.Scene(), spec.Name) {
			line += " (fixed)"
		}
		if i == m.selected {
			s.WriteString(Selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + MetricLabel.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString(ErrorText.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + Separator(40) + "\n")
	s.WriteString(KeyHint.Render("SP:Play R:Reset Q:Quit ESC:Menu\n[ ]:Seek +/-:Speed ↑↓:Tune ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return Panel.Render(helpText) + "\n" + main
	}
	return main
}

const helpText = `KEYBOARD SHORTCUTS
Space      play / pause (plays from 0 at the end)
R          reset to t=0
[ ]        seek -/+ 0.5s
+ -        double / halve playback speed
Tab        next parameter
Up Down    adjust parameter
G          cycle plotted quantity
T          cycle theme
Esc        back to scene menu
Q          quit`
