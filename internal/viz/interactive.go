package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/kinelab/internal/animation"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/experiment"
	"github.com/san-kum/kinelab/internal/scenes"
)

var sceneInfo = map[string]string{
	"elevator":  "apparent weight in a lift",
	"freefall":  "drop, weightlessness, impact",
	"bounce":    "ball with restitution",
	"collision": "carts on a track",
	"loop":      "vertical loop-the-loop",
	"relative":  "relative velocity of two cars",
	"river":     "boat crossing a current",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// App is the interactive front end: pick a scene, tune its sliders, then
// watch it live.
type App struct {
	reg     *experiment.Registry
	opts    animation.Options
	fps     int
	state   int
	cursor  int
	names   []string
	scene   dynamo.Scene
	pcursor int
	editing bool
	editBuf string
	err     error
	live    Model
}

// NewApp starts at the scene menu.
func NewApp(reg *experiment.Registry, opts animation.Options, fps int) *App {
	return &App{reg: reg, opts: opts, fps: fps, names: reg.ListScenes()}
}

func (m *App) Init() tea.Cmd { return nil }

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m, m.menuKey(key)
		case stateConfig:
			return m, m.configKey(key)
		}
	}
	if m.state != stateSim {
		return m, nil
	}
	next, cmd := m.live.Update(msg)
	m.live = next.(Model)
	if m.live.back {
		m.live.Session().Pause()
		m.state = stateMenu
		return m, nil
	}
	return m, cmd
}

func (m *App) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		scene, err := m.reg.GetScene(m.names[m.cursor])
		if err != nil {
			m.err = err
			return nil
		}
		m.scene, m.pcursor, m.err = scene, 0, nil
		m.state = stateConfig
	}
	return nil
}

func (m *App) specs() []scenes.ParamSpec {
	if d, ok := m.scene.(scenes.Describer); ok {
		return d.Specs()
	}
	return nil
}

// locked reports a slider the scene currently holds at a derived value.
func locked(scene dynamo.Scene, name string) bool {
	l, ok := scene.(scenes.Locker)
	return ok && l.Locked(name)
}

func (m *App) configKey(msg tea.KeyMsg) tea.Cmd {
	specs := m.specs()
	if len(specs) == 0 {
		return m.start()
	}
	spec := specs[m.pcursor]

	if m.editing {
		switch msg.String() {
		case "enter":
			v, err := strconv.ParseFloat(m.editBuf, 64)
			if err != nil {
				m.err = fmt.Errorf("%s: %w", spec.Name, err)
			} else {
				m.err = m.scene.SetParam(spec.Name, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
			}
		}
		return nil
	}

	step := spec.Increment()
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.pcursor > 0 {
			m.pcursor--
		}
	case "down", "j":
		if m.pcursor < len(specs)-1 {
			m.pcursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = strconv.FormatFloat(m.scene.GetParams()[spec.Name], 'g', -1, 64)
	case "left", "h":
		m.err = m.scene.SetParam(spec.Name, m.scene.GetParams()[spec.Name]-step)
	case "right", "l":
		m.err = m.scene.SetParam(spec.Name, m.scene.GetParams()[spec.Name]+step)
	case "s":
		return m.start()
	}
	return nil
}

func (m *App) start() tea.Cmd {
	m.live = NewModel(m.scene, m.opts, m.fps)
	m.state = stateSim
	return m.live.Init()
}

func (m *App) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return m.viewMenu()
}

func (m *App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("KINELAB", CurrentTheme.Primary, CurrentTheme.Secondary) + "\n")
	b.WriteString("    " + Subtle.Render("kinematics demonstrations") + "\n")
	b.WriteString("    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.names {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", Title.Render("▸"), Selected.Render(fmt.Sprintf("%-12s", name)), MetricLabel.Render(sceneInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", Subtle.Render(fmt.Sprintf("%-12s", name)), Subtle.Render(sceneInfo[name])))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + ErrorText.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

func (m *App) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + Title.Render(strings.ToUpper(m.scene.Name())) + "\n")
	b.WriteString("    " + Subtle.Render(sceneInfo[m.scene.Name()]) + "\n")
	b.WriteString("    " + Subtle.Render(fmt.Sprintf("duration %.2fs", m.scene.Duration())) + "\n\n")

	params := m.scene.GetParams()
	for i, spec := range m.specs() {
		val := fmt.Sprintf("%10.4g", params[spec.Name])
		if m.editing && i == m.pcursor {
			val = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		label := spec.Label
		if locked(m.scene, spec.Name) {
			label += " (fixed by kind)"
		}
		line := fmt.Sprintf("%-14s %s %-5s %s", spec.Name, val, spec.Unit, Subtle.Render(label))
		if i == m.pcursor {
			b.WriteString("    " + Title.Render("▸") + " " + Selected.Render(line) + "\n")
		} else {
			b.WriteString("      " + MetricLabel.Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + ErrorText.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k select  h/l adjust  enter edit  s start  esc back") + "\n")
	return b.String()
}

// RunInteractive opens the scene menu on the alternate screen.
func RunInteractive(reg *experiment.Registry, opts animation.Options, fps int) error {
	_, err := tea.NewProgram(NewApp(reg, opts, fps), tea.WithAltScreen()).Run()
	return err
}

// RunLive shows one scene without the menu.
func RunLive(scene dynamo.Scene, opts animation.Options, fps int) error {
	_, err := tea.NewProgram(NewModel(scene, opts, fps), tea.WithAltScreen()).Run()
	return err
}
