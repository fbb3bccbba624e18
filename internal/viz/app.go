package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/episim/internal/epidemic"
)

// Default slider upper ends. A larger configured value widens its slider.
const (
	maxRateSlider  = 10.0
	maxStepsSlider = 100000
)

const (
	sliderTransmission = iota
	sliderRecovery
	sliderSteps
)

// ComputeFunc produces a trajectory for p. The view calls it off the UI
// goroutine and cancels ctx once a newer request supersedes it.
type ComputeFunc func(ctx context.Context, p epidemic.Params) (*epidemic.Trajectory, error)

type refreshMsg struct{}

type trajectoryMsg struct {
	seq  uint64
	traj *epidemic.Trajectory
	err  error
}

type Model struct {
	base    epidemic.Params
	sliders [3]Slider
	cursor  int

	compute ComputeFunc
	seq     uint64
	cancel  context.CancelFunc
	busy    bool

	traj *epidemic.Trajectory
	err  error

	width, height int
}

// NewModel starts the sliders at base's rates and step count. Population,
// initial infected and step size stay fixed for the session.
func NewModel(base epidemic.Params, compute ComputeFunc) Model {
	if compute == nil {
		compute = epidemic.ComputeTrajectory
	}
	return Model{
		base: base,
		sliders: [3]Slider{
			newSlider("transmission", 0, max(maxRateSlider, base.TransmissionRate), 0.01, 0.1, base.TransmissionRate),
			newSlider("recovery", 0, max(maxRateSlider, base.RecoveryRate), 0.01, 0.1, base.RecoveryRate),
			newSlider("max steps", 0, float64(max(maxStepsSlider, base.MaxSteps)), 1, 100, float64(base.MaxSteps)),
		},
		compute: compute,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case refreshMsg:
		return m.refresh()
	case trajectoryMsg:
		return m.receive(msg), nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := &m.sliders[m.cursor]
	changed := false

	switch msg.String() {
	case "q", "ctrl+c":
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sliders)-1 {
			m.cursor++
		}
	case "left", "h":
		changed = s.Nudge(-s.Step)
	case "right", "l":
		changed = s.Nudge(s.Step)
	case "shift+left", "H":
		changed = s.Nudge(-s.Coarse)
	case "shift+right", "L":
		changed = s.Nudge(s.Coarse)
	case "pgdown":
		changed = s.Nudge(-10 * s.Coarse)
	case "pgup":
		changed = s.Nudge(10 * s.Coarse)
	case "r":
		for i := range m.sliders {
			m.sliders[i].Reset()
		}
		changed = true
	}

	if changed {
		return m.refresh()
	}
	return m, nil
}

// Request is the parameter set the sliders currently describe.
func (m Model) Request() epidemic.Request {
	req := m.base.Request()
	req.TransmissionRate = m.sliders[sliderTransmission].Value
	req.RecoveryRate = m.sliders[sliderRecovery].Value
	req.MaxSteps = int(m.sliders[sliderSteps].Value)
	return req
}

// refresh supersedes any in-flight computation and starts a new one.
func (m Model) refresh() (Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.seq++

	p, err := epidemic.Build(m.Request())
	if err != nil {
		m.err, m.busy = err, false
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel, m.busy = cancel, true

	seq, compute := m.seq, m.compute
	return m, func() tea.Msg {
		tr, err := compute(ctx, p)
		return trajectoryMsg{seq: seq, traj: tr, err: err}
	}
}

// receive applies msg only if it answers the latest request.
func (m Model) receive(msg trajectoryMsg) Model {
	if msg.seq != m.seq {
		return m
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.busy = false

	if msg.err != nil {
		if !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}
		return m
	}
	m.traj, m.err = msg.traj, nil
	return m
}

// Trajectory is the last accepted result, or nil.
func (m Model) Trajectory() *epidemic.Trajectory { return m.traj }

// R0Text labels the reproduction ratio of the current slider rates.
func (m Model) R0Text() string {
	req := m.Request()
	return "R0=" + epidemic.FormatR0(epidemic.ReproductionRatio(req.TransmissionRate, req.RecoveryRate))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n  " + titleStyle.Render("EPISIM") + "  " + subtle.Render("SIR model, explicit Euler") + "\n\n")
	b.WriteString("  " + valueStyle.Render(m.R0Text()))
	if m.traj != nil && m.traj.Truncated() {
		b.WriteString("  " + warnStyle.Render(fmt.Sprintf("stopped at step %d of %d", m.traj.ValidLength-1, m.traj.Len()-1)))
	}
	if m.busy {
		b.WriteString("  " + subtle.Render("computing..."))
	}
	b.WriteString("\n\n")

	if m.traj != nil {
		b.WriteString(panel.Render(plot(m.traj, m.plotWidth(), m.plotHeight())) + "\n")
		b.WriteString("  " + legendS.Render("── Susceptible") + "  " + legendI.Render("── Infected") + "  " + legendR.Render("── Recovered/Removed") + "\n\n")
	}
	if m.err != nil {
		b.WriteString("  " + errStyle.Render(m.err.Error()) + "\n\n")
	}

	for i := range m.sliders {
		b.WriteString(m.renderSlider(i) + "\n")
	}

	b.WriteString("\n  " + hint("j/k", "select") + hint("h/l", "adjust") + hint("H/L", "coarse") + hint("r", "reset") + hint("q", "quit") + "\n")
	return b.String()
}

func (m Model) renderSlider(i int) string {
	s := m.sliders[i]
	const barWidth = 30

	filled := int(s.Fraction()*barWidth + 0.5)
	bar := strings.Repeat("━", filled) + "●" + strings.Repeat("─", barWidth-filled)

	value := fmt.Sprintf("%8.2f", s.Value)
	if i == sliderSteps {
		value = fmt.Sprintf("%8d", int(s.Value))
	}

	if i == m.cursor {
		return fmt.Sprintf("  %s %s %s %s", keyStyle.Render("▸"), selected.Render(fmt.Sprintf("%-13s", s.Label)), selected.Render(bar), valueStyle.Render(value))
	}
	return fmt.Sprintf("    %s %s %s", unselected.Render(fmt.Sprintf("%-13s", s.Label)), unselected.Render(bar), unselected.Render(value))
}

func (m Model) plotWidth() int {
	if w := m.width - 14; w > 20 {
		return w
	}
	return 20
}

func (m Model) plotHeight() int {
	if h := m.height - 16; h > 5 {
		return h
	}
	return 5
}

// RunInteractive opens the full-screen view seeded with base.
func RunInteractive(base epidemic.Params) error {
	_, err := tea.NewProgram(NewModel(base, nil), tea.WithAltScreen()).Run()
	return err
}
