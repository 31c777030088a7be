// Package tui provides an interactive terminal client for searching the
// documentation index and asking the assistant about the results.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/upstash/docsearch"
)

// DebounceInterval is how long input must be quiet before a search fires.
const DebounceInterval = 300 * time.Millisecond

// Generic failure lines. Causes are logged by the slog decorators wrapping
// the index and synthesizer, never rendered to the user.
const (
	searchErrorText = "An error occurred while searching. Please try again."
	answerErrorText = "An error occurred while generating the answer. Please try again."
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("61"))
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	answerStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// debounceElapsed fires when the debounce timer for one input revision
// expires. The generation identifies which revision armed the timer.
type debounceElapsed struct {
	generation int
}

// searchDone carries results back from a dispatched search. The sequence
// ties the response to the request that produced it; a response whose
// sequence is older than the newest dispatched request is dropped.
type searchDone struct {
	seq     int
	results []docsearch.SearchResult
	err     error
}

type answerChunk struct {
	seq   int
	chunk string
}

type answerDone struct {
	seq int
	err error
}

// Model is the Bubble Tea model for the search session.
type Model struct {
	index       docsearch.VectorIndex
	synthesizer docsearch.Synthesizer
	namespace   string
	topK        int
	ctx         context.Context

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// generation counts input revisions; only the timer armed by the
	// latest revision triggers a search.
	generation int

	// searchSeq is the sequence of the newest dispatched search.
	searchSeq int

	results   []docsearch.SearchResult
	selected  int
	searching bool

	// answerSeq is the sequence of the newest answer request; chunks
	// tagged with an older sequence are dropped.
	answerSeq    int
	answerCh     chan tea.Msg
	answerCancel context.CancelFunc
	answer       strings.Builder
	answering    bool

	// askedSeq is the search sequence already answered; one synthesis
	// per result set.
	askedSeq int

	emitted string

	width   int
	height  int
	ready   bool
	err     error
	errText string
}

// NewModel builds a search session over the given index and synthesizer.
func NewModel(index docsearch.VectorIndex, synthesizer docsearch.Synthesizer, namespace string, topK int) *Model {
	if namespace == "" {
		namespace = docsearch.DefaultNamespace
	}
	if topK <= 0 {
		topK = docsearch.DefaultTopK
	}

	ti := textinput.New()
	ti.Placeholder = "Search the docs..."
	ti.Focus()
	ti.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		index:       index,
		synthesizer: synthesizer,
		namespace:   namespace,
		topK:        topK,
		ctx:         context.Background(),
		input:       ti,
		spinner:     sp,
		askedSeq:    -1,
		width:       80,
		height:      24,
	}
}

// WithContext sets the context used for index and synthesizer calls.
func (m *Model) WithContext(ctx context.Context) *Model {
	m.ctx = ctx
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		m.viewport = viewport.New(msg.Width-4, max(msg.Height/3, 5))
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case debounceElapsed:
		if msg.generation != m.generation {
			// A newer keystroke superseded this timer.
			return m, nil
		}
		return m, m.dispatchSearch()

	case searchDone:
		if msg.seq != m.searchSeq {
			// Stale response from an earlier search.
			return m, nil
		}
		m.searching = false
		if msg.err != nil {
			// Stale results would mislead next to a failed search.
			m.err = msg.err
			m.errText = searchErrorText
			m.results = nil
			m.selected = 0
			return m, nil
		}
		m.err = nil
		m.errText = ""
		m.results = msg.results
		m.selected = 0
		return m, nil

	case answerChunk:
		if msg.seq != m.answerSeq {
			return m, nil
		}
		m.answer.WriteString(msg.chunk)
		m.viewport.SetContent(m.answer.String())
		m.viewport.GotoBottom()
		return m, m.waitForAnswer()

	case answerDone:
		if msg.seq != m.answerSeq {
			return m, nil
		}
		m.answering = false
		m.answerCh = nil
		if m.answerCancel != nil {
			m.answerCancel()
			m.answerCancel = nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.errText = answerErrorText
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case tea.KeyDown:
		if m.selected < len(m.results)-1 {
			m.selected++
		}
		return m, nil

	case tea.KeyEnter:
		return m, m.emitSelected()

	case tea.KeyTab:
		return m, m.startAnswer()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	// The text changed: any answer in flight or on screen belongs to the
	// previous question.
	m.clearAnswer()

	// Arm a fresh debounce timer and invalidate any timer a previous
	// revision armed.
	m.generation++
	generation := m.generation
	debounce := tea.Tick(DebounceInterval, func(time.Time) tea.Msg {
		return debounceElapsed{generation: generation}
	})
	return m, tea.Batch(cmd, debounce)
}

// dispatchSearch starts a search for the current input and tags it with
// the next sequence number.
func (m *Model) dispatchSearch() tea.Cmd {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.searching = false
		m.results = nil
		m.selected = 0
		return nil
	}

	m.searchSeq++
	seq := m.searchSeq
	m.searching = true

	return func() tea.Msg {
		results, err := m.index.Query(m.ctx, m.namespace, query, m.topK)
		return searchDone{seq: seq, results: results, err: err}
	}
}

// clearAnswer drops answer state and invalidates any in-flight stream. The
// superseded producer is cancelled so it stops instead of blocking forever
// on the abandoned channel.
func (m *Model) clearAnswer() {
	m.answerSeq++
	m.answerCh = nil
	if m.answerCancel != nil {
		m.answerCancel()
		m.answerCancel = nil
	}
	m.answering = false
	m.answer.Reset()
	m.err = nil
	m.errText = ""
}

// emitSelected records the selected result's site path and resets the
// session to idle.
func (m *Model) emitSelected() tea.Cmd {
	if len(m.results) == 0 {
		return nil
	}

	m.emitted = m.results[m.selected].SitePath()
	m.input.SetValue("")
	m.results = nil
	m.selected = 0
	m.searching = false
	m.err = nil
	m.clearAnswer()
	return tea.Quit
}

// startAnswer asks the synthesizer about the current question using the
// current results as grounding, streaming the reply into the viewport. A
// result set is answered at most once.
func (m *Model) startAnswer() tea.Cmd {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || len(m.results) == 0 || m.answering || m.askedSeq == m.searchSeq {
		return nil
	}
	m.askedSeq = m.searchSeq

	m.answerSeq++
	seq := m.answerSeq
	m.answering = true
	m.answer.Reset()
	m.viewport.SetContent("")
	m.err = nil

	items := docsearch.ContextFromResults(m.results)
	ch := make(chan tea.Msg, 1)
	m.answerCh = ch

	actx, cancel := context.WithCancel(m.ctx)
	m.answerCancel = cancel

	// The producer stops on cancellation even when nobody reads the
	// channel anymore; a superseded answer must not strand a goroutine
	// mid-send.
	go func() {
		send := func(msg tea.Msg) bool {
			select {
			case ch <- msg:
				return true
			case <-actx.Done():
				return false
			}
		}
		for chunk, err := range m.synthesizer.SynthesizeStream(actx, question, items) {
			if err != nil {
				send(answerDone{seq: seq, err: err})
				return
			}
			if !send(answerChunk{seq: seq, chunk: chunk}) {
				return
			}
		}
		send(answerDone{seq: seq})
	}()

	return m.waitForAnswer()
}

// waitForAnswer blocks on the next stream event.
func (m *Model) waitForAnswer() tea.Cmd {
	ch := m.answerCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return <-ch
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, titleStyle.Render("Docs Search"), "", m.input.View(), "")

	if m.errText != "" {
		sections = append(sections, errorStyle.Render(m.errText), "")
	}

	if m.searching {
		sections = append(sections, m.spinner.View()+" Searching...", "")
	} else {
		sections = append(sections, m.renderResults(), "")
	}

	if m.answering || m.answer.Len() > 0 {
		label := "Answer"
		if m.answering {
			label = m.spinner.View() + " Answer"
		}
		sections = append(sections,
			titleStyle.Render(label),
			answerStyle.Width(m.width-4).Render(m.viewport.View()),
			"")
	}

	sections = append(sections, helpStyle.Render("↑/↓ select · enter open · tab ask · esc quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderResults() string {
	if len(m.results) == 0 {
		if strings.TrimSpace(m.input.Value()) == "" {
			return helpStyle.Render("Type to search.")
		}
		return helpStyle.Render("No results.")
	}

	visible := min(len(m.results), max(m.height/3, 5))
	lines := make([]string, 0, visible)
	for i, r := range m.results[:visible] {
		title := r.Metadata.Title
		if title == "" {
			title = r.Metadata.DocumentTitle
		}
		line := title + pathStyle.Render("  "+r.SitePath())
		if i == m.selected {
			lines = append(lines, selectedStyle.Render("> "+line))
		} else {
			lines = append(lines, resultStyle.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

// Results returns the current result set.
func (m *Model) Results() []docsearch.SearchResult {
	return m.results
}

// Selected returns the index of the highlighted result.
func (m *Model) Selected() int {
	return m.selected
}

// Answer returns the answer text accumulated so far.
func (m *Model) Answer() string {
	return m.answer.String()
}

// EmittedPath returns the site-relative path of the result the user opened,
// or "" if none was opened.
func (m *Model) EmittedPath() string {
	return m.emitted
}

// Err returns the current error, if any.
func (m *Model) Err() error {
	return m.err
}

// Run starts the interactive session and blocks until it exits. If the user
// opened a result, its site-relative path is printed on exit.
func Run(ctx context.Context, index docsearch.VectorIndex, synthesizer docsearch.Synthesizer, namespace string, topK int) error {
	model := NewModel(index, synthesizer, namespace, topK).WithContext(ctx)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return docsearch.Errorf(docsearch.EINTERNAL, "tui: %v", err)
	}
	if m, ok := final.(*Model); ok && m.EmittedPath() != "" {
		fmt.Println(m.EmittedPath())
	}
	return nil
}
