package cli

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	"github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/keytree"
	"github.com/AbelMSG89/json-synchronized/pkg/panel"
	"github.com/AbelMSG89/json-synchronized/pkg/viewstate"
)

// Grid styles
var (
	gridCursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	gridCellStyle   = lipgloss.NewStyle().Reverse(true)
	gridEditStyle   = lipgloss.NewStyle().Foreground(colorCyan).Underline(true)
	gridErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	minCellWidth = 12
	maxKeyWidth  = 40
	chromeLines  = 6
)

// =============================================================================
// Messages
// =============================================================================

// refreshMsg asks the grid to re-merge after the host published.
type refreshMsg struct{}

// noticeMsg is a notification from the host.
type noticeMsg struct {
	level string
	text  string
}

// teardownMsg closes the grid.
type teardownMsg struct{ reason string }

// doneMsg reports a finished command for row id.
type doneMsg struct {
	id  string
	err error
}

// programSender forwards messages to a running program. Sends before the
// program is attached are dropped.
type programSender struct {
	p atomic.Pointer[tea.Program]
}

func (s *programSender) attach(p *tea.Program) { s.p.Store(p) }

func (s *programSender) Send(msg tea.Msg) {
	if p := s.p.Load(); p != nil {
		p.Send(msg)
	}
}

// Publish implements panel.Publisher.
func (s *programSender) Publish(m panel.Outbound) {
	switch m.Type {
	case panel.TypeJSON:
		s.Send(refreshMsg{})
	case panel.TypeNotify:
		s.Send(noticeMsg{level: m.Level, text: m.Message})
	case panel.TypeTeardown:
		s.Send(teardownMsg{reason: m.Reason})
	}
}

// gridDialog shows host notifications in the status line. Removal is
// confirmed inside the grid before the command is sent.
type gridDialog struct{ send func(tea.Msg) }

func (d gridDialog) Info(msg string)  { d.send(noticeMsg{level: panel.LevelInfo, text: msg}) }
func (d gridDialog) Warn(msg string)  { d.send(noticeMsg{level: panel.LevelWarning, text: msg}) }
func (d gridDialog) Error(msg string) { d.send(noticeMsg{level: panel.LevelError, text: msg}) }

func (d gridDialog) Confirm(context.Context, string) (bool, error) { return true, nil }

// =============================================================================
// GridModel
// =============================================================================

type inputMode int

const (
	modeBrowse inputMode = iota
	modeEdit
	modeAdd
	modeRename
	modeConfirm
)

// GridModel is the bubbletea model of the interactive grid.
type GridModel struct {
	ctx    context.Context
	host   *panel.Host
	state  *viewstate.State
	dialog panel.Dialog
	title  string

	names  []string
	res    keytree.Result
	rows   []keytree.Row
	cursor int
	col    int
	offset int
	height int
	width  int

	mode   inputMode
	input  []rune
	target keytree.Row

	status string
	level  string
	busy   int
	closed string
}

// NewGridModel creates a grid over host. state holds open groups and the
// edited row; dialog receives command outcomes.
func NewGridModel(ctx context.Context, host *panel.Host, state *viewstate.State, dialog panel.Dialog, title string) GridModel {
	m := GridModel{
		ctx:    ctx,
		host:   host,
		state:  state,
		dialog: dialog,
		title:  title,
		height: 20,
		width:  120,
	}
	m.refresh()
	return m
}

func (m GridModel) Init() tea.Cmd {
	return nil
}

// refresh re-merges the store and rebuilds the visible rows.
func (m *GridModel) refresh() {
	m.names = m.host.Store().Names()
	m.res = m.host.Rows()

	live := make(map[string]bool)
	for _, r := range keytree.Flatten(m.res.Rows, nil) {
		live[r.ID()] = true
	}
	m.state.Prune(func(id string) bool { return live[id] })
	m.rebuild()
}

// rebuild recomputes the visible rows from the last merge and keeps the
// cursor on the same row id when it is still visible.
func (m *GridModel) rebuild() {
	var current string
	if m.cursor < len(m.rows) {
		current = m.rows[m.cursor].ID()
	}
	m.rows = keytree.Flatten(m.res.Rows, m.state.IsOpen)
	for i, r := range m.rows {
		if r.ID() == current {
			m.cursor = i
			break
		}
	}
	m.clamp()
}

func (m *GridModel) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.col >= len(m.names) {
		m.col = len(m.names) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m GridModel) current() (keytree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return keytree.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *GridModel) notify(level, text string) {
	m.level = level
	m.status = text
}

// run hands msg to the host off the UI goroutine.
func (m *GridModel) run(id string, msg panel.Inbound) tea.Cmd {
	m.busy++
	host, ctx, d := m.host, m.ctx, m.dialog
	return func() tea.Msg {
		return doneMsg{id: id, err: host.Handle(ctx, msg, d)}
	}
}

func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - chromeLines
		if m.height < 3 {
			m.height = 3
		}
		m.clamp()
	case refreshMsg:
		m.refresh()
	case noticeMsg:
		m.notify(msg.level, msg.text)
	case teardownMsg:
		m.closed = msg.reason
		return m, tea.Quit
	case doneMsg:
		m.busy--
		if msg.err != nil && msg.id != "" {
			m.state.SetError(msg.id, errors.UserMessage(msg.err))
		}
	case tea.KeyMsg:
		if m.mode == modeBrowse {
			return m.browseKey(msg)
		}
		return m.inputKey(msg)
	}
	return m, nil
}

func (m GridModel) browseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup":
		m.cursor -= m.height
	case "pgdown":
		m.cursor += m.height
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.rows) - 1
	case "left", "h":
		m.col--
	case "right", "l", "tab":
		m.col++
	case "E":
		m.setAllOpen(true)
	case "C":
		m.setAllOpen(false)
	case "enter", " ":
		return m.activate()
	case "r":
		if r, ok := m.current(); ok && r.Kind != keytree.RowAdd {
			m.begin(modeRename, r, r.Key)
		}
	case "d", "delete":
		if r, ok := m.current(); ok && r.Kind != keytree.RowAdd {
			m.begin(modeConfirm, r, "")
		}
	case "t":
		return m.translateRow()
	}
	m.clamp()
	return m, nil
}

// activate toggles a group, edits a field cell or starts adding a key.
func (m GridModel) activate() (tea.Model, tea.Cmd) {
	r, ok := m.current()
	if !ok {
		return m, nil
	}
	switch r.Kind {
	case keytree.RowGroup:
		m.state.Toggle(r.ID())
		m.rebuild()
	case keytree.RowField:
		value := ""
		if m.col < len(r.Cells) && !r.Cells[m.col].HasError {
			value = r.Cells[m.col].Value
		}
		m.begin(modeEdit, r, value)
	case keytree.RowAdd:
		m.begin(modeAdd, r, "")
	}
	return m, nil
}

func (m *GridModel) begin(mode inputMode, r keytree.Row, initial string) {
	m.mode = mode
	m.target = r
	m.input = []rune(initial)
	m.state.StartEdit(r.ID())
}

func (m *GridModel) end() {
	m.mode = modeBrowse
	m.input = nil
}

func (m *GridModel) setAllOpen(open bool) {
	for _, r := range keytree.Flatten(m.res.Rows, nil) {
		if r.Kind == keytree.RowGroup {
			m.state.SetOpen(r.ID(), open)
		}
	}
	m.rebuild()
}

func (m GridModel) inputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirm {
		switch msg.String() {
		case "y", "Y":
			id := m.target.ID()
			m.state.FinishEdit()
			m.end()
			return m, m.run(id, panel.Inbound{Command: panel.CmdRemove, Key: m.target.Path})
		default:
			m.state.CancelEdit()
			m.end()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.state.CancelEdit()
		m.end()
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

// submit sends the edit in progress to the host.
func (m GridModel) submit() (tea.Model, tea.Cmd) {
	r := m.target
	id := r.ID()
	text := string(m.input)

	switch m.mode {
	case modeEdit:
		m.state.FinishEdit()
		m.end()
		col := m.col
		return m, m.run(id, panel.Inbound{
			Command:   panel.CmdEdit,
			Key:       r.Path,
			FileIndex: &col,
			NewValue:  jsonString(text),
		})

	case modeRename:
		if err := errors.ValidateKey(text); err != nil {
			m.state.SetError(id, errors.UserMessage(err))
			return m, nil
		}
		m.state.FinishEdit()
		m.end()
		if text == r.Key {
			return m, nil
		}
		return m, m.run(id, panel.Inbound{Command: panel.CmdRenameKey, OldPath: r.Path, NewKey: text})

	case modeAdd:
		key, value, group := parseAddInput(text)
		if err := r.ValidateKey(key); err != nil {
			m.state.SetError(id, errors.UserMessage(err))
			return m, nil
		}
		m.state.FinishEdit()
		m.end()
		newValue := jsonString(value)
		if group {
			newValue = []byte("{}")
			m.state.SetOpen(r.Path.Child(key).ID(), true)
		}
		return m, m.run(id, panel.Inbound{Command: panel.CmdAdd, Key: r.Path.Child(key), NewValue: newValue})
	}
	return m, nil
}

// parseAddInput reads "key", "key=value" or "key/" (a new group).
func parseAddInput(s string) (key, value string, group bool) {
	if k, v, ok := strings.Cut(s, "="); ok {
		return strings.TrimSpace(k), v, false
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "/") {
		return strings.TrimSuffix(s, "/"), "", true
	}
	return s, "", false
}

// translateRow translates the source cell of the current field into the
// other languages.
func (m GridModel) translateRow() (tea.Model, tea.Cmd) {
	r, ok := m.current()
	if !ok || r.Kind != keytree.RowField {
		return m, nil
	}
	col, lang := m.host.SourceLanguage()
	if col < 0 || col >= len(r.Cells) || r.Cells[col].IsEmpty {
		m.notify(panel.LevelWarning, fmt.Sprintf("%s has no %s value to translate", r.Path, lang))
		return m, nil
	}
	m.notify(panel.LevelInfo, fmt.Sprintf("Translating %s...", r.Path))
	return m, m.run(r.ID(), panel.Inbound{
		Command:        panel.CmdTranslate,
		Key:            r.Path,
		Text:           r.Cells[col].Value,
		SourceLanguage: lang,
	})
}

// =============================================================================
// View
// =============================================================================

func (m GridModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d documents · %d missing", len(m.names), m.res.Missing.Len())))
	b.WriteString("\n\n")

	keyW, cellW := m.columnWidths()
	header := pad("Key", keyW)
	for _, n := range m.names {
		header += pad(n, cellW)
	}
	b.WriteString(styleHeader.Render(header))
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i, keyW, cellW))
		b.WriteString("\n")
	}
	for i := end - m.offset; i < m.height; i++ {
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(m.help()))
	return b.String()
}

func (m GridModel) columnWidths() (int, int) {
	keyW := 12
	for _, r := range m.rows {
		keyW = max(keyW, lipgloss.Width(keyLabel(r, false))+2)
	}
	keyW = min(keyW, maxKeyWidth)
	cellW := minCellWidth
	if n := len(m.names); n > 0 {
		cellW = max((m.width-keyW)/n, minCellWidth)
	}
	return keyW, cellW
}

func (m GridModel) renderRow(i, keyW, cellW int) string {
	r := m.rows[i]
	st := m.state.Row(r.ID())
	selected := i == m.cursor

	label := keyLabel(r, st.Open)
	keyStyle := StyleValue
	switch r.Kind {
	case keytree.RowGroup:
		keyStyle = styleGroup
	case keytree.RowAdd:
		keyStyle = styleAdd
	}
	editingKey := selected && (m.mode == modeAdd || m.mode == modeRename)
	if editingKey {
		label = strings.Repeat("  ", r.Depth) + string(m.input) + "▏"
		keyStyle = gridEditStyle
	}
	line := keyStyle.Render(pad(label, keyW))

	for col := range m.names {
		text := cellText(r, col)
		style := lipgloss.NewStyle()
		if r.Missing.Has(col) || r.Conflicts.Has(col) {
			style = StyleMissing
		}
		if selected && col == m.col && r.Kind == keytree.RowField {
			if m.mode == modeEdit {
				text = string(m.input) + "▏"
				style = gridEditStyle
			} else {
				style = style.Inherit(gridCellStyle)
			}
		}
		line += style.Render(pad(text, cellW))
	}
	if st.Error != "" {
		line += " " + gridErrorStyle.Render(st.Error)
	}
	if selected {
		return gridCursorStyle.Render(line)
	}
	return line
}

func (m GridModel) statusLine() string {
	if m.mode == modeConfirm {
		return styleIconWarning.Render(iconWarning) + " " + fmt.Sprintf("Remove %q from all files? (y/n)", m.target.Path.String())
	}
	if m.status == "" {
		if m.busy > 0 {
			return StyleDim.Render("working...")
		}
		return ""
	}
	switch m.level {
	case panel.LevelError:
		return styleIconError.Render(iconError) + " " + m.status
	case panel.LevelWarning:
		return styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(m.status)
	default:
		return styleIconSuccess.Render(iconSuccess) + " " + m.status
	}
}

func (m GridModel) help() string {
	switch m.mode {
	case modeEdit, modeRename:
		return "⏎ save  esc cancel  ctrl+u clear"
	case modeAdd:
		return "key  key=value  key/ (group)  ⏎ add  esc cancel"
	case modeConfirm:
		return "y remove  any other key cancels"
	}
	return "↑/↓ move  ←/→ column  ⏎ open/edit  r rename  d remove  t translate  E/C expand/collapse  q quit"
}

// pad fits s into exactly w cells.
func pad(s string, w int) string {
	if w <= 1 {
		return ""
	}
	s = truncate(s, w-1)
	if n := lipgloss.Width(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}

// jsonString encodes s as a JSON string literal.
func jsonString(s string) []byte {
	data, _ := json.Marshal(s)
	return data
}
