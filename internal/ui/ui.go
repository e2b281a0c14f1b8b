package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/geo-martino/musify-cli/internal/tasks"
)

// ViewState represents the current view in the picker.
type ViewState int

const (
	GroupListView ViewState = iota
	KeyListView
	ConfirmView
)

// Selection is the backup run and key chosen in the picker.
type Selection struct {
	Dir string
	Key string
}

// Model represents the restore picker state.
type Model struct {
	view      ViewState
	width     int
	height    int
	groups    []tasks.BackupGroup
	groupList list.Model
	keyList   list.Model
	selected  Selection
	confirmed bool
	help      help.Model
	keys      keyMap
}

// NewModel creates a picker over the given backup runs.
func NewModel(groups []tasks.BackupGroup) *Model {
	items := make([]list.Item, len(groups))
	for i, group := range groups {
		items[i] = groupItem{group: group}
	}
	groupList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	groupList.Title = "Backups"

	return &Model{
		view:      GroupListView,
		groups:    groups,
		groupList: groupList,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Selection returns the chosen backup run and key. The boolean reports
// whether the choice was confirmed.
func (m *Model) Selection() (Selection, bool) {
	return m.selected, m.confirmed
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the picker state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.groupList.SetSize(msg.Width-4, msg.Height-8)
		m.keyList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case GroupListView:
			return m.handleGroupListKeys(msg)
		case KeyListView:
			return m.handleKeyListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}
	}

	return m.updateLists(msg)
}

// View renders the picker based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case GroupListView:
		return m.renderGroupList()
	case KeyListView:
		return m.renderKeyList()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleGroupListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.groupList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(groupItem); ok {
				m.selectGroup(item.group)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.groupList, cmd = m.groupList.Update(msg)
	return m, cmd
}

func (m *Model) selectGroup(group tasks.BackupGroup) {
	m.selected = Selection{Dir: group.Dir}

	if len(group.Keys) == 1 {
		m.selected.Key = group.Keys[0]
		m.view = ConfirmView
		return
	}

	items := make([]list.Item, len(group.Keys))
	for i, k := range group.Keys {
		items[i] = keyItem{key: k, dir: group.Dir}
	}
	m.keyList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.keyList.Title = fmt.Sprintf("Keys in %s", filepath.Base(group.Dir))
	m.keyList.SetSize(m.width-4, m.height-8)
	m.view = KeyListView
}

func (m *Model) handleKeyListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = GroupListView
		return m, nil
	case "enter":
		selected := m.keyList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(keyItem); ok {
				m.selected.Key = item.key
				m.view = ConfirmView
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.keyList, cmd = m.keyList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = GroupListView
		m.selected = Selection{}
		return m, nil
	case "y", "enter":
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GroupListView:
		m.groupList, cmd = m.groupList.Update(msg)
	case KeyListView:
		m.keyList, cmd = m.keyList.Update(msg)
	}
	return m, cmd
}

func (m *Model) renderGroupList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := styles.help.Render(m.help.ShortHelpView(helpKeys))
	return fmt.Sprintf("%s\n\n%s", m.groupList.View(), helpView)
}

func (m *Model) renderKeyList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := styles.help.Render(m.help.ShortHelpView(helpKeys))
	return fmt.Sprintf("%s\n\n%s", m.keyList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Restore backup '%s'?", m.selected.Key))
	info := fmt.Sprintf("\nRun: %s\nKey: %s\n", filepath.Base(m.selected.Dir), m.selected.Key)
	warning := styles.warn.Render("Matching library data will be replaced.")
	options := fmt.Sprintf("%s  %s", styles.ok.Render("y: restore"), styles.err.Render("n: cancel"))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := styles.help.Render(m.help.ShortHelpView(helpKeys))

	return fmt.Sprintf("%s\n%s%s\n\n%s\n%s", title, info, warning, options, helpView)
}

// PickBackup runs the picker over the given backup runs and returns the
// confirmed choice. The boolean is false when the user quit without
// confirming.
func PickBackup(groups []tasks.BackupGroup) (Selection, bool, error) {
	model := NewModel(groups)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return Selection{}, false, fmt.Errorf("restore picker failed: %w", err)
	}
	selection, confirmed := model.Selection()
	return selection, confirmed, nil
}
