package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/geo-martino/musify-cli/internal/tasks"
)

func keyPress(t *testing.T, m tea.Model, keys ...string) tea.Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func testGroups() []tasks.BackupGroup {
	return []tasks.BackupGroup{
		{Dir: "/backups/2024-05-02_09.00.00", Keys: []string{"CHECK", "RUN"}},
		{Dir: "/backups/2024-05-01_12.00.00", Keys: []string{"BACKUP"}},
	}
}

func TestPickerSelectsGroupAndKey(t *testing.T) {
	model := NewModel(testGroups())
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m := keyPress(t, model, "enter")
	if model.view != KeyListView {
		t.Fatalf("expected key list view after selecting multi-key group, got %v", model.view)
	}

	m = keyPress(t, m, "down", "enter")
	if model.view != ConfirmView {
		t.Fatalf("expected confirm view after selecting key, got %v", model.view)
	}

	keyPress(t, m, "y")
	selection, confirmed := model.Selection()
	if !confirmed {
		t.Fatal("expected selection to be confirmed")
	}
	if selection.Dir != "/backups/2024-05-02_09.00.00" {
		t.Errorf("unexpected dir %q", selection.Dir)
	}
	if selection.Key != "RUN" {
		t.Errorf("unexpected key %q", selection.Key)
	}
}

func TestPickerSingleKeySkipsKeyList(t *testing.T) {
	model := NewModel(testGroups())
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	keyPress(t, model, "down", "enter")
	if model.view != ConfirmView {
		t.Fatalf("expected confirm view for single-key group, got %v", model.view)
	}

	selection, _ := model.Selection()
	if selection.Key != "BACKUP" {
		t.Errorf("unexpected key %q", selection.Key)
	}
}

func TestPickerDecline(t *testing.T) {
	model := NewModel(testGroups())
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	keyPress(t, model, "down", "enter", "n")
	if model.view != GroupListView {
		t.Fatalf("expected to return to group list after declining, got %v", model.view)
	}

	selection, confirmed := model.Selection()
	if confirmed {
		t.Fatal("expected selection to be unconfirmed")
	}
	if selection.Dir != "" || selection.Key != "" {
		t.Errorf("expected empty selection, got %+v", selection)
	}
}

func TestPickerConfirmView(t *testing.T) {
	model := NewModel(testGroups())
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	keyPress(t, model, "down", "enter")
	view := model.View()
	for _, want := range []string{
		"BACKUP", "2024-05-01_12.00.00", "will be replaced", "y: restore", "n: cancel",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("confirm view missing %q:\n%s", want, view)
		}
	}
}

func TestGroupItem(t *testing.T) {
	item := groupItem{group: testGroups()[0]}
	if item.Title() != "2024-05-02_09.00.00" {
		t.Errorf("unexpected title %q", item.Title())
	}
	if desc := item.Description(); !strings.Contains(desc, "CHECK, RUN") {
		t.Errorf("unexpected description %q", desc)
	}
}
