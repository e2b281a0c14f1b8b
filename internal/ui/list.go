package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/geo-martino/musify-cli/internal/tasks"
)

var (
	_ list.Item = groupItem{}
	_ list.Item = keyItem{}
)

// groupItem wraps [tasks.BackupGroup] to implement [list.Item].
type groupItem struct {
	group tasks.BackupGroup
}

func (i groupItem) FilterValue() string { return filepath.Base(i.group.Dir) }
func (i groupItem) Title() string       { return filepath.Base(i.group.Dir) }
func (i groupItem) Description() string {
	desc := fmt.Sprintf("%d keys", len(i.group.Keys))
	if len(i.group.Keys) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.group.Keys, ", "))
	}
	return desc
}

// keyItem wraps a backup key to implement [list.Item].
type keyItem struct {
	key string
	dir string
}

func (i keyItem) FilterValue() string { return i.key }
func (i keyItem) Title() string       { return i.key }
func (i keyItem) Description() string {
	return fmt.Sprintf("restore from %s", filepath.Base(i.dir))
}
