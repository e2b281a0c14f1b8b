// Package ui implements the interactive restore picker using bubbletea's Elm architecture.
//
// The picker walks through three views:
//  1. [GroupListView] : Browse previous backup runs, newest first
//  2. [KeyListView] : Choose a backup key found within the selected run
//  3. [ConfirmView] : Confirm the restore before anything is written
//
// The [Model] implements bubbletea's standard Init/Update/View pattern. The
// picker never touches the libraries itself; it only returns the chosen
// directory and key to the caller.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
