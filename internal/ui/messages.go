package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/faildex/faildex/internal/feedback"
)

type savedMsg struct{}

type saveErrorMsg struct {
	err error
}

// saveCommand persists one relevance decision to the feedback store.
func saveCommand(store *feedback.Store, rec feedback.Record) tea.Cmd {
	return func() tea.Msg {
		if _, err := store.Add(context.Background(), rec); err != nil {
			return saveErrorMsg{err: err}
		}
		return savedMsg{}
	}
}
