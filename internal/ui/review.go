// Package ui implements the interactive feedback review screen. Each
// ranked candidate is shown next to the failure signature and the
// reviewer marks it relevant or not; decisions land in the feedback
// store and later feed model training.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/faildex/faildex/internal/extractor"
	"github.com/faildex/faildex/internal/feedback"
	"github.com/faildex/faildex/internal/similarity"
)

// ReviewItem pairs a ranked match with its full candidate issue.
type ReviewItem struct {
	Match similarity.MatchResult
	Issue similarity.CandidateIssue
}

// ReviewModel steps through ranked matches collecting relevance
// decisions.
type ReviewModel struct {
	width  int
	height int

	sig   *extractor.FailureSignature
	items []ReviewItem
	store *feedback.Store

	idx      int
	saved    int
	saving   bool
	err      error
	ready    bool
	quitting bool
}

// NewReviewModel creates a review model over the ranked matches.
func NewReviewModel(sig *extractor.FailureSignature, items []ReviewItem, store *feedback.Store) *ReviewModel {
	return &ReviewModel{sig: sig, items: items, store: store}
}

// Init initializes the review model.
func (m *ReviewModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update handles messages.
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "y":
			return m.record(true)
		case "n":
			return m.record(false)
		case "s":
			return m.advance()
		}

	case savedMsg:
		m.saving = false
		m.saved++
		return m.advance()

	case saveErrorMsg:
		m.saving = false
		m.err = msg.err
	}

	return m, nil
}

// record queues the current decision for persistence.
func (m *ReviewModel) record(relevant bool) (tea.Model, tea.Cmd) {
	if m.idx >= len(m.items) {
		return m, nil
	}
	item := m.items[m.idx]
	rec := feedback.Record{
		Test:              m.sig.Test,
		Signature:         m.sig.Signature,
		SignatureKeywords: m.sig.Keywords,
		IssueID:           item.Issue.ID,
		IssueSummary:      item.Issue.Summary,
		IssueDescription:  item.Issue.Description,
		Relevant:          relevant,
	}
	m.saving = true
	m.err = nil
	return m, saveCommand(m.store, rec)
}

// advance moves to the next match, quitting after the last one.
func (m *ReviewModel) advance() (tea.Model, tea.Cmd) {
	m.idx++
	if m.idx >= len(m.items) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// Saved reports how many decisions were persisted.
func (m *ReviewModel) Saved() int { return m.saved }

// View renders the review screen.
func (m *ReviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return fmt.Sprintf("Recorded %d decision(s).\n", m.saved)
	}

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6"))

	var b strings.Builder
	fmt.Fprintf(&b, "Feedback Review  (%d/%d)\n\n", m.idx+1, len(m.items))
	fmt.Fprintf(&b, "Failure: %s\n\n", clip(m.sig.Signature, 90))

	item := m.items[m.idx]
	fmt.Fprintf(&b, "%s  score %.2f\n", item.Issue.ID, item.Match.Score)
	fmt.Fprintf(&b, "%s\n", clip(item.Issue.Summary, 90))
	if item.Issue.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", clip(item.Issue.Description, 200))
	}

	switch {
	case m.saving:
		b.WriteString("\nSaving...")
	case m.err != nil:
		fmt.Fprintf(&b, "\nSave failed: %v", m.err)
	}
	b.WriteString("\n\n[y] relevant  [n] not relevant  [s] skip  [q] quit")

	return style.Render(b.String())
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// RunReview runs the interactive review over ranked matches. Matches
// without a resolvable issue are skipped up front.
func RunReview(sig *extractor.FailureSignature, matches []similarity.MatchResult, issues []similarity.CandidateIssue, store *feedback.Store) (int, error) {
	byID := make(map[string]similarity.CandidateIssue, len(issues))
	for _, issue := range issues {
		byID[issue.ID] = issue
	}
	items := make([]ReviewItem, 0, len(matches))
	for _, match := range matches {
		issue, ok := byID[match.IssueID]
		if !ok {
			continue
		}
		items = append(items, ReviewItem{Match: match, Issue: issue})
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("no matches to review")
	}

	model := NewReviewModel(sig, items, store)
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return 0, err
	}
	if m, ok := final.(*ReviewModel); ok {
		return m.Saved(), nil
	}
	return model.Saved(), nil
}
