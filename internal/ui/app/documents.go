// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/k3a/html2text"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/notify"
	"github.com/jeranaias/lexpad-tui/internal/util"
)

// Document list messages.
const (
	MsgListFailed   = "Failed to load documents"
	MsgDeleted      = "Document deleted"
	MsgDeleteFailed = "Failed to delete document"
	noDocuments     = "No documents yet. Upload one from the web app."
	noMatches       = "No documents match the filter."
)

// documentKeys are the document list bindings.
type documentKeys struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Refresh key.Binding
	Filter  key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	SignOut key.Binding
}

func defaultDocumentKeys() documentKeys {
	return documentKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "open")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "n"), key.WithHelp("Esc", "cancel")),
		SignOut: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("C-o", "sign out")),
	}
}

// docItem is a document with its cached preview.
type docItem struct {
	doc     api.Document
	preview string
	folded  string
}

// documentsScreen lists the user's documents.
type documentsScreen struct {
	env  *env
	keys documentKeys

	items    []docItem
	visible  []int
	cursor   int
	offset   int
	loaded   bool
	loading  bool
	err      string
	filter   textinput.Model
	filterOn bool
	deleting string
}

func newDocumentsScreen(e *env) *documentsScreen {
	f := textinput.New()
	f.Prompt = "/ "
	f.Placeholder = "filter by title or text"
	return &documentsScreen{env: e, keys: defaultDocumentKeys(), filter: f}
}

func (s *documentsScreen) resize() {
	s.filter.Width = max(10, s.env.width-6)
	s.scrollToCursor()
}

func (s *documentsScreen) clear() {
	s.items, s.visible = nil, nil
	s.cursor, s.offset = 0, 0
	s.loaded = false
	s.filter.Reset()
	s.filterOn = false
}

func (s *documentsScreen) fetch(refresh bool) tea.Cmd {
	client := s.env.deps.Client
	if refresh {
		client.InvalidateDocuments()
	}
	s.loading = true
	return func() tea.Msg {
		docs, err := client.ListDocuments(context.Background())
		return documentsMsg{docs: docs, err: err}
	}
}

var folder = cases.Fold()

func (s *documentsScreen) setDocuments(docs []api.Document) {
	s.items = make([]docItem, len(docs))
	for i, d := range docs {
		text := strings.Join(strings.Fields(html2text.HTML2Text(d.Content)), " ")
		s.items[i] = docItem{
			doc:     d,
			preview: text,
			folded:  folder.String(d.Title + " " + text),
		}
	}
	s.loaded = true
	s.applyFilter()
}

func (s *documentsScreen) applyFilter() {
	q := folder.String(strings.TrimSpace(s.filter.Value()))
	s.visible = s.visible[:0]
	for i, it := range s.items {
		if q == "" || strings.Contains(it.folded, q) {
			s.visible = append(s.visible, i)
		}
	}
	s.cursor = min(s.cursor, max(0, len(s.visible)-1))
	s.scrollToCursor()
}

func (s *documentsScreen) selected() (api.Document, bool) {
	if s.cursor < 0 || s.cursor >= len(s.visible) {
		return api.Document{}, false
	}
	return s.items[s.visible[s.cursor]].doc, true
}

// rows available for items; each item takes three lines.
func (s *documentsScreen) pageSize() int {
	return max(1, (s.env.height-5)/3)
}

func (s *documentsScreen) scrollToCursor() {
	page := s.pageSize()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+page {
		s.offset = s.cursor - page + 1
	}
}

func (s *documentsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case documentsMsg:
		s.loading = false
		if msg.err != nil {
			s.env.logger.Warn("document list failed", zap.Error(msg.err))
			if !api.IsAuth(msg.err) {
				s.err = MsgListFailed
				notify.Error(s.env.toasts, MsgListFailed)
			}
			return nil
		}
		s.err = ""
		s.setDocuments(msg.docs)
		return nil

	case deletedMsg:
		if msg.err != nil {
			s.env.logger.Warn("document delete failed", zap.String("doc_id", msg.id), zap.Error(msg.err))
			if !api.IsAuth(msg.err) {
				notify.Error(s.env.toasts, MsgDeleteFailed)
			}
			return nil
		}
		notify.Success(s.env.toasts, MsgDeleted)
		if s.env.deps.Drafts != nil {
			_ = s.env.deps.Drafts.Delete(context.Background(), msg.id)
		}
		return s.fetch(true)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *documentsScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.deleting != "" {
		switch {
		case key.Matches(msg, s.keys.Confirm):
			id := s.deleting
			s.deleting = ""
			client := s.env.deps.Client
			return func() tea.Msg {
				return deletedMsg{id: id, err: client.DeleteDocument(context.Background(), id)}
			}
		case key.Matches(msg, s.keys.Cancel):
			s.deleting = ""
		}
		return nil
	}

	if s.filterOn {
		switch msg.Type {
		case tea.KeyEsc:
			s.filterOn = false
			s.filter.Reset()
			s.filter.Blur()
			s.applyFilter()
			return nil
		case tea.KeyEnter:
			s.filterOn = false
			s.filter.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		s.applyFilter()
		return cmd
	}

	switch {
	case key.Matches(msg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, s.keys.Down):
		if s.cursor < len(s.visible)-1 {
			s.cursor++
		}
	case key.Matches(msg, s.keys.Open):
		if d, ok := s.selected(); ok {
			id := d.ID
			return func() tea.Msg { return openDocumentMsg{id: id} }
		}
	case key.Matches(msg, s.keys.Refresh):
		return s.fetch(true)
	case key.Matches(msg, s.keys.Filter):
		s.filterOn = true
		return s.filter.Focus()
	case key.Matches(msg, s.keys.Delete):
		if d, ok := s.selected(); ok {
			s.deleting = d.ID
		}
	case key.Matches(msg, s.keys.SignOut):
		return func() tea.Msg { return signOutMsg{} }
	}
	s.scrollToCursor()
	return nil
}

func (s *documentsScreen) view() string {
	t := s.env.theme
	width := s.env.width

	header := t.Header.Width(width).Render(
		t.Brand.Render("lexpad") + "  " + t.Title.Render("Documents") +
			t.Muted.Render(fmt.Sprintf("  %d", len(s.items))))

	var body []string
	switch {
	case s.loading && !s.loaded:
		body = append(body, t.Thinking.Render("Loading documents..."))
	case s.err != "" && !s.loaded:
		body = append(body, t.ErrorText.Render(s.err+". Press r to retry."))
	case len(s.items) == 0:
		body = append(body, t.Muted.Render(noDocuments))
	case len(s.visible) == 0:
		body = append(body, t.Muted.Render(noMatches))
	}

	end := min(len(s.visible), s.offset+s.pageSize())
	for vi := s.offset; vi < end; vi++ {
		it := s.items[s.visible[vi]]
		title := it.doc.Title
		if title == "" {
			title = it.doc.ID
		}
		title = util.TruncateWidth(title, width-4)
		if vi == s.cursor {
			body = append(body, t.ListItemSelected.Render(title))
		} else {
			body = append(body, t.ListItem.Render(title))
		}
		meta := it.doc.FileName
		if u := it.doc.Updated(); !u.IsZero() {
			if meta != "" {
				meta += " · "
			}
			meta += "updated " + humanize.Time(u)
		}
		body = append(body,
			t.ListPreview.Render(util.TruncateWidth(it.preview, width-4)),
			t.ListMeta.Render(meta))
	}

	footer := s.footer()
	content := lipgloss.JoinVertical(lipgloss.Left, body...)
	bodyHeight := max(0, s.env.height-lipgloss.Height(header)-lipgloss.Height(footer))
	content = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Padding(0, 1).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (s *documentsScreen) footer() string {
	t := s.env.theme
	if s.deleting != "" {
		title := s.deleting
		for _, it := range s.items {
			if it.doc.ID == s.deleting && it.doc.Title != "" {
				title = it.doc.Title
			}
		}
		return t.StatusBar.Width(s.env.width).Render(
			t.Unsaved.Render(fmt.Sprintf("Delete %q? ", util.TruncateRunes(title, 40))) + "y/n")
	}
	if s.filterOn {
		return t.StatusBar.Width(s.env.width).Render(s.filter.View())
	}
	hints := []key.Binding{s.keys.Open, s.keys.Filter, s.keys.Refresh, s.keys.Delete, s.keys.SignOut}
	return t.StatusBar.Width(s.env.width).Render(renderHints(t, hints) + t.KeyHint.Render("  C-q quit"))
}
