package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"notehub/internal/notehub/domain/entities"
)

// Ошибки компонентов.
var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNoteNotListed  = errors.New("note is not on this page")
)

// NoteList выводит заметки в порядке получения.
// Selected отмечает заметку, к которой относятся действия.
type NoteList struct {
	Notes    []entities.Note
	Selected string
	OnDelete func(id string)
}

// Render выводит по блоку на заметку.
func (l NoteList) Render(w io.Writer, st Style) error {
	var b strings.Builder
	for i, n := range l.Notes {
		if i > 0 {
			b.WriteString("\n")
		}
		if l.Selected != "" {
			marker := "  "
			if n.ID == l.Selected {
				marker = st.Accent("> ")
			}
			b.WriteString(marker)
		}
		fmt.Fprintf(&b, "%s  %s\n", st.Bold(n.Title), st.Accent("#"+string(n.Tag)))
		if n.Content != "" {
			for _, line := range strings.Split(n.Content, "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		fmt.Fprintf(&b, "  %s\n", st.Dim("id: "+n.ID))
	}
	return flush(w, b.String())
}

// Delete передает наверх удаление заметки из списка.
func (l NoteList) Delete(id string) error {
	for _, n := range l.Notes {
		if n.ID == id {
			if l.OnDelete != nil {
				l.OnDelete(id)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNoteNotListed, id)
}

// SearchBox показывает введенный текст поиска.
type SearchBox struct {
	Value    string
	OnChange func(text string)
}

// Render выводит строку поиска.
func (s SearchBox) Render(w io.Writer, st Style) error {
	var b strings.Builder
	value := s.Value
	if value == "" {
		value = st.Dim("(all notes)")
	}
	fmt.Fprintf(&b, "Search: %s\n", value)
	return flush(w, b.String())
}

// Change передает наверх новый текст.
func (s SearchBox) Change(text string) {
	if s.OnChange != nil {
		s.OnChange(text)
	}
}

// Pagination выводит страницы 1..TotalPages.
type Pagination struct {
	TotalPages int
	Current    int
	OnSelect   func(page int)
}

// Render выводит номера страниц с выделенной текущей.
func (p Pagination) Render(w io.Writer, st Style) error {
	var b strings.Builder
	b.WriteString("Pages:")
	for i := 1; i <= p.TotalPages; i++ {
		label := strconv.Itoa(i)
		if i == p.Current {
			label = st.Accent("[" + label + "]")
		}
		b.WriteString(" " + label)
	}
	b.WriteString("\n")
	return flush(w, b.String())
}

// Select передает наверх выбранную страницу.
func (p Pagination) Select(page int) error {
	if page < 1 || page > p.TotalPages {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, p.TotalPages)
	}
	if p.OnSelect != nil {
		p.OnSelect(page)
	}
	return nil
}

// Modal рамка поверх экрана.
type Modal struct {
	Title   string
	OnClose func()
}

// Render выводит рамку и содержимое body.
func (m Modal) Render(w io.Writer, st Style, body func(io.Writer) error) error {
	var inner strings.Builder
	if body != nil {
		if err := body(&inner); err != nil {
			return err
		}
	}

	lines := strings.Split(strings.TrimRight(inner.String(), "\n"), "\n")
	title := lipgloss.Width(m.Title)
	width := title + 2
	for _, line := range lines {
		width = max(width, lipgloss.Width(line))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "+-%s-+\n", st.Bold(m.Title+" "+strings.Repeat("-", width-title-1)))
	for _, line := range lines {
		fmt.Fprintf(&b, "| %s%s |\n", line, strings.Repeat(" ", width-lipgloss.Width(line)))
	}
	fmt.Fprintf(&b, "+-%s-+\n", strings.Repeat("-", width))
	return flush(w, b.String())
}

// Close вызывает OnClose один раз на каждое явное закрытие.
func (m Modal) Close() {
	if m.OnClose != nil {
		m.OnClose()
	}
}
