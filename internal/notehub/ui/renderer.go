package ui

import (
	"fmt"
	"io"
	"strings"

	"notehub/internal/notehub/app"
)

// Тексты экрана.
const (
	TextLoading    = "Loading notes..."
	TextEmpty      = "No notes found."
	TextError      = "Could not load notes"
	TextSearching  = "searching..."
	TextUpdating   = "updating..."
	TextModalTitle = "New note"
	TextHelp       = "type to search  ←/→ page  ↑/↓ select  ctrl+n new  ctrl+d delete  ctrl+r refresh  esc quit"
)

// Parts подменяют части экрана в интерактивном режиме. Пустые поля рисуются по умолчанию.
type Parts struct {
	SearchLine string
	Selected   string
	ModalBody  string
	Notice     string
	Help       string
}

// Renderer выводит полный снимок контроллера.
type Renderer struct {
	Style Style
}

// NewRenderer создает Renderer с оформлением, подходящим для w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{Style: StyleFor(w)}
}

// Render выводит v в w.
func (r *Renderer) Render(w io.Writer, v app.View) error {
	screen, err := r.Screen(v, Parts{})
	if err != nil {
		return err
	}
	return flush(w, screen)
}

// Screen собирает экран для v.
func (r *Renderer) Screen(v app.View, p Parts) (string, error) {
	st := r.Style
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", st.Bold("NoteHub"))
	if p.SearchLine != "" {
		fmt.Fprintf(&b, "%s\n", p.SearchLine)
	} else if err := (SearchBox{Value: v.SearchInput}).Render(&b, st); err != nil {
		return "", err
	}
	if v.SearchInput != v.DebouncedSearch {
		fmt.Fprintf(&b, "%s\n", st.Dim(TextSearching))
	}
	if v.MutationError != nil {
		fmt.Fprintf(&b, "%s\n", st.Error("! "+v.MutationError.Error()))
	}
	if p.Notice != "" {
		fmt.Fprintf(&b, "%s\n", st.Error("! "+p.Notice))
	}
	b.WriteString("\n")

	switch v.Status {
	case app.ViewLoading:
		fmt.Fprintf(&b, "%s\n", TextLoading)
	case app.ViewError:
		msg := TextError
		if v.Err != nil {
			msg += ": " + v.Err.Error()
		}
		fmt.Fprintf(&b, "%s\n", st.Error(msg))
	case app.ViewEmpty:
		fmt.Fprintf(&b, "%s\n", TextEmpty)
	case app.ViewList:
		if v.IsPlaceholder || v.IsFetching {
			fmt.Fprintf(&b, "%s\n", st.Dim(TextUpdating))
		}
		if err := (NoteList{Notes: v.Notes, Selected: p.Selected}).Render(&b, st); err != nil {
			return "", err
		}
	}

	if v.ShowPagination {
		b.WriteString("\n")
		if err := (Pagination{TotalPages: v.TotalPages, Current: v.Page}).Render(&b, st); err != nil {
			return "", err
		}
	}

	if v.ModalOpen {
		b.WriteString("\n")
		body := p.ModalBody
		if body == "" {
			body = "Fill in the fields below.\nPress esc to close."
		}
		modal := Modal{Title: TextModalTitle}
		err := modal.Render(&b, st, func(w io.Writer) error {
			_, err := io.WriteString(w, body)
			return err
		})
		if err != nil {
			return "", err
		}
	}

	help := p.Help
	if help == "" {
		help = TextHelp
	}
	fmt.Fprintf(&b, "\n%s\n", st.Dim(help))
	return b.String(), nil
}
