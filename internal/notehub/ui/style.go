// Package ui рисует экран заметок в текстовом терминале.
package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Style включает или выключает оформление.
type Style struct {
	Color bool
}

type palette struct {
	bold   lipgloss.Style
	dim    lipgloss.Style
	err    lipgloss.Style
	accent lipgloss.Style
}

// ansi рисует в базовых 16 цветах независимо от того, куда идет вывод.
var ansi = newPalette(termenv.ANSI)

func newPalette(profile termenv.Profile) palette {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(true)

	return palette{
		bold:   r.NewStyle().Bold(true),
		dim:    r.NewStyle().Faint(true),
		err:    r.NewStyle().Foreground(lipgloss.Color("1")),
		accent: r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// StyleFor включает цвет, если w - терминал.
func StyleFor(w io.Writer) Style {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return Style{}
	}
	fd := f.Fd()
	return Style{Color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (s Style) render(st lipgloss.Style, text string) string {
	if !s.Color {
		return text
	}
	return st.Render(text)
}

// Bold выделяет текст.
func (s Style) Bold(text string) string { return s.render(ansi.bold, text) }

// Dim приглушает текст.
func (s Style) Dim(text string) string { return s.render(ansi.dim, text) }

// Error окрашивает текст ошибки.
func (s Style) Error(text string) string { return s.render(ansi.err, text) }

// Accent выделяет активный элемент.
func (s Style) Accent(text string) string { return s.render(ansi.accent, text) }

func flush(w io.Writer, text string) error {
	_, err := io.WriteString(w, text)
	return err
}
