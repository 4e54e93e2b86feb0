package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"notehub/internal/notehub/domain/entities"
)

// Поля формы в порядке обхода.
const (
	fieldTitle = iota
	fieldContent
	fieldTag
	fieldCount
)

// TextFormHelp подсказка под полями формы.
const TextFormHelp = "enter next/submit  tab move  esc cancel"

// NoteForm модальная форма новой заметки.
// OnSubmit получает проверенный черновик и возвращает команду отправки.
// OnCancel вызывается по esc.
type NoteForm struct {
	Style    Style
	OnSubmit func(entities.FormValues) tea.Cmd
	OnCancel func() tea.Cmd

	inputs  [fieldCount]textinput.Model
	focus   int
	err     error
	pending bool
}

// NewNoteForm создает форму с фокусом на заголовке и тегом Todo по умолчанию.
func NewNoteForm(st Style) NoteForm {
	f := NoteForm{Style: st}

	labels := [fieldCount]string{"Title:   ", "Content: ", "Tag:     "}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = labels[i]
		f.inputs[i] = in
	}
	f.inputs[fieldTag].Placeholder = tagChoices()
	f.inputs[fieldTag].SetValue(string(entities.TagTodo))
	f.inputs[fieldTitle].Focus()
	return f
}

// Init запускает мигание курсора.
func (f NoteForm) Init() tea.Cmd {
	return textinput.Blink
}

// Values возвращает введенные значения.
func (f NoteForm) Values() entities.FormValues {
	return entities.FormValues{
		Title:   strings.TrimSpace(f.inputs[fieldTitle].Value()),
		Content: strings.TrimSpace(f.inputs[fieldContent].Value()),
		Tag:     ParseTagInput(strings.TrimSpace(f.inputs[fieldTag].Value())),
	}
}

// Err возвращает последнюю ошибку проверки или отправки.
func (f NoteForm) Err() error {
	return f.err
}

// Pending сообщает, что черновик отправлен и ответа еще нет.
func (f NoteForm) Pending() bool {
	return f.pending
}

// Failed снимает ожидание и показывает ошибку отправки; поля сохраняются.
func (f NoteForm) Failed(err error) NoteForm {
	f.pending = false
	f.err = err
	return f
}

// Update обрабатывает клавиши формы.
func (f NoteForm) Update(msg tea.Msg) (NoteForm, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateInput(msg)
	}

	switch key.String() {
	case "esc":
		if f.OnCancel == nil {
			return f, nil
		}
		return f, f.OnCancel()
	case "tab", "down":
		return f.move(1)
	case "shift+tab", "up":
		return f.move(-1)
	case "enter":
		if f.focus < fieldCount-1 {
			return f.move(1)
		}
		return f.submit()
	}

	if f.pending {
		return f, nil
	}
	return f.updateInput(msg)
}

func (f NoteForm) updateInput(msg tea.Msg) (NoteForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f NoteForm) move(delta int) (NoteForm, tea.Cmd) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f, f.inputs[f.focus].Focus()
}

func (f NoteForm) submit() (NoteForm, tea.Cmd) {
	if f.pending {
		return f, nil
	}

	values := f.Values()
	if err := values.Validate(); err != nil {
		f.err = err
		return f, nil
	}

	f.err = nil
	if f.OnSubmit == nil {
		return f, nil
	}
	f.pending = true
	return f, f.OnSubmit(values)
}

// View рисует поля, ошибку и подсказку.
func (f NoteForm) View() string {
	var b strings.Builder
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	switch {
	case f.pending:
		b.WriteString(f.Style.Dim("saving...") + "\n")
	case f.err != nil:
		b.WriteString(f.Style.Error(f.err.Error()) + "\n")
	}
	b.WriteString(f.Style.Dim(TextFormHelp) + "\n")
	return b.String()
}
