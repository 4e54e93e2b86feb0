package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"notehub/internal/notehub/app"
	"notehub/internal/notehub/domain/entities"
)

// Controller операции контроллера, которыми управляет Browser.
type Controller interface {
	View() app.View
	Subscribe(fn func(app.View)) func()
	SetSearch(text string)
	SetPage(page int) error
	OpenModal()
	CloseModal()
	Create(ctx context.Context, values entities.FormValues) (*entities.Note, error)
	Delete(ctx context.Context, id string) (*entities.Note, error)
	Refresh(ctx context.Context)
}

// ViewChangedMsg сообщает, что у контроллера новый снимок.
type ViewChangedMsg struct{}

// NoteCreatedMsg результат отправки формы.
type NoteCreatedMsg struct {
	Note *entities.Note
	Err  error
}

// NoteDeletedMsg результат удаления.
type NoteDeletedMsg struct {
	ID  string
	Err error
}

// Browser интерактивный экран заметок поверх Controller.
type Browser struct {
	ctx         context.Context
	ctrl        Controller
	renderer    *Renderer
	changes     chan struct{}
	unsubscribe func()

	search textinput.Model
	form   NoteForm
	cursor int
	notice error
}

// NewBrowser подписывается на снимки ctrl. Close снимает подписку.
// ctx используется для создания и удаления заметок.
func NewBrowser(ctx context.Context, ctrl Controller, r *Renderer) Browser {
	changes := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func(app.View) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "(all notes)"
	search.SetValue(ctrl.View().SearchInput)
	search.Focus()

	return Browser{
		ctx:         ctx,
		ctrl:        ctrl,
		renderer:    r,
		changes:     changes,
		unsubscribe: unsubscribe,
		search:      search,
	}
}

// Close снимает подписку на контроллер.
func (b Browser) Close() {
	b.unsubscribe()
}

// Init запускает курсор и ожидание снимков.
func (b Browser) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, b.waitForChange())
}

func (b Browser) waitForChange() tea.Cmd {
	ctx, changes := b.ctx, b.changes
	return func() tea.Msg {
		select {
		case <-changes:
			return ViewChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update обрабатывает клавиши и результаты операций.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewChangedMsg:
		return b, b.waitForChange()
	case NoteCreatedMsg:
		if msg.Err != nil {
			b.form = b.form.Failed(msg.Err)
			return b, nil
		}
		b.form = NoteForm{}
		return b, nil
	case NoteDeletedMsg:
		b.notice = msg.Err
		return b, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return b, tea.Quit
		}
		if b.ctrl.View().ModalOpen {
			var cmd tea.Cmd
			b.form, cmd = b.form.Update(msg)
			return b, cmd
		}
		return b.handleKey(msg)
	}

	var cmd tea.Cmd
	if b.ctrl.View().ModalOpen {
		b.form, cmd = b.form.Update(msg)
	} else {
		b.search, cmd = b.search.Update(msg)
	}
	return b, cmd
}

func (b Browser) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.notice = nil
	v := b.ctrl.View()

	switch key.String() {
	case "esc":
		return b, tea.Quit
	case "ctrl+n":
		return b.openForm()
	case "ctrl+r":
		b.ctrl.Refresh(b.ctx)
		return b, nil
	case "left", "pgup":
		return b.selectPage(v, v.Page-1)
	case "right", "pgdown":
		return b.selectPage(v, v.Page+1)
	case "up":
		b.cursor = max(b.selected(v)-1, 0)
		return b, nil
	case "down":
		b.cursor = min(b.selected(v)+1, max(len(v.Notes)-1, 0))
		return b, nil
	case "ctrl+d":
		return b.deleteSelected(v)
	}

	var cmd tea.Cmd
	before := b.search.Value()
	b.search, cmd = b.search.Update(key)
	if text := b.search.Value(); text != before {
		(SearchBox{OnChange: b.ctrl.SetSearch}).Change(text)
		b.cursor = 0
	}
	return b, cmd
}

func (b Browser) selectPage(v app.View, page int) (tea.Model, tea.Cmd) {
	pager := Pagination{
		TotalPages: max(v.TotalPages, v.Page),
		Current:    v.Page,
		OnSelect: func(p int) {
			b.notice = b.ctrl.SetPage(p)
		},
	}
	if err := pager.Select(page); err != nil {
		b.notice = err
	}
	b.cursor = 0
	return b, nil
}

func (b Browser) deleteSelected(v app.View) (tea.Model, tea.Cmd) {
	if len(v.Notes) == 0 {
		return b, nil
	}

	var cmd tea.Cmd
	list := NoteList{
		Notes: v.Notes,
		OnDelete: func(id string) {
			ctx, ctrl := b.ctx, b.ctrl
			cmd = func() tea.Msg {
				_, err := ctrl.Delete(ctx, id)
				return NoteDeletedMsg{ID: id, Err: err}
			}
		},
	}
	if err := list.Delete(v.Notes[b.selected(v)].ID); err != nil {
		b.notice = err
	}
	return b, cmd
}

func (b Browser) openForm() (tea.Model, tea.Cmd) {
	ctx, ctrl := b.ctx, b.ctrl

	b.form = NewNoteForm(b.renderer.Style)
	b.form.OnSubmit = func(values entities.FormValues) tea.Cmd {
		return func() tea.Msg {
			note, err := ctrl.Create(ctx, values)
			return NoteCreatedMsg{Note: note, Err: err}
		}
	}
	b.form.OnCancel = func() tea.Cmd {
		(Modal{OnClose: ctrl.CloseModal}).Close()
		return nil
	}

	ctrl.OpenModal()
	return b, b.form.Init()
}

// selected возвращает индекс выделенной заметки в пределах страницы.
func (b Browser) selected(v app.View) int {
	return min(b.cursor, max(len(v.Notes)-1, 0))
}

// View рисует текущий снимок контроллера.
func (b Browser) View() string {
	v := b.ctrl.View()

	parts := Parts{SearchLine: b.search.View()}
	if len(v.Notes) > 0 && !v.ModalOpen {
		parts.Selected = v.Notes[b.selected(v)].ID
	}
	if v.ModalOpen {
		parts.ModalBody = b.form.View()
	}
	if b.notice != nil {
		parts.Notice = b.notice.Error()
	}

	screen, err := b.renderer.Screen(v, parts)
	if err != nil {
		return err.Error()
	}
	return screen
}
