package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"notehub/internal/notehub/domain/entities"
	"notehub/internal/notehub/ports/api"
	"notehub/internal/notehub/ui"
)

// ErrCreateNote сообщение об ошибке создания.
const ErrCreateNote = "create note"

var (
	createTitle   string
	createContent string
	createTag     string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Long: `Create sends a new note to NoteHub.
Without --title the fields are asked for: in a form on a terminal,
line by line when input is piped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := newDeps(ctx, cfg)
		if err != nil {
			return err
		}
		defer d.close(ctx, cfg)

		out, st := stdout()
		if cmd.Flags().Changed("title") {
			values := entities.FormValues{Title: createTitle, Content: createContent, Tag: ui.ParseTagInput(createTag)}
			if err := values.Validate(); err != nil {
				return err
			}
			note, err := createNote(ctx, d.notes, values)
			if err != nil {
				return err
			}
			return printCreated(out, st, note)
		}

		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			note, err := runCreateForm(ctx, d.notes, st)
			if err != nil || note == nil {
				return err
			}
			return printCreated(out, st, note)
		}

		form := ui.PromptForm{
			In:    bufio.NewReader(os.Stdin),
			Out:   out,
			Style: st,
			OnSubmit: func(values entities.FormValues) error {
				note, err := createNote(ctx, d.notes, values)
				if err != nil {
					return err
				}
				return printCreated(out, st, note)
			},
		}
		if err := form.Run(); err != nil && !errors.Is(err, ui.ErrFormCancelled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createTitle, "title", "", "Note title (3-50 characters)")
	createCmd.Flags().StringVar(&createContent, "content", "", "Note content (up to 500 characters)")
	createCmd.Flags().StringVar(&createTag, "tag", string(entities.TagTodo), "One of Todo, Work, Personal, Meeting, Shopping")
}

func createNote(ctx context.Context, client api.NotesClient, values entities.FormValues) (*entities.Note, error) {
	note, err := client.CreateNote(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrCreateNote, err)
	}
	return note, nil
}

func printCreated(out io.Writer, st ui.Style, note *entities.Note) error {
	_, err := fmt.Fprintf(out, "Created %s\n", st.Bold(note.ID))
	return err
}

// runCreateForm показывает форму на терминале. Возвращает nil, nil, если форма закрыта без отправки.
func runCreateForm(ctx context.Context, client api.NotesClient, st ui.Style) (*entities.Note, error) {
	program := tea.NewProgram(newCreateModel(ctx, client, st), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return nil, err
	}
	m := final.(createModel)
	if m.note == nil && m.err != nil {
		return nil, m.err
	}
	return m.note, nil
}

// createModel форма в рамке, которая завершает программу после создания заметки.
type createModel struct {
	form ui.NoteForm
	note *entities.Note
	err  error
}

func newCreateModel(ctx context.Context, client api.NotesClient, st ui.Style) createModel {
	form := ui.NewNoteForm(st)
	form.OnSubmit = func(values entities.FormValues) tea.Cmd {
		return func() tea.Msg {
			note, err := createNote(ctx, client, values)
			return ui.NoteCreatedMsg{Note: note, Err: err}
		}
	}
	form.OnCancel = func() tea.Cmd {
		return tea.Quit
	}
	return createModel{form: form}
}

func (m createModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m createModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.NoteCreatedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.form = m.form.Failed(msg.Err)
			return m, nil
		}
		m.note = msg.Note
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m createModel) View() string {
	var b strings.Builder
	modal := ui.Modal{Title: ui.TextModalTitle}
	err := modal.Render(&b, m.form.Style, func(w io.Writer) error {
		_, err := io.WriteString(w, m.form.View())
		return err
	})
	if err != nil {
		return err.Error()
	}
	return b.String()
}
