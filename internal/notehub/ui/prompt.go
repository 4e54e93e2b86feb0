package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"notehub/internal/notehub/domain/entities"
)

// CancelInput отменяет заполнение построчной формы на любом шаге.
const CancelInput = "/cancel"

// ErrFormCancelled возвращается, если форма закрыта без отправки.
var ErrFormCancelled = errors.New("form cancelled")

// PromptForm запрашивает поля новой заметки построчно, когда ввод не терминал.
type PromptForm struct {
	In       *bufio.Reader
	Out      io.Writer
	Style    Style
	OnSubmit func(entities.FormValues) error
	OnCancel func()
}

// Run заполняет форму. Неверный черновик или ошибка отправки выводятся, поля запрашиваются заново.
// CancelInput возвращает ErrFormCancelled. Конец ввода после неудачной отправки
// возвращает ошибку этой отправки, иначе ErrFormCancelled.
func (f PromptForm) Run() error {
	var submitErr error
	for {
		values, err := f.prompt()
		if errors.Is(err, io.EOF) || errors.Is(err, ErrFormCancelled) {
			if f.OnCancel != nil {
				f.OnCancel()
			}
			if errors.Is(err, io.EOF) && submitErr != nil {
				return submitErr
			}
			return ErrFormCancelled
		}
		if err != nil {
			return err
		}

		if err := values.Validate(); err != nil {
			fmt.Fprintln(f.Out, f.Style.Error(err.Error()))
			continue
		}

		if f.OnSubmit == nil {
			return nil
		}
		if submitErr = f.OnSubmit(values); submitErr != nil {
			fmt.Fprintln(f.Out, f.Style.Error(submitErr.Error()))
			continue
		}
		return nil
	}
}

func (f PromptForm) prompt() (entities.FormValues, error) {
	var values entities.FormValues

	title, err := f.ask("Title")
	if err != nil {
		return values, err
	}
	content, err := f.ask("Content")
	if err != nil {
		return values, err
	}
	tagInput, err := f.ask("Tag (" + tagChoices() + ")")
	if err != nil {
		return values, err
	}

	values.Title = title
	values.Content = content
	values.Tag = ParseTagInput(tagInput)
	return values, nil
}

func (f PromptForm) ask(label string) (string, error) {
	fmt.Fprintf(f.Out, "%s: ", label)

	line, err := f.In.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}

	line = strings.TrimSpace(line)
	if line == CancelInput {
		return "", ErrFormCancelled
	}
	return line, nil
}

func tagChoices() string {
	tags := make([]string, 0, len(entities.Tags()))
	for _, t := range entities.Tags() {
		tags = append(tags, string(t))
	}
	return strings.Join(tags, ", ")
}

// ParseTagInput приводит регистр известных тегов; неизвестный тег отклонит проверка черновика.
func ParseTagInput(s string) entities.Tag {
	if tag, ok := entities.ParseTag(s); ok {
		return tag
	}
	return entities.Tag(s)
}
