// Package entities содержит доменные сущности клиента NoteHub.
package entities

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Tag категория заметки.
type Tag string

// Допустимые категории.
const (
	TagTodo     Tag = "Todo"
	TagWork     Tag = "Work"
	TagPersonal Tag = "Personal"
	TagMeeting  Tag = "Meeting"
	TagShopping Tag = "Shopping"
)

// Tags возвращает все категории в порядке отображения.
func Tags() []Tag {
	return []Tag{TagTodo, TagWork, TagPersonal, TagMeeting, TagShopping}
}

// ParseTag сопоставляет строку с категорией без учета регистра.
func ParseTag(s string) (Tag, bool) {
	for _, tag := range Tags() {
		if strings.EqualFold(string(tag), strings.TrimSpace(s)) {
			return tag, true
		}
	}
	return "", false
}

// Note представляет заметку, принадлежащую серверу.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tag       Tag       `json:"tag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FormValues черновик заметки без идентификатора.
type FormValues struct {
	Title   string `json:"title" validate:"required,min=3,max=50"`
	Content string `json:"content" validate:"max=500"`
	Tag     Tag    `json:"tag" validate:"required,oneof=Todo Work Personal Meeting Shopping"`
}

// ErrValidation возвращается для черновика, не прошедшего проверку.
var ErrValidation = errors.New("invalid note draft")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func draftValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate проверяет черновик. Ошибка оборачивает ErrValidation и перечисляет поля.
func (f FormValues) Validate() error {
	err := draftValidator().Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// DefaultPerPage размер страницы NoteHub.
const DefaultPerPage = 12

// FetchNotesResult одна страница результатов поиска.
// Сервер сообщает либо TotalPages, либо Total.
type FetchNotesResult struct {
	Notes      []Note `json:"notes"`
	TotalPages int    `json:"totalPages,omitempty"`
	Total      int    `json:"total,omitempty"`
	PerPage    int    `json:"perPage,omitempty"`
}

// PageCount возвращает число страниц, не меньше 1.
// perPage используется, если сервер не прислал свой; 0 означает DefaultPerPage.
func (r *FetchNotesResult) PageCount(perPage int) int {
	if r == nil {
		return 1
	}
	if r.TotalPages > 0 {
		return r.TotalPages
	}
	if r.PerPage > 0 {
		perPage = r.PerPage
	}
	return TotalPages(r.Total, perPage)
}

// TotalPages вычисляет max(1, ceil(total/perPage)).
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
