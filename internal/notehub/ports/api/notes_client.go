// Package api определяет контракт клиента NoteHub и таксономию его ошибок.
package api

import (
	"context"

	"notehub/internal/notehub/domain/entities"
)

// NotesClient определяет операции REST API заметок.
type NotesClient interface {
	// ListNotes возвращает страницу заметок, отфильтрованных по search.
	ListNotes(ctx context.Context, page int, search string) (*entities.FetchNotesResult, error)

	// GetNote возвращает заметку по ID.
	GetNote(ctx context.Context, id string) (*entities.Note, error)

	// CreateNote создает заметку и возвращает ее с назначенным сервером ID.
	CreateNote(ctx context.Context, draft entities.FormValues) (*entities.Note, error)

	// DeleteNote удаляет заметку и возвращает удаленную запись.
	DeleteNote(ctx context.Context, id string) (*entities.Note, error)
}
