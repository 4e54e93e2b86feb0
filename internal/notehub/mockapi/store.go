package mockapi

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"notehub/internal/notehub/domain/entities"
)

// Ошибки хранилища.
var (
	ErrNoteNotFound = errors.New("note not found")
)

// ListFilter параметры выборки списка.
type ListFilter struct {
	Page    int
	PerPage int
	Search  string
	Tag     entities.Tag
}

// Store хранит заметки в памяти. Новые заметки идут первыми.
type Store struct {
	mu    sync.RWMutex
	notes []entities.Note
	now   func() time.Time
}

// NewStore создает пустое хранилище.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Seed добавляет n заметок-примеров.
func (s *Store) Seed(n int) {
	tags := entities.Tags()
	for i := range n {
		s.Create(entities.FormValues{
			Title:   fmt.Sprintf("Sample note %d", i+1),
			Content: fmt.Sprintf("Generated content for note %d.", i+1),
			Tag:     tags[i%len(tags)],
		})
	}
}

// List возвращает страницу заметок и общее число совпадений.
func (s *Store) List(f ListFilter) ([]entities.Note, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]entities.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if f.Tag != "" && n.Tag != f.Tag {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Title), search) &&
			!strings.Contains(strings.ToLower(n.Content), search) {
			continue
		}
		matched = append(matched, n)
	}

	pages := (len(matched) + f.PerPage - 1) / max(f.PerPage, 1)
	if f.Page < 1 || f.PerPage < 1 || f.Page > pages {
		return []entities.Note{}, len(matched)
	}
	start := (f.Page - 1) * f.PerPage
	end := min(start+f.PerPage, len(matched))
	return slices.Clone(matched[start:end]), len(matched)
}

// Get возвращает заметку по id.
func (s *Store) Get(id string) (entities.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return entities.Note{}, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	return s.notes[i], nil
}

// Create сохраняет черновик с новым id. Черновик не проверяется.
func (s *Store) Create(draft entities.FormValues) entities.Note {
	now := s.now().UTC()
	note := entities.Note{
		ID:        uuid.NewString(),
		Title:     draft.Title,
		Content:   draft.Content,
		Tag:       draft.Tag,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.notes = slices.Insert(s.notes, 0, note)
	s.mu.Unlock()

	return note
}

// Delete удаляет заметку и возвращает ее.
func (s *Store) Delete(id string) (entities.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return entities.Note{}, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	note := s.notes[i]
	s.notes = slices.Delete(s.notes, i, i+1)
	return note, nil
}

// Len возвращает число заметок.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// index вызывается под mu.
func (s *Store) index(id string) int {
	return slices.IndexFunc(s.notes, func(n entities.Note) bool {
		return n.ID == id
	})
}
