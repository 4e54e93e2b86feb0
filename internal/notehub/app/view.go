package app

import "notehub/internal/notehub/domain/entities"

// ViewStatus что показывает область списка.
type ViewStatus int

// Состояния области списка.
const (
	ViewLoading ViewStatus = iota
	ViewError
	ViewEmpty
	ViewList
)

func (s ViewStatus) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	case ViewList:
		return "list"
	default:
		return "unknown"
	}
}

// View неизменяемый снимок состояния контроллера.
type View struct {
	Page            int
	TotalPages      int
	ShowPagination  bool
	SearchInput     string
	DebouncedSearch string
	ModalOpen       bool

	Status        ViewStatus
	Notes         []entities.Note
	IsPlaceholder bool
	IsFetching    bool
	// Err ошибка загрузки списка, заполняется только при ViewError.
	Err error
	// MutationError ошибка последнего создания или удаления.
	MutationError error
}
