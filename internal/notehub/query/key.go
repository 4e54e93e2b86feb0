// Package query хранит результаты запросов списка заметок по ключу (страница, поиск)
// и показывает устаревшие данные, пока идет повторная загрузка.
package query

import (
	"fmt"
	"strconv"
)

// Collection имя коллекции в ключах заметок.
const Collection = "notes"

// Key идентифицирует один набор результатов. Ключи равны, если равны все три поля.
type Key struct {
	Collection string
	Page       int
	Search     string
}

// NotesKey возвращает ключ страницы списка заметок.
func NotesKey(page int, search string) Key {
	return Key{Collection: Collection, Page: page, Search: search}
}

func (k Key) String() string {
	return fmt.Sprintf("[%s %s %s]", k.Collection, strconv.Itoa(k.Page), strconv.Quote(k.Search))
}

// Status состояние результата для ключа.
type Status int

// Состояния результата.
const (
	// StatusLoading - данных для ключа еще нет.
	StatusLoading Status = iota
	// StatusError - загрузка завершилась ошибкой, пригодных данных нет.
	StatusError
	// StatusSuccess - данные есть, возможно устаревшие или временные.
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}
