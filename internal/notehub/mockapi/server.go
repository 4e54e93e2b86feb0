// Package mockapi поднимает совместимый с NoteHub API сервер в памяти
// для тестов и локальной разработки.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notehub/internal/notehub/config"
	"notehub/internal/notehub/domain/entities"
	"notehub/pkg/logger"
)

// Константы ответов и логирования.
const (
	LogHandlerListNotes  = "mock api: list notes"
	LogHandlerGetNote    = "mock api: get note"
	LogHandlerCreateNote = "mock api: create note"
	LogHandlerDeleteNote = "mock api: delete note"
	LogServerListening   = "mock api: listening"

	MsgInvalidPage        = "page must be a positive integer"
	MsgInvalidPerPage     = "perPage must be between 1 and 100"
	MsgInvalidTag         = "tag must be one of Todo, Work, Personal, Meeting, Shopping"
	MsgInvalidRequestBody = "invalid request body"
	MsgNoteNotFound       = "Note not found"
	MsgRouteNotFound      = "Route not found"

	maxPerPage = 100
)

// ListResponse тело ответа GET /notes.
type ListResponse struct {
	Notes      []entities.Note `json:"notes"`
	TotalPages int             `json:"totalPages"`
}

// Server mock API NoteHub.
type Server struct {
	app   *fiber.App
	store *Store
	log   *logger.Logger
}

// New создает сервер и регистрирует маршруты. Пустой token отключает проверку.
func New(cfg config.MockConfig, store *Store, log *logger.Logger) *Server {
	if store == nil {
		store = NewStore()
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.Named("mockapi")

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:     "notehub-mock",
			JSONEncoder: sonic.Marshal,
			JSONDecoder: sonic.Unmarshal,
		}),
		store: store,
		log:   log,
	}
	s.routes(cfg.Token)
	return s
}

func (s *Server) routes(token string) {
	s.app.Use(newLoggerMiddleware(s.log))
	s.app.Use(newRecoveryMiddleware(s.log))
	s.app.Use(newAuthMiddleware(token))

	s.app.Get("/notes", s.listNotes)
	s.app.Post("/notes", s.createNote)
	s.app.Get("/notes/:id", s.getNote)
	s.app.Delete("/notes/:id", s.deleteNote)

	s.app.Use(func(c fiber.Ctx) error {
		return writeError(c, fiber.StatusNotFound, MsgRouteNotFound)
	})
}

// App возвращает fiber-приложение, например для app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Store возвращает хранилище сервера.
func (s *Server) Store() *Store {
	return s.store
}

// Listen обслуживает запросы на addr до Shutdown.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve обслуживает запросы на ln до Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info(context.Background(), LogServerListening, zap.String("address", ln.Addr().String()))
	if err := s.app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер в рамках ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("shutdown mock api: %w", err)
	}
	return nil
}

func (s *Server) listNotes(ctx fiber.Ctx) error {
	s.log.Debug(requestContext(ctx), LogHandlerListNotes)

	page, err := strconv.Atoi(ctx.Query("page", "1"))
	if err != nil || page < 1 {
		return writeError(ctx, fiber.StatusBadRequest, MsgInvalidPage)
	}
	perPage, err := strconv.Atoi(ctx.Query("perPage", strconv.Itoa(entities.DefaultPerPage)))
	if err != nil || perPage < 1 || perPage > maxPerPage {
		return writeError(ctx, fiber.StatusBadRequest, MsgInvalidPerPage)
	}

	filter := ListFilter{Page: page, PerPage: perPage, Search: ctx.Query("search")}
	if raw := ctx.Query("tag"); raw != "" {
		tag, ok := entities.ParseTag(raw)
		if !ok {
			return writeError(ctx, fiber.StatusBadRequest, MsgInvalidTag)
		}
		filter.Tag = tag
	}

	notes, total := s.store.List(filter)
	if err := ctx.JSON(ListResponse{Notes: notes, TotalPages: entities.TotalPages(total, perPage)}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func (s *Server) getNote(ctx fiber.Ctx) error {
	s.log.Debug(requestContext(ctx), LogHandlerGetNote)

	note, err := s.store.Get(ctx.Params("id"))
	if err != nil {
		return s.handleStoreError(ctx, err)
	}
	if err := ctx.JSON(note); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func (s *Server) createNote(ctx fiber.Ctx) error {
	s.log.Debug(requestContext(ctx), LogHandlerCreateNote)

	var draft entities.FormValues
	if err := ctx.Bind().Body(&draft); err != nil {
		return writeError(ctx, fiber.StatusBadRequest, MsgInvalidRequestBody)
	}
	if tag, ok := entities.ParseTag(string(draft.Tag)); ok {
		draft.Tag = tag
	}
	if err := draft.Validate(); err != nil {
		msg := strings.TrimPrefix(err.Error(), entities.ErrValidation.Error()+": ")
		return writeError(ctx, fiber.StatusBadRequest, msg)
	}

	note := s.store.Create(draft)
	if err := ctx.Status(fiber.StatusCreated).JSON(note); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func (s *Server) deleteNote(ctx fiber.Ctx) error {
	s.log.Debug(requestContext(ctx), LogHandlerDeleteNote)

	note, err := s.store.Delete(ctx.Params("id"))
	if err != nil {
		return s.handleStoreError(ctx, err)
	}
	if err := ctx.JSON(note); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func (s *Server) handleStoreError(ctx fiber.Ctx, err error) error {
	if errors.Is(err, ErrNoteNotFound) {
		return writeError(ctx, fiber.StatusNotFound, MsgNoteNotFound)
	}
	s.log.Error(requestContext(ctx), LogStoreFailure, zap.Error(err))
	return writeError(ctx, fiber.StatusInternalServerError, MsgInternal)
}
