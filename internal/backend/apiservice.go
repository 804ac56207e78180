package backend

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/picundo/internal/backend/storage"
	"github.com/jo-hoe/picundo/internal/core"
)

const ProbePath = "/probe"

type APIService struct {
	coreService *core.CoreService
}

// ExecuteRequest is the body of POST /api/commands
type ExecuteRequest struct {
	Name   string         `json:"name" validate:"required"`
	Params map[string]any `json:"params"`
}

type CommandsResponse struct {
	Commands []string `json:"commands"`
}

// NewAPIService creates the JSON API over coreService.
func NewAPIService(coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET(ProbePath, s.probeHandler)
	e.GET("/metrics", echo.WrapHandler(s.coreService.Metrics().Handler()))

	api := e.Group("/api")
	api.GET("/commands", s.listCommandsHandler)
	api.POST("/commands", s.executeCommandHandler)
	api.POST("/undo", s.undoHandler)
	api.POST("/redo", s.redoHandler)
	api.GET("/history", s.historyHandler)
}

func (s *APIService) probeHandler(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "API Service is running")
}

func (s *APIService) listCommandsHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, CommandsResponse{Commands: s.coreService.RegisteredCommands()})
}

func (s *APIService) executeCommandHandler(ctx echo.Context) error {
	var request ExecuteRequest
	if err := ctx.Bind(&request); err != nil {
		slog.Warn("executeCommandHandler: failed to bind request", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&request); err != nil {
		slog.Warn("executeCommandHandler: invalid request", "status", http.StatusBadRequest, "error", err)
		return err
	}

	err := s.coreService.ExecuteCommand(ctx.Request().Context(), request.Name, request.Params)
	if err != nil {
		status := statusForError(err)
		slog.Error("executeCommandHandler: command failed",
			"status", status, "command_name", request.Name, "error", err)
		return echo.NewHTTPError(status, err.Error())
	}
	return ctx.JSON(http.StatusOK, s.coreService.History())
}

func (s *APIService) undoHandler(ctx echo.Context) error {
	if err := s.coreService.Undo(ctx.Request().Context()); err != nil {
		slog.Error("undoHandler: undo failed", "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, s.coreService.History())
}

func (s *APIService) redoHandler(ctx echo.Context) error {
	if err := s.coreService.Redo(ctx.Request().Context()); err != nil {
		slog.Error("redoHandler: redo failed", "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, s.coreService.History())
}

func (s *APIService) historyHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.coreService.History())
}

func statusForError(err error) int {
	if errors.Is(err, core.ErrUnknownCommand) ||
		errors.Is(err, core.ErrInvalidParams) ||
		errors.Is(err, storage.ErrInvalidPath) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
