package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vijayKota2776/Codeplay/internal/auth"
	"github.com/vijayKota2776/Codeplay/internal/lab"
	"github.com/vijayKota2776/Codeplay/internal/runner"
)

// LabService is the slice of the lab lifecycle the gateway needs.
type LabService interface {
	Create(ctx context.Context, userID, courseID, topicID string) (lab.Created, error)
	Files(labID string) (map[string]string, error)
	WriteFile(labID, path, content string) error
	Teardown(ctx context.Context, labID string) error
}

// RunService is the slice of the code-run pipeline the gateway needs.
type RunService interface {
	Submit(ctx context.Context, userID string, req runner.Request) (runner.Job, error)
	Get(ctx context.Context, id string) (runner.Job, error)
}

// Handler serves the lab and code-run HTTP surface. A nil labs service
// means no container engine was reachable at startup: lab creation answers
// 503 while every other endpoint keeps working.
type Handler struct {
	labs LabService
	runs RunService
}

func NewHandler(labs LabService, runs RunService) *Handler {
	return &Handler{labs: labs, runs: runs}
}

type CreateLabRequest struct {
	CourseID string `json:"courseId"`
	TopicID  string `json:"topicId"`
}

type WriteFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type RunRequest struct {
	Code       string `json:"code"`
	Stdin      string `json:"stdin,omitempty"`
	LanguageID int    `json:"languageId,omitempty"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateLab(c echo.Context) error {
	var req CreateLabRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if req.CourseID == "" || req.TopicID == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing courseId or topicId")
	}

	if h.labs == nil {
		return errorJSON(c, http.StatusServiceUnavailable, lab.ErrRuntimeUnavailable.Error())
	}

	created, err := h.labs.Create(c.Request().Context(), auth.UserID(c), req.CourseID, req.TopicID)
	if err != nil {
		return labError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetFiles(c echo.Context) error {
	if h.labs == nil {
		return errorJSON(c, http.StatusNotFound, lab.ErrNotFound.Error())
	}

	files, err := h.labs.Files(c.Param("labId"))
	if err != nil {
		return labError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"files": files})
}

// UpsertFile handles the create-or-update write variant.
func (h *Handler) UpsertFile(c echo.Context) error {
	return h.writeFile(c)
}

// PutFile handles the strict write variant. Content defaults to the empty
// string when omitted.
func (h *Handler) PutFile(c echo.Context) error {
	return h.writeFile(c)
}

func (h *Handler) writeFile(c echo.Context) error {
	if h.labs == nil {
		return errorJSON(c, http.StatusNotFound, lab.ErrNotFound.Error())
	}

	var req WriteFileRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid JSON payload")
	}

	if err := h.labs.WriteFile(c.Param("labId"), req.Path, req.Content); err != nil {
		return labError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeleteLab(c echo.Context) error {
	if h.labs == nil {
		return errorJSON(c, http.StatusNotFound, lab.ErrNotFound.Error())
	}

	if err := h.labs.Teardown(c.Request().Context(), c.Param("labId")); err != nil {
		return labError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) RunCode(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if req.Code == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing code")
	}

	job, err := h.runs.Submit(c.Request().Context(), auth.UserID(c), runner.Request{
		Code:       req.Code,
		Stdin:      req.Stdin,
		LanguageID: req.LanguageID,
	})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to submit run")
	}

	return c.JSON(http.StatusAccepted, job)
}

func (h *Handler) GetRun(c echo.Context) error {
	job, err := h.runs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, runner.ErrJobNotFound) {
			return errorJSON(c, http.StatusNotFound, "run not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "failed to load run")
	}
	return c.JSON(http.StatusOK, job)
}

// labError maps lab package failures onto the HTTP surface. Everything is
// converted to a JSON error body; nothing propagates as a crash.
func labError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lab.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "Lab not found")
	case errors.Is(err, lab.ErrEmptyPath):
		return errorJSON(c, http.StatusBadRequest, "Missing path")
	case errors.Is(err, lab.ErrRuntimeUnavailable):
		return errorJSON(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, lab.ErrPortsExhausted):
		return errorJSON(c, http.StatusServiceUnavailable, err.Error())
	default:
		var pErr *lab.ProvisionError
		if errors.As(err, &pErr) {
			return errorJSON(c, http.StatusInternalServerError, pErr.Error())
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to start lab")
	}
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
