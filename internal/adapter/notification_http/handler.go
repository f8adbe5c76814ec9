package notification_http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"contexta/internal/apperror"
	"contexta/internal/domain"
	"contexta/internal/infra/logger"
	"contexta/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	listUsecase        usecase.ListNotificationsUsecase
	unreadCountUsecase usecase.GetUnreadCountUsecase
	markReadUsecase    usecase.MarkNotificationReadUsecase
	markAllReadUsecase usecase.MarkAllNotificationsReadUsecase
	createUsecase      usecase.CreateNotificationUsecase
	logger             *slog.Logger
}

func NewHandler(
	listUsecase usecase.ListNotificationsUsecase,
	unreadCountUsecase usecase.GetUnreadCountUsecase,
	markReadUsecase usecase.MarkNotificationReadUsecase,
	markAllReadUsecase usecase.MarkAllNotificationsReadUsecase,
	createUsecase usecase.CreateNotificationUsecase,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		listUsecase:        listUsecase,
		unreadCountUsecase: unreadCountUsecase,
		markReadUsecase:    markReadUsecase,
		markAllReadUsecase: markAllReadUsecase,
		createUsecase:      createUsecase,
		logger:             logger,
	}
}

type notificationResponse struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Link      string  `json:"link,omitempty"`
	Read      bool    `json:"read"`
	ReadAt    *string `json:"read_at"`
	CreatedAt string  `json:"created_at"`
}

type listResponse struct {
	Data        []notificationResponse `json:"data"`
	HasMore     bool                   `json:"has_more"`
	NextCursor  *string                `json:"next_cursor"`
	UnreadCount int                    `json:"unread_count"`
}

type createRequest struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Link   string `json:"link"`
}

func toResponse(n *domain.Notification) notificationResponse {
	resp := notificationResponse{
		ID:        n.ID.String(),
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		Read:      n.IsRead(),
		CreatedAt: domain.FormatTimestamp(n.CreatedAt),
	}
	if n.ReadAt != nil {
		readAt := domain.FormatTimestamp(*n.ReadAt)
		resp.ReadAt = &readAt
	}
	return resp
}

// ListNotifications returns one page of the caller's feed.
// (GET /v1/notifications)
func (h *Handler) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return apperror.NewUnauthorizedError("adapter", "Handler", "ListNotifications", nil)
	}

	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperror.NewInvalidInputError("adapter", "Handler", "ListNotifications", "limit must be an integer", map[string]any{"limit": raw})
		}
		limit = parsed
	}

	page, err := h.listUsecase.Execute(ctx, usecase.ListNotificationsInput{
		UserID: userID,
		Cursor: c.QueryParam("cursor"),
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	resp := listResponse{
		Data:        make([]notificationResponse, 0, len(page.Items)),
		HasMore:     page.HasMore,
		UnreadCount: page.UnreadCount,
	}
	for _, n := range page.Items {
		resp.Data = append(resp.Data, toResponse(n))
	}
	if page.NextCursor != "" {
		next := page.NextCursor
		resp.NextCursor = &next
	}

	return c.JSON(http.StatusOK, resp)
}

// GetUnreadCount (GET /v1/notifications/unread-count)
func (h *Handler) GetUnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return apperror.NewUnauthorizedError("adapter", "Handler", "GetUnreadCount", nil)
	}

	count, err := h.unreadCountUsecase.Execute(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"unread_count": count})
}

// MarkRead (POST /v1/notifications/:id/read)
func (h *Handler) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return apperror.NewUnauthorizedError("adapter", "Handler", "MarkRead", nil)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.NewInvalidInputError("adapter", "Handler", "MarkRead", "invalid notification id", nil)
	}

	if err := h.markReadUsecase.Execute(ctx, userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead (POST /v1/notifications/read-all)
func (h *Handler) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return apperror.NewUnauthorizedError("adapter", "Handler", "MarkAllRead", nil)
	}

	updated, err := h.markAllReadUsecase.Execute(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

// CreateNotification is called by other Contexta services.
// (POST /internal/notifications)
func (h *Handler) CreateNotification(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewInvalidInputError("adapter", "Handler", "CreateNotification", "invalid request body", nil)
	}

	n, err := h.createUsecase.Execute(c.Request().Context(), usecase.CreateNotificationInput{
		UserID: req.UserID,
		Kind:   req.Kind,
		Title:  req.Title,
		Body:   req.Body,
		Link:   req.Link,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toResponse(n))
}

// errorResponse maps an error returned by a handler or middleware to the
// status and body sent to the client.
func errorResponse(err error) (int, apperror.HTTPContextResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, apperror.HTTPContextResponse{Error: msg, Code: httpErrorCode(he.Code)}
	}

	appErr := apperror.AsAppContextError(err)
	return appErr.HTTPStatusCode(), appErr.ToHTTPResponse()
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperror.CodeValidation
	case http.StatusUnauthorized:
		return apperror.CodeUnauthorized
	case http.StatusNotFound:
		return apperror.CodeNotFound
	case http.StatusTooManyRequests:
		return apperror.CodeRateLimit
	default:
		return apperror.CodeUnknown
	}
}

// ErrorHandler renders every error as {"error","code"} and logs server-side
// failures with their full context.
func ErrorHandler(base *slog.Logger) echo.HTTPErrorHandler {
	if base == nil {
		base = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request().Context(), base).Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"error", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			base.Error("failed to write error response", "error", writeErr)
		}
	}
}
