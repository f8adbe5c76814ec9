package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"contexta/internal/apperror"
	"contexta/internal/domain"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

const (
	maxTitleRunes = 200
	maxBodyRunes  = 2000
	maxLinkLen    = 2048
)

type CreateNotificationInput struct {
	UserID string
	Kind   string
	Title  string
	Body   string
	Link   string
}

type CreateNotificationUsecase interface {
	Execute(ctx context.Context, input CreateNotificationInput) (*domain.Notification, error)
}

type createNotificationUsecase struct {
	repo      domain.NotificationRepository
	outbox    domain.OutboxRepository
	txManager domain.TransactionManager
	cache     domain.UnreadCountCache
	policy    *bluemonday.Policy
	now       func() time.Time
	logger    *slog.Logger
}

func NewCreateNotificationUsecase(
	repo domain.NotificationRepository,
	outbox domain.OutboxRepository,
	txManager domain.TransactionManager,
	cache domain.UnreadCountCache,
	logger *slog.Logger,
) CreateNotificationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &createNotificationUsecase{
		repo:      repo,
		outbox:    outbox,
		txManager: txManager,
		cache:     cache,
		policy:    bluemonday.StrictPolicy(),
		now:       time.Now,
		logger:    logger,
	}
}

type notificationCreatedPayload struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	Link           string `json:"link,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func (u *createNotificationUsecase) Execute(ctx context.Context, input CreateNotificationInput) (*domain.Notification, error) {
	n, err := u.build(input)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(notificationCreatedPayload{
		NotificationID: n.ID.String(),
		UserID:         n.UserID,
		Kind:           string(n.Kind),
		Title:          n.Title,
		Link:           n.Link,
		CreatedAt:      domain.FormatTimestamp(n.CreatedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}

	event := &domain.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: n.ID,
		EventType:   domain.EventTypeNotificationCreated,
		Payload:     payload,
		Status:      domain.OutboxStatusPending,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.CreatedAt,
	}

	err = u.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.repo.Create(ctx, n); err != nil {
			return err
		}
		if err := u.outbox.Enqueue(ctx, event); err != nil {
			return fmt.Errorf("failed to enqueue notification event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		u.cache.Invalidate(n.UserID)
	}

	u.logger.InfoContext(ctx, "notification created",
		"notification_id", n.ID.String(),
		"user_id", n.UserID,
		"kind", string(n.Kind))

	return n, nil
}

// build validates input and produces the row to insert. created_at is cut to
// milliseconds so that it compares exactly against cursors.
func (u *createNotificationUsecase) build(input CreateNotificationInput) (*domain.Notification, error) {
	invalid := func(msg string, field string) error {
		return apperror.NewInvalidInputError("usecase", "CreateNotificationUsecase", "Execute", msg, map[string]any{"field": field})
	}

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, invalid("user_id is required", "user_id")
	}

	kind, err := domain.ParseNotificationKind(input.Kind)
	if err != nil {
		return nil, invalid(err.Error(), "kind")
	}

	title := u.cleanText(input.Title)
	if title == "" {
		return nil, invalid("title is required", "title")
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return nil, invalid(fmt.Sprintf("title must be at most %d characters", maxTitleRunes), "title")
	}

	body := u.cleanText(input.Body)
	if utf8.RuneCountInString(body) > maxBodyRunes {
		return nil, invalid(fmt.Sprintf("body must be at most %d characters", maxBodyRunes), "body")
	}

	link := strings.TrimSpace(input.Link)
	if link != "" && (!strings.HasPrefix(link, "/") || strings.HasPrefix(link, "//") || len(link) > maxLinkLen) {
		return nil, invalid("link must be an in-app path", "link")
	}

	return &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Link:      link,
		CreatedAt: u.now().UTC().Truncate(time.Millisecond),
	}, nil
}

var spaceCollapseRe = regexp.MustCompile(`[ \t]+`)

// cleanText strips markup, decodes entities and normalizes to NFC.
func (u *createNotificationUsecase) cleanText(s string) string {
	if s == "" {
		return ""
	}
	text := u.policy.Sanitize(s)
	text = html.UnescapeString(text)
	text = norm.NFC.String(text)
	text = spaceCollapseRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
