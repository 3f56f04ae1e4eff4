// Package contact stores messages sent through the public contact form and
// forwards them to a Notifier.
package contact

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/badoux/checkmail"

	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

const (
	maxNameLength    = 100
	maxMessageLength = 2000
)

var (
	ErrMessageNotFound = apperrors.NewNotFoundError("contact message")
	ErrEmptyName       = apperrors.NewValidationError("name must not be empty")
	ErrNameTooLong     = apperrors.NewValidationError(fmt.Sprintf("name must be at most %d characters", maxNameLength))
	ErrInvalidEmail    = apperrors.NewValidationError("email address is not valid")
	ErrEmptyMessage    = apperrors.NewValidationError("message must not be empty")
	ErrMessageTooLong  = apperrors.NewValidationError(fmt.Sprintf("message must be at most %d characters", maxMessageLength))
)

type Message struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
}

func (m *Message) Validate() error {
	var errs apperrors.ValidationErrors
	switch n := utf8.RuneCountInString(m.Name); {
	case n == 0:
		errs.Add(ErrEmptyName)
	case n > maxNameLength:
		errs.Add(ErrNameTooLong)
	}
	if err := checkmail.ValidateFormat(m.Email); err != nil {
		errs.Add(ErrInvalidEmail)
	}
	switch n := utf8.RuneCountInString(m.Message); {
	case n == 0:
		errs.Add(ErrEmptyMessage)
	case n > maxMessageLength:
		errs.Add(ErrMessageTooLong)
	}
	return errs.ErrOrNil()
}

// Notifier is told about every accepted message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type Service interface {
	Submit(ctx context.Context, name, email, message string) (*Message, error)
	List(ctx context.Context) ([]Message, error)
	MarkRead(ctx context.Context, id int64) (*Message, error)
}

type service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
	logger   *applog.Logger
}

func NewService(repo Repository, notifier Notifier, logger *applog.Logger) Service {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		logger:   logger.WithComponent(applog.ComponentContact),
	}
}

// Submit stores the message and then notifies. A failed notification is
// logged and does not affect the result.
func (s *service) Submit(ctx context.Context, name, email, message string) (*Message, error) {
	msg := &Message{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
		Date:    s.now().UTC().Truncate(time.Second),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Contact message received", "message_id", msg.ID)

	if err := s.notifier.Notify(ctx, *msg); err != nil {
		s.logger.WarnContext(ctx, "Contact notification failed", "message_id", msg.ID, applog.FieldError, err)
	}
	return msg, nil
}

func (s *service) List(ctx context.Context) ([]Message, error) {
	return s.repo.List(ctx)
}

func (s *service) MarkRead(ctx context.Context, id int64) (*Message, error) {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
