package contact

import (
	"context"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	apperrors "github.com/sebuszqo/ExpenseTracker/internal/errors"
)

type Repository interface {
	Create(ctx context.Context, msg *Message) error
	List(ctx context.Context) ([]Message, error)
	Get(ctx context.Context, id int64) (*Message, error)
	MarkRead(ctx context.Context, id int64) error
}

type repository struct {
	db *database.DBService
}

func NewRepository(db *database.DBService) Repository {
	return &repository{db: db}
}

const messageColumns = "id, name, email, message, date, is_read"

func scanMessage(row database.Scanner) (Message, error) {
	var (
		msg  Message
		date string
	)
	if err := row.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &date, &msg.Read); err != nil {
		return Message{}, err
	}
	t, err := database.ParseTimestamp(date)
	if err != nil {
		return Message{}, err
	}
	msg.Date = t
	return msg, nil
}

func (r *repository) Create(ctx context.Context, msg *Message) error {
	id, err := r.db.Execute(ctx,
		"INSERT INTO contact_messages (name, email, message, date) VALUES (?, ?, ?, ?) RETURNING id",
		msg.Name, msg.Email, msg.Message, database.FormatTimestamp(msg.Date))
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

func (r *repository) List(ctx context.Context) ([]Message, error) {
	return database.FetchAll(ctx, r.db, scanMessage,
		"SELECT "+messageColumns+" FROM contact_messages ORDER BY date DESC, id DESC")
}

func (r *repository) Get(ctx context.Context, id int64) (*Message, error) {
	msg, err := database.FetchOne(ctx, r.db, scanMessage,
		"SELECT "+messageColumns+" FROM contact_messages WHERE id = ?", id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (r *repository) MarkRead(ctx context.Context, id int64) error {
	affected, err := r.db.Exec(ctx, "UPDATE contact_messages SET is_read = ? WHERE id = ?", true, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
