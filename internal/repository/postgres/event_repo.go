package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventmanagement/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) FindAll(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT id, name, description, event_date, location, event_time
		FROM events
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{RegisteredUsers: domain.NewUserSet()}
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Location, &e.Time); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}
	if err := r.loadRegisteredUsers(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) FindByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT id, name, description, event_date, location, event_time
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{RegisteredUsers: domain.NewUserSet()}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Location, &e.Time)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadRegisteredUsers(ctx, []*domain.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// loadRegisteredUsers fills RegisteredUsers for all given events with one query.
func (r *eventRepository) loadRegisteredUsers(ctx context.Context, events []*domain.Event) error {
	byID := make(map[int64]*domain.Event, len(events))
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	query := `
		SELECT eu.event_id, u.id, u.email, u.name, u.created_at
		FROM event_user eu
		JOIN users u ON u.id = eu.user_id
		WHERE eu.event_id = ANY($1)
		ORDER BY eu.event_id, u.id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var eventID int64
		var u domain.User
		if err := rows.Scan(&eventID, &u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return err
		}
		if e, ok := byID[eventID]; ok {
			e.RegisteredUsers.Add(u)
		}
	}
	return rows.Err()
}

// Save writes the event row and links every registered user inside one transaction.
// Links are insert-only, so concurrent registrations on the same event do not
// overwrite each other.
func (r *eventRepository) Save(ctx context.Context, e *domain.Event) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	isNew := e.ID == 0
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			if isNew {
				e.ID = 0
			}
		}
	}()

	if isNew {
		query := `
			INSERT INTO events (name, description, event_date, location, event_time)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		if err = tx.QueryRowContext(ctx, query, e.Name, e.Description, e.Date, e.Location, e.Time).Scan(&e.ID); err != nil {
			return err
		}
	} else {
		query := `
			UPDATE events
			SET name = $1, description = $2, event_date = $3, location = $4, event_time = $5
			WHERE id = $6
		`
		var result sql.Result
		result, err = tx.ExecContext(ctx, query, e.Name, e.Description, e.Date, e.Location, e.Time, e.ID)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			err = domain.ErrNotFound
			return err
		}
	}

	link := `
		INSERT INTO event_user (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`
	for _, userID := range e.RegisteredUsers.IDs() {
		if _, err = tx.ExecContext(ctx, link, e.ID, userID); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

func (r *eventRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteByID removes the event and its registrations in one transaction.
func (r *eventRepository) DeleteByID(ctx context.Context, id int64) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM event_user WHERE event_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		err = domain.ErrNotFound
		return err
	}
	err = tx.Commit()
	return err
}
