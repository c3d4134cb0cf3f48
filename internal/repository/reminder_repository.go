package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/meetreminder/meetreminder/internal/database"
	"github.com/meetreminder/meetreminder/internal/model"
)

// ReminderRepository handles reminder row persistence.
// Rows are append-only and addressed by their offset in id order.
type ReminderRepository struct {
	db         database.SQL
	sentFormat string
	loc        *time.Location
}

// NewReminderRepository creates a new ReminderRepository. Sent markers are
// written with sentFormat in loc.
func NewReminderRepository(db database.SQL, sentFormat string, loc *time.Location) *ReminderRepository {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderRepository{db: db, sentFormat: sentFormat, loc: loc}
}

func (r *ReminderRepository) q(query string) string {
	return database.Rebind(r.db.Dialect(), query)
}

// Append stores a new reminder row and sets its ID
func (r *ReminderRepository) Append(ctx context.Context, reminder *model.Reminder) error {
	if reminder == nil || strings.TrimSpace(reminder.RecipientEmail) == "" {
		return ErrInvalidInput
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}

	query := r.q(`
		INSERT INTO reminders (recipient_email, first_name, scheduled_time, meet_url, sent_status, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowContext(ctx, query,
		reminder.RecipientEmail,
		reminder.FirstName,
		reminder.ScheduledTime,
		reminder.MeetURL,
		reminder.Status.Format(r.sentFormat),
		reminder.Title,
		reminder.CreatedAt.UTC().UnixMilli(),
	).Scan(&reminder.ID)
	if err != nil {
		return fmt.Errorf("failed to append reminder: %w", err)
	}
	return nil
}

// List returns every reminder row in offset order
func (r *ReminderRepository) List(ctx context.Context) ([]model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT id, recipient_email, first_name, scheduled_time, meet_url, sent_status, title, created_at
		FROM reminders
		ORDER BY id ASC
	`))
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var (
			rem       model.Reminder
			status    string
			createdAt int64
		)
		if err := rows.Scan(
			&rem.ID,
			&rem.RecipientEmail,
			&rem.FirstName,
			&rem.ScheduledTime,
			&rem.MeetURL,
			&status,
			&rem.Title,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		rem.Status = model.ParseStatus(status, r.sentFormat, r.loc)
		rem.CreatedAt = time.UnixMilli(createdAt).In(r.loc)
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}
	return reminders, nil
}

// WriteStatusColumn writes statuses[i] to the i-th row in offset order.
// Values are applied in one transaction; pending values and rows that are
// no longer pending are left untouched, so a status never reverts.
// It returns the number of rows changed.
func (r *ReminderRepository) WriteStatusColumn(ctx context.Context, statuses []model.Status) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin status write: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, r.q(`SELECT id FROM reminders ORDER BY id ASC LIMIT ?`), len(statuses))
	if err != nil {
		return 0, fmt.Errorf("failed to address reminder rows: %w", err)
	}
	ids := make([]int64, 0, len(statuses))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan reminder id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("failed to iterate reminder ids: %w", err)
	}
	rows.Close()

	if len(ids) < len(statuses) {
		return 0, fmt.Errorf("%w: %d statuses for %d rows", ErrInvalidInput, len(statuses), len(ids))
	}

	stmt, err := tx.PrepareContext(ctx, r.q(`UPDATE reminders SET sent_status = ? WHERE id = ? AND sent_status = ''`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare status write: %w", err)
	}
	defer stmt.Close()

	var changed int64
	for i, status := range statuses {
		if status.IsPending() {
			continue
		}
		res, err := stmt.ExecContext(ctx, status.Format(r.sentFormat), ids[i])
		if err != nil {
			return 0, fmt.Errorf("failed to write status for reminder %d: %w", ids[i], err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		changed += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit status write: %w", err)
	}
	return changed, nil
}

// GetByID retrieves a single reminder
func (r *ReminderRepository) GetByID(ctx context.Context, id int64) (*model.Reminder, error) {
	var (
		rem       model.Reminder
		status    string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, r.q(`
		SELECT id, recipient_email, first_name, scheduled_time, meet_url, sent_status, title, created_at
		FROM reminders
		WHERE id = ?
	`), id).Scan(
		&rem.ID,
		&rem.RecipientEmail,
		&rem.FirstName,
		&rem.ScheduledTime,
		&rem.MeetURL,
		&status,
		&rem.Title,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	rem.Status = model.ParseStatus(status, r.sentFormat, r.loc)
	rem.CreatedAt = time.UnixMilli(createdAt).In(r.loc)
	return &rem, nil
}
