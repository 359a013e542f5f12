package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

// newsletterSelectList is the column list for SELECT/RETURNING on
// newsletters (single source for schema changes).
const newsletterSelectList = `id, user_id, title, content, status, scheduled_time, created_at, updated_at`

// NewsletterRepository manages newsletter rows.
type NewsletterRepository struct {
	db *sqlx.DB
}

// NewNewsletterRepository creates a new repository instance
func NewNewsletterRepository(db *sqlx.DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

// Create inserts a newsletter in draft status.
func (r *NewsletterRepository) Create(ctx context.Context, userID, title, content string) (*domain.Newsletter, error) {
	nl := &domain.Newsletter{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Status:    domain.StatusDraft,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO newsletters (id, user_id, title, content, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + newsletterSelectList

	err := r.db.QueryRowxContext(
		ctx, query,
		nl.ID, nl.UserID, nl.Title, nl.Content, nl.Status, nl.CreatedAt, nl.UpdatedAt,
	).StructScan(nl)
	if err != nil {
		return nil, fmt.Errorf("create newsletter: %w", err)
	}

	return nl, nil
}

// GetByID retrieves a newsletter by ID.
func (r *NewsletterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Newsletter, error) {
	nl := &domain.Newsletter{}
	query := `SELECT ` + newsletterSelectList + ` FROM newsletters WHERE id = $1`

	err := r.db.GetContext(ctx, nl, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get newsletter: %w", err)
	}

	return nl, nil
}

// GetOwned retrieves a newsletter by ID scoped to its owner. An ownership
// mismatch is indistinguishable from a missing row.
func (r *NewsletterRepository) GetOwned(ctx context.Context, id uuid.UUID, userID string) (*domain.Newsletter, error) {
	nl := &domain.Newsletter{}
	query := `SELECT ` + newsletterSelectList + ` FROM newsletters WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, nl, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get newsletter: %w", err)
	}

	return nl, nil
}

// ListByUser retrieves all newsletters owned by a user, newest first.
func (r *NewsletterRepository) ListByUser(ctx context.Context, userID string) ([]domain.Newsletter, error) {
	newsletters := []domain.Newsletter{}
	query := `SELECT ` + newsletterSelectList + ` FROM newsletters WHERE user_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &newsletters, query, userID); err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}

	return newsletters, nil
}

// ListScheduled retrieves the current snapshot of scheduled newsletters,
// soonest first. The sweep works off this snapshot.
func (r *NewsletterRepository) ListScheduled(ctx context.Context) ([]domain.Newsletter, error) {
	newsletters := []domain.Newsletter{}
	query := `SELECT ` + newsletterSelectList + ` FROM newsletters WHERE status = $1 ORDER BY scheduled_time ASC NULLS LAST`

	if err := r.db.SelectContext(ctx, &newsletters, query, domain.StatusScheduled); err != nil {
		return nil, fmt.Errorf("list scheduled newsletters: %w", err)
	}

	return newsletters, nil
}

// ListScheduledByUser retrieves a user's scheduled newsletters, soonest
// first.
func (r *NewsletterRepository) ListScheduledByUser(ctx context.Context, userID string) ([]domain.Newsletter, error) {
	newsletters := []domain.Newsletter{}
	query := `SELECT ` + newsletterSelectList + ` FROM newsletters WHERE user_id = $1 AND status = $2 ORDER BY scheduled_time ASC`

	if err := r.db.SelectContext(ctx, &newsletters, query, userID, domain.StatusScheduled); err != nil {
		return nil, fmt.Errorf("list scheduled newsletters: %w", err)
	}

	return newsletters, nil
}

// UpdateContent overwrites a draft's content. Regeneration is only legal
// before any send, so the update is conditioned on draft status.
func (r *NewsletterRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	query := `
		UPDATE newsletters
		SET content = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`
	if err := r.execExpectOneRow(ctx, query, id, content, domain.StatusDraft); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update newsletter content: %w", err)
	}
	return nil
}

// Schedule transitions draft -> scheduled with the given send time. The
// transition is conditional so a concurrent send cannot be re-scheduled.
func (r *NewsletterRepository) Schedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE newsletters
		SET status = $2, scheduled_time = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`
	if err := r.execExpectOneRow(ctx, query, id, domain.StatusScheduled, at.UTC(), domain.StatusDraft); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("schedule newsletter: %w", err)
	}
	return nil
}

// ClaimForSending performs the compare-and-set transition from -> sending.
// Exactly one caller wins the claim; every other concurrent caller observes
// claimed == false. This is what keeps a user-triggered send and the sweep
// from both mailing the same newsletter.
func (r *NewsletterRepository) ClaimForSending(ctx context.Context, id uuid.UUID, from domain.Status) (bool, error) {
	query := `
		UPDATE newsletters
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, id, domain.StatusSending, from)
	if err != nil {
		return false, fmt.Errorf("claim newsletter: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get affected rows: %w", err)
	}
	return rows == 1, nil
}

// FinishSending records the delivery outcome for a claimed newsletter.
func (r *NewsletterRepository) FinishSending(ctx context.Context, id uuid.UUID, final domain.Status) error {
	query := `
		UPDATE newsletters
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`
	if err := r.execExpectOneRow(ctx, query, id, final, domain.StatusSending); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("finish sending: %w", err)
	}
	return nil
}

// ReleaseToScheduled returns a claimed newsletter to the scheduled state so
// the next sweep tick can retry it.
func (r *NewsletterRepository) ReleaseToScheduled(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE newsletters
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`
	if err := r.execExpectOneRow(ctx, query, id, domain.StatusScheduled, domain.StatusSending); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("release newsletter: %w", err)
	}
	return nil
}

// execExpectOneRow runs an exec and returns domain.ErrNotFound when no row
// was affected.
func (r *NewsletterRepository) execExpectOneRow(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		return fmt.Errorf("get affected rows: %w", rowsErr)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
