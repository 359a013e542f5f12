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

// RecipientRepository manages newsletter_recipients join rows. A join row
// with sent = false is the unit of delivery idempotency: delivery passes
// only ever consider unsent rows, so re-running a pass cannot double-send.
type RecipientRepository struct {
	db *sqlx.DB
}

// NewRecipientRepository creates a new repository instance
func NewRecipientRepository(db *sqlx.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// AddRecipients bulk-inserts unsent join rows for the given clients.
func (r *RecipientRepository) AddRecipients(ctx context.Context, newsletterID uuid.UUID, clientIDs []uuid.UUID) error {
	if len(clientIDs) == 0 {
		return domain.ErrNoRecipients
	}

	rows := make([]map[string]any, 0, len(clientIDs))
	for _, clientID := range clientIDs {
		rows = append(rows, map[string]any{
			"id":            uuid.New(),
			"newsletter_id": newsletterID,
			"client_id":     clientID,
			"sent":          false,
		})
	}

	// Resolving recipients on every send may revisit clients that already
	// have a join row; the conflict target keeps those rows untouched.
	query := `
		INSERT INTO newsletter_recipients (id, newsletter_id, client_id, sent)
		VALUES (:id, :newsletter_id, :client_id, :sent)
		ON CONFLICT (newsletter_id, client_id) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("add recipients: %w", err)
	}
	return nil
}

// ListUnsent returns the unsent join rows for a newsletter with the client
// name and email joined in, in repository order (no guaranteed global
// order).
func (r *RecipientRepository) ListUnsent(ctx context.Context, newsletterID uuid.UUID) ([]domain.Recipient, error) {
	recipients := []domain.Recipient{}
	query := `
		SELECT nr.id, nr.newsletter_id, nr.client_id, nr.sent, nr.sent_at,
		       c.name AS client_name, c.email AS client_email
		FROM newsletter_recipients nr
		JOIN clients c ON c.id = nr.client_id
		WHERE nr.newsletter_id = $1 AND nr.sent = false`

	if err := r.db.SelectContext(ctx, &recipients, query, newsletterID); err != nil {
		return nil, fmt.Errorf("list unsent recipients: %w", err)
	}
	return recipients, nil
}

// MarkSent flags one join row as delivered.
func (r *RecipientRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE newsletter_recipients
		SET sent = true, sent_at = $2
		WHERE id = $1 AND sent = false`

	result, err := r.db.ExecContext(ctx, query, id, at.UTC())
	if err != nil {
		return fmt.Errorf("mark recipient sent: %w", err)
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

// ClientRepository manages client rows.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new repository instance
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// ListByUser returns all clients owned by a user.
func (r *ClientRepository) ListByUser(ctx context.Context, userID string) ([]domain.Client, error) {
	clients := []domain.Client{}
	query := `SELECT id, user_id, name, email FROM clients WHERE user_id = $1 ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &clients, query, userID); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// GetOwnedByIDs returns the subset of ids that exist and belong to the user.
func (r *ClientRepository) GetOwnedByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]domain.Client, error) {
	if len(ids) == 0 {
		return []domain.Client{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, user_id, name, email FROM clients WHERE user_id = ? AND id IN (?)`,
		userID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("build client query: %w", err)
	}

	clients := []domain.Client{}
	if err := r.db.SelectContext(ctx, &clients, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get clients: %w", err)
	}
	return clients, nil
}

// SourceRepository manages source rows.
type SourceRepository struct {
	db *sqlx.DB
}

// NewSourceRepository creates a new repository instance
func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

const sourceSelectList = `id, user_id, source_type, source_name, source_identifier, active, created_at, updated_at`

// ListActiveByUser returns a user's active sources.
func (r *SourceRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.Source, error) {
	sources := []domain.Source{}
	query := `SELECT ` + sourceSelectList + ` FROM sources WHERE user_id = $1 AND active = true ORDER BY source_name ASC`

	if err := r.db.SelectContext(ctx, &sources, query, userID); err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	return sources, nil
}

// GetOwned retrieves a source by ID scoped to its owner.
func (r *SourceRepository) GetOwned(ctx context.Context, id uuid.UUID, userID string) (*domain.Source, error) {
	source := &domain.Source{}
	query := `SELECT ` + sourceSelectList + ` FROM sources WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, source, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get source: %w", err)
	}
	return source, nil
}
