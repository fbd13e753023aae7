package backend

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"brightroots/internal/models"
)

// querier is the part of pgxpool.Pool the backend uses.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres reads providers from the hosted database.
type Postgres struct {
	db   querier
	pool *pgxpool.Pool
}

// Connect opens a pool for dsn and checks it is reachable.
func Connect(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	log.Println("Connected to provider database")
	return &Postgres{db: pool, pool: pool}, nil
}

func newPostgres(db querier) *Postgres {
	return &Postgres{db: db}
}

// Close releases the pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

const listColumns = `
SELECT p.id, p.business_name, p.owner_name, p.email, p.phone,
       COALESCE(p.whatsapp, ''), COALESCE(p.website, ''), COALESCE(p.description, ''),
       p.city, p.area, p.pincode, p.latitude, p.longitude,
       p.status::text, p.is_published, p.created_at,
       COALESCE(array_agg(s.category::text ORDER BY s.category::text)
                FILTER (WHERE s.category IS NOT NULL), '{}'),
       EXISTS (SELECT 1 FROM provider_classes c WHERE c.provider_id = p.id)
         AND NOT EXISTS (SELECT 1 FROM provider_classes c
                         WHERE c.provider_id = p.id AND c.mode <> 'online')
FROM providers p
LEFT JOIN provider_services s ON s.provider_id = p.id
WHERE p.is_published = true AND p.status = 'approved'`

// buildListQuery renders the provider list query for f. The category
// filter is a HAVING clause so matching providers keep all their categories.
func buildListQuery(f Filter) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString(listColumns)
	if f.City != "" {
		args = append(args, f.City)
		fmt.Fprintf(&sb, "\n  AND lower(p.city) = lower($%d)", len(args))
	}
	sb.WriteString("\nGROUP BY p.id")
	if f.Category != "" {
		args = append(args, strings.ToLower(f.Category))
		fmt.Fprintf(&sb, "\nHAVING bool_or(lower(s.category::text) = $%d)", len(args))
	}
	sb.WriteString("\nORDER BY p.created_at DESC")
	return sb.String(), args
}

// ListProviders returns approved, published providers newest first.
func (p *Postgres) ListProviders(ctx context.Context, f Filter) ([]models.ProviderRecord, error) {
	sql, args := buildListQuery(f)
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to read providers: %w", err)
	}
	return records, nil
}

func scanProvider(row pgx.CollectableRow) (models.ProviderRecord, error) {
	var (
		r        models.ProviderRecord
		lat, lng *float64
		status   string
		created  time.Time
	)
	err := row.Scan(
		&r.ID, &r.BusinessName, &r.OwnerName, &r.Email, &r.Phone,
		&r.WhatsApp, &r.Website, &r.Description,
		&r.Location.City, &r.Location.Area, &r.Location.Pincode, &lat, &lng,
		&status, &r.Published, &created,
		&r.Categories, &r.Location.Online,
	)
	if err != nil {
		return r, err
	}
	if lat != nil && lng != nil {
		r.Location.Coordinates = &models.Coordinates{Lat: *lat, Lng: *lng}
	}
	r.Status = models.Status(status)
	r.CreatedAt = created.UTC()
	return r, nil
}

const updateStatusSQL = `
UPDATE providers
SET status = $1,
    is_published = $2,
    approved_at = CASE WHEN $2 THEN now() ELSE approved_at END,
    updated_at = now()
WHERE id = $3`

// UpdateStatus changes a provider's status and publication flag together.
func (p *Postgres) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	tag, err := p.db.Exec(ctx, updateStatusSQL, string(status), status.Publishes(), id)
	if err != nil {
		return fmt.Errorf("failed to update status of %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating status of %s: %w", id, ErrNotFound)
	}
	return nil
}
