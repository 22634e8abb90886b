package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedback-api/internal/domain"
	"feedback-api/internal/infra/metrics"
)

// Postgres реализует чтение отзывов через keyset-пагинацию поверх pgxpool.
// Наружу отдаётся только непрозрачный курсор следующей страницы.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.FeedbackRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

type columnKind int

const (
	kindTime columnKind = iota
	kindInt
	kindText
)

type sortColumn struct {
	name string
	kind columnKind
}

var sortColumns = map[string]sortColumn{
	"date":     {name: "created_at", kind: kindTime},
	"rate":     {name: "rate", kind: kindInt},
	"userName": {name: "user_name", kind: kindText},
}

const feedbackColumns = `id, location_id, rate, comment, user_name, user_avatar_url, created_at, type`

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return p.connCtx()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// maxPrealloc ограничивает заранее выделяемую ёмкость под строки страницы.
const maxPrealloc = 256

// FetchPage реализует domain.FeedbackStore.
func (p *Postgres) FetchPage(ctx context.Context, req domain.FetchRequest) (domain.FeedbackPage, error) {
	col, query, args, err := buildPageQuery(req)
	if err != nil {
		return domain.FeedbackPage{}, err
	}

	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		metrics.ObserveNetworkRequest("postgres", "feedbacks_page", "feedbacks", start, err)
		return domain.FeedbackPage{}, err
	}
	defer rows.Close()

	entries := make([]domain.FeedbackEntry, 0, min(req.Limit+1, maxPrealloc))
	for rows.Next() {
		var (
			e    domain.FeedbackEntry
			id   pgtype.UUID
			kind string
		)
		if err := rows.Scan(&id, &e.LocationID, &e.Rate, &e.Comment, &e.UserName, &e.UserAvatarURL, &e.Date, &kind); err != nil {
			metrics.ObserveNetworkRequest("postgres", "feedbacks_page", "feedbacks", start, err)
			return domain.FeedbackPage{}, err
		}
		e.ID = uuid.UUID(id.Bytes)
		e.Type = domain.FeedbackType(kind)
		entries = append(entries, e)
	}
	err = rows.Err()
	metrics.ObserveNetworkRequest("postgres", "feedbacks_page", "feedbacks", start, err)
	if err != nil {
		return domain.FeedbackPage{}, err
	}

	page := domain.FeedbackPage{Entries: entries}
	if len(entries) > req.Limit {
		page.Entries = entries[:req.Limit]
		last := page.Entries[len(page.Entries)-1]
		page.NextCursor, err = encodeCursor(keysetCursor{
			Signature: querySignature(req),
			Value:     cursorValue(col, last),
			ID:        last.ID.String(),
		})
		if err != nil {
			return domain.FeedbackPage{}, fmt.Errorf("кодирование курсора: %w", err)
		}
	}
	return page, nil
}

// CountByLocation реализует domain.FeedbackCounter.
func (p *Postgres) CountByLocation(ctx context.Context, locationID string) (int, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var total int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM feedbacks WHERE location_id = $1`, locationID).Scan(&total)
	metrics.ObserveNetworkRequest("postgres", "feedbacks_count", "feedbacks", start, err)
	return total, err
}

// Ping проверяет доступность БД.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()
	start := time.Now()
	err := p.pool.Ping(ctx)
	metrics.ObserveNetworkRequest("postgres", "ping", "pool", start, err)
	return err
}

func buildPageQuery(req domain.FetchRequest) (sortColumn, string, []any, error) {
	col, ok := sortColumns[req.Sort.Property]
	if !ok {
		return sortColumn{}, "", nil, fmt.Errorf("%w: поле %q", domain.ErrUnsupportedSort, req.Sort.Property)
	}
	var op, order string
	switch strings.ToLower(req.Sort.Direction) {
	case "asc":
		op, order = ">", "ASC"
	case "desc":
		op, order = "<", "DESC"
	default:
		return sortColumn{}, "", nil, fmt.Errorf("%w: направление %q", domain.ErrUnsupportedSort, req.Sort.Direction)
	}
	if req.Limit <= 0 {
		return sortColumn{}, "", nil, fmt.Errorf("некорректный размер страницы: %d", req.Limit)
	}

	var b strings.Builder
	args := []any{req.LocationID}
	b.WriteString("SELECT " + feedbackColumns + " FROM feedbacks WHERE location_id = $1")
	if req.Type != nil {
		args = append(args, string(*req.Type))
		fmt.Fprintf(&b, " AND type = $%d", len(args))
	}
	if req.Cursor != "" {
		cur, err := decodeCursor(req.Cursor, req)
		if err != nil {
			return sortColumn{}, "", nil, err
		}
		value, err := parseCursorValue(col, cur.Value)
		if err != nil {
			return sortColumn{}, "", nil, err
		}
		id, err := uuid.Parse(cur.ID)
		if err != nil {
			return sortColumn{}, "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
		}
		args = append(args, value, id.String())
		fmt.Fprintf(&b, " AND (%s, id) %s ($%d, $%d)", col.name, op, len(args)-1, len(args))
	}
	args = append(args, req.Limit+1)
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s LIMIT $%d", col.name, order, order, len(args))
	return col, b.String(), args, nil
}

func cursorValue(col sortColumn, e domain.FeedbackEntry) string {
	switch col.kind {
	case kindTime:
		return e.Date.UTC().Format(time.RFC3339Nano)
	case kindInt:
		return strconv.Itoa(e.Rate)
	default:
		return e.UserName
	}
}

func parseCursorValue(col sortColumn, raw string) (any, error) {
	switch col.kind {
	case kindTime:
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
		}
		return t, nil
	case kindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}
