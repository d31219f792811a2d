package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthtech/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type AuditLogRepoPG struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepoPG(pool *pgxpool.Pool) *AuditLogRepoPG {
	return &AuditLogRepoPG{pool: pool}
}

func (r *AuditLogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const auditCols = `id, user_id, username, role, action, path, ip_address,
	details, request_id, status_code, created_at`

func scanLog(row pgx.Row) (*AuditLog, error) {
	var a AuditLog
	err := row.Scan(&a.ID, &a.UserID, &a.Username, &a.Role, &a.Action, &a.Path,
		&a.IPAddress, &a.Details, &a.RequestID, &a.StatusCode, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *AuditLogRepoPG) Insert(ctx context.Context, a *AuditLog) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_log (id, user_id, username, role, action, path, ip_address,
			details, request_id, status_code, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.UserID, a.Username, a.Role, a.Action, a.Path, a.IPAddress,
		a.Details, a.RequestID, a.StatusCode, a.CreatedAt)
	return err
}

func (r *AuditLogRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*AuditLog, error) {
	q := fmt.Sprintf("SELECT %s FROM audit_log WHERE id = $1", auditCols)
	return scanLog(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *AuditLogRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*AuditLog, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if v, ok := params["action"]; ok {
		where = append(where, fmt.Sprintf("action = $%d", idx))
		args = append(args, v)
		idx++
	}
	if v, ok := params["path"]; ok {
		where = append(where, fmt.Sprintf("path ILIKE $%d", idx))
		args = append(args, "%"+v+"%")
		idx++
	}
	if v, ok := params["user"]; ok {
		where = append(where, fmt.Sprintf("user_id = $%d", idx))
		args = append(args, v)
		idx++
	}
	if v, ok := params["status"]; ok {
		where = append(where, fmt.Sprintf("status_code = $%d", idx))
		args = append(args, v)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM audit_log %s", whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM audit_log %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		auditCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AuditLog
	for rows.Next() {
		a, err := scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}
