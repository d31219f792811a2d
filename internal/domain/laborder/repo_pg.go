package laborder

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

type labOrderRepoPG struct{ pool *pgxpool.Pool }

func NewLabOrderRepoPG(pool *pgxpool.Pool) LabOrderRepository {
	return &labOrderRepoPG{pool: pool}
}

func (r *labOrderRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const orderCols = `o.id, o.patient_id, o.doctor_id, o.test_name, o.description, o.results,
	o.status, o.priority, o.created_at, o.completed_at,
	p.first_name || ' ' || p.last_name AS patient_name,
	COALESCE(u.first_name || ' ' || u.last_name, '') AS doctor_name`

const orderJoins = `FROM lab_order o
	JOIN patient p ON p.id = o.patient_id
	LEFT JOIN user_account u ON u.id = o.doctor_id`

func scanOrder(row pgx.Row) (*LabOrder, error) {
	var o LabOrder
	err := row.Scan(&o.ID, &o.PatientID, &o.DoctorID, &o.TestName, &o.Description, &o.Results,
		&o.Status, &o.Priority, &o.CreatedAt, &o.CompletedAt,
		&o.PatientName, &o.DoctorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *labOrderRepoPG) Create(ctx context.Context, o *LabOrder) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_order (id, patient_id, doctor_id, test_name, description,
			results, status, priority, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.PatientID, o.DoctorID, o.TestName, o.Description,
		o.Results, o.Status, o.Priority, o.CompletedAt)
	return err
}

func (r *labOrderRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE o.id = $1", orderCols, orderJoins)
	return scanOrder(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *labOrderRepoPG) Update(ctx context.Context, o *LabOrder) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_order SET patient_id=$2, doctor_id=$3, test_name=$4, description=$5,
			results=$6, status=$7, priority=$8, completed_at=$9
		WHERE id = $1`,
		o.ID, o.PatientID, o.DoctorID, o.TestName, o.Description,
		o.Results, o.Status, o.Priority, o.CompletedAt)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *labOrderRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab_order WHERE id = $1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *labOrderRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*LabOrder, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if v, ok := params["status"]; ok {
		where = append(where, fmt.Sprintf("o.status = $%d", idx))
		args = append(args, v)
		idx++
	}
	if v, ok := params["patient"]; ok {
		where = append(where, fmt.Sprintf("o.patient_id = $%d", idx))
		args = append(args, v)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) %s %s", orderJoins, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s %s %s ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d",
		orderCols, orderJoins, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*LabOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, nil
}

func (r *labOrderRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*LabOrder, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE o.patient_id = $1 ORDER BY o.created_at DESC", orderCols, orderJoins)
	rows, err := r.conn(ctx).Query(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LabOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, nil
}
