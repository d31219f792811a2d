package appointment

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
	"github.com/healthtech/hms/internal/platform/policy"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `a.id, a.patient_id, a.doctor_id, a.date_time, a.reason, a.notes,
	a.status, a.created_at, a.updated_at,
	p.first_name || ' ' || p.last_name AS patient_name,
	u.first_name || ' ' || u.last_name AS doctor_name`

const apptJoins = `FROM appointment a
	JOIN patient p ON p.id = a.patient_id
	JOIN user_account u ON u.id = a.doctor_id`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DateTime, &a.Reason, &a.Notes,
		&a.Status, &a.CreatedAt, &a.UpdatedAt, &a.PatientName, &a.DoctorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, date_time, reason, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.DoctorID, a.DateTime, a.Reason, a.Notes, a.Status)
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID, scope policy.Scope) (*Appointment, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE a.id = $1", apptCols, apptJoins)
	args := []interface{}{id}
	if scope.DoctorID != nil {
		q += " AND a.doctor_id = $2"
		args = append(args, *scope.DoctorID)
	}
	return scanAppt(r.conn(ctx).QueryRow(ctx, q, args...))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment, scope policy.Scope) error {
	q := `UPDATE appointment SET patient_id=$2, doctor_id=$3, date_time=$4, reason=$5,
		notes=$6, status=$7, updated_at=NOW() WHERE id = $1`
	args := []interface{}{a.ID, a.PatientID, a.DoctorID, a.DateTime, a.Reason, a.Notes, a.Status}
	if scope.DoctorID != nil {
		q += " AND doctor_id = $8"
		args = append(args, *scope.DoctorID)
	}
	tag, err := r.conn(ctx).Exec(ctx, q, args...)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID, scope policy.Scope) error {
	q := `DELETE FROM appointment WHERE id = $1`
	args := []interface{}{id}
	if scope.DoctorID != nil {
		q += " AND doctor_id = $2"
		args = append(args, *scope.DoctorID)
	}
	tag, err := r.conn(ctx).Exec(ctx, q, args...)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *appointmentRepoPG) List(ctx context.Context, scope policy.Scope, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if scope.DoctorID != nil {
		where = append(where, fmt.Sprintf("a.doctor_id = $%d", idx))
		args = append(args, *scope.DoctorID)
		idx++
	}
	if v, ok := params["status"]; ok {
		where = append(where, fmt.Sprintf("a.status = $%d", idx))
		args = append(args, v)
		idx++
	}
	if v, ok := params["patient"]; ok {
		where = append(where, fmt.Sprintf("a.patient_id = $%d", idx))
		args = append(args, v)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) %s %s", apptJoins, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s %s %s ORDER BY a.date_time DESC LIMIT $%d OFFSET $%d",
		apptCols, apptJoins, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, scope policy.Scope) ([]*Appointment, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE a.patient_id = $1", apptCols, apptJoins)
	args := []interface{}{patientID}
	if scope.DoctorID != nil {
		q += " AND a.doctor_id = $2"
		args = append(args, *scope.DoctorID)
	}
	q += " ORDER BY a.date_time DESC"

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}
