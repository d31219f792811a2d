package clinicalrecord

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

type clinicalRecordRepoPG struct{ pool *pgxpool.Pool }

func NewClinicalRecordRepoPG(pool *pgxpool.Pool) ClinicalRecordRepository {
	return &clinicalRecordRepoPG{pool: pool}
}

func (r *clinicalRecordRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `cr.id, cr.patient_id, cr.doctor_id, cr.appointment_id, cr.diagnosis,
	cr.prescription, cr.notes, cr.created_at, cr.updated_at,
	p.first_name || ' ' || p.last_name AS patient_name,
	COALESCE(u.first_name || ' ' || u.last_name, '') AS doctor_name`

const recordJoins = `FROM clinical_record cr
	JOIN patient p ON p.id = cr.patient_id
	LEFT JOIN user_account u ON u.id = cr.doctor_id`

func scanRecord(row pgx.Row) (*ClinicalRecord, error) {
	var cr ClinicalRecord
	err := row.Scan(&cr.ID, &cr.PatientID, &cr.DoctorID, &cr.AppointmentID, &cr.Diagnosis,
		&cr.Prescription, &cr.Notes, &cr.CreatedAt, &cr.UpdatedAt,
		&cr.PatientName, &cr.DoctorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &cr, err
}

func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *clinicalRecordRepoPG) Create(ctx context.Context, cr *ClinicalRecord) error {
	cr.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinical_record (id, patient_id, doctor_id, appointment_id,
			diagnosis, prescription, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		cr.ID, cr.PatientID, cr.DoctorID, cr.AppointmentID,
		cr.Diagnosis, cr.Prescription, cr.Notes)
	if uniqueViolation(err) {
		return ErrDuplicateAppointment
	}
	return err
}

func (r *clinicalRecordRepoPG) GetByID(ctx context.Context, id uuid.UUID, scope policy.Scope) (*ClinicalRecord, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE cr.id = $1", recordCols, recordJoins)
	args := []interface{}{id}
	if scope.DoctorID != nil {
		q += " AND cr.doctor_id = $2"
		args = append(args, *scope.DoctorID)
	}
	return scanRecord(r.conn(ctx).QueryRow(ctx, q, args...))
}

func (r *clinicalRecordRepoPG) Update(ctx context.Context, cr *ClinicalRecord, scope policy.Scope) error {
	q := `UPDATE clinical_record SET patient_id=$2, doctor_id=$3, appointment_id=$4,
		diagnosis=$5, prescription=$6, notes=$7, updated_at=NOW() WHERE id = $1`
	args := []interface{}{cr.ID, cr.PatientID, cr.DoctorID, cr.AppointmentID,
		cr.Diagnosis, cr.Prescription, cr.Notes}
	if scope.DoctorID != nil {
		q += " AND doctor_id = $8"
		args = append(args, *scope.DoctorID)
	}
	tag, err := r.conn(ctx).Exec(ctx, q, args...)
	if uniqueViolation(err) {
		return ErrDuplicateAppointment
	}
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *clinicalRecordRepoPG) Delete(ctx context.Context, id uuid.UUID, scope policy.Scope) error {
	q := `DELETE FROM clinical_record WHERE id = $1`
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

func (r *clinicalRecordRepoPG) List(ctx context.Context, scope policy.Scope, params map[string]string, limit, offset int) ([]*ClinicalRecord, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if scope.DoctorID != nil {
		where = append(where, fmt.Sprintf("cr.doctor_id = $%d", idx))
		args = append(args, *scope.DoctorID)
		idx++
	}
	if v, ok := params["patient"]; ok {
		where = append(where, fmt.Sprintf("cr.patient_id = $%d", idx))
		args = append(args, v)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) %s %s", recordJoins, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s %s %s ORDER BY cr.created_at DESC LIMIT $%d OFFSET $%d",
		recordCols, recordJoins, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ClinicalRecord
	for rows.Next() {
		cr, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cr)
	}
	return items, total, nil
}

func (r *clinicalRecordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, scope policy.Scope) ([]*ClinicalRecord, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE cr.patient_id = $1", recordCols, recordJoins)
	args := []interface{}{patientID}
	if scope.DoctorID != nil {
		q += " AND cr.doctor_id = $2"
		args = append(args, *scope.DoctorID)
	}
	q += " ORDER BY cr.created_at DESC"

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ClinicalRecord
	for rows.Next() {
		cr, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cr)
	}
	return items, nil
}
