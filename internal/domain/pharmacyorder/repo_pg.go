package pharmacyorder

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

type pharmacyOrderRepoPG struct{ pool *pgxpool.Pool }

func NewPharmacyOrderRepoPG(pool *pgxpool.Pool) PharmacyOrderRepository {
	return &pharmacyOrderRepoPG{pool: pool}
}

func (r *pharmacyOrderRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const orderCols = `o.id, o.patient_id, o.doctor_id, o.medication_id, o.quantity,
	o.dosage, o.status, o.notes, o.created_at,
	p.first_name || ' ' || p.last_name AS patient_name,
	COALESCE(u.first_name || ' ' || u.last_name, '') AS doctor_name,
	m.name AS medication_name`

const orderJoins = `FROM pharmacy_order o
	JOIN patient p ON p.id = o.patient_id
	LEFT JOIN user_account u ON u.id = o.doctor_id
	JOIN medication m ON m.id = o.medication_id`

func scanOrder(row pgx.Row) (*PharmacyOrder, error) {
	var o PharmacyOrder
	err := row.Scan(&o.ID, &o.PatientID, &o.DoctorID, &o.MedicationID, &o.Quantity,
		&o.Dosage, &o.Status, &o.Notes, &o.CreatedAt,
		&o.PatientName, &o.DoctorName, &o.MedicationName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *pharmacyOrderRepoPG) Create(ctx context.Context, o *PharmacyOrder) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy_order (id, patient_id, doctor_id, medication_id,
			quantity, dosage, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.PatientID, o.DoctorID, o.MedicationID,
		o.Quantity, o.Dosage, o.Status, o.Notes)
	return err
}

func (r *pharmacyOrderRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PharmacyOrder, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE o.id = $1", orderCols, orderJoins)
	return scanOrder(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *pharmacyOrderRepoPG) Update(ctx context.Context, o *PharmacyOrder) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy_order SET patient_id=$2, doctor_id=$3, medication_id=$4,
			quantity=$5, dosage=$6, status=$7, notes=$8
		WHERE id = $1`,
		o.ID, o.PatientID, o.DoctorID, o.MedicationID,
		o.Quantity, o.Dosage, o.Status, o.Notes)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *pharmacyOrderRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacy_order WHERE id = $1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *pharmacyOrderRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*PharmacyOrder, int, error) {
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

	var items []*PharmacyOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, nil
}

func (r *pharmacyOrderRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PharmacyOrder, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE o.patient_id = $1 ORDER BY o.created_at DESC", orderCols, orderJoins)
	rows, err := r.conn(ctx).Query(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*PharmacyOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, nil
}
