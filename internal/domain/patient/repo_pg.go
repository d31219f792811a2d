package patient

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, date_of_birth, gender, blood_type,
	ssn, phone, email, emergency_contact, emergency_phone, allergies,
	address, is_active, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.BloodType,
		&p.SSN, &p.Phone, &p.Email, &p.EmergencyContact, &p.EmergencyPhone, &p.Allergies,
		&p.Address, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, first_name, last_name, date_of_birth, gender, blood_type,
			ssn, phone, email, emergency_contact, emergency_phone, allergies,
			address, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.BloodType,
		p.SSN, p.Phone, p.Email, p.EmergencyContact, p.EmergencyPhone, p.Allergies,
		p.Address, p.IsActive)
	if uniqueViolation(err) {
		return ErrDuplicateSSN
	}
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	q := fmt.Sprintf("SELECT %s FROM patient WHERE id = $1", patientCols)
	return scanPatient(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, date_of_birth=$4, gender=$5,
			blood_type=$6, ssn=$7, phone=$8, email=$9, emergency_contact=$10,
			emergency_phone=$11, allergies=$12, address=$13, is_active=$14,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.BloodType, p.SSN, p.Phone, p.Email, p.EmergencyContact,
		p.EmergencyPhone, p.Allergies, p.Address, p.IsActive)
	if uniqueViolation(err) {
		return ErrDuplicateSSN
	}
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *patientRepoPG) List(ctx context.Context, search, orderBy string, limit, offset int) ([]*Patient, int, error) {
	where := ""
	args := []interface{}{}
	idx := 1

	if search != "" {
		where = fmt.Sprintf(`WHERE first_name ILIKE $%d OR last_name ILIKE $%d
			OR ssn ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d`, idx, idx, idx, idx, idx)
		args = append(args, "%"+strings.TrimSpace(search)+"%")
		idx++
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM patient %s", where)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// orderBy comes from the service's whitelist, never from the client.
	q := fmt.Sprintf("SELECT %s FROM patient %s ORDER BY %s LIMIT $%d OFFSET $%d",
		patientCols, where, orderBy, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}
