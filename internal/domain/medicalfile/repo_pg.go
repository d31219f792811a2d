package medicalfile

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

type medicalFileRepoPG struct{ pool *pgxpool.Pool }

func NewMedicalFileRepoPG(pool *pgxpool.Pool) MedicalFileRepository {
	return &medicalFileRepoPG{pool: pool}
}

func (r *medicalFileRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const fileCols = `f.id, f.patient_id, f.clinical_record_id, f.file_key, f.file_type,
	f.description, f.uploaded_by, f.created_at,
	COALESCE(u.first_name || ' ' || u.last_name, '') AS uploaded_by_name`

const fileJoins = `FROM medical_file f
	LEFT JOIN user_account u ON u.id = f.uploaded_by`

func scanFile(row pgx.Row) (*MedicalFile, error) {
	var f MedicalFile
	err := row.Scan(&f.ID, &f.PatientID, &f.ClinicalRecordID, &f.FileKey, &f.FileType,
		&f.Description, &f.UploadedBy, &f.CreatedAt, &f.UploadedByName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &f, err
}

func (r *medicalFileRepoPG) Create(ctx context.Context, f *MedicalFile) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_file (id, patient_id, clinical_record_id, file_key,
			file_type, description, uploaded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.PatientID, f.ClinicalRecordID, f.FileKey,
		f.FileType, f.Description, f.UploadedBy)
	return err
}

func (r *medicalFileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalFile, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE f.id = $1", fileCols, fileJoins)
	return scanFile(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *medicalFileRepoPG) Update(ctx context.Context, f *MedicalFile) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_file SET clinical_record_id=$2, file_type=$3, description=$4
		WHERE id = $1`,
		f.ID, f.ClinicalRecordID, f.FileType, f.Description)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *medicalFileRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_file WHERE id = $1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *medicalFileRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*MedicalFile, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if v, ok := params["patient"]; ok {
		where = append(where, fmt.Sprintf("f.patient_id = $%d", idx))
		args = append(args, v)
		idx++
	}
	if v, ok := params["file_type"]; ok {
		where = append(where, fmt.Sprintf("f.file_type = $%d", idx))
		args = append(args, v)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) %s %s", fileJoins, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s %s %s ORDER BY f.created_at DESC LIMIT $%d OFFSET $%d",
		fileCols, fileJoins, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*MedicalFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, nil
}

func (r *medicalFileRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalFile, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE f.patient_id = $1 ORDER BY f.created_at DESC", fileCols, fileJoins)
	return r.queryList(ctx, q, patientID)
}

func (r *medicalFileRepoPG) ListByClinicalRecord(ctx context.Context, recordID uuid.UUID) ([]*MedicalFile, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE f.clinical_record_id = $1 ORDER BY f.created_at DESC", fileCols, fileJoins)
	return r.queryList(ctx, q, recordID)
}

func (r *medicalFileRepoPG) queryList(ctx context.Context, q string, args ...interface{}) ([]*MedicalFile, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MedicalFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, nil
}
