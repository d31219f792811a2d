package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/platform/middleware"
)

type mockAuditRepo struct {
	logs map[uuid.UUID]*AuditLog
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{logs: make(map[uuid.UUID]*AuditLog)}
}

func (m *mockAuditRepo) Insert(_ context.Context, a *AuditLog) error {
	a.ID = uuid.New()
	m.logs[a.ID] = a
	return nil
}

func (m *mockAuditRepo) GetByID(_ context.Context, id uuid.UUID) (*AuditLog, error) {
	a, ok := m.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockAuditRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*AuditLog, int, error) {
	var result []*AuditLog
	for _, a := range m.logs {
		if v, ok := params["action"]; ok && a.Action != v {
			continue
		}
		if v, ok := params["user"]; ok && (a.UserID == nil || a.UserID.String() != v) {
			continue
		}
		result = append(result, a)
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func TestRecord_MapsEntryFields(t *testing.T) {
	repo := newMockAuditRepo()
	svc := NewService(repo)

	userID := uuid.New()
	entry := middleware.AuditEntry{
		UserID:     userID,
		Username:   "dr.lin",
		Role:       "DOCTOR",
		Action:     "POST",
		Path:       "/api/v1/appointments",
		IPAddress:  "10.0.0.9",
		Details:    "status: 201",
		RequestID:  "req-1",
		StatusCode: 201,
		Timestamp:  time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	if err := svc.Record(context.Background(), entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(repo.logs) != 1 {
		t.Fatalf("expected 1 stored log, got %d", len(repo.logs))
	}
	for _, a := range repo.logs {
		if a.UserID == nil || *a.UserID != userID {
			t.Error("stored log should carry the caller's user id")
		}
		if a.Action != "POST" || a.Path != "/api/v1/appointments" {
			t.Errorf("unexpected action/path %s %s", a.Action, a.Path)
		}
		if a.Details != "status: 201" || a.StatusCode != 201 {
			t.Errorf("unexpected details %q status %d", a.Details, a.StatusCode)
		}
		if !a.CreatedAt.Equal(entry.Timestamp) {
			t.Error("stored log should keep the entry timestamp")
		}
	}
}

func TestSearchAuditLogs_FiltersCombine(t *testing.T) {
	repo := newMockAuditRepo()
	svc := NewService(repo)

	alice := uuid.New()
	bob := uuid.New()
	seed := []middleware.AuditEntry{
		{UserID: alice, Action: "GET", Path: "/api/v1/patients", StatusCode: 200, Timestamp: time.Now()},
		{UserID: alice, Action: "POST", Path: "/api/v1/patients", StatusCode: 201, Timestamp: time.Now()},
		{UserID: bob, Action: "GET", Path: "/api/v1/medications", StatusCode: 200, Timestamp: time.Now()},
	}
	for _, e := range seed {
		if err := svc.Record(context.Background(), e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	items, total, err := svc.SearchAuditLogs(context.Background(),
		map[string]string{"action": "GET", "user": alice.String()}, 20, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected exactly the GET by alice, got total=%d len=%d", total, len(items))
	}
	if items[0].Path != "/api/v1/patients" {
		t.Errorf("unexpected path %s", items[0].Path)
	}
}

func TestGetAuditLog_NotFound(t *testing.T) {
	svc := NewService(newMockAuditRepo())
	if _, err := svc.GetAuditLog(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for missing log")
	}
}
