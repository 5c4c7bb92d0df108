package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/auth"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
)

const testJWTSecret = "test-secret-for-handlers"

func testClaims(outletID uuid.UUID, role string) *auth.Claims {
	return &auth.Claims{
		UserID:   uuid.New(),
		OutletID: outletID,
		Role:     role,
	}
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.OutletID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeBodyList(t *testing.T, rr *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var resp []interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func testNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

// numericString renders a pgtype.Numeric the way responses do, for
// asserting on store params.
func numericString(t *testing.T, n pgtype.Numeric) string {
	t.Helper()
	val, err := n.Value()
	if err != nil || val == nil {
		t.Fatalf("numeric value: %v", err)
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		t.Fatalf("parse numeric %q: %v", val, err)
	}
	return d.StringFixed(2)
}

// --- Test data builders ---

func testOrder(outletID uuid.UUID) database.Order {
	now := time.Now()
	return database.Order{
		ID:             uuid.New(),
		OutletID:       outletID,
		OrderNumber:    "TVL-001",
		OrderType:      enum.OrderTypeDineIn,
		Status:         enum.OrderStatusOpen,
		Subtotal:       testNumeric("40.00"),
		TaxRate:        testNumeric("0.0500"),
		TaxAmount:      testNumeric("2.00"),
		DiscountAmount: testNumeric("0.00"),
		TipAmount:      testNumeric("5.00"),
		TotalAmount:    testNumeric("47.00"),
		Version:        1,
		CreatedBy:      uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func testOrderLine(orderID uuid.UUID, status string) database.OrderLine {
	now := time.Now()
	return database.OrderLine{
		ID:         uuid.New(),
		OrderID:    orderID,
		MenuItemID: uuid.New(),
		Quantity:   2,
		UnitPrice:  testNumeric("10.00"),
		Status:     status,
		Station:    pgtype.Text{String: enum.StationGrill, Valid: true},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// --- Mock transaction plumbing shared by service-backed handler tests ---

type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (m *mockTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Conn() *pgx.Conn { return nil }

type mockPool struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
