package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidAmount        = errors.New("amount must be > 0")
	ErrOverpayment          = errors.New("amount exceeds the outstanding balance")
	ErrInsufficientCash     = errors.New("amount_received is below the amount")
)

// PaymentStore defines the DB methods needed to take payments.
// Satisfied by *database.Queries (and its WithTx variant).
type PaymentStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	SumPaymentsByOrder(ctx context.Context, orderID uuid.UUID) (pgtype.Numeric, error)
	CompleteOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ReleaseTable(ctx context.Context, arg database.ReleaseTableParams) (database.DiningTable, error)
}

// NewPaymentStore creates a PaymentStore from a DBTX (pool or tx).
type NewPaymentStore func(db database.DBTX) PaymentStore

// PaymentService records payments against open orders. Orders may be
// settled across several payments (split billing); the order completes on
// the payment that covers the grand total.
type PaymentService struct {
	db       DB
	newStore NewPaymentStore
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(db DB, newStore NewPaymentStore) *PaymentService {
	return &PaymentService{db: db, newStore: newStore}
}

// PayRequest is the validated input for recording one payment.
type PayRequest struct {
	OutletID       uuid.UUID
	OrderID        uuid.UUID
	ProcessedBy    uuid.UUID
	Method         string
	Amount         decimal.Decimal
	AmountReceived decimal.Decimal
	Reference      string
}

// PayResult reports the recorded payment and the order's settlement state.
type PayResult struct {
	Payment      database.Payment
	Order        database.Order
	ChangeAmount decimal.Decimal
	Outstanding  decimal.Decimal
	Settled      bool
}

// Pay records one payment inside a transaction. Cash payments compute
// change from AmountReceived; non-cash methods must pay the exact amount.
// When the completed payments reach the grand total the order flips to
// COMPLETED and its dine-in table is released.
func (s *PaymentService) Pay(ctx context.Context, req PayRequest) (*PayResult, error) {
	if !isValidPaymentMethod(req.Method) {
		return nil, ErrInvalidPaymentMethod
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrder(ctx, database.GetOrderParams{ID: req.OrderID, OutletID: req.OutletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusOpen {
		return nil, ErrOrderNotEditable
	}

	paid, err := store.SumPaymentsByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}

	total := numericToDecimal(order.TotalAmount)
	outstanding := total.Sub(numericToDecimal(paid))
	if req.Amount.GreaterThan(outstanding) {
		return nil, ErrOverpayment
	}

	change := decimal.Zero
	received := req.Amount
	if req.Method == enum.PaymentMethodCash {
		if req.AmountReceived.IsZero() {
			received = req.Amount
		} else {
			received = req.AmountReceived
		}
		if received.LessThan(req.Amount) {
			return nil, ErrInsufficientCash
		}
		change = received.Sub(req.Amount)
	}

	payment, err := store.CreatePayment(ctx, database.CreatePaymentParams{
		OrderID:        req.OrderID,
		Method:         req.Method,
		Amount:         decimalToNumeric(req.Amount),
		AmountReceived: decimalToNumeric(received),
		ChangeAmount:   decimalToNumeric(change),
		Reference:      textOrNull(req.Reference),
		ProcessedBy:    req.ProcessedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	result := &PayResult{
		Payment:      payment,
		Order:        order,
		ChangeAmount: change,
		Outstanding:  outstanding.Sub(req.Amount),
	}

	if result.Outstanding.IsZero() {
		completed, err := store.CompleteOrder(ctx, req.OrderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrOrderConflict
			}
			return nil, fmt.Errorf("complete order: %w", err)
		}
		result.Order = completed
		result.Settled = true

		if completed.TableID.Valid {
			_, err := store.ReleaseTable(ctx, database.ReleaseTableParams{
				ID:       uuid.UUID(completed.TableID.Bytes),
				OutletID: req.OutletID,
			})
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("release table: %w", err)
			}
			if errors.Is(err, pgx.ErrNoRows) {
				log.Printf("WARN: table %s already free when settling order %s", uuid.UUID(completed.TableID.Bytes), completed.ID)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

func isValidPaymentMethod(s string) bool {
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodQR, enum.PaymentMethodTransfer:
		return true
	}
	return false
}
