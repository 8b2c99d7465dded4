package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	stderrors "errors"

	"github.com/rupayx/wallet-service/internal/infrastructure/kafka"
	"github.com/rupayx/wallet-service/internal/infrastructure/observability"
	"github.com/rupayx/wallet-service/internal/models"
	"github.com/rupayx/wallet-service/internal/repository"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const (
	utrLength         = 12
	topicTransactions = "transactions"
)

// commissionRate is the bonus credited on top of an approved Buy.
var commissionRate = decimal.New(5, -2)

type LedgerService interface {
	SubmitBuy(ctx context.Context, userEmail, taskID, utr, screenshot string) (*models.Transaction, error)
	SubmitSell(ctx context.Context, userEmail string, amount decimal.Decimal, destinationUpi string) (*models.Transaction, error)
	SetTransactionStatus(ctx context.Context, txID string, newStatus models.TransactionStatus) error
	AdjustBalance(ctx context.Context, email string, delta decimal.Decimal) error
	History(ctx context.Context, userEmail string) ([]models.Transaction, error)
	PendingRequests(ctx context.Context, txType models.TransactionType) ([]models.Transaction, error)
}

type ledgerService struct {
	userRepo repository.UserRepository
	txRepo   repository.TransactionRepository
	upiRepo  repository.UpiRepository
	taskRepo repository.TaskRepository
	producer kafka.EventProducer
}

func NewLedgerService(
	userRepo repository.UserRepository,
	txRepo repository.TransactionRepository,
	upiRepo repository.UpiRepository,
	taskRepo repository.TaskRepository,
	producer kafka.EventProducer,
) *ledgerService {
	return &ledgerService{
		userRepo: userRepo,
		txRepo:   txRepo,
		upiRepo:  upiRepo,
		taskRepo: taskRepo,
		producer: producer,
	}
}

// lastOrderMs makes order ids unique within the process even when two
// submissions land in the same millisecond.
var lastOrderMs int64

func newOrderID() string {
	for {
		now := time.Now().UnixMilli()
		last := atomic.LoadInt64(&lastOrderMs)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastOrderMs, last, now) {
			return fmt.Sprintf("ORD%d", now)
		}
	}
}

func (s *ledgerService) SubmitBuy(ctx context.Context, userEmail, taskID, utr, screenshot string) (*models.Transaction, error) {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "SubmitBuy")
	defer span.End()

	if len(utr) != utrLength {
		span.SetStatus(codes.Error, "invalid UTR")
		observability.LedgerOperations.WithLabelValues("submit_buy", "rejected").Inc()
		return nil, fmt.Errorf("%w: UTR must be exactly %d characters", pkgerrors.ErrValidation, utrLength)
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if stderrors.Is(err, pkgerrors.ErrTaskNotFound) {
			span.SetStatus(codes.Error, "unknown deposit task")
			observability.LedgerOperations.WithLabelValues("submit_buy", "rejected").Inc()
			return nil, err
		}
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to resolve deposit task", pkgerrors.ErrInternal)
	}

	if _, err := s.userRepo.GetByEmail(ctx, userEmail); err != nil {
		span.RecordError(err)
		return nil, err
	}

	tx := &models.Transaction{
		ID:         newOrderID(),
		Type:       models.TypeBuy,
		Amount:     task.Amount,
		Commission: task.Amount.Mul(commissionRate),
		Date:       time.Now().UTC(),
		Status:     models.StatusPending,
		Details:    utr,
		Screenshot: screenshot,
		UserEmail:  userEmail,
		TaskTitle:  task.Title,
	}

	// No balance effect at submission time; the credit happens on approval.
	if err := s.txRepo.Create(ctx, tx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction creation failed")
		observability.LedgerOperations.WithLabelValues("submit_buy", "error").Inc()
		return nil, fmt.Errorf("%w: failed to create buy transaction", pkgerrors.ErrInternal)
	}

	observability.LedgerOperations.WithLabelValues("submit_buy", "success").Inc()
	slog.Info("buy order submitted", "id", tx.ID, "user_email", userEmail, "task", task.Title, "amount", tx.Amount.String())
	s.publishEvent(tx.ID, map[string]interface{}{
		"event_type": "transaction_submitted",
		"id":         tx.ID,
		"type":       tx.Type,
		"amount":     tx.Amount,
		"user_email": tx.UserEmail,
		"created_at": tx.Date.Format(time.RFC3339),
	})
	return tx, nil
}

func (s *ledgerService) SubmitSell(ctx context.Context, userEmail string, amount decimal.Decimal, destinationUpi string) (*models.Transaction, error) {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "SubmitSell")
	defer span.End()

	if !amount.IsPositive() {
		span.SetStatus(codes.Error, "invalid amount")
		observability.LedgerOperations.WithLabelValues("submit_sell", "rejected").Inc()
		return nil, fmt.Errorf("%w: amount must be positive", pkgerrors.ErrValidation)
	}
	if destinationUpi == "" {
		span.SetStatus(codes.Error, "missing destination")
		observability.LedgerOperations.WithLabelValues("submit_sell", "rejected").Inc()
		return nil, pkgerrors.ErrMissingDestination
	}
	if _, err := s.upiRepo.GetByUpiID(ctx, destinationUpi); err != nil {
		if stderrors.Is(err, pkgerrors.ErrUpiNotFound) {
			span.SetStatus(codes.Error, "unknown destination")
			observability.LedgerOperations.WithLabelValues("submit_sell", "rejected").Inc()
			return nil, fmt.Errorf("%w: %s is not a saved UPI account", pkgerrors.ErrMissingDestination, destinationUpi)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to resolve destination", pkgerrors.ErrInternal)
	}

	tx := &models.Transaction{
		ID:         newOrderID(),
		Type:       models.TypeSell,
		Amount:     amount,
		Commission: decimal.Zero,
		Date:       time.Now().UTC(),
		Status:     models.StatusPending,
		Details:    destinationUpi,
		UserEmail:  userEmail,
	}

	// Pessimistic debit-on-submit: the amount is held until the request is
	// approved or refunded on rejection.
	if err := s.txRepo.CreateWithDebit(ctx, tx); err != nil {
		if stderrors.Is(err, pkgerrors.ErrInsufficientFunds) {
			span.SetStatus(codes.Error, "insufficient funds")
			observability.LedgerOperations.WithLabelValues("submit_sell", "rejected").Inc()
			return nil, err
		}
		span.RecordError(err)
		observability.LedgerOperations.WithLabelValues("submit_sell", "error").Inc()
		return nil, fmt.Errorf("%w: failed to create sell transaction", pkgerrors.ErrInternal)
	}

	observability.LedgerOperations.WithLabelValues("submit_sell", "success").Inc()
	slog.Info("sell request submitted", "id", tx.ID, "user_email", userEmail, "amount", amount.String(), "destination", destinationUpi)
	s.publishEvent(tx.ID, map[string]interface{}{
		"event_type": "transaction_submitted",
		"id":         tx.ID,
		"type":       tx.Type,
		"amount":     tx.Amount,
		"user_email": tx.UserEmail,
		"created_at": tx.Date.Format(time.RFC3339),
	})
	return tx, nil
}

// SetTransactionStatus applies one status edge and its balance side effect.
// Unknown transactions and terminal transactions are silent no-ops.
func (s *ledgerService) SetTransactionStatus(ctx context.Context, txID string, newStatus models.TransactionStatus) error {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "SetTransactionStatus")
	defer span.End()

	if newStatus != models.StatusCompleted && newStatus != models.StatusRejected {
		return fmt.Errorf("%w: cannot move a transaction to status %q", pkgerrors.ErrValidation, newStatus)
	}

	tx, err := s.txRepo.GetByID(ctx, txID)
	if err != nil {
		if stderrors.Is(err, pkgerrors.ErrTransactionNotFound) {
			slog.Warn("status change for unknown transaction ignored", "id", txID)
			return nil
		}
		span.RecordError(err)
		return fmt.Errorf("%w: failed to load transaction", pkgerrors.ErrInternal)
	}
	if tx.Status.Terminal() {
		slog.Warn("status change for settled transaction ignored", "id", txID, "status", tx.Status)
		return nil
	}

	delta := decimal.Zero
	switch {
	case tx.Type == models.TypeBuy && newStatus == models.StatusCompleted:
		delta = tx.Amount.Add(tx.Commission)
	case tx.Type == models.TypeSell && newStatus == models.StatusRejected:
		// Refund the submission-time debit.
		delta = tx.Amount
	}

	applied, err := s.txRepo.ApplyStatus(ctx, txID, newStatus, delta)
	if err != nil {
		span.RecordError(err)
		observability.LedgerOperations.WithLabelValues("set_status", "error").Inc()
		return fmt.Errorf("%w: failed to apply status change", pkgerrors.ErrInternal)
	}
	if !applied {
		slog.Warn("status change skipped, transaction no longer pending", "id", txID)
		return nil
	}

	observability.LedgerOperations.WithLabelValues("set_status", "success").Inc()
	slog.Info("transaction status changed", "id", txID, "type", tx.Type, "status", newStatus, "balance_delta", delta.String())
	s.publishEvent(txID, map[string]interface{}{
		"event_type": "transaction_status_changed",
		"id":         txID,
		"type":       tx.Type,
		"status":     newStatus,
		"user_email": tx.UserEmail,
		"delta":      delta,
	})
	return nil
}

func (s *ledgerService) AdjustBalance(ctx context.Context, email string, delta decimal.Decimal) error {
	tracer := otel.Tracer("ledger-service")
	ctx, span := tracer.Start(ctx, "AdjustBalance")
	defer span.End()

	newBalance, err := s.userRepo.ChangeBalance(ctx, email, delta)
	if err != nil {
		span.RecordError(err)
		return err
	}

	slog.Info("balance adjusted", "user_email", email, "delta", delta.String(), "new_balance", newBalance.String())
	return nil
}

func (s *ledgerService) History(ctx context.Context, userEmail string) ([]models.Transaction, error) {
	txs, err := s.txRepo.ListByUser(ctx, userEmail)
	if err != nil {
		slog.Error("failed to get transaction history", "user_email", userEmail, "error", err)
		return nil, err
	}
	return txs, nil
}

func (s *ledgerService) PendingRequests(ctx context.Context, txType models.TransactionType) ([]models.Transaction, error) {
	if txType != models.TypeBuy && txType != models.TypeSell {
		return nil, fmt.Errorf("%w: unknown transaction type %q", pkgerrors.ErrValidation, txType)
	}
	return s.txRepo.ListPending(ctx, txType)
}

// publishEvent emits to the outbound feed fire-and-forget: no retry, and a
// delivery failure never affects the ledger operation that triggered it.
func (s *ledgerService) publishEvent(key string, event map[string]interface{}) {
	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal ledger event", "key", key, "error", err)
		return
	}
	go func() {
		if err := s.producer.Send(context.Background(), topicTransactions, key, payload); err != nil {
			slog.Error("failed to publish ledger event", "key", key, "error", err)
		}
	}()
}
