package shift

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shift"
	"go.uber.org/zap"
)

// Service drives the cash-custody state machine: open, close preview, close.
// Open and close are idempotent on the client operation id; open/close races
// for the same (cashier, store) resolve through storage uniqueness.
type Service struct {
	scope        TransactionScope
	shiftRepo    shift.Repository
	saleRepo     sales.Repository
	identityRepo identity.Repository
	logger       *zap.Logger
}

// NewService creates a new shift Service
func NewService(scope TransactionScope, shiftRepo shift.Repository, saleRepo sales.Repository, identityRepo identity.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:        scope,
		shiftRepo:    shiftRepo,
		saleRepo:     saleRepo,
		identityRepo: identityRepo,
		logger:       logger,
	}
}

// Open starts a shift for the cashier at the store. A cashier can hold at
// most one open shift per store; a duplicate open fails with Conflict, while
// a retry of the same operation returns the already-opened shift.
func (s *Service) Open(ctx context.Context, tenantID, cashierID uuid.UUID, req OpenShiftRequest) (*ShiftResponse, error) {
	existing, err := s.shiftRepo.FindByOpenOperationID(ctx, tenantID, req.ClientOperationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		resp := ToShiftResponse(existing)
		return &resp, nil
	}

	store, err := s.identityRepo.FindStoreByID(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if store.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	if !store.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Store is not active")
	}

	newShift, err := shift.NewShift(tenantID, req.StoreID, cashierID, req.OpeningCashAmount, req.Notes, req.ClientOperationID)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		open, err := repos.ShiftRepo().FindOpenByCashier(ctx, tenantID, req.StoreID, cashierID)
		if err != nil {
			return err
		}
		if open != nil {
			return shared.ErrShiftAlreadyOpen
		}
		return repos.ShiftRepo().Save(ctx, newShift)
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Either a concurrent retry with the same operation id won, or a
			// concurrent open for the same cashier/store slipped past the
			// in-transaction check.
			winner, readErr := s.shiftRepo.FindByOpenOperationID(ctx, tenantID, req.ClientOperationID)
			if readErr == nil && winner != nil {
				resp := ToShiftResponse(winner)
				return &resp, nil
			}
			return nil, shared.ErrShiftAlreadyOpen
		}
		return nil, err
	}

	resp := ToShiftResponse(newShift)
	return &resp, nil
}

// ClosePreview reports the expected drawer for an open shift: opening float
// plus cash on the shift's still-completed sales. A voided sale's cash moved
// to the reversed bucket with the refund, so it no longer counts.
func (s *Service) ClosePreview(ctx context.Context, tenantID, shiftID uuid.UUID) (*ClosePreviewResponse, error) {
	sh, err := s.shiftRepo.FindByIDForTenant(ctx, tenantID, shiftID)
	if err != nil {
		return nil, err
	}

	if !sh.IsOpen() {
		// A closed shift's reconciliation is frozen at close time.
		return &ClosePreviewResponse{
			ShiftID:           sh.ID,
			Status:            sh.Status.String(),
			OpeningCashAmount: sh.OpeningCashAmount,
			ExpectedCash:      *sh.ExpectedCash,
		}, nil
	}

	totals, err := s.saleRepo.CashTotalsForShift(ctx, tenantID, sh.ID)
	if err != nil {
		return nil, err
	}

	return &ClosePreviewResponse{
		ShiftID:           sh.ID,
		Status:            sh.Status.String(),
		OpeningCashAmount: sh.OpeningCashAmount,
		CashCollected:     totals.Collected,
		CashReversed:      totals.Reversed,
		ExpectedCash:      sh.ExpectedCashFor(totals.Collected),
	}, nil
}

// Close performs the terminal transition with the counted drawer. Resubmitting
// the same operation id returns the same closed result; a different close for
// an already-closed shift is a Conflict.
func (s *Service) Close(ctx context.Context, tenantID, shiftID uuid.UUID, req CloseShiftRequest) (*ShiftResponse, error) {
	existing, err := s.shiftRepo.FindByCloseOperationID(ctx, tenantID, req.ClientOperationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		resp := ToShiftResponse(existing)
		return &resp, nil
	}

	denominations := make([]shift.Denomination, 0, len(req.CountedDenominations))
	for _, d := range req.CountedDenominations {
		denominations = append(denominations, shift.Denomination{Value: d.DenominationValue, Count: d.Count})
	}

	var closed *shift.Shift
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sh, err := repos.ShiftRepo().FindByIDForTenant(ctx, tenantID, shiftID)
		if err != nil {
			return err
		}
		if !sh.IsOpen() {
			if sh.CloseOperationID != nil && *sh.CloseOperationID == req.ClientOperationID {
				closed = sh
				return nil
			}
			return shared.ErrConflict
		}

		totals, err := repos.SaleRepo().CashTotalsForShift(ctx, tenantID, sh.ID)
		if err != nil {
			return err
		}
		expected := sh.ExpectedCashFor(totals.Collected)

		if err := sh.Close(expected, denominations, req.ClosingNotes, req.ClientOperationID); err != nil {
			return err
		}
		if err := repos.ShiftRepo().Update(ctx, sh); err != nil {
			return err
		}
		closed = sh
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			winner, readErr := s.shiftRepo.FindByCloseOperationID(ctx, tenantID, req.ClientOperationID)
			if readErr == nil && winner != nil {
				resp := ToShiftResponse(winner)
				return &resp, nil
			}
			return nil, shared.ErrConflict
		}
		return nil, err
	}

	resp := ToShiftResponse(closed)
	return &resp, nil
}

// GetByID returns one shift
func (s *Service) GetByID(ctx context.Context, tenantID, shiftID uuid.UUID) (*ShiftResponse, error) {
	sh, err := s.shiftRepo.FindByIDForTenant(ctx, tenantID, shiftID)
	if err != nil {
		return nil, err
	}
	resp := ToShiftResponse(sh)
	return &resp, nil
}

// CurrentForCashier returns the cashier's open shift at the store, or nil
func (s *Service) CurrentForCashier(ctx context.Context, tenantID, storeID, cashierID uuid.UUID) (*ShiftResponse, error) {
	sh, err := s.shiftRepo.FindOpenByCashier(ctx, tenantID, storeID, cashierID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, nil
	}
	resp := ToShiftResponse(sh)
	return &resp, nil
}

// ListForStore returns the store's shifts, newest first
func (s *Service) ListForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]ShiftResponse, int64, error) {
	shifts, total, err := s.shiftRepo.FindAllForStore(ctx, tenantID, storeID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ShiftResponse, 0, len(shifts))
	for i := range shifts {
		out = append(out, ToShiftResponse(&shifts[i]))
	}
	return out, total, nil
}
