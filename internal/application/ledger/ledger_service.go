package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/ledger"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChainAppendSpec describes one movement to chain onto an item's journal
type ChainAppendSpec struct {
	TenantID           uuid.UUID
	StoreID            uuid.UUID
	ItemType           catalog.ItemType
	ItemID             uuid.UUID
	Delta              decimal.Decimal
	Kind               ledger.MovementKind
	Reason             string
	ReferenceID        *uuid.UUID
	ReferenceLineID    *uuid.UUID
	OperatorID         *uuid.UUID
	ClientOperationID  string
	OccurredAt         time.Time
	EnforceNonNegative bool
}

// ChainAppend reads the item's last entry, computes the next sequence and
// quantities, and appends one new row. Must run inside a unit of work; the
// unique (store, item, seq) index turns a concurrent appender race into
// shared.ErrConcurrencyConflict, which is safe to retry.
func ChainAppend(ctx context.Context, repo ledger.EntryRepository, spec ChainAppendSpec) (*ledger.Entry, error) {
	last, err := repo.LastEntry(ctx, spec.TenantID, spec.StoreID, spec.ItemType, spec.ItemID)
	if err != nil {
		return nil, err
	}

	seq := int64(1)
	qtyBefore := decimal.Zero
	if last != nil {
		seq = last.Seq + 1
		qtyBefore = last.QtyAfter
	}

	if spec.EnforceNonNegative && qtyBefore.Add(spec.Delta).IsNegative() {
		return nil, shared.ErrInsufficientStock
	}

	entry, err := ledger.NewEntry(
		spec.TenantID, spec.StoreID,
		spec.ItemType, spec.ItemID,
		seq, qtyBefore, spec.Delta,
		spec.Kind, spec.Reason,
	)
	if err != nil {
		return nil, err
	}
	if spec.ReferenceID != nil {
		entry.WithReference(*spec.ReferenceID)
	}
	if spec.ReferenceLineID != nil {
		entry.WithReferenceLine(*spec.ReferenceLineID)
	}
	if spec.OperatorID != nil {
		entry.WithOperator(*spec.OperatorID)
	}
	if spec.ClientOperationID != "" {
		entry.WithClientOperationID(spec.ClientOperationID)
	}
	if !spec.OccurredAt.IsZero() {
		entry.WithOccurredAt(spec.OccurredAt)
	}

	if err := repo.Append(ctx, entry); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrConcurrencyConflict
		}
		return nil, err
	}
	return entry, nil
}

// Service exposes the stock journal: manual adjustments, the current-quantity
// projection, and movement history.
type Service struct {
	scope              TransactionScope
	readRepo           ledger.EntryRepository
	enforceNonNegative bool
	logger             *zap.Logger
}

// NewService creates a new ledger Service
func NewService(scope TransactionScope, readRepo ledger.EntryRepository, enforceNonNegative bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:              scope,
		readRepo:           readRepo,
		enforceNonNegative: enforceNonNegative,
		logger:             logger,
	}
}

// Adjust appends one manual movement, idempotent on the client operation id
func (s *Service) Adjust(ctx context.Context, tenantID, operatorID uuid.UUID, req AdjustmentRequest) (*EntryResponse, error) {
	if !req.ItemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Invalid item type")
	}
	if !req.ItemType.IsTrackable() {
		return nil, shared.NewDomainError("ITEM_NOT_TRACKABLE", "Option items do not carry inventory")
	}

	if req.ClientOperationID != "" {
		existing, err := s.readRepo.FindByClientOperationID(ctx, tenantID, req.ClientOperationID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			resp := ToEntryResponse(existing)
			return &resp, nil
		}
	}

	kind := ledger.MovementKindManualAdjustment
	if req.Initial {
		kind = ledger.MovementKindInitialStock
	}
	reason := req.Reason
	if req.Note != "" {
		reason = reason + ": " + req.Note
	}

	var entry *ledger.Entry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = ChainAppend(ctx, repos.EntryRepo(), ChainAppendSpec{
			TenantID:           tenantID,
			StoreID:            req.StoreID,
			ItemType:           req.ItemType,
			ItemID:             req.ItemID,
			Delta:              req.QuantityDelta,
			Kind:               kind,
			Reason:             reason,
			ReferenceID:        req.Reference,
			OperatorID:         &operatorID,
			ClientOperationID:  req.ClientOperationID,
			EnforceNonNegative: s.enforceNonNegative,
		})
		return err
	})
	if err != nil {
		// A losing concurrent retry of the same operation converges on the
		// winner's row.
		if errors.Is(err, shared.ErrConcurrencyConflict) && req.ClientOperationID != "" {
			winner, readErr := s.readRepo.FindByClientOperationID(ctx, tenantID, req.ClientOperationID)
			if readErr == nil && winner != nil {
				resp := ToEntryResponse(winner)
				return &resp, nil
			}
		}
		return nil, err
	}

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// CurrentQuantity projects the item's on-hand quantity from its last entry
func (s *Service) CurrentQuantity(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID) (*QuantityResponse, error) {
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Invalid item type")
	}
	if !itemType.IsTrackable() {
		return nil, shared.NewDomainError("ITEM_NOT_TRACKABLE", "Option items do not carry inventory")
	}

	last, err := s.readRepo.LastEntry(ctx, tenantID, storeID, itemType, itemID)
	if err != nil {
		return nil, err
	}

	resp := &QuantityResponse{
		StoreID:  storeID,
		ItemType: itemType,
		ItemID:   itemID,
		Quantity: decimal.Zero,
		AsOf:     time.Now(),
	}
	if last != nil {
		resp.Quantity = last.QtyAfter
	}
	return resp, nil
}

// History returns the item's journal, newest first
func (s *Service) History(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID, filter shared.Filter) ([]EntryResponse, int64, error) {
	entries, total, err := s.readRepo.ListForItem(ctx, tenantID, storeID, itemType, itemID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToEntryResponse(&entries[i]))
	}
	return out, total, nil
}

// EntriesForReference returns every movement linked to a source document
func (s *Service) EntriesForReference(ctx context.Context, tenantID, referenceID uuid.UUID) ([]EntryResponse, error) {
	entries, err := s.readRepo.FindByReference(ctx, tenantID, referenceID)
	if err != nil {
		return nil, err
	}
	out := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToEntryResponse(&entries[i]))
	}
	return out, nil
}
