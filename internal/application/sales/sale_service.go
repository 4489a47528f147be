package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appledger "github.com/pos/backend/internal/application/ledger"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/ledger"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CatalogResolver supplies the availability-resolved snapshot carts validate
// against
type CatalogResolver interface {
	ComputeEffectiveCatalog(ctx context.Context, tenantID, storeID uuid.UUID) (*catalog.EffectiveCatalog, error)
}

// Config tunes sale recording behavior
type Config struct {
	// RequireOpenShift makes an open shift for the acting cashier a
	// precondition of every sale
	RequireOpenShift bool
	// EnforceNonNegativeStock blocks consumption that would take a tracked
	// item below zero
	EnforceNonNegativeStock bool
}

// Service records sales exactly once despite retries. Each create or void is
// one atomic unit of work over the sale rows, the stock journal, and the
// folio counter.
type Service struct {
	scope        TransactionScope
	saleRepo     sales.Repository
	resolver     CatalogResolver
	identityRepo identity.Repository
	cfg          Config
	logger       *zap.Logger
}

// NewService creates a new sale Service
func NewService(scope TransactionScope, saleRepo sales.Repository, resolver CatalogResolver, identityRepo identity.Repository, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:        scope,
		saleRepo:     saleRepo,
		resolver:     resolver,
		identityRepo: identityRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// Create records a sale. Resubmitting the same client sale id returns the
// original result; the same id with a different cart is a Conflict.
func (s *Service) Create(ctx context.Context, tenantID, cashierID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	fingerprint := RequestFingerprint(req)

	existing, err := s.saleRepo.FindByClientSaleID(ctx, tenantID, req.StoreID, req.ClientSaleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.replay(existing, fingerprint)
	}

	snapshot, err := s.resolver.ComputeEffectiveCatalog(ctx, tenantID, req.StoreID)
	if err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
		occurredAt = *req.OccurredAt
	}
	// The business day follows the tenant's wall clock, not the server's.
	tenant, err := s.identityRepo.FindTenantByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if loc, locErr := time.LoadLocation(tenant.Timezone); locErr == nil {
		occurredAt = occurredAt.In(loc)
	}
	sale, err := sales.NewSale(tenantID, req.StoreID, cashierID, req.ClientSaleID, occurredAt)
	if err != nil {
		return nil, err
	}
	sale.RequestFingerprint = fingerprint

	if err := s.buildLines(sale, snapshot, req.Items); err != nil {
		return nil, err
	}
	if err := s.attachPayments(sale, req.Payments); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if s.cfg.RequireOpenShift {
			open, err := repos.ShiftRepo().FindOpenByCashier(ctx, tenantID, req.StoreID, cashierID)
			if err != nil {
				return err
			}
			if open == nil {
				return shared.ErrNoOpenShift
			}
			sale.ShiftID = &open.ID
		}

		folio, err := repos.SaleRepo().NextFolio(ctx, tenantID, req.StoreID, sale.BusinessDay)
		if err != nil {
			return err
		}
		sale.AssignFolio(folio)
		sale.Complete()

		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}

		return s.postConsumption(ctx, repos.EntryRepo(), sale, cashierID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent retry with the same client sale id won the insert;
			// converge on its result instead of failing the caller.
			winner, readErr := s.saleRepo.FindByClientSaleID(ctx, tenantID, req.StoreID, req.ClientSaleID)
			if readErr == nil && winner != nil {
				return s.replay(winner, fingerprint)
			}
		}
		return nil, err
	}

	resp := ToSaleResponse(sale)
	return &resp, nil
}

// replay returns the stored outcome of a duplicate submission, rejecting a
// payload that differs from the recorded one.
func (s *Service) replay(existing *sales.Sale, fingerprint string) (*SaleResponse, error) {
	if existing.RequestFingerprint != fingerprint {
		return nil, shared.NewDomainError("CONFLICT", "Client sale ID was already used with a different cart")
	}
	resp := ToSaleResponse(existing)
	return &resp, nil
}

// buildLines validates the cart against the snapshot and freezes prices
func (s *Service) buildLines(sale *sales.Sale, snapshot *catalog.EffectiveCatalog, items []SaleItemInput) error {
	if len(items) == 0 {
		return shared.NewDomainError("EMPTY_CART", "At least one item is required")
	}

	for _, input := range items {
		product := snapshot.ProductByID(input.ProductID)
		if product == nil {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Unknown product: "+input.ProductID.String())
		}
		if !product.Availability.Offered {
			return shared.NewDomainError("PRODUCT_NOT_OFFERED", "Product is not offered at this store: "+product.Product.Name)
		}
		if !product.Availability.Sellable {
			return shared.NewDomainError("PRODUCT_NOT_AVAILABLE", "Product is currently unavailable: "+product.Product.Name)
		}

		item, err := sales.NewSaleItem(product.Product.ID, product.Product.Name, product.Product.BasePrice, input.Quantity, product.Product.IsInventoryTracked)
		if err != nil {
			return err
		}

		if err := s.applySelections(item, product, snapshot, input.Selections); err != nil {
			return err
		}
		if err := s.applyExtras(item, snapshot, input.Extras); err != nil {
			return err
		}

		sale.AddItem(item)
	}
	return nil
}

func (s *Service) applySelections(item *sales.SaleItem, product *catalog.ResolvedProduct, snapshot *catalog.EffectiveCatalog, selections []SelectionInput) error {
	var schema *catalog.SelectionSchema
	if product.Product.SchemaID != nil {
		schema = snapshot.SchemaByID(*product.Product.SchemaID)
	}
	if schema == nil {
		if len(selections) > 0 {
			return shared.NewDomainError("UNEXPECTED_SELECTIONS", "Product does not accept selections: "+product.Product.Name)
		}
		return nil
	}

	chosenByGroup := make(map[string][]SelectionInput)
	for _, sel := range selections {
		group := schema.GroupByKey(sel.GroupKey)
		if group == nil {
			return shared.NewDomainError("UNKNOWN_SELECTION_GROUP", "Unknown selection group: "+sel.GroupKey)
		}
		chosenByGroup[group.GroupKey] = append(chosenByGroup[group.GroupKey], sel)
	}

	for i := range schema.Groups {
		group := &schema.Groups[i]
		chosen := chosenByGroup[group.GroupKey]

		if len(chosen) < group.MinSelections || len(chosen) > group.MaxSelections {
			return shared.NewDomainError("SELECTION_COUNT_OUT_OF_BOUNDS", "Selections for group "+group.GroupKey+" are outside the allowed range")
		}

		for _, sel := range chosen {
			option := snapshot.OptionItemByID(sel.OptionItemID)
			if option == nil {
				return shared.NewDomainError("OPTION_NOT_FOUND", "Unknown option item: "+sel.OptionItemID.String())
			}
			if option.OptionItem.OptionSetID != group.OptionSetID {
				return shared.NewDomainError("OPTION_OUTSIDE_SET", "Option "+option.OptionItem.Name+" does not belong to group "+group.GroupKey)
			}
			if !option.Availability.Offered || !option.Availability.Sellable {
				return shared.NewDomainError("OPTION_NOT_AVAILABLE", "Option is currently unavailable: "+option.OptionItem.Name)
			}
			if !product.AllowsOption(group.GroupKey, sel.OptionItemID) {
				return shared.NewDomainError("OPTION_NOT_ALLOWED", "Option "+option.OptionItem.Name+" is not allowed for this product")
			}
			item.AddSelection(group.GroupKey, option.OptionItem.ID, option.OptionItem.Name)
		}
	}
	return nil
}

func (s *Service) applyExtras(item *sales.SaleItem, snapshot *catalog.EffectiveCatalog, extras []ExtraInput) error {
	for _, input := range extras {
		extra := snapshot.ExtraByID(input.ExtraID)
		if extra == nil {
			return shared.NewDomainError("EXTRA_NOT_FOUND", "Unknown extra: "+input.ExtraID.String())
		}
		if !extra.Availability.Offered || !extra.Availability.Sellable {
			return shared.NewDomainError("EXTRA_NOT_AVAILABLE", "Extra is currently unavailable: "+extra.Extra.Name)
		}
		if err := item.AddExtra(extra.Extra.ID, extra.Extra.Name, extra.Extra.UnitPrice, input.Quantity, extra.Extra.IsInventoryTracked); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) attachPayments(sale *sales.Sale, inputs []SalePaymentInput) error {
	payments := make([]sales.Payment, 0, len(inputs))
	for _, p := range inputs {
		payments = append(payments, sales.Payment{
			Method:    sales.PaymentMethod(p.Method),
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return sale.AttachPayments(payments)
}

// postConsumption appends one SaleConsumption entry per tracked item
func (s *Service) postConsumption(ctx context.Context, entryRepo ledger.EntryRepository, sale *sales.Sale, cashierID uuid.UUID) error {
	for _, c := range sale.TrackedConsumption() {
		itemType := catalog.ItemTypeProduct
		if c.IsExtra {
			itemType = catalog.ItemTypeExtra
		}
		_, err := appledger.ChainAppend(ctx, entryRepo, appledger.ChainAppendSpec{
			TenantID:           sale.TenantID,
			StoreID:            sale.StoreID,
			ItemType:           itemType,
			ItemID:             c.ItemID,
			Delta:              c.Quantity.Neg(),
			Kind:               ledger.MovementKindSaleConsumption,
			Reason:             "sale " + sale.ClientSaleID,
			ReferenceID:        &sale.ID,
			ReferenceLineID:    &c.SaleItemID,
			OperatorID:         &cashierID,
			OccurredAt:         sale.OccurredAt,
			EnforceNonNegative: s.cfg.EnforceNonNegativeStock,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Void performs the one-way Completed to Void transition and appends reversal
// entries for every tracked item the sale consumed. Idempotent on the client
// void id.
func (s *Service) Void(ctx context.Context, tenantID, saleID uuid.UUID, req VoidSaleRequest) (*SaleResponse, error) {
	existing, err := s.saleRepo.FindByClientVoidID(ctx, tenantID, req.ClientVoidID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		resp := ToSaleResponse(existing)
		return &resp, nil
	}

	var voided *sales.Sale
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if sale.IsVoided() {
			if sale.ClientVoidID != nil && *sale.ClientVoidID == req.ClientVoidID {
				voided = sale
				return nil
			}
			return shared.ErrConflict
		}

		if err := sale.Void(req.ReasonCode, req.ReasonText, req.Note, req.ClientVoidID); err != nil {
			return err
		}
		if err := repos.SaleRepo().Update(ctx, sale); err != nil {
			return err
		}

		for _, c := range sale.TrackedConsumption() {
			itemType := catalog.ItemTypeProduct
			if c.IsExtra {
				itemType = catalog.ItemTypeExtra
			}
			_, err := appledger.ChainAppend(ctx, repos.EntryRepo(), appledger.ChainAppendSpec{
				TenantID:        sale.TenantID,
				StoreID:         sale.StoreID,
				ItemType:        itemType,
				ItemID:          c.ItemID,
				Delta:           c.Quantity,
				Kind:            ledger.MovementKindVoidReversal,
				Reason:          "void " + req.ClientVoidID,
				ReferenceID:     &sale.ID,
				ReferenceLineID: &c.SaleItemID,
			})
			if err != nil {
				return err
			}
		}

		voided = sale
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			winner, readErr := s.saleRepo.FindByClientVoidID(ctx, tenantID, req.ClientVoidID)
			if readErr == nil && winner != nil {
				resp := ToSaleResponse(winner)
				return &resp, nil
			}
			return nil, shared.ErrConflict
		}
		return nil, err
	}

	resp := ToSaleResponse(voided)
	return &resp, nil
}

// GetByID returns one sale with its frozen lines and payments
func (s *Service) GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleDetailResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleDetailResponse(sale)
	return &resp, nil
}

// ListForStore returns the store's sales, newest first
func (s *Service) ListForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]SaleResponse, int64, error) {
	items, total, err := s.saleRepo.FindAllForStore(ctx, tenantID, storeID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SaleResponse, 0, len(items))
	for i := range items {
		out = append(out, ToSaleResponse(&items[i]))
	}
	return out, total, nil
}
