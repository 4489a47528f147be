package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SnapshotCache caches resolved catalogs keyed by version stamp. A miss
// returns (nil, nil).
type SnapshotCache interface {
	Get(ctx context.Context, versionStamp string) (*catalog.EffectiveCatalog, error)
	Set(ctx context.Context, versionStamp string, snapshot *catalog.EffectiveCatalog, ttl time.Duration) error
}

// ResolverService computes the effective, availability-resolved catalog for a
// tenant+store pair. It is read-only and takes no locks.
type ResolverService struct {
	repo     catalog.ReadRepository
	cache    SnapshotCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewResolverService creates a new ResolverService. The cache is optional.
func NewResolverService(repo catalog.ReadRepository, cache SnapshotCache, cacheTTL time.Duration, logger *zap.Logger) *ResolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ResolverService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CurrentVersionStamp returns the cache-validation token for the scope
// without materializing the snapshot.
func (s *ResolverService) CurrentVersionStamp(ctx context.Context, tenantID, storeID uuid.UUID) (string, error) {
	if err := s.checkScope(ctx, tenantID, storeID); err != nil {
		return "", err
	}
	maxUpdatedAt, err := s.repo.MaxUpdatedAt(ctx, tenantID, storeID)
	if err != nil {
		return "", err
	}
	return catalog.ComputeVersionStamp(tenantID, storeID, maxUpdatedAt), nil
}

// ComputeEffectiveCatalog resolves the full catalog for the tenant+store pair.
// Unchanged catalogs yield the same version stamp, so repeated calls hit the
// cache.
func (s *ResolverService) ComputeEffectiveCatalog(ctx context.Context, tenantID, storeID uuid.UUID) (*catalog.EffectiveCatalog, error) {
	if err := s.checkScope(ctx, tenantID, storeID); err != nil {
		return nil, err
	}

	maxUpdatedAt, err := s.repo.MaxUpdatedAt(ctx, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	stamp := catalog.ComputeVersionStamp(tenantID, storeID, maxUpdatedAt)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, stamp)
		if err != nil {
			s.logger.Warn("catalog snapshot cache read failed", zap.Error(err))
		} else if cached != nil {
			cached.BuildIndexes()
			return cached, nil
		}
	}

	snapshot, err := s.resolve(ctx, tenantID, storeID, stamp)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stamp, snapshot, s.cacheTTL); err != nil {
			s.logger.Warn("catalog snapshot cache write failed", zap.Error(err))
		}
	}
	return snapshot, nil
}

func (s *ResolverService) checkScope(ctx context.Context, tenantID, storeID uuid.UUID) error {
	if tenantID == uuid.Nil || storeID == uuid.Nil {
		return shared.NewDomainError("INVALID_SCOPE", "Tenant and store IDs are required")
	}
	ok, err := s.repo.StoreBelongsToTenant(ctx, tenantID, storeID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrNotFound
	}
	return nil
}

func (s *ResolverService) resolve(ctx context.Context, tenantID, storeID uuid.UUID, stamp string) (*catalog.EffectiveCatalog, error) {
	template, err := s.repo.TemplateForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	categories, err := s.repo.CategoriesForTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ProductsForTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	extras, err := s.repo.ExtrasForTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	optionSets, err := s.repo.OptionSetsForTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	optionItems, err := s.repo.OptionItemsForTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	schemas, err := s.repo.SchemasForTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	groupOptions, err := s.repo.GroupOptionsForTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	tenantOverrides, err := s.repo.TenantOverrides(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	storeOverrides, err := s.repo.StoreOverrides(ctx, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	availabilities, err := s.repo.StoreAvailabilities(ctx, tenantID, storeID)
	if err != nil {
		return nil, err
	}

	idx := catalog.NewOverrideIndex(tenantOverrides, storeOverrides, availabilities)

	allowListByProduct := make(map[uuid.UUID]map[string][]uuid.UUID)
	for _, o := range groupOptions {
		byGroup := allowListByProduct[o.ProductID]
		if byGroup == nil {
			byGroup = make(map[string][]uuid.UUID)
			allowListByProduct[o.ProductID] = byGroup
		}
		byGroup[o.GroupKey] = append(byGroup[o.GroupKey], o.OptionItemID)
	}

	snapshot := &catalog.EffectiveCatalog{
		TenantID:     tenantID,
		StoreID:      storeID,
		Categories:   categories,
		OptionSets:   optionSets,
		Schemas:      schemas,
		VersionStamp: stamp,
		GeneratedAt:  time.Now(),
	}

	// Items that are not offered stay in the snapshot with their resolved
	// verdict; presentation filters them, while sale validation uses the
	// verdict to distinguish "disabled here" from "does not exist".
	for _, p := range products {
		availability := idx.Resolve(template.IsActive, p.IsActive, catalog.ItemKey{ItemType: catalog.ItemTypeProduct, ItemID: p.ID})
		snapshot.Products = append(snapshot.Products, catalog.ResolvedProduct{
			Product:        p,
			Availability:   availability,
			AllowedOptions: allowListByProduct[p.ID],
		})
	}
	for _, e := range extras {
		availability := idx.Resolve(template.IsActive, e.IsActive, catalog.ItemKey{ItemType: catalog.ItemTypeExtra, ItemID: e.ID})
		snapshot.Extras = append(snapshot.Extras, catalog.ResolvedExtra{Extra: e, Availability: availability})
	}
	for _, o := range optionItems {
		availability := idx.Resolve(template.IsActive, o.IsActive, catalog.ItemKey{ItemType: catalog.ItemTypeOptionItem, ItemID: o.ID})
		snapshot.OptionItems = append(snapshot.OptionItems, catalog.ResolvedOptionItem{OptionItem: o, Availability: availability})
	}

	snapshot.BuildIndexes()
	return snapshot, nil
}
