package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/queue"
	"github.com/shlior7/scenergy/internal/storesync"
	"github.com/shlior7/scenergy/internal/types"
)

// syncFreshness is how recently a product must have been synced for a
// non-forced targeted sync to skip it
const syncFreshness = time.Hour

// SyncHandler imports catalog products from a tenant's connected store.
// It serves both the targeted and the full-catalog sync job types; the
// job's type selects the mode.
type SyncHandler struct {
	connections *repos.StoreConnectionRepository
	products    *repos.ProductRepository
	store       catalogSource
}

// Execute implements queue.Handler
func (h *SyncHandler) Execute(ctx context.Context, job *queue.JobContext) (json.RawMessage, error) {
	payload, ok := job.Payload().(*types.SyncPayload)
	if !ok {
		return nil, queue.Permanent(fmt.Errorf("unexpected payload type %T", job.Payload()))
	}
	start := time.Now()

	conn, err := h.connections.GetByID(ctx, job.TenantID(), payload.ConnectionID)
	if err != nil {
		if errors.Is(err, repos.ErrConnectionNotFound) {
			return nil, queue.Permanent(fmt.Errorf("store connection %s not found", payload.ConnectionID))
		}
		return nil, fmt.Errorf("failed to load store connection: %w", err)
	}
	if !conn.Active {
		return nil, queue.Permanent(fmt.Errorf("store connection %s is not active", conn.ID))
	}
	job.ReportProgress(ctx, 5)

	var synced int
	switch job.Job.Type {
	case models.JobTypeSyncProduct:
		synced, err = h.syncProducts(ctx, job, conn, payload)
	case models.JobTypeSyncAllProducts:
		synced, err = h.syncCatalog(ctx, job, conn)
	default:
		return nil, queue.Permanent(fmt.Errorf("sync handler cannot serve job type %s", job.Job.Type))
	}
	if err != nil {
		return nil, err
	}

	if err := h.connections.TouchSyncedAt(ctx, conn.ID); err != nil {
		return nil, fmt.Errorf("failed to record sync time: %w", err)
	}

	result := types.JobResult{
		SyncedCount: synced,
		DurationMS:  time.Since(start).Milliseconds(),
	}
	return result.Marshal()
}

// syncProducts imports an explicit subset of the catalog. Unless the job
// forces a refresh, products synced within the freshness window are skipped
// without a store round trip.
func (h *SyncHandler) syncProducts(ctx context.Context, job *queue.JobContext, conn *models.StoreConnection, payload *types.SyncPayload) (int, error) {
	ids := payload.ProductIDs
	if !payload.Force {
		fresh, err := h.freshExternalIDs(ctx, conn.ID, ids)
		if err != nil {
			return 0, err
		}
		ids = filterIDs(ids, fresh)
		if len(ids) == 0 {
			return 0, nil
		}
	}

	fetched, err := h.store.FetchProducts(ctx, conn, ids)
	if err != nil {
		if !storesync.IsTemporary(err) {
			return 0, queue.Permanent(err)
		}
		return 0, err
	}

	if err := h.upsertBatch(ctx, job.TenantID(), conn.ID, fetched); err != nil {
		return 0, err
	}
	job.ReportProgress(ctx, 90)
	return len(fetched), nil
}

// syncCatalog walks the store's full catalog page by page. Total size is
// unknown up front, so progress advances a step per imported page and the
// recorder raises it to 100 on completion.
func (h *SyncHandler) syncCatalog(ctx context.Context, job *queue.JobContext, conn *models.StoreConnection) (int, error) {
	total := 0
	progress := 5
	err := h.store.ForEachProduct(ctx, conn, func(batch []storesync.ExternalProduct) error {
		if err := h.upsertBatch(ctx, job.TenantID(), conn.ID, batch); err != nil {
			return err
		}
		total += len(batch)

		if progress < 90 {
			progress += 5
			job.ReportProgress(ctx, progress)
		}
		return nil
	})
	if err != nil {
		if !storesync.IsTemporary(err) {
			return 0, queue.Permanent(err)
		}
		return 0, err
	}
	return total, nil
}

func (h *SyncHandler) upsertBatch(ctx context.Context, tenantID, connectionID string, batch []storesync.ExternalProduct) error {
	for _, p := range batch {
		product := &models.Product{
			TenantID:     tenantID,
			ConnectionID: connectionID,
			ExternalID:   p.ExternalID,
			Title:        p.Title,
			Description:  p.Description,
			ImageURLs:    p.ImageURLs,
		}
		if err := h.products.Upsert(ctx, product); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", p.ExternalID, err)
		}
	}
	return nil
}

// freshExternalIDs returns the subset of external ids whose stored rows
// were synced within the freshness window
func (h *SyncHandler) freshExternalIDs(ctx context.Context, connectionID string, externalIDs []string) (map[string]bool, error) {
	existing, err := h.products.GetByExternalIDs(ctx, connectionID, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing products: %w", err)
	}

	cutoff := time.Now().UTC().Add(-syncFreshness)
	fresh := make(map[string]bool, len(existing))
	for _, p := range existing {
		if p.SyncedAt.After(cutoff) {
			fresh[p.ExternalID] = true
		}
	}
	return fresh, nil
}

func filterIDs(ids []string, drop map[string]bool) []string {
	if len(drop) == 0 {
		return ids
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	return kept
}
