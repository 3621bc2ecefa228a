package notionsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/jomei/notionapi"
)

const (
	// BatchSize defines the number of records to process in a single batch
	BatchSize = 100
)

// ErrNothingToSync is returned when no import has happened yet.
var ErrNothingToSync = errors.New("nothing to sync: import a spreadsheet first")

// SyncStats summarizes one sync.
type SyncStats struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// SyncRecords mirrors the active record set into a Notion database:
// 1. Queries all existing pages
// 2. Archives pages whose key is not part of the active set
// 3. Creates pages for records that are not in Notion yet
// Individual page failures are logged and counted, not returned.
func SyncRecords(ctx context.Context, notionClient NotionService, notionDBID string, snap dataset.Snapshot, dryRun bool) (SyncStats, error) {
	var stats SyncStats
	if snap.Run == nil {
		return stats, ErrNothingToSync
	}
	runID := snap.Run.RunID

	log := logger.FromContext(ctx).With().
		Str("run_id", runID).
		Bool("dry_run", dryRun).
		Logger()
	log.Info().Int("records", len(snap.Records)).Msg("Starting record sync to Notion")

	valid := make(map[string]bool, len(snap.Records))
	for _, tx := range snap.Records {
		valid[TransactionKey(runID, tx)] = true
	}

	pages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return stats, fmt.Errorf("failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]bool, len(pages))
	for _, page := range pages {
		key := extractTransactionKey(page)
		if key != "" && valid[key] {
			existing[key] = true
			continue
		}

		if dryRun {
			log.Info().Str("key", key).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would delete stale Notion page")
			stats.Deleted++
			continue
		}
		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("Failed to delete stale Notion page")
			stats.Failed++
			continue
		}
		stats.Deleted++
	}

	for i := 0; i < len(snap.Records); i += BatchSize {
		end := i + BatchSize
		if end > len(snap.Records) {
			end = len(snap.Records)
		}
		log.Debug().Int("batch_start", i).Int("batch_end", end).Msg("Processing batch")

		for _, tx := range snap.Records[i:end] {
			key := TransactionKey(runID, tx)
			if existing[key] {
				stats.Skipped++
				continue
			}
			if dryRun {
				log.Debug().Str("key", key).Msg("[DRY RUN] Would create new Notion page")
				stats.Created++
				continue
			}

			page, err := notionClient.CreatePage(ctx, notionDBID, TransactionToNotionProperties(runID, tx))
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to create Notion page")
				stats.Failed++
				continue
			}
			log.Debug().Str("key", key).Str("page_id", string(page.ID)).Msg("Created Notion page")
			stats.Created++
		}
	}

	log.Info().
		Int("created", stats.Created).
		Int("skipped", stats.Skipped).
		Int("deleted", stats.Deleted).
		Int("failed", stats.Failed).
		Msg("Record sync to Notion completed")
	return stats, nil
}

// queryAllNotionPages pages through the whole database.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
