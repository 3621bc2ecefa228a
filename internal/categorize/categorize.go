// Package categorize fills in categories of "Uncategorized" records using a
// language model.
package categorize

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-dashboard/internal/analytics"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// BatchSize is the number of records sent to the model per request.
const BatchSize = 50

// Candidate is a record that needs a category.
type Candidate struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
}

// Suggester proposes categories for candidates, keyed by record id.
// known lists the categories already in use.
type Suggester interface {
	Suggest(ctx context.Context, candidates []Candidate, known []string) (map[int]string, error)
}

// Apply returns a copy of records in which uncategorized records carry the
// category suggested for them. Other records are never changed. The second
// return value is the number of records that got a category.
func Apply(ctx context.Context, s Suggester, records []domain.Transaction) ([]domain.Transaction, int, error) {
	log := logger.FromContext(ctx)

	out := append([]domain.Transaction(nil), records...)

	var known []string
	for _, c := range analytics.UniqueCategories(records) {
		if c != domain.DefaultCategory {
			known = append(known, c)
		}
	}

	var candidates []Candidate
	index := make(map[int]int)
	for i, tx := range out {
		if tx.Category != domain.DefaultCategory {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:          tx.ID,
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Type:        string(tx.Type),
		})
		index[tx.ID] = i
	}
	if len(candidates) == 0 {
		log.Info().Msg("No uncategorized records")
		return out, 0, nil
	}

	updated := 0
	for start := 0; start < len(candidates); start += BatchSize {
		end := start + BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		suggestions, err := s.Suggest(ctx, candidates[start:end], known)
		if err != nil {
			return nil, 0, fmt.Errorf("Apply: batch %d-%d: %w", start, end, err)
		}

		for _, c := range candidates[start:end] {
			category, ok := suggestions[c.ID]
			if !ok || category == "" || category == domain.DefaultCategory {
				continue
			}
			out[index[c.ID]].Category = category
			updated++
		}
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("updated", updated).
		Msg("Applied category suggestions")
	return out, updated, nil
}
