package dashboard

import (
	"context"
	"errors"
	"fmt"
)

var errMissingService = errors.New("dashboard: service is required to seed the board")

// SeedResult reports what a seeding pass did, by seed key.
type SeedResult struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
	Failed  []string `json:"failed"`
}

// SeedLayout seeds the starter board.
func SeedLayout(ctx context.Context, service *Service) error {
	_, err := SeedBoard(ctx, service, DefaultBoard())
	return err
}

// SeedBoard adds every manifest widget whose seed key is not already on the
// board, so repeated runs do not duplicate tiles. Failures are joined and do
// not stop later entries.
func SeedBoard(ctx context.Context, service *Service, doc *BoardManifest) (SeedResult, error) {
	var result SeedResult
	if service == nil {
		return result, errMissingService
	}
	if doc == nil {
		return result, fmt.Errorf("dashboard: manifest document is nil")
	}
	existing, err := service.Widgets(ctx)
	if err != nil {
		return result, err
	}
	present := make(map[string]struct{}, len(existing))
	for _, w := range existing {
		present[seedKey(w.Title)] = struct{}{}
	}

	var seedErr error
	for _, entry := range doc.Widgets {
		key := entry.SeedKey()
		if _, ok := present[key]; ok {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if _, ok := present[seedKey(entry.Title)]; ok {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		var addErr error
		if entry.Static {
			_, addErr = service.AddStaticWidget(ctx, entry.AddWidgetRequest)
		} else {
			_, addErr = service.AddWidget(ctx, entry.AddWidgetRequest)
		}
		if addErr != nil {
			result.Failed = append(result.Failed, key)
			seedErr = errors.Join(seedErr, fmt.Errorf("seed %s: %w", key, addErr))
			continue
		}
		present[key] = struct{}{}
		present[seedKey(entry.Title)] = struct{}{}
		result.Added = append(result.Added, key)
	}
	return result, seedErr
}
