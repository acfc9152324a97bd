package pipeline

import (
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

// Dedupe reduces companies to one record per case-insensitive trimmed
// name, keeping the first occurrence and preserving relative order.
// Records with an empty identity are dropped.
func Dedupe(companies []model.Company) []model.Company {
	seen := make(map[string]struct{}, len(companies))
	unique := make([]model.Company, 0, len(companies))

	for _, c := range companies {
		id := c.Identity()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, c)
	}

	zap.L().Debug("dedupe: reduced company set",
		zap.Int("in", len(companies)),
		zap.Int("out", len(unique)),
	)
	return unique
}
