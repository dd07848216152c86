package storage

import (
	"context"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

// IncidentArchive keeps generated incident reports and returns where they
// were stored.
type IncidentArchive interface {
	Archive(ctx context.Context, report *domain.IncidentReport) (string, error)
}
