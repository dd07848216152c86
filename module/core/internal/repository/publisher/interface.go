package publisher

import (
	"context"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.RedZoneAlert) error
}
