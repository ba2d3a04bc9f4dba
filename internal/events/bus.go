package events

import (
	platformevents "repaircrm_backend/platform/events"
	"repaircrm_backend/platform/logger"
)

// InMemoryBus aliases the platform implementation so modules only import
// this package.
type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
