package internal

import (
	"sjsage522/aplusworker/services/cache"
	"sjsage522/aplusworker/services/publisher"
	"sjsage522/aplusworker/services/storage"
	"sjsage522/aplusworker/services/tasks"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Storage   storage.Saver
	Tasks     tasks.Store
}
