package services

import "github.com/samber/do"

// Provide registers the engine services. The caller provides datastore.Store,
// caching.Cache, caching.ReadOnlyCache, interfaces.Locker and *zap.Logger, and
// optionally a "clock" and the "redis-db"/"redis-cache" clients.
func Provide(container *do.Injector) {
	do.Provide(container, NewServiceConfig)
	do.Provide(container, NewServiceLedger)
	do.Provide(container, NewServiceAchievement)
	do.Provide(container, NewServiceActivity)
	do.Provide(container, NewServiceFlair)
	do.Provide(container, NewServiceGachaPull)
	do.Provide(container, NewServiceUser)
	do.Provide(container, NewServicePost)
	do.Provide(container, NewServiceThumb)
	do.Provide(container, NewServiceLeaderboard)
}
