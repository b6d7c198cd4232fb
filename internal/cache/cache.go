package cache

import "github.com/fjod/go_storefront/internal/repository"

// RedisCache satisfies the state repository contract.
var _ repository.StateRepository = (*RedisCache)(nil)
