package store

import (
	"context"

	"postergo/pkg/model"
)

// PosterStore handles poster archive persistence.
type PosterStore interface {
	SavePoster(ctx context.Context, p *model.PosterRecord) error
	GetPoster(ctx context.Context, uuid string) (*model.PosterRecord, error)
	ListPosters(ctx context.Context, limit int) ([]*model.PosterRecord, error)
	DeletePoster(ctx context.Context, uuid string) error
}

// CacheStore handles generic key-value caching.
type CacheStore interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
