package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusRepo mirrors report statuses for cheap polling. Postgres is
// authoritative; entries expire and readers fall back to it.
type StatusRepo struct {
	Client *redis.Client
}

func NewStatusRepo(client *redis.Client) *StatusRepo {
	return &StatusRepo{Client: client}
}

func (r *StatusRepo) SetStatus(ctx context.Context, reportID, status string) error {
	return r.Client.Set(ctx, "report_status:"+reportID, status, time.Hour).Err()
}

func (r *StatusRepo) GetStatus(ctx context.Context, reportID string) (string, error) {
	return r.Client.Get(ctx, "report_status:"+reportID).Result()
}
