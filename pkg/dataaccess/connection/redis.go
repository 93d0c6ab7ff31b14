package connection

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess/monitoring"
	"github.com/redis/go-redis/v9"
)

// Redis holds the details needed to connect to Redis.
type Redis struct {
	// URL is a redis:// or rediss:// URL.
	URL string
}

// Connect parses the URL, connects and pings the server.
func (r *Redis) Connect(ctx context.Context) (client *redis.Client, err error) {
	done := monitoring.Observe("redis", "connect")
	defer func() { done(err) }()

	opt, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis url: %w", err)
	}

	client = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}
	return client, nil
}
