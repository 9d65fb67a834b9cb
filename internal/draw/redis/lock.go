package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis serializes draw execution: at most one draw may ever run per raffle,
// so a second request while a draw is in flight must be rejected, not queued.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getDrawLockTTL returns the draw lock duration from the environment or the
// default. The TTL only matters if a crashed process never releases its lock.
func (r *Redis) getDrawLockTTL() time.Duration {
	defaultDuration := 2 * time.Minute

	ttlStr := os.Getenv("DRAW_LOCK_TTL_MINUTES")
	if ttlStr == "" {
		return defaultDuration
	}

	ttlMin, err := strconv.Atoi(ttlStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid DRAW_LOCK_TTL_MINUTES value '" + ttlStr + "', using default 2 minutes")
		return defaultDuration
	}
	return time.Duration(ttlMin) * time.Minute
}

// LockRaffle takes the per-raffle draw lock. The token identifies the holder
// so only the locking draw can release it.
func (r *Redis) LockRaffle(raffleID, token string) (bool, error) {
	key := "draw_lock:" + raffleID
	ok, err := r.Client.SetNX(context.Background(), key, token, r.getDrawLockTTL()).Result()
	return ok, err
}

// UnlockRaffle releases the draw lock if the token matches the holder.
func (r *Redis) UnlockRaffle(raffleID, token string) error {
	ctx := context.Background()
	key := fmt.Sprintf("draw_lock:%s", raffleID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
