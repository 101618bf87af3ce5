package queue

import (
	"context"
	"fmt"
	"log"

	"crackmehub/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}

// RecountQueue carries crackme hexids whose denormalized counters need
// recomputing. Duplicate entries are fine, a recount is idempotent.
type RecountQueue struct {
	rdb *redis.Client
}

func NewRecountQueue(rdb *redis.Client) *RecountQueue {
	return &RecountQueue{rdb: rdb}
}

func (q *RecountQueue) EnqueueRecount(ctx context.Context, crackmeHexID string) error {
	if err := q.rdb.LPush(ctx, config.AppConfig.RecountQueueName, crackmeHexID).Err(); err != nil {
		return fmt.Errorf("queue.RecountQueue.EnqueueRecount: %w", err)
	}
	return nil
}
