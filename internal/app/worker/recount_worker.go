package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/repository"
	"crackmehub/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// RecountWorker drains the recount queue and rewrites the denormalized
// nb_solutions/nb_comments counters on the named crackme. Recounts are
// idempotent, so duplicate queue entries and re-deliveries are harmless;
// anything the worker misses is picked up by the consistency verifier.
type RecountWorker struct {
	rdb          *redis.Client
	crackmeRepo  repository.CrackmeRepository
	solutionRepo repository.SolutionRepository
	commentRepo  repository.CommentRepository
}

func NewRecountWorker(rdb *redis.Client, crackmeRepo repository.CrackmeRepository, solutionRepo repository.SolutionRepository, commentRepo repository.CommentRepository) *RecountWorker {
	return &RecountWorker{
		rdb:          rdb,
		crackmeRepo:  crackmeRepo,
		solutionRepo: solutionRepo,
		commentRepo:  commentRepo,
	}
}

func (w *RecountWorker) Start(ctx context.Context) {
	log.Println("Recount worker started, listening to queue:", config.AppConfig.RecountQueueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Recount worker stopping...")
			return
		default:
			// Blocking pop from Redis queue
			entry, err := w.rdb.BRPop(ctx, 0*time.Second, config.AppConfig.RecountQueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second) // Avoid busy-looping on certain errors
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", config.AppConfig.RecountQueueName, err)
				time.Sleep(5 * time.Second) // Wait before retrying on other errors
				continue
			}

			// entry is an array: [queueName, value]
			if len(entry) < 2 || entry[1] == "" {
				log.Println("WARN: BRPop returned empty crackme hexid.")
				continue
			}
			hexID := entry[1]
			if err := w.Recount(ctx, hexID); err != nil {
				// Not requeued: the verifier reconciles whatever is missed.
				log.Printf("ERROR: Failed to recount crackme %s: %v", hexID, err)
			}
		}
	}
}

// Recount recomputes both counters for one crackme and persists them.
func (w *RecountWorker) Recount(ctx context.Context, crackmeHexID string) error {
	crackme, err := w.crackmeRepo.FindByHexID(ctx, crackmeHexID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Deleted between enqueue and pop; nothing to maintain.
			return nil
		}
		return err
	}

	nbSolutions, err := w.solutionRepo.CountPublishedByCrackmeID(ctx, crackme.ID)
	if err != nil {
		return err
	}
	nbComments, err := w.commentRepo.CountPublishedByCrackme(ctx, crackme.HexID)
	if err != nil {
		return err
	}

	if nbSolutions == crackme.NbSolutions && nbComments == crackme.NbComments {
		return nil
	}
	log.Printf("Recounting crackme %s: %d solutions, %d comments", crackmeHexID, nbSolutions, nbComments)
	return w.crackmeRepo.UpdateCounts(ctx, crackme.HexID, nbSolutions, nbComments)
}
