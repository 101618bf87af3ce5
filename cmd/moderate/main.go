package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"crackmehub/internal/app/service"
	"crackmehub/internal/domain/repository"
	"crackmehub/internal/platform/config"
	"crackmehub/internal/platform/database"
	"crackmehub/internal/platform/queue"
	"crackmehub/internal/platform/storage"
)

const usage = `usage: moderate [flags] <crackme|solution> <stored-filename> [reason...]

The stored filename is the artifact name on disk, author+++hexid+++filename.
Rejecting a crackme hard-deletes it together with its solutions, comments
and ratings, removes the artifact, and notifies the author; the optional
reason is included in the notification.

flags:
  -uri string   database connection string (overrides environment)
`

func main() {
	uri := flag.String("uri", "", "database connection string (overrides environment)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}
	kind, storedName := flag.Arg(0), flag.Arg(1)
	reason := strings.Join(flag.Args()[2:], " ")

	if kind != "crackme" && kind != "solution" {
		flag.Usage()
		os.Exit(2)
	}
	_, hexID, _, err := storage.ParseStoredName(storedName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moderate: %v\n", err)
		os.Exit(2)
	}

	config.Load()

	connStr := config.AppConfig.DBConnStr
	if *uri != "" {
		connStr = *uri
	}
	db, err := database.Open(connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moderate: %v\n", err)
		os.Exit(2)
	}
	defer db.Close()

	queue.ConnectRedis()
	defer queue.CloseRedis()

	crackmeRepo := repository.NewPgCrackmeRepository(db)
	solutionRepo := repository.NewPgSolutionRepository(db)
	commentRepo := repository.NewPgCommentRepository(db)
	ratingRepo := repository.NewPgRatingRepository(db)
	userRepo := repository.NewPgUserRepository(db)
	notificationService := service.NewNotificationService(repository.NewPgNotificationRepository(db))
	store := storage.New(config.AppConfig.UploadDir)
	recounts := queue.NewRecountQueue(queue.RDB)

	moderation := service.NewModerationService(
		db, crackmeRepo, solutionRepo, commentRepo, ratingRepo,
		userRepo, notificationService, store, recounts,
	)

	ctx := context.Background()
	switch kind {
	case "crackme":
		result, err := moderation.RejectCrackme(ctx, hexID, storedName, reason)
		if err != nil {
			fmt.Fprintf(os.Stderr, "moderate: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("crackme %s rejected: removed %d solutions, %d comments, %d difficulty ratings, %d quality ratings\n",
			hexID, result.Solutions, result.Comments, result.DifficultyRatings, result.QualityRatings)
	case "solution":
		if err := moderation.RejectSolution(ctx, hexID, storedName, reason); err != nil {
			fmt.Fprintf(os.Stderr, "moderate: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("solution %s rejected\n", hexID)
	}
}
