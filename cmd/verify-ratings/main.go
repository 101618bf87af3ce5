package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"crackmehub/internal/app/verifier"
	"crackmehub/internal/domain/repository"
	"crackmehub/internal/platform/config"
	"crackmehub/internal/platform/database"
)

// verify-ratings recomputes the cached difficulty and quality averages for
// every crackme and compares them to the stored values. Dry-run by default;
// exits 1 when drift is found so cron can alert on it.
func main() {
	apply := flag.Bool("apply", false, "write corrected averages instead of only reporting")
	uri := flag.String("uri", "", "database connection string (overrides environment)")
	dbName := flag.String("db", "", "database name (overrides environment)")
	flag.Parse()

	config.Load()

	connStr := config.AppConfig.DBConnStr
	if *dbName != "" {
		config.AppConfig.DBName = *dbName
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			config.AppConfig.DBHost, config.AppConfig.DBPort, config.AppConfig.DBUser,
			config.AppConfig.DBPassword, *dbName, config.AppConfig.DBSslMode)
	}
	if *uri != "" {
		connStr = *uri
	}

	db, err := database.Open(connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-ratings: %v\n", err)
		os.Exit(2)
	}
	defer db.Close()

	v := verifier.New(
		repository.NewPgCrackmeRepository(db),
		repository.NewPgRatingRepository(db),
		repository.NewPgSolutionRepository(db),
		repository.NewPgCommentRepository(db),
	)

	report, err := v.Run(context.Background(), verifier.Options{Ratings: true, Apply: *apply})
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-ratings: %v\n", err)
		os.Exit(2)
	}

	for _, cr := range report.Crackmes {
		for _, issue := range cr.RatingIssues {
			if issue.IsNaN {
				fmt.Printf("%s (%s): %s is NaN, expected %.2f from %d ratings\n",
					cr.Name, cr.HexID, issue.Kind, issue.Expected, issue.Count)
				continue
			}
			fmt.Printf("%s (%s): %s stored %.2f, expected %.2f from %d ratings\n",
				cr.Name, cr.HexID, issue.Kind, issue.Stored, issue.Expected, issue.Count)
		}
		if cr.RepairError != nil {
			fmt.Printf("%s (%s): repair failed: %v\n", cr.Name, cr.HexID, cr.RepairError)
		}
	}

	fmt.Printf("checked %d crackmes: %d mismatched, %d with NaN, %d without difficulty ratings, %d without quality ratings\n",
		report.Total, report.MismatchCount, report.NaNCount, report.NoDifficulty, report.NoQuality)
	if *apply {
		fmt.Printf("repaired %d, %d repair failures\n", report.Repaired, report.RepairFailures)
	}
	if report.ReadFailures > 0 {
		fmt.Printf("warning: %d crackmes could not be checked\n", report.ReadFailures)
	}

	if !*apply && report.Drift() {
		os.Exit(1)
	}
}
