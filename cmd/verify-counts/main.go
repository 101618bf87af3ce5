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

// verify-counts recomputes nb_solutions and nb_comments for every crackme
// from the published rows in the solution and comment tables and compares
// them to the cached counters. Dry-run by default; exits 1 on drift.
func main() {
	apply := flag.Bool("apply", false, "write corrected counters instead of only reporting")
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
		fmt.Fprintf(os.Stderr, "verify-counts: %v\n", err)
		os.Exit(2)
	}
	defer db.Close()

	v := verifier.New(
		repository.NewPgCrackmeRepository(db),
		repository.NewPgRatingRepository(db),
		repository.NewPgSolutionRepository(db),
		repository.NewPgCommentRepository(db),
	)

	report, err := v.Run(context.Background(), verifier.Options{Counts: true, Apply: *apply})
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-counts: %v\n", err)
		os.Exit(2)
	}

	for _, cr := range report.Crackmes {
		for _, issue := range cr.CountIssues {
			fmt.Printf("%s (%s): %s stored %d, expected %d\n",
				cr.Name, cr.HexID, issue.Field, issue.Stored, issue.Expected)
		}
		if cr.RepairError != nil {
			fmt.Printf("%s (%s): repair failed: %v\n", cr.Name, cr.HexID, cr.RepairError)
		}
	}

	fmt.Printf("checked %d crackmes: %d mismatched\n", report.Total, report.MismatchCount)
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
