// Package verifier detects and repairs drift between the denormalized
// fields cached on crackme records (difficulty, quality, nb_solutions,
// nb_comments) and the aggregates recomputed from the rating, solution and
// comment tables. Drift is an expected steady-state condition because
// aggregate recomputation is not transactional with the writes that trigger
// it; the verifier is the reconciliation path, run as an idempotent batch
// job over the whole crackme set.
package verifier

import (
	"context"
	"fmt"
	"log"
	"math"

	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"
)

// FloatTolerance bounds acceptable float drift; counters must match exactly.
const FloatTolerance = 0.001

type Options struct {
	Ratings bool // verify difficulty/quality averages
	Counts  bool // verify nb_solutions/nb_comments
	Apply   bool // write corrected values (default is dry-run)
}

type RatingIssue struct {
	Kind     model.RatingKind
	Stored   float64
	Expected float64
	Count    int
	IsNaN    bool // stored value is NaN, reported as its own issue class
}

type CountIssue struct {
	Field    string
	Stored   int
	Expected int
}

type CrackmeReport struct {
	HexID          string
	Name           string
	RatingIssues   []RatingIssue
	CountIssues    []CountIssue
	MissingRatings []model.RatingKind // informational, not drift
	RepairError    error
}

func (c *CrackmeReport) HasMismatch() bool {
	return len(c.RatingIssues) > 0 || len(c.CountIssues) > 0
}

type Report struct {
	Total          int
	Crackmes       []CrackmeReport // entries with something to report
	MismatchCount  int             // crackmes with at least one mismatch
	NaNCount       int             // crackmes with a NaN stored value
	NoDifficulty   int
	NoQuality      int
	Repaired       int
	RepairFailures int
	ReadFailures   int
}

// Drift reports whether any stored value disagreed with its recomputation.
// Crackmes that simply have no ratings yet are not drift.
func (r *Report) Drift() bool {
	return r.MismatchCount > 0
}

type Verifier struct {
	crackmeRepo  repository.CrackmeRepository
	ratingRepo   repository.RatingRepository
	solutionRepo repository.SolutionRepository
	commentRepo  repository.CommentRepository
}

func New(
	crackmeRepo repository.CrackmeRepository,
	ratingRepo repository.RatingRepository,
	solutionRepo repository.SolutionRepository,
	commentRepo repository.CommentRepository,
) *Verifier {
	return &Verifier{
		crackmeRepo:  crackmeRepo,
		ratingRepo:   ratingRepo,
		solutionRepo: solutionRepo,
		commentRepo:  commentRepo,
	}
}

// Average is the zero-rating policy in one place: mean of the ratings, 0.0
// for an empty set, never NaN.
func Average(ratings []model.Rating) float64 {
	if len(ratings) == 0 {
		return 0.0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

// Run scans every crackme, recomputes the requested aggregates and compares
// them to the stored values. In apply mode it writes corrections; a failed
// write is recorded on that crackme's report and the run continues.
func (v *Verifier) Run(ctx context.Context, opts Options) (*Report, error) {
	crackmes, err := v.crackmeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("verifier: failed to list crackmes: %w", err)
	}

	report := &Report{Total: len(crackmes)}
	for i := range crackmes {
		cr := v.checkOne(ctx, &crackmes[i], opts, report)
		if cr == nil {
			continue
		}
		if cr.HasMismatch() {
			report.MismatchCount++
			if opts.Apply {
				if cr.RepairError != nil {
					report.RepairFailures++
				} else {
					report.Repaired++
				}
			}
		}
		if cr.HasMismatch() || len(cr.MissingRatings) > 0 {
			report.Crackmes = append(report.Crackmes, *cr)
		}
	}
	return report, nil
}

func (v *Verifier) checkOne(ctx context.Context, crackme *model.Crackme, opts Options, report *Report) *CrackmeReport {
	cr := &CrackmeReport{HexID: crackme.HexID, Name: crackme.Name}

	if opts.Ratings {
		if err := v.checkRatings(ctx, crackme, cr, report); err != nil {
			log.Printf("ERROR: crackme %s: %v", crackme.HexID, err)
			report.ReadFailures++
			return nil
		}
	}
	if opts.Counts {
		if err := v.checkCounts(ctx, crackme, cr); err != nil {
			log.Printf("ERROR: crackme %s: %v", crackme.HexID, err)
			report.ReadFailures++
			return nil
		}
	}

	if opts.Apply && cr.HasMismatch() {
		cr.RepairError = v.repair(ctx, crackme, cr)
		if cr.RepairError != nil {
			log.Printf("ERROR: failed to repair crackme %s: %v", crackme.HexID, cr.RepairError)
		}
	}
	return cr
}

func (v *Verifier) checkRatings(ctx context.Context, crackme *model.Crackme, cr *CrackmeReport, report *Report) error {
	kinds := []struct {
		kind   model.RatingKind
		stored float64
	}{
		{model.RatingDifficulty, crackme.Difficulty},
		{model.RatingQuality, crackme.Quality},
	}

	sawNaN := false
	for _, k := range kinds {
		ratings, err := v.ratingRepo.ListByCrackme(ctx, k.kind, crackme.HexID)
		if err != nil {
			return err
		}
		expected := Average(ratings)

		isNaN := math.IsNaN(k.stored)
		if isNaN {
			sawNaN = true
		}
		// A NaN always needs storing no matter how close the recomputed
		// value would otherwise be.
		if isNaN || math.Abs(k.stored-expected) > FloatTolerance {
			cr.RatingIssues = append(cr.RatingIssues, RatingIssue{
				Kind:     k.kind,
				Stored:   k.stored,
				Expected: expected,
				Count:    len(ratings),
				IsNaN:    isNaN,
			})
		}
		if len(ratings) == 0 {
			cr.MissingRatings = append(cr.MissingRatings, k.kind)
			switch k.kind {
			case model.RatingDifficulty:
				report.NoDifficulty++
			case model.RatingQuality:
				report.NoQuality++
			}
		}
	}
	if sawNaN {
		report.NaNCount++
	}
	return nil
}

func (v *Verifier) checkCounts(ctx context.Context, crackme *model.Crackme, cr *CrackmeReport) error {
	nbSolutions, err := v.solutionRepo.CountPublishedByCrackmeID(ctx, crackme.ID)
	if err != nil {
		return err
	}
	nbComments, err := v.commentRepo.CountPublishedByCrackme(ctx, crackme.HexID)
	if err != nil {
		return err
	}

	if nbSolutions != crackme.NbSolutions {
		cr.CountIssues = append(cr.CountIssues, CountIssue{Field: "nb_solutions", Stored: crackme.NbSolutions, Expected: nbSolutions})
	}
	if nbComments != crackme.NbComments {
		cr.CountIssues = append(cr.CountIssues, CountIssue{Field: "nb_comments", Stored: crackme.NbComments, Expected: nbComments})
	}
	return nil
}

func (v *Verifier) repair(ctx context.Context, crackme *model.Crackme, cr *CrackmeReport) error {
	for _, issue := range cr.RatingIssues {
		if err := v.crackmeRepo.UpdateAverage(ctx, crackme.HexID, issue.Kind, issue.Expected); err != nil {
			return err
		}
	}
	if len(cr.CountIssues) > 0 {
		// UpdateCounts writes both fields; the stored value carries through
		// for whichever one was not mismatched.
		nbSolutions, nbComments := crackme.NbSolutions, crackme.NbComments
		for _, issue := range cr.CountIssues {
			switch issue.Field {
			case "nb_solutions":
				nbSolutions = issue.Expected
			case "nb_comments":
				nbComments = issue.Expected
			}
		}
		if err := v.crackmeRepo.UpdateCounts(ctx, crackme.HexID, nbSolutions, nbComments); err != nil {
			return err
		}
	}
	return nil
}
