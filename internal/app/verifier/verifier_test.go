package verifier

import (
	"context"
	"errors"
	"math"
	"testing"

	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fakes embed the repository interfaces so only the methods the
// verifier touches need implementations.

type fakeCrackmeRepo struct {
	repository.CrackmeRepository
	crackmes  []model.Crackme
	avgErrFor map[string]error // hexid -> error forced on UpdateAverage
}

func (r *fakeCrackmeRepo) ListAll(ctx context.Context) ([]model.Crackme, error) {
	out := make([]model.Crackme, len(r.crackmes))
	copy(out, r.crackmes)
	return out, nil
}

func (r *fakeCrackmeRepo) UpdateAverage(ctx context.Context, hexID string, kind model.RatingKind, value float64) error {
	if err := r.avgErrFor[hexID]; err != nil {
		return err
	}
	for i := range r.crackmes {
		if r.crackmes[i].HexID != hexID {
			continue
		}
		switch kind {
		case model.RatingDifficulty:
			r.crackmes[i].Difficulty = value
		case model.RatingQuality:
			r.crackmes[i].Quality = value
		}
	}
	return nil
}

func (r *fakeCrackmeRepo) UpdateCounts(ctx context.Context, hexID string, nbSolutions, nbComments int) error {
	for i := range r.crackmes {
		if r.crackmes[i].HexID == hexID {
			r.crackmes[i].NbSolutions = nbSolutions
			r.crackmes[i].NbComments = nbComments
		}
	}
	return nil
}

func (r *fakeCrackmeRepo) get(hexID string) *model.Crackme {
	for i := range r.crackmes {
		if r.crackmes[i].HexID == hexID {
			return &r.crackmes[i]
		}
	}
	return nil
}

type fakeRatingRepo struct {
	repository.RatingRepository
	ratings []model.Rating
}

func (r *fakeRatingRepo) ListByCrackme(ctx context.Context, kind model.RatingKind, crackmeHexID string) ([]model.Rating, error) {
	var out []model.Rating
	for _, rating := range r.ratings {
		if rating.Kind == kind && rating.CrackmeHexID == crackmeHexID && rating.Status == model.StatusPublished {
			out = append(out, rating)
		}
	}
	return out, nil
}

type fakeSolutionRepo struct {
	repository.SolutionRepository
	countFor map[string]int // crackme internal id -> published solutions
}

func (r *fakeSolutionRepo) CountPublishedByCrackmeID(ctx context.Context, crackmeID string) (int, error) {
	return r.countFor[crackmeID], nil
}

type fakeCommentRepo struct {
	repository.CommentRepository
	countFor map[string]int // crackme hexid -> published comments
}

func (r *fakeCommentRepo) CountPublishedByCrackme(ctx context.Context, crackmeHexID string) (int, error) {
	return r.countFor[crackmeHexID], nil
}

func ratingsOf(kind model.RatingKind, crackmeHexID string, values ...int) []model.Rating {
	out := make([]model.Rating, 0, len(values))
	for _, v := range values {
		out = append(out, model.Rating{
			Kind: kind, CrackmeHexID: crackmeHexID,
			Rating: v, Status: model.StatusPublished,
		})
	}
	return out
}

func newVerifier(crackmeRepo *fakeCrackmeRepo, ratingRepo *fakeRatingRepo, solutionRepo *fakeSolutionRepo, commentRepo *fakeCommentRepo) *Verifier {
	if solutionRepo == nil {
		solutionRepo = &fakeSolutionRepo{}
	}
	if commentRepo == nil {
		commentRepo = &fakeCommentRepo{}
	}
	return New(crackmeRepo, ratingRepo, solutionRepo, commentRepo)
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 0.0, Average([]model.Rating{}))
	assert.InDelta(t, 4.0, Average(ratingsOf(model.RatingDifficulty, "x", 3, 4, 5)), 0.0001)
	assert.InDelta(t, 1.0, Average(ratingsOf(model.RatingDifficulty, "x", 1)), 0.0001)
}

func TestRunDetectsRatingDrift(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{crackmes: []model.Crackme{
		{ID: "id-1", HexID: "a", Name: "one", Difficulty: 2.5, Quality: 4.0},
	}}
	ratingRepo := &fakeRatingRepo{ratings: append(
		ratingsOf(model.RatingDifficulty, "a", 3, 4, 5),
		ratingsOf(model.RatingQuality, "a", 4)...,
	)}
	v := newVerifier(crackmeRepo, ratingRepo, nil, nil)

	report, err := v.Run(context.Background(), Options{Ratings: true})
	require.NoError(t, err)

	assert.True(t, report.Drift())
	assert.Equal(t, 1, report.MismatchCount)
	require.Len(t, report.Crackmes, 1)
	require.Len(t, report.Crackmes[0].RatingIssues, 1)
	issue := report.Crackmes[0].RatingIssues[0]
	assert.Equal(t, model.RatingDifficulty, issue.Kind)
	assert.InDelta(t, 2.5, issue.Stored, 0.0001)
	assert.InDelta(t, 4.0, issue.Expected, 0.0001)
	assert.Equal(t, 3, issue.Count)

	// Dry-run must not touch the stored value.
	assert.InDelta(t, 2.5, crackmeRepo.get("a").Difficulty, 0.0001)
}

func TestRunWithinTolerance(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{crackmes: []model.Crackme{
		{ID: "id-1", HexID: "a", Name: "one", Difficulty: 4.0005, Quality: 4.0},
	}}
	ratingRepo := &fakeRatingRepo{ratings: append(
		ratingsOf(model.RatingDifficulty, "a", 4),
		ratingsOf(model.RatingQuality, "a", 4)...,
	)}
	v := newVerifier(crackmeRepo, ratingRepo, nil, nil)

	report, err := v.Run(context.Background(), Options{Ratings: true})
	require.NoError(t, err)

	assert.False(t, report.Drift())
	assert.Zero(t, report.MismatchCount)
}

func TestRunFlagsNaN(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{crackmes: []model.Crackme{
		{ID: "id-1", HexID: "a", Name: "one", Difficulty: math.NaN(), Quality: 0.0},
	}}
	v := newVerifier(crackmeRepo, &fakeRatingRepo{}, nil, nil)

	report, err := v.Run(context.Background(), Options{Ratings: true, Apply: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.NaNCount)
	assert.Equal(t, 1, report.MismatchCount)
	require.Len(t, report.Crackmes, 1)
	require.NotEmpty(t, report.Crackmes[0].RatingIssues)
	assert.True(t, report.Crackmes[0].RatingIssues[0].IsNaN)

	// The repair replaces the NaN with the empty-set average.
	assert.Equal(t, 0.0, crackmeRepo.get("a").Difficulty)
}

func TestRunNoRatingsIsNotDrift(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{crackmes: []model.Crackme{
		{ID: "id-1", HexID: "a", Name: "one", Difficulty: 0.0, Quality: 0.0},
	}}
	v := newVerifier(crackmeRepo, &fakeRatingRepo{}, nil, nil)

	report, err := v.Run(context.Background(), Options{Ratings: true})
	require.NoError(t, err)

	assert.False(t, report.Drift())
	assert.Equal(t, 1, report.NoDifficulty)
	assert.Equal(t, 1, report.NoQuality)
	require.Len(t, report.Crackmes, 1)
	assert.ElementsMatch(t,
		[]model.RatingKind{model.RatingDifficulty, model.RatingQuality},
		report.Crackmes[0].MissingRatings)
}

func TestRunRepairsCounts(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{crackmes: []model.Crackme{
		{ID: "id-1", HexID: "a", Name: "one", NbSolutions: 2, NbComments: 5},
	}}
	solutionRepo := &fakeSolutionRepo{countFor: map[string]int{"id-1": 2}}
	commentRepo := &fakeCommentRepo{countFor: map[string]int{"a": 3}}
	v := newVerifier(crackmeRepo, &fakeRatingRepo{}, solutionRepo, commentRepo)
	ctx := context.Background()

	report, err := v.Run(ctx, Options{Counts: true, Apply: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.MismatchCount)
	assert.Equal(t, 1, report.Repaired)
	require.Len(t, report.Crackmes, 1)
	require.Len(t, report.Crackmes[0].CountIssues, 1)
	assert.Equal(t, "nb_comments", report.Crackmes[0].CountIssues[0].Field)

	// nb_solutions agreed and must carry through the combined write.
	assert.Equal(t, 2, crackmeRepo.get("a").NbSolutions)
	assert.Equal(t, 3, crackmeRepo.get("a").NbComments)

	// A second run over the repaired data finds nothing.
	report, err = v.Run(ctx, Options{Counts: true})
	require.NoError(t, err)
	assert.False(t, report.Drift())
}

func TestRunRepairAndRerunRatings(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{crackmes: []model.Crackme{
		{ID: "id-1", HexID: "a", Name: "one", Difficulty: 1.0, Quality: 3.0},
	}}
	ratingRepo := &fakeRatingRepo{ratings: append(
		ratingsOf(model.RatingDifficulty, "a", 3, 4, 5),
		ratingsOf(model.RatingQuality, "a", 3)...,
	)}
	v := newVerifier(crackmeRepo, ratingRepo, nil, nil)
	ctx := context.Background()

	report, err := v.Run(ctx, Options{Ratings: true, Apply: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)
	assert.InDelta(t, 4.0, crackmeRepo.get("a").Difficulty, 0.0001)

	report, err = v.Run(ctx, Options{Ratings: true})
	require.NoError(t, err)
	assert.False(t, report.Drift())
}

func TestRunRepairFailureContinues(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{
		crackmes: []model.Crackme{
			{ID: "id-1", HexID: "a", Name: "one", Difficulty: 1.0},
			{ID: "id-2", HexID: "b", Name: "two", Difficulty: 1.0},
		},
		avgErrFor: map[string]error{"a": errors.New("write refused")},
	}
	ratingRepo := &fakeRatingRepo{ratings: append(
		ratingsOf(model.RatingDifficulty, "a", 5),
		ratingsOf(model.RatingDifficulty, "b", 5)...,
	)}
	v := newVerifier(crackmeRepo, ratingRepo, nil, nil)

	report, err := v.Run(context.Background(), Options{Ratings: true, Apply: true})
	require.NoError(t, err)

	assert.Equal(t, 2, report.MismatchCount)
	assert.Equal(t, 1, report.Repaired)
	assert.Equal(t, 1, report.RepairFailures)
	assert.InDelta(t, 1.0, crackmeRepo.get("a").Difficulty, 0.0001)
	assert.InDelta(t, 5.0, crackmeRepo.get("b").Difficulty, 0.0001)
}
