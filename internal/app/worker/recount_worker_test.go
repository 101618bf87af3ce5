package worker

import (
	"context"
	"testing"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCrackmeRepo struct {
	repository.CrackmeRepository
	crackme      *model.Crackme
	countsWrites int
}

func (r *fakeCrackmeRepo) FindByHexID(ctx context.Context, hexID string) (*model.Crackme, error) {
	if r.crackme == nil || r.crackme.HexID != hexID {
		return nil, common.ErrNotFound
	}
	c := *r.crackme
	return &c, nil
}

func (r *fakeCrackmeRepo) UpdateCounts(ctx context.Context, hexID string, nbSolutions, nbComments int) error {
	r.countsWrites++
	r.crackme.NbSolutions = nbSolutions
	r.crackme.NbComments = nbComments
	return nil
}

type fakeSolutionRepo struct {
	repository.SolutionRepository
	count int
}

func (r *fakeSolutionRepo) CountPublishedByCrackmeID(ctx context.Context, crackmeID string) (int, error) {
	return r.count, nil
}

type fakeCommentRepo struct {
	repository.CommentRepository
	count int
}

func (r *fakeCommentRepo) CountPublishedByCrackme(ctx context.Context, crackmeHexID string) (int, error) {
	return r.count, nil
}

func TestRecountRewritesStaleCounters(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{crackme: &model.Crackme{
		ID: "id-1", HexID: "abc123", NbSolutions: 0, NbComments: 7,
	}}
	w := NewRecountWorker(nil, crackmeRepo, &fakeSolutionRepo{count: 2}, &fakeCommentRepo{count: 3})

	require.NoError(t, w.Recount(context.Background(), "abc123"))

	assert.Equal(t, 1, crackmeRepo.countsWrites)
	assert.Equal(t, 2, crackmeRepo.crackme.NbSolutions)
	assert.Equal(t, 3, crackmeRepo.crackme.NbComments)
}

func TestRecountSkipsWriteWhenCurrent(t *testing.T) {
	crackmeRepo := &fakeCrackmeRepo{crackme: &model.Crackme{
		ID: "id-1", HexID: "abc123", NbSolutions: 2, NbComments: 3,
	}}
	w := NewRecountWorker(nil, crackmeRepo, &fakeSolutionRepo{count: 2}, &fakeCommentRepo{count: 3})

	require.NoError(t, w.Recount(context.Background(), "abc123"))
	assert.Zero(t, crackmeRepo.countsWrites)
}

func TestRecountToleratesDeletedCrackme(t *testing.T) {
	w := NewRecountWorker(nil, &fakeCrackmeRepo{}, &fakeSolutionRepo{}, &fakeCommentRepo{})

	// Deleted between enqueue and pop; the entry is simply dropped.
	require.NoError(t, w.Recount(context.Background(), "gone"))
}
