package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
	"crackmehub/internal/platform/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCrackmeStartsPending(t *testing.T) {
	crackmeRepo := newFakeCrackmeRepo()
	root := t.TempDir()
	svc := NewCrackmeService(crackmeRepo, storage.New(root))

	req := CreateCrackmeRequest{
		Name: "Keygen Me #3", Info: "find the serial",
		Lang: "C", Arch: "x86-64", Platform: "linux",
	}
	crackme, err := svc.Create(context.Background(), "alice", req, "keygenme3.zip", strings.NewReader("binary bytes"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, crackme.Status)
	assert.Equal(t, "keygen-me-3", crackme.Slug)
	assert.NotEmpty(t, crackme.HexID)
	assert.NotContains(t, crackme.HexID, "-")

	// The artifact lands under the moderation-addressable stored name.
	storedName := storage.StoredName("alice", crackme.HexID, "keygenme3.zip")
	data, err := os.ReadFile(filepath.Join(root, ArtifactKindCrackme, storedName))
	require.NoError(t, err)
	assert.Equal(t, "binary bytes", string(data))

	// Pending crackmes stay off the public listing.
	listed, total, err := svc.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, listed)
}

func TestCreateCrackmeRequiresArtifact(t *testing.T) {
	svc := NewCrackmeService(newFakeCrackmeRepo(), storage.New(t.TempDir()))

	req := CreateCrackmeRequest{
		Name: "Keygen Me", Info: "find the serial",
		Lang: "C", Arch: "x86-64", Platform: "linux",
	}
	_, err := svc.Create(context.Background(), "alice", req, "", nil)
	require.ErrorIs(t, err, common.ErrBadRequest)
}

func TestCreateCrackmeValidation(t *testing.T) {
	svc := NewCrackmeService(newFakeCrackmeRepo(), storage.New(t.TempDir()))

	_, err := svc.Create(context.Background(), "alice", CreateCrackmeRequest{Name: "ab"}, "f.zip", strings.NewReader("x"))
	require.ErrorIs(t, err, common.ErrValidation)

	violations := common.ViolationsFromError(err)
	assert.NotEmpty(t, violations)
}

func TestSearchRequiresTerm(t *testing.T) {
	svc := NewCrackmeService(newFakeCrackmeRepo(), storage.New(t.TempDir()))

	_, _, err := svc.Search(context.Background(), "", 1, 20)
	require.ErrorIs(t, err, common.ErrBadRequest)
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = pageBounds(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, _ = pageBounds(1, 1000)
	assert.Equal(t, 20, limit)
}
