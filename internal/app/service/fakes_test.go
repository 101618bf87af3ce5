package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
)

// In-memory repository fakes. They ignore the transaction argument of the
// hard-delete methods; the cascade tests only care about which rows go away.

type fakeCrackmeRepo struct {
	crackmes map[string]*model.Crackme // keyed by hexid
	findErr  error
	avgErr   error
}

func newFakeCrackmeRepo(crackmes ...*model.Crackme) *fakeCrackmeRepo {
	r := &fakeCrackmeRepo{crackmes: make(map[string]*model.Crackme)}
	for _, c := range crackmes {
		r.crackmes[c.HexID] = c
	}
	return r
}

func (r *fakeCrackmeRepo) Create(ctx context.Context, c *model.Crackme) error {
	r.crackmes[c.HexID] = c
	return nil
}

func (r *fakeCrackmeRepo) FindByHexID(ctx context.Context, hexID string) (*model.Crackme, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.crackmes[hexID]
	if !ok || c.Status == model.StatusDeleted {
		return nil, common.ErrNotFound
	}
	return c, nil
}

func (r *fakeCrackmeRepo) FindByID(ctx context.Context, id string) (*model.Crackme, error) {
	for _, c := range r.crackmes {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeCrackmeRepo) ListPublished(ctx context.Context, limit, offset int) ([]model.Crackme, int, error) {
	var out []model.Crackme
	for _, c := range r.crackmes {
		if c.Status == model.StatusPublished {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (r *fakeCrackmeRepo) ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Crackme, error) {
	var out []model.Crackme
	for _, c := range r.crackmes {
		if c.Author == author {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCrackmeRepo) Search(ctx context.Context, term string, limit, offset int) ([]model.Crackme, int, error) {
	var out []model.Crackme
	for _, c := range r.crackmes {
		if c.Status == model.StatusPublished && strings.Contains(c.Name, term) {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (r *fakeCrackmeRepo) ListAll(ctx context.Context) ([]model.Crackme, error) {
	var out []model.Crackme
	for _, c := range r.crackmes {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCrackmeRepo) UpdateStatus(ctx context.Context, hexID string, status model.Status) error {
	c, ok := r.crackmes[hexID]
	if !ok {
		return common.ErrNotFound
	}
	c.Status = status
	return nil
}

func (r *fakeCrackmeRepo) UpdateAverage(ctx context.Context, hexID string, kind model.RatingKind, value float64) error {
	if r.avgErr != nil {
		return r.avgErr
	}
	c, ok := r.crackmes[hexID]
	if !ok {
		return common.ErrNotFound
	}
	switch kind {
	case model.RatingDifficulty:
		c.Difficulty = value
	case model.RatingQuality:
		c.Quality = value
	}
	return nil
}

func (r *fakeCrackmeRepo) UpdateCounts(ctx context.Context, hexID string, nbSolutions, nbComments int) error {
	c, ok := r.crackmes[hexID]
	if !ok {
		return common.ErrNotFound
	}
	c.NbSolutions = nbSolutions
	c.NbComments = nbComments
	return nil
}

func (r *fakeCrackmeRepo) HardDelete(ctx context.Context, tx *sql.Tx, id string) error {
	for hexID, c := range r.crackmes {
		if c.ID == id {
			delete(r.crackmes, hexID)
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeRatingRepo struct {
	ratings   []model.Rating
	insertErr error
}

func (r *fakeRatingRepo) Insert(ctx context.Context, rating *model.Rating) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	for _, existing := range r.ratings {
		if existing.Kind == rating.Kind && existing.Author == rating.Author &&
			existing.CrackmeHexID == rating.CrackmeHexID && existing.Status != model.StatusDeleted {
			return common.ErrAlreadyRated
		}
	}
	r.ratings = append(r.ratings, *rating)
	return nil
}

func (r *fakeRatingRepo) Exists(ctx context.Context, kind model.RatingKind, author, crackmeHexID string) (bool, error) {
	for _, existing := range r.ratings {
		if existing.Kind == kind && existing.Author == author &&
			existing.CrackmeHexID == crackmeHexID && existing.Status != model.StatusDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRatingRepo) Summary(ctx context.Context, kind model.RatingKind, crackmeHexID string) (model.RatingSummary, error) {
	sum, count := 0, 0
	for _, existing := range r.ratings {
		if existing.Kind == kind && existing.CrackmeHexID == crackmeHexID && existing.Status == model.StatusPublished {
			sum += existing.Rating
			count++
		}
	}
	if count == 0 {
		return model.RatingSummary{Average: 0.0, Count: 0}, nil
	}
	return model.RatingSummary{Average: float64(sum) / float64(count), Count: count}, nil
}

func (r *fakeRatingRepo) ListByCrackme(ctx context.Context, kind model.RatingKind, crackmeHexID string) ([]model.Rating, error) {
	var out []model.Rating
	for _, existing := range r.ratings {
		if existing.Kind == kind && existing.CrackmeHexID == crackmeHexID && existing.Status == model.StatusPublished {
			out = append(out, existing)
		}
	}
	return out, nil
}

func (r *fakeRatingRepo) HardDeleteByCrackme(ctx context.Context, tx *sql.Tx, kind model.RatingKind, crackmeHexID string) (int, error) {
	var kept []model.Rating
	removed := 0
	for _, existing := range r.ratings {
		if existing.Kind == kind && existing.CrackmeHexID == crackmeHexID {
			removed++
			continue
		}
		kept = append(kept, existing)
	}
	r.ratings = kept
	return removed, nil
}

type fakeSolutionRepo struct {
	solutions []model.Solution
}

func (r *fakeSolutionRepo) Create(ctx context.Context, s *model.Solution) error {
	r.solutions = append(r.solutions, *s)
	return nil
}

func (r *fakeSolutionRepo) FindByHexID(ctx context.Context, hexID string) (*model.Solution, error) {
	for i := range r.solutions {
		if r.solutions[i].HexID == hexID {
			s := r.solutions[i]
			return &s, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeSolutionRepo) ListByCrackmeID(ctx context.Context, crackmeID string, limit, offset int) ([]model.Solution, error) {
	var out []model.Solution
	for _, s := range r.solutions {
		if s.CrackmeID == crackmeID && s.Status == model.StatusPublished {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSolutionRepo) ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Solution, error) {
	var out []model.Solution
	for _, s := range r.solutions {
		if s.Author == author {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSolutionRepo) CountPublishedByCrackmeID(ctx context.Context, crackmeID string) (int, error) {
	count := 0
	for _, s := range r.solutions {
		if s.CrackmeID == crackmeID && s.Status == model.StatusPublished {
			count++
		}
	}
	return count, nil
}

func (r *fakeSolutionRepo) UpdateStatus(ctx context.Context, hexID string, status model.Status) error {
	for i := range r.solutions {
		if r.solutions[i].HexID == hexID {
			r.solutions[i].Status = status
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeSolutionRepo) HardDelete(ctx context.Context, tx *sql.Tx, id string) error {
	for i := range r.solutions {
		if r.solutions[i].ID == id {
			r.solutions = append(r.solutions[:i], r.solutions[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeSolutionRepo) HardDeleteByCrackmeID(ctx context.Context, tx *sql.Tx, crackmeID string) (int, error) {
	var kept []model.Solution
	removed := 0
	for _, s := range r.solutions {
		if s.CrackmeID == crackmeID {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	r.solutions = kept
	return removed, nil
}

type fakeCommentRepo struct {
	comments []model.Comment
}

func (r *fakeCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	r.comments = append(r.comments, *c)
	return nil
}

func (r *fakeCommentRepo) ListByCrackme(ctx context.Context, crackmeHexID string, limit, offset int) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range r.comments {
		if c.CrackmeHexID == crackmeHexID && c.Status == model.StatusPublished {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range r.comments {
		if c.Author == author {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Recent(ctx context.Context, limit int) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range r.comments {
		if c.Status == model.StatusPublished {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCommentRepo) CountPublishedByCrackme(ctx context.Context, crackmeHexID string) (int, error) {
	count := 0
	for _, c := range r.comments {
		if c.CrackmeHexID == crackmeHexID && c.Status == model.StatusPublished {
			count++
		}
	}
	return count, nil
}

func (r *fakeCommentRepo) HardDeleteByCrackme(ctx context.Context, tx *sql.Tx, crackmeHexID string) (int, error) {
	var kept []model.Comment
	removed := 0
	for _, c := range r.comments {
		if c.CrackmeHexID == crackmeHexID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return removed, nil
}

type fakeUserRepo struct {
	users map[string]*model.User // keyed by name
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		r.users[u.Name] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	if _, ok := r.users[u.Name]; ok {
		return common.ErrConflict
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return common.ErrConflict
		}
	}
	// Store and return copies so callers mutating a user after Create or
	// Find don't alias the stored row, matching a real database repo.
	stored := *u
	r.users[u.Name] = &stored
	return nil
}

func (r *fakeUserRepo) FindByName(ctx context.Context, name string) (*model.User, error) {
	u, ok := r.users[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByHexID(ctx context.Context, hexID string) (*model.User, error) {
	for _, u := range r.users {
		if u.HexID == hexID {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) AdjustCounts(ctx context.Context, name string, dCrackmes, dSolutions, dComments int) error {
	u, ok := r.users[name]
	if !ok {
		return common.ErrNotFound
	}
	u.NbCrackmes += dCrackmes
	u.NbSolutions += dSolutions
	u.NbComments += dComments
	return nil
}

type fakeNotificationRepo struct {
	notifications []model.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userName string, limit, offset int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range r.notifications {
		if n.UserName == userName {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnseen(ctx context.Context, userName string) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.UserName == userName && !n.Seen {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkSeen(ctx context.Context, hexID, userName string) error {
	for i := range r.notifications {
		if r.notifications[i].HexID == hexID && r.notifications[i].UserName == userName {
			r.notifications[i].Seen = true
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllSeen(ctx context.Context, userName string) error {
	for i := range r.notifications {
		if r.notifications[i].UserName == userName {
			r.notifications[i].Seen = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, hexID, userName string) error {
	for i := range r.notifications {
		if r.notifications[i].HexID == hexID && r.notifications[i].UserName == userName {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeRecountQueue struct {
	enqueued []string
	err      error
}

func (q *fakeRecountQueue) EnqueueRecount(ctx context.Context, crackmeHexID string) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, crackmeHexID)
	return nil
}

// noopDB returns a *sql.DB whose transactions succeed without touching a
// real database. The repository fakes ignore the tx handle entirely.
func noopDB() *sql.DB {
	return sql.OpenDB(noopConnector{})
}

type noopConnector struct{}

func (noopConnector) Connect(context.Context) (driver.Conn, error) { return noopConn{}, nil }
func (noopConnector) Driver() driver.Driver                        { return noopDriver{} }

type noopDriver struct{}

func (noopDriver) Open(string) (driver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (noopConn) Close() error                        { return nil }
func (noopConn) Begin() (driver.Tx, error)           { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
