package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vietanh2810/callin-contest-api/internal/db"
	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/pkg/identity"
	"github.com/vietanh2810/callin-contest-api/internal/repository/dao"
)

func ptr[T any](v T) *T {
	return &v
}

func setupRepository(t *testing.T) *ParticipantRepository {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "contest.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))

	return NewParticipantRepository(dao.NewParticipantDAO(gdb), identity.NewHasher(bcrypt.MinCost))
}

// countingDAO fails the test if any storage call is made.
type countingDAO struct {
	ParticipantDAO
	calls int
}

func (c *countingDAO) FindByIdentifier(context.Context, string) (dao.Participant, error) {
	c.calls++
	return dao.Participant{}, dao.ErrParticipantNotFound
}

func (c *countingDAO) FindByID(context.Context, string) (dao.Participant, error) {
	c.calls++
	return dao.Participant{}, dao.ErrParticipantNotFound
}

// racingDAO reports the identifier as missing once, then refuses the insert
// as if another request created the row first.
type racingDAO struct {
	ParticipantDAO
	existing dao.Participant
	lookups  int
	inserts  int
	updated  map[string]interface{}
}

func (r *racingDAO) FindByIdentifier(context.Context, string) (dao.Participant, error) {
	r.lookups++
	if r.lookups == 1 {
		return dao.Participant{}, dao.ErrParticipantNotFound
	}
	return r.existing, nil
}

func (r *racingDAO) Insert(context.Context, dao.Participant) (dao.Participant, error) {
	r.inserts++
	return dao.Participant{}, dao.ErrIdentifierExists
}

func (r *racingDAO) Update(_ context.Context, id string, columns map[string]interface{}) (dao.Participant, error) {
	r.updated = columns
	p := r.existing
	if v, ok := columns["display_name"].(string); ok {
		p.DisplayName = v
	}
	return p, nil
}

func TestParticipantRepository_UpsertRetriesLostCreateAsUpdate(t *testing.T) {
	stub := &racingDAO{existing: dao.Participant{
		ID:         "p-1",
		Identifier: "123456789",
		Status:     string(domain.StatusActive),
		IsFamily:   false,
	}}
	repo := NewParticipantRepository(stub, identity.NewHasher(bcrypt.MinCost))

	got, created, err := repo.UpsertByIdentifier(context.Background(), "123456789", domain.ParticipantChanges{
		DisplayName: ptr("Ahmed"),
		Phone:       ptr("+212600000000"),
		IsFamily:    ptr(true),
	}, domain.PublicFields)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "p-1", got.ID)
	assert.Equal(t, "Ahmed", got.DisplayName)
	assert.False(t, got.IsFamily)

	assert.Equal(t, 1, stub.inserts)
	assert.Equal(t, 2, stub.lookups)
	assert.Equal(t, map[string]interface{}{
		"display_name": "Ahmed",
		"phone":        "+212600000000",
	}, stub.updated)
	assert.NotContains(t, stub.updated, "is_family")
}

func TestParticipantRepository_ConcurrentUpsertSameIdentifier(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	const submissions = 12
	var wg sync.WaitGroup
	errs := make(chan error, submissions)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _, err := repo.UpsertByIdentifier(ctx, "777777778", domain.ParticipantChanges{
				DisplayName: ptr("Caller"),
			}, domain.PublicFields)
			if err != nil {
				errs <- err
				return
			}
			if _, err = repo.IncrementHits(ctx, p.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, total, err := repo.List(ctx, domain.ParticipantFilter{}, domain.Page{Number: 1, Size: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(submissions), rows[0].HitCount)
}

func TestParticipantRepository_UpsertCreatesThenUpdates(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, isNew, err := repo.UpsertByIdentifier(ctx, "123456789", domain.ParticipantChanges{
		DisplayName: ptr("Ahmed"),
		IsFamily:    ptr(true),
	}, domain.PublicFields)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "Ahmed", created.DisplayName)
	assert.Equal(t, domain.StatusActive, created.Status)
	assert.True(t, created.IsFamily)
	assert.NotEqual(t, "123456789", created.IdentifierHash)
	assert.True(t, identity.NewHasher(bcrypt.MinCost).Verify("123456789", created.IdentifierHash))

	updated, isNew, err := repo.UpsertByIdentifier(ctx, "123456789", domain.ParticipantChanges{
		DisplayName: ptr("Ahmed M."),
		IsFamily:    ptr(false),
	}, domain.PublicFields)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ahmed M.", updated.DisplayName)
	assert.True(t, updated.IsFamily, "is_family is fixed at creation")
}

func TestParticipantRepository_UpsertIsIdempotentOnIdentity(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	const submissions = 5
	var id string
	for i := 0; i < submissions; i++ {
		p, _, err := repo.UpsertByIdentifier(ctx, "555555556", domain.ParticipantChanges{}, domain.PublicFields)
		require.NoError(t, err)
		if id == "" {
			id = p.ID
		}
		require.Equal(t, id, p.ID)

		_, err = repo.IncrementHits(ctx, p.ID)
		require.NoError(t, err)
	}

	found, err := repo.FindByIdentifier(ctx, "555555556")
	require.NoError(t, err)
	assert.Equal(t, int64(submissions), found.HitCount)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Participants)
}

func TestParticipantRepository_UnauthorizedWriteChangesNothing(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	before, _, err := repo.UpsertByIdentifier(ctx, "123456789", domain.ParticipantChanges{
		DisplayName: ptr("Ahmed"),
	}, domain.PublicFields)
	require.NoError(t, err)

	_, _, err = repo.UpsertByIdentifier(ctx, "123456789", domain.ParticipantChanges{
		DisplayName: ptr("Mallory"),
		IsWinner:    ptr(true),
	}, domain.PublicFields)
	require.ErrorIs(t, err, ErrUnauthorizedFieldWrite)

	after, err := repo.FindByID(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ahmed", after.DisplayName)
	assert.False(t, after.IsWinner)
}

func TestParticipantRepository_UnauthorizedWriteReadsNothing(t *testing.T) {
	fake := &countingDAO{}
	repo := NewParticipantRepository(fake, identity.NewHasher(bcrypt.MinCost))
	ctx := context.Background()

	_, _, err := repo.UpsertByIdentifier(ctx, "123456789", domain.ParticipantChanges{
		IsSelected: ptr(true),
	}, domain.PublicFields)
	assert.ErrorIs(t, err, ErrUnauthorizedFieldWrite)

	_, err = repo.Update(ctx, "some-id", domain.ParticipantChanges{
		IsFamily: ptr(true),
	}, domain.AdminFields)
	assert.ErrorIs(t, err, ErrUnauthorizedFieldWrite)

	assert.Zero(t, fake.calls)
}

func TestParticipantRepository_AdminUpdate(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	p, _, err := repo.UpsertByIdentifier(ctx, "123456789", domain.ParticipantChanges{}, domain.PublicFields)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, p.ID, domain.ParticipantChanges{
		IsWinner: ptr(true),
		Status:   ptr(domain.StatusBlocked),
	}, domain.AdminFields)
	require.NoError(t, err)
	assert.True(t, updated.IsWinner)
	require.NotNil(t, updated.WonAt)
	assert.Equal(t, domain.StatusBlocked, updated.Status)

	reset, err := repo.Update(ctx, p.ID, domain.ParticipantChanges{IsWinner: ptr(false)}, domain.AdminFields)
	require.NoError(t, err)
	assert.False(t, reset.IsWinner)
	assert.Nil(t, reset.WonAt)

	_, err = repo.Update(ctx, "missing", domain.ParticipantChanges{IsSelected: ptr(true)}, domain.AdminFields)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestParticipantRepository_ListAndDelete(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	for _, id := range []string{"100000001", "100000002", "100000003"} {
		_, _, err := repo.UpsertByIdentifier(ctx, id, domain.ParticipantChanges{}, domain.PublicFields)
		require.NoError(t, err)
	}

	page, total, err := repo.List(ctx, domain.ParticipantFilter{}, domain.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)

	require.NoError(t, repo.Delete(ctx, page[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, page[0].ID), ErrParticipantNotFound)

	eligible, err := repo.ListEligible(ctx)
	require.NoError(t, err)
	assert.Len(t, eligible, 2)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) {
	return "", errors.New("hasher down")
}

func TestParticipantRepository_HashFailureAbortsCreate(t *testing.T) {
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "contest.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))
	repo := NewParticipantRepository(dao.NewParticipantDAO(gdb), failingHasher{})

	_, _, err = repo.UpsertByIdentifier(context.Background(), "123456789", domain.ParticipantChanges{}, domain.PublicFields)
	require.Error(t, err)

	_, err = repo.FindByIdentifier(context.Background(), "123456789")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestParticipantRepository_PromoteWinner(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	p, _, err := repo.UpsertByIdentifier(ctx, "123456789", domain.ParticipantChanges{}, domain.PublicFields)
	require.NoError(t, err)

	count, err := repo.CountEligible(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	at, err := repo.FindEligibleAt(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, p.ID, at.ID)

	winner, ok, err := repo.PromoteWinner(ctx, at)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, winner.IsWinner)
	require.NotNil(t, winner.WonAt)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsWinner)
	require.NotNil(t, stored.WonAt)
	assert.WithinDuration(t, *winner.WonAt, *stored.WonAt, time.Second)

	_, ok, err = repo.PromoteWinner(ctx, at)
	require.NoError(t, err)
	assert.False(t, ok)

	count, err = repo.CountEligible(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
