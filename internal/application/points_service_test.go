package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/glowcast/glowcast/internal/domain/repository"
)

func newPointsFixture(t *testing.T) (*PointsService, *Service, *fakeUserRepo) {
	t.Helper()
	s, f := newTestService(t)
	return NewPointsService(f, quietLogger()), s, f
}

func TestCreditAndDebit(t *testing.T) {
	ps, s, _ := newPointsFixture(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	balance, err := ps.Credit(ctx, u.ID, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 50, balance)

	balance, err = ps.Debit(ctx, u.ID, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 20, balance)

	balance, err = ps.Balance(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 20, balance)
}

func TestDebitInsufficientLeavesBalance(t *testing.T) {
	ps, s, _ := newPointsFixture(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	_, err := ps.Credit(ctx, u.ID, 20)
	require.NoError(t, err)

	_, err = ps.Debit(ctx, u.ID, 21)
	assert.ErrorIs(t, err, repo.ErrInsufficientPoints)

	balance, err := ps.Balance(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 20, balance, "failed debit must not move the balance")
}

func TestPointsRejectNonPositiveAmounts(t *testing.T) {
	ps, s, _ := newPointsFixture(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	for _, amount := range []int64{0, -1, -100} {
		_, err := ps.Credit(ctx, u.ID, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = ps.Debit(ctx, u.ID, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestPointsUnknownUser(t *testing.T) {
	ps, _, _ := newPointsFixture(t)
	ctx := context.Background()

	_, err := ps.Credit(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = ps.Balance(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// Concurrent credits to one identity must not lose updates.
func TestConcurrentCreditsLoseNothing(t *testing.T) {
	ps, s, _ := newPointsFixture(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := ps.Credit(ctx, u.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := ps.Balance(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, workers, balance)
}

func TestTransfer(t *testing.T) {
	ps, s, f := newPointsFixture(t)
	from := mustRegister(t, s, "viewer", "viewer@example.com", "hunter22")
	to := mustRegister(t, s, "streamer", "streamer@example.com", "hunter22")
	ctx := context.Background()

	_, err := ps.Credit(ctx, from.ID, 100)
	require.NoError(t, err)

	require.NoError(t, ps.Transfer(ctx, from.ID, to.ID, 40))

	fromBal, _ := ps.Balance(ctx, from.ID)
	toBal, _ := ps.Balance(ctx, to.ID)
	assert.EqualValues(t, 60, fromBal)
	assert.EqualValues(t, 40, toBal)

	dest, err := f.GetByID(ctx, to.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 40, dest.Stream.Received, "tips count toward the goal")
}

func TestTransferRejectsSelfAndBadAmount(t *testing.T) {
	ps, s, _ := newPointsFixture(t)
	u := mustRegister(t, s, "alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	assert.ErrorIs(t, ps.Transfer(ctx, u.ID, u.ID, 10), ErrInvalidAmount)
	assert.ErrorIs(t, ps.Transfer(ctx, u.ID, "other", 0), ErrInvalidAmount)
}

func TestTransferInsufficientSource(t *testing.T) {
	ps, s, _ := newPointsFixture(t)
	from := mustRegister(t, s, "viewer", "viewer@example.com", "hunter22")
	to := mustRegister(t, s, "streamer", "streamer@example.com", "hunter22")
	ctx := context.Background()

	_, err := ps.Credit(ctx, from.ID, 5)
	require.NoError(t, err)

	assert.ErrorIs(t, ps.Transfer(ctx, from.ID, to.ID, 10), repo.ErrInsufficientPoints)

	fromBal, _ := ps.Balance(ctx, from.ID)
	toBal, _ := ps.Balance(ctx, to.ID)
	assert.EqualValues(t, 5, fromBal)
	assert.EqualValues(t, 0, toBal)
}

// A credit failure after a successful debit must refund the source, and the
// refund must not inflate the source's received counter.
func TestTransferCompensatesFailedCredit(t *testing.T) {
	ps, s, f := newPointsFixture(t)
	from := mustRegister(t, s, "viewer", "viewer@example.com", "hunter22")
	ctx := context.Background()

	_, err := ps.Credit(ctx, from.ID, 100)
	require.NoError(t, err)
	before, err := f.GetByID(ctx, from.ID)
	require.NoError(t, err)

	err = ps.Transfer(ctx, from.ID, "missing-user", 40)
	assert.ErrorIs(t, err, ErrUserNotFound)

	after, err := f.GetByID(ctx, from.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 100, after.Points, "debit compensated")
	assert.Equal(t, before.Stream.Received, after.Stream.Received, "refund must not count as received")
}
