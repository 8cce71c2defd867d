package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
)

func activeSub(account uuid.UUID, endsAt int64) *db_models.Subscription {
	return &db_models.Subscription{
		AccountID: account,
		PlanID:    uuid.New(),
		Status:    db_models.SubStatusActive,
		StartsAt:  endsAt - 30*24*3600,
		EndsAt:    endsAt,
		Payments: []db_models.Payment{{
			AccountID:     account,
			Amount:        decimal.NewFromInt(599),
			Method:        db_models.PaymentMethodUPI,
			TransactionID: "txn_1",
			Status:        db_models.PaymentStatusSuccess,
		}},
	}
}

func TestMemorySubscriptionCreateRejectsSecondActive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySubscriptionRepository()
	account := uuid.New()

	first := activeSub(account, 1000)
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, first.ID, first.Payments[0].SubscriptionID)
	assert.NotEqual(t, uuid.Nil, first.Payments[0].ID)

	assert.ErrorIs(t, repo.Create(ctx, activeSub(account, 2000)), ErrDuplicateKey)

	// another account is unaffected
	require.NoError(t, repo.Create(ctx, activeSub(uuid.New(), 1000)))

	first.Status = db_models.SubStatusCancelled
	require.NoError(t, repo.Update(ctx, first))
	require.NoError(t, repo.Create(ctx, activeSub(account, 3000)))
}

func TestMemorySubscriptionReads(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySubscriptionRepository()
	account := uuid.New()

	old := activeSub(account, 1000)
	require.NoError(t, repo.Create(ctx, old))
	old.Status = db_models.SubStatusExpired
	require.NoError(t, repo.Update(ctx, old))

	current := activeSub(account, 5000)
	require.NoError(t, repo.Create(ctx, current))

	found, err := repo.FindActiveByAccount(ctx, account)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, current.ID, found.ID)

	none, err := repo.FindActiveByAccount(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)

	history, err := repo.ListByAccount(ctx, account)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, current.ID, history[0].ID)
	assert.Equal(t, old.ID, history[1].ID)
	assert.Equal(t, db_models.SubStatusExpired, history[1].Status)
}

func TestMemorySubscriptionReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySubscriptionRepository()
	account := uuid.New()
	require.NoError(t, repo.Create(ctx, activeSub(account, 1000)))

	found, err := repo.FindActiveByAccount(ctx, account)
	require.NoError(t, err)
	found.Payments[0].TransactionID = "tampered"
	found.EndsAt = 1

	again, err := repo.FindActiveByAccount(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, "txn_1", again.Payments[0].TransactionID)
	assert.Equal(t, int64(1000), again.EndsAt)
}

func TestMemorySubscriptionPaymentsAndMissingRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySubscriptionRepository()
	account := uuid.New()
	sub := activeSub(account, 1000)
	require.NoError(t, repo.Create(ctx, sub))

	require.NoError(t, repo.AppendPayment(ctx, &db_models.Payment{
		SubscriptionID: sub.ID,
		Amount:         decimal.NewFromInt(599),
		Method:         db_models.PaymentMethodCard,
		Status:         db_models.PaymentStatusFailed,
	}))
	found, err := repo.FindActiveByAccount(ctx, account)
	require.NoError(t, err)
	require.Len(t, found.Payments, 2)
	assert.Equal(t, db_models.PaymentStatusFailed, found.Payments[1].Status)

	assert.ErrorIs(t, repo.Update(ctx, &db_models.Subscription{BaseModel: db_models.BaseModel{ID: uuid.New()}}), ErrNotFound)
	assert.ErrorIs(t, repo.AppendPayment(ctx, &db_models.Payment{SubscriptionID: uuid.New()}), ErrNotFound)
}

func TestMemoryWithUserLockSerializes(t *testing.T) {
	repo := NewMemorySubscriptionRepository()
	account := uuid.New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.WithUserLock(context.Background(), account, func(SubscriptionRepository) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestMemoryReposHonorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryPlanRepository().List(ctx, request_models.PlanFilter{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, NewMemorySubscriptionRepository().WithUserLock(ctx, uuid.New(), func(SubscriptionRepository) error { return nil }), context.Canceled)
	_, err = NewMemoryAccountRepository().Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryAccountEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepository()

	require.NoError(t, repo.InsertTx(&db_models.Account{Email: "asha@example.com"}, ctx))
	assert.ErrorIs(t, repo.InsertTx(&db_models.Account{Email: "ASHA@example.com"}, ctx), ErrDuplicateKey)

	found, err := repo.FindByEmail(ctx, "Asha@Example.com")
	require.NoError(t, err)
	require.NotNil(t, found)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryPlanListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPlanRepository()

	for _, p := range []struct {
		name     string
		provider string
		price    int64
	}{
		{"C", "Jio Fiber", 799},
		{"A", "BSNL Fiber", 399},
		{"B", "Airtel Xstream", 599},
		{"A2", "bsnl broadband", 399},
	} {
		require.NoError(t, repo.Create(ctx, &db_models.Plan{Name: p.name, Provider: p.provider, Price: decimal.NewFromInt(p.price), IsActive: true}))
	}

	all, err := repo.List(ctx, request_models.PlanFilter{})
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"A", "A2", "B", "C"}, names)

	bsnl, err := repo.List(ctx, request_models.PlanFilter{Provider: "BSNL"})
	require.NoError(t, err)
	assert.Len(t, bsnl, 2)

	deleted, err := repo.Delete(ctx, all[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, all[0].ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	missing, err := repo.GetPlanInfoById(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryWithUserLockRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySubscriptionRepository()
	account := uuid.New()

	stale := activeSub(account, 1000)
	require.NoError(t, repo.Create(ctx, stale))

	declined := errors.New("declined")
	err := repo.WithUserLock(ctx, account, func(tx SubscriptionRepository) error {
		stale.Status = db_models.SubStatusExpired
		require.NoError(t, tx.Update(ctx, stale))
		require.NoError(t, tx.Create(ctx, activeSub(account, 5000)))
		return declined
	})
	require.ErrorIs(t, err, declined)

	all, err := repo.ListByAccount(ctx, account)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, stale.ID, all[0].ID)
	assert.Equal(t, db_models.SubStatusActive, all[0].Status)

	// other accounts are untouched by the rollback
	other := uuid.New()
	require.NoError(t, repo.Create(ctx, activeSub(other, 1000)))
	_ = repo.WithUserLock(ctx, account, func(SubscriptionRepository) error { return declined })
	others, err := repo.ListByAccount(ctx, other)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestMemoryUpdatePayment(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySubscriptionRepository()
	sub := activeSub(uuid.New(), 1000)
	sub.Payments[0].Status = db_models.PaymentStatusPending
	require.NoError(t, repo.Create(ctx, sub))

	settled := sub.Payments[0]
	settled.Status = db_models.PaymentStatusFailed
	settled.GatewayRef = "sim_1"
	settled.Metadata = map[string]interface{}{db_models.MetadataFailureReason: "declined by issuer"}
	require.NoError(t, repo.UpdatePayment(ctx, &settled))

	got, err := repo.FindActiveByAccount(ctx, sub.AccountID)
	require.NoError(t, err)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, db_models.PaymentStatusFailed, got.Payments[0].Status)
	assert.Equal(t, "sim_1", got.Payments[0].GatewayRef)
	assert.Equal(t, "declined by issuer", got.Payments[0].FailureReason())

	// stored metadata is a copy
	settled.Metadata[db_models.MetadataFailureReason] = "changed"
	got, err = repo.FindActiveByAccount(ctx, sub.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "declined by issuer", got.Payments[0].FailureReason())

	missing := settled
	missing.ID = uuid.New()
	assert.ErrorIs(t, repo.UpdatePayment(ctx, &missing), ErrNotFound)
	missing.SubscriptionID = uuid.New()
	assert.ErrorIs(t, repo.UpdatePayment(ctx, &missing), ErrNotFound)
}
