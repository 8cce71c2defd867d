package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"

	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
	mem "subhub/pkg/memcache"
)

// In-memory backends. Nothing here survives a restart.

type memoryPlanRepository struct {
	plans *mem.Store[uuid.UUID, *db_models.Plan]
	now   func() time.Time
}

func NewMemoryPlanRepository() IPlanRepository {
	return &memoryPlanRepository{
		plans: mem.NewStore[uuid.UUID, *db_models.Plan](clonePlan),
		now:   time.Now,
	}
}

func clonePlan(p *db_models.Plan) *db_models.Plan {
	c := *p
	c.Features = append([]string(nil), p.Features...)
	return &c
}

func (r *memoryPlanRepository) Create(ctx context.Context, plan *db_models.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	plan.Init(r.now())
	r.plans.Put(plan.ID, plan)
	return nil
}

func (r *memoryPlanRepository) GetPlanInfoById(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := r.plans.Get(planID)
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *memoryPlanRepository) List(ctx context.Context, filter request_models.PlanFilter) ([]db_models.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	provider := strings.ToLower(filter.Provider)

	matched := r.plans.Find(func(p *db_models.Plan) bool {
		if filter.Type != "" && string(p.Type) != filter.Type {
			return false
		}
		if provider != "" && !strings.Contains(strings.ToLower(p.Provider), provider) {
			return false
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			return false
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			return false
		}
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			return false
		}
		return true
	})

	// stable: equal prices keep insertion order
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Price.LessThan(matched[j].Price)
	})

	return lo.Map(matched, func(p *db_models.Plan, _ int) db_models.Plan { return *p }), nil
}

func (r *memoryPlanRepository) Update(ctx context.Context, plan *db_models.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	plan.UpdatedAt = r.now().Unix()
	if _, ok := r.plans.Get(plan.ID); !ok {
		plan.Init(r.now())
	}
	r.plans.Put(plan.ID, plan)
	return nil
}

func (r *memoryPlanRepository) Delete(ctx context.Context, planID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.plans.Delete(planID), nil
}

type memorySubscriptionRepository struct {
	// guards the check-then-insert of Create
	mu    *sync.Mutex
	locks *mem.KeyLock
	subs  *mem.Store[uuid.UUID, *db_models.Subscription]
	now   func() time.Time
}

func NewMemorySubscriptionRepository() SubscriptionRepository {
	return &memorySubscriptionRepository{
		mu:    &sync.Mutex{},
		locks: mem.NewKeyLock(),
		subs:  mem.NewStore[uuid.UUID, *db_models.Subscription](cloneSubscription),
		now:   time.Now,
	}
}

func cloneSubscription(s *db_models.Subscription) *db_models.Subscription {
	c := *s
	c.Payments = append([]db_models.Payment(nil), s.Payments...)
	if s.CancelledAt != nil {
		v := *s.CancelledAt
		c.CancelledAt = &v
	}
	for i := range c.Payments {
		c.Payments[i].Metadata = cloneMetadata(s.Payments[i].Metadata)
	}
	return &c
}

func (r *memorySubscriptionRepository) WithUserLock(ctx context.Context, accountID uuid.UUID, fn func(repo SubscriptionRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := r.locks.Lock(userLockKey(accountID))
	defer unlock()

	// lifecycle writes for an account happen under this lock, so this snapshot
	// is enough to undo fn
	snapshot := r.subs.Find(func(s *db_models.Subscription) bool { return s.AccountID == accountID })
	if err := fn(r); err != nil {
		r.restore(accountID, snapshot)
		return err
	}
	return nil
}

func (r *memorySubscriptionRepository) restore(accountID uuid.UUID, snapshot []*db_models.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := lo.KeyBy(snapshot, func(s *db_models.Subscription) uuid.UUID { return s.ID })
	for _, s := range r.subs.Find(func(s *db_models.Subscription) bool { return s.AccountID == accountID }) {
		if _, ok := keep[s.ID]; !ok {
			r.subs.Delete(s.ID)
		}
	}
	for _, s := range snapshot {
		r.subs.Put(s.ID, s)
	}
}

func (r *memorySubscriptionRepository) Create(ctx context.Context, sub *db_models.Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub.Status == db_models.SubStatusActive {
		existing := r.subs.Find(func(s *db_models.Subscription) bool {
			return s.AccountID == sub.AccountID && s.Status == db_models.SubStatusActive
		})
		if len(existing) > 0 {
			return ErrDuplicateKey
		}
	}

	now := r.now()
	sub.Init(now)
	for i := range sub.Payments {
		sub.Payments[i].Init(now)
		sub.Payments[i].SubscriptionID = sub.ID
	}
	r.subs.Put(sub.ID, sub)
	return nil
}

func (r *memorySubscriptionRepository) FindActiveByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	active := r.subs.Find(func(s *db_models.Subscription) bool {
		return s.AccountID == accountID && s.Status == db_models.SubStatusActive
	})
	if len(active) == 0 {
		return nil, nil
	}
	return lo.MaxBy(active, func(a, b *db_models.Subscription) bool { return a.EndsAt > b.EndsAt }), nil
}

func (r *memorySubscriptionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subs := r.subs.Find(func(s *db_models.Subscription) bool { return s.AccountID == accountID })
	// newest first
	out := lo.Reverse(lo.Map(subs, func(s *db_models.Subscription, _ int) db_models.Subscription { return *s }))
	return out, nil
}

func (r *memorySubscriptionRepository) ListAll(ctx context.Context) ([]db_models.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subs := r.subs.Find(nil)
	return lo.Map(subs, func(s *db_models.Subscription, _ int) db_models.Subscription { return *s }), nil
}

func (r *memorySubscriptionRepository) Update(ctx context.Context, sub *db_models.Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.subs.Update(sub.ID, func(cur *db_models.Subscription) (*db_models.Subscription, bool) {
		cur.Status = sub.Status
		cur.EndsAt = sub.EndsAt
		cur.CancelledAt = sub.CancelledAt
		cur.AutoRenew = sub.AutoRenew
		cur.Usage = sub.Usage
		cur.UpdatedAt = r.now().Unix()
		return cur, true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *memorySubscriptionRepository) AppendPayment(ctx context.Context, payment *db_models.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payment.Init(r.now())
	_, ok := r.subs.Update(payment.SubscriptionID, func(cur *db_models.Subscription) (*db_models.Subscription, bool) {
		cur.Payments = append(cur.Payments, *payment)
		return cur, true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *memorySubscriptionRepository) UpdatePayment(ctx context.Context, payment *db_models.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	found := false
	_, ok := r.subs.Update(payment.SubscriptionID, func(cur *db_models.Subscription) (*db_models.Subscription, bool) {
		for i := range cur.Payments {
			if cur.Payments[i].ID != payment.ID {
				continue
			}
			p := &cur.Payments[i]
			p.Status = payment.Status
			p.GatewayRef = payment.GatewayRef
			p.PaidAt = payment.PaidAt
			p.Metadata = cloneMetadata(payment.Metadata)
			p.UpdatedAt = r.now().Unix()
			found = true
		}
		return cur, found
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

func cloneMetadata(m datatypes.JSONMap) datatypes.JSONMap {
	if m == nil {
		return nil
	}
	return datatypes.JSONMap(lo.Assign(map[string]interface{}(m)))
}

type memoryAccountRepository struct {
	mu       *sync.Mutex
	accounts *mem.Store[uuid.UUID, *db_models.Account]
	now      func() time.Time
}

func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		mu: &sync.Mutex{},
		accounts: mem.NewStore[uuid.UUID, *db_models.Account](func(a *db_models.Account) *db_models.Account {
			c := *a
			if a.LastLoginAt != nil {
				v := *a.LastLoginAt
				c.LastLoginAt = &v
			}
			return &c
		}),
		now: time.Now,
	}
}

func (r *memoryAccountRepository) InsertTx(account *db_models.Account, ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(account.Email)
	dup := r.accounts.Find(func(a *db_models.Account) bool { return strings.ToLower(a.Email) == email })
	if len(dup) > 0 {
		return ErrDuplicateKey
	}
	account.Init(r.now())
	r.accounts.Put(account.ID, account)
	return nil
}

func (r *memoryAccountRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, ok := r.accounts.Get(id)
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (r *memoryAccountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	found := r.accounts.Find(func(a *db_models.Account) bool { return strings.ToLower(a.Email) == email })
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *memoryAccountRepository) Update(ctx context.Context, account *db_models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	account.UpdatedAt = r.now().Unix()
	_, ok := r.accounts.Update(account.ID, func(*db_models.Account) (*db_models.Account, bool) {
		return account, true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *memoryAccountRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(r.accounts.Len()), nil
}
