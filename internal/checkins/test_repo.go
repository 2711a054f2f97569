package checkins

import (
	"context"
	"sort"
)

// TestRepo is an in-memory, date-keyed check-ins store used in tests.
type TestRepo struct {
	checkIns map[string]*CheckIn
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		checkIns: make(map[string]*CheckIn),
	}
}

func (r *TestRepo) Upsert(_ context.Context, checkIn CheckIn) (*CheckIn, error) {
	if existing, ok := r.checkIns[checkIn.Date]; ok {
		checkIn.ID = existing.ID
		checkIn.CreatedAt = existing.CreatedAt
	}
	c := checkIn
	r.checkIns[c.Date] = &c
	return &c, nil
}

func (r *TestRepo) CreateMany(ctx context.Context, checkIns []CheckIn) error {
	for _, c := range checkIns {
		if _, err := r.Upsert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *TestRepo) GetAll(_ context.Context) ([]CheckIn, error) {
	all := make([]CheckIn, 0, len(r.checkIns))
	for _, c := range r.checkIns {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Date > all[j].Date
	})
	return all, nil
}

func (r *TestRepo) GetByDate(_ context.Context, date string) (*CheckIn, error) {
	c, ok := r.checkIns[date]
	if !ok {
		return nil, ErrCheckInNotFound
	}
	checkIn := *c
	return &checkIn, nil
}

func (r *TestRepo) Delete(_ context.Context, date string) error {
	if _, ok := r.checkIns[date]; !ok {
		return ErrCheckInNotFound
	}
	delete(r.checkIns, date)
	return nil
}

func (r *TestRepo) DeleteAll(_ context.Context) error {
	r.checkIns = make(map[string]*CheckIn)
	return nil
}
