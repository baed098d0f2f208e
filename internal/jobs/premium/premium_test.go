package premium

import (
	"context"
	"errors"
	"testing"
	"time"
)

type premiumProfile struct {
	IsPremium bool
	ExpiresAt *time.Time
}

type fakeExpirer struct {
	profiles []premiumProfile
	err      error
	calledAt time.Time
}

func (f *fakeExpirer) ClearExpiredPremium(_ context.Context, now time.Time) (int64, error) {
	f.calledAt = now
	if f.err != nil {
		return 0, f.err
	}
	var affected int64
	for i := range f.profiles {
		p := &f.profiles[i]
		if p.IsPremium && p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
			p.IsPremium = false
			affected++
		}
	}
	return affected, nil
}

func TestRunRevokesOnlyExpiredPremium(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	expirer := &fakeExpirer{
		profiles: []premiumProfile{
			{IsPremium: true, ExpiresAt: ptrTime(now.Add(-time.Minute))},
			{IsPremium: true, ExpiresAt: ptrTime(now.Add(time.Hour))},
			{IsPremium: true},
		},
	}

	job := NewJob(expirer, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run premium sweep: %v", err)
	}

	if !expirer.calledAt.Equal(now) {
		t.Fatalf("unexpected sweep time: got %s want %s", expirer.calledAt, now)
	}
	if expirer.profiles[0].IsPremium {
		t.Fatalf("expected expired premium to be revoked")
	}
	if !expirer.profiles[1].IsPremium || !expirer.profiles[2].IsPremium {
		t.Fatalf("expected unexpired premium to remain")
	}
}

func TestRunWrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	job := NewJob(&fakeExpirer{err: boom}, nil)

	if err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestRunWithoutStoreIsNoop(t *testing.T) {
	if err := NewJob(nil, nil).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func ptrTime(v time.Time) *time.Time {
	value := v.UTC()
	return &value
}
