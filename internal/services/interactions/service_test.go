package interactions

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type interactionKey struct {
	from int64
	to   int64
	typ  enums.InteractionType
}

// fakeLedger mimics the unique (from, to, type) upserts of the postgres repo.
type fakeLedger struct {
	rows       map[interactionKey]model.Interaction
	nextID     int64
	shortlists map[int64]int
	views      map[int64]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		rows:       make(map[interactionKey]model.Interaction),
		shortlists: make(map[int64]int),
		views:      make(map[int64]int),
	}
}

func (f *fakeLedger) insert(from, to int64, typ enums.InteractionType, status enums.InteractionStatus, message string, at time.Time) model.Interaction {
	f.nextID++
	item := model.Interaction{
		ID:         f.nextID,
		FromUserID: from,
		ToUserID:   to,
		Type:       typ,
		Status:     status,
		Message:    message,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	f.rows[interactionKey{from, to, typ}] = item
	return item
}

func (f *fakeLedger) CreateInterest(_ context.Context, from, to int64, message string, at time.Time) (model.Interaction, error) {
	key := interactionKey{from, to, enums.InteractionInterest}
	existing, ok := f.rows[key]
	if !ok {
		return f.insert(from, to, enums.InteractionInterest, enums.InteractionStatusPending, message, at), nil
	}
	if existing.Status != enums.InteractionStatusRemoved {
		return model.Interaction{}, pgrepo.ErrInteractionExists
	}
	existing.Status = enums.InteractionStatusPending
	existing.Message = message
	existing.UpdatedAt = at
	f.rows[key] = existing
	return existing, nil
}

func (f *fakeLedger) GetByID(_ context.Context, id int64) (model.Interaction, error) {
	for _, item := range f.rows {
		if item.ID == id {
			return item, nil
		}
	}
	return model.Interaction{}, pgrepo.ErrInteractionNotFound
}

func (f *fakeLedger) RespondPending(_ context.Context, id int64, status enums.InteractionStatus, at time.Time) (model.Interaction, error) {
	for key, item := range f.rows {
		if item.ID == id && item.Type == enums.InteractionInterest && item.Status == enums.InteractionStatusPending {
			item.Status = status
			item.UpdatedAt = at
			f.rows[key] = item
			return item, nil
		}
	}
	return model.Interaction{}, pgrepo.ErrInteractionNotFound
}

func (f *fakeLedger) Activate(_ context.Context, from, to int64, typ enums.InteractionType, at time.Time) (model.Interaction, bool, error) {
	key := interactionKey{from, to, typ}
	existing, ok := f.rows[key]
	if ok && existing.Status == enums.InteractionStatusActive {
		return existing, false, nil
	}
	var item model.Interaction
	if ok {
		existing.Status = enums.InteractionStatusActive
		existing.UpdatedAt = at
		f.rows[key] = existing
		item = existing
	} else {
		item = f.insert(from, to, typ, enums.InteractionStatusActive, "", at)
	}
	if typ == enums.InteractionShortlist {
		f.shortlists[to]++
	}
	return item, true, nil
}

func (f *fakeLedger) Remove(_ context.Context, from, to int64, typ enums.InteractionType, at time.Time) (model.Interaction, error) {
	key := interactionKey{from, to, typ}
	existing, ok := f.rows[key]
	if !ok {
		return model.Interaction{}, pgrepo.ErrInteractionNotFound
	}
	existing.Status = enums.InteractionStatusRemoved
	existing.UpdatedAt = at
	f.rows[key] = existing
	return existing, nil
}

func (f *fakeLedger) RecordView(_ context.Context, viewer, target int64, at time.Time) (model.Interaction, error) {
	f.views[target]++
	key := interactionKey{viewer, target, enums.InteractionView}
	if existing, ok := f.rows[key]; ok {
		existing.Status = enums.InteractionStatusActive
		existing.UpdatedAt = at
		f.rows[key] = existing
		return existing, nil
	}
	return f.insert(viewer, target, enums.InteractionView, enums.InteractionStatusActive, "", at), nil
}

func (f *fakeLedger) List(_ context.Context, filter pgrepo.InteractionFilter, offset, limit int) ([]model.Interaction, int64, error) {
	var out []model.Interaction
	for _, item := range f.rows {
		if item.Type != filter.Type {
			continue
		}
		if filter.FromUserID > 0 && item.FromUserID != filter.FromUserID {
			continue
		}
		if filter.ToUserID > 0 && item.ToUserID != filter.ToUserID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, item.Status) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func containsStatus(list []enums.InteractionStatus, s enums.InteractionStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakeProfiles map[int64]model.Profile

func (f fakeProfiles) GetByID(_ context.Context, id int64) (model.Profile, error) {
	for _, p := range f {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Profile{}, pgrepo.ErrProfileNotFound
}

func (f fakeProfiles) GetByUserID(_ context.Context, userID int64) (model.Profile, error) {
	p, ok := f[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (f fakeProfiles) GetManyByUserIDs(_ context.Context, ids []int64) (map[int64]model.Profile, error) {
	out := make(map[int64]model.Profile)
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeUsers struct{}

func (fakeUsers) GetByID(_ context.Context, userID int64) (model.User, error) {
	return model.User{ID: userID, Email: "user" + strconv.FormatInt(userID, 10) + "@example.com"}, nil
}

type fakeNotifier struct {
	emails []string
	names  []string
	err    error
}

func (f *fakeNotifier) NotifyInterest(_ context.Context, email, senderName string) error {
	f.emails = append(f.emails, email)
	f.names = append(f.names, senderName)
	return f.err
}

type fakeLimiter struct {
	allowed bool
}

func (f fakeLimiter) AllowInterest(context.Context, int64) (int64, bool, error) {
	if f.allowed {
		return 0, true, nil
	}
	return 42, false, nil
}

type fakeSummaries struct{}

func (fakeSummaries) Summary(_ context.Context, p model.Profile) model.ProfileSummary {
	return model.ProfileSummary{ID: p.ID, UserID: p.UserID, FirstName: p.Personal.FirstName}
}

// Users 1..3 own profiles 101..103; user 4 has no profile.
func newTestService() (*Service, *fakeLedger, fakeProfiles) {
	ledger := newFakeLedger()
	profiles := fakeProfiles{
		1: {ID: 101, UserID: 1, Personal: model.PersonalInfo{FirstName: "Arjun", LastName: "Mehta"}},
		2: {ID: 102, UserID: 2, Personal: model.PersonalInfo{FirstName: "Bhavna", LastName: "Rao"}},
		3: {ID: 103, UserID: 3, Personal: model.PersonalInfo{FirstName: "Chitra", LastName: "Iyer"}},
	}
	svc := NewService(Dependencies{
		Interactions: ledger,
		Profiles:     profiles,
		Users:        fakeUsers{},
		Summaries:    fakeSummaries{},
	})
	svc.now = func() time.Time { return fixedNow }
	return svc, ledger, profiles
}

func TestSendInterestCreatesPendingAndNotifies(t *testing.T) {
	svc, _, _ := newTestService()
	notifier := &fakeNotifier{}
	svc.AttachNotifier(notifier)

	item, err := svc.SendInterest(context.Background(), 1, 102, "  Hello  ")
	if err != nil {
		t.Fatalf("send interest: %v", err)
	}
	if item.Status != enums.InteractionStatusPending || item.ToUserID != 2 || item.Message != "Hello" {
		t.Fatalf("unexpected interest: %+v", item)
	}
	if len(notifier.emails) != 1 || notifier.emails[0] != "user2@example.com" || notifier.names[0] != "Arjun Mehta" {
		t.Fatalf("unexpected notification: %v %v", notifier.emails, notifier.names)
	}

	if _, err := svc.SendInterest(context.Background(), 1, 102, ""); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate, got %v", err)
	}
}

func TestSendInterestIgnoresNotifierFailure(t *testing.T) {
	svc, _, _ := newTestService()
	svc.AttachNotifier(&fakeNotifier{err: errors.New("queue full")})

	if _, err := svc.SendInterest(context.Background(), 1, 102, ""); err != nil {
		t.Fatalf("notification failure must not fail the interest: %v", err)
	}
}

func TestSendInterestPreconditions(t *testing.T) {
	tests := []struct {
		name      string
		userID    int64
		profileID int64
		message   string
		want      error
	}{
		{name: "no own profile", userID: 4, profileID: 102, want: ErrProfileRequired},
		{name: "missing target", userID: 1, profileID: 999, want: ErrNotFound},
		{name: "self", userID: 1, profileID: 101, want: ErrSelfTarget},
		{name: "long message", userID: 1, profileID: 102, message: strings.Repeat("x", 501), want: ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService()
			if _, err := svc.SendInterest(context.Background(), tc.userID, tc.profileID, tc.message); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSendInterestRateLimited(t *testing.T) {
	svc, ledger, _ := newTestService()
	svc.AttachRateLimiter(fakeLimiter{allowed: false})

	_, err := svc.SendInterest(context.Background(), 1, 102, "")
	tm, ok := IsTooManyRequests(err)
	if !ok {
		t.Fatalf("expected TooManyRequestsError, got %v", err)
	}
	if tm.RetryAfter() != 42 {
		t.Fatalf("unexpected retry after: got %d want %d", tm.RetryAfter(), 42)
	}
	if len(ledger.rows) != 0 {
		t.Fatalf("rate limited interest must not be stored")
	}
}

func TestRespondToInterest(t *testing.T) {
	svc, _, _ := newTestService()

	item, err := svc.SendInterest(context.Background(), 1, 102, "")
	if err != nil {
		t.Fatalf("send interest: %v", err)
	}

	if _, err := svc.RespondToInterest(context.Background(), 3, item.ID, enums.InteractionStatusAccepted); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for third party, got %v", err)
	}
	if _, err := svc.RespondToInterest(context.Background(), 2, item.ID, enums.InteractionStatusActive); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad status, got %v", err)
	}

	accepted, err := svc.RespondToInterest(context.Background(), 2, item.ID, enums.InteractionStatusAccepted)
	if err != nil {
		t.Fatalf("accept interest: %v", err)
	}
	if accepted.Status != enums.InteractionStatusAccepted {
		t.Fatalf("unexpected status: %s", accepted.Status)
	}

	if _, err := svc.RespondToInterest(context.Background(), 2, item.ID, enums.InteractionStatusAccepted); err != nil {
		t.Fatalf("repeating the same answer must succeed: %v", err)
	}
	if _, err := svc.RespondToInterest(context.Background(), 2, item.ID, enums.InteractionStatusRejected); !errors.Is(err, ErrAlreadyResponded) {
		t.Fatalf("expected ErrAlreadyResponded, got %v", err)
	}
	if _, err := svc.RespondToInterest(context.Background(), 2, 999, enums.InteractionStatusRejected); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestShortlistIsUniqueAndReversible(t *testing.T) {
	svc, ledger, _ := newTestService()
	ctx := context.Background()

	first, err := svc.AddShortlist(ctx, 1, 102)
	if err != nil {
		t.Fatalf("add shortlist: %v", err)
	}
	if _, err := svc.AddShortlist(ctx, 1, 102); err != nil {
		t.Fatalf("repeat add shortlist: %v", err)
	}
	if len(ledger.rows) != 1 {
		t.Fatalf("expected one row after repeated add, got %d", len(ledger.rows))
	}
	if ledger.shortlists[2] != 1 {
		t.Fatalf("repeated add must not bump the counter: got %d", ledger.shortlists[2])
	}

	removed, err := svc.RemoveShortlist(ctx, 1, 102)
	if err != nil {
		t.Fatalf("remove shortlist: %v", err)
	}
	if removed.Status != enums.InteractionStatusRemoved {
		t.Fatalf("unexpected status after remove: %s", removed.Status)
	}

	again, err := svc.AddShortlist(ctx, 1, 102)
	if err != nil {
		t.Fatalf("re-add shortlist: %v", err)
	}
	if again.ID != first.ID || !again.CreatedAt.Equal(first.CreatedAt) || again.Status != enums.InteractionStatusActive {
		t.Fatalf("re-add must reuse the row: first=%+v again=%+v", first, again)
	}
	if ledger.shortlists[2] != 2 {
		t.Fatalf("unexpected shortlist counter: got %d want %d", ledger.shortlists[2], 2)
	}
}

func TestAddRequiresProfileButBlockDoesNot(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.AddFavorite(context.Background(), 4, 102); !errors.Is(err, ErrProfileRequired) {
		t.Fatalf("expected ErrProfileRequired, got %v", err)
	}
	if _, err := svc.Block(context.Background(), 4, 102); err != nil {
		t.Fatalf("block without own profile: %v", err)
	}
	if _, err := svc.Unblock(context.Background(), 4, 102); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if _, err := svc.RemoveFavorite(context.Background(), 1, 102); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing missing favorite, got %v", err)
	}
}

func TestRecordViewSkipsOwner(t *testing.T) {
	svc, ledger, _ := newTestService()

	if err := svc.RecordView(context.Background(), 1, 101); err != nil {
		t.Fatalf("owner view: %v", err)
	}
	if ledger.views[1] != 0 {
		t.Fatalf("owner view must not count")
	}

	for i := 0; i < 2; i++ {
		if err := svc.RecordView(context.Background(), 2, 101); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}
	if ledger.views[1] != 2 {
		t.Fatalf("unexpected view count: got %d want %d", ledger.views[1], 2)
	}
	if len(ledger.rows) != 1 {
		t.Fatalf("expected a single view row, got %d", len(ledger.rows))
	}
}

func TestListsHydrateCounterpartAndDropMissing(t *testing.T) {
	svc, _, profiles := newTestService()
	ctx := context.Background()

	if _, err := svc.SendInterest(ctx, 1, 102, ""); err != nil {
		t.Fatalf("send interest to 2: %v", err)
	}
	if _, err := svc.SendInterest(ctx, 1, 103, ""); err != nil {
		t.Fatalf("send interest to 3: %v", err)
	}
	if _, err := svc.SendInterest(ctx, 3, 102, ""); err != nil {
		t.Fatalf("send interest 3 to 2: %v", err)
	}

	received, err := svc.ListReceivedInterests(ctx, 2, 1, 10)
	if err != nil {
		t.Fatalf("list received: %v", err)
	}
	if len(received.Items) != 2 || received.Items[0].Profile.UserID != 3 || received.Items[1].Profile.UserID != 1 {
		t.Fatalf("unexpected received items: %+v", received.Items)
	}

	delete(profiles, 3)
	sent, err := svc.ListSentInterests(ctx, 1, 1, 10)
	if err != nil {
		t.Fatalf("list sent: %v", err)
	}
	if sent.Total != 2 || len(sent.Items) != 1 || sent.Items[0].Profile.UserID != 2 {
		t.Fatalf("unexpected sent page: total=%d items=%+v", sent.Total, sent.Items)
	}
}
