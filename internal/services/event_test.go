package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"eventmanagement/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventRepo is an in-memory EventRepository. It stores and hands out copies so
// that mutations only become visible after Save, like a real store.
type fakeEventRepo struct {
	byID    map[int64]*domain.Event
	nextID  int64
	saves   int
	deletes int
	findErr error
	saveErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[int64]*domain.Event),
		nextID: 1,
	}
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	c.RegisteredUsers = domain.NewUserSet(e.RegisteredUsers.Users()...)
	return &c
}

func (f *fakeEventRepo) FindAll(ctx context.Context) ([]*domain.Event, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	ids := make([]int64, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*domain.Event
	for _, id := range ids {
		out = append(out, copyEvent(f.byID[id]))
	}
	return out, nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id int64) (*domain.Event, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(e), nil
}

func (f *fakeEventRepo) Save(ctx context.Context, e *domain.Event) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	if e.ID == 0 {
		e.ID = f.nextID
		f.nextID++
	} else if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = copyEvent(e)
	return nil
}

func (f *fakeEventRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeEventRepo) DeleteByID(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	f.deletes++
	delete(f.byID, id)
	return nil
}

type fakeUserRepo struct {
	byID map[int64]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[int64]*domain.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = int64(len(f.byID) + 1)
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *u
	return &c, nil
}

type fakePDFRenderer struct {
	out   []byte
	err   error
	calls int
}

func (f *fakePDFRenderer) Render(e *domain.Event) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeEmailService struct {
	sent []*domain.RegistrationConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

type testDeps struct {
	events *fakeEventRepo
	users  *fakeUserRepo
	pdf    *fakePDFRenderer
	email  *fakeEmailService
	svc    domain.EventService
}

func newTestService(users ...*domain.User) *testDeps {
	d := &testDeps{
		events: newFakeEventRepo(),
		users:  newFakeUserRepo(users...),
		pdf:    &fakePDFRenderer{out: []byte("%PDF-1.3 test")},
		email:  &fakeEmailService{},
	}
	d.svc = NewEventService(d.events, d.users, d.pdf, d.email, testLogger, time.Second)
	return d
}

func launchDraft() *domain.Event {
	return domain.NewEvent("Launch", "Product launch", "2025-06-01", "HQ", "10:00")
}

var ann = &domain.User{ID: 42, Email: "a@b.com", Name: "Ann"}

func TestEventService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	d := newTestService()

	created, err := d.svc.CreateEvent(ctx, launchDraft())
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	got, found, err := d.svc.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Launch", got.Name)
	assert.Equal(t, "Product launch", got.Description)
	assert.Equal(t, "2025-06-01", got.Date)
	assert.Equal(t, "HQ", got.Location)
	assert.Equal(t, "10:00", got.Time)
	assert.Equal(t, 0, got.RegisteredUsers.Len())
}

func TestEventService_CreateEvent_IgnoresIDAndRegistrations(t *testing.T) {
	ctx := context.Background()
	d := newTestService()

	draft := launchDraft()
	draft.ID = 77
	draft.Register(domain.User{ID: 5})

	created, err := d.svc.CreateEvent(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 0, created.RegisteredUsers.Len())
	// The caller's draft is not modified.
	assert.Equal(t, int64(77), draft.ID)
}

func TestEventService_CreateEvent_StoreErrorPropagates(t *testing.T) {
	d := newTestService()
	storeErr := errors.New("connection refused")
	d.events.saveErr = storeErr

	_, err := d.svc.CreateEvent(context.Background(), launchDraft())
	require.ErrorIs(t, err, storeErr)

	_, err = d.svc.CreateEvent(context.Background(), nil)
	require.Error(t, err)
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()
	d := newTestService()

	events, err := d.svc.ListEvents(ctx)
	require.NoError(t, err)
	require.NotNil(t, events)
	require.Empty(t, events)

	_, err = d.svc.CreateEvent(ctx, launchDraft())
	require.NoError(t, err)
	_, err = d.svc.CreateEvent(ctx, domain.NewEvent("Retro", "Quarterly retro", "2025-07-01", "Room 2", "15:00"))
	require.NoError(t, err)

	events, err = d.svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Launch", events[0].Name)
	assert.Equal(t, "Retro", events[1].Name)

	d.events.findErr = errors.New("db down")
	_, err = d.svc.ListEvents(ctx)
	require.Error(t, err)
}

func TestEventService_GetEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("missing is not an error", func(t *testing.T) {
		d := newTestService()
		got, found, err := d.svc.GetEvent(ctx, 99)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})

	t.Run("store error", func(t *testing.T) {
		d := newTestService()
		d.events.findErr = errors.New("db down")
		_, found, err := d.svc.GetEvent(ctx, 1)
		require.Error(t, err)
		assert.False(t, found)
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces all fields and keeps registrations", func(t *testing.T) {
		d := newTestService(ann)
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)
		require.NoError(t, d.svc.RegisterEvent(ctx, created.ID, domain.RegistrationRequest{UserID: 42, Email: "a@b.com", Name: "Ann"}))

		updated, found, err := d.svc.UpdateEvent(ctx, created.ID, &domain.Event{
			ID:              123,
			Name:            "Launch v2",
			Description:     "Rescheduled launch",
			Date:            "2025-06-02",
			Location:        "Main hall",
			Time:            "11:30",
			RegisteredUsers: domain.NewUserSet(),
		})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, created.ID, updated.ID)

		got, _, err := d.svc.GetEvent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Launch v2", got.Name)
		assert.Equal(t, "Rescheduled launch", got.Description)
		assert.Equal(t, "2025-06-02", got.Date)
		assert.Equal(t, "Main hall", got.Location)
		assert.Equal(t, "11:30", got.Time)
		assert.Equal(t, []int64{42}, got.RegisteredUsers.IDs())
	})

	t.Run("blank values overwrite too", func(t *testing.T) {
		d := newTestService()
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)

		updated, found, err := d.svc.UpdateEvent(ctx, created.ID, &domain.Event{Name: "Only name"})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Only name", updated.Name)
		assert.Empty(t, updated.Description)
		assert.Empty(t, updated.Location)
	})

	t.Run("missing event performs no write", func(t *testing.T) {
		d := newTestService()
		got, found, err := d.svc.UpdateEvent(ctx, 5, launchDraft())
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
		assert.Equal(t, 0, d.events.saves)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	d := newTestService()
	created, err := d.svc.CreateEvent(ctx, launchDraft())
	require.NoError(t, err)

	deleted, err := d.svc.DeleteEvent(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	for i := 0; i < 2; i++ {
		deleted, err = d.svc.DeleteEvent(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	}
	assert.Equal(t, 1, d.events.deletes)
}

func TestEventService_RegisterEvent(t *testing.T) {
	ctx := context.Background()
	req := domain.RegistrationRequest{UserID: 42, Email: "a@b.com", Name: "Ann"}

	t.Run("registering twice keeps a single membership", func(t *testing.T) {
		d := newTestService(ann)
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)
		savesAfterCreate := d.events.saves

		// Contact fields in the request differ from the stored user; the stored ones win.
		other := domain.RegistrationRequest{UserID: 42, Email: "someone@elsewhere.example", Name: "Zed"}
		require.NoError(t, d.svc.RegisterEvent(ctx, created.ID, other))
		require.NoError(t, d.svc.RegisterEvent(ctx, created.ID, req))

		got, _, err := d.svc.GetEvent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{42}, got.RegisteredUsers.IDs())
		assert.Equal(t, savesAfterCreate+1, d.events.saves)
		require.Len(t, d.email.sent, 1)
		assert.Equal(t, "a@b.com", d.email.sent[0].Email)
		assert.Equal(t, "Ann", d.email.sent[0].Name)
		assert.Equal(t, "Launch", d.email.sent[0].EventName)
	})

	t.Run("missing event", func(t *testing.T) {
		d := newTestService(ann)
		err := d.svc.RegisterEvent(ctx, 9, req)
		require.ErrorIs(t, err, domain.ErrEventNotFound)
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrUserNotFound)
		assert.Contains(t, err.Error(), "event 9")
		assert.Equal(t, 0, d.events.saves)
	})

	t.Run("missing user", func(t *testing.T) {
		d := newTestService()
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)
		savesAfterCreate := d.events.saves

		err = d.svc.RegisterEvent(ctx, created.ID, req)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Contains(t, err.Error(), "user 42")
		assert.Equal(t, savesAfterCreate, d.events.saves)

		got, _, err := d.svc.GetEvent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.RegisteredUsers.Len())
		assert.Empty(t, d.email.sent)
	})

	t.Run("email failure does not fail registration", func(t *testing.T) {
		d := newTestService(ann)
		d.email.err = errors.New("smtp down")
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)

		require.NoError(t, d.svc.RegisterEvent(ctx, created.ID, req))
		got, _, err := d.svc.GetEvent(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, got.RegisteredUsers.Contains(42))
	})

	t.Run("save failure propagates", func(t *testing.T) {
		d := newTestService(ann)
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)
		storeErr := errors.New("deadlock detected")
		d.events.saveErr = storeErr

		err = d.svc.RegisterEvent(ctx, created.ID, req)
		require.ErrorIs(t, err, storeErr)
		assert.Empty(t, d.email.sent)
	})

	t.Run("works without an email service", func(t *testing.T) {
		events := newFakeEventRepo()
		svc := NewEventService(events, newFakeUserRepo(ann), &fakePDFRenderer{}, nil, nil, 0)
		created, err := svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)
		require.NoError(t, svc.RegisterEvent(ctx, created.ID, req))
	})
}

func TestEventService_GenerateEventPDF(t *testing.T) {
	ctx := context.Background()

	t.Run("existing event", func(t *testing.T) {
		d := newTestService()
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)

		pdf, found, err := d.svc.GenerateEventPDF(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.NotEmpty(t, pdf)
	})

	t.Run("missing event", func(t *testing.T) {
		d := newTestService()
		pdf, found, err := d.svc.GenerateEventPDF(ctx, 3)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, pdf)
		assert.Equal(t, 0, d.pdf.calls)
	})

	t.Run("render failure is distinct from not found", func(t *testing.T) {
		d := newTestService()
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)
		cause := errors.New("font missing")
		d.pdf.err = cause

		pdf, found, err := d.svc.GenerateEventPDF(ctx, created.ID)
		require.ErrorIs(t, err, domain.ErrPDFRender)
		require.ErrorIs(t, err, cause)
		assert.True(t, found)
		assert.Nil(t, pdf)
	})

	t.Run("empty document is a render failure", func(t *testing.T) {
		d := newTestService()
		created, err := d.svc.CreateEvent(ctx, launchDraft())
		require.NoError(t, err)
		d.pdf.out = nil

		_, _, err = d.svc.GenerateEventPDF(ctx, created.ID)
		require.ErrorIs(t, err, domain.ErrPDFRender)
	})
}

func TestEventService_LaunchScenario(t *testing.T) {
	ctx := context.Background()
	d := newTestService(ann)

	created, err := d.svc.CreateEvent(ctx, launchDraft())
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	got, found, err := d.svc.GetEvent(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 0, got.RegisteredUsers.Len())

	require.NoError(t, d.svc.RegisterEvent(ctx, 1, domain.RegistrationRequest{UserID: 42, Email: "a@b.com", Name: "Ann"}))
	got, _, err = d.svc.GetEvent(ctx, 1)
	require.NoError(t, err)
	require.True(t, got.RegisteredUsers.Contains(42))

	deleted, err := d.svc.DeleteEvent(ctx, 1)
	require.NoError(t, err)
	require.True(t, deleted)

	_, found, err = d.svc.GetEvent(ctx, 1)
	require.NoError(t, err)
	require.False(t, found)
}

func TestEventService_RejectsNilInput(t *testing.T) {
	ctx := context.Background()
	d := newTestService()

	_, err := d.svc.CreateEvent(ctx, nil)
	require.EqualError(t, err, "event is required")

	_, found, err := d.svc.UpdateEvent(ctx, 1, nil)
	require.EqualError(t, err, "event details are required")
	assert.False(t, found)
	assert.Equal(t, 0, d.events.saves)
}
