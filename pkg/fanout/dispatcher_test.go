package fanout

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/pkg/database"
	"github.com/G-studio-design/aplikasi-notify/pkg/directory"
	"github.com/G-studio-design/aplikasi-notify/pkg/models"
	"github.com/G-studio-design/aplikasi-notify/pkg/repositories"
	"github.com/G-studio-design/aplikasi-notify/pkg/types"
	"github.com/G-studio-design/aplikasi-notify/pkg/webpush"
)

type fakeDirectory struct {
	users []directory.User
}

func (f *fakeDirectory) AllUsers(ctx context.Context) ([]directory.User, error) {
	return f.users, nil
}

func (f *fakeDirectory) FindUser(ctx context.Context, id string) (*directory.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

// fakeTransport records send attempts and fails scripted endpoints.
type fakeTransport struct {
	mu       sync.Mutex
	attempts []string
	fail     map[string]error
}

func (f *fakeTransport) Send(ctx context.Context, sub webpush.Subscription, payload []byte) error {
	f.mu.Lock()
	f.attempts = append(f.attempts, sub.Endpoint)
	f.mu.Unlock()
	if err, ok := f.fail[sub.Endpoint]; ok {
		return err
	}
	return nil
}

func (f *fakeTransport) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

type fixture struct {
	dispatcher    *Dispatcher
	notifications *repositories.NotificationRepository
	subscriptions *repositories.SubscriptionRepository
	transport     *fakeTransport
}

func newFixture(t *testing.T, users []directory.User, transport webpush.Transport) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "notify.db") + "?_pragma=busy_timeout(5000)"
	db, err := database.InitDB(dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.MigrateDB(db, &models.Notification{}, &models.PushSubscription{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	notifications := repositories.NewNotificationRepository(db, 0)
	subscriptions := repositories.NewSubscriptionRepository(db)
	resolver := directory.NewResolver(&fakeDirectory{users: users})

	var ft *fakeTransport
	if f, ok := transport.(*fakeTransport); ok {
		ft = f
	}

	return &fixture{
		dispatcher:    NewDispatcher(resolver, notifications, subscriptions, transport, zap.NewNop()),
		notifications: notifications,
		subscriptions: subscriptions,
		transport:     ft,
	}
}

func TestNotifyRolesNoRecipients(t *testing.T) {
	transport := &fakeTransport{}
	f := newFixture(t, []directory.User{{ID: "u1", Role: "owner"}}, transport)
	ctx := context.Background()

	for _, roles := range [][]string{{}, {"nonexistent-role"}} {
		if err := f.dispatcher.NotifyRoles(ctx, roles, types.NotificationPayload{Body: "m"}, ""); err != nil {
			t.Fatalf("roles %v: expected success, got %v", roles, err)
		}
	}

	count, err := f.notifications.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("no-recipient dispatch must write nothing, got %d records", count)
	}
	if transport.attemptCount() != 0 {
		t.Errorf("no-recipient dispatch must not touch the transport, got %d attempts", transport.attemptCount())
	}
}

func TestNotifyUserWithoutSubscriptions(t *testing.T) {
	transport := &fakeTransport{}
	f := newFixture(t, []directory.User{{ID: "u1", Role: "owner"}}, transport)
	ctx := context.Background()

	payload := types.NotificationPayload{Title: "Update", Body: "Task assigned", URL: "/dashboard/tasks/42"}
	if err := f.dispatcher.NotifyUser(ctx, "u1", payload, ""); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	records, err := f.notifications.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	if records[0].Message != "Task assigned" {
		t.Errorf("expected payload body as message, got %q", records[0].Message)
	}
	if transport.attemptCount() != 0 {
		t.Errorf("expected zero transport calls, got %d", transport.attemptCount())
	}
}

func TestNotifyUserUnknownUserIsNoOp(t *testing.T) {
	transport := &fakeTransport{}
	f := newFixture(t, []directory.User{{ID: "u1", Role: "owner"}}, transport)
	ctx := context.Background()

	if err := f.dispatcher.NotifyUser(ctx, "ghost", types.NotificationPayload{Body: "m"}, ""); err != nil {
		t.Fatalf("unknown user must not be an error, got %v", err)
	}
	count, err := f.notifications.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("unknown user must write nothing, got %d records", count)
	}
}

func TestPermanentFailurePrunesOnlyTheDeadEndpoint(t *testing.T) {
	transport := &fakeTransport{fail: map[string]error{
		"https://push.example/dead": &webpush.SendError{Endpoint: "https://push.example/dead", StatusCode: http.StatusGone},
	}}
	f := newFixture(t, []directory.User{{ID: "u1", Role: "owner"}}, transport)
	ctx := context.Background()

	for _, endpoint := range []string{"https://push.example/dead", "https://push.example/alive"} {
		err := f.subscriptions.Save(ctx, models.PushSubscription{
			Endpoint: endpoint, UserID: "u1", P256dh: "k", Auth: "a",
		})
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	if err := f.dispatcher.NotifyUser(ctx, "u1", types.NotificationPayload{Body: "m"}, ""); err != nil {
		t.Fatalf("partial push failure must not surface, got %v", err)
	}

	subs, err := f.subscriptions.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(subs) != 1 || subs[0].Endpoint != "https://push.example/alive" {
		t.Errorf("expected only the live endpoint to remain, got %+v", subs)
	}

	records, err := f.notifications.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("log write is unconditional on push outcome, got %d records", len(records))
	}
}

func TestTransientFailureLeavesSubscription(t *testing.T) {
	transport := &fakeTransport{fail: map[string]error{
		"https://push.example/flaky": &webpush.SendError{Endpoint: "https://push.example/flaky", StatusCode: http.StatusTooManyRequests},
	}}
	f := newFixture(t, []directory.User{{ID: "u1", Role: "owner"}}, transport)
	ctx := context.Background()

	err := f.subscriptions.Save(ctx, models.PushSubscription{
		Endpoint: "https://push.example/flaky", UserID: "u1", P256dh: "k", Auth: "a",
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := f.dispatcher.NotifyUser(ctx, "u1", types.NotificationPayload{Body: "m"}, ""); err != nil {
		t.Fatalf("transient failure must not surface, got %v", err)
	}

	subs, err := f.subscriptions.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("transient failures must not prune, got %d subscriptions", len(subs))
	}
}

func TestNotifyRolesFansOutToEveryEndpoint(t *testing.T) {
	transport := &fakeTransport{fail: map[string]error{
		"https://push.example/u1-b": &webpush.SendError{Endpoint: "https://push.example/u1-b", StatusCode: http.StatusInternalServerError},
	}}
	f := newFixture(t, []directory.User{
		{ID: "u1", Role: "owner"},
		{ID: "u2", Role: "owner"},
		{ID: "u3", Role: "viewer"},
	}, transport)
	ctx := context.Background()

	for _, sub := range []models.PushSubscription{
		{Endpoint: "https://push.example/u1-a", UserID: "u1", P256dh: "k", Auth: "a"},
		{Endpoint: "https://push.example/u1-b", UserID: "u1", P256dh: "k", Auth: "a"},
		{Endpoint: "https://push.example/u2-a", UserID: "u2", P256dh: "k", Auth: "a"},
		{Endpoint: "https://push.example/u3-a", UserID: "u3", P256dh: "k", Auth: "a"},
	} {
		if err := f.subscriptions.Save(ctx, sub); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	if err := f.dispatcher.NotifyRoles(ctx, []string{"owner"}, types.NotificationPayload{Body: "m"}, "p1"); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// One failing endpoint must not stop the others: all three owner
	// endpoints are attempted, the viewer's never is.
	if got := transport.attemptCount(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	for _, userID := range []string{"u1", "u2"} {
		records, err := f.notifications.ListForUser(ctx, userID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("user %s: expected one record, got %d", userID, len(records))
		}
	}
	records, err := f.notifications.ListForUser(ctx, "u3")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("viewer must not be notified, got %d records", len(records))
	}
}

func TestNilTransportSkipsPush(t *testing.T) {
	f := newFixture(t, []directory.User{{ID: "u1", Role: "owner"}}, nil)
	ctx := context.Background()

	err := f.subscriptions.Save(ctx, models.PushSubscription{
		Endpoint: "https://push.example/ep", UserID: "u1", P256dh: "k", Auth: "a",
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := f.dispatcher.NotifyUser(ctx, "u1", types.NotificationPayload{Body: "m"}, ""); err != nil {
		t.Fatalf("unconfigured transport must not fail dispatch, got %v", err)
	}

	records, err := f.notifications.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("in-app delivery must still happen, got %d records", len(records))
	}
}
