package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/services"
	"github.com/dmitrijs2005/aichopaicho/internal/client/syncer"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

type fakeAuth struct {
	session     services.Session
	loginUser   string
	loginPW     string
	registered  string
	loggedOut   bool
	loginResult syncer.Outcome
	loginErr    error
	during      func()
}

func (f *fakeAuth) Register(ctx context.Context, username string, password []byte) error {
	f.registered = username
	return nil
}

func (f *fakeAuth) Login(ctx context.Context, username string, password []byte) (syncer.Outcome, error) {
	f.loginUser, f.loginPW = username, string(password)
	if f.during != nil {
		f.during()
	}
	if f.loginErr == nil {
		f.session = services.Session{Username: username, IdentityID: "durable-1", SignedIn: true}
	}
	return f.loginResult, f.loginErr
}

func (f *fakeAuth) Logout(ctx context.Context) syncer.Outcome {
	f.loggedOut = true
	if f.during != nil {
		f.during()
	}
	f.session = services.Session{OwnerID: "local-2"}
	return syncer.Outcome{Status: syncer.StatusSuccess, Message: "signed out"}
}

func (f *fakeAuth) Session(ctx context.Context) (services.Session, error) { return f.session, nil }
func (f *fakeAuth) Ping(ctx context.Context) error                        { return nil }
func (f *fakeAuth) Close(ctx context.Context) error                       { return nil }

type fakeLedger struct {
	contacts  []*models.Contact
	added     []services.NewRecord
	views     []services.RecordView
	completed []string
	deleted   []string
	balance   decimal.Decimal
}

func (f *fakeLedger) AddContact(ctx context.Context, name, phone string) (*models.Contact, error) {
	c := &models.Contact{ID: "c" + name, Name: name, Phone: phone}
	f.contacts = append(f.contacts, c)
	return c, nil
}

func (f *fakeLedger) ListContacts(ctx context.Context) ([]*models.Contact, error) {
	return f.contacts, nil
}

func (f *fakeLedger) DeleteContact(ctx context.Context, id string) error {
	for _, c := range f.contacts {
		if c.ID == id {
			f.deleted = append(f.deleted, "contact:"+id)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeLedger) AddRecord(ctx context.Context, in services.NewRecord) (*models.Record, error) {
	f.added = append(f.added, in)
	return &models.Record{ID: "r1", Amount: in.Amount}, nil
}

func (f *fakeLedger) ListRecords(ctx context.Context) ([]services.RecordView, error) {
	return f.views, nil
}

func (f *fakeLedger) CompleteRecord(ctx context.Context, id string) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeLedger) DeleteRecord(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, "record:"+id)
	return nil
}

func (f *fakeLedger) Balance(ctx context.Context) (decimal.Decimal, error) { return f.balance, nil }

type fakeTrigger struct {
	pushed []models.Kind
	synced int
	pulled int
}

func (f *fakeTrigger) SyncNow(ctx context.Context) syncer.Outcome {
	f.synced++
	return syncer.Outcome{Status: syncer.StatusSuccess, Message: "sync: nothing to do"}
}

func (f *fakeTrigger) PushAll(ctx context.Context, kind models.Kind) syncer.Outcome {
	f.pushed = append(f.pushed, kind)
	return syncer.Outcome{Status: syncer.StatusSkipped, Message: "push " + string(kind) + " skipped: not signed in"}
}

func (f *fakeTrigger) PullAndMergeAll(ctx context.Context) syncer.Outcome {
	f.pulled++
	return syncer.Outcome{Status: syncer.StatusSuccess, Message: "pull: inserted=1"}
}

func newTestApp(in *bufio.Reader) (*App, *fakeAuth, *fakeLedger, *fakeTrigger, *bytes.Buffer) {
	auth := &fakeAuth{session: services.Session{OwnerID: "local-1"}}
	ledger := &fakeLedger{}
	trig := &fakeTrigger{}
	var out bytes.Buffer
	return &App{
		logger:        logging.NewNopLogger(),
		authService:   auth,
		ledgerService: ledger,
		sync:          trig,
		reader:        in,
		out:           &out,
	}, auth, ledger, trig, &out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(w io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

// ------------ tests ------------

func TestLoginLogoutWhoAmI(t *testing.T) {
	stubPassword(t, "pw")
	app, auth, _, _, out := newTestApp(readerFromLines("alice"))
	ctx := context.Background()

	assert.Equal(t, "(local offline)", app.getStatus())
	assert.False(t, app.isLoggedIn())

	auth.loginResult = syncer.Outcome{Status: syncer.StatusSuccess, Message: "sync: pushed=2"}
	require.NoError(t, app.Login(ctx))
	assert.Equal(t, "alice", auth.loginUser)
	assert.Equal(t, "pw", auth.loginPW)
	assert.Contains(t, out.String(), "Logged in as alice")
	assert.Contains(t, out.String(), "success: sync: pushed=2")
	assert.Equal(t, "(alice offline)", app.getStatus())

	out.Reset()
	require.NoError(t, app.WhoAmI(ctx))
	assert.Equal(t, "alice (account durable-1), offline\n", out.String())

	require.NoError(t, app.Logout(ctx))
	assert.True(t, auth.loggedOut)

	out.Reset()
	require.NoError(t, app.WhoAmI(ctx))
	assert.Equal(t, "local user local-2, not logged in\n", out.String())

	out.Reset()
	require.NoError(t, app.Logout(ctx))
	assert.Equal(t, "Not logged in.\n", out.String())
}

func TestRegister(t *testing.T) {
	stubPassword(t, "pw")
	app, auth, _, _, out := newTestApp(readerFromLines("bob"))

	require.NoError(t, app.Register(context.Background()))
	assert.Equal(t, "bob", auth.registered)
	assert.Contains(t, out.String(), "Account created")
}

func TestAddContactAndLend(t *testing.T) {
	app, _, ledger, _, out := newTestApp(readerFromLines(
		"Alice", "555",
		"alice", "12,50", "2024-01-02", "lunch",
		"Nobody",
		"Alice", "zero",
	))
	ctx := context.Background()

	require.NoError(t, app.AddContact(ctx))
	require.Len(t, ledger.contacts, 1)
	assert.Equal(t, "555", ledger.contacts[0].Phone)

	require.NoError(t, app.Lend(ctx))
	require.Len(t, ledger.added, 1)
	got := ledger.added[0]
	assert.Equal(t, "cAlice", got.ContactID)
	assert.Equal(t, services.Lent, got.Direction)
	assert.Equal(t, "12.5", got.Amount.String())
	assert.NotZero(t, got.Date)
	assert.Equal(t, "lunch", got.Description)
	assert.Contains(t, out.String(), "Recorded: lent 12.50 Alice")

	require.ErrorIs(t, app.Borrow(ctx), common.ErrorNotFound)
	require.ErrorIs(t, app.Borrow(ctx), common.ErrInvalidArgument)
	assert.Len(t, ledger.added, 1)
}

func TestFindContact_AmbiguousName(t *testing.T) {
	app, _, ledger, _, _ := newTestApp(readerFromLines())
	ledger.contacts = []*models.Contact{{ID: "a", Name: "Sam"}, {ID: "b", Name: "sam"}}

	_, err := app.findContact(context.Background(), "SAM")
	require.ErrorContains(t, err, "use the id")

	c, err := app.findContact(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "b", c.ID)
}

func TestRecordsCompleteDeleteBalance(t *testing.T) {
	app, _, ledger, _, out := newTestApp(readerFromLines())
	ctx := context.Background()

	require.NoError(t, app.Records(ctx))
	assert.Contains(t, out.String(), "No records yet")

	ledger.views = []services.RecordView{{
		Record:      &models.Record{ID: "r1", Amount: decimal.RequireFromString("5"), Description: "taxi", IsComplete: true},
		Type:        &models.Type{Name: "Borrowed"},
		ContactName: "Alice",
	}}
	out.Reset()
	require.NoError(t, app.Records(ctx))
	assert.Contains(t, out.String(), "Borrowed")
	assert.Contains(t, out.String(), "5.00")
	assert.Contains(t, out.String(), "done")

	require.NoError(t, app.Complete(ctx, []string{"r1"}))
	assert.Equal(t, []string{"r1"}, ledger.completed)
	out.Reset()
	require.NoError(t, app.Complete(ctx, nil))
	assert.Contains(t, out.String(), "Usage")

	require.NoError(t, app.Delete(ctx, []string{"record", "r1"}))
	require.ErrorContains(t, app.Delete(ctx, []string{"contact", "nope"}), "no contact with id nope")
	out.Reset()
	require.NoError(t, app.Delete(ctx, []string{"thing", "x"}))
	assert.Contains(t, out.String(), "Usage")
	assert.Equal(t, []string{"record:r1"}, ledger.deleted)

	for _, tc := range []struct{ bal, want string }{
		{"69.75", "You are owed 69.75\n"},
		{"-3", "You owe 3.00\n"},
		{"0", "All settled.\n"},
	} {
		ledger.balance = decimal.RequireFromString(tc.bal)
		out.Reset()
		require.NoError(t, app.Balance(ctx))
		assert.Equal(t, tc.want, out.String())
	}
}

func TestSyncPushPull(t *testing.T) {
	app, _, _, trig, out := newTestApp(readerFromLines())
	ctx := context.Background()

	require.NoError(t, app.Sync(ctx))
	require.NoError(t, app.Pull(ctx))
	require.NoError(t, app.Push(ctx, []string{"records"}))
	require.NoError(t, app.Push(ctx, nil))
	require.NoError(t, app.Push(ctx, []string{"notes"}))

	assert.Equal(t, 1, trig.synced)
	assert.Equal(t, 1, trig.pulled)
	assert.Equal(t, append([]models.Kind{models.KindRecords}, models.AllKinds...), trig.pushed)
	assert.Contains(t, out.String(), "success: pull: inserted=1")
	assert.Contains(t, out.String(), "Usage: push")
}

func TestLoginLogout_PauseScheduledSync(t *testing.T) {
	stubPassword(t, "pw")
	app, auth, _, trig, _ := newTestApp(readerFromLines("alice"))
	app.scheduler = syncer.NewScheduler(trig, auth, time.Hour, logging.NewNopLogger())
	ctx := context.Background()

	var ran []bool
	auth.during = func() { ran = append(ran, app.scheduler.RunOnce(ctx)) }

	require.NoError(t, app.Login(ctx))
	require.NoError(t, app.Logout(ctx))
	assert.Equal(t, []bool{false, false}, ran)
	assert.Zero(t, trig.synced)

	assert.True(t, app.scheduler.RunOnce(ctx))
	assert.Equal(t, 1, trig.synced)
}
