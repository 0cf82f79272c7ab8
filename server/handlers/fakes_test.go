package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/logging"
	"github.com/nomis52/gocti/notify"
	"github.com/nomis52/gocti/phonecall"
	"github.com/nomis52/gocti/salesactivity"
	"github.com/nomis52/gocti/server/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeActivityLogger struct {
	contactID salesactivity.ID
	note      string
	calls     int
	id        salesactivity.ID
	err       error
	ctxErr    error
}

func (f *fakeActivityLogger) LogPhoneActivity(ctx context.Context, contactID salesactivity.ID, note string) (salesactivity.ID, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	f.contactID, f.note = contactID, note
	return f.id, f.err
}

type fakeCallLogger struct {
	contact crmclient.Contact
	call    phonecall.Call
	note    string
	calls   int
	id      crmclient.ID
	err     error
	ctxErr  error
}

func (f *fakeCallLogger) LogCall(ctx context.Context, contact crmclient.Contact, call phonecall.Call, note string) (crmclient.ID, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	f.contact, f.call, f.note = contact, call, note
	return f.id, f.err
}

type fakeContacts struct {
	filters []crmclient.ContactFilter
	page    *crmclient.ContactPage
	found   []crmclient.Contact
	err     error

	listedPage int
	lookedUp   string
	created    []string
}

func (f *fakeContacts) Filters(ctx context.Context) ([]crmclient.ContactFilter, error) {
	return f.filters, f.err
}

func (f *fakeContacts) List(ctx context.Context, page int) (*crmclient.ContactPage, error) {
	f.listedPage = page
	return f.page, f.err
}

func (f *fakeContacts) Create(ctx context.Context, phone, firstName, lastName string) (*crmclient.Contact, error) {
	f.created = append(f.created, phone, firstName, lastName)
	if f.err != nil {
		return nil, f.err
	}
	return &crmclient.Contact{ID: 900, MobileNumber: phone, FirstName: firstName, LastName: lastName}, nil
}

func (f *fakeContacts) FindByPhone(ctx context.Context, phone string) ([]crmclient.Contact, error) {
	f.lookedUp = phone
	return f.found, f.err
}

type fakeIdentity struct {
	op  salesactivity.Operator
	err error
}

func (f fakeIdentity) CurrentOperator(ctx context.Context) (salesactivity.Operator, error) {
	return f.op, f.err
}

type fakeFeed struct {
	items []notify.Notification
	since uint64
}

func (f *fakeFeed) Since(seq uint64) []notify.Notification {
	f.since = seq
	out := []notify.Notification{}
	for _, n := range f.items {
		if n.Seq > seq {
			out = append(out, n)
		}
	}
	return out
}

type fakeHistory struct {
	runs []salesactivity.Invocation
}

func (f *fakeHistory) History() []salesactivity.Invocation {
	return f.runs
}

func (f *fakeHistory) Get(id string) (salesactivity.Invocation, bool) {
	for _, r := range f.runs {
		if r.ID == id {
			return r, true
		}
	}
	return salesactivity.Invocation{}, false
}

type fakeLogs map[string][]logging.LogEntry

func (f fakeLogs) GetLogs(id string) []logging.LogEntry {
	return f[id]
}

type fakeProber struct {
	status types.ProbeStatus
	runs   int
	err    error
}

func (f *fakeProber) Status() types.ProbeStatus {
	return f.status
}

func (f *fakeProber) Run(ctx context.Context) error {
	f.runs++
	return f.err
}

type fakeProperties types.ServerProperties

func (f fakeProperties) Properties() types.ServerProperties {
	return types.ServerProperties(f)
}
