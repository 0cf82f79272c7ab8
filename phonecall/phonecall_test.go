package phonecall

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/notify"
)

type fakeCreator struct {
	calls []crmclient.PhoneCall
	id    crmclient.ID
	err   error
}

func (f *fakeCreator) CreatePhoneCall(ctx context.Context, call crmclient.PhoneCall) (crmclient.ID, error) {
	f.calls = append(f.calls, call)
	return f.id, f.err
}

type recordingSink struct {
	levels []notify.Level
}

func (s *recordingSink) Notify(level notify.Level, message string) {
	s.levels = append(s.levels, level)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var johnDoe = crmclient.Contact{ID: 16002341859, FirstName: "John", LastName: "Doe"}

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	l, err := New(&fakeCreator{}, nil)
	require.NoError(t, err)
	assert.Equal(t, crmclient.CallOutgoing, l.direction)
}

func TestLogCall(t *testing.T) {
	tests := []struct {
		name          string
		opts          []Option
		contact       crmclient.Contact
		call          Call
		creatorErr    error
		wantErr       string
		wantDirection crmclient.CallDirection
		wantMobile    string
		wantLevel     notify.Level
	}{
		{
			name:          "outgoing call",
			contact:       johnDoe,
			call:          Call{Direction: crmclient.CallOutgoing, PhoneNumber: "9876543210"},
			wantDirection: crmclient.CallOutgoing,
			wantMobile:    "9876543210",
			wantLevel:     notify.LevelSuccess,
		},
		{
			name:          "default direction",
			opts:          []Option{WithDefaultDirection(crmclient.CallIncoming)},
			contact:       johnDoe,
			call:          Call{PhoneNumber: "9876543210"},
			wantDirection: crmclient.CallIncoming,
			wantMobile:    "9876543210",
			wantLevel:     notify.LevelSuccess,
		},
		{
			name:          "contact number kept",
			contact:       crmclient.Contact{ID: 1, MobileNumber: "111"},
			call:          Call{PhoneNumber: "222"},
			wantDirection: crmclient.CallOutgoing,
			wantMobile:    "111",
			wantLevel:     notify.LevelSuccess,
		},
		{
			name:      "invalid direction",
			contact:   johnDoe,
			call:      Call{Direction: "sideways"},
			wantErr:   "invalid call direction",
			wantLevel: notify.LevelDanger,
		},
		{
			name:      "missing contact id",
			contact:   crmclient.Contact{FirstName: "John"},
			wantErr:   "contact id is required",
			wantLevel: notify.LevelDanger,
		},
		{
			name:       "crm failure",
			contact:    johnDoe,
			creatorErr: &crmclient.StatusError{StatusCode: 500},
			wantErr:    "creating phone call",
			wantLevel:  notify.LevelDanger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{id: 55, err: tt.creatorErr}
			sink := &recordingSink{}
			l, err := New(creator, sink, append([]Option{WithLogger(quietLogger())}, tt.opts...)...)
			require.NoError(t, err)

			id, err := l.LogCall(context.Background(), tt.contact, tt.call, "Sample note for Tutorial")
			assert.Equal(t, []notify.Level{tt.wantLevel}, sink.levels)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, crmclient.ID(55), id)

			require.Len(t, creator.calls, 1)
			got := creator.calls[0]
			assert.Equal(t, tt.wantDirection, got.Direction)
			assert.Equal(t, "Contact", got.TargetableType)
			assert.Equal(t, tt.contact.ID, got.Targetable.ID)
			assert.Equal(t, tt.wantMobile, got.Targetable.MobileNumber)
			assert.Equal(t, "Sample note for Tutorial", got.Note)
		})
	}
}

func TestLogCall_StatusErrorIsPreserved(t *testing.T) {
	l, err := New(&fakeCreator{err: &crmclient.StatusError{StatusCode: 403}}, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = l.LogCall(context.Background(), johnDoe, Call{}, "n")

	var statusErr *crmclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 403, statusErr.StatusCode)
}

func TestLogCall_MultipartAgainstCRM(t *testing.T) {
	var form map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/sales/api/phone_calls", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		form = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			form[k] = v[0]
		}
		_, _ = w.Write([]byte(`{"phone_call":{"id":31}}`))
	}))
	defer ts.Close()

	client, err := crmclient.New(ts.URL, crmclient.WithAPIKey("k"), crmclient.WithLogger(quietLogger()))
	require.NoError(t, err)
	l, err := New(client, nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	id, err := l.LogCall(context.Background(), johnDoe, Call{Direction: crmclient.CallOutgoing, PhoneNumber: "9876543210"}, "Sample note for Tutorial")
	require.NoError(t, err)
	assert.Equal(t, crmclient.ID(31), id)

	assert.Equal(t, "outgoing", form["phone_call[call_direction]"])
	assert.Equal(t, "Contact", form["phone_call[targetable_type]"])
	assert.Equal(t, "16002341859", form["phone_call[targetable][id]"])
	assert.Equal(t, "John", form["phone_call[targetable][first_name]"])
	assert.Equal(t, "Doe", form["phone_call[targetable][last_name]"])
	assert.Equal(t, "9876543210", form["phone_call[targetable][mobile_number]"])
	assert.Equal(t, "Sample note for Tutorial", form["phone_call[note][description]"])
}
