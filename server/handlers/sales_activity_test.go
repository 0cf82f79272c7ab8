package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/gocti/clients/crmclient"
	"github.com/nomis52/gocti/phonecall"
	"github.com/nomis52/gocti/salesactivity"
)

func contactRequest(method, body, id string) *http.Request {
	req := httptest.NewRequest(method, "/api/contacts/"+id+"/x", strings.NewReader(body))
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func TestSalesActivityHandler(t *testing.T) {
	logger := &fakeActivityLogger{id: 99}
	h := NewSalesActivityHandler(logger)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, contactRequest(http.MethodPost, `{"note":"Sample note for Tutorial"}`, "16002341859"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, salesactivity.ID(16002341859), logger.contactID)
	assert.Equal(t, "Sample note for Tutorial", logger.note)

	var resp SalesActivityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, SalesActivityResponse{ID: 99, ContactID: 16002341859}, resp)
}

func TestSalesActivityHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		id   string
		body string
	}{
		{name: "bad contact id", id: "abc", body: `{"note":"n"}`},
		{name: "malformed body", id: "1", body: `{"note":`},
		{name: "unknown field", id: "1", body: `{"note":"n","extra":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &fakeActivityLogger{}
			w := httptest.NewRecorder()

			NewSalesActivityHandler(logger).ServeHTTP(w, contactRequest(http.MethodPost, tt.body, tt.id))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, logger.calls)
		})
	}
}

func TestSalesActivityHandler_PassesNoteAndIDThrough(t *testing.T) {
	logger := &fakeActivityLogger{id: 5}
	w := httptest.NewRecorder()

	NewSalesActivityHandler(logger).ServeHTTP(w, contactRequest(http.MethodPost, `{"note":""}`, "0"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, logger.calls)
	assert.Zero(t, logger.contactID)
	assert.Empty(t, logger.note)
}

func TestSalesActivityHandler_ClientDisconnect(t *testing.T) {
	logger := &fakeActivityLogger{id: 99}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := contactRequest(http.MethodPost, `{"note":"n"}`, "1").WithContext(ctx)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})

	w := httptest.NewRecorder()
	NewSalesActivityHandler(logger).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, logger.ctxErr)
}

func TestSalesActivityHandler_HidesCause(t *testing.T) {
	cause := &crmclient.StatusError{
		StatusCode: http.StatusBadRequest,
		Body:       `{"errors":{"message":["internal owner 42 lacks permission on account acme"]}}`,
	}
	err := &salesactivity.Error{
		Kind:  salesactivity.KindWriteFailed,
		Stage: salesactivity.StageWrite,
		Err:   fmt.Errorf("creating sales activity: %w", cause),
	}
	w := httptest.NewRecorder()

	NewSalesActivityHandler(&fakeActivityLogger{err: err}).ServeHTTP(w, contactRequest(http.MethodPost, `{"note":"n"}`, "1"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "lacks permission")
	assert.NotContains(t, w.Body.String(), "creating sales activity")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorResponse{Error: "Failed to add sales activity", Kind: "write_failed", Stage: "write"}, resp)
}

func TestSalesActivityHandler_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"outcome missing", activityError(salesactivity.KindReferenceDataNotFound, salesactivity.StageOutcome), http.StatusUnprocessableEntity, "reference_data_not_found"},
		{"identity failed", activityError(salesactivity.KindIdentityLookupFailed, salesactivity.StageOperator), http.StatusBadGateway, "identity_lookup_failed"},
		{"timed out", activityError(salesactivity.KindTimeout, salesactivity.StageWrite), http.StatusGatewayTimeout, "timeout"},
		{"duplicate", salesactivity.ErrInProgress, http.StatusConflict, ""},
		{"canceled", activityError(salesactivity.KindCanceled, salesactivity.StageWrite), http.StatusServiceUnavailable, "canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewSalesActivityHandler(&fakeActivityLogger{err: tt.err}).ServeHTTP(w, contactRequest(http.MethodPost, `{"note":"n"}`, "1"))

			assert.Equal(t, tt.wantCode, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantKind, resp.Kind)
		})
	}
}

func TestPhoneCallHandler(t *testing.T) {
	calls := &fakeCallLogger{id: 31}
	w := httptest.NewRecorder()

	body := `{"direction":"incoming","phone_number":"9876543210","note":"Sample note","contact":{"first_name":"John","last_name":"Doe"}}`
	NewPhoneCallHandler(calls).ServeHTTP(w, contactRequest(http.MethodPost, body, "16002341859"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":31}`, w.Body.String())
	assert.Equal(t, crmclient.ID(16002341859), calls.contact.ID)
	assert.Equal(t, "John", calls.contact.FirstName)
	assert.Equal(t, crmclient.CallIncoming, calls.call.Direction)
	assert.Equal(t, "9876543210", calls.call.PhoneNumber)
	assert.Equal(t, "Sample note", calls.note)
}

func TestPhoneCallHandler_DefaultDirection(t *testing.T) {
	calls := &fakeCallLogger{id: 31}
	w := httptest.NewRecorder()

	NewPhoneCallHandler(calls).ServeHTTP(w, contactRequest(http.MethodPost, `{"note":"n"}`, "5"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, calls.call.Direction)
}

func TestPhoneCallHandler_Errors(t *testing.T) {
	t.Run("invalid direction", func(t *testing.T) {
		calls := &fakeCallLogger{}
		w := httptest.NewRecorder()
		NewPhoneCallHandler(calls).ServeHTTP(w, contactRequest(http.MethodPost, `{"direction":"sideways"}`, "5"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, calls.calls)
	})

	t.Run("crm rejects", func(t *testing.T) {
		calls := &fakeCallLogger{err: fmt.Errorf("creating phone call: %w", &crmclient.StatusError{StatusCode: 500, Body: "stack trace"})}
		w := httptest.NewRecorder()
		NewPhoneCallHandler(calls).ServeHTTP(w, contactRequest(http.MethodPost, `{}`, "5"))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.JSONEq(t, `{"error":"Failed to log phone call"}`, w.Body.String())
	})

	t.Run("no contact", func(t *testing.T) {
		calls := &fakeCallLogger{err: phonecall.ErrContactRequired}
		w := httptest.NewRecorder()
		NewPhoneCallHandler(calls).ServeHTTP(w, contactRequest(http.MethodPost, `{}`, "0"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("client disconnect", func(t *testing.T) {
		calls := &fakeCallLogger{id: 31}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := mux.SetURLVars(contactRequest(http.MethodPost, `{}`, "5").WithContext(ctx), map[string]string{"id": "5"})

		w := httptest.NewRecorder()
		NewPhoneCallHandler(calls).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, calls.ctxErr)
	})
}
