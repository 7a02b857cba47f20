package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, handler gin.HandlerFunc, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	data, err := json.Marshal(body)
	require.NoError(t, err)

	r := gin.New()
	r.POST(path, handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func validCaseBody() map[string]any {
	return map[string]any{
		"clientId":    "a3bb189e-8bf9-3888-9912-ace4e6543002",
		"patientId":   "c0a1b2c3d4e5f60718293a4b5c6d7e8f",
		"hospitalId":  10,
		"diseaseId":   1,
		"illnessDate": "2026-08-01",
		"patientType": "OPD",
		"ageYears":    34,
	}
}

func TestLooksLikeOfflineID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected bool
	}{
		{name: "offline uuid", id: "a3bb189e-8bf9-3888-9912-ace4e6543002", expected: true},
		{name: "server id", id: "c0a1b2c3d4e5f60718293a4b5c6d7e8f", expected: false},
		{name: "numeric id", id: "12345", expected: false},
		{name: "36 chars without hyphens", id: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", expected: false},
		{name: "empty", id: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, looksLikeOfflineID(tt.id))
		})
	}
}

func TestSyncCaseRejectsOfflinePatientID(t *testing.T) {
	body := validCaseBody()
	body["patientId"] = "a3bb189e-8bf9-3888-9912-ace4e6543002"

	// The rejection happens before any database access.
	w := postJSON(t, SyncCaseHandler(nil), "/api/sync/case", body)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp SyncErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Patient not synced yet. Please sync patients first.", resp.Error)
}

func TestSyncCaseBindingErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{name: "missing patientId", mutate: func(b map[string]any) { delete(b, "patientId") }},
		{name: "missing illnessDate", mutate: func(b map[string]any) { delete(b, "illnessDate") }},
		{name: "empty illnessDate", mutate: func(b map[string]any) { b["illnessDate"] = "" }},
		{name: "missing hospitalId", mutate: func(b map[string]any) { delete(b, "hospitalId") }},
		{name: "bad clientId", mutate: func(b map[string]any) { b["clientId"] = "not-a-uuid" }},
		{name: "bad patientType", mutate: func(b map[string]any) { b["patientType"] = "WALK_IN" }},
		{name: "bad condition", mutate: func(b map[string]any) { b["condition"] = "CURED" }},
		{name: "negative age", mutate: func(b map[string]any) { b["ageYears"] = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validCaseBody()
			tt.mutate(body)

			w := postJSON(t, SyncCaseHandler(nil), "/api/sync/case", body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp SyncErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestSyncPatientBindingErrors(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"idCard":    "1234567890123",
			"firstName": "Somchai",
			"lastName":  "Jaidee",
			"gender":    "MALE",
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{name: "missing firstName", mutate: func(b map[string]any) { delete(b, "firstName") }},
		{name: "missing gender", mutate: func(b map[string]any) { delete(b, "gender") }},
		{name: "bad gender", mutate: func(b map[string]any) { b["gender"] = "M" }},
		{name: "idCard too short", mutate: func(b map[string]any) { b["idCard"] = "12345" }},
		{name: "idCard not numeric", mutate: func(b map[string]any) { b["idCard"] = "12345678901ab" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.mutate(body)

			w := postJSON(t, SyncPatientHandler(nil), "/api/sync/patient", body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp SyncErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}
