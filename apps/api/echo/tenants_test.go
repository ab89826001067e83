package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillforge/gateway/core/session"
)

func decodeSnapshot(t *testing.T, body string) tenantSnapshotResponse {
	t.Helper()
	var snap tenantSnapshotResponse
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	return snap
}

func TestTenantList(t *testing.T) {
	t.Run("selects the session tenant", func(t *testing.T) {
		st := newServerTest(t)
		st.stubMe(managerMe)
		st.stub("/stores", storesBody)

		rec := st.request(http.MethodGet, "/api/tenants", st.token(session.RoleManager, "t1"), nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		snap := decodeSnapshot(t, rec.Body.String())
		assert.Equal(t, "ready", snap.State)
		assert.Len(t, snap.Tenants, 2)
		if assert.NotNil(t, snap.Selected) {
			assert.Equal(t, "t1", snap.Selected.ID)
		}
	})

	t.Run("empty tenant list is a distinct conflict", func(t *testing.T) {
		st := newServerTest(t)
		st.stubMe(platformAdminMe)
		st.stub("/stores", `[]`)

		rec := st.request(http.MethodGet, "/api/tenants", st.token(session.RoleAdmin, ""), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"tenant_access_required"}`, rec.Body.String())
	})

	t.Run("upstream failure is a bad gateway", func(t *testing.T) {
		st := newServerTest(t)
		st.stubMe(managerMe)
		st.mux.HandleFunc("/stores", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		rec := st.request(http.MethodGet, "/api/tenants", st.token(session.RoleManager, "t1"), nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"tenant_fetch_failed"}`, rec.Body.String())
	})
}

func TestTenantSelect(t *testing.T) {
	st := newServerTest(t)
	st.stubMe(managerMe)
	st.stub("/stores", storesBody)
	token := st.token(session.RoleManager, "t1")

	rec := st.request(http.MethodPost, "/api/tenants/select", token, strings.NewReader(`{"tenant_id":"t2"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec.Body.String())
	if assert.NotNil(t, snap.Selected) {
		assert.Equal(t, "t2", snap.Selected.ID)
	}

	// an id outside the list leaves the selection untouched
	rec = st.request(http.MethodPost, "/api/tenants/select", token, strings.NewReader(`{"tenant_id":"nope"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec.Body.String())
	if assert.NotNil(t, snap.Selected) {
		assert.Equal(t, "t2", snap.Selected.ID)
	}

	// missing tenant_id fails validation
	rec = st.request(http.MethodPost, "/api/tenants/select", token, strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantRefresh(t *testing.T) {
	st := newServerTest(t)
	st.stubMe(managerMe)
	token := st.token(session.RoleManager, "t1")

	calls := 0
	st.mux.HandleFunc("/stores", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(storesBody))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"t1","name":"Acme School","slug":"acme","is_active":true}]`))
	})

	// first load sees both tenants and the session binding selects t1
	rec := st.request(http.MethodGet, "/api/tenants", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeSnapshot(t, rec.Body.String()).Tenants, 2)

	// a second list is served from cache
	rec = st.request(http.MethodGet, "/api/tenants", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)

	// refresh bypasses the cache and picks up the shrunken list
	rec = st.request(http.MethodPost, "/api/tenants/refresh", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec.Body.String())
	assert.Equal(t, "ready", snap.State)
	assert.Len(t, snap.Tenants, 1)
	if assert.NotNil(t, snap.Selected) {
		assert.Equal(t, "t1", snap.Selected.ID)
	}
	assert.Equal(t, 2, calls)
}
