package echoapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/skillforge/gateway/core"
	"github.com/skillforge/gateway/core/approval"
	"github.com/skillforge/gateway/core/session"
	"github.com/skillforge/gateway/core/tenant"
	"github.com/skillforge/gateway/services/upstream"
	"github.com/skillforge/gateway/storage/state/inmem"
	testutil "github.com/skillforge/gateway/tests"
)

// recordingMailer captures outbound emails synchronously.
type recordingMailer struct {
	mu   sync.Mutex
	Sent []*core.EmailMessage
}

func (m *recordingMailer) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			continue
		}
		m.Sent = append(m.Sent, msg)
	}
}

// serverTest wires a full server against a stubbed upstream backend.
type serverTest struct {
	t      *testing.T
	server Server
	conf   *core.Config
	logger *testutil.Logger
	store  *inmem.Store
	mailer *recordingMailer
	mux    *http.ServeMux
}

func newServerTest(t *testing.T, confMutations ...func(*core.Config)) *serverTest {
	t.Helper()

	st := &serverTest{
		t:      t,
		conf:   testutil.NewConfig(),
		logger: testutil.NewLogger(),
		store:  inmem.NewStore(),
		mailer: &recordingMailer{},
		mux:    http.NewServeMux(),
	}

	backend := httptest.NewServer(st.mux)
	t.Cleanup(backend.Close)
	st.conf.Upstream.BaseURL = backend.URL
	for _, mutate := range confMutations {
		mutate(st.conf)
	}

	client := upstream.NewClient(st.conf.Upstream)
	verifier := session.NewVerifier(st.conf, st.logger)
	resolver := session.NewResolver(st.conf, verifier, client)
	cache := tenant.NewCache(st.store, st.conf.Tenant.CacheTTL)
	registry := tenant.NewRegistry(cache, st.logger, 64, time.Minute)
	approvals := approval.NewService(client, st.mailer, st.logger)

	st.server = NewServer(&Options{
		DisableReqLogs: true,
		Conf:           st.conf,
		Logger:         st.logger,
		Verifier:       verifier,
		Resolver:       resolver,
		Upstream:       client,
		Tenants:        registry,
		Store:          st.store,
		Approvals:      approvals,
	})
	return st
}

// stub registers an upstream route returning a fixed JSON body.
func (st *serverTest) stub(pattern, body string) {
	st.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

// stubMe registers the whoami endpoint.
func (st *serverTest) stubMe(body string) {
	st.stub("/me", body)
}

func (st *serverTest) token(role, storeID string) string {
	st.t.Helper()
	claims := session.NewClaims(st.conf, "user-1", role, storeID)
	token, err := session.GenerateToken([]byte(st.conf.SecretKey), claims)
	if err != nil {
		st.t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func (st *serverTest) request(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	st.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	st.server.ServeHTTP(rec, req)
	return rec
}

const managerMe = `{"status":"ok","data":{
	"id":"user-1","role":"MANAGER","storeId":"t1",
	"profile":{"name":"Jo","email":"jo@acme.test"}
}}`

const platformAdminMe = `{"status":"ok","data":{
	"id":"user-1","role":"ADMIN","platformLevel":true,
	"profile":{"name":"Root","email":"root@skillforge.test"}
}}`

const storesBody = `{"data":{"data":[
	{"id":"t1","name":"Acme School","slug":"acme","currency":{"code":"EUR","symbol":"€"},"is_active":true},
	{"id":"t2","name":"Beta School","slug":"beta","currency":{"code":"USD","symbol":"$"},"is_active":true}
]}}`
