package approval

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/skillforge/gateway/core/access"
	"github.com/skillforge/gateway/core/session"
	emailsvc "github.com/skillforge/gateway/services/email"
	"github.com/skillforge/gateway/services/upstream"
	testutil "github.com/skillforge/gateway/tests"
)

type backendMock struct {
	entities map[string]upstream.Entity
	listErr  error
	patched  map[string]interface{}
}

func (b *backendMock) List(_ context.Context, _, _ string, _ url.Values) ([]upstream.Entity, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]upstream.Entity, 0, len(b.entities))
	for _, ent := range b.entities {
		out = append(out, ent)
	}
	return out, nil
}

func (b *backendMock) Get(_ context.Context, _, _, id string) (upstream.Entity, error) {
	ent, ok := b.entities[id]
	if !ok {
		return upstream.Entity{}, &upstream.APIError{Status: 404, Body: "not found"}
	}
	return ent, nil
}

func (b *backendMock) Patch(_ context.Context, _, _, id string, body interface{}) (upstream.Entity, error) {
	ent, ok := b.entities[id]
	if !ok {
		return upstream.Entity{}, &upstream.APIError{Status: 404, Body: "not found"}
	}
	b.patched = map[string]interface{}{id: body}

	var req Request
	_ = json.Unmarshal(ent.Raw, &req)
	req.Status = body.(map[string]string)["status"]
	req.Note = body.(map[string]string)["note"]
	raw, _ := json.Marshal(req)
	return upstream.Entity{Raw: raw, Access: ent.Access}, nil
}

func pendingEntity(t *testing.T, id, email string) upstream.Entity {
	t.Helper()
	raw, err := json.Marshal(Request{
		ID:           id,
		TeacherID:    "teacher-" + id,
		TeacherName:  "Sam Doe",
		TeacherEmail: email,
		TenantID:     "t1",
		Status:       StatusPending,
	})
	if err != nil {
		t.Fatalf("marshalling request: %v", err)
	}
	return upstream.Entity{Raw: raw}
}

func TestServiceQuery(t *testing.T) {
	ctx := context.Background()
	manager := session.Session{UserID: "u1", Role: session.RoleManager, StoreID: "t1"}

	t.Run("lists requests", func(t *testing.T) {
		backend := &backendMock{entities: map[string]upstream.Entity{
			"a1": pendingEntity(t, "a1", "sam@acme.test"),
		}}
		svc := NewService(backend, emailsvc.NewConsoleServiceMock(), testutil.NewLogger())

		reqs, err := svc.Query(ctx, manager, "tok")
		if assert.NoError(t, err) && assert.Len(t, reqs, 1) {
			assert.Equal(t, "a1", reqs[0].ID)
			assert.Equal(t, StatusPending, reqs[0].Status)
		}
	})

	t.Run("drops entries the caller may not view", func(t *testing.T) {
		hidden := pendingEntity(t, "a2", "")
		hidden.Access = &access.Descriptor{CanView: false}
		backend := &backendMock{entities: map[string]upstream.Entity{
			"a1": pendingEntity(t, "a1", ""),
			"a2": hidden,
		}}
		svc := NewService(backend, emailsvc.NewConsoleServiceMock(), testutil.NewLogger())

		reqs, err := svc.Query(ctx, manager, "tok")
		assert.NoError(t, err)
		if assert.Len(t, reqs, 1) {
			assert.Equal(t, "a1", reqs[0].ID)
		}
	})

	t.Run("propagates backend failures", func(t *testing.T) {
		backend := &backendMock{listErr: errors.New("boom")}
		svc := NewService(backend, emailsvc.NewConsoleServiceMock(), testutil.NewLogger())
		_, err := svc.Query(ctx, manager, "tok")
		assert.Error(t, err)
	})
}

func TestServiceResolve(t *testing.T) {
	ctx := context.Background()
	manager := session.Session{UserID: "u1", Role: session.RoleManager, StoreID: "t1"}
	teacher := session.Session{UserID: "u2", Role: session.RoleTeacher, StoreID: "t1"}

	t.Run("approve notifies the applicant", func(t *testing.T) {
		backend := &backendMock{entities: map[string]upstream.Entity{
			"a1": pendingEntity(t, "a1", "sam@acme.test"),
		}}
		mailer := emailsvc.NewConsoleServiceMock()
		svc := NewService(backend, mailer, testutil.NewLogger())

		req, err := svc.Approve(ctx, manager, "tok", "a1", "welcome aboard")
		if assert.NoError(t, err) {
			assert.Equal(t, StatusApproved, req.Status)
		}
		if assert.Len(t, mailer.Sent, 1) {
			assert.Equal(t, "Teacher application approved", mailer.Sent[0].Subject)
			assert.Equal(t, "sam@acme.test", mailer.Sent[0].To[0].Address)
		}
	})

	t.Run("reject carries the reviewer note", func(t *testing.T) {
		backend := &backendMock{entities: map[string]upstream.Entity{
			"a1": pendingEntity(t, "a1", "sam@acme.test"),
		}}
		mailer := emailsvc.NewConsoleServiceMock()
		svc := NewService(backend, mailer, testutil.NewLogger())

		req, err := svc.Reject(ctx, manager, "tok", "a1", "incomplete profile")
		if assert.NoError(t, err) {
			assert.Equal(t, StatusRejected, req.Status)
			assert.Equal(t, "incomplete profile", req.Note)
		}
		if assert.Len(t, mailer.Sent, 1) {
			assert.Equal(t, "Teacher application rejected", mailer.Sent[0].Subject)
			assert.Contains(t, mailer.Sent[0].TextContent, "incomplete profile")
		}
	})

	t.Run("no email without an address", func(t *testing.T) {
		backend := &backendMock{entities: map[string]upstream.Entity{
			"a1": pendingEntity(t, "a1", ""),
		}}
		mailer := emailsvc.NewConsoleServiceMock()
		svc := NewService(backend, mailer, testutil.NewLogger())

		_, err := svc.Approve(ctx, manager, "tok", "a1", "")
		assert.NoError(t, err)
		assert.Empty(t, mailer.Sent)
	})

	t.Run("teachers may not resolve", func(t *testing.T) {
		backend := &backendMock{entities: map[string]upstream.Entity{
			"a1": pendingEntity(t, "a1", "sam@acme.test"),
		}}
		mailer := emailsvc.NewConsoleServiceMock()
		svc := NewService(backend, mailer, testutil.NewLogger())

		_, err := svc.Approve(ctx, teacher, "tok", "a1", "")
		assert.Equal(t, ErrDenied, errors.Cause(err))
		assert.Nil(t, backend.patched)
		assert.Empty(t, mailer.Sent)
	})

	t.Run("missing request", func(t *testing.T) {
		backend := &backendMock{entities: map[string]upstream.Entity{}}
		svc := NewService(backend, emailsvc.NewConsoleServiceMock(), testutil.NewLogger())
		_, err := svc.Approve(ctx, manager, "tok", "a1", "")
		assert.Error(t, err)
	})
}
