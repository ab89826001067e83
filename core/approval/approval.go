// Package approval orchestrates the teacher-approval workflow: managers and
// admins review pending teacher applications, and the applicant is notified
// of the outcome by email. The upstream backend owns the records; the
// gateway guards and relays.
package approval

import (
	"context"
	"encoding/json"
	"net/mail"
	"net/url"

	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core"
	"github.com/skillforge/gateway/core/access"
	"github.com/skillforge/gateway/core/session"
	"github.com/skillforge/gateway/services/upstream"
)

const kind = "teacher-approvals"

// Statuses as stored by the backend.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var ErrDenied = errors.New("permission denied")

type Request struct {
	ID           string `json:"id"`
	TeacherID    string `json:"teacher_id"`
	TeacherName  string `json:"teacher_name"`
	TeacherEmail string `json:"teacher_email"`
	TenantID     string `json:"tenant_id"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
}

// Backend is the slice of the upstream client the workflow needs.
type Backend interface {
	List(ctx context.Context, token, kind string, query url.Values) ([]upstream.Entity, error)
	Get(ctx context.Context, token, kind, id string) (upstream.Entity, error)
	Patch(ctx context.Context, token, kind, id string, body interface{}) (upstream.Entity, error)
}

type Service struct {
	backend Backend
	mailSvc core.EmailService
	logger  core.Logger
}

func NewService(backend Backend, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{backend: backend, mailSvc: mailSvc, logger: logger}
}

// Query lists approval requests the caller may view.
func (svc *Service) Query(ctx context.Context, sess session.Session, token string) ([]Request, error) {
	entities, err := svc.backend.List(ctx, token, kind, nil)
	if err != nil {
		return nil, errors.Wrap(err, "listing approval requests")
	}

	reqs := make([]Request, 0, len(entities))
	for _, ent := range entities {
		decision := access.Evaluate(sess, access.Check{Resource: ent.Access, Action: access.ActionView})
		if !decision.Allowed {
			continue
		}
		var req Request
		if err = json.Unmarshal(ent.Raw, &req); err != nil {
			return nil, errors.Wrap(err, "decoding approval request")
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (svc *Service) Approve(ctx context.Context, sess session.Session, token, id, note string) (Request, error) {
	return svc.resolve(ctx, sess, token, id, note, StatusApproved)
}

func (svc *Service) Reject(ctx context.Context, sess session.Session, token, id, note string) (Request, error) {
	return svc.resolve(ctx, sess, token, id, note, StatusRejected)
}

func (svc *Service) resolve(ctx context.Context, sess session.Session, token, id, note, status string) (Request, error) {
	ent, err := svc.backend.Get(ctx, token, kind, id)
	if err != nil {
		return Request{}, errors.Wrap(err, "finding approval request")
	}

	decision := access.Evaluate(sess, access.Check{Resource: ent.Access, Action: access.ActionModify})
	if !decision.Allowed {
		return Request{}, errors.Wrap(ErrDenied, decision.Reason)
	}

	ent, err = svc.backend.Patch(ctx, token, kind, id, map[string]string{
		"status": status,
		"note":   note,
	})
	if err != nil {
		return Request{}, errors.Wrap(err, "updating approval request")
	}

	var req Request
	if err = json.Unmarshal(ent.Raw, &req); err != nil {
		return Request{}, errors.Wrap(err, "decoding approval request")
	}
	svc.notify(req)
	return req, nil
}

func (svc *Service) notify(req Request) {
	if req.TeacherEmail == "" {
		return
	}
	subject, body := "Teacher application update", "Your teacher application is still under review."
	switch req.Status {
	case StatusApproved:
		subject = "Teacher application approved"
		body = "Congratulations! Your teacher application has been approved. You can now sign in to the teacher portal."
	case StatusRejected:
		subject = "Teacher application rejected"
		body = "We are sorry; your teacher application was not approved."
		if req.Note != "" {
			body += "\n\nReviewer note: " + req.Note
		}
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: req.TeacherName, Address: req.TeacherEmail}},
		Subject: subject,
		BodyStr: body,
	})
}
