package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core/access"
	"github.com/skillforge/gateway/core/session"
)

// resourcePolicy is the page-level guard configuration for one entity kind.
// Resource-level flags come from the backend on each entity.
type resourcePolicy struct {
	RequiredRole     string // applies to every action
	ManagePermission string // additionally required for modify/delete
}

var resourceKinds = map[string]resourcePolicy{
	"courses":    {},
	"seasons":    {},
	"lessons":    {},
	"products":   {},
	"categories": {},
	"media":      {},
	"users":      {RequiredRole: session.RoleManager, ManagePermission: "users.manage"},
	"themes":     {RequiredRole: session.RoleManager},
}

func (s *server) resourceCheck(ctx echo.Context, sess session.Session, policy resourcePolicy, resource *access.Descriptor, action access.Action) error {
	check := access.Check{
		RequiredRole: policy.RequiredRole,
		Resource:     resource,
		Action:       action,
	}
	if action != access.ActionView {
		check.RequiredPermission = policy.ManagePermission
	}

	decision := access.Evaluate(sess, check)
	if decision.Allowed {
		return nil
	}
	// callers may opt out of the denial payload and take a redirect instead
	if ctx.QueryParam("redirect") == "true" {
		return ctx.Redirect(http.StatusFound, "/unauthorized")
	}
	return echo.NewHTTPError(http.StatusForbidden, decision.Reason)
}

func resourceKind(ctx echo.Context) (string, resourcePolicy, error) {
	kind := ctx.Param("kind")
	policy, ok := resourceKinds[kind]
	if !ok {
		return "", resourcePolicy{}, errUnknownResourceKind
	}
	return kind, policy, nil
}

func (s *server) resourceList(ctx echo.Context) error {
	kind, policy, err := resourceKind(ctx)
	if err != nil {
		return err
	}
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}
	if err = s.resourceCheck(ctx, sess, policy, nil, access.ActionView); err != nil {
		return err
	}

	entities, err := s.opts.Upstream.List(ctx.Request().Context(), contextToken(ctx), kind, ctx.QueryParams())
	if err != nil {
		return errors.Wrapf(err, "listing %s", kind)
	}

	items := make([]json.RawMessage, 0, len(entities))
	for _, ent := range entities {
		decision := access.Evaluate(sess, access.Check{Resource: ent.Access, Action: access.ActionView})
		if decision.Allowed {
			items = append(items, ent.Raw)
		}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (s *server) resourceRetrieve(ctx echo.Context) error {
	kind, policy, err := resourceKind(ctx)
	if err != nil {
		return err
	}
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}

	ent, err := s.opts.Upstream.Get(ctx.Request().Context(), contextToken(ctx), kind, ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "finding %s", kind)
	}
	if err = s.resourceCheck(ctx, sess, policy, ent.Access, access.ActionView); err != nil {
		return err
	}
	return ctx.JSONBlob(http.StatusOK, ent.Raw)
}

func (s *server) resourceCreate(ctx echo.Context) error {
	kind, policy, err := resourceKind(ctx)
	if err != nil {
		return err
	}
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}
	if err = s.resourceCheck(ctx, sess, policy, nil, access.ActionModify); err != nil {
		return err
	}

	body := map[string]interface{}{}
	if err = ctx.Bind(&body); err != nil {
		return errors.Wrap(err, "binding resource body")
	}
	ent, err := s.opts.Upstream.Create(ctx.Request().Context(), contextToken(ctx), kind, body)
	if err != nil {
		return errors.Wrapf(err, "creating %s", kind)
	}
	return ctx.JSONBlob(http.StatusCreated, ent.Raw)
}

func (s *server) resourceUpdate(ctx echo.Context) error {
	kind, policy, err := resourceKind(ctx)
	if err != nil {
		return err
	}
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	token := contextToken(ctx)
	id := ctx.Param("id")

	ent, err := s.opts.Upstream.Get(reqCtx, token, kind, id)
	if err != nil {
		return errors.Wrapf(err, "finding %s", kind)
	}
	if err = s.resourceCheck(ctx, sess, policy, ent.Access, access.ActionModify); err != nil {
		return err
	}

	body := map[string]interface{}{}
	if err = ctx.Bind(&body); err != nil {
		return errors.Wrap(err, "binding resource body")
	}
	ent, err = s.opts.Upstream.Patch(reqCtx, token, kind, id, body)
	if err != nil {
		return errors.Wrapf(err, "updating %s", kind)
	}
	return ctx.JSONBlob(http.StatusOK, ent.Raw)
}

func (s *server) resourceDestroy(ctx echo.Context) error {
	kind, policy, err := resourceKind(ctx)
	if err != nil {
		return err
	}
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	token := contextToken(ctx)
	id := ctx.Param("id")

	ent, err := s.opts.Upstream.Get(reqCtx, token, kind, id)
	if err != nil {
		return errors.Wrapf(err, "finding %s", kind)
	}
	if err = s.resourceCheck(ctx, sess, policy, ent.Access, access.ActionDelete); err != nil {
		return err
	}

	if err = s.opts.Upstream.Delete(reqCtx, token, kind, id); err != nil {
		return errors.Wrapf(err, "deleting %s", kind)
	}
	return ctx.NoContent(http.StatusNoContent)
}
