package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core"
	"github.com/skillforge/gateway/core/approval"
	"github.com/skillforge/gateway/core/session"
)

type approvalResolveRequest struct {
	Note string `json:"note"`
}

func (ar *approvalResolveRequest) Validate() error {
	ar.Note = core.CleanString(ar.Note)
	return validate.Struct(ar)
}

func (s *server) approvalQuery(ctx echo.Context) error {
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}
	reqs, err := s.opts.Approvals.Query(ctx.Request().Context(), sess, contextToken(ctx))
	if err != nil {
		return errors.Wrap(err, "querying approval requests")
	}
	if reqs == nil {
		reqs = []approval.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (s *server) approvalApprove(ctx echo.Context) error {
	return s.approvalResolve(ctx, s.opts.Approvals.Approve)
}

func (s *server) approvalReject(ctx echo.Context) error {
	return s.approvalResolve(ctx, s.opts.Approvals.Reject)
}

func (s *server) approvalResolve(
	ctx echo.Context,
	resolve func(reqCtx context.Context, sess session.Session, token, id, note string) (approval.Request, error),
) error {
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}

	var data approvalResolveRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to approvalResolveRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	req, err := resolve(ctx.Request().Context(), sess, contextToken(ctx), ctx.Param("id"), data.Note)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}
