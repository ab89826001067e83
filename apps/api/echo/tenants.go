package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core/session"
	"github.com/skillforge/gateway/core/tenant"
)

type (
	tenantSelectRequest struct {
		TenantID string `json:"tenant_id" validate:"required"`
	}

	tenantSnapshotResponse struct {
		State    string          `json:"state"`
		Tenants  []tenant.Tenant `json:"tenants"`
		Selected *tenant.Tenant  `json:"selected"`
	}
)

func (tr *tenantSelectRequest) Validate() error {
	return validate.Struct(tr)
}

// tenantSource adapts the upstream client to a per-request tenant.Source,
// carrying the caller's token.
func (s *server) tenantSource(ctx echo.Context) tenant.Source {
	token := contextToken(ctx)
	return tenant.SourceFunc(func(reqCtx context.Context) ([]tenant.Tenant, error) {
		return s.opts.Upstream.Tenants(reqCtx, token)
	})
}

func (s *server) tenantProvider(ctx echo.Context) (*tenant.Provider, session.Session, error) {
	sess, err := s.contextSession(ctx)
	if err != nil {
		return nil, session.Session{}, err
	}
	return s.opts.Tenants.For(sess.UserID), sess, nil
}

func snapshotResponse(ctx echo.Context, snap tenant.Snapshot) error {
	if snap.State == tenant.StateError {
		return errTenantFetchFailed
	}
	// authenticated but nothing to operate on; distinct from a permission denial
	if snap.State == tenant.StateReady && len(snap.Tenants) == 0 {
		return errTenantAccessRequired
	}
	return ctx.JSON(http.StatusOK, tenantSnapshotResponse{
		State:    snap.State.String(),
		Tenants:  snap.Tenants,
		Selected: snap.Selected,
	})
}

func (s *server) tenantList(ctx echo.Context) error {
	provider, sess, err := s.tenantProvider(ctx)
	if err != nil {
		return err
	}
	// the session's tenant binding is the backend-preferred selection
	snap := provider.Load(ctx.Request().Context(), s.tenantSource(ctx), sess.StoreID)
	return snapshotResponse(ctx, snap)
}

func (s *server) tenantSelect(ctx echo.Context) error {
	provider, sess, err := s.tenantProvider(ctx)
	if err != nil {
		return err
	}

	var data tenantSelectRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to tenantSelectRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if provider.Snapshot().State == tenant.StateInit {
		provider.Load(reqCtx, s.tenantSource(ctx), sess.StoreID)
	}
	snap := provider.Select(reqCtx, data.TenantID)
	return snapshotResponse(ctx, snap)
}

func (s *server) tenantRefresh(ctx echo.Context) error {
	provider, _, err := s.tenantProvider(ctx)
	if err != nil {
		return err
	}
	snap := provider.Refresh(ctx.Request().Context(), s.tenantSource(ctx))
	return snapshotResponse(ctx, snap)
}
