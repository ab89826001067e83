package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skillforge/gateway/core/nav"
)

// navRetrieve returns the menu pruned for the caller's role and
// tenant-ownership; recomputed per request, never cached.
func (s *server) navRetrieve(ctx echo.Context) error {
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}
	items := nav.Filter(s.opts.NavTree, sess.Role, sess.HasTenant())
	return ctx.JSON(http.StatusOK, items)
}
