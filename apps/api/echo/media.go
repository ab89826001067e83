package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core/access"
)

// mediaUpload streams a file through to the backend media store. The upload
// runs under the request context, so closing the connection aborts it; that
// is the user-initiated cancellation path.
func (s *server) mediaUpload(ctx echo.Context) error {
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}

	decision := access.Evaluate(sess, access.Check{Action: access.ActionModify})
	if !decision.Allowed {
		return echo.NewHTTPError(http.StatusForbidden, decision.Reason)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = file.Close() }()

	result, err := s.opts.Upstream.Upload(
		ctx.Request().Context(), contextToken(ctx), "file", fileHeader.Filename, file,
	)
	if err != nil {
		return errors.Wrap(err, "relaying upload")
	}
	return ctx.JSONBlob(http.StatusCreated, result)
}
