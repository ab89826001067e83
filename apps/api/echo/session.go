package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core"
	"github.com/skillforge/gateway/storage/state"
)

// sessionRetrieve exposes the resolved session (whoami passthrough).
func (s *server) sessionRetrieve(ctx echo.Context) error {
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

// user preferences persisted at the state boundary; a malformed stored
// value degrades to absent, never errors.

var prefNames = map[string]struct{}{
	"country":  {},
	"language": {},
}

type prefUpdateRequest struct {
	Value string `json:"value" validate:"required"`
}

func (pr *prefUpdateRequest) Validate() error {
	pr.Value = core.CleanString(pr.Value)
	return validate.Struct(pr)
}

func (s *server) prefRetrieve(ctx echo.Context) error {
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}
	name := ctx.Param("name")
	if _, ok := prefNames[name]; !ok {
		return errHttpNotFound
	}

	value, err := s.opts.Store.Get(ctx.Request().Context(), state.PrefKey(sess.UserID, name))
	if err != nil { // absent or unreadable: same thing
		return ctx.JSON(http.StatusOK, echo.Map{"name": name, "value": ""})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"name": name, "value": string(value)})
}

func (s *server) prefUpdate(ctx echo.Context) error {
	sess, err := s.contextSession(ctx)
	if err != nil {
		return err
	}
	name := ctx.Param("name")
	if _, ok := prefNames[name]; !ok {
		return errHttpNotFound
	}

	var data prefUpdateRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to prefUpdateRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	key := state.PrefKey(sess.UserID, name)
	if err = s.opts.Store.Set(ctx.Request().Context(), key, []byte(data.Value), 0); err != nil {
		return errors.Wrap(err, "persisting preference")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"name": name, "value": data.Value})
}
