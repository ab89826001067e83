// Package upstream is the REST client for the remote SkillForge backend,
// the sole source of truth for domain data and access-control decisions.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core"
	"github.com/skillforge/gateway/core/access"
	"github.com/skillforge/gateway/core/session"
	"github.com/skillforge/gateway/core/tenant"
)

// APIError is a non-2xx upstream response. Callers surface it transiently
// (toast-style) and keep their prior state; nothing is applied optimistically.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.Status, e.Body)
}

// Entity is one domain object as returned by the backend, with its parsed
// access-control descriptor when the payload carries one.
type Entity struct {
	Raw    json.RawMessage
	Access *access.Descriptor
}

type Client struct {
	base        string
	tenantsPath string
	http        *http.Client
}

func NewClient(conf core.UpstreamConfig) *Client {
	return &Client{
		base:        strings.TrimRight(conf.BaseURL, "/"),
		tenantsPath: conf.TenantsPath,
		http:        &http.Client{Timeout: conf.Timeout},
	}
}

var _ session.Backend = (*Client)(nil)

// Me resolves the current user. Single attempt; any non-2xx or missing role
// is reported as unauthenticated (fail closed).
func (c *Client) Me(ctx context.Context, token string) (session.Session, error) {
	raw, err := c.do(ctx, token, http.MethodGet, "/me", nil)
	if err != nil {
		if apiErr, ok := errors.Cause(err).(*APIError); ok && apiErr.Status < http.StatusInternalServerError {
			return session.Session{}, session.ErrUnauthenticated
		}
		return session.Session{}, err
	}

	obj, err := normalizeObject(raw)
	if err != nil {
		return session.Session{}, session.ErrUnauthenticated
	}

	var payload struct {
		ID             string   `json:"id"`
		Role           string   `json:"role"`
		StoreID        string   `json:"storeId"`
		IsAdminProfile bool     `json:"isAdminProfile"`
		PlatformLevel  bool     `json:"platformLevel"`
		Permissions    []string `json:"permissions"`
		Profile        *struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"profile"`
		CurrentStore *struct {
			ID string `json:"id"`
		} `json:"currentStore"`
		School *struct {
			ID string `json:"id"`
		} `json:"school"`
	}
	if err = json.Unmarshal(obj, &payload); err != nil {
		return session.Session{}, session.ErrUnauthenticated
	}
	if payload.Role == "" {
		return session.Session{}, session.ErrUnauthenticated
	}

	sess := session.Session{
		UserID:         payload.ID,
		Role:           payload.Role,
		StoreID:        payload.StoreID,
		IsAdminProfile: payload.IsAdminProfile,
		PlatformLevel:  payload.PlatformLevel,
		Permissions:    payload.Permissions,
	}
	if sess.StoreID == "" && payload.CurrentStore != nil {
		sess.StoreID = payload.CurrentStore.ID
	}
	if sess.StoreID == "" && payload.School != nil {
		sess.StoreID = payload.School.ID
	}
	if payload.Profile != nil {
		sess.Name = payload.Profile.Name
		sess.Email = payload.Profile.Email
	}
	return sess, nil
}

// Tenants fetches the schools/stores collection the user may access.
func (c *Client) Tenants(ctx context.Context, token string) ([]tenant.Tenant, error) {
	raw, err := c.do(ctx, token, http.MethodGet, c.tenantsPath, nil)
	if err != nil {
		return nil, err
	}
	items, err := normalizeCollection(raw)
	if err != nil {
		return nil, errors.Wrap(err, "normalizing tenant collection")
	}

	tenants := make([]tenant.Tenant, 0, len(items))
	for _, item := range items {
		var t tenant.Tenant
		if err = json.Unmarshal(item, &t); err != nil {
			return nil, errors.Wrap(err, "decoding tenant")
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

// List fetches an entity collection, e.g. kind "courses" or "products".
func (c *Client) List(ctx context.Context, token, kind string, query url.Values) ([]Entity, error) {
	path := "/" + kind
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	raw, err := c.do(ctx, token, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := normalizeCollection(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "normalizing %s collection", kind)
	}

	entities := make([]Entity, 0, len(items))
	for _, item := range items {
		entities = append(entities, Entity{Raw: item, Access: access.ParseDescriptor(item)})
	}
	return entities, nil
}

func (c *Client) Get(ctx context.Context, token, kind, id string) (Entity, error) {
	raw, err := c.do(ctx, token, http.MethodGet, "/"+kind+"/"+url.PathEscape(id), nil)
	if err != nil {
		return Entity{}, err
	}
	return c.entity(raw, kind)
}

func (c *Client) Create(ctx context.Context, token, kind string, body interface{}) (Entity, error) {
	raw, err := c.doJSON(ctx, token, http.MethodPost, "/"+kind, body)
	if err != nil {
		return Entity{}, err
	}
	return c.entity(raw, kind)
}

func (c *Client) Patch(ctx context.Context, token, kind, id string, body interface{}) (Entity, error) {
	raw, err := c.doJSON(ctx, token, http.MethodPatch, "/"+kind+"/"+url.PathEscape(id), body)
	if err != nil {
		return Entity{}, err
	}
	return c.entity(raw, kind)
}

func (c *Client) Delete(ctx context.Context, token, kind, id string) error {
	_, err := c.do(ctx, token, http.MethodDelete, "/"+kind+"/"+url.PathEscape(id), nil)
	return err
}

// Upload streams a multipart upload through to the backend. The caller's ctx
// carries user-initiated cancellation; aborting the request aborts the upload.
func (c *Client) Upload(ctx context.Context, token, field, filename string, r io.Reader) (json.RawMessage, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(field, filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/media/upload", pr)
	if err != nil {
		return nil, errors.Wrap(err, "building upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.decorate(req, token)

	raw, err := c.send(req)
	if err != nil {
		return nil, err
	}
	return normalizeObject(raw)
}

func (c *Client) entity(raw []byte, kind string) (Entity, error) {
	obj, err := normalizeObject(raw)
	if err != nil {
		return Entity{}, errors.Wrapf(err, "normalizing %s object", kind)
	}
	return Entity{Raw: obj, Access: access.ParseDescriptor(obj)}, nil
}

func (c *Client) doJSON(ctx context.Context, token, method, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling request body")
	}
	return c.do(ctx, token, method, path, bytes.NewReader(data))
}

func (c *Client) do(ctx context.Context, token, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req, token)
	return c.send(req)
}

func (c *Client) decorate(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling upstream")
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(res.Body, 10<<20))
	if err != nil {
		return nil, errors.Wrap(err, "reading upstream response")
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
