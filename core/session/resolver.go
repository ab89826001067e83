package session

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"

	"github.com/skillforge/gateway/core"
)

// Backend resolves the full identity behind a verified token.
type Backend interface {
	// Me calls the authenticated whoami endpoint. Single attempt, no retry.
	Me(ctx context.Context, token string) (Session, error)
}

// Resolver turns a raw session token into a Session.
// Whoami responses are cached per token for a short TTL so a burst of
// dashboard requests does not hammer the upstream.
type Resolver struct {
	verifier *Verifier
	backend  Backend
	cache    *lru.LRU[string, Session]
}

func NewResolver(conf *core.Config, verifier *Verifier, backend Backend) *Resolver {
	size := conf.Server.SessionCacheSize
	if size <= 0 {
		size = 1024
	}
	return &Resolver{
		verifier: verifier,
		backend:  backend,
		cache:    lru.NewLRU[string, Session](size, nil, conf.Server.SessionCacheTTL),
	}
}

// Current returns the session for the given token, or ErrUnauthenticated.
// Any ambiguous outcome (bad token, upstream error, missing role) fails closed.
func (r *Resolver) Current(ctx context.Context, token string) (Session, error) {
	claims, err := r.verifier.Verify(token)
	if err != nil {
		return Session{}, err
	}

	if sess, ok := r.cache.Get(token); ok {
		return sess, nil
	}

	sess, err := r.backend.Me(ctx, token)
	if err != nil {
		if errors.Cause(err) == ErrUnauthenticated {
			return Session{}, err
		}
		return Session{}, errors.Wrap(ErrUnauthenticated, err.Error())
	}
	if sess.Role == "" {
		return Session{}, ErrUnauthenticated
	}
	// the token is the identity signal; the whoami payload fills in the rest
	if sess.UserID == "" {
		sess.UserID = claims.Subject
	}
	r.cache.Add(token, sess)
	return sess, nil
}

// Forget drops any cached session for the token (logout, 401 from upstream).
func (r *Resolver) Forget(token string) {
	r.cache.Remove(token)
}
