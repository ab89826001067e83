package testutil

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skillforge/gateway/core"
)

// NewConfig returns a self-contained config for tests; nothing is read from
// the environment.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:       "TEST",
		Debug:     false,
		TestMode:  true,
		AppName:   "SkillForge",
		Build:     "test",
		SecretKey: "secret",
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.SessionCacheTTL = time.Minute
	conf.Server.SessionCacheSize = 16
	conf.Upstream.Timeout = 5 * time.Second
	conf.Upstream.TenantsPath = "/stores"
	conf.Tenant.CacheTTL = time.Hour
	return conf
}

// Logger is a core.Logger that records entries for assertions.
type Logger struct {
	mu      sync.Mutex
	Entries []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, fmt.Sprintf("%s: %s %v", level, msg, args))
}

func (l *Logger) Enable(bool)                            {}
func (l *Logger) Debug(msg string, args ...interface{})  { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})   { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})   { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{})  { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{})  { l.log("FATAL", msg, args) }

// Contains reports whether any recorded entry contains the substring.
func (l *Logger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.Entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
