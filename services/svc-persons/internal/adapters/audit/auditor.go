package audit

import (
	"context"
	"strings"
	"time"

	"github.com/architeacher/persons/pkg/logger"
)

const (
	SystemLogin = "system"

	// maxLoginLength matches the created_by and last_modified_by columns.
	maxLoginLength = 50
)

// ContextAuditor reads the acting login from the request context, falling
// back to SystemLogin.
type ContextAuditor struct {
	fallback string
	clock    func() time.Time
}

func NewContextAuditor() *ContextAuditor {
	return &ContextAuditor{
		fallback: SystemLogin,
		clock:    time.Now,
	}
}

// WithClock replaces the time source, mainly for tests.
func (a *ContextAuditor) WithClock(clock func() time.Time) *ContextAuditor {
	a.clock = clock

	return a
}

func (a *ContextAuditor) CurrentLogin(ctx context.Context) string {
	login, ok := logger.UserLogin(ctx)

	login = strings.TrimSpace(login)
	if !ok || login == "" {
		return a.fallback
	}

	if len(login) > maxLoginLength {
		return login[:maxLoginLength]
	}

	return login
}

func (a *ContextAuditor) Now() time.Time {
	return a.clock().UTC()
}
