package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"casalgastos/internal/backend"
	"casalgastos/internal/core"
	applog "casalgastos/internal/log"
)

// ProfileProvisioner is the part of the backend the bootstrapper needs.
type ProfileProvisioner interface {
	backend.ProfileReader
	backend.Provisioner
}

// Bootstrapper resolves an authenticated identity to its profile, creating the
// profile and family on first login.
type Bootstrapper struct {
	backend ProfileProvisioner
	timeout time.Duration
	logger  *applog.Logger
}

func NewBootstrapper(b ProfileProvisioner, timeout time.Duration, logger *applog.Logger) *Bootstrapper {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Bootstrapper{backend: b, timeout: timeout, logger: logger.WithComponent(applog.ComponentSession)}
}

// Bootstrap returns the profile for userID. An empty userID means there is no
// session. Backend failures come back as *core.ProvisioningError.
func (b *Bootstrapper) Bootstrap(ctx context.Context, userID string) (core.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return core.Profile{}, core.ErrSessionMissing
	}
	ctx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.backend.EnsureProfileAndFamily(ctx, userID); err != nil {
		b.logger.ErrorContext(ctx, "Ensure profile failed", applog.FieldUserID, userID, applog.FieldError, err)
		return core.Profile{}, &core.ProvisioningError{UserID: userID, Err: err}
	}

	p, err := b.backend.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			err = errors.New("profile missing after provisioning")
		}
		b.logger.ErrorContext(ctx, "Get profile failed", applog.FieldUserID, userID, applog.FieldError, err)
		return core.Profile{}, &core.ProvisioningError{UserID: userID, Err: err}
	}
	if p.FamilyID == "" {
		return core.Profile{}, &core.ProvisioningError{UserID: userID, Err: errors.New("profile has no family")}
	}

	b.logger.DebugContext(ctx, "Session bootstrapped", applog.FieldUserID, userID, applog.FieldFamilyID, p.FamilyID)
	return p, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
