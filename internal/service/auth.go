package service

import (
	"context"
	"slices"
	"strings"

	"oyna-console/internal/logging"
	"oyna-console/internal/model"
	"oyna-console/internal/session"
	"oyna-console/pkg/apierror"
)

// AuthService signs admins in and issues the user descriptor cookie value.
type AuthService struct {
	codec *session.DescriptorCodec
	roles []string
	log   logging.Logger
}

// NewAuthService creates an auth service accepting the given elevated roles.
func NewAuthService(codec *session.DescriptorCodec, roles []string, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Nop()
	}
	normalized := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			normalized = append(normalized, r)
		}
	}
	return &AuthService{codec: codec, roles: normalized, log: log.With("component", "auth")}
}

// Elevated reports whether role may open the console.
func (s *AuthService) Elevated(role string) bool {
	return slices.Contains(s.roles, strings.ToLower(strings.TrimSpace(role)))
}

// Login signs in through sess and returns the profile and the signed
// descriptor. Accounts without an elevated role are signed out again.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, email, password string) (*model.Profile, string, error) {
	profile, err := sess.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	if profile == nil {
		if profile, err = sess.Refresh(ctx); err != nil {
			return nil, "", err
		}
	}

	if !s.Elevated(profile.Role) {
		s.log.Warn(ctx, "console login refused", "user_id", profile.UserID, "role", profile.Role)
		_ = sess.Logout(ctx)
		return nil, "", apierror.Forbidden("Bu panele erişim yetkiniz yok.")
	}

	descriptor, err := s.codec.Encode(session.DescriptorFromProfile(*profile))
	if err != nil {
		return nil, "", err
	}
	s.log.Info(ctx, "console login", "user_id", profile.UserID, "role", profile.Role)
	return profile, descriptor, nil
}

// Authorize parses a descriptor cookie and checks its role.
// It returns a 401 error for a missing or invalid cookie and 403 for a
// valid cookie without an elevated role.
func (s *AuthService) Authorize(cookie string) (session.Descriptor, error) {
	d, err := s.codec.Decode(cookie)
	if err != nil {
		return session.Descriptor{}, apierror.Unauthorized("")
	}
	if !s.Elevated(d.Role) {
		return d, apierror.Forbidden("")
	}
	return d, nil
}

// DescriptorTTL is how long a descriptor cookie stays valid.
func (s *AuthService) DescriptorTTL() int {
	return int(s.codec.TTL().Seconds())
}
