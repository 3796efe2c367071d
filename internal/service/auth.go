package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/events"
	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/repo"
	"github.com/Skotchmaster/shopcart/internal/transport"
	pkg_hash "github.com/Skotchmaster/shopcart/pkg/hash"
	"github.com/Skotchmaster/shopcart/pkg/logging"
	"github.com/Skotchmaster/shopcart/pkg/tokens"
)

const minPasswordLen = 6

type AuthService struct {
	Repo   *repo.GormRepo
	Events events.Publisher

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Identity is what a valid access token says about its bearer.
type Identity struct {
	UserID uint
	Role   string
}

func (i Identity) Actor() Actor {
	return Actor{UserID: i.UserID, Admin: i.Role == tokens.RoleAdmin}
}

func roleOf(u *models.User) string {
	if u.IsAdmin {
		return tokens.RoleAdmin
	}
	return tokens.RoleUser
}

func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" {
		return nil, fmt.Errorf("username is required: %w", ErrValidation)
	}
	if !validEmail(req.Email) {
		return nil, fmt.Errorf("email is invalid: %w", ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrValidation)
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w: %w", ErrStore, err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, mapRepoErr("register", err)
	}

	publish(ctx, s.Events, events.TopicUser, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})
	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

// VerifyCredentials never says which half of the pair was wrong.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, mapRepoErr("verify credentials", err)
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) IssueTokens(ctx context.Context, user *models.User) (*transport.LoginResult, error) {
	res, next, err := s.newTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, next); err != nil {
		return nil, mapRepoErr("store refresh token", err)
	}
	return res, nil
}

func (s *AuthService) newTokens(user *models.User) (*transport.LoginResult, *models.RefreshToken, error) {
	now := time.Now()
	subject := strconv.FormatUint(uint64(user.ID), 10)

	accessExp := now.Add(s.AccessTTL)
	accessToken, err := tokens.NewAccessToken(subject, roleOf(user), accessExp, s.AccessSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access token: %w: %w", ErrStore, err)
	}

	refreshExp := now.Add(s.RefreshTTL)
	jti := tokens.NewJTI()
	refreshToken, err := tokens.NewRefreshToken(subject, jti, refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh token: %w: %w", ErrStore, err)
	}

	row := &models.RefreshToken{
		Token:     tokens.Sha256Hex(refreshToken),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	return &transport.LoginResult{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsAdmin:      user.IsAdmin,
	}, row, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		l.Warn("login_failed", "error", err)
		return nil, err
	}
	return s.IssueTokens(ctx, user)
}

// Refresh redeems a refresh token for a new pair. The old token is revoked in
// the same transaction, so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.LoginResult, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}
	actor, err := ActorFrom(claims.Subject, "")
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Repo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, mapRepoErr("refresh", err)
	}

	res, next, err := s.newTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, tokens.Sha256Hex(refreshToken), next); err != nil {
		return nil, mapRepoErr("rotate refresh token", err)
	}
	return res, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.Repo.RevokeRefresh(ctx, tokens.Sha256Hex(refreshToken)); err != nil {
		return mapRepoErr("logout", err)
	}
	return nil
}

func (s *AuthService) CurrentUser(_ context.Context, accessToken string) (Identity, error) {
	claims, err := tokens.AccessClaimsFromToken(accessToken, s.AccessSecret)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	actor, err := ActorFrom(claims.Subject, claims.Role)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: actor.UserID, Role: claims.Role}, nil
}
