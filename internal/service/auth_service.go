package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/apperror"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/pkg/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// IAuthService issues, validates, and revokes stateful access tokens.
//
// Access tokens are opaque random values stored as rows: validation is a
// primary-key lookup and deleting the row revokes access instantly. Refresh
// tokens are signed JWTs carrying a jti, individually revocable through a
// deny-list, so one compromised refresh token can be blacklisted without
// touching the user's other live logins.
type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Validate(ctx context.Context, token string) (*entity.User, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	// TrackActiveSession remembers the session a login last worked in, so a
	// client can resume where it left off.
	TrackActiveSession(ctx context.Context, accessToken string, sessionId uuid.UUID) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type AuthOptions struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type authService struct {
	uowFactory  unitofwork.RepositoryFactory
	credentials ICredentialStore
	publisher   *events.Publisher
	log         logger.ILogger
	opts        AuthOptions

	// Deny-list of revoked refresh jtis. Entries expire with the token they
	// revoke, so the list stays bounded.
	denylist *cache.Cache

	now func() time.Time
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	credentials ICredentialStore,
	publisher *events.Publisher,
	log logger.ILogger,
	opts AuthOptions,
) IAuthService {
	return &authService{
		uowFactory:  uowFactory,
		credentials: credentials,
		publisher:   publisher,
		log:         log,
		opts:        opts,
		denylist:    cache.New(opts.RefreshTokenTTL, 10*time.Minute),
		now:         time.Now,
	}
}

// generateAccessToken mints a 256-bit random opaque token.
func generateAccessToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	user, err := s.credentials.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.credentials.Verify(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user, true)
}

func (s *authService) issueTokens(ctx context.Context, user *entity.User, withRefresh bool) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now()

	accessValue, err := generateAccessToken()
	if err != nil {
		return nil, err
	}

	accessToken := &entity.AuthToken{
		Token:     accessValue,
		UserId:    user.Id,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.opts.AccessTokenTTL),
	}
	if err := uow.AuthTokenRepository().Create(ctx, accessToken); err != nil {
		return nil, apperror.Unavailable("persisting access token", err)
	}

	var rawRefreshToken string
	if withRefresh {
		claims := jwt.MapClaims{
			"user_id":    user.Id.String(),
			"token_type": "refresh",
			"jti":        uuid.New().String(),
			"iat":        now.Unix(),
			"exp":        now.Add(s.opts.RefreshTokenTTL).Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		rawRefreshToken, err = token.SignedString([]byte(s.opts.JWTSecret))
		if err != nil {
			return nil, err
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(events.NewUserLogin(user.Id, now)); err != nil {
			s.log.Warn("auth", "failed to publish USER_LOGIN event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.LoginResponse{
		AccessToken:  accessValue,
		RefreshToken: rawRefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    accessToken.ExpiresAt,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}

func (s *authService) Validate(ctx context.Context, token string) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	row, err := uow.AuthTokenRepository().FindByToken(ctx, token)
	if err != nil {
		return nil, apperror.Unavailable("looking up access token", err)
	}
	if row == nil {
		return nil, apperror.New(apperror.CodeInvalidToken, "invalid or revoked token")
	}

	if row.Expired(s.now()) {
		// Lazy purge: an expired row is dead weight, drop it on sight
		if err := uow.AuthTokenRepository().Delete(ctx, token); err != nil {
			s.log.Warn("auth", "failed to purge expired token", map[string]interface{}{"error": err.Error()})
		}
		return nil, apperror.New(apperror.CodeTokenExpired, "token expired")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: row.UserId})
	if err != nil {
		return nil, apperror.Unavailable("looking up token owner", err)
	}
	if user == nil {
		return nil, apperror.New(apperror.CodeInvalidToken, "invalid or revoked token")
	}

	return user, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.parseRefreshClaims(refreshToken)
	if err != nil {
		return nil, err
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, apperror.New(apperror.CodeInvalidToken, "invalid refresh token")
	}
	if _, revoked := s.denylist.Get(jti); revoked {
		return nil, apperror.New(apperror.CodeInvalidToken, "refresh token revoked")
	}

	rawUserId, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(rawUserId)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidToken, "invalid refresh token")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Unavailable("looking up refresh token owner", err)
	}
	if user == nil {
		return nil, apperror.New(apperror.CodeInvalidToken, "invalid refresh token")
	}

	// Re-mint only the short-lived access row; the caller keeps using the
	// same refresh token until it expires or is revoked
	res, err := s.issueTokens(ctx, user, false)
	if err != nil {
		return nil, err
	}
	res.RefreshToken = refreshToken
	return res, nil
}

func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if accessToken != "" {
		row, err := uow.AuthTokenRepository().FindByToken(ctx, accessToken)
		if err != nil {
			return apperror.Unavailable("looking up access token", err)
		}
		if err := uow.AuthTokenRepository().Delete(ctx, accessToken); err != nil {
			return apperror.Unavailable("deleting access token", err)
		}
		if row != nil && s.publisher != nil {
			if err := s.publisher.Publish(events.NewUserLogout(row.UserId, s.now())); err != nil {
				s.log.Warn("auth", "failed to publish USER_LOGOUT event", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	// A malformed or already-expired refresh token has nothing to revoke
	if refreshToken != "" {
		if claims, err := s.parseRefreshClaims(refreshToken); err == nil {
			if jti, ok := claims["jti"].(string); ok && jti != "" {
				ttl := s.opts.RefreshTokenTTL
				if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
					ttl = time.Until(exp.Time)
				}
				if ttl > 0 {
					s.denylist.Set(jti, true, ttl)
				}
			}
		}
	}

	return nil
}

func (s *authService) TrackActiveSession(ctx context.Context, accessToken string, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AuthTokenRepository().SetActiveSession(ctx, accessToken, sessionId); err != nil {
		return apperror.Unavailable("recording active session", err)
	}
	return nil
}

func (s *authService) PurgeExpired(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	purged, err := uow.AuthTokenRepository().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, apperror.Unavailable("purging expired tokens", err)
	}
	return purged, nil
}

func (s *authService) parseRefreshClaims(refreshToken string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.New(apperror.CodeInvalidToken, "invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.New(apperror.CodeInvalidToken, "invalid refresh token")
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != "refresh" {
		return nil, apperror.New(apperror.CodeInvalidToken, "not a refresh token")
	}
	return claims, nil
}
