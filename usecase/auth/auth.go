package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

// Service authenticates callers against the snapshot's static user list
// and issues bearer tokens carrying the user id.
type Service struct {
	repo   repository.SnapshotRepository
	secret []byte
	issuer string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

func New(repo repository.SnapshotRepository, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &Service{
		repo:   repo,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		logger: logger,
		now:    time.Now,
	}
}

// Login scans the user list for a first-name/last-name/password match. The
// last name may be omitted when the stored one is empty (the stock admin
// account has none). Passwords are compared in plaintext, matching the
// static-list model this replaces.
func (s *Service) Login(ctx context.Context, firstName, lastName, password string) (*domain.User, string, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, "", err
	}

	for i := range snap.Users {
		u := &snap.Users[i]
		if u.FirstName != firstName {
			continue
		}
		if u.LastName != lastName && lastName != "" {
			continue
		}
		if u.Password != password {
			continue
		}

		token, err := s.issueToken(u.ID)
		if err != nil {
			return nil, "", domain.WrapError(domain.ErrCodeInternal, "sign token", err)
		}
		user := *u
		return &user, token, nil
	}

	s.logger.Warn("login rejected", zap.String("first_name", firstName))
	return nil, "", domain.ErrInvalidCredentials
}

// Resolve parses a bearer token and materializes the caller's session from
// the current snapshot.
func (s *Service) Resolve(ctx context.Context, tokenString string) (*domain.Session, error) {
	if tokenString == "" {
		return nil, domain.ErrUnauthorized
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	rawID, ok := claims["user_id"].(string)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	user := snap.UserByID(userID)
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Session{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Admin:  user.IsAdmin,
	}, nil
}

func (s *Service) issueToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(userID, 10),
		"iss":     s.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
