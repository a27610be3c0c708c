package service

import (
	"context"
	"strings"

	authdomain "github.com/alphaedge/backend/internal/auth/domain"
	"github.com/alphaedge/backend/internal/auth/google"
	"github.com/alphaedge/backend/internal/auth/password"
	"github.com/alphaedge/backend/internal/auth/token"
	"github.com/alphaedge/backend/internal/clock"
	pkgdb "github.com/alphaedge/backend/pkg/db"
	userdomain "github.com/alphaedge/backend/internal/user/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	UserRepo userdomain.Repository
	Tokens   *token.Manager
	Google   google.Verifier
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	userRepo userdomain.Repository
	tokens   *token.Manager
	google   google.Verifier
}

func NewService(p Params) authdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		userRepo: p.UserRepo,
		tokens:   p.Tokens,
		google:   p.Google,
	}
}

func (s *Service) Signup(ctx context.Context, req authdomain.SignupRequest) (*authdomain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || req.Password == "" {
		return nil, authdomain.ErrInvalidCredentials
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	user := userdomain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Insert(ctx, s.db, &user); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, userdomain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID.String()))
	return s.issueResponse(&user)
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, authdomain.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, authdomain.ErrInvalidCredentials
	}
	if !password.Verify(req.Password, *user.PasswordHash) {
		return nil, authdomain.ErrInvalidCredentials
	}

	return s.issueResponse(user)
}

// GoogleLogin verifies a Google ID token and signs the user in, creating the
// account on first login. An existing password account with the same email is
// linked to the Google subject instead of duplicated.
func (s *Service) GoogleLogin(ctx context.Context, req authdomain.GoogleLoginRequest) (*authdomain.AuthResponse, error) {
	identity, err := s.google.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByGoogleSubject(ctx, s.db, identity.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.linkOrCreate(ctx, identity)
		if err != nil {
			return nil, err
		}
	}

	return s.issueResponse(user)
}

func (s *Service) linkOrCreate(ctx context.Context, identity *google.Identity) (*userdomain.User, error) {
	now := s.clock.Now().UTC()

	user, err := s.userRepo.FindByEmail(ctx, s.db, identity.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := s.userRepo.LinkGoogleSubject(ctx, s.db, user.ID, identity.Subject, now); err != nil {
			return nil, err
		}
		user.GoogleSubject = &identity.Subject
		return user, nil
	}

	name := identity.Name
	if name == "" {
		name = identity.Email
	}
	created := userdomain.User{
		ID:            s.genID.Generate(),
		Email:         identity.Email,
		Name:          name,
		GoogleSubject: &identity.Subject,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.userRepo.Insert(ctx, s.db, &created); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			// Lost a race with a concurrent first login for the same account.
			return s.userRepo.FindByEmail(ctx, s.db, identity.Email)
		}
		return nil, err
	}
	s.log.Info("user created via google login", zap.String("user_id", created.ID.String()))
	return &created, nil
}

func (s *Service) issueResponse(user *userdomain.User) (*authdomain.AuthResponse, error) {
	accessToken, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &authdomain.AuthResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		UserID:      user.ID.String(),
		Email:       user.Email,
		Name:        user.Name,
	}, nil
}
