package service

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"bitva-auth/internal/config"
	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 100
	maxNameLength     = 255

	verifyPath = "/verify"
	resetPath  = "/reset-password"
)

// AccountService implements the account use cases.
type AccountService interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	AdminLogin(ctx context.Context, email, password string) (*models.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)

	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	UpdateProfile(ctx context.Context, userID uuid.UUID, name string) (*models.User, error)

	ListUsers(ctx context.Context, status string) ([]models.User, error)
	SendBroadcast(ctx context.Context, subject, content string) (int, error)
	SendTestBroadcast(ctx context.Context, email, subject, content string) error
}

var _ AccountService = (*accountServiceImpl)(nil)

type accountServiceImpl struct {
	users      interfaces.UserRepository
	creds      *CredentialStore
	codec      *TokenCodec
	sessions   *SessionGate
	tokens     *SingleUseTokenManager
	dispatcher interfaces.EmailDispatcher
	cfg        *config.Config
	logger     *zap.Logger
}

// Deps groups the collaborators of the account service.
type Deps struct {
	Users      interfaces.UserRepository
	Creds      *CredentialStore
	Codec      *TokenCodec
	Sessions   *SessionGate
	Tokens     *SingleUseTokenManager
	Dispatcher interfaces.EmailDispatcher
}

func NewAccountService(deps Deps, cfg *config.Config, logger *zap.Logger) AccountService {
	return &accountServiceImpl{
		users:      deps.Users,
		creds:      deps.Creds,
		codec:      deps.Codec,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		cfg:        cfg,
		logger:     logger.Named("AccountService"),
	}
}

// validateEmail requires an '@' and a bare RFC 5322 address.
func validateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return models.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return models.ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if n := len(password); n < minPasswordLength || n > maxPasswordLength {
		return fmt.Errorf("%w: password must be %d to %d characters", models.ErrInvalidInput, minPasswordLength, maxPasswordLength)
	}
	return nil
}

func validateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return fmt.Errorf("%w: name must be 1 to %d characters", models.ErrInvalidInput, maxNameLength)
	}
	return nil
}

// frontendLink builds the client URL that carries a raw single-use token.
func (s *accountServiceImpl) frontendLink(path, rawToken string) string {
	base := strings.TrimRight(s.cfg.FrontendBaseURL, "/")
	return base + path + "?" + url.Values{"token": {rawToken}}.Encode()
}

// dispatch hands a job to the email pipeline. Failures are logged and never
// returned: the state change that triggered the email is already committed.
func (s *accountServiceImpl) dispatch(ctx context.Context, job models.EmailJob) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	// The request context ends with the response; the dispatcher must not inherit its cancellation.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.dispatcher.Dispatch(dctx, job); err != nil {
		s.logger.Error("Failed to dispatch email job",
			zap.String("jobID", job.ID),
			zap.String("kind", string(job.Kind)),
			zap.Int("recipients", len(job.Recipients)),
			zap.Error(err),
		)
	}
}

func (s *accountServiceImpl) sendVerificationEmail(ctx context.Context, user *models.User, rawToken string) {
	s.dispatch(ctx, models.EmailJob{
		Kind:       models.EmailKindVerification,
		Recipients: []models.Recipient{{Name: user.Name, Email: user.Email}},
		Subject:    "Email Verification",
		Link:       s.frontendLink(verifyPath, rawToken),
	})
}

func (s *accountServiceImpl) sendPasswordResetEmail(ctx context.Context, user *models.User, rawToken string) {
	s.dispatch(ctx, models.EmailJob{
		Kind:       models.EmailKindPasswordReset,
		Recipients: []models.Recipient{{Name: user.Name, Email: user.Email}},
		Subject:    "Password Reset Request",
		Link:       s.frontendLink(resetPath, rawToken),
	})
}
