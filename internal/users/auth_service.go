package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tonyadjei/devcamper-api/internal/auth"
	"github.com/tonyadjei/devcamper-api/internal/notifications"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both a missing user record and a password
	// mismatch so the response cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("missing email or password")
	ErrEmailNotFound      = errors.New("no user with that email")
	ErrWrongPassword      = errors.New("password is incorrect")
	ErrInvalidResetToken  = errors.New("invalid reset token")
	ErrEmailSendFailed    = errors.New("email could not be sent")
)

const resetTokenTTL = 10 * time.Minute

type AuthService struct {
	repo   Repository
	tokens *auth.Manager
	mailer notifications.Mailer
	log    *slog.Logger
}

func NewAuthService(repo Repository, tokens *auth.Manager, mailer notifications.Mailer, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		log:    log,
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (User, string, error) {
	role := req.Role
	if role == "" {
		role = RoleUser
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, "", err
	}

	user := User{
		ID:           primitive.NewObjectID().Hex(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.NewToken(user.ID, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (User, string, error) {
	if email == "" || password == "" {
		return User{}, "", ErrMissingCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.NewToken(user.ID, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

func (s *AuthService) Me(ctx context.Context, id string) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (s *AuthService) UpdateDetails(ctx context.Context, id string, req UpdateDetailsRequest) (User, error) {
	update := bson.M{"$set": bson.M{
		"name":  req.Name,
		"email": req.Email,
	}}
	user, err := s.repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) (User, string, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, "", ErrNotFound
		}
		return User{}, "", err
	}

	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return User{}, "", ErrWrongPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return User{}, "", err
	}
	user, err = s.repo.Update(ctx, id, bson.M{"$set": bson.M{"passwordHash": hash}})
	if err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.NewToken(user.ID, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// ForgotPassword stores a hashed single-use reset token on the user and
// mails the plain token. The plain token never touches the store.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrEmailNotFound
		}
		return err
	}

	plain, hashed, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	expire := time.Now().Add(resetTokenTTL)
	_, err = s.repo.Update(ctx, user.ID, bson.M{"$set": bson.M{
		"resetPasswordToken":  hashed,
		"resetPasswordExpire": expire,
	}})
	if err != nil {
		return err
	}

	if s.mailer == nil {
		s.clearResetToken(ctx, user.ID)
		return ErrEmailSendFailed
	}

	resetURL := resetURLBase + "/api/v1/auth/resetpassword/" + plain
	if _, err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		s.log.Error("password reset email failed", slog.String("error", err.Error()))
		s.clearResetToken(ctx, user.ID)
		return ErrEmailSendFailed
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, plainToken, password string) (User, string, error) {
	hashed := auth.HashResetToken(plainToken)
	user, err := s.repo.GetByResetToken(ctx, hashed, time.Now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, "", ErrInvalidResetToken
		}
		return User{}, "", err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, "", err
	}
	user, err = s.repo.Update(ctx, user.ID, bson.M{
		"$set":   bson.M{"passwordHash": passwordHash},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
	if err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.NewToken(user.ID, user.Role)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

func (s *AuthService) clearResetToken(ctx context.Context, id string) {
	_, err := s.repo.Update(ctx, id, bson.M{
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
	if err != nil {
		s.log.Warn("clear reset token failed", slog.String("user_id", id), slog.String("error", err.Error()))
	}
}
