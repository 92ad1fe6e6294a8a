package users

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tonyadjei/devcamper-api/internal/auth"
	"github.com/tonyadjei/devcamper-api/internal/query"
	"github.com/tonyadjei/devcamper-api/internal/validation"
)

type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo(seed ...User) *fakeRepo {
	repo := &fakeRepo{users: make(map[string]*User)}
	for i := range seed {
		u := seed[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (f *fakeRepo) Create(ctx context.Context, user User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		}
	}
	f.users[user.ID] = &user
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (User, error) {
	if u, ok := f.users[id]; ok {
		return *u, nil
	}
	return User{}, mongo.ErrNoDocuments
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return User{}, mongo.ErrNoDocuments
}

func (f *fakeRepo) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (User, error) {
	for _, u := range f.users {
		if u.ResetPasswordToken == hashedToken && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now) {
			return *u, nil
		}
	}
	return User{}, mongo.ErrNoDocuments
}

func (f *fakeRepo) Update(ctx context.Context, id string, update bson.M) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, mongo.ErrNoDocuments
	}
	if set, ok := update["$set"].(bson.M); ok {
		if v, ok := set["name"].(string); ok {
			u.Name = v
		}
		if v, ok := set["email"].(string); ok {
			u.Email = v
		}
		if v, ok := set["role"].(string); ok {
			u.Role = v
		}
		if v, ok := set["passwordHash"].(string); ok {
			u.PasswordHash = v
		}
		if v, ok := set["resetPasswordToken"].(string); ok {
			u.ResetPasswordToken = v
		}
		if v, ok := set["resetPasswordExpire"].(time.Time); ok {
			u.ResetPasswordExpire = &v
		}
	}
	if unset, ok := update["$unset"].(bson.M); ok {
		if _, ok := unset["resetPasswordToken"]; ok {
			u.ResetPasswordToken = ""
		}
		if _, ok := unset["resetPasswordExpire"]; ok {
			u.ResetPasswordExpire = nil
		}
	}
	return *u, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

func (f *fakeRepo) List(ctx context.Context, opts query.Options) (query.Result, error) {
	return query.Result{Data: []bson.M{}}, nil
}

type fakeMailer struct {
	resetURL string
	fail     bool
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) (string, error) {
	if f.fail {
		return "", io.ErrUnexpectedEOF
	}
	f.resetURL = resetURL
	return "message-id", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTokens() *auth.Manager {
	return &auth.Manager{Secret: []byte("test-secret"), TTL: time.Hour, Issuer: "devcamper-api"}
}

func seededUser(t *testing.T) User {
	t.Helper()
	hash, err := auth.HashPassword("123456")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return User{
		ID:           "5d7a514b5d2c12c7449be042",
		Name:         "John Doe",
		Email:        "john@gmail.com",
		Role:         RoleUser,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
}

func newAuthHandler(repo Repository, mailer *fakeMailer) *AuthHandler {
	service := NewAuthService(repo, testTokens(), mailer, discardLogger())
	return NewAuthHandler(service, validation.New(), discardLogger(), "http://localhost:5000", time.Hour, false)
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestLoginErrorBodiesAreIdentical(t *testing.T) {
	repo := newFakeRepo(seededUser(t))
	h := newAuthHandler(repo, &fakeMailer{})

	unknownEmail := postJSON(h.Login, "/api/v1/auth/login", `{"email":"ghost@gmail.com","password":"123456"}`)
	wrongPassword := postJSON(h.Login, "/api/v1/auth/login", `{"email":"john@gmail.com","password":"wrong"}`)

	if unknownEmail.Code != http.StatusUnauthorized || wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknownEmail.Code, wrongPassword.Code)
	}
	if !bytes.Equal(unknownEmail.Body.Bytes(), wrongPassword.Body.Bytes()) {
		t.Fatalf("error bodies differ:\n%s\n%s", unknownEmail.Body.String(), wrongPassword.Body.String())
	}
}

func TestLoginMissingCredentials(t *testing.T) {
	h := newAuthHandler(newFakeRepo(), &fakeMailer{})

	rec := postJSON(h.Login, "/api/v1/auth/login", `{"email":"john@gmail.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please provide an email and password") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLoginSetsTokenCookie(t *testing.T) {
	repo := newFakeRepo(seededUser(t))
	h := newAuthHandler(repo, &fakeMailer{})

	rec := postJSON(h.Login, "/api/v1/auth/login", `{"email":"john@gmail.com","password":"123456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("token cookie not set")
	}
	if !cookie.HttpOnly {
		t.Fatalf("token cookie must be http-only")
	}
	if !strings.Contains(rec.Body.String(), `"token":"`+cookie.Value+`"`) {
		t.Fatalf("body token differs from cookie token")
	}
}

func TestRegisterTokenResolvesToCreatedUser(t *testing.T) {
	repo := newFakeRepo()
	tokens := testTokens()
	service := NewAuthService(repo, tokens, &fakeMailer{}, discardLogger())

	user, token, err := service.Register(context.Background(), RegisterRequest{
		Name:     "Jane",
		Email:    "jane@gmail.com",
		Password: "123456",
		Role:     RolePublisher,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("token subject %s does not match user id %s", claims.Subject, user.ID)
	}
	if claims.Role != RolePublisher {
		t.Fatalf("unexpected role claim: %s", claims.Role)
	}
	if user.PasswordHash == "123456" {
		t.Fatalf("password stored unhashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeRepo(seededUser(t))
	h := newAuthHandler(repo, &fakeMailer{})

	rec := postJSON(h.Register, "/api/v1/auth/register", `{"name":"Clone","email":"john@gmail.com","password":"123456"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Duplicate field value entered") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestForgotPasswordStoresHashOnly(t *testing.T) {
	user := seededUser(t)
	repo := newFakeRepo(user)
	mailer := &fakeMailer{}
	service := NewAuthService(repo, testTokens(), mailer, discardLogger())

	if err := service.ForgotPassword(context.Background(), user.Email, "http://localhost:5000"); err != nil {
		t.Fatalf("ForgotPassword error: %v", err)
	}

	idx := strings.LastIndex(mailer.resetURL, "/")
	if idx < 0 {
		t.Fatalf("no reset url mailed")
	}
	plain := mailer.resetURL[idx+1:]

	stored := repo.users[user.ID]
	if stored.ResetPasswordToken == "" || stored.ResetPasswordExpire == nil {
		t.Fatalf("reset token not stored")
	}
	if stored.ResetPasswordToken == plain {
		t.Fatalf("plain token must not be stored")
	}
	if auth.HashResetToken(plain) != stored.ResetPasswordToken {
		t.Fatalf("stored token is not the hash of the mailed token")
	}
}

func TestForgotPasswordMailFailureClearsToken(t *testing.T) {
	user := seededUser(t)
	repo := newFakeRepo(user)
	service := NewAuthService(repo, testTokens(), &fakeMailer{fail: true}, discardLogger())

	err := service.ForgotPassword(context.Background(), user.Email, "http://localhost:5000")
	if err == nil || err != ErrEmailSendFailed {
		t.Fatalf("expected ErrEmailSendFailed, got %v", err)
	}

	stored := repo.users[user.ID]
	if stored.ResetPasswordToken != "" || stored.ResetPasswordExpire != nil {
		t.Fatalf("reset token not cleared after mail failure")
	}
}

func TestResetPasswordWithValidToken(t *testing.T) {
	user := seededUser(t)
	repo := newFakeRepo(user)
	mailer := &fakeMailer{}
	service := NewAuthService(repo, testTokens(), mailer, discardLogger())

	if err := service.ForgotPassword(context.Background(), user.Email, "http://localhost:5000"); err != nil {
		t.Fatalf("ForgotPassword error: %v", err)
	}
	plain := mailer.resetURL[strings.LastIndex(mailer.resetURL, "/")+1:]

	updated, token, err := service.ResetPassword(context.Background(), plain, "newsecret")
	if err != nil {
		t.Fatalf("ResetPassword error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a fresh token")
	}
	if auth.ComparePassword(updated.PasswordHash, "newsecret") != nil {
		t.Fatalf("new password not stored")
	}

	stored := repo.users[user.ID]
	if stored.ResetPasswordToken != "" {
		t.Fatalf("reset token must be single-use")
	}

	// Replaying the same token must fail.
	if _, _, err := service.ResetPassword(context.Background(), plain, "again"); err != ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken on replay, got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	user := seededUser(t)
	expired := time.Now().Add(-time.Minute)
	user.ResetPasswordToken = auth.HashResetToken("stale-token")
	user.ResetPasswordExpire = &expired
	repo := newFakeRepo(user)
	service := NewAuthService(repo, testTokens(), &fakeMailer{}, discardLogger())

	if _, _, err := service.ResetPassword(context.Background(), "stale-token", "newsecret"); err != ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestUpdatePasswordRequiresCurrent(t *testing.T) {
	user := seededUser(t)
	repo := newFakeRepo(user)
	service := NewAuthService(repo, testTokens(), &fakeMailer{}, discardLogger())

	if _, _, err := service.UpdatePassword(context.Background(), user.ID, "wrong", "newsecret"); err != ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	if _, _, err := service.UpdatePassword(context.Background(), user.ID, "123456", "newsecret"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
	if auth.ComparePassword(repo.users[user.ID].PasswordHash, "newsecret") != nil {
		t.Fatalf("new password not stored")
	}
}
