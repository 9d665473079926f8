package service

import (
	"context"
	"errors"
	"testing"

	"foodbridge/internal/auth-service/core/domain/dto"
	"foodbridge/internal/auth-service/core/domain/models"
	"foodbridge/internal/auth-service/core/ports"
	"foodbridge/internal/config"
	"foodbridge/internal/mylogger"

	"github.com/golang-jwt/jwt"
)

type fakeAuthRepo struct {
	users  map[string]models.User
	nextID int64
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[string]models.User), nextID: 1}
}

func (f *fakeAuthRepo) Create(ctx context.Context, user models.User) (int64, error) {
	if _, ok := f.users[user.Email]; ok {
		return 0, ports.ErrEmailRegistered
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.Email] = user
	return user.ID, nil
}

func (f *fakeAuthRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return models.User{}, ports.ErrUnknownEmail
	}
	return user, nil
}

func newAuthFixture(t *testing.T) (*fakeAuthRepo, *AuthService) {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{App: &config.Appconfig{JwtSecret: "test-secret"}}
	repo := newFakeAuthRepo()
	return repo, NewAuthService(context.Background(), cfg, repo, log)
}

func TestRegisterIssuesToken(t *testing.T) {
	_, svc := newAuthFixture(t)

	userID, token, err := svc.Register(context.Background(), dto.UserRegistrationRequest{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "s3cret",
		Role:     "NGO",
	})
	if err != nil {
		t.Fatal(err)
	}
	if userID != "1" {
		t.Errorf("user id = %q, want \"1\"", userID)
	}

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		t.Fatal("token did not verify")
	}
	if claims["user_id"] != "1" || claims["role"] != "NGO" || claims["email"] != "alice@example.org" {
		t.Errorf("claims = %v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture(t)

	req := dto.UserRegistrationRequest{Username: "alice", Email: "alice@example.org", Password: "s3cret", Role: "NGO"}
	if _, _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Register(context.Background(), req); !errors.Is(err, ports.ErrEmailRegistered) {
		t.Errorf("got %v, want ErrEmailRegistered", err)
	}
}

func TestLogin(t *testing.T) {
	_, svc := newAuthFixture(t)

	req := dto.UserRegistrationRequest{Username: "alice", Email: "alice@example.org", Password: "s3cret", Role: "DONOR"}
	if _, _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(context.Background(), dto.UserAuthRequest{Email: "alice@example.org", Password: "s3cret"}); err != nil {
		t.Errorf("login with the right password failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), dto.UserAuthRequest{Email: "alice@example.org", Password: "wrong-pass"}); !errors.Is(err, ErrPasswordUnknown) {
		t.Errorf("wrong password: got %v, want ErrPasswordUnknown", err)
	}
	if _, err := svc.Login(context.Background(), dto.UserAuthRequest{Email: "nobody@example.org", Password: "s3cret"}); !errors.Is(err, ports.ErrUnknownEmail) {
		t.Errorf("unknown email: got %v, want ErrUnknownEmail", err)
	}
}

func TestValidateRegistration(t *testing.T) {
	cases := []struct {
		name     string
		username string
		email    string
		password string
		role     string
		wantErr  bool
	}{
		{"valid", "alice", "alice@example.org", "s3cret", "NGO", false},
		{"empty username", "", "alice@example.org", "s3cret", "NGO", true},
		{"short email", "alice", "a@b", "s3cret", "NGO", true},
		{"two ats", "alice", "a@@example.org", "s3cret", "NGO", true},
		{"short password", "alice", "alice@example.org", "pw", "NGO", true},
		{"unknown role", "alice", "alice@example.org", "s3cret", "SUPERVISOR", true},
		{"lowercase role", "alice", "alice@example.org", "s3cret", "ngo", true},
		{"courier role", "bob", "bob@example.org", "s3cret", "COURIER", false},
	}
	for _, c := range cases {
		err := validateRegistration(c.username, c.email, c.password, c.role)
		if (err != nil) != c.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", c.name, err, c.wantErr)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !checkPassword(hash, "s3cret") {
		t.Error("right password rejected")
	}
	if checkPassword(hash, "other") {
		t.Error("wrong password accepted")
	}
}
