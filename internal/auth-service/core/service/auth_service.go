package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodbridge/internal/auth-service/core/domain/dto"
	"foodbridge/internal/auth-service/core/domain/models"
	"foodbridge/internal/auth-service/core/ports"
	"foodbridge/internal/config"
	"foodbridge/internal/mylogger"

	"github.com/golang-jwt/jwt"
)

type AuthService struct {
	ctx      context.Context
	cfg      *config.Config
	authRepo ports.IAuthRepo
	mylog    mylogger.Logger
}

func NewAuthService(
	ctx context.Context,
	cfg *config.Config,
	authRepo ports.IAuthRepo,
	mylogger mylogger.Logger,
) *AuthService {
	return &AuthService{
		ctx:      ctx,
		cfg:      cfg,
		authRepo: authRepo,
		mylog:    mylogger,
	}
}

func (as *AuthService) Register(ctx context.Context, regReq dto.UserRegistrationRequest) (string, string, error) {
	mylog := as.mylog.Action("Register")

	if err := validateRegistration(regReq.Username, regReq.Email, regReq.Password, regReq.Role); err != nil {
		return "", "", err
	}

	hashedPassword, err := hashPassword(regReq.Password)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %v", err)
	}
	user := models.User{
		Username:     regReq.Username,
		Email:        regReq.Email,
		PasswordHash: hashedPassword,
		Role:         regReq.Role,
	}

	id, err := as.authRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, ports.ErrEmailRegistered) {
			mylog.Warn("Failed to register, email already registered")
			return "", "", err
		}
		mylog.Error("Failed to save user in db", err)
		return "", "", fmt.Errorf("cannot save user in db: %w", err)
	}

	userId := strconv.FormatInt(id, 10)
	accessToken, err := as.issueToken(userId, regReq.Email, regReq.Role)
	if err != nil {
		mylog.Error("error to create jwt token", err)
		return "", "", err
	}

	mylog.Info("User registered successfully", "user-id", userId, "role", regReq.Role)
	return userId, accessToken, nil
}

func (as *AuthService) Login(ctx context.Context, authReq dto.UserAuthRequest) (string, error) {
	mylog := as.mylog.Action("Login")

	if err := validateLogin(authReq.Email, authReq.Password); err != nil {
		return "", err
	}

	user, err := as.authRepo.GetByEmail(ctx, authReq.Email)
	if err != nil {
		if errors.Is(err, ports.ErrUnknownEmail) {
			mylog.Warn("Failed to login, unknown email")
			return "", err
		}
		mylog.Error("Failed to fetch user from db", err)
		return "", fmt.Errorf("cannot fetch user from db: %w", err)
	}

	if !checkPassword(user.PasswordHash, authReq.Password) {
		mylog.Debug("Failed to login, wrong password")
		return "", ErrPasswordUnknown
	}

	accessToken, err := as.issueToken(strconv.FormatInt(user.ID, 10), authReq.Email, user.Role)
	if err != nil {
		mylog.Error("error to create jwt token", err)
		return "", err
	}

	mylog.Info("User login successfully", "user-id", user.ID)
	return accessToken, nil
}

func (as *AuthService) issueToken(userId, email, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId,
		"email":   email,
		"role":    role,
		"exp":     time.Now().Add(time.Hour * TokenTTLHours).Unix(),
	})
	return token.SignedString([]byte(as.cfg.App.JwtSecret))
}
