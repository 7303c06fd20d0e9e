package service

import (
	"net/http"
	"strings"

	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/errors"
	"github.com/portal-dev/portal/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password."

type AuthService interface {
	Register(name string, creds domain.Credentials) (domain.User, string, error)
	Login(creds domain.Credentials) (domain.User, string, error)
}

type Auth struct {
	storage AuthStorage
	jwt     Jwt
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	User(email domain.Email) (domain.User, error)
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

func NewAuth(storage AuthStorage, jwt Jwt) *Auth {
	return &Auth{
		storage: storage,
		jwt:     jwt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER account and signs the caller in. A taken email is a rejection,
// not a failure.
func (a *Auth) Register(name string, creds domain.Credentials) (domain.User, string, error) {
	user := domain.User{
		Email: normalizeEmail(creds.Email),
		Name:  strings.TrimSpace(name),
		Role:  domain.RoleUser,
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, "", err
	}
	user.PassHash = string(passHash)

	id, err := a.storage.SaveUser(user)
	if err != nil {
		if errors.StatusCode(err) == http.StatusConflict {
			return domain.User{}, "", errors.Reject("This email is already registered.")
		}
		return domain.User{}, "", err
	}
	user.Id = id

	token, err := a.jwt.NewToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	logger.Log.Info("user registered", "user_id", id)
	return user, token, nil
}

// Login checks the credentials and returns an access token. Unknown email and wrong password
// are reported identically so that accounts cannot be enumerated.
func (a *Auth) Login(creds domain.Credentials) (domain.User, string, error) {
	user, err := a.storage.User(normalizeEmail(creds.Email))
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.User{}, "", errors.Reject(invalidCredentials)
		}
		return domain.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(creds.Password)); err != nil {
		logger.Log.Debug("password verification failed", "user_id", user.Id)
		return domain.User{}, "", errors.Reject(invalidCredentials)
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}
