package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sheabot/model"
)

const resetTokenTTL = time.Hour

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

type UserService struct {
	users model.UserStore
	mail  *MailService
}

func NewUserService(mail *MailService) *UserService {
	return &UserService{
		users: model.UserStore{},
		mail:  mail,
	}
}

type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (service *UserService) Register(user *User) error {
	if service.users.Exists(user.Username, user.Email) {
		return errors.New("user already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("internal server error")
	}

	newUser := &model.User{
		Username: user.Username,
		Email:    user.Email,
		Password: string(hashedPassword),
	}
	if err := service.users.Create(newUser); err != nil {
		return errors.New("internal server error")
	}
	return nil
}

func (service *UserService) Login(user *User) (string, error) {
	registeredUser, err := service.users.GetByUsername(user.Username)
	if err != nil {
		return "", errors.New("failed to get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(registeredUser.Password), []byte(user.Password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	ts := &TokenService{}
	token, err := ts.CreateToken(registeredUser.ID, registeredUser.Username)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return "", errors.New("failed to generate token")
	}

	return token.AccessToken, nil
}

// RequestPasswordReset issues a single-use reset token valid for one hour
// and mails the reset link. An unknown email is reported like success so the
// endpoint does not reveal which addresses exist.
func (service *UserService) RequestPasswordReset(email string) error {
	user, err := service.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Infof("[user] reset requested for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiry := time.Now().Add(resetTokenTTL)
	if err := service.users.SetResetToken(user.ID, token, expiry); err != nil {
		return err
	}

	if err := service.mail.SendResetEmail(user.Email, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (service *UserService) ResetPassword(token, newPassword string) error {
	user, err := service.users.GetByResetToken(token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("internal server error")
	}
	return service.users.UpdatePassword(user.ID, string(hashedPassword))
}
