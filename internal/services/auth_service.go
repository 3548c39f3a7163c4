package services

import (
	"errors"
	"strings"
	"telecom-backend/internal/database"
	"telecom-backend/internal/models"
	"telecom-backend/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUserAlreadyExists = errors.New("user with this username already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterUser creates a new account. Usernames are stored lowercase; the
// alphanumeric and password-length rules are enforced at binding time.
func RegisterUser(username, password, email, fullName string) (*models.User, error) {
	username = strings.ToLower(username)

	var existingUser models.User
	result := database.DB.Where("username = ?", username).First(&existingUser)
	if result.Error == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Email:        email,
		FullName:     fullName,
	}

	if err := database.DB.Create(user).Error; err != nil {
		return nil, err
	}

	zap.L().Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return user, nil
}

// LoginUser authenticates a user and issues a bearer token. A missing
// account and a wrong password both surface as ErrInvalidCredentials so
// callers cannot probe for usernames.
func LoginUser(username, password string) (string, *models.User, error) {
	username = strings.ToLower(username)

	var user models.User
	if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		zap.L().Warn("login failed", zap.Uint("user_id", user.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}

	zap.L().Info("login succeeded", zap.Uint("user_id", user.ID))

	return token, &user, nil
}
