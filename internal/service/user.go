package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"contact-book-go/internal/apperror"
	"contact-book-go/internal/models"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new user. Username and password must be non-empty after
// trimming; a blank email is stored as NULL so that users without an email
// never collide on the unique index.
func (s *UserService) Register(username, password, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, apperror.Validation("用户名和密码不能为空")
	}

	user := &models.User{Username: username, Password: password}
	if email != "" {
		user.Email = &email
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.Duplicate("用户名或邮箱已存在")
		}
		if email != "" {
			if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperror.Duplicate("用户名或邮箱已存在")
			}
		}
		if err := tx.Create(user).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.Duplicate("用户名或邮箱已存在")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("user_id", user.ID).Str("username", username).Msg("user registered")
	return user, nil
}

// Login verifies username and password by exact match. No session or token is
// issued; the returned id is the caller identity for subsequent requests.
func (s *UserService) Login(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND password = ?",
		strings.TrimSpace(username), strings.TrimSpace(password)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("用户名或密码错误")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
