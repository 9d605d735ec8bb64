package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// RegisterFromChat creates the account collected by the registration flow and
// links the chat session to it. Both writes share one transaction, so a failure
// leaves the session exactly as it was.
func (s *userService) RegisterFromChat(in RegistrationInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.PasswordHash == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username, email and password are required")
	}

	user := &models.User{
		Username: in.Username,
		Email:    strings.ToLower(in.Email),
		Password: in.PasswordHash,
		Role:     models.RoleUser,
		Phone:    in.Phone,
		Location: in.Location,
		IsActive: true,
	}
	if in.CountryID != "" {
		countryID := in.CountryID
		user.CountryID = &countryID
	}
	if in.TelegramID != 0 {
		telegramID := in.TelegramID
		user.TelegramID = &telegramID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx.Model(&models.User{}).Where("username = ?", user.Username)); err != nil {
			return err
		} else if taken {
			return apperrors.ErrDuplicateUsername
		}
		if taken, err := exists(tx.Model(&models.User{}).Where("email = ?", user.Email)); err != nil {
			return err
		} else if taken {
			return apperrors.ErrDuplicateEmail
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "this chat is already linked to an account")
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result := tx.Model(&models.ChatSession{}).
			Where("chat_id = ?", in.ChatID).
			Updates(map[string]any{
				"registered": true,
				"user_id":    user.ID,
				"flow":       "",
				"step":       "",
				"draft":      models.EmptyDraft(),
			})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrSessionNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UsernameTaken reports whether the exact username is in use
func (s *userService) UsernameTaken(username string) (bool, error) {
	taken, err := exists(s.db.Model(&models.User{}).Where("username = ?", username))
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return taken, nil
}

// EmailTaken reports whether the email is in use
func (s *userService) EmailTaken(email string) (bool, error) {
	taken, err := exists(s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)))
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return taken, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID together with country and staff profile
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Country").Preload("Staff").Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks credentials and records the login time. Unknown emails
// and wrong passwords produce the same error.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now
	return user, nil
}

// exists reports whether the scoped query matches at least one row
func exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
