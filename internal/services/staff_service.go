package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/ident"
	"jbcnews/internal/models"
)

// staffService manages staff profiles.
type staffService struct {
	db    *gorm.DB
	newID func() (string, error)
}

// NewStaffService creates a new StaffServicer.
func NewStaffService(db *gorm.DB) StaffServicer {
	return &staffService{db: db, newID: ident.NewStaffID}
}

// Promote gives a user the staff or admin role and creates their staff profile
// with a freshly generated staff id.
func (s *staffService) Promote(userID string, role models.Role, department string) (*models.Staff, error) {
	if !role.CanAuthor() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "role must be staff or admin")
	}

	staffID, err := s.newID()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var staff *models.Staff
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if taken, err := exists(tx.Model(&models.Staff{}).Where("user_id = ?", userID)); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		} else if taken {
			return apperrors.ErrAlreadyStaff
		}

		staff = &models.Staff{
			UserID:     userID,
			StaffID:    staffID,
			Department: department,
		}
		if err := tx.Create(staff).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Wrap(apperrors.ErrStaffIDConflict, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// GetByUserID retrieves the staff profile of a user
func (s *staffService) GetByUserID(userID string) (*models.Staff, error) {
	var staff models.Staff
	if err := s.db.Where("user_id = ?", userID).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &staff, nil
}
