package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"contact-book-go/internal/apperror"
	"contact-book-go/internal/models"
)

type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

func (s *GroupService) List(userID uint) ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.Where("user_id = ?", userID).Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Create adds a group for userID. The (group_name, user_id) pair must be
// unique; different users may reuse the same name.
func (s *GroupService) Create(name string, userID uint) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("分组名称不能为空")
	}

	group := &models.Group{GroupName: name, UserID: userID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Group{}).Where("group_name = ? AND user_id = ?", name, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.Duplicate("分组已存在")
		}
		if err := tx.Create(group).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.Duplicate("分组已存在")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("group_id", group.ID).Uint("user_id", userID).Msg("group created")
	return group, nil
}

// GetByID is ownership-scoped: a group owned by another user is not found.
func (s *GroupService) GetByID(groupID, userID uint) (*models.Group, error) {
	var group models.Group
	err := s.db.Where("id = ? AND user_id = ?", groupID, userID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("分组不存在")
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}
