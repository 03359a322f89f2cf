package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"contact-book-go/internal/apperror"
	"contact-book-go/internal/models"
)

// FavoriteAll disables the favorite filter in ListAll.
const FavoriteAll = -1

// ContactInput carries the mutable fields of a contact for add, update and
// batch operations.
type ContactInput struct {
	Name        string `json:"name"`
	Phone1      string `json:"phone1"`
	Phone2      string `json:"phone2"`
	Email1      string `json:"email1"`
	Email2      string `json:"email2"`
	SocialMedia string `json:"social_media"`
	Address     string `json:"address"`
	GroupID     uint   `json:"group_id"`
	IsFavorite  bool   `json:"is_favorite"`
}

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// ListAll returns the contacts of userID. favorite is tri-state:
// FavoriteAll returns everything, 1 only favorites, 0 only non-favorites.
func (s *ContactService) ListAll(userID uint, favorite int) ([]models.Contact, error) {
	query := s.db.Where("user_id = ?", userID)
	if favorite != FavoriteAll {
		query = query.Where("is_favorite = ?", favorite == 1)
	}
	var contacts []models.Contact
	if err := query.Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// Search matches keyword as a substring of name, phone1 or phone2.
func (s *ContactService) Search(keyword string, userID uint) ([]models.Contact, error) {
	pattern := "%" + keyword + "%"
	var contacts []models.Contact
	err := s.db.Where(
		"(name LIKE ? OR phone1 LIKE ? OR phone2 LIKE ?) AND user_id = ?",
		pattern, pattern, pattern, userID,
	).Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *ContactService) ListByGroup(groupID, userID uint) ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// Add inserts a single contact. Phone1 is the per-user dedup key. Group
// ownership of a non-zero GroupID is the caller's responsibility; the service
// does not re-validate it here.
func (s *ContactService) Add(input ContactInput, userID uint) (*models.Contact, error) {
	name := strings.TrimSpace(input.Name)
	phone1 := strings.TrimSpace(input.Phone1)
	if name == "" || phone1 == "" {
		return nil, apperror.Validation("姓名和电话1不能为空")
	}

	contact := &models.Contact{
		Name:        name,
		Phone1:      phone1,
		Phone2:      input.Phone2,
		Email1:      input.Email1,
		Email2:      input.Email2,
		SocialMedia: input.SocialMedia,
		Address:     input.Address,
		GroupID:     input.GroupID,
		UserID:      userID,
		IsFavorite:  input.IsFavorite,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Contact{}).Where("phone1 = ? AND user_id = ?", phone1, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.Duplicate("电话1已存在，无法重复添加")
		}
		if err := tx.Create(contact).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.Duplicate("电话1已存在，无法重复添加")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("contact_id", contact.ID).Str("name", name).Msg("contact added")
	return contact, nil
}

// Update looks up the contact by (oldPhone1, userID) and overwrites all
// mutable fields. The two failure modes are distinguishable to callers:
// ErrNotFound when oldPhone1 misses, ErrDuplicate when the new phone1 is
// already used by another contact of the same user.
func (s *ContactService) Update(oldPhone1 string, input ContactInput, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var contact models.Contact
		err := tx.Where("phone1 = ? AND user_id = ?", strings.TrimSpace(oldPhone1), userID).First(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("联系人不存在")
		}
		if err != nil {
			return err
		}

		newPhone := strings.TrimSpace(input.Phone1)
		var count int64
		if err := tx.Model(&models.Contact{}).
			Where("phone1 = ? AND user_id = ? AND id <> ?", newPhone, userID, contact.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.Duplicate("新电话1已被占用")
		}

		contact.Name = strings.TrimSpace(input.Name)
		contact.Phone1 = newPhone
		contact.Phone2 = input.Phone2
		contact.Email1 = input.Email1
		contact.Email2 = input.Email2
		contact.SocialMedia = input.SocialMedia
		contact.Address = input.Address
		contact.GroupID = input.GroupID
		contact.IsFavorite = input.IsFavorite

		if err := tx.Save(&contact).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.Duplicate("新电话1已被占用")
			}
			return err
		}
		return nil
	})
}

func (s *ContactService) Delete(phone1 string, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var contact models.Contact
		err := tx.Where("phone1 = ? AND user_id = ?", strings.TrimSpace(phone1), userID).First(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("联系人不存在")
		}
		if err != nil {
			return err
		}
		return tx.Delete(&models.Contact{}, contact.ID).Error
	})
}

// ToggleFavorite flips the favorite flag; two calls restore the original state.
func (s *ContactService) ToggleFavorite(contactID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var contact models.Contact
		err := tx.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("联系人不存在")
		}
		if err != nil {
			return err
		}
		return tx.Model(&contact).Update("is_favorite", !contact.IsFavorite).Error
	})
}

// BatchAdd inserts records one by one inside a single transaction. A record
// failing validation, group existence or uniqueness increments fail and is
// skipped; an unexpected storage error rolls back the whole batch and reports
// every record as failed.
func (s *ContactService) BatchAdd(inputs []ContactInput, userID uint) (int, int) {
	success, fail := 0, 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			name := strings.TrimSpace(in.Name)
			phone1 := strings.TrimSpace(in.Phone1)
			if name == "" || phone1 == "" {
				fail++
				continue
			}

			if in.GroupID != 0 {
				var count int64
				if err := tx.Model(&models.Group{}).Where("id = ? AND user_id = ?", in.GroupID, userID).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					fail++
					continue
				}
			}

			var count int64
			if err := tx.Model(&models.Contact{}).Where("phone1 = ? AND user_id = ?", phone1, userID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				fail++
				continue
			}

			contact := models.Contact{
				Name:        name,
				Phone1:      phone1,
				Phone2:      in.Phone2,
				Email1:      in.Email1,
				Email2:      in.Email2,
				SocialMedia: in.SocialMedia,
				Address:     in.Address,
				GroupID:     in.GroupID,
				UserID:      userID,
				IsFavorite:  in.IsFavorite,
			}
			if err := tx.Create(&contact).Error; err != nil {
				if isUniqueViolation(err) {
					fail++
					continue
				}
				return err
			}
			success++
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int("records", len(inputs)).Msg("batch add rolled back")
		return 0, len(inputs)
	}
	return success, fail
}
