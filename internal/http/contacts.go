package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"contact-book-go/internal/apperror"
	"contact-book-go/internal/models"
	"contact-book-go/internal/service"
)

// GET /api/contacts
//
// Filter precedence: keyword search wins over group filter, which wins over
// the favorite filter, which wins over the plain list.
func (s *Server) listContacts(c *gin.Context) {
	userID := currentUserID(c)

	keyword := strings.TrimSpace(c.Query("keyword"))
	groupID := strings.TrimSpace(c.DefaultQuery("group_id", "0"))
	favorite, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("favorite", "-1")))
	if err != nil {
		favorite = service.FavoriteAll
	}

	var contacts []models.Contact
	switch {
	case keyword != "":
		contacts, err = s.contacts.Search(keyword, userID)
	case groupID != "0":
		gid, convErr := strconv.ParseUint(groupID, 10, 32)
		if convErr != nil {
			contacts, err = s.contacts.ListAll(userID, favorite)
		} else {
			contacts, err = s.contacts.ListByGroup(uint(gid), userID)
		}
	case favorite != service.FavoriteAll:
		contacts, err = s.contacts.ListAll(userID, favorite)
	default:
		contacts, err = s.contacts.ListAll(userID, service.FavoriteAll)
	}
	if err != nil {
		respondError(c, 500, "获取联系人失败")
		return
	}

	c.JSON(200, gin.H{"success": true, "data": contacts})
}

// POST /api/contacts
func (s *Server) addContact(c *gin.Context) {
	userID := currentUserID(c)

	var input service.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, 400, "姓名和电话1不能为空")
		return
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Phone1) == "" {
		respondError(c, 400, "姓名和电话1不能为空")
		return
	}

	// Group 0 means ungrouped and skips validation.
	if input.GroupID != 0 {
		if _, err := s.groups.GetByID(input.GroupID, userID); err != nil {
			respondError(c, 400, "分组不存在")
			return
		}
	}

	contact, err := s.contacts.Add(input, userID)
	if errors.Is(err, apperror.ErrValidation) {
		respondError(c, 400, err.Error())
		return
	}
	if errors.Is(err, apperror.ErrDuplicate) {
		respondError(c, 400, "电话1已存在，无法重复添加")
		return
	}
	if err != nil {
		respondError(c, 500, "添加联系人失败")
		return
	}

	respond(c, 201, "联系人添加成功！", gin.H{"id": contact.ID})
}

// PUT /api/contacts
func (s *Server) updateContact(c *gin.Context) {
	userID := currentUserID(c)

	var payload struct {
		OldPhone    string `json:"old_phone"`
		NewName     string `json:"new_name"`
		NewPhone    string `json:"new_phone"`
		NewPhone2   string `json:"new_phone2"`
		NewEmail1   string `json:"new_email1"`
		NewEmail2   string `json:"new_email2"`
		NewSocial   string `json:"new_social"`
		NewAddress  string `json:"new_address"`
		NewGroupID  uint   `json:"new_group_id"`
		NewFavorite bool   `json:"new_favorite"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || strings.TrimSpace(payload.OldPhone) == "" {
		respondError(c, 400, "参数错误：缺少old_phone")
		return
	}

	if payload.NewGroupID != 0 {
		if _, err := s.groups.GetByID(payload.NewGroupID, userID); err != nil {
			respondError(c, 400, "分组不存在")
			return
		}
	}

	input := service.ContactInput{
		Name:        payload.NewName,
		Phone1:      payload.NewPhone,
		Phone2:      payload.NewPhone2,
		Email1:      payload.NewEmail1,
		Email2:      payload.NewEmail2,
		SocialMedia: payload.NewSocial,
		Address:     payload.NewAddress,
		GroupID:     payload.NewGroupID,
		IsFavorite:  payload.NewFavorite,
	}

	err := s.contacts.Update(payload.OldPhone, input, userID)
	// Both outcomes map to the same wire response for compatibility.
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrDuplicate) {
		respondError(c, 400, "联系人不存在或新电话1已被占用")
		return
	}
	if err != nil {
		respondError(c, 500, "修改失败")
		return
	}

	respond(c, 200, "修改成功", nil)
}

// DELETE /api/contacts
func (s *Server) deleteContact(c *gin.Context) {
	var payload struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || strings.TrimSpace(payload.Phone) == "" {
		respondError(c, 400, "参数错误：缺少phone")
		return
	}

	err := s.contacts.Delete(payload.Phone, currentUserID(c))
	if errors.Is(err, apperror.ErrNotFound) {
		respondError(c, 404, "联系人不存在")
		return
	}
	if err != nil {
		respondError(c, 500, "删除失败")
		return
	}

	respond(c, 200, "删除成功", nil)
}

// PUT /api/contacts/favorite/:id
func (s *Server) toggleFavorite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, 400, "参数错误：联系人ID无效")
		return
	}

	err = s.contacts.ToggleFavorite(uint(id), currentUserID(c))
	if errors.Is(err, apperror.ErrNotFound) {
		respondError(c, 404, "联系人不存在")
		return
	}
	if err != nil {
		respondError(c, 500, "更新收藏状态失败")
		return
	}

	respond(c, 200, "收藏状态已更新", nil)
}

// POST /api/contacts/batch
func (s *Server) batchAddContacts(c *gin.Context) {
	var payload struct {
		Contacts json.RawMessage `json:"contacts"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || len(payload.Contacts) == 0 {
		respondError(c, 400, "参数错误：缺少contacts数组")
		return
	}

	result, err := s.validator.Validate(gojsonschema.NewBytesLoader(payload.Contacts))
	if err != nil || !result.Valid() {
		respondError(c, 400, "参数错误：contacts数组格式不正确")
		return
	}

	var inputs []service.ContactInput
	if err := json.Unmarshal(payload.Contacts, &inputs); err != nil {
		respondError(c, 400, "参数错误：缺少contacts数组")
		return
	}

	success, fail := s.contacts.BatchAdd(inputs, currentUserID(c))
	respond(c, 200, fmt.Sprintf("导入成功%d条，失败%d条", success, fail),
		gin.H{"success": success, "fail": fail})
}
