package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"contact-book-go/internal/apperror"
)

// GET /api/groups
func (s *Server) listGroups(c *gin.Context) {
	groups, err := s.groups.List(currentUserID(c))
	if err != nil {
		respondError(c, 500, "获取分组失败")
		return
	}
	c.JSON(200, gin.H{"success": true, "data": groups})
}

// POST /api/groups
func (s *Server) createGroup(c *gin.Context) {
	var input struct {
		GroupName string `json:"group_name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, 400, "分组名称不能为空")
		return
	}

	group, err := s.groups.Create(input.GroupName, currentUserID(c))
	if errors.Is(err, apperror.ErrValidation) {
		respondError(c, 400, err.Error())
		return
	}
	if errors.Is(err, apperror.ErrDuplicate) {
		respondError(c, 400, err.Error())
		return
	}
	if err != nil {
		respondError(c, 500, "创建分组失败")
		return
	}

	respond(c, 201, "分组创建成功", gin.H{"id": group.ID, "group_name": group.GroupName})
}
