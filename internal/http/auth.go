package http

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"contact-book-go/internal/apperror"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// POST /api/register
func (s *Server) register(c *gin.Context) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, 400, "用户名和密码不能为空")
		return
	}
	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Password) == "" {
		respondError(c, 400, "用户名和密码不能为空")
		return
	}

	email := strings.TrimSpace(input.Email)
	if email != "" && !emailPattern.MatchString(email) {
		respondError(c, 400, "请输入有效的邮箱地址")
		return
	}

	user, err := s.users.Register(input.Username, input.Password, email)
	if errors.Is(err, apperror.ErrDuplicate) {
		respondError(c, 400, err.Error())
		return
	}
	if errors.Is(err, apperror.ErrValidation) {
		respondError(c, 400, err.Error())
		return
	}
	if err != nil {
		respondError(c, 500, "注册失败")
		return
	}

	respond(c, 201, "注册成功", gin.H{"user_id": user.ID, "username": user.Username})
}

// POST /api/login
func (s *Server) login(c *gin.Context) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, 400, "用户名和密码不能为空")
		return
	}
	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Password) == "" {
		respondError(c, 400, "用户名和密码不能为空")
		return
	}

	user, err := s.users.Login(input.Username, input.Password)
	if errors.Is(err, apperror.ErrNotFound) {
		respondError(c, 401, "用户名或密码错误")
		return
	}
	if err != nil {
		respondError(c, 500, "登录失败")
		return
	}

	respond(c, 200, "登录成功", gin.H{"user_id": user.ID, "username": user.Username})
}
