package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finquest-server/internal/app"
	"finquest-server/internal/model"
	"finquest-server/internal/transport/http/response"
)

type UserHandler struct {
	userService    *app.UserService
	maxUploadBytes int64
}

type JoinRequest struct {
	Email           string                `form:"email"`
	Password        string                `form:"password"`
	PasswordConfirm string                `form:"passwordConfirm"`
	Nickname        string                `form:"nickname"`
	Career          string                `form:"career"`
	Salary          *int                  `form:"salary" binding:"required"`
	Saving          *int                  `form:"saving" binding:"required"`
	AgeRange        *int                  `form:"ageRange" binding:"required"`
	Introduction    string                `form:"introduction"`
	File            *multipart.FileHeader `form:"file" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateEmailRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func NewUserHandler(userService *app.UserService, maxUploadBytes int64) *UserHandler {
	return &UserHandler{userService: userService, maxUploadBytes: maxUploadBytes}
}

func (h *UserHandler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if h.maxUploadBytes > 0 && req.File.Size > h.maxUploadBytes {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "profile image too large")
		return
	}

	file, err := req.File.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	defer file.Close()

	result, err := h.userService.Join(c.Request.Context(), app.JoinInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Nickname:        req.Nickname,
		Career:          req.Career,
		Salary:          *req.Salary,
		Saving:          *req.Saving,
		AgeRange:        *req.AgeRange,
		Introduction:    req.Introduction,
		ProfileName:     req.File.Filename,
		Profile:         file,
	})
	if err != nil {
		response.FromError(c, err, "join failed")
		return
	}

	c.JSON(http.StatusCreated, response.APIResponse{
		Code:    response.CodeOK,
		Message: "join success",
		UserID:  result.User.ID,
		Token:   result.Token,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.userService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.FromError(c, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, response.APIResponse{
		Code:    response.CodeOK,
		Message: "login success",
		UserID:  result.User.ID,
		Token:   result.Token,
	})
}

// List returns every user as a bare JSON array.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "list users failed")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, users)
}

// Delete answers in plain text.
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := parseID(c.Param("userId"))
	if !ok {
		c.String(http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userID); err != nil {
		if app.KindOf(err) == app.KindNotFound {
			c.String(http.StatusNotFound, "user not found")
			return
		}
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "delete user failed")
		return
	}
	c.String(http.StatusOK, "user deleted")
}

// UpdateProfile reads optional nickname and career form fields. An uploaded
// file, if any, is ignored.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := parseID(c.Param("userId"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid user id")
		return
	}

	input := app.UpdateProfileInput{UserID: userID}
	if nickname, present := c.GetPostForm("nickname"); present {
		input.Nickname = &nickname
	}
	if career, present := c.GetPostForm("career"); present {
		input.Career = &career
	}

	if _, err := h.userService.UpdateProfile(c.Request.Context(), input); err != nil {
		response.FromError(c, err, "update profile failed")
		return
	}
	response.Message(c, http.StatusOK, "profile updated")
}

func (h *UserHandler) UpdateEmail(c *gin.Context) {
	userID, ok := parseID(c.Param("userId"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid user id")
		return
	}

	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if _, err := h.userService.UpdateEmail(c.Request.Context(), userID, req.Email); err != nil {
		response.FromError(c, err, "update email failed")
		return
	}
	response.Message(c, http.StatusOK, "email updated")
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := parseID(c.Param("userId"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid user id")
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	err := h.userService.UpdatePassword(c.Request.Context(), app.UpdatePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.FromError(c, err, "update password failed")
		return
	}
	response.Message(c, http.StatusOK, "password updated")
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
