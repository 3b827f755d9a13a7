package v1

import (
	"net/http"
	"time"

	"go-studybuddy-backend/internal/delivery/http/response"
	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(r *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := r.Group("/users")
	{
		users.GET("/me", handler.GetMe)
		users.PUT("/me", handler.SaveProfile)
		users.GET("/username-available", handler.CheckUsername)
		users.PUT("/me/courses", handler.SetCourses)
	}

	r.GET("/enums", handler.GetEnums)
}

// GetMe godoc
// @Summary      Get my profile
// @Description  Get the study profile of the currently logged-in user
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.UserProfile}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	profile, err := h.userUC.GetMe(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile", profile)
}

// SaveProfileRequest is the payload for creating or updating a profile
type SaveProfileRequest struct {
	Username    string    `json:"username" binding:"required"`
	DateOfBirth time.Time `json:"date_of_birth" binding:"required"`
	Grade       string    `json:"grade" binding:"required"`
	Gender      string    `json:"gender" binding:"required"`
	School      string    `json:"school" binding:"required"`
}

// SaveProfile godoc
// @Summary      Create or update my profile
// @Description  Upsert the study profile of the currently logged-in user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      SaveProfileRequest  true  "Profile data"
// @Success      200   {object}  response.Response{data=domain.UserProfile}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /users/me [put]
// @Security     BearerAuth
func (h *UserHandler) SaveProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile := &domain.UserProfile{
		UID:         userID,
		Username:    req.Username,
		DateOfBirth: &req.DateOfBirth,
		Grade:       req.Grade,
		Gender:      req.Gender,
		School:      req.School,
	}

	if err := h.userUC.SaveProfile(c, profile); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile saved", profile)
}

// CheckUsername godoc
// @Summary      Check username availability
// @Tags         users
// @Produce      json
// @Param        username  query     string  true  "Username to check"
// @Success      200       {object}  response.Response{data=map[string]bool}
// @Failure      400       {object}  response.Response
// @Router       /users/username-available [get]
// @Security     BearerAuth
func (h *UserHandler) CheckUsername(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	username := c.Query("username")
	if username == "" {
		c.Error(apperror.BadRequest("username query parameter is required"))
		return
	}

	available, err := h.userUC.CheckUsername(c, userID, username)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Username availability", gin.H{"available": available})
}

// SetCoursesRequest replaces the caller's course list
type SetCoursesRequest struct {
	Courses []string `json:"courses" binding:"required"`
}

// SetCourses godoc
// @Summary      Replace my course list
// @Description  Replace the caller's enrolled courses with the given list
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      SetCoursesRequest  true  "Course IDs"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /users/me/courses [put]
// @Security     BearerAuth
func (h *UserHandler) SetCourses(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req SetCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.userUC.SetCourses(c, userID, req.Courses); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Courses updated", nil)
}

// GetEnums godoc
// @Summary      Get profile enums
// @Description  Recognized grade and gender values with display labels
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.EnumConfig}
// @Router       /enums [get]
// @Security     BearerAuth
func (h *UserHandler) GetEnums(c *gin.Context) {
	response.Success(c, http.StatusOK, "Enum values", h.userUC.Enums(c))
}
