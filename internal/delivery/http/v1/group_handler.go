package v1

import (
	"net/http"

	"go-studybuddy-backend/internal/delivery/http/response"
	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groupUC domain.GroupUsecase
}

// NewGroupHandler registers the study group routes
func NewGroupHandler(r *gin.RouterGroup, groupUC domain.GroupUsecase) {
	handler := &GroupHandler{groupUC: groupUC}

	groups := r.Group("/groups")
	{
		groups.POST("", handler.Create)
		groups.GET("/mine", handler.MyGroups)
		groups.GET("/:id", handler.Get)
		groups.PATCH("/:id", handler.Update)
		groups.POST("/:id/courses", handler.AddCourse)
		groups.DELETE("/:id/courses/:courseId", handler.RemoveCourse)
		groups.DELETE("/:id/members/:uid", handler.KickMember)
		groups.POST("/:id/leave", handler.Leave)
		groups.PATCH("/:id/members/:uid/role", handler.ChangeRole)
	}
}

// CreateGroupRequest is the payload for creating a study group
type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	Privacy     string   `json:"privacy" binding:"required,oneof=public private"`
	IsVisible   bool     `json:"is_visible"`
	Courses     []string `json:"courses"`
}

// Create godoc
// @Summary      Create a study group
// @Description  The creator becomes the group admin. Visible groups need at least one course.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        body  body      CreateGroupRequest  true  "Group data"
// @Success      201   {object}  response.Response{data=domain.Group}
// @Failure      400   {object}  response.Response
// @Failure      412   {object}  response.Response
// @Router       /groups [post]
// @Security     BearerAuth
func (h *GroupHandler) Create(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	group := &domain.Group{
		Name:        req.Name,
		Description: req.Description,
		Privacy:     domain.GroupPrivacy(req.Privacy),
		IsVisible:   req.IsVisible,
	}

	created, err := h.groupUC.CreateGroup(c, userID, group, req.Courses)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Group created", created)
}

// MyGroups godoc
// @Summary      List my groups
// @Tags         groups
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Group}
// @Router       /groups/mine [get]
// @Security     BearerAuth
func (h *GroupHandler) MyGroups(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	groups, err := h.groupUC.MyGroups(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "My groups", groups)
}

// Get godoc
// @Summary      Get a group
// @Description  Hidden groups are only returned to their members
// @Tags         groups
// @Produce      json
// @Param        id  path      int  true  "Group ID"
// @Success      200 {object}  response.Response{data=domain.Group}
// @Failure      404 {object}  response.Response
// @Router       /groups/{id} [get]
// @Security     BearerAuth
func (h *GroupHandler) Get(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	group, err := h.groupUC.GetGroup(c, userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Group", group)
}

// Update godoc
// @Summary      Update a group
// @Description  Admin only. Omitted fields are left unchanged.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Group ID"
// @Param        body  body      domain.GroupUpdate  true  "Fields to change"
// @Success      200   {object}  response.Response{data=domain.Group}
// @Failure      403   {object}  response.Response
// @Failure      412   {object}  response.Response
// @Router       /groups/{id} [patch]
// @Security     BearerAuth
func (h *GroupHandler) Update(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var upd domain.GroupUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	group, err := h.groupUC.UpdateGroup(c, userID, id, &upd)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Group updated", group)
}

// AddCourseRequest attaches a course to a group
type AddCourseRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

// AddCourse godoc
// @Summary      Add a course to a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Group ID"
// @Param        body  body      AddCourseRequest  true  "Course"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /groups/{id}/courses [post]
// @Security     BearerAuth
func (h *GroupHandler) AddCourse(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req AddCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.groupUC.AddCourse(c, userID, id, req.CourseID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Course added", nil)
}

// RemoveCourse godoc
// @Summary      Remove a course from a group
// @Description  Refused when it is the last course of a visible group
// @Tags         groups
// @Produce      json
// @Param        id        path      int     true  "Group ID"
// @Param        courseId  path      string  true  "Course ID"
// @Success      200       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Failure      412       {object}  response.Response
// @Router       /groups/{id}/courses/{courseId} [delete]
// @Security     BearerAuth
func (h *GroupHandler) RemoveCourse(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.groupUC.RemoveCourse(c, userID, id, c.Param("courseId")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Course removed", nil)
}

// KickMember godoc
// @Summary      Remove a member from a group
// @Tags         groups
// @Produce      json
// @Param        id   path      int     true  "Group ID"
// @Param        uid  path      string  true  "Member UID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /groups/{id}/members/{uid} [delete]
// @Security     BearerAuth
func (h *GroupHandler) KickMember(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.groupUC.KickMember(c, userID, id, c.Param("uid")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Member removed", nil)
}

// Leave godoc
// @Summary      Leave a group
// @Description  The last member leaving deletes the group; a departing admin hands off the role first
// @Tags         groups
// @Produce      json
// @Param        id  path      int  true  "Group ID"
// @Success      200 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /groups/{id}/leave [post]
// @Security     BearerAuth
func (h *GroupHandler) Leave(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.groupUC.LeaveGroup(c, userID, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Left group", nil)
}

// ChangeRoleRequest sets a member's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member"`
}

// ChangeRole godoc
// @Summary      Change a member's role
// @Description  Admin only. Demoting the only admin is refused.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Group ID"
// @Param        uid   path      string             true  "Member UID"
// @Param        body  body      ChangeRoleRequest  true  "New role"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      412   {object}  response.Response
// @Router       /groups/{id}/members/{uid}/role [patch]
// @Security     BearerAuth
func (h *GroupHandler) ChangeRole(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.groupUC.ChangeMemberRole(c, userID, id, c.Param("uid"), domain.GroupRole(req.Role)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Role updated", nil)
}
