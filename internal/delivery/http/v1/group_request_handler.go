package v1

import (
	"net/http"

	"go-studybuddy-backend/internal/delivery/http/response"
	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type GroupRequestHandler struct {
	joinUC domain.GroupJoinUsecase
}

// NewGroupRequestHandler registers the group join request routes
func NewGroupRequestHandler(r *gin.RouterGroup, joinUC domain.GroupJoinUsecase) {
	handler := &GroupRequestHandler{joinUC: joinUC}

	groups := r.Group("/groups")
	{
		groups.POST("/:id/join", handler.RequestToJoin)
		groups.GET("/:id/requests", handler.PendingForGroup)
	}

	requests := r.Group("/group-requests")
	{
		requests.GET("/mine", handler.MyPending)
		requests.POST("/:id/respond", handler.Respond)
	}
}

// JoinRequest is the payload for requesting to join a group
type JoinRequest struct {
	Message string `json:"message" binding:"max=500"`
}

// RequestToJoin godoc
// @Summary      Request to join a group
// @Description  Public groups admit immediately; private groups queue the request for an admin
// @Tags         group-requests
// @Accept       json
// @Produce      json
// @Param        id    path      int          true   "Group ID"
// @Param        body  body      JoinRequest  false  "Optional message"
// @Success      200   {object}  response.Response{data=domain.JoinResult}
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      412   {object}  response.Response
// @Router       /groups/{id}/join [post]
// @Security     BearerAuth
func (h *GroupRequestHandler) RequestToJoin(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req JoinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
	}

	result, err := h.joinUC.RequestToJoin(c, userID, id, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	if result.AutoAccepted {
		response.Success(c, http.StatusOK, "Joined group", result)
		return
	}
	response.Success(c, http.StatusCreated, "Join request sent", result)
}

// PendingForGroup godoc
// @Summary      List pending join requests for a group
// @Description  Admin only
// @Tags         group-requests
// @Produce      json
// @Param        id  path      int  true  "Group ID"
// @Success      200 {object}  response.Response{data=[]domain.GroupJoinRequest}
// @Failure      403 {object}  response.Response
// @Router       /groups/{id}/requests [get]
// @Security     BearerAuth
func (h *GroupRequestHandler) PendingForGroup(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	requests, err := h.joinUC.PendingForGroup(c, userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Pending join requests", requests)
}

// MyPending godoc
// @Summary      List my pending join requests
// @Tags         group-requests
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.GroupJoinRequest}
// @Router       /group-requests/mine [get]
// @Security     BearerAuth
func (h *GroupRequestHandler) MyPending(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	requests, err := h.joinUC.MyPending(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "My join requests", requests)
}

// RespondRequest accepts or rejects a join request
type RespondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// Respond godoc
// @Summary      Respond to a join request
// @Description  Admin only; accepting admits the requester in the same transaction
// @Tags         group-requests
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Request ID"
// @Param        body  body      RespondRequest  true  "Decision"
// @Success      200   {object}  response.Response{data=domain.GroupJoinRequest}
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /group-requests/{id}/respond [post]
// @Security     BearerAuth
func (h *GroupRequestHandler) Respond(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	updated, err := h.joinUC.Respond(c, userID, id, *req.Accept)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Request updated", updated)
}
