package v1

import (
	"net/http"
	"strconv"

	"go-studybuddy-backend/internal/delivery/http/response"
	"go-studybuddy-backend/internal/domain"
	"go-studybuddy-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	connectionUC domain.ConnectionUsecase
}

// NewConnectionHandler registers the study buddy request routes
func NewConnectionHandler(r *gin.RouterGroup, connectionUC domain.ConnectionUsecase) {
	handler := &ConnectionHandler{connectionUC: connectionUC}

	connections := r.Group("/connections")
	{
		connections.POST("/requests", handler.Send)
		connections.GET("/requests/incoming", handler.Incoming)
		connections.GET("/requests/outgoing", handler.Outgoing)
		connections.POST("/requests/:id/accept", handler.Accept)
		connections.POST("/requests/:id/reject", handler.Reject)
		connections.POST("/requests/:id/cancel", handler.Cancel)
		connections.GET("/status/:uid", handler.StatusWith)
	}
}

// SendRequest is the payload for sending a study buddy request
type SendRequest struct {
	ReceiverUID string `json:"receiver_uid" binding:"required"`
	Message     string `json:"message" binding:"max=500"`
}

// Send godoc
// @Summary      Send a study buddy request
// @Tags         connections
// @Accept       json
// @Produce      json
// @Param        body  body      SendRequest  true  "Request data"
// @Success      201   {object}  response.Response{data=domain.ConnectionRequest}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /connections/requests [post]
// @Security     BearerAuth
func (h *ConnectionHandler) Send(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	created, err := h.connectionUC.Send(c, userID, req.ReceiverUID, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Request sent", created)
}

// Incoming godoc
// @Summary      List requests sent to me
// @Tags         connections
// @Produce      json
// @Param        status  query     string  false  "Filter by status"  Enums(pending, accepted, rejected, canceled)
// @Success      200     {object}  response.Response{data=[]domain.ConnectionRequest}
// @Router       /connections/requests/incoming [get]
// @Security     BearerAuth
func (h *ConnectionHandler) Incoming(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	status, err := statusFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	requests, err := h.connectionUC.Incoming(c, userID, status)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Incoming requests", requests)
}

// Outgoing godoc
// @Summary      List requests I sent
// @Tags         connections
// @Produce      json
// @Param        status  query     string  false  "Filter by status"  Enums(pending, accepted, rejected, canceled)
// @Success      200     {object}  response.Response{data=[]domain.ConnectionRequest}
// @Router       /connections/requests/outgoing [get]
// @Security     BearerAuth
func (h *ConnectionHandler) Outgoing(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	status, err := statusFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	requests, err := h.connectionUC.Outgoing(c, userID, status)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Outgoing requests", requests)
}

// Accept godoc
// @Summary      Accept a study buddy request
// @Description  Accepts the request and creates the private study group for the pair
// @Tags         connections
// @Produce      json
// @Param        id  path      int  true  "Request ID"
// @Success      200 {object}  response.Response{data=domain.ConnectionResult}
// @Failure      403 {object}  response.Response
// @Failure      409 {object}  response.Response
// @Router       /connections/requests/{id}/accept [post]
// @Security     BearerAuth
func (h *ConnectionHandler) Accept(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.connectionUC.Accept(c, userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Request accepted", result)
}

// Reject godoc
// @Summary      Reject a study buddy request
// @Tags         connections
// @Produce      json
// @Param        id  path      int  true  "Request ID"
// @Success      200 {object}  response.Response{data=domain.ConnectionRequest}
// @Failure      403 {object}  response.Response
// @Failure      409 {object}  response.Response
// @Router       /connections/requests/{id}/reject [post]
// @Security     BearerAuth
func (h *ConnectionHandler) Reject(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	req, err := h.connectionUC.Reject(c, userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Request rejected", req)
}

// Cancel godoc
// @Summary      Cancel my pending request
// @Tags         connections
// @Produce      json
// @Param        id  path      int  true  "Request ID"
// @Success      200 {object}  response.Response{data=domain.ConnectionRequest}
// @Failure      403 {object}  response.Response
// @Failure      409 {object}  response.Response
// @Router       /connections/requests/{id}/cancel [post]
// @Security     BearerAuth
func (h *ConnectionHandler) Cancel(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	req, err := h.connectionUC.Cancel(c, userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Request canceled", req)
}

// StatusWith godoc
// @Summary      Relationship with another user
// @Description  none, pending_outgoing, pending_incoming or connected, from the caller's point of view
// @Tags         connections
// @Produce      json
// @Param        uid  path      string  true  "Other user UID"
// @Success      200  {object}  response.Response{data=map[string]string}
// @Router       /connections/status/{uid} [get]
// @Security     BearerAuth
func (h *ConnectionHandler) StatusWith(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	otherUID := c.Param("uid")

	state, err := h.connectionUC.StatusWith(c, userID, otherUID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Relationship status", gin.H{"status": state})
}

// statusFilter parses the optional ?status= query parameter.
func statusFilter(c *gin.Context) (*domain.RequestStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	status := domain.RequestStatus(raw)
	switch status {
	case domain.StatusPending, domain.StatusAccepted, domain.StatusRejected, domain.StatusCanceled:
		return &status, nil
	default:
		return nil, apperror.BadRequest("Invalid status filter")
	}
}

// pathID parses an int64 path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperror.BadRequest("Invalid " + name)
	}
	return id, nil
}
