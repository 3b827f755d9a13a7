package v1

import (
	"net/http"

	"go-studybuddy-backend/internal/delivery/http/response"
	"go-studybuddy-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	matchUC domain.MatchUsecase
}

func NewMatchHandler(r *gin.RouterGroup, matchUC domain.MatchUsecase) {
	handler := &MatchHandler{matchUC: matchUC}

	matches := r.Group("/matches")
	{
		matches.GET("/partners", handler.StudyPartners)
		matches.GET("/groups", handler.GroupFeed)
	}
}

// StudyPartners godoc
// @Summary      Ranked study partner feed
// @Description  Every other user sharing at least one course with the caller, best match first
// @Tags         matches
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.CandidateScore}
// @Failure      401  {object}  response.Response
// @Router       /matches/partners [get]
// @Security     BearerAuth
func (h *MatchHandler) StudyPartners(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	ranked, err := h.matchUC.StudyPartners(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Study partners", ranked)
}

// GroupFeed godoc
// @Summary      Ranked group feed
// @Description  All visible groups ordered by course overlap with the caller
// @Tags         matches
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.GroupRankResult}
// @Failure      401  {object}  response.Response
// @Router       /matches/groups [get]
// @Security     BearerAuth
func (h *MatchHandler) GroupFeed(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	feed, err := h.matchUC.GroupFeed(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Group feed", feed)
}
