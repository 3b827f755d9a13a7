package v1

import (
	"net/http"

	"go-studybuddy-backend/internal/delivery/http/response"
	"go-studybuddy-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courseUC domain.CourseUsecase
}

func NewCourseHandler(r *gin.RouterGroup, courseUC domain.CourseUsecase) {
	handler := &CourseHandler{courseUC: courseUC}

	r.GET("/courses", handler.ListCourses)
}

// ListCourses godoc
// @Summary      List the course catalog
// @Tags         courses
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Course}
// @Router       /courses [get]
// @Security     BearerAuth
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseUC.ListCourses(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Course catalog", courses)
}
