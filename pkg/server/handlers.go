package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openswoop/coursebuilder/pkg/catalog"
	"github.com/openswoop/coursebuilder/pkg/database"
	"github.com/openswoop/coursebuilder/pkg/grades"
	"github.com/openswoop/coursebuilder/pkg/report"
	"github.com/openswoop/coursebuilder/pkg/schedule"
)

type ErrorResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	Lecture  *catalog.Section  `json:"lecture,omitempty"`
	Children []catalog.Section `json:"children,omitempty"`
}

type Handlers struct {
	db       database.Database
	schedule *schedule.Service
	grades   grades.Store
	cache    *CacheService
}

type addRequest struct {
	SectionID string `json:"sectionId" form:"courseID"`
}

type childrenRequest struct {
	SectionIDs []string `json:"sectionIds" form:"selectedSections"`
}

type gradesRequest struct {
	Course string `json:"course" form:"course"`
}

func (h *Handlers) sections(query string) ([]catalog.Section, bool, error) {
	cacheKey := fmt.Sprintf("courses:%s", query)
	if cached, found := h.cache.Get(cacheKey); found {
		return cached.([]catalog.Section), true, nil
	}

	all, err := h.db.AllSections()
	if err != nil {
		return nil, false, err
	}
	sections := catalog.Filter(all, query)
	h.cache.Set(cacheKey, sections, 0)
	return sections, false, nil
}

func (h *Handlers) listSections(c *gin.Context, query string) {
	sections, cached, err := h.sections(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to list courses",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   sections,
		"cached": cached,
	})
}

// GetCourses lists the catalog, narrowed by an optional query.
func (h *Handlers) GetCourses(c *gin.Context) {
	h.listSections(c, c.Query("query"))
}

// SearchCourses matches the query against course codes and names. An empty
// query matches every section.
func (h *Handlers) SearchCourses(c *gin.Context) {
	h.listSections(c, c.Query("query"))
}

func (h *Handlers) GetSchedule(c *gin.Context) {
	entries, err := h.schedule.Entries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to load schedule",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// AddSection schedules one section. When a lecture with child sections is
// added, the children are returned so the client can pick from them.
func (h *Handlers) AddSection(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBind(&req); err != nil || req.SectionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "sectionId is required",
		})
		return
	}

	result, err := h.schedule.Add(req.SectionID)
	if err != nil {
		h.renderError(c, "failed to add section", err)
		return
	}
	scheduled.Inc()
	log.Printf("Added section %s (%s)", result.Section.ID, result.Section.CourseCode)
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (h *Handlers) AddChildren(c *gin.Context) {
	var req childrenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	result, err := h.schedule.AddChildren(req.SectionIDs)
	if err != nil {
		h.renderError(c, "failed to add sections", err)
		return
	}
	scheduled.Add(float64(len(result.Inserted)))
	log.Printf("Added %d sections for %s", len(result.Inserted), result.Lecture.CourseCode)
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (h *Handlers) RemoveSection(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "id must be a schedule entry number",
		})
		return
	}
	if err := h.schedule.Remove(id); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to remove section",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": id})
}

func (h *Handlers) ExportSchedule(c *gin.Context) {
	entries, err := h.schedule.Entries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to load schedule",
			Message: err.Error(),
		})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="schedule.csv"`)
	c.Status(http.StatusOK)
	if err := report.MarshalSchedule(entries, c.Writer); err != nil {
		log.Println("Warning: failed to write schedule export:", err)
	}
}

func (h *Handlers) GetCalendar(c *gin.Context) {
	events, err := h.schedule.Calendar()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to build calendar",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (h *Handlers) ListGrades(c *gin.Context) {
	keys, err := h.grades.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to list grade files",
			Message: err.Error(),
		})
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"data": keys})
}

func (h *Handlers) GetGrades(c *gin.Context) {
	h.renderGrades(c, c.Param("course"))
}

// PostGrades serves the grade selection form.
func (h *Handlers) PostGrades(c *gin.Context) {
	var req gradesRequest
	if err := c.ShouldBind(&req); err != nil || req.Course == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "course is required",
		})
		return
	}
	h.renderGrades(c, req.Course)
}

func (h *Handlers) renderGrades(c *gin.Context, course string) {
	stats, err := grades.Load(c.Request.Context(), h.grades, course)
	if errors.Is(err, grades.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "grade file not found",
			Message: fmt.Sprintf("No grade data for %s.", course),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to load grades",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// ImportCatalog replaces the catalog with the dataset in the request body.
func (h *Handlers) ImportCatalog(c *gin.Context) {
	result, err := h.db.ImportCatalog(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to import catalog",
			Message: err.Error(),
		})
		return
	}
	h.cache.Flush()
	log.Printf("Imported %d sections (%d skipped, %d duplicates)", result.Imported, result.Skipped, result.Duplicates)
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *Handlers) InvalidateCache(c *gin.Context) {
	h.cache.Flush()
	c.JSON(http.StatusOK, gin.H{"status": "cache invalidated"})
}

// renderError maps a validation rejection to 422 and anything else to 500.
func (h *Handlers) renderError(c *gin.Context, action string, err error) {
	var verr *schedule.ValidationError
	if !errors.As(err, &verr) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   action,
			Message: err.Error(),
		})
		return
	}

	rejections.WithLabelValues(verr.Rule).Inc()
	status := http.StatusUnprocessableEntity
	if verr.Rule == schedule.RuleNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, ErrorResponse{
		Error:    verr.Rule,
		Message:  verr.Message,
		Lecture:  verr.Lecture,
		Children: verr.Children,
	})
}
