package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/middleware"
	"github.com/conectahub/intranet-api/internal/services"
)

// DataHandler serves the whole-dataset administration and reporting routes.
type DataHandler struct {
	data    *services.DataService
	users   *services.UserService
	ranking *services.RankingService
	log     *logger.Logger
}

func NewDataHandler(data *services.DataService, users *services.UserService, ranking *services.RankingService, log *logger.Logger) *DataHandler {
	return &DataHandler{
		data:    data,
		users:   users,
		ranking: ranking,
		log:     log,
	}
}

// Export returns every collection as one document.
func (h *DataHandler) Export(c *gin.Context) {
	snapshot, err := h.data.Export(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"data": snapshot})
}

// Import overwrites every collection present in the body.
func (h *DataHandler) Import(c *gin.Context) {
	var snapshot services.Snapshot
	if !bindJSON(c, &snapshot) {
		return
	}

	if err := h.data.Import(c.Request.Context(), snapshot); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Data imported successfully"})
}

// Clear wipes every collection and the caller's session.
func (h *DataHandler) Clear(c *gin.Context) {
	if err := h.data.ClearAll(c.Request.Context(), middleware.Session(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "All data cleared"})
}

// Seed creates the example accounts that are missing.
func (h *DataHandler) Seed(c *gin.Context) {
	created, err := h.users.SeedExamples(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"created": created})
}

// Stats reports record totals and whether a user is logged in.
func (h *DataHandler) Stats(c *gin.Context) {
	stats, err := h.data.Stats(c.Request.Context(), middleware.Session(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"stats": stats})
}

// Ranking returns the XP ranking, optionally for one department.
func (h *DataHandler) Ranking(c *gin.Context) {
	entries, err := h.ranking.Ranking(c.Request.Context(), c.Query("department"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"ranking": entries})
}
