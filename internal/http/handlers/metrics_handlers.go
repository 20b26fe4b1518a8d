package handlers

import (
	"net/http"
)

// GetDashboardMetricsHandler godoc
// @Summary Catalog metrics
// @Description Totals, low stock count, stock value and counts per status
// @Tags metrics
// @Produce json
// @Success 200 {object} MetricsResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials/metrics [get]
func (s *Server) GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	m, err := s.metricsRepo.GetDashboardMetrics()
	if err != nil {
		s.writeFailure(w, r, err, 0)
		return
	}
	_ = writeJSON(w, http.StatusOK, MetricsResponse{
		Success: true,
		Message: "Catalog metrics",
		Data:    m,
	})
}
