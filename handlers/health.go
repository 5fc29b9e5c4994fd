package handlers

import "net/http"

// HealthCheck serves the aggregated upstream health verdict. The overall
// status rides in the payload so a 503 body still says whether the service
// is degraded or unhealthy.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.checker.HealthCheck()
	if data == nil {
		data = map[string]any{}
	}
	data["status"] = status
	respondWithJSON(w, r, httpStatus, data)
}
