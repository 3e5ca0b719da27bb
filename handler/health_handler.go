package handler

import (
	"net/http"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthCheck godoc
// @Summary      Liveness probe
// @Description  Reports that the token authority is accepting requests. Backing stores are not probed.
// @Tags         health
// @Produce      json
// @Success      200  {object}  handler.HealthResponse
// @Router       /health [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: "go-auth-api"})
}
