package handlers

import (
	"net/http"

	"github.com/wonny/breakwatch/internal/scheduler"
)

// JobStatsSource reports scheduler statistics
type JobStatsSource interface {
	GetJobStats() map[string]scheduler.JobStats
}

// GetJobs returns per-job run statistics
// GET /api/jobs
func GetJobs(src JobStatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if src == nil {
			respondJSON(w, http.StatusOK, map[string]scheduler.JobStats{})
			return
		}
		respondJSON(w, http.StatusOK, src.GetJobStats())
	}
}
