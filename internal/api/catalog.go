package api

import (
	"net/http"

	"github.com/featherlab/rankline/internal/filter"
	"github.com/featherlab/rankline/internal/sample"
	"github.com/featherlab/rankline/internal/scorer"
	"github.com/featherlab/rankline/internal/scoring"
)

func getScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sample.Scenarios)
}

func getFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, filter.Registry)
}

func getScorers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scorer.Registry)
}

func getDefaultWeights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scoring.DefaultWeights())
}
