// Package handler exposes the optimizer as thin HTTP endpoints over the
// service layer.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

// RunSubmitter is the slice of service.RunService this handler needs.
type RunSubmitter interface {
	Submit(ctx context.Context, termID string, overrides optimizer.RunConfig) (string, error)
	Status(runID string) (*service.RunRecord, error)
}

// RunHandler exposes endpoints to submit an optimization run and poll its
// progress and result.
type RunHandler struct {
	runs RunSubmitter
	csv  *export.CSVExporter
}

// NewRunHandler constructs a RunHandler over svc.
func NewRunHandler(svc RunSubmitter) *RunHandler {
	return &RunHandler{runs: svc, csv: export.NewCSVExporter()}
}

// submitRequest is the wire shape POST /runs accepts: which term to build a
// snapshot for, plus optional tuning overrides applied over the server's
// configured defaults.
type submitRequest struct {
	TermID           string  `json:"term_id" binding:"required"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	Elitism          int     `json:"elitism"`
	EarlyStopFitness float64 `json:"early_stop_fitness"`
	MutationBase     float64 `json:"mutation_base"`
	MutationGrowth   float64 `json:"mutation_growth"`
	RNGSeed          int64   `json:"rng_seed"`
}

// Submit handles POST /runs: it queues a new optimization run for a term and
// returns its run ID immediately; the caller polls Status for completion.
func (h *RunHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	overrides := optimizer.RunConfig{
		PopulationSize:   req.PopulationSize,
		Generations:      req.Generations,
		Elitism:          req.Elitism,
		EarlyStopFitness: req.EarlyStopFitness,
		MutationBase:     req.MutationBase,
		MutationGrowth:   req.MutationGrowth,
		RNGSeed:          req.RNGSeed,
	}

	runID, err := h.runs.Submit(c.Request.Context(), req.TermID, overrides)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit run"))
		return
	}

	response.Created(c, gin.H{"run_id": runID, "status": service.RunPending})
}

// Status handles GET /runs/:id: it reports a run's lifecycle state and, once
// done, its terminal optimizer.RunResult.
func (h *RunHandler) Status(c *gin.Context) {
	record, err := h.runs.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{
		"run_id":     record.RunID,
		"term_id":    record.TermID,
		"state":      record.State,
		"queued_at":  record.QueuedAt,
		"updated_at": record.UpdatedAt,
	}
	if record.Result != nil {
		payload["result"] = record.Result
	}
	response.JSON(c, http.StatusOK, payload)
}

// ScheduleCSV handles GET /runs/:id/sections/:sectionId: it renders one
// section's resolved weekly grid from a completed run as CSV.
func (h *RunHandler) ScheduleCSV(c *gin.Context) {
	record, err := h.runs.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if record.Result != nil && record.Result.Status == optimizer.StatusFailed {
		failure := record.Result.Failure
		response.Error(c, appErrors.NewKind(appErrors.Kind(failure.Kind), failure.Message))
		return
	}
	if record.Schedule == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "run has no resolved schedule yet"))
		return
	}

	sectionID, ok := parseIntParam(c, "sectionId")
	if !ok {
		return
	}

	body, err := record.Schedule.ToCSV(h.csv, sectionID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule csv"))
		return
	}

	c.Data(http.StatusOK, "text/csv", body)
}
