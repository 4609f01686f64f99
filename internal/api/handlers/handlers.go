package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/applicant-screening/internal/api/middleware"
	"github.com/dvloznov/applicant-screening/internal/domain"
	"github.com/dvloznov/applicant-screening/internal/jobs"
	"github.com/dvloznov/applicant-screening/internal/payments"
	"github.com/dvloznov/applicant-screening/internal/transfers"
)

// decodeBody decodes a JSON request body with UseNumber, so numeric literals
// reach the coercion layer exactly as written instead of as float64.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// TransfersHandler handles the transfer grouping endpoint.
type TransfersHandler struct {
	processor *transfers.Processor
	log       zerolog.Logger
}

// NewTransfersHandler creates a new transfers handler.
func NewTransfersHandler(processor *transfers.Processor, log zerolog.Logger) *TransfersHandler {
	return &TransfersHandler{
		processor: processor,
		log:       log,
	}
}

// GroupTransfers handles POST /api/transfers/group
func (h *TransfersHandler) GroupTransfers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Applicants []domain.ApplicantTransfers `json:"applicants"`
	}

	if err := decodeBody(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results := h.processor.ProcessApplicants(req.Applicants)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// PaymentsHandler handles the payment aggregation endpoint.
type PaymentsHandler struct {
	calculator *payments.Calculator
	log        zerolog.Logger
}

// NewPaymentsHandler creates a new payments handler.
func NewPaymentsHandler(calculator *payments.Calculator, log zerolog.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		calculator: calculator,
		log:        log,
	}
}

// AggregatePayments handles POST /api/payments/aggregate
func (h *PaymentsHandler) AggregatePayments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Applicants []domain.ApplicantPayments `json:"applicants"`
	}

	if err := decodeBody(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	totals := h.calculator.CalculatePayments(req.Applicants)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"totals": totals,
		"count":  len(totals),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// EnqueueBatch handles POST /api/jobs
func (h *JobsHandler) EnqueueBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type               jobs.JobType                `json:"type"`
		TransferApplicants []domain.ApplicantTransfers `json:"transfer_applicants"`
		PaymentApplicants  []domain.ApplicantPayments  `json:"payment_applicants"`
	}

	if err := decodeBody(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Type {
	case jobs.JobTypeGroupTransfers, jobs.JobTypeAggregatePayments:
	default:
		middleware.WriteError(w, http.StatusBadRequest, "type must be group_transfers or aggregate_payments")
		return
	}

	job := &jobs.BatchJob{
		Type:               req.Type,
		TransferApplicants: req.TransferApplicants,
		PaymentApplicants:  req.PaymentApplicants,
	}

	if err := h.publisher.PublishBatch(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue batch job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue batch job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("type", string(job.Type)).Msg("Batch job enqueued")

	// A worker may already be mutating the job; report the status it was
	// published with. The id and type are never written after publish.
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"type":   string(job.Type),
		"status": string(jobs.JobStatusPending),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Type:   jobs.JobType(query.Get("type")),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	if jobsList == nil {
		jobsList = []*jobs.BatchJob{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
