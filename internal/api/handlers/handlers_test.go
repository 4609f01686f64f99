package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/applicant-screening/internal/domain"
	"github.com/dvloznov/applicant-screening/internal/jobs"
	"github.com/dvloznov/applicant-screening/internal/jobs/inmemory"
	"github.com/dvloznov/applicant-screening/internal/payments"
	"github.com/dvloznov/applicant-screening/internal/transfers"
)

func TestGroupTransfers(t *testing.T) {
	h := NewTransfersHandler(transfers.NewProcessor(zerolog.Nop()), zerolog.Nop())

	body := `{"applicants":[{"applicant_id":"a-1","transfers":[
		{"country":"USA","period":1,"amount":100,"source":"A"},
		{"country":"USA","period":1,"amount":50,"source":"B"},
		{"country":"GE","period":2,"amount":200,"source":"M"},
		{"country":"USA","period":2,"amount":75,"source":"A"},
		{"country":"GE","period":1,"amount":120,"source":"B"}
	]}]}`

	req := httptest.NewRequest(http.MethodPost, "/api/transfers/group", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.GroupTransfers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Results []domain.GroupedResult `json:"results"`
		Count   int                    `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %+v", resp)
	}

	grouped := resp.Results[0].GroupedTransfers
	if len(grouped) != 4 {
		t.Fatalf("expected 4 groups, got %+v", grouped)
	}
	first := grouped[0]
	if first.Country != "GE" || first.Period != 1 || first.Source != "B" {
		t.Errorf("first group = %+v, want GE period 1 source B", first)
	}
	third := grouped[2]
	if third.Country != "USA" || third.Period != 1 || third.Source != "A/B" {
		t.Errorf("third group = %+v, want USA period 1 source A/B", third)
	}
	if third.Amount.String() != "150" {
		t.Errorf("third group amount = %s, want 150", third.Amount)
	}
}

func TestGroupTransfers_InvalidBody(t *testing.T) {
	h := NewTransfersHandler(transfers.NewProcessor(zerolog.Nop()), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/transfers/group", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.GroupTransfers(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAggregatePayments(t *testing.T) {
	h := NewPaymentsHandler(payments.NewCalculator(zerolog.Nop()), zerolog.Nop())

	body := `{"applicants":[{"currency":"USD","payments":[
		{"active":true,"incomeshare":0.2,"amount":1000,"base":0.5},
		{"active":false,"incomeshare":0.5,"amount":500,"base":1}
	]}]}`

	req := httptest.NewRequest(http.MethodPost, "/api/payments/aggregate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.AggregatePayments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Totals domain.CurrencyTotals `json:"totals"`
		Count  int                   `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
	total, ok := resp.Totals["USD"]
	if !ok {
		t.Fatalf("expected USD total, got %+v", resp.Totals)
	}
	if total.String() != "400" {
		t.Errorf("USD total = %s, want 400", total)
	}
}

func TestAggregatePayments_EmptyApplicants(t *testing.T) {
	h := NewPaymentsHandler(payments.NewCalculator(zerolog.Nop()), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/payments/aggregate", strings.NewReader(`{"applicants":[]}`))
	rec := httptest.NewRecorder()
	h.AggregatePayments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"totals":{}`) {
		t.Errorf("body %s should contain an empty totals object", rec.Body.String())
	}
}

func TestEnqueueBatch_RejectsUnknownType(t *testing.T) {
	h := NewJobsHandler(inmemory.NewStore(), nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"type":"mystery"}`))
	rec := httptest.NewRecorder()
	h.EnqueueBatch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEnqueueBatch_ReportsPendingStatus(t *testing.T) {
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, 1, store)
	defer queue.Close()

	picked := make(chan string, 1)
	release := make(chan struct{})
	defer close(release)

	handler := func(ctx context.Context, job jobs.Job) error {
		picked <- job.GetID()
		<-release
		return nil
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("starting queue failed: %v", err)
	}

	h := NewJobsHandler(store, queue, zerolog.Nop())

	body := `{"type":"aggregate_payments","payment_applicants":[
		{"currency":"USD","payments":[{"amount":100,"base":1}]}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.EnqueueBatch(rec, req)

	// Wait until a worker owns the job; the recorded response must still
	// report the status the job was published with.
	select {
	case <-picked:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the job")
	}

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("expected a job ID")
	}
	if resp.Status != string(jobs.JobStatusPending) {
		t.Errorf("status = %q, want %q", resp.Status, jobs.JobStatusPending)
	}
}

func TestJobs_EnqueueProcessFetch(t *testing.T) {
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, 1, store)
	defer queue.Close()

	runner := jobs.NewRunner(zerolog.Nop(), 0)
	if err := queue.Start(context.Background(), runner.Handle); err != nil {
		t.Fatalf("starting queue failed: %v", err)
	}

	h := NewJobsHandler(store, queue, zerolog.Nop())

	body := `{"type":"group_transfers","transfer_applicants":[
		{"applicant_id":"a-1","transfers":[{"country":"ge","period":1,"amount":50,"source":"x"}]}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.EnqueueBatch(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if accepted.JobID == "" {
		t.Fatal("expected a job ID")
	}

	// Wait for the worker to finish the job.
	deadline := time.Now().Add(2 * time.Second)
	for {
		job, err := store.GetJob(context.Background(), accepted.JobID)
		if err == nil && job.Status == jobs.JobStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed (last: %+v, err: %v)", job, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	getRec := httptest.NewRecorder()
	getReq := httptest.NewRequest(http.MethodGet, "/api/jobs/"+accepted.JobID, nil)
	h.GetJob(getRec, getReq, accepted.JobID)

	if getRec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", getRec.Code, getRec.Body.String())
	}

	var fetched jobs.BatchJob
	if err := json.NewDecoder(getRec.Body).Decode(&fetched); err != nil {
		t.Fatalf("decoding job failed: %v", err)
	}
	if len(fetched.TransferResults) != 1 {
		t.Fatalf("expected 1 result on the job, got %+v", fetched.TransferResults)
	}
	grouped := fetched.TransferResults[0].GroupedTransfers
	if len(grouped) != 1 || grouped[0].Country != "GE" || grouped[0].Source != "X" {
		t.Errorf("grouped = %+v, want one GE group with source X", grouped)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	h := NewJobsHandler(inmemory.NewStore(), nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)
	h.GetJob(rec, req, "nope")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListJobs_Empty(t *testing.T) {
	h := NewJobsHandler(inmemory.NewStore(), nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	h.ListJobs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Errorf("body %s should report zero jobs", rec.Body.String())
	}
}
