package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type runServiceMock struct {
	capturedTerm      string
	capturedOverrides optimizer.RunConfig
	submitID          string
	submitErr         error
	record            *service.RunRecord
	statusErr         error
}

func (m *runServiceMock) Submit(ctx context.Context, termID string, overrides optimizer.RunConfig) (string, error) {
	m.capturedTerm = termID
	m.capturedOverrides = overrides
	return m.submitID, m.submitErr
}

func (m *runServiceMock) Status(runID string) (*service.RunRecord, error) {
	return m.record, m.statusErr
}

func newTestContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestRunHandlerSubmitSuccess(t *testing.T) {
	mockSvc := &runServiceMock{submitID: "run-1"}
	h := NewRunHandler(mockSvc)

	payload := []byte(`{"term_id":"2026-odd","population_size":20,"rng_seed":7}`)
	c, w := newTestContext(t, http.MethodPost, "/runs", payload)

	h.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "2026-odd", mockSvc.capturedTerm)
	require.Equal(t, 20, mockSvc.capturedOverrides.PopulationSize)
	require.Equal(t, int64(7), mockSvc.capturedOverrides.RNGSeed)
	require.Contains(t, w.Body.String(), "run-1")
}

func TestRunHandlerSubmitRequiresTermID(t *testing.T) {
	h := NewRunHandler(&runServiceMock{})
	c, w := newTestContext(t, http.MethodPost, "/runs", []byte(`{"population_size":5}`))

	h.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunHandlerStatusNotFound(t *testing.T) {
	mockSvc := &runServiceMock{statusErr: appErrors.Clone(appErrors.ErrNotFound, "run not found")}
	h := NewRunHandler(mockSvc)
	c, w := newTestContext(t, http.MethodGet, "/runs/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Status(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunHandlerScheduleCSVMapsFailureKind(t *testing.T) {
	mockSvc := &runServiceMock{record: &service.RunRecord{
		RunID: "run-2",
		State: service.RunDone,
		Result: &optimizer.RunResult{
			Status:  optimizer.StatusFailed,
			Failure: &optimizer.FailureInfo{Kind: optimizer.InfeasibleSeed, Message: "no genes placed"},
		},
	}}
	h := NewRunHandler(mockSvc)
	c, w := newTestContext(t, http.MethodGet, "/runs/run-2/sections/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "run-2"}, {Key: "sectionId", Value: "1"}}

	h.ScheduleCSV(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "infeasible_seed")
}

func TestRunHandlerScheduleCSVBeforeCompletion(t *testing.T) {
	mockSvc := &runServiceMock{record: &service.RunRecord{RunID: "run-3", State: service.RunRunning}}
	h := NewRunHandler(mockSvc)
	c, w := newTestContext(t, http.MethodGet, "/runs/run-3/sections/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "run-3"}, {Key: "sectionId", Value: "1"}}

	h.ScheduleCSV(c)

	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}
