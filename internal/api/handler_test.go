package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/crmstream/crm-sync/internal/errors"
	"github.com/crmstream/crm-sync/internal/models"
)

type mockSyncService struct {
	mock.Mock
}

func (m *mockSyncService) TriggerSync() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockSyncService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *mockSyncService) GetSyncStatus(ctx context.Context, accountID string) (*models.SyncStatus, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncStatus), args.Error(1)
}

func (m *mockSyncService) ListSyncStatuses(ctx context.Context) ([]*models.SyncStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SyncStatus), args.Error(1)
}

func setupTestRouter(service SyncService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return SetupRouter(NewHandler(service, logger))
}

func TestListAccounts(t *testing.T) {
	service := new(mockSyncService)
	service.On("ListAccounts", mock.Anything).Return([]*models.Account{
		{ID: "acc-1"},
		{ID: "acc-2"},
	}, nil)

	router := setupTestRouter(service)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var accounts []*models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accounts))
	assert.Len(t, accounts, 2)
	service.AssertExpectations(t)
}

func TestTriggerSync(t *testing.T) {
	service := new(mockSyncService)
	service.On("TriggerSync").Return(nil)

	router := setupTestRouter(service)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status": "sync started"}`, w.Body.String())
	service.AssertExpectations(t)
}

func TestTriggerSyncAlreadyRunning(t *testing.T) {
	service := new(mockSyncService)
	service.On("TriggerSync").Return(apperrors.NewSyncInProgressError())

	router := setupTestRouter(service)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	service.AssertExpectations(t)
}

func TestGetSyncStatus(t *testing.T) {
	service := new(mockSyncService)
	service.On("GetSyncStatus", mock.Anything, "acc-1").Return(&models.SyncStatus{
		AccountID:      "acc-1",
		Status:         "completed",
		ActionsEmitted: 150,
	}, nil)

	router := setupTestRouter(service)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sync/acc-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SyncStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "acc-1", status.AccountID)
	assert.Equal(t, 150, status.ActionsEmitted)
	service.AssertExpectations(t)
}

func TestGetSyncStatusNotFound(t *testing.T) {
	service := new(mockSyncService)
	service.On("GetSyncStatus", mock.Anything, "missing").
		Return(nil, apperrors.NewNotFoundError("sync status not found for account: missing", nil))

	router := setupTestRouter(service)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sync/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	service.AssertExpectations(t)
}

func TestListSyncStatuses(t *testing.T) {
	service := new(mockSyncService)
	service.On("ListSyncStatuses", mock.Anything).Return([]*models.SyncStatus{
		{AccountID: "acc-1", Status: "completed"},
	}, nil)

	router := setupTestRouter(service)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sync", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}
