package statistics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/techsalle/inventory/models"
)

type MockStatisticsRepo struct {
	Stats models.Statistics
	Err   error
}

func (m *MockStatisticsRepo) GetStatistics(context.Context) (models.Statistics, error) {
	return m.Stats, m.Err
}

func TestHandleGet(t *testing.T) {
	testCases := []struct {
		name               string
		repo               *MockStatisticsRepo
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name: "Populated inventory",
			repo: &MockStatisticsRepo{Stats: models.Statistics{
				TotalProducts:   3,
				StockTotal:      42,
				PriceAverage:    decimal.NewNullDecimal(decimal.RequireFromString("183.3333333")),
				TotalCategories: 2,
			}},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `{"total_products":3,"stock_total":42,"price_average":183.33,"total_categories":2}`,
		},
		{
			name:               "Empty inventory has a null average",
			repo:               &MockStatisticsRepo{},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `{"total_products":0,"stock_total":0,"price_average":null,"total_categories":0}`,
		},
		{
			name:               "Repository error",
			repo:               &MockStatisticsRepo{Err: errors.New("timeout")},
			expectedStatusCode: http.StatusInternalServerError,
			expectedBody:       `{"error":"Failed to retrieve statistics"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			log := logrus.New()
			log.SetOutput(io.Discard)
			h := NewStatisticsHandler(tc.repo, log)
			rec := httptest.NewRecorder()

			h.HandleGet(rec, httptest.NewRequest("GET", "/statistics", nil))

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}
