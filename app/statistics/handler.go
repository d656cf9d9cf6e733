package statistics

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/techsalle/inventory/app/respond"
	"github.com/techsalle/inventory/models"
)

// Response is the aggregate view returned by GET /statistics.
// PriceAverage is null when there are no products.
type Response struct {
	TotalProducts   int64    `json:"total_products"`
	StockTotal      int64    `json:"stock_total"`
	PriceAverage    *float64 `json:"price_average"`
	TotalCategories int64    `json:"total_categories"`
}

type StatisticsProvider interface {
	GetStatistics(ctx context.Context) (models.Statistics, error)
}

type StatisticsHandler struct {
	repo StatisticsProvider
	log  logrus.FieldLogger
}

func NewStatisticsHandler(r StatisticsProvider, log logrus.FieldLogger) *StatisticsHandler {
	return &StatisticsHandler{repo: r, log: log}
}

func (h *StatisticsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStatistics(r.Context())
	if err != nil {
		respond.Internal(w, r, h.log, "Failed to retrieve statistics", err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(stats))
}

func toResponse(s models.Statistics) Response {
	resp := Response{
		TotalProducts:   s.TotalProducts,
		StockTotal:      s.StockTotal,
		TotalCategories: s.TotalCategories,
	}
	if s.PriceAverage.Valid {
		avg := s.PriceAverage.Decimal.Round(2).InexactFloat64()
		resp.PriceAverage = &avg
	}
	return resp
}
