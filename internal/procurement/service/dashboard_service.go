package service

import (
	"context"
	"math"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
)

// DashboardService computes summary figures over all purchases.
type DashboardService struct {
	repo *repository.PurchaseRepository
}

func NewDashboardService(repo *repository.PurchaseRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DashboardStats counts purchases by status. TotalAmount excludes denied
// purchases.
type DashboardStats struct {
	Total       int     `json:"total"`
	Approved    int     `json:"approved"`
	Pending     int     `json:"pending"`
	Denied      int     `json:"denied"`
	Completed   int     `json:"completed"`
	TotalAmount float64 `json:"totalAmount"`
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStats(all), nil
}

// ComputeStats builds the dashboard figures for a set of purchases.
func ComputeStats(purchases []entity.Purchase) *DashboardStats {
	st := &DashboardStats{Total: len(purchases)}
	for _, p := range purchases {
		switch p.Status {
		case entity.StatusApproved:
			st.Approved++
		case entity.StatusPending:
			st.Pending++
		case entity.StatusDenied:
			st.Denied++
		case entity.StatusCompleted:
			st.Completed++
		}
		if p.Status != entity.StatusDenied {
			st.TotalAmount += p.TotalAmount
		}
	}
	st.TotalAmount = roundTo2(st.TotalAmount)
	return st
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
