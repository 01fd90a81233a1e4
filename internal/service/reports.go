package service

import (
	"context"
	"strings"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// Reports serves the admin dashboard and history views.
type Reports struct {
	reports      *repository.ReportRepo
	reservations *repository.ReservationRepo
	users        *repository.UserRepo
}

// NewReports wires a Reports service.
func NewReports(reports *repository.ReportRepo, reservations *repository.ReservationRepo, users *repository.UserRepo) *Reports {
	return &Reports{reports: reports, reservations: reservations, users: users}
}

// ParkingHistory is the admin reservation log with its summary.
type ParkingHistory struct {
	Filter       string                        `json:"filter"`
	Reservations []model.ReservationDetail     `json:"reservations"`
	Summary      repository.ReservationSummary `json:"summary"`
}

// Overview returns system-wide counters.
func (s *Reports) Overview(ctx context.Context) (repository.Overview, error) {
	return s.reports.Overview(ctx)
}

// History lists reservations filtered by status: "all" (or empty),
// "active" or "completed", case-insensitive.
func (s *Reports) History(ctx context.Context, filter string) (*ParkingHistory, error) {
	var status string
	switch strings.ToUpper(strings.TrimSpace(filter)) {
	case "", "ALL":
		filter = "all"
	case model.ReservationActive:
		status, filter = model.ReservationActive, "active"
	case model.ReservationCompleted:
		status, filter = model.ReservationCompleted, "completed"
	default:
		return nil, validationError("unknown status filter %q", filter)
	}
	rows, err := s.reservations.ListAll(ctx, status)
	if err != nil {
		return nil, err
	}
	summary, err := s.reports.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &ParkingHistory{Filter: filter, Reservations: rows, Summary: summary}, nil
}

// Users lists registered drivers.
func (s *Reports) Users(ctx context.Context) ([]model.User, error) {
	return s.users.ListByRole(ctx, model.RoleUser)
}
