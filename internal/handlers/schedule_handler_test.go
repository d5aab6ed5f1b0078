package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
	"github.com/mina-rz/YogaStudioBack/internal/services"
)

type stubScheduleService struct {
	listResult         []models.SessionDetail
	listTotal          int
	listErr            error
	getResult          *models.SessionDetail
	getErr             error
	availabilityResult *models.Availability
	availabilityErr    error
	classTypes         []models.ClassType
	instructors        []models.Instructor
	lastFilter         repository.SessionListFilter
	lastSessionID      int64
}

func (s *stubScheduleService) ListSessions(
	_ context.Context,
	filter repository.SessionListFilter,
	offset, limit int,
) ([]models.SessionDetail, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubScheduleService) GetSession(_ context.Context, sessionID int64) (*models.SessionDetail, error) {
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubScheduleService) GetAvailability(_ context.Context, sessionID int64) (*models.Availability, error) {
	s.lastSessionID = sessionID
	return s.availabilityResult, s.availabilityErr
}

func (s *stubScheduleService) ListClassTypes(_ context.Context) ([]models.ClassType, error) {
	return s.classTypes, nil
}

func (s *stubScheduleService) ListInstructors(_ context.Context) ([]models.Instructor, error) {
	return s.instructors, nil
}

func newScheduleTestApp(service scheduleApplicationService) *fiber.App {
	handler := &ScheduleHandler{service: service}

	app := fiber.New()
	app.Get("/api/v1/schedule/sessions", handler.ListSessions)
	app.Get("/api/v1/schedule/sessions/:id", handler.GetSession)
	app.Get("/api/v1/schedule/sessions/:id/availability", handler.GetAvailability)
	app.Get("/api/v1/schedule/class-types", handler.ListClassTypes)
	app.Get("/api/v1/schedule/instructors", handler.ListInstructors)
	return app
}

func TestGetAvailabilityReportsRemainingSpots(t *testing.T) {
	service := &stubScheduleService{
		availabilityResult: &models.Availability{
			Capacity:       12,
			BookedCount:    10,
			RemainingSpots: 2,
		},
	}
	app := newScheduleTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/sessions/9/availability", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 9 {
		t.Fatalf("expected session id 9, got %d", service.lastSessionID)
	}

	var payload struct {
		Availability models.Availability `json:"availability"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Availability.RemainingSpots != 2 || payload.Availability.IsFull {
		t.Fatalf("unexpected availability: %+v", payload.Availability)
	}
}

func TestGetAvailabilityUnknownSession(t *testing.T) {
	service := &stubScheduleService{availabilityErr: services.ErrSessionNotFound}
	app := newScheduleTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/sessions/999/availability", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListSessionsRejectsUnknownTimeframe(t *testing.T) {
	service := &stubScheduleService{}
	app := newScheduleTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/sessions?timeframe=yesterday", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListSessionsForwardsFilters(t *testing.T) {
	service := &stubScheduleService{
		listResult: []models.SessionDetail{
			{
				ClassSession:   models.ClassSession{ID: 9, ClassTypeID: 2, InstructorID: 3, Capacity: 12},
				ClassTypeName:  "Vinyasa Flow",
				InstructorName: "Maya",
				Availability:   &models.Availability{Capacity: 12, RemainingSpots: 12},
			},
		},
		listTotal: 1,
	}
	app := newScheduleTestApp(service)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/schedule/sessions?timeframe=upcoming&class_type_id=2&instructor_id=3", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.Timeframe != "upcoming" ||
		service.lastFilter.ClassTypeID != 2 ||
		service.lastFilter.InstructorID != 3 {
		t.Fatalf("unexpected filter forwarding: %+v", service.lastFilter)
	}

	var payload struct {
		Sessions []map[string]any `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(payload.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(payload.Sessions))
	}
}
