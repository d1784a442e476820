package public_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"safetyshare/internal/api/handlers/http/public"
	mock_public "safetyshare/internal/api/handlers/http/public/mocks"
	"safetyshare/internal/domain"
	"safetyshare/internal/middleware"
	"safetyshare/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	return out
}

// testRouter mounts the handler the way production does, identity middleware
// included, so URL params and context values resolve.
func testRouter(h *public.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/hazards/detect", h.Detect)
	r.Get("/hazards/nearby", h.Nearby)
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Identity)
		gr.Post("/hazards/report", h.Report)
		gr.Post("/hazards/{id}/validate", h.Validate)
	})
	r.Get("/hazards/{id}/validations", h.ValidationHistory)
	return r
}

func TestDetect_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	detection := mock_public.NewMockDetectionRunner(ctrl)
	h := public.NewHandler(newTestLogger(), detection, mock_public.NewMockHazardReporter(ctrl), mock_public.NewMockHazardValidator(ctrl))

	userID := uuid.NewString()
	wantReq := domain.DetectRequest{
		UserID:   userID,
		Location: domain.Coordinate{Lat: 12.9716, Lng: 77.5946},
		SpeedKmh: 40,
	}
	wantResp := domain.DetectResponse{
		Alerts: []domain.AlertRecord{{HazardID: uuid.New(), AlertLevel: domain.AlertUrgent}},
	}

	detection.EXPECT().
		Detect(gomock.Any(), wantReq).
		Return(wantResp, nil).
		Times(1)

	body := fmt.Sprintf(`{"user_id":%q,"location":{"lat":12.9716,"lng":77.5946},"speed_kmh":40}`, userID)
	req := httptest.NewRequest(http.MethodPost, "/hazards/detect", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	got := decodeJSON[domain.DetectResponse](t, rr)
	if len(got.Alerts) != 1 || got.Alerts[0].HazardID != wantResp.Alerts[0].HazardID {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestDetect_InvalidJSON_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), mock_public.NewMockHazardReporter(ctrl), mock_public.NewMockHazardValidator(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/hazards/detect", bytes.NewBufferString("{bad json"))
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDetect_BadUserID_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), mock_public.NewMockHazardReporter(ctrl), mock_public.NewMockHazardValidator(ctrl))

	body := `{"user_id":"not-a-uuid","location":{"lat":12.9716,"lng":77.5946}}`
	req := httptest.NewRequest(http.MethodPost, "/hazards/detect", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDetect_DependencyDown_503(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	detection := mock_public.NewMockDetectionRunner(ctrl)
	h := public.NewHandler(newTestLogger(), detection, mock_public.NewMockHazardReporter(ctrl), mock_public.NewMockHazardValidator(ctrl))

	detection.EXPECT().
		Detect(gomock.Any(), gomock.Any()).
		Return(domain.DetectResponse{}, e.ErrDependencyUnavailable).
		Times(1)

	body := fmt.Sprintf(`{"user_id":%q,"location":{"lat":12.9716,"lng":77.5946}}`, uuid.NewString())
	req := httptest.NewRequest(http.MethodPost, "/hazards/detect", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReport_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hazards := mock_public.NewMockHazardReporter(ctrl)
	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), hazards, mock_public.NewMockHazardValidator(ctrl))

	reporter := uuid.New()
	hazardID := uuid.New()

	hazards.EXPECT().
		Report(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req domain.ReportHazardRequest) (uuid.UUID, error) {
			if req.ReportedBy != reporter {
				t.Errorf("expected ReportedBy from header, got %s", req.ReportedBy)
			}
			return hazardID, nil
		}).
		Times(1)

	body := `{"type":"pothole","location":{"lat":12.9716,"lng":77.5946},"severity":"high"}`
	req := httptest.NewRequest(http.MethodPost, "/hazards/report", bytes.NewBufferString(body))
	req.Header.Set("X-User-ID", reporter.String())
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	got := decodeJSON[map[string]string](t, rr)
	if got["id"] != hazardID.String() {
		t.Fatalf("unexpected id: %v", got)
	}
}

func TestReport_MissingIdentity_401(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), mock_public.NewMockHazardReporter(ctrl), mock_public.NewMockHazardValidator(ctrl))

	body := `{"type":"pothole","location":{"lat":12.9716,"lng":77.5946}}`
	req := httptest.NewRequest(http.MethodPost, "/hazards/report", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReport_Duplicate_409(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hazards := mock_public.NewMockHazardReporter(ctrl)
	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), hazards, mock_public.NewMockHazardValidator(ctrl))

	hazards.EXPECT().
		Report(gomock.Any(), gomock.Any()).
		Return(uuid.Nil, e.ErrDuplicateHazard).
		Times(1)

	body := `{"type":"pothole","location":{"lat":12.9716,"lng":77.5946}}`
	req := httptest.NewRequest(http.MethodPost, "/hazards/report", bytes.NewBufferString(body))
	req.Header.Set("X-User-ID", uuid.NewString())
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestValidate_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"too_far", e.ErrTooFar, http.StatusBadRequest},
		{"not_authorized", e.ErrNotAuthorized, http.StatusForbidden},
		{"already_voted", e.ErrAlreadyVoted, http.StatusConflict},
		{"already_terminal", e.ErrAlreadyTerminal, http.StatusConflict},
		{"invalid_action", e.ErrInvalidAction, http.StatusBadRequest},
		{"not_found", e.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			validator := mock_public.NewMockHazardValidator(ctrl)
			h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), mock_public.NewMockHazardReporter(ctrl), validator)

			validator.EXPECT().
				Validate(gomock.Any(), gomock.Any()).
				Return(nil, tc.err).
				Times(1)

			body := `{"action":"confirm","location":{"lat":12.9716,"lng":77.5946}}`
			url := "/hazards/" + uuid.NewString() + "/validate"
			req := httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
			req.Header.Set("X-User-ID", uuid.NewString())
			rr := httptest.NewRecorder()

			testRouter(h).ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("expected %d got %d body=%s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestValidate_RoleFromHeader(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	validator := mock_public.NewMockHazardValidator(ctrl)
	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), mock_public.NewMockHazardReporter(ctrl), validator)

	hazardID := uuid.New()
	validator.EXPECT().
		Validate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req domain.ValidateRequest) (*domain.Hazard, error) {
			if req.Role != domain.RoleTrustedUser {
				t.Errorf("expected trusted_user role, got %s", req.Role)
			}
			if req.HazardID != hazardID {
				t.Errorf("expected hazard id from url, got %s", req.HazardID)
			}
			return &domain.Hazard{ID: hazardID, Status: domain.StatusActive}, nil
		}).
		Times(1)

	body := `{"action":"confirm","location":{"lat":12.9716,"lng":77.5946}}`
	req := httptest.NewRequest(http.MethodPost, "/hazards/"+hazardID.String()+"/validate", bytes.NewBufferString(body))
	req.Header.Set("X-User-ID", uuid.NewString())
	req.Header.Set("X-User-Role", "trusted_user")
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestNearby_MissingParams_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), mock_public.NewMockHazardReporter(ctrl), mock_public.NewMockHazardValidator(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/hazards/nearby", nil)
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestNearby_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hazards := mock_public.NewMockHazardReporter(ctrl)
	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), hazards, mock_public.NewMockHazardValidator(ctrl))

	hazards.EXPECT().
		Nearby(gomock.Any(), domain.NearbyRequest{
			Location: domain.Coordinate{Lat: 12.9716, Lng: 77.5946},
			RadiusKm: 2,
		}).
		Return([]domain.AnnotatedHazard{}, nil).
		Times(1)

	req := httptest.NewRequest(http.MethodGet, "/hazards/nearby?lat=12.9716&lng=77.5946&radius_km=2", nil)
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestValidationHistory_InvalidID_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := public.NewHandler(newTestLogger(), mock_public.NewMockDetectionRunner(ctrl), mock_public.NewMockHazardReporter(ctrl), mock_public.NewMockHazardValidator(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/hazards/not-a-uuid/validations", nil)
	rr := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rr.Code, rr.Body.String())
	}
}
