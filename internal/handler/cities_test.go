package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aircatalog/internal/cache"
	"aircatalog/internal/models"
	"aircatalog/internal/paginate"
	"aircatalog/internal/service"
	"aircatalog/internal/sources"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	page    paginate.Page
	listErr error
	entry   *models.ReputationEntry
	removed bool
}

func (f *fakeCatalog) ListCities(_ context.Context, params service.ListParams) (paginate.Page, error) {
	if f.listErr != nil {
		return paginate.Page{}, f.listErr
	}
	if params.Page < 1 {
		return paginate.Page{}, paginate.ErrInvalidPage
	}
	return f.page, nil
}

func (f *fakeCatalog) FlagCity(cityName, countryCode string) (*models.ReputationEntry, error) {
	return f.entry, nil
}

func (f *fakeCatalog) ListFlagged(string, bool) ([]*models.ReputationEntry, error) {
	return nil, nil
}

func (f *fakeCatalog) UnflagCity(string, string) (bool, error) {
	return f.removed, nil
}

func (f *fakeCatalog) InvalidateCache(string) (int, error) { return 0, nil }

func (f *fakeCatalog) CacheStats() cache.Stats { return cache.Stats{} }

func newTestRouter(catalog service.CatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cityHandler := NewCityHandler(catalog, zap.NewNop())
	reputationHandler := NewReputationHandler(catalog, zap.NewNop())
	router.GET("/api/cities", cityHandler.ListCities)
	router.POST("/api/cities/report", reputationHandler.FlagCity)
	router.DELETE("/api/reports/:country/:city", reputationHandler.UnflagCity)
	return router
}

func TestListCities_OK(t *testing.T) {
	catalog := &fakeCatalog{page: paginate.Page{
		Items:      []models.CityRecord{{CanonicalName: "Warsaw", Country: "PL", PollutionValue: 52}},
		TotalCount: 45,
		Page:       1,
		PageSize:   9,
	}}
	router := newTestRouter(catalog)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cities?country=PL&page=1&limit=9", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	var body struct {
		TotalCount int `json:"total_count"`
		Items      []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.TotalCount != 45 || len(body.Items) != 1 || body.Items[0].Name != "Warsaw" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestListCities_MissingCountry(t *testing.T) {
	router := newTestRouter(&fakeCatalog{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cities", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
}

func TestListCities_InputErrorsMapTo400(t *testing.T) {
	cases := map[string]error{
		"unsupported country": service.ErrCountryNotSupported,
		"bad page":            paginate.ErrInvalidPage,
		"bad page size":       paginate.ErrInvalidPageSize,
	}
	for name, listErr := range cases {
		t.Run(name, func(t *testing.T) {
			router := newTestRouter(&fakeCatalog{listErr: listErr})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cities?country=PL", nil))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d; want 400", w.Code)
			}
		})
	}
}

func TestListCities_AllSourcesFailedMapsTo503(t *testing.T) {
	router := newTestRouter(&fakeCatalog{listErr: sources.ErrAllSourcesFailed})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cities?country=PL", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d; want 503", w.Code)
	}
}

func TestFlagCity_RequiresBody(t *testing.T) {
	router := newTestRouter(&fakeCatalog{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cities/report", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
}

func TestUnflagCity_NotFound(t *testing.T) {
	router := newTestRouter(&fakeCatalog{removed: false})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/reports/PL/Nowhere", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", w.Code)
	}
}
