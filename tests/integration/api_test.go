//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/local_directory/internal/config"
	"github.com/Pesokrava/local_directory/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/local_directory/internal/delivery/http"
	"github.com/Pesokrava/local_directory/internal/delivery/http/handler"
	"github.com/Pesokrava/local_directory/internal/pkg/cache"
	"github.com/Pesokrava/local_directory/internal/pkg/database"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/local_directory/internal/repository/cache"
	"github.com/Pesokrava/local_directory/internal/repository/postgres"
	"github.com/Pesokrava/local_directory/internal/usecase/catalog"
	"github.com/Pesokrava/local_directory/internal/usecase/identity"
	"github.com/Pesokrava/local_directory/internal/usecase/review"
)

func setupTestServer(t *testing.T) (http.Handler, *sqlx.DB) {
	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.New(cfg.Env)

	db, err := database.WaitForDB(cfg, 5, 2*time.Second)
	require.NoError(t, err)

	redisClient, err := cache.WaitForRedis(cfg, 5, 2*time.Second)
	require.NoError(t, err)

	publisher, err := events.NewPublisher(cfg, log)
	require.NoError(t, err)

	catalogRepo := postgres.NewCatalogRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.ReviewsListTTL)

	identityService := identity.NewService(userRepo, catalogRepo, log)
	reviewService := review.NewService(reviewRepo, catalogRepo, identityService, redisCache, publisher, log)
	catalogService := catalog.NewService(
		catalogRepo,
		locationRepo,
		userRepo,
		reviewRepo,
		identityService,
		cfg.Catalog.PageSize,
		log,
	)

	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	reviewHandler := handler.NewReviewHandler(reviewService, log)

	router := httpDelivery.NewRouter(catalogHandler, reviewHandler, cfg, log)
	return router.Setup(), db
}

func seedUser(t *testing.T, db *sqlx.DB, role string) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO users (id, email, display_name, role) VALUES ($1, $2, $3, $4)`,
		id, fmt.Sprintf("%s@example.com", id), "Test User", role,
	)
	require.NoError(t, err)
	return id
}

func seedCity(t *testing.T, db *sqlx.DB) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO cities (id, name) VALUES ($1, $2)`,
		id, "Test City "+id.String()[:8],
	)
	require.NoError(t, err)
	return id
}

func doJSON(server http.Handler, method, path string, userID *uuid.UUID, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("X-User-ID", userID.String())
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestReviewLifecycle(t *testing.T) {
	server, db := setupTestServer(t)
	defer db.Close()

	owner := seedUser(t, db, "user")
	reviewer := seedUser(t, db, "user")
	admin := seedUser(t, db, "admin")
	cityID := seedCity(t, db)

	// Owner creates a business listing; it starts pending
	w := doJSON(server, http.MethodPost, "/api/v1/businesses", &owner, map[string]any{
		"name":    "Lifecycle Cafe",
		"city_id": cityID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID     uuid.UUID `json:"id"`
			Slug   string    `json:"slug"`
			Status string    `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Data.Status)
	businessID := created.Data.ID

	// First business listing promotes the creator
	var role string
	require.NoError(t, db.Get(&role, `SELECT role FROM users WHERE id = $1`, owner))
	assert.Equal(t, "business_owner", role)

	// Admin publishes the listing
	w = doJSON(server, http.MethodPatch, "/api/v1/businesses/"+businessID.String()+"/status", &admin,
		map[string]string{"status": "published"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Reviewer submits a review
	reviewPath := "/api/v1/businesses/" + businessID.String() + "/reviews"
	w = doJSON(server, http.MethodPost, reviewPath, &reviewer, map[string]any{
		"rating":  5,
		"content": "Excellent coffee",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var submitted struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	reviewID := submitted.Data.ID

	// A second review by the same user conflicts
	w = doJSON(server, http.MethodPost, reviewPath, &reviewer, map[string]any{
		"rating":  4,
		"content": "Trying again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Two edits succeed, the third hits the limit
	editPath := "/api/v1/reviews/" + reviewID.String()
	for i := 0; i < 2; i++ {
		w = doJSON(server, http.MethodPut, editPath, &reviewer, map[string]any{
			"rating":  4,
			"content": fmt.Sprintf("Edited %d", i+1),
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = doJSON(server, http.MethodPut, editPath, &reviewer, map[string]any{
		"rating":  3,
		"content": "One too many",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Owner replies once; a second reply conflicts
	replyPath := editPath + "/reply"
	w = doJSON(server, http.MethodPost, replyPath, &owner, map[string]string{"content": "Thank you!"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(server, http.MethodPost, replyPath, &owner, map[string]string{"content": "Again?"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The rating summary reflects the edited review
	w = doJSON(server, http.MethodGet, "/api/v1/businesses/"+businessID.String()+"/rating", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Data struct {
			TotalReviews  int     `json:"total_reviews"`
			AverageRating float64 `json:"average_rating"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Data.TotalReviews)
	assert.Equal(t, 4.0, summary.Data.AverageRating)

	// Soft delete frees the slot for a fresh review
	w = doJSON(server, http.MethodDelete, editPath, &reviewer, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(server, http.MethodPost, reviewPath, &reviewer, map[string]any{
		"rating":  2,
		"content": "Second visit was worse",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCatalogBrowse(t *testing.T) {
	server, db := setupTestServer(t)
	defer db.Close()

	w := doJSON(server, http.MethodGet, "/api/v1/businesses?page=1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Data struct {
			Page     int `json:"page"`
			PageSize int `json:"page_size"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Data.Page)
	assert.Equal(t, 12, page.Data.PageSize)

	// Unknown category slug browses to an empty page, not an error
	w = doJSON(server, http.MethodGet, "/api/v1/tourism-places?category=no-such-category", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	server, db := setupTestServer(t)
	defer db.Close()

	w := doJSON(server, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
