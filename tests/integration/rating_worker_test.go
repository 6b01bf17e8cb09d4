//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/local_directory/internal/config"
	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/database"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
	"github.com/Pesokrava/local_directory/internal/repository/postgres"
	"github.com/Pesokrava/local_directory/internal/worker"
)

func TestRatingWorker_EndToEnd(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.New(cfg.Env)

	db, err := database.WaitForDB(cfg, 5, 2*time.Second)
	require.NoError(t, err)
	defer db.Close()

	nc, err := nats.Connect(cfg.NATS.URL)
	require.NoError(t, err)
	defer nc.Close()

	calculator := worker.NewCalculator(db, log)
	ratingWorker := worker.NewRatingWorker(calculator, log)

	_, err = nc.Subscribe("reviews.events", func(msg *nats.Msg) {
		_ = ratingWorker.HandleEvent(msg.Data)
	})
	require.NoError(t, err)

	catalogRepo := postgres.NewCatalogRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)

	ctx := context.Background()

	owner := seedUser(t, db, "business_owner")
	cityID := seedCity(t, db)

	business := &domain.CatalogEntity{
		Slug:    "rating-worker-cafe-" + uuid.NewString()[:8],
		Name:    "Rating Worker Cafe",
		CityID:  cityID,
		OwnerID: owner,
		Status:  domain.StatusPublished,
	}
	err = catalogRepo.Create(ctx, domain.BusinessFamily, business)
	require.NoError(t, err)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = ratingWorker.Shutdown(shutdownCtx)
	}()

	// One review per user, so each rating needs its own reviewer
	ratings := []int{5, 4, 5, 3, 5} // 22/5 = 4.4
	for _, rating := range ratings {
		reviewer := seedUser(t, db, "user")
		review := &domain.Review{
			EntityType: domain.EntityTypeBusiness,
			EntityID:   business.ID,
			UserID:     reviewer,
			Rating:     rating,
			Content:    "Worker test review",
			Status:     domain.ReviewStatusPublished,
		}
		err = reviewRepo.Create(ctx, review)
		require.NoError(t, err)

		event := worker.ReviewEvent{
			EventType:  "review.created",
			Timestamp:  time.Now(),
			EntityType: domain.EntityTypeBusiness,
			EntityID:   business.ID,
			ReviewID:   review.ID,
		}
		eventData, _ := json.Marshal(event)
		err = nc.Publish("reviews.events", eventData)
		require.NoError(t, err)
	}

	// Debounce window + processing time
	time.Sleep(2 * time.Second)

	var averageRating float64
	var reviewCount int
	err = db.QueryRow(
		`SELECT average_rating, review_count FROM businesses WHERE id = $1`, business.ID,
	).Scan(&averageRating, &reviewCount)
	require.NoError(t, err)

	assert.InDelta(t, 4.4, averageRating, 0.01)
	assert.Equal(t, 5, reviewCount)
}

func TestRatingWorker_DebouncesBursts(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.New(cfg.Env)

	db, err := database.WaitForDB(cfg, 5, 2*time.Second)
	require.NoError(t, err)
	defer db.Close()

	nc, err := nats.Connect(cfg.NATS.URL)
	require.NoError(t, err)
	defer nc.Close()

	calculator := worker.NewCalculator(db, log)
	ratingWorker := worker.NewRatingWorker(calculator, log)

	_, err = nc.Subscribe("reviews.events", func(msg *nats.Msg) {
		_ = ratingWorker.HandleEvent(msg.Data)
	})
	require.NoError(t, err)

	catalogRepo := postgres.NewCatalogRepository(db)

	ctx := context.Background()

	owner := seedUser(t, db, "business_owner")
	cityID := seedCity(t, db)

	business := &domain.CatalogEntity{
		Slug:    "debounce-cafe-" + uuid.NewString()[:8],
		Name:    "Debounce Cafe",
		CityID:  cityID,
		OwnerID: owner,
		Status:  domain.StatusPublished,
	}
	err = catalogRepo.Create(ctx, domain.BusinessFamily, business)
	require.NoError(t, err)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = ratingWorker.Shutdown(shutdownCtx)
	}()

	// A burst of events for one entity collapses into a single pending update
	for i := 0; i < 20; i++ {
		event := worker.ReviewEvent{
			EventType:  "review.updated",
			Timestamp:  time.Now(),
			EntityType: domain.EntityTypeBusiness,
			EntityID:   business.ID,
			ReviewID:   uuid.New(),
		}
		eventData, _ := json.Marshal(event)
		err = nc.Publish("reviews.events", eventData)
		require.NoError(t, err)
	}

	time.Sleep(500 * time.Millisecond)
	assert.LessOrEqual(t, ratingWorker.GetPendingCount(), 2)

	time.Sleep(2 * time.Second)
	assert.Equal(t, 0, ratingWorker.GetPendingCount())
}
