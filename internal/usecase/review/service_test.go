package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
)

// MockReviewRepository is a mock implementation of domain.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) HasActiveReview(ctx context.Context, entity domain.EntityType, entityID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, entity, entityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) ListByEntity(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	args := m.Called(ctx, entity, entityID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) CountByEntity(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) (int, error) {
	args := m.Called(ctx, entity, entityID)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) RatingsByEntity(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) ([]int, error) {
	args := m.Called(ctx, entity, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockReviewRepository) RatingsByEntities(ctx context.Context, entity domain.EntityType, entityIDs []uuid.UUID) (map[uuid.UUID][]int, error) {
	args := m.Called(ctx, entity, entityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]int), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) CreateReply(ctx context.Context, reply *domain.ReviewReply) error {
	args := m.Called(ctx, reply)
	return args.Error(0)
}

func (m *MockReviewRepository) ReplyExists(ctx context.Context, reviewID uuid.UUID) (bool, error) {
	args := m.Called(ctx, reviewID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) RepliesByReviewIDs(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID]*domain.ReviewReply, error) {
	args := m.Called(ctx, reviewIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.ReviewReply), args.Error(1)
}

// MockCatalogRepository is a mock implementation of domain.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) List(ctx context.Context, family domain.Family, filter domain.CatalogFilter) ([]*domain.CatalogEntity, error) {
	args := m.Called(ctx, family, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CatalogEntity), args.Error(1)
}

func (m *MockCatalogRepository) GetByID(ctx context.Context, family domain.Family, id uuid.UUID) (*domain.CatalogEntity, error) {
	args := m.Called(ctx, family, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogEntity), args.Error(1)
}

func (m *MockCatalogRepository) GetBySlug(ctx context.Context, family domain.Family, slug string) (*domain.CatalogEntity, error) {
	args := m.Called(ctx, family, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogEntity), args.Error(1)
}

func (m *MockCatalogRepository) Create(ctx context.Context, family domain.Family, entity *domain.CatalogEntity) error {
	args := m.Called(ctx, family, entity)
	return args.Error(0)
}

func (m *MockCatalogRepository) UpdateStatus(ctx context.Context, family domain.Family, id uuid.UUID, status string, publishedAt *time.Time) error {
	args := m.Called(ctx, family, id, status, publishedAt)
	return args.Error(0)
}

func (m *MockCatalogRepository) SlugExists(ctx context.Context, family domain.Family, slug string) (bool, error) {
	args := m.Called(ctx, family, slug)
	return args.Bool(0), args.Error(1)
}

// MockOwnership is a mock implementation of OwnershipResolver
type MockOwnership struct {
	mock.Mock
}

func (m *MockOwnership) IsOwner(ctx context.Context, entity domain.EntityType, entityID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, entity, entityID, userID)
	return args.Bool(0), args.Error(1)
}

// MockReviewCache is a mock implementation of ReviewCache
type MockReviewCache struct {
	mock.Mock
}

func (m *MockReviewCache) GetEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	args := m.Called(ctx, entity, entityID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockReviewCache) SetEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int, reviews []*domain.Review) error {
	args := m.Called(ctx, entity, entityID, limit, offset, reviews)
	return args.Error(0)
}

func (m *MockReviewCache) InvalidateEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) error {
	args := m.Called(ctx, entity, entityID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type fixture struct {
	repo      *MockReviewRepository
	catalog   *MockCatalogRepository
	ownership *MockOwnership
	cache     *MockReviewCache
	publisher *MockEventPublisher
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockReviewRepository),
		catalog:   new(MockCatalogRepository),
		ownership: new(MockOwnership),
		cache:     new(MockReviewCache),
		publisher: new(MockEventPublisher),
	}
	f.service = NewService(f.repo, f.catalog, f.ownership, f.cache, f.publisher, logger.New("test"))
	f.publisher.On("Publish", mock.Anything, "reviews.events", mock.Anything).Return(nil).Maybe()
	return f
}

func validInput() ReviewInput {
	title := "Great spot"
	return ReviewInput{
		Rating:  5,
		Title:   &title,
		Content: "Would visit again.",
	}
}

func TestService_Submit_Success(t *testing.T) {
	f := newFixture()

	entityID := uuid.New()
	userID := uuid.New()

	f.catalog.On("GetByID", mock.Anything, domain.BusinessFamily, entityID).
		Return(&domain.CatalogEntity{ID: entityID}, nil)
	f.repo.On("HasActiveReview", mock.Anything, domain.EntityTypeBusiness, entityID, userID).
		Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)
	f.cache.On("InvalidateEntityReviews", mock.Anything, domain.EntityTypeBusiness, entityID).Return(nil)

	review, err := f.service.Submit(context.Background(), domain.EntityTypeBusiness, entityID, userID, validInput())

	assert.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, domain.ReviewStatusPublished, review.Status)
	assert.Equal(t, 0, review.EditCount)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestService_Submit_InvalidRating(t *testing.T) {
	f := newFixture()

	input := validInput()
	input.Rating = 6

	_, err := f.service.Submit(context.Background(), domain.EntityTypeBusiness, uuid.New(), uuid.New(), input)

	assert.Equal(t, domain.ErrInvalidInput, err)
	f.repo.AssertNotCalled(t, "Create")
}

func TestService_Submit_UnknownEntityType(t *testing.T) {
	f := newFixture()

	_, err := f.service.Submit(context.Background(), domain.EntityType("hotel"), uuid.New(), uuid.New(), validInput())

	assert.Equal(t, domain.ErrInvalidInput, err)
}

func TestService_Submit_EntityNotFound(t *testing.T) {
	f := newFixture()

	entityID := uuid.New()
	f.catalog.On("GetByID", mock.Anything, domain.TourismFamily, entityID).
		Return(nil, domain.ErrNotFound)

	_, err := f.service.Submit(context.Background(), domain.EntityTypeTourismPlace, entityID, uuid.New(), validInput())

	assert.Equal(t, domain.ErrNotFound, err)
	f.repo.AssertNotCalled(t, "Create")
}

func TestService_Submit_Duplicate(t *testing.T) {
	f := newFixture()

	entityID := uuid.New()
	userID := uuid.New()

	f.catalog.On("GetByID", mock.Anything, domain.BusinessFamily, entityID).
		Return(&domain.CatalogEntity{ID: entityID}, nil)
	f.repo.On("HasActiveReview", mock.Anything, domain.EntityTypeBusiness, entityID, userID).
		Return(true, nil)

	_, err := f.service.Submit(context.Background(), domain.EntityTypeBusiness, entityID, userID, validInput())

	assert.Equal(t, domain.ErrDuplicateReview, err)
	f.repo.AssertNotCalled(t, "Create")
}

func TestService_Submit_DuplicateRace(t *testing.T) {
	f := newFixture()

	entityID := uuid.New()
	userID := uuid.New()

	// Pre-check passes but the unique index catches the concurrent insert
	f.catalog.On("GetByID", mock.Anything, domain.BusinessFamily, entityID).
		Return(&domain.CatalogEntity{ID: entityID}, nil)
	f.repo.On("HasActiveReview", mock.Anything, domain.EntityTypeBusiness, entityID, userID).
		Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).
		Return(domain.ErrDuplicateReview)

	_, err := f.service.Submit(context.Background(), domain.EntityTypeBusiness, entityID, userID, validInput())

	assert.Equal(t, domain.ErrDuplicateReview, err)
	f.cache.AssertNotCalled(t, "InvalidateEntityReviews")
}

func TestService_Edit_Success(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	userID := uuid.New()
	entityID := uuid.New()

	existing := &domain.Review{
		ID:         reviewID,
		EntityType: domain.EntityTypeBusiness,
		EntityID:   entityID,
		UserID:     userID,
		Rating:     3,
		Content:    "Okay",
		EditCount:  1,
	}

	f.repo.On("GetByID", mock.Anything, reviewID).Return(existing, nil)
	f.repo.On("Update", mock.Anything, existing).Return(nil)
	f.cache.On("InvalidateEntityReviews", mock.Anything, domain.EntityTypeBusiness, entityID).Return(nil)

	updated, err := f.service.Edit(context.Background(), reviewID, userID, validInput())

	assert.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, 2, updated.EditCount)
	f.repo.AssertExpectations(t)
}

func TestService_Edit_NotAuthor(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	existing := &domain.Review{
		ID:      reviewID,
		UserID:  uuid.New(),
		Rating:  3,
		Content: "Okay",
	}

	f.repo.On("GetByID", mock.Anything, reviewID).Return(existing, nil)

	_, err := f.service.Edit(context.Background(), reviewID, uuid.New(), validInput())

	assert.Equal(t, domain.ErrForbidden, err)
	f.repo.AssertNotCalled(t, "Update")
}

func TestService_Edit_LimitReached(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	userID := uuid.New()
	existing := &domain.Review{
		ID:        reviewID,
		UserID:    userID,
		Rating:    3,
		Content:   "Okay",
		EditCount: domain.MaxReviewEdits,
	}

	f.repo.On("GetByID", mock.Anything, reviewID).Return(existing, nil)

	_, err := f.service.Edit(context.Background(), reviewID, userID, validInput())

	assert.Equal(t, domain.ErrEditLimitReached, err)
	f.repo.AssertNotCalled(t, "Update")
}

func TestService_SoftDelete_Success(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	userID := uuid.New()
	entityID := uuid.New()

	existing := &domain.Review{
		ID:         reviewID,
		EntityType: domain.EntityTypeTourismPlace,
		EntityID:   entityID,
		UserID:     userID,
	}

	f.repo.On("GetByID", mock.Anything, reviewID).Return(existing, nil)
	f.repo.On("SoftDelete", mock.Anything, reviewID).Return(nil)
	f.cache.On("InvalidateEntityReviews", mock.Anything, domain.EntityTypeTourismPlace, entityID).Return(nil)

	err := f.service.SoftDelete(context.Background(), reviewID, userID)

	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestService_SoftDelete_NotAuthor(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	existing := &domain.Review{ID: reviewID, UserID: uuid.New()}

	f.repo.On("GetByID", mock.Anything, reviewID).Return(existing, nil)

	err := f.service.SoftDelete(context.Background(), reviewID, uuid.New())

	assert.Equal(t, domain.ErrForbidden, err)
	f.repo.AssertNotCalled(t, "SoftDelete")
}

func TestService_Reply_Success(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	ownerID := uuid.New()
	entityID := uuid.New()

	review := &domain.Review{
		ID:         reviewID,
		EntityType: domain.EntityTypeBusiness,
		EntityID:   entityID,
		UserID:     uuid.New(),
	}

	f.repo.On("GetByID", mock.Anything, reviewID).Return(review, nil)
	f.ownership.On("IsOwner", mock.Anything, domain.EntityTypeBusiness, entityID, ownerID).Return(true, nil)
	f.repo.On("ReplyExists", mock.Anything, reviewID).Return(false, nil)
	f.repo.On("CreateReply", mock.Anything, mock.AnythingOfType("*domain.ReviewReply")).Return(nil)
	f.cache.On("InvalidateEntityReviews", mock.Anything, domain.EntityTypeBusiness, entityID).Return(nil)

	reply, err := f.service.Reply(context.Background(), reviewID, ownerID, "Thanks for visiting!")

	assert.NoError(t, err)
	assert.Equal(t, reviewID, reply.ReviewID)
	assert.Equal(t, ownerID, reply.UserID)
	f.repo.AssertExpectations(t)
	f.ownership.AssertExpectations(t)
}

func TestService_Reply_NotOwner(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	entityID := uuid.New()
	userID := uuid.New()

	review := &domain.Review{
		ID:         reviewID,
		EntityType: domain.EntityTypeBusiness,
		EntityID:   entityID,
		UserID:     uuid.New(),
	}

	f.repo.On("GetByID", mock.Anything, reviewID).Return(review, nil)
	f.ownership.On("IsOwner", mock.Anything, domain.EntityTypeBusiness, entityID, userID).Return(false, nil)

	_, err := f.service.Reply(context.Background(), reviewID, userID, "Thanks!")

	assert.Equal(t, domain.ErrForbidden, err)
	f.repo.AssertNotCalled(t, "CreateReply")
}

func TestService_Reply_AlreadyExists(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	ownerID := uuid.New()
	entityID := uuid.New()

	review := &domain.Review{
		ID:         reviewID,
		EntityType: domain.EntityTypeBusiness,
		EntityID:   entityID,
		UserID:     uuid.New(),
	}

	f.repo.On("GetByID", mock.Anything, reviewID).Return(review, nil)
	f.ownership.On("IsOwner", mock.Anything, domain.EntityTypeBusiness, entityID, ownerID).Return(true, nil)
	f.repo.On("ReplyExists", mock.Anything, reviewID).Return(true, nil)

	_, err := f.service.Reply(context.Background(), reviewID, ownerID, "Thanks!")

	assert.Equal(t, domain.ErrDuplicateReply, err)
	f.repo.AssertNotCalled(t, "CreateReply")
}

func TestService_Reply_EmptyContent(t *testing.T) {
	f := newFixture()

	_, err := f.service.Reply(context.Background(), uuid.New(), uuid.New(), "")

	assert.Equal(t, domain.ErrInvalidInput, err)
	f.repo.AssertNotCalled(t, "GetByID")
}

func TestService_CanEdit(t *testing.T) {
	f := newFixture()

	reviewID := uuid.New()
	userID := uuid.New()

	f.repo.On("GetByID", mock.Anything, reviewID).
		Return(&domain.Review{ID: reviewID, UserID: userID, EditCount: 1}, nil).Once()

	result, err := f.service.CanEdit(context.Background(), reviewID, userID)
	assert.NoError(t, err)
	assert.True(t, result.CanEdit)
	assert.Equal(t, 1, result.EditCount)

	f.repo.On("GetByID", mock.Anything, reviewID).
		Return(&domain.Review{ID: reviewID, UserID: userID, EditCount: domain.MaxReviewEdits}, nil).Once()

	result, err = f.service.CanEdit(context.Background(), reviewID, userID)
	assert.NoError(t, err)
	assert.False(t, result.CanEdit)

	// Non-authors never get the edit affordance
	f.repo.On("GetByID", mock.Anything, reviewID).
		Return(&domain.Review{ID: reviewID, UserID: uuid.New(), EditCount: 0}, nil).Once()

	result, err = f.service.CanEdit(context.Background(), reviewID, userID)
	assert.NoError(t, err)
	assert.False(t, result.CanEdit)
}

func TestService_ListByEntity_CacheHit(t *testing.T) {
	f := newFixture()

	entityID := uuid.New()
	cached := []*domain.Review{
		{ID: uuid.New(), EntityType: domain.EntityTypeBusiness, EntityID: entityID, Rating: 5},
		{ID: uuid.New(), EntityType: domain.EntityTypeBusiness, EntityID: entityID, Rating: 4},
	}

	f.cache.On("GetEntityReviews", mock.Anything, domain.EntityTypeBusiness, entityID, 20, 0).
		Return(cached, nil)
	f.repo.On("CountByEntity", mock.Anything, domain.EntityTypeBusiness, entityID).Return(2, nil)
	f.repo.On("RepliesByReviewIDs", mock.Anything, mock.Anything).
		Return(map[uuid.UUID]*domain.ReviewReply{}, nil)

	reviews, total, err := f.service.ListByEntity(context.Background(), domain.EntityTypeBusiness, entityID, 20, 0)

	assert.NoError(t, err)
	assert.Equal(t, cached, reviews)
	assert.Equal(t, 2, total)
	f.repo.AssertNotCalled(t, "ListByEntity")
}

func TestService_ListByEntity_CacheMissAttachesReplies(t *testing.T) {
	f := newFixture()

	entityID := uuid.New()
	reviewID := uuid.New()
	stored := []*domain.Review{
		{ID: reviewID, EntityType: domain.EntityTypeBusiness, EntityID: entityID, Rating: 5},
	}
	reply := &domain.ReviewReply{ID: uuid.New(), ReviewID: reviewID, Content: "Thanks!"}

	f.cache.On("GetEntityReviews", mock.Anything, domain.EntityTypeBusiness, entityID, 20, 0).
		Return(nil, assert.AnError)
	f.repo.On("ListByEntity", mock.Anything, domain.EntityTypeBusiness, entityID, 20, 0).
		Return(stored, nil)
	f.cache.On("SetEntityReviews", mock.Anything, domain.EntityTypeBusiness, entityID, 20, 0, stored).
		Return(nil)
	f.repo.On("CountByEntity", mock.Anything, domain.EntityTypeBusiness, entityID).Return(1, nil)
	f.repo.On("RepliesByReviewIDs", mock.Anything, []uuid.UUID{reviewID}).
		Return(map[uuid.UUID]*domain.ReviewReply{reviewID: reply}, nil)

	reviews, total, err := f.service.ListByEntity(context.Background(), domain.EntityTypeBusiness, entityID, 20, 0)

	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, reply, reviews[0].Reply)
	f.cache.AssertExpectations(t)
}

func TestService_ListByEntity_ClampsLimit(t *testing.T) {
	f := newFixture()

	entityID := uuid.New()

	f.cache.On("GetEntityReviews", mock.Anything, domain.EntityTypeBusiness, entityID, 20, 0).
		Return([]*domain.Review{}, nil)
	f.repo.On("CountByEntity", mock.Anything, domain.EntityTypeBusiness, entityID).Return(0, nil)

	_, _, err := f.service.ListByEntity(context.Background(), domain.EntityTypeBusiness, entityID, 500, -3)

	assert.NoError(t, err)
	f.cache.AssertExpectations(t)
}

func TestService_GetRatingSummary(t *testing.T) {
	f := newFixture()

	entityID := uuid.New()
	f.repo.On("RatingsByEntity", mock.Anything, domain.EntityTypeBusiness, entityID).
		Return([]int{5, 5, 4}, nil)

	summary, err := f.service.GetRatingSummary(context.Background(), domain.EntityTypeBusiness, entityID)

	assert.NoError(t, err)
	assert.Equal(t, 3, summary.TotalReviews)
	assert.Equal(t, 4.7, summary.AverageRating)
	assert.Equal(t, 2, summary.RatingDistribution[5])
}
