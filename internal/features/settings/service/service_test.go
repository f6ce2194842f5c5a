package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"postnet-delivery/internal/features/settings/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSettingsRepository is a mock implementation of ports.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockStoreEmailLookup is a mock implementation of ports.StoreEmailLookup
type MockStoreEmailLookup struct {
	mock.Mock
}

func (m *MockStoreEmailLookup) StoreEmail(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func TestSettingsService_Get(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	service := NewSettingsService(mockRepo, nil)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo.On("Get", ctx).Return(domain.Default(), nil).Once()

		s, err := service.Get(ctx)
		assert.NoError(t, err)
		assert.Equal(t, domain.AlwaysCollect, s.CollectionType)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo.On("Get", ctx).Return(domain.Settings{}, errors.New("redis down")).Once()

		_, err := service.Get(ctx)
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestSettingsService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("SanitisesAndResolvesEmail", func(t *testing.T) {
		mockRepo := new(MockSettingsRepository)
		mockStores := new(MockStoreEmailLookup)
		service := NewSettingsService(mockRepo, mockStores)

		mockStores.On("StoreEmail", ctx, "PN001").Return("sandton@postnet.co.za", nil).Once()
		mockRepo.On("Save", ctx, mock.MatchedBy(func(s domain.Settings) bool {
			return s.OriginStoreEmail == "sandton@postnet.co.za" &&
				len(s.ServiceTypes) == 1 && s.ServiceTypes[0] == domain.PostnetToPostnet
		})).Return(nil).Once()

		s, err := service.Save(ctx, domain.Input{
			ServiceTypes:   []string{"postnet_to_postnet", "bogus"},
			CollectionType: "always_deliver",
			OriginStore:    "PN001",
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.AlwaysDeliver, s.CollectionType)
		mockRepo.AssertExpectations(t)
		mockStores.AssertExpectations(t)
	})

	t.Run("EmailLookupFailureStillSaves", func(t *testing.T) {
		mockRepo := new(MockSettingsRepository)
		mockStores := new(MockStoreEmailLookup)
		service := NewSettingsService(mockRepo, mockStores)

		mockStores.On("StoreEmail", ctx, "PN404").Return("", errors.New("not found")).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("domain.Settings")).Return(nil).Once()

		s, err := service.Save(ctx, domain.Input{OriginStore: "PN404"})
		assert.NoError(t, err)
		assert.Empty(t, s.OriginStoreEmail)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockRepo := new(MockSettingsRepository)
		service := NewSettingsService(mockRepo, nil)

		_, err := service.Save(ctx, domain.Input{OriginStore: strings.Repeat("x", 80)})
		assert.ErrorIs(t, err, domain.ErrInvalidSettings)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockSettingsRepository)
		service := NewSettingsService(mockRepo, nil)

		mockRepo.On("Save", ctx, mock.AnythingOfType("domain.Settings")).Return(errors.New("redis down")).Once()

		_, err := service.Save(ctx, domain.Input{})
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}
