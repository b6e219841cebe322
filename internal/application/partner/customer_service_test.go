package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/partner"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks
// =============================================================================

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, userID string, filter shared.Filter) ([]partner.Customer, int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]partner.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) ExistsByCode(ctx context.Context, userID, code string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, code, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

const testUser = "user-1"

func acmeProfile() ProfileInput {
	return ProfileInput{
		CompanyName:   "Acme Textiles",
		ContactPerson: "R. Kumar",
		Email:         "Accounts@Acme.in",
		Phone:         "+91 98765 43210",
		GSTNumber:     "33abcde1234f1z5",
		City:          "Tiruppur",
		Pincode:       "641601",
	}
}

func newTestCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(testUser, "ACME", acmeProfile().toDomain())
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func eventTypes(events []shared.DomainEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventType()
	}
	return out
}

// =============================================================================
// Tests
// =============================================================================

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer and publishes event", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		pub := new(MockEventPublisher)
		svc := NewCustomerService(repo, pub, nil)

		repo.On("ExistsByCode", ctx, testUser, "ACME-01", uuid.Nil).Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)
		pub.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return assert.ObjectsAreEqual([]string{partner.EventTypeCustomerCreated}, eventTypes(events))
		})).Return(nil)

		limit := decimal.NewFromInt(50000)
		resp, err := svc.Create(ctx, testUser, CreateCustomerRequest{
			CustomerCode: " acme-01 ",
			ProfileInput: acmeProfile(),
			CreditLimit:  &limit,
		})
		require.NoError(t, err)

		assert.Equal(t, "ACME-01", resp.CustomerCode)
		assert.Equal(t, "accounts@acme.in", resp.Email)
		assert.Equal(t, "33ABCDE1234F1Z5", resp.GSTNumber)
		assert.Equal(t, partner.DefaultCountry, resp.Country)
		assert.Equal(t, partner.DefaultPaymentTerms, resp.PaymentTerms)
		assert.True(t, resp.CreditLimit.Equal(limit))
		assert.True(t, resp.IsActive)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("duplicate code is rejected before saving", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := NewCustomerService(repo, nil, nil)

		repo.On("ExistsByCode", ctx, testUser, "ACME", uuid.Nil).Return(true, nil)

		_, err := svc.Create(ctx, testUser, CreateCustomerRequest{CustomerCode: "ACME", ProfileInput: acmeProfile()})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unique index race maps to already exists", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := NewCustomerService(repo, nil, nil)

		repo.On("ExistsByCode", ctx, testUser, "ACME", uuid.Nil).Return(false, nil)
		repo.On("Save", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := svc.Create(ctx, testUser, CreateCustomerRequest{CustomerCode: "ACME", ProfileInput: acmeProfile()})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.Contains(t, err.Error(), "ACME")
	})

	t.Run("invalid profile", func(t *testing.T) {
		svc := NewCustomerService(new(MockCustomerRepository), nil, nil)
		p := acmeProfile()
		p.Pincode = "12"

		_, err := svc.Create(ctx, testUser, CreateCustomerRequest{CustomerCode: "ACME", ProfileInput: p})
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_PINCODE", domainErr.Code)
	})

	t.Run("negative credit limit", func(t *testing.T) {
		svc := NewCustomerService(new(MockCustomerRepository), nil, nil)
		limit := decimal.NewFromInt(-1)

		_, err := svc.Create(ctx, testUser, CreateCustomerRequest{CustomerCode: "ACME", ProfileInput: acmeProfile(), CreditLimit: &limit})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Credit limit")
	})
}

func TestCustomerService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	svc := NewCustomerService(repo, nil, nil)
	customer := newTestCustomer(t)
	missing := uuid.New()

	repo.On("FindByID", ctx, testUser, customer.ID).Return(customer, nil)
	repo.On("FindByID", ctx, testUser, missing).Return(nil, shared.ErrNotFound)

	resp, err := svc.GetByID(ctx, testUser, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Textiles", resp.CompanyName)

	_, err = svc.GetByID(ctx, testUser, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Customer not found", err.Error())
}

func TestCustomerService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	svc := NewCustomerService(repo, nil, nil)
	customer := newTestCustomer(t)

	repo.On("FindAll", ctx, testUser, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Search == "acme" && f.Page == 2 && f.PageSize == 100 && f.OrderBy == "company_name"
	})).Return([]partner.Customer{*customer}, int64(101), nil)

	items, total, err := svc.List(ctx, testUser, ListFilter{Search: " acme ", Page: 2, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(101), total)
	require.Len(t, items, 1)
	assert.Equal(t, "ACME", items[0].CustomerCode)
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial profile update keeps other fields", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		pub := new(MockEventPublisher)
		svc := NewCustomerService(repo, pub, nil)
		customer := newTestCustomer(t)

		repo.On("FindByID", ctx, testUser, customer.ID).Return(customer, nil)
		repo.On("Save", ctx, customer).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(nil)

		city := "Coimbatore"
		inactive := false
		resp, err := svc.Update(ctx, testUser, customer.ID, UpdateCustomerRequest{
			ProfileUpdate: ProfileUpdate{City: &city},
			IsActive:      &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, "Coimbatore", resp.City)
		assert.Equal(t, "Acme Textiles", resp.CompanyName)
		assert.False(t, resp.IsActive)
		assert.Greater(t, resp.Version, 1)
		repo.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("code change checks uniqueness against others", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := NewCustomerService(repo, nil, nil)
		customer := newTestCustomer(t)

		repo.On("FindByID", ctx, testUser, customer.ID).Return(customer, nil)
		repo.On("ExistsByCode", ctx, testUser, "BHARAT", customer.ID).Return(true, nil)

		code := "bharat"
		_, err := svc.Update(ctx, testUser, customer.ID, UpdateCustomerRequest{CustomerCode: &code})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("same code in another case is not a change", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := NewCustomerService(repo, nil, nil)
		customer := newTestCustomer(t)

		repo.On("FindByID", ctx, testUser, customer.ID).Return(customer, nil)
		repo.On("Save", ctx, customer).Return(nil)

		code := "acme"
		_, err := svc.Update(ctx, testUser, customer.ID, UpdateCustomerRequest{CustomerCode: &code})
		require.NoError(t, err)
		repo.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := NewCustomerService(repo, nil, nil)
		id := uuid.New()
		repo.On("FindByID", ctx, testUser, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, testUser, id, UpdateCustomerRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	pub := new(MockEventPublisher)
	svc := NewCustomerService(repo, pub, nil)
	customer := newTestCustomer(t)

	repo.On("FindByID", ctx, testUser, customer.ID).Return(customer, nil)
	repo.On("Delete", ctx, testUser, customer.ID).Return(nil)
	pub.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == partner.EventTypeCustomerDeleted
	})).Return(errors.New("bus stopped"))

	require.NoError(t, svc.Delete(ctx, testUser, customer.ID))
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}
