package billing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textmagic/textmagic/internal/metrics"
	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/repository"
)

type fakeStore struct {
	usersByEmail map[string]*model.User

	updatedID      int64
	updatedPlan    model.Plan
	customerID     *string
	subscriptionID *string
	downgradedSub  string
	updateCalls    int
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if user, ok := f.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) UpdateUserPlan(_ context.Context, id int64, plan model.Plan, customerID, subscriptionID *string) error {
	f.updateCalls++
	f.updatedID = id
	f.updatedPlan = plan
	f.customerID = customerID
	f.subscriptionID = subscriptionID
	return nil
}

func (f *fakeStore) DowngradeBySubscriptionID(_ context.Context, subscriptionID string) error {
	f.downgradedSub = subscriptionID
	return nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, slog.Default(), metrics.NewInMemory())
}

func TestApplySubscribedByEmail(t *testing.T) {
	store := &fakeStore{usersByEmail: map[string]*model.User{
		"user@example.com": {ID: 7, Email: "user@example.com", Plan: model.PlanFree},
	}}
	svc := newTestService(store)

	err := svc.Apply(context.Background(), &Event{
		Type:           EventSubscribed,
		Provider:       "paddle",
		Plan:           model.PlanBusiness,
		Email:          "user@example.com",
		CustomerID:     "ctm_123",
		SubscriptionID: "sub_456",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), store.updatedID)
	assert.Equal(t, model.PlanBusiness, store.updatedPlan)
	require.NotNil(t, store.customerID)
	assert.Equal(t, "ctm_123", *store.customerID)
	require.NotNil(t, store.subscriptionID)
	assert.Equal(t, "sub_456", *store.subscriptionID)
}

func TestApplySubscribedByUserID(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	err := svc.Apply(context.Background(), &Event{
		Type:           EventSubscribed,
		Provider:       "stripe",
		Plan:           model.PlanPro,
		UserID:         42,
		CustomerID:     "cus_abc",
		SubscriptionID: "sub_def",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), store.updatedID)
	assert.Equal(t, model.PlanPro, store.updatedPlan)
}

func TestApplySubscribedUnknownEmailIsAcknowledged(t *testing.T) {
	store := &fakeStore{usersByEmail: map[string]*model.User{}}
	svc := newTestService(store)

	err := svc.Apply(context.Background(), &Event{
		Type:     EventSubscribed,
		Provider: "paddle",
		Plan:     model.PlanPro,
		Email:    "ghost@example.com",
	})

	// Unknown accounts must not error, or the provider retries forever.
	require.NoError(t, err)
	assert.Zero(t, store.updateCalls)
}

func TestApplyCanceledByEmailClearsBillingRefs(t *testing.T) {
	store := &fakeStore{usersByEmail: map[string]*model.User{
		"user@example.com": {ID: 7, Plan: model.PlanPro},
	}}
	svc := newTestService(store)

	err := svc.Apply(context.Background(), &Event{
		Type:     EventCanceled,
		Provider: "paddle",
		Email:    "user@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, model.PlanFree, store.updatedPlan)
	assert.Nil(t, store.customerID)
	assert.Nil(t, store.subscriptionID)
}

func TestApplyCanceledBySubscriptionID(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	err := svc.Apply(context.Background(), &Event{
		Type:           EventCanceled,
		Provider:       "stripe",
		SubscriptionID: "sub_gone",
	})
	require.NoError(t, err)

	assert.Equal(t, "sub_gone", store.downgradedSub)
}

func TestApplyIgnoredIsNoop(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	err := svc.Apply(context.Background(), &Event{
		Type:          EventIgnored,
		Provider:      "stripe",
		ProviderEvent: "invoice.paid",
	})
	require.NoError(t, err)
	assert.Zero(t, store.updateCalls)
	assert.Empty(t, store.downgradedSub)
}
