package profile

import (
	"context"
	"sync"
	"testing"

	"smart-kitchen/domain"
	"smart-kitchen/entities"
	"smart-kitchen/internal/utils/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) ProfileService {
	t.Helper()
	return NewProfileService(NewProfileRepository(testdb.New(t)))
}

func ptr[T any](v T) *T { return &v }

func TestGetProfile_CreatesDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	userID := uuid.NewString()

	first, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, first.UserID)
	assert.Equal(t, entities.DefaultServings, first.DefaultServings)
	assert.Equal(t, entities.CookingBeginner, first.CookingExperience)
	assert.Empty(t, first.DietaryPreferences)
	assert.NotNil(t, first.DietaryPreferences)
	assert.Nil(t, first.Notes)

	again, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestGetProfile_ConcurrentFirstRequests(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	userID := uuid.NewString()

	ids := make([]string, 4)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.GetProfile(ctx, userID)
			if assert.NoError(t, err) {
				ids[i] = res.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}

func TestUpdateProfile_Partial(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	userID := uuid.NewString()

	res, err := svc.UpdateProfile(ctx, domain.UpdateProfileRequest{
		DietaryPreferences: ptr([]string{" vegetarian ", "", "Vegetarian", "low salt"}),
		DefaultServings:    ptr(4),
		Notes:              ptr("allergic to peanuts"),
	}, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vegetarian", "low salt"}, res.DietaryPreferences)
	assert.Equal(t, 4, res.DefaultServings)
	assert.Equal(t, entities.CookingBeginner, res.CookingExperience)
	require.NotNil(t, res.Notes)

	res, err = svc.UpdateProfile(ctx, domain.UpdateProfileRequest{
		CookingExperience: ptr("Advanced"),
		Notes:             ptr("  "),
	}, userID)
	require.NoError(t, err)
	assert.Equal(t, entities.CookingAdvanced, res.CookingExperience)
	assert.Nil(t, res.Notes)

	stored, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vegetarian", "low salt"}, stored.DietaryPreferences)
	assert.Equal(t, 4, stored.DefaultServings)
	assert.Equal(t, entities.CookingAdvanced, stored.CookingExperience)
	assert.Nil(t, stored.Notes)
}

func TestUpdateProfile_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	userID := uuid.NewString()

	_, err := svc.UpdateProfile(ctx, domain.UpdateProfileRequest{DefaultServings: ptr(13)}, userID)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
	_, err = svc.UpdateProfile(ctx, domain.UpdateProfileRequest{DefaultServings: ptr(0)}, userID)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
	_, err = svc.UpdateProfile(ctx, domain.UpdateProfileRequest{CookingExperience: ptr("chef")}, userID)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
	_, err = svc.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrParseUUID)

	stored, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultServings, stored.DefaultServings)
}
