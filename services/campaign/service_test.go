package campaign

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustfund-backend/pkg/errutil"
	"trustfund-backend/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Campaign{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func validCreateRequest() CreateRequest {
	end := time.Now().Add(30 * 24 * time.Hour)
	return CreateRequest{
		Title:       "Books For The Nagpur Library",
		Description: "Restock the community library with textbooks and storybooks so students have what they need for the school year.",
		GoalAmount:  25000,
		Category:    "education",
		EndDate:     &end,
	}
}

func TestCreateCampaign(t *testing.T) {
	svc := newService(t)

	c, err := svc.Create(context.Background(), "creator-1", validCreateRequest())
	require.NoError(t, err)
	require.Equal(t, StatusActive, c.Status)
	require.Equal(t, "creator-1", c.CreatorID)
	require.Zero(t, c.CurrentAmount)
	require.Zero(t, c.DonorCount)
}

func TestCreateCampaignPastEndDate(t *testing.T) {
	svc := newService(t)

	req := validCreateRequest()
	past := time.Now().Add(-24 * time.Hour)
	req.EndDate = &past

	_, err := svc.Create(context.Background(), "creator-1", req)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusValidationFailed, be.Status())
}

func TestGetUnknownCampaign(t *testing.T) {
	svc := newService(t)

	_, err := svc.Get(context.Background(), "missing")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestUpdateRequiresCreatorOrAdmin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "creator-1", validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Update(ctx, c.ID, "someone-else", false, UpdateRequest{Title: "Hijacked"})
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusForbidden, be.Status())

	updated, err := svc.Update(ctx, c.ID, "someone-else", true, UpdateRequest{Title: "Renamed By Admin"})
	require.NoError(t, err)
	require.Equal(t, "Renamed By Admin", updated.Title)

	updated, err = svc.Update(ctx, c.ID, "creator-1", false, UpdateRequest{Location: "Nagpur"})
	require.NoError(t, err)
	require.Equal(t, "Nagpur", updated.Location)
	require.Equal(t, "Renamed By Admin", updated.Title)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "creator-1", validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Update(ctx, c.ID, "creator-1", false, UpdateRequest{Status: "archived"})
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusValidationFailed, be.Status())

	updated, err := svc.Update(ctx, c.ID, "creator-1", false, UpdateRequest{Status: StatusCancelled})
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, updated.Status)
}

func TestDeleteRequiresCreatorOrAdmin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "creator-1", validCreateRequest())
	require.NoError(t, err)

	err = svc.Delete(ctx, c.ID, "someone-else", false)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusForbidden, be.Status())

	require.NoError(t, svc.Delete(ctx, c.ID, "creator-1", false))

	_, err = svc.Get(ctx, c.ID)
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestApplyDonationConcurrent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "creator-1", validCreateRequest())
	require.NoError(t, err)

	const workers = 25
	const amount = 40

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.ApplyDonation(ctx, c.ID, amount)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, float64(workers*amount), got.CurrentAmount)
	require.Equal(t, int64(workers), got.DonorCount)
}

// Two writers that each load the campaign, add in memory, and save the whole
// row lose one increment: the second save overwrites the first. ApplyDonation
// is the only mutation path for the funded totals precisely because of this.
func TestReadModifyWriteLosesConcurrentIncrement(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "creator-1", validCreateRequest())
	require.NoError(t, err)

	first, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	second, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)

	first.CurrentAmount += 100
	require.NoError(t, svc.db.Model(&Campaign{}).Where("id = ?", c.ID).
		Update("current_amount", first.CurrentAmount).Error)

	second.CurrentAmount += 100
	require.NoError(t, svc.db.Model(&Campaign{}).Where("id = ?", c.ID).
		Update("current_amount", second.CurrentAmount).Error)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, float64(100), got.CurrentAmount)

	// the atomic increment path does not lose either write
	require.NoError(t, svc.ApplyDonation(ctx, c.ID, 100))
	require.NoError(t, svc.ApplyDonation(ctx, c.ID, 100))

	got, err = svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, float64(300), got.CurrentAmount)
}

func TestApplyDonationUnknownCampaign(t *testing.T) {
	svc := newService(t)

	err := svc.ApplyDonation(context.Background(), "missing", 40)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestProgressPercentage(t *testing.T) {
	c := &Campaign{GoalAmount: 1000, CurrentAmount: 250}
	require.Equal(t, 25, c.ProgressPercentage())

	c.CurrentAmount = 2000
	require.Equal(t, 100, c.ProgressPercentage())

	c = &Campaign{}
	require.Zero(t, c.ProgressPercentage())
}
