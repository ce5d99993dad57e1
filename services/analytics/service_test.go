package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trustfund-backend/services/campaign"
	"trustfund-backend/services/donation"
	"trustfund-backend/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &campaign.Campaign{}, &donation.Donation{})
	return NewService(ServiceParams{DB: db}), db
}

func seedDonation(t *testing.T, db *gorm.DB, d *donation.Donation) {
	t.Helper()
	require.NoError(t, db.Create(d).Error)
}

func at(month time.Month, day int) time.Time {
	return time.Date(2026, month, day, 12, 0, 0, 0, time.UTC)
}

func TestDashboardEmpty(t *testing.T) {
	svc, _ := newService(t)

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.Zero(t, dash.TotalDonations)
	require.Zero(t, dash.TotalAmount)
	require.Len(t, dash.MonthlyData, 12)
	require.Equal(t, "Jan", dash.MonthlyData[0].Name)
	require.Equal(t, "Dec", dash.MonthlyData[11].Name)
	for _, m := range dash.MonthlyData {
		require.Zero(t, m.Amount)
		require.Zero(t, m.Count)
	}
	require.Empty(t, dash.TopDonors)
	require.Equal(t, TopDonor{Name: "N/A"}, dash.TopDonor)
}

func TestDashboardMonthlyGrouping(t *testing.T) {
	svc, db := newService(t)

	seedDonation(t, db, &donation.Donation{
		ID: "d1", CampaignID: "c1", DonorID: "u1", DonorName: "Asha",
		Amount: 100, Status: donation.StatusCompleted, CreatedAt: at(time.March, 3),
	})
	seedDonation(t, db, &donation.Donation{
		ID: "d2", CampaignID: "c1", DonorID: "u1", DonorName: "Asha",
		Amount: 200, Status: donation.StatusCompleted, CreatedAt: at(time.March, 20),
	})
	seedDonation(t, db, &donation.Donation{
		ID: "d3", CampaignID: "c1", DonorID: "u2", DonorName: "Ravi",
		Amount: 50, Status: donation.StatusCompleted, CreatedAt: at(time.December, 1),
	})
	// pending and failed donations never count
	seedDonation(t, db, &donation.Donation{
		ID: "d4", CampaignID: "c1", DonorID: "u1", DonorName: "Asha",
		Amount: 900, Status: donation.StatusPending, CreatedAt: at(time.March, 4),
	})
	seedDonation(t, db, &donation.Donation{
		ID: "d5", CampaignID: "c1", DonorID: "u2", DonorName: "Ravi",
		Amount: 900, Status: donation.StatusFailed, CreatedAt: at(time.June, 4),
	})

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(3), dash.TotalDonations)
	require.Equal(t, float64(350), dash.TotalAmount)

	require.Len(t, dash.MonthlyData, 12)
	march := dash.MonthlyData[2]
	require.Equal(t, "Mar", march.Name)
	require.Equal(t, float64(300), march.Amount)
	require.Equal(t, int64(2), march.Count)

	december := dash.MonthlyData[11]
	require.Equal(t, float64(50), december.Amount)
	require.Equal(t, int64(1), december.Count)

	june := dash.MonthlyData[5]
	require.Zero(t, june.Amount)
	require.Zero(t, june.Count)
}

func TestDashboardLeaderboard(t *testing.T) {
	svc, db := newService(t)

	// six donors so the leaderboard has to truncate to five
	amounts := []float64{100, 200, 300, 400, 500, 600}
	for i, amount := range amounts {
		seedDonation(t, db, &donation.Donation{
			ID:         string(rune('a' + i)),
			CampaignID: "c1",
			DonorID:    string(rune('A' + i)),
			DonorName:  string(rune('A' + i)),
			Amount:     amount,
			Status:     donation.StatusCompleted,
			CreatedAt:  at(time.January, i+1),
		})
	}

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, dash.TopDonors, 5)
	require.Equal(t, "F", dash.TopDonors[0].Name)
	require.Equal(t, float64(600), dash.TopDonors[0].TotalDonated)
	require.Equal(t, "B", dash.TopDonors[4].Name)

	require.Equal(t, "F", dash.TopDonor.Name)
	require.Equal(t, float64(600), dash.TopDonor.Amount)
}

func TestDashboardLeaderboardKeepsFirstSeenName(t *testing.T) {
	svc, db := newService(t)

	seedDonation(t, db, &donation.Donation{
		ID: "d1", CampaignID: "c1", DonorID: "u1", DonorName: "Asha Verma",
		Amount: 100, Status: donation.StatusCompleted, CreatedAt: at(time.January, 1),
	})
	// same donor, later donation carries a changed display name
	seedDonation(t, db, &donation.Donation{
		ID: "d2", CampaignID: "c1", DonorID: "u1", DonorName: "Asha V.",
		Amount: 400, Status: donation.StatusCompleted, CreatedAt: at(time.February, 1),
	})

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, dash.TopDonors, 1)
	require.Equal(t, "Asha Verma", dash.TopDonors[0].Name)
	require.Equal(t, float64(500), dash.TopDonors[0].TotalDonated)
	require.Equal(t, int64(2), dash.TopDonors[0].DonationCount)
}

func TestDashboardGuestDonorsGroupedByEmail(t *testing.T) {
	svc, db := newService(t)

	seedDonation(t, db, &donation.Donation{
		ID: "d1", CampaignID: "c1", DonorName: "Guest One", DonorEmail: "guest@example.com",
		Amount: 100, Status: donation.StatusCompleted, CreatedAt: at(time.January, 1),
	})
	seedDonation(t, db, &donation.Donation{
		ID: "d2", CampaignID: "c1", DonorName: "Guest One", DonorEmail: "guest@example.com",
		Amount: 150, Status: donation.StatusCompleted, CreatedAt: at(time.January, 2),
	})

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, dash.TopDonors, 1)
	require.Equal(t, float64(250), dash.TopDonors[0].TotalDonated)
}

func TestDashboardCampaignCounts(t *testing.T) {
	svc, db := newService(t)

	require.NoError(t, db.Create(&campaign.Campaign{ID: "c1", Title: "One", Status: campaign.StatusActive, CreatorID: "u1", GoalAmount: 1000}).Error)
	require.NoError(t, db.Create(&campaign.Campaign{ID: "c2", Title: "Two", Status: campaign.StatusCompleted, CreatorID: "u1", GoalAmount: 1000}).Error)

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(2), dash.TotalCampaigns)
	require.Equal(t, int64(1), dash.ActiveCampaigns)
}

func TestDashboardWireShape(t *testing.T) {
	svc, db := newService(t)

	seedDonation(t, db, &donation.Donation{
		ID: "d1", CampaignID: "c1", DonorID: "u1", DonorName: "Asha",
		Amount: 300, Status: donation.StatusCompleted, CreatedAt: at(time.March, 3),
	})

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(dash)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var monthly []map[string]any
	require.NoError(t, json.Unmarshal(decoded["monthlyData"], &monthly))
	require.Len(t, monthly, 12)
	for _, entry := range monthly {
		require.Len(t, entry, 2)
		require.Contains(t, entry, "name")
		require.Contains(t, entry, "amount")
	}

	var donors []map[string]any
	require.NoError(t, json.Unmarshal(decoded["topDonors"], &donors))
	require.Len(t, donors, 1)
	require.Len(t, donors[0], 2)
	require.Contains(t, donors[0], "name")
	require.Contains(t, donors[0], "totalDonated")

	var top map[string]any
	require.NoError(t, json.Unmarshal(decoded["topDonor"], &top))
	require.Len(t, top, 2)
	require.Equal(t, "Asha", top["name"])
	require.Equal(t, float64(300), top["amount"])
}
