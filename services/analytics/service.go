package analytics

import (
	"context"
	"sort"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"trustfund-backend/pkg/db/option"
	"trustfund-backend/pkg/errutil"
	"trustfund-backend/pkg/repository"
	"trustfund-backend/services/campaign"
	"trustfund-backend/services/donation"
)

// monthLabels indexes calendar months; the dashboard always reports all 12,
// zero-filled, in order.
var monthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

const leaderboardSize = 5

// MonthlyDatum is one bar of the monthly chart; Name is the month label.
// Count feeds the rollup but is not part of the wire shape.
type MonthlyDatum struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"-"`
}

type DonorRank struct {
	Name          string  `json:"name"`
	TotalDonated  float64 `json:"totalDonated"`
	DonationCount int64   `json:"-"`
}

// TopDonor is the headline card; Name is "N/A" when no donations exist.
type TopDonor struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Dashboard struct {
	TotalDonations  int64          `json:"totalDonations"`
	TotalAmount     float64        `json:"totalAmount"`
	TotalCampaigns  int64          `json:"totalCampaigns"`
	ActiveCampaigns int64          `json:"activeCampaigns"`
	MonthlyData     []MonthlyDatum `json:"monthlyData"`
	TopDonors       []DonorRank    `json:"topDonors"`
	TopDonor        TopDonor       `json:"topDonor"`
}

type Service struct {
	donations repository.Repository[donation.Donation]
	campaigns repository.Repository[campaign.Campaign]
}

type ServiceParams struct {
	fx.In

	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{
		donations: repository.ProvideStore[donation.Donation](p.DB),
		campaigns: repository.ProvideStore[campaign.Campaign](p.DB),
	}
}

// Dashboard rolls up completed donations in one chronological scan. Pending,
// failed and refunded donations never count. Donor names on the leaderboard
// are the name first seen for that donor, so later profile edits do not
// rewrite history.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	rows, err := s.donations.Find(ctx,
		&donation.Donation{Status: donation.StatusCompleted},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "ASC"}))
	if err != nil {
		return nil, errutil.Internal("Failed to load donations", errutil.WithErr(err))
	}

	dash := &Dashboard{
		MonthlyData: make([]MonthlyDatum, 12),
		TopDonors:   []DonorRank{},
		TopDonor:    TopDonor{Name: "N/A"},
	}
	for i, label := range monthLabels {
		dash.MonthlyData[i].Name = label
	}

	type donorAgg struct {
		rank  *DonorRank
		order int
	}
	donors := map[string]*donorAgg{}

	for _, d := range rows {
		dash.TotalDonations++
		dash.TotalAmount += d.Amount

		m := &dash.MonthlyData[int(d.CreatedAt.Month())-1]
		m.Amount += d.Amount
		m.Count++

		key := d.DonorID
		if key == "" {
			key = d.DonorEmail
		}
		if key == "" {
			continue
		}

		agg, ok := donors[key]
		if !ok {
			agg = &donorAgg{rank: &DonorRank{Name: d.DonorName}, order: len(donors)}
			donors[key] = agg
		}
		agg.rank.TotalDonated += d.Amount
		agg.rank.DonationCount++
	}

	ranked := make([]*donorAgg, 0, len(donors))
	for _, agg := range donors {
		ranked = append(ranked, agg)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].rank.TotalDonated != ranked[j].rank.TotalDonated {
			return ranked[i].rank.TotalDonated > ranked[j].rank.TotalDonated
		}
		return ranked[i].order < ranked[j].order
	})
	for i, agg := range ranked {
		if i == leaderboardSize {
			break
		}
		dash.TopDonors = append(dash.TopDonors, *agg.rank)
	}
	if len(dash.TopDonors) > 0 {
		dash.TopDonor = TopDonor{
			Name:   dash.TopDonors[0].Name,
			Amount: dash.TopDonors[0].TotalDonated,
		}
	}

	if total, err := s.campaigns.Count(ctx, &campaign.Campaign{}); err == nil {
		dash.TotalCampaigns = total
	}
	if active, err := s.campaigns.Count(ctx, &campaign.Campaign{Status: campaign.StatusActive}); err == nil {
		dash.ActiveCampaigns = active
	}

	return dash, nil
}
