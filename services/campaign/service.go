package campaign

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trustfund-backend/pkg/db/option"
	"trustfund-backend/pkg/errutil"
	"trustfund-backend/pkg/repository"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	campaigns repository.Repository[Campaign]
}

type ServiceParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		campaigns: repository.ProvideStore[Campaign](p.DB),
	}
}

type CreateRequest struct {
	Title           string     `json:"title" binding:"required,min=10,max=255"`
	Description     string     `json:"description" binding:"required,min=50,max=5000"`
	Story           string     `json:"story" binding:"max=10000"`
	GoalAmount      float64    `json:"goalAmount" binding:"required,min=1000"`
	Category        string     `json:"categoryId" binding:"required"`
	EndDate         *time.Time `json:"endDate" binding:"required"`
	Location        string     `json:"location" binding:"max=255"`
	BeneficiaryName string     `json:"beneficiaryName" binding:"max=255"`
}

func (s *Service) Create(ctx context.Context, creatorID string, req CreateRequest) (*Campaign, error) {
	if req.EndDate != nil && !req.EndDate.After(time.Now()) {
		return nil, errutil.ValidationFailed("End date must be in the future")
	}

	c := &Campaign{
		ID:              s.node.Generate().String(),
		Title:           req.Title,
		Description:     req.Description,
		Story:           req.Story,
		GoalAmount:      req.GoalAmount,
		CreatorID:       creatorID,
		Category:        req.Category,
		Status:          StatusActive,
		StartDate:       time.Now(),
		EndDate:         req.EndDate,
		Location:        req.Location,
		BeneficiaryName: req.BeneficiaryName,
	}

	if err := s.campaigns.Create(ctx, c); err != nil {
		zap.L().Error("failed to create campaign", zap.Error(err))
		return nil, errutil.Internal("failed to create campaign", errutil.WithErr(err))
	}

	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*Campaign, error) {
	results, err := s.campaigns.Find(ctx, &Campaign{},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "DESC"}))
	if err != nil {
		return nil, errutil.Internal("failed to list campaigns", errutil.WithErr(err))
	}
	return results, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Campaign, error) {
	c, err := s.campaigns.FindOne(ctx, &Campaign{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to look up campaign", errutil.WithErr(err))
	}
	if c == nil {
		return nil, errutil.NotFound("Campaign not found")
	}
	return c, nil
}

type UpdateRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Story           string     `json:"story"`
	EndDate         *time.Time `json:"endDate"`
	Location        string     `json:"location"`
	BeneficiaryName string     `json:"beneficiaryName"`
	Status          Status     `json:"status"`
}

// Update applies campaign metadata changes. Only the creator or an admin may
// mutate a campaign; funded totals are never writable through this path.
func (s *Service) Update(ctx context.Context, id, callerID string, isAdmin bool, req UpdateRequest) (*Campaign, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.CreatorID != callerID && !isAdmin {
		return nil, errutil.Forbidden("Not authorized")
	}

	updates := map[string]any{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Story != "" {
		updates["story"] = req.Story
	}
	if req.EndDate != nil {
		updates["end_date"] = req.EndDate
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.BeneficiaryName != "" {
		updates["beneficiary_name"] = req.BeneficiaryName
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, errutil.ValidationFailed("Unknown campaign status")
		}
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := s.campaigns.Update(ctx, id, updates); err != nil {
			return nil, errutil.Internal("failed to update campaign", errutil.WithErr(err))
		}
	}

	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, callerID string, isAdmin bool) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if c.CreatorID != callerID && !isAdmin {
		return errutil.Forbidden("Not authorized")
	}

	if err := s.db.WithContext(ctx).Delete(&Campaign{}, "id = ?", id).Error; err != nil {
		return errutil.Internal("failed to delete campaign", errutil.WithErr(err))
	}
	return nil
}

func (s *Service) SetImageURL(ctx context.Context, id, url string) error {
	if err := s.campaigns.Update(ctx, id, map[string]any{"image_url": url}); err != nil {
		return errutil.Internal("failed to set campaign image", errutil.WithErr(err))
	}
	return nil
}

// ApplyDonation is the campaign aggregate updater: one conditional update
// expressing current_amount += amount, donor_count += 1. Concurrent donations
// to the same campaign therefore never lose an increment. donor_count counts
// donation events, not distinct donors.
func (s *Service) ApplyDonation(ctx context.Context, campaignID string, amount float64) error {
	res := s.db.WithContext(ctx).Model(&Campaign{}).
		Where("id = ?", campaignID).
		Updates(map[string]any{
			"current_amount": gorm.Expr("current_amount + ?", amount),
			"donor_count":    gorm.Expr("donor_count + 1"),
		})
	if res.Error != nil {
		return errutil.Internal("failed to update campaign totals", errutil.WithErr(res.Error))
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound("Campaign not found")
	}
	return nil
}
