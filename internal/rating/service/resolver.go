package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"gorm.io/gorm"
)

// ResolveGroup locates the single active group for a job: by client id
// first, then by (customer, region). A miss is fatal to calculation.
func (s *Service) ResolveGroup(ctx context.Context, job ratingdomain.JobContext) (snowflake.ID, error) {
	if job.ClientID != nil {
		group, err := s.cardRepo.FindActiveGroupByClient(ctx, s.db, *job.ClientID)
		if err != nil {
			return 0, err
		}
		if group != nil {
			return group.ID, nil
		}
	}

	group, err := s.cardRepo.FindActiveGroupByCustomerRegion(ctx, s.db, job.CustomerName, job.RegionCode)
	if err != nil {
		return 0, err
	}
	if group == nil {
		return 0, ratingdomain.ErrNoRateCardFound
	}
	return group.ID, nil
}

// ResolveRates normalizes a group's profiles into the three-role view.
// A blended profile supplies the base triple per code; role-typed
// profiles override their own role's column. Any requested code absent
// from the composed view fails the whole resolution.
func (s *Service) ResolveRates(ctx context.Context, groupID snowflake.ID, codes []string) (*ratingdomain.ResolvedRates, error) {
	profiles, err := s.cardRepo.ListProfilesByGroup(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}

	rates := make(map[string]ratingdomain.RateTriple, len(codes))

	blended := pickBlended(profiles)
	if blended != nil {
		items, err := s.cardRepo.ListActiveItemsByCodes(ctx, s.db, blended.ID, codes)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			rates[item.Code] = ratingdomain.RateTriple{
				Code:         item.Code,
				Description:  item.Description,
				Unit:         item.Unit,
				CompanyRate:  item.CompanyRate,
				WorkerRate:   item.WorkerRate,
				InvestorRate: item.InvestorRate,
			}
		}
	}

	for _, profile := range profiles {
		role, ok := roleOf(profile.Type)
		if !ok {
			continue
		}
		if err := s.overlayRole(ctx, s.db, profile.ID, role, codes, rates); err != nil {
			return nil, err
		}
	}

	missing := make([]string, 0)
	for _, code := range codes {
		if _, ok := rates[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return nil, &ratingdomain.UnknownRateCodeError{Codes: missing}
	}

	return &ratingdomain.ResolvedRates{GroupID: groupID, Rates: rates}, nil
}

func (s *Service) overlayRole(
	ctx context.Context,
	db *gorm.DB,
	profileID snowflake.ID,
	role ratecarddomain.PayeeRole,
	codes []string,
	rates map[string]ratingdomain.RateTriple,
) error {
	items, err := s.cardRepo.ListActiveItemsByCodes(ctx, db, profileID, codes)
	if err != nil {
		return err
	}
	for _, item := range items {
		triple, ok := rates[item.Code]
		if !ok {
			triple = ratingdomain.RateTriple{
				Code:        item.Code,
				Description: item.Description,
				Unit:        item.Unit,
			}
		}
		switch role {
		case ratecarddomain.RoleCompany:
			triple.CompanyRate = item.CompanyRate
		case ratecarddomain.RoleWorker:
			triple.WorkerRate = item.WorkerRate
		case ratecarddomain.RoleInvestor:
			triple.InvestorRate = item.InvestorRate
		}
		rates[item.Code] = triple
	}
	return nil
}

func pickBlended(profiles []ratecarddomain.RateCardProfile) *ratecarddomain.RateCardProfile {
	var fallback *ratecarddomain.RateCardProfile
	for i := range profiles {
		p := &profiles[i]
		if p.Type != ratecarddomain.ProfileTypeBlended {
			continue
		}
		if p.IsDefault {
			return p
		}
		if fallback == nil {
			fallback = p
		}
	}
	return fallback
}

func roleOf(t ratecarddomain.ProfileType) (ratecarddomain.PayeeRole, bool) {
	switch t {
	case ratecarddomain.ProfileTypeCompany:
		return ratecarddomain.RoleCompany, true
	case ratecarddomain.ProfileTypeWorker:
		return ratecarddomain.RoleWorker, true
	case ratecarddomain.ProfileTypeInvestor:
		return ratecarddomain.RoleInvestor, true
	}
	return "", false
}
