package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() ratecarddomain.Repository {
	return &repository{}
}

func (r *repository) InsertGroup(ctx context.Context, db *gorm.DB, group *ratecarddomain.RateCardGroup) error {
	return db.WithContext(ctx).Create(group).Error
}

func (r *repository) FindGroupByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ratecarddomain.RateCardGroup, error) {
	var group ratecarddomain.RateCardGroup
	err := db.WithContext(ctx).First(&group, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *repository) FindActiveGroupByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (*ratecarddomain.RateCardGroup, error) {
	var group ratecarddomain.RateCardGroup
	err := db.WithContext(ctx).
		Where("client_id = ? AND active = ?", clientID, true).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *repository) FindActiveGroupByCustomerRegion(ctx context.Context, db *gorm.DB, customer, region string) (*ratecarddomain.RateCardGroup, error) {
	var group ratecarddomain.RateCardGroup
	err := db.WithContext(ctx).
		Where("customer_name = ? AND region_code = ? AND active = ?", customer, region, true).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *repository) UpdateGroupActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).Model(&ratecarddomain.RateCardGroup{}).
		Where("id = ?", id).
		Update("active", active).Error
}

func (r *repository) InsertProfile(ctx context.Context, db *gorm.DB, profile *ratecarddomain.RateCardProfile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *repository) FindProfileByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ratecarddomain.RateCardProfile, error) {
	var profile ratecarddomain.RateCardProfile
	err := db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) ListProfilesByGroup(ctx context.Context, db *gorm.DB, groupID snowflake.ID) ([]ratecarddomain.RateCardProfile, error) {
	var profiles []ratecarddomain.RateCardProfile
	err := db.WithContext(ctx).
		Where("group_id = ? AND active = ?", groupID, true).
		Order("created_at ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *repository) FindDefaultProfile(ctx context.Context, db *gorm.DB, groupID snowflake.ID) (*ratecarddomain.RateCardProfile, error) {
	var profile ratecarddomain.RateCardProfile
	err := db.WithContext(ctx).
		Where("group_id = ? AND is_default = ? AND active = ?", groupID, true, true).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) ClearDefaultProfile(ctx context.Context, db *gorm.DB, groupID snowflake.ID) error {
	return db.WithContext(ctx).Model(&ratecarddomain.RateCardProfile{}).
		Where("group_id = ? AND is_default = ?", groupID, true).
		Update("is_default", false).Error
}

func (r *repository) InsertItems(ctx context.Context, db *gorm.DB, items []ratecarddomain.RateCardItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindItemByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ratecarddomain.RateCardItem, error) {
	var item ratecarddomain.RateCardItem
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindActiveItemByCode(ctx context.Context, db *gorm.DB, profileID snowflake.ID, code string) (*ratecarddomain.RateCardItem, error) {
	var item ratecarddomain.RateCardItem
	err := db.WithContext(ctx).
		Where("profile_id = ? AND code = ? AND active = ?", profileID, code, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListActiveItems(ctx context.Context, db *gorm.DB, profileID snowflake.ID) ([]ratecarddomain.RateCardItem, error) {
	var items []ratecarddomain.RateCardItem
	err := db.WithContext(ctx).
		Where("profile_id = ? AND active = ?", profileID, true).
		Order("code ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListActiveItemsByCodes(ctx context.Context, db *gorm.DB, profileID snowflake.ID, codes []string) ([]ratecarddomain.RateCardItem, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var items []ratecarddomain.RateCardItem
	err := db.WithContext(ctx).
		Where("profile_id = ? AND code IN ? AND active = ?", profileID, codes, true).
		Find(&items).Error
	return items, err
}

func (r *repository) UpdateItem(ctx context.Context, db *gorm.DB, item *ratecarddomain.RateCardItem) error {
	return db.WithContext(ctx).Save(item).Error
}
