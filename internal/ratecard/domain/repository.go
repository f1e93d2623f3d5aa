package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertGroup(ctx context.Context, db *gorm.DB, group *RateCardGroup) error
	FindGroupByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RateCardGroup, error)
	FindActiveGroupByClient(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (*RateCardGroup, error)
	FindActiveGroupByCustomerRegion(ctx context.Context, db *gorm.DB, customer, region string) (*RateCardGroup, error)
	UpdateGroupActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error

	InsertProfile(ctx context.Context, db *gorm.DB, profile *RateCardProfile) error
	FindProfileByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RateCardProfile, error)
	ListProfilesByGroup(ctx context.Context, db *gorm.DB, groupID snowflake.ID) ([]RateCardProfile, error)
	FindDefaultProfile(ctx context.Context, db *gorm.DB, groupID snowflake.ID) (*RateCardProfile, error)
	ClearDefaultProfile(ctx context.Context, db *gorm.DB, groupID snowflake.ID) error

	InsertItems(ctx context.Context, db *gorm.DB, items []RateCardItem) error
	FindItemByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RateCardItem, error)
	FindActiveItemByCode(ctx context.Context, db *gorm.DB, profileID snowflake.ID, code string) (*RateCardItem, error)
	ListActiveItems(ctx context.Context, db *gorm.DB, profileID snowflake.ID) ([]RateCardItem, error)
	ListActiveItemsByCodes(ctx context.Context, db *gorm.DB, profileID snowflake.ID, codes []string) ([]RateCardItem, error)
	UpdateItem(ctx context.Context, db *gorm.DB, item *RateCardItem) error
}
