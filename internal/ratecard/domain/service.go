package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateGroupRequest struct {
	CustomerName string
	RegionCode   string
	ClientID     *snowflake.ID
	Actor        Actor
}

type CreateProfileRequest struct {
	GroupID   snowflake.ID
	Name      string
	Type      ProfileType
	IsDefault bool
	Actor     Actor
}

type DuplicateProfileRequest struct {
	SourceProfileID snowflake.ID
	Name            string
	Actor           Actor
}

type UpdateItemRequest struct {
	ItemID snowflake.ID
	Update ItemUpdate
	Actor  Actor
}

type BulkImportRequest struct {
	ProfileID snowflake.ID
	Rows      []ImportRow
	Actor     Actor
}

type Service interface {
	CreateGroup(ctx context.Context, req CreateGroupRequest) (*RateCardGroup, error)
	DeactivateGroup(ctx context.Context, groupID snowflake.ID, actor Actor) error
	GetGroup(ctx context.Context, groupID snowflake.ID) (*RateCardGroup, error)

	CreateProfile(ctx context.Context, req CreateProfileRequest) (*RateCardProfile, error)
	DuplicateProfile(ctx context.Context, req DuplicateProfileRequest) (*RateCardProfile, error)
	ListProfiles(ctx context.Context, groupID snowflake.ID) ([]RateCardProfile, error)

	ListItems(ctx context.Context, profileID snowflake.ID) ([]RateCardItem, error)
	UpdateItem(ctx context.Context, req UpdateItemRequest) (*RateCardItem, error)
	BulkImport(ctx context.Context, req BulkImportRequest) (*ImportSummary, error)
}
