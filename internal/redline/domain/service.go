package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Actor identifies the person driving a workflow step.
type Actor struct {
	ID   snowflake.ID
	Name string
}

type CreateRequest struct {
	GroupID     snowflake.ID
	ProfileID   snowflake.ID
	Label       string
	Summary     string
	Changes     []Change
	ExternalRef string
	Actor       Actor
}

type UpdateRequest struct {
	RedlineID snowflake.ID
	Label     *string
	Summary   *string
	Changes   []Change
	Actor     Actor
}

type ReviewRequest struct {
	RedlineID snowflake.ID
	Action    ReviewAction
	Notes     string
	Reviewer  Actor
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Redline, error)
	// Update edits label, summary or changes; only drafts are editable.
	Update(ctx context.Context, req UpdateRequest) (*Redline, error)
	Submit(ctx context.Context, redlineID snowflake.ID, actor Actor) (*Redline, error)
	Review(ctx context.Context, req ReviewRequest) (*Redline, error)
	// Apply writes the approved changes into the live rate card items
	// and moves the redline to applied.
	Apply(ctx context.Context, redlineID snowflake.ID, actor Actor) (*Redline, error)

	Get(ctx context.Context, redlineID snowflake.ID) (*Redline, error)
	ListByProfile(ctx context.Context, profileID snowflake.ID) ([]Redline, error)
	ListReviews(ctx context.Context, redlineID snowflake.ID) ([]Review, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, redline *Redline) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Redline, error)
	ListByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) ([]Redline, error)
	MaxVersion(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (int, error)
	// CountOpenByProfile counts in-flight redlines (pending review or
	// approved but unapplied) other than excludeID. Parallel drafts
	// are allowed; only one redline may be in flight at a time.
	CountOpenByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID, excludeID snowflake.ID) (int64, error)

	// TransitionStatus is the conditional write keyed on the expected
	// current status; returns rows affected.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status, fields map[string]any) (int64, error)
	// UpdateDraft applies editable-field changes only while the
	// redline is still a draft.
	UpdateDraft(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) (int64, error)

	InsertReview(ctx context.Context, db *gorm.DB, review *Review) error
	ListReviews(ctx context.Context, db *gorm.DB, redlineID snowflake.ID) ([]Review, error)
}
