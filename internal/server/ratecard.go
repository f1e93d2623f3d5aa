package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	"github.com/shopspring/decimal"
)

type actorPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (a actorPayload) toDomain() (ratecarddomain.Actor, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(a.ID))
	if err != nil {
		return ratecarddomain.Actor{}, ErrInvalidRequest
	}
	return ratecarddomain.Actor{ID: id, Name: a.Name, Role: a.Role}, nil
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}

type createGroupRequest struct {
	CustomerName string       `json:"customer_name"`
	RegionCode   string       `json:"region_code"`
	ClientID     *string      `json:"client_id"`
	Actor        actorPayload `json:"actor"`
}

func (s *Server) CreateRateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	actor, err := req.Actor.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var clientID *snowflake.ID
	if req.ClientID != nil {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.ClientID))
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		clientID = &id
	}

	group, err := s.ratecardSvc.CreateGroup(c.Request.Context(), ratecarddomain.CreateGroupRequest{
		CustomerName: strings.TrimSpace(req.CustomerName),
		RegionCode:   strings.TrimSpace(req.RegionCode),
		ClientID:     clientID,
		Actor:        actor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, group)
}

func (s *Server) GetRateGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	group, err := s.ratecardSvc.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, group)
}

func (s *Server) DeactivateRateGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Actor actorPayload `json:"actor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	actor, err := req.Actor.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.ratecardSvc.DeactivateGroup(c.Request.Context(), groupID, actor); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"deactivated": true})
}

type createProfileRequest struct {
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	IsDefault bool         `json:"is_default"`
	Actor     actorPayload `json:"actor"`
}

func (s *Server) CreateProfile(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	actor, err := req.Actor.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.ratecardSvc.CreateProfile(c.Request.Context(), ratecarddomain.CreateProfileRequest{
		GroupID:   groupID,
		Name:      strings.TrimSpace(req.Name),
		Type:      ratecarddomain.ProfileType(req.Type),
		IsDefault: req.IsDefault,
		Actor:     actor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, profile)
}

func (s *Server) ListProfiles(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	profiles, err := s.ratecardSvc.ListProfiles(c.Request.Context(), groupID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, profiles)
}

type duplicateProfileRequest struct {
	Name  string       `json:"name"`
	Actor actorPayload `json:"actor"`
}

func (s *Server) DuplicateProfile(c *gin.Context) {
	profileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req duplicateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	actor, err := req.Actor.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.ratecardSvc.DuplicateProfile(c.Request.Context(), ratecarddomain.DuplicateProfileRequest{
		SourceProfileID: profileID,
		Name:            strings.TrimSpace(req.Name),
		Actor:           actor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, profile)
}

func (s *Server) ListItems(c *gin.Context) {
	profileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := s.ratecardSvc.ListItems(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, items)
}

type updateItemRequest struct {
	Description  *string      `json:"description"`
	Unit         *string      `json:"unit"`
	CompanyRate  *string      `json:"company_rate"`
	WorkerRate   *string      `json:"worker_rate"`
	InvestorRate *string      `json:"investor_rate"`
	Actor        actorPayload `json:"actor"`
}

func (s *Server) UpdateItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	actor, err := req.Actor.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	update := ratecarddomain.ItemUpdate{Description: req.Description}
	if req.Unit != nil {
		unit := ratecarddomain.Unit(*req.Unit)
		update.Unit = &unit
	}
	for _, pair := range []struct {
		raw  *string
		dest **decimal.Decimal
	}{
		{req.CompanyRate, &update.CompanyRate},
		{req.WorkerRate, &update.WorkerRate},
		{req.InvestorRate, &update.InvestorRate},
	} {
		if pair.raw == nil {
			continue
		}
		rate, err := decimal.NewFromString(*pair.raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		*pair.dest = &rate
	}

	item, err := s.ratecardSvc.UpdateItem(c.Request.Context(), ratecarddomain.UpdateItemRequest{
		ItemID: itemID,
		Update: update,
		Actor:  actor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, item)
}

type importRowPayload struct {
	Code         string `json:"code"`
	Description  string `json:"description"`
	Unit         string `json:"unit"`
	CompanyRate  string `json:"company_rate"`
	WorkerRate   string `json:"worker_rate"`
	InvestorRate string `json:"investor_rate"`
}

type bulkImportRequest struct {
	Rows  []importRowPayload `json:"rows"`
	Actor actorPayload       `json:"actor"`
}

func (s *Server) BulkImportRates(c *gin.Context) {
	profileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req bulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	actor, err := req.Actor.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows := make([]ratecarddomain.ImportRow, 0, len(req.Rows))
	for _, raw := range req.Rows {
		row := ratecarddomain.ImportRow{
			Code:        strings.TrimSpace(raw.Code),
			Description: raw.Description,
			Unit:        ratecarddomain.Unit(raw.Unit),
		}
		var err error
		if row.CompanyRate, err = decimal.NewFromString(raw.CompanyRate); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		if row.WorkerRate, err = decimal.NewFromString(raw.WorkerRate); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		if row.InvestorRate, err = decimal.NewFromString(raw.InvestorRate); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		rows = append(rows, row)
	}

	summary, err := s.ratecardSvc.BulkImport(c.Request.Context(), ratecarddomain.BulkImportRequest{
		ProfileID: profileID,
		Rows:      rows,
		Actor:     actor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, summary)
}
