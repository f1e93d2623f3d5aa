package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	redlinedomain "github.com/groundworklabs/groundwork/internal/redline/domain"
)

type redlineChangePayload struct {
	Code  string `json:"code"`
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

func toChanges(payload []redlineChangePayload) []redlinedomain.Change {
	changes := make([]redlinedomain.Change, 0, len(payload))
	for _, p := range payload {
		changes = append(changes, redlinedomain.Change{
			Code:  strings.TrimSpace(p.Code),
			Field: p.Field,
			Old:   p.Old,
			New:   p.New,
		})
	}
	return changes
}

func redlineActor(a actorPayload) (redlinedomain.Actor, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(a.ID))
	if err != nil {
		return redlinedomain.Actor{}, ErrInvalidRequest
	}
	return redlinedomain.Actor{ID: id, Name: a.Name}, nil
}

type createRedlineRequest struct {
	GroupID     string                 `json:"group_id"`
	ProfileID   string                 `json:"profile_id"`
	Label       string                 `json:"label"`
	Summary     string                 `json:"summary"`
	Changes     []redlineChangePayload `json:"changes"`
	ExternalRef string                 `json:"external_ref"`
	Actor       actorPayload           `json:"actor"`
}

func (s *Server) CreateRedline(c *gin.Context) {
	var req createRedlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	groupID, err := snowflake.ParseString(strings.TrimSpace(req.GroupID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	profileID, err := snowflake.ParseString(strings.TrimSpace(req.ProfileID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	actor, err := redlineActor(req.Actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	redline, err := s.redlineSvc.Create(c.Request.Context(), redlinedomain.CreateRequest{
		GroupID:     groupID,
		ProfileID:   profileID,
		Label:       strings.TrimSpace(req.Label),
		Summary:     req.Summary,
		Changes:     toChanges(req.Changes),
		ExternalRef: strings.TrimSpace(req.ExternalRef),
		Actor:       actor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, redline)
}

type updateRedlineRequest struct {
	Label   *string                `json:"label"`
	Summary *string                `json:"summary"`
	Changes []redlineChangePayload `json:"changes"`
	Actor   actorPayload           `json:"actor"`
}

func (s *Server) UpdateRedline(c *gin.Context) {
	redlineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateRedlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	actor, err := redlineActor(req.Actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	update := redlinedomain.UpdateRequest{
		RedlineID: redlineID,
		Label:     req.Label,
		Summary:   req.Summary,
		Actor:     actor,
	}
	if req.Changes != nil {
		update.Changes = toChanges(req.Changes)
	}

	redline, err := s.redlineSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, redline)
}

func (s *Server) SubmitRedline(c *gin.Context) {
	redlineID, ok := parseIDParam(c, "id")
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
	actor, err := redlineActor(req.Actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	redline, err := s.redlineSvc.Submit(c.Request.Context(), redlineID, actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, redline)
}

type reviewRedlineRequest struct {
	Action string       `json:"action"`
	Notes  string       `json:"notes"`
	Actor  actorPayload `json:"actor"`
}

func (s *Server) ReviewRedline(c *gin.Context) {
	redlineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reviewRedlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	reviewer, err := redlineActor(req.Actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	redline, err := s.redlineSvc.Review(c.Request.Context(), redlinedomain.ReviewRequest{
		RedlineID: redlineID,
		Action:    redlinedomain.ReviewAction(req.Action),
		Notes:     req.Notes,
		Reviewer:  reviewer,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, redline)
}

func (s *Server) ApplyRedline(c *gin.Context) {
	redlineID, ok := parseIDParam(c, "id")
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
	actor, err := redlineActor(req.Actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	redline, err := s.redlineSvc.Apply(c.Request.Context(), redlineID, actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, redline)
}

func (s *Server) GetRedline(c *gin.Context) {
	redlineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	redline, err := s.redlineSvc.Get(c.Request.Context(), redlineID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, redline)
}

func (s *Server) ListRedlinesByProfile(c *gin.Context) {
	profileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	redlines, err := s.redlineSvc.ListByProfile(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, redlines)
}

func (s *Server) ListRedlineReviews(c *gin.Context) {
	redlineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reviews, err := s.redlineSvc.ListReviews(c.Request.Context(), redlineID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, reviews)
}
