package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) ListCustomers(c *gin.Context) {
	if s.referenceSvc == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	customers, err := s.referenceSvc.ListCustomers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, customers)
}

func (s *Server) ListRateCodes(c *gin.Context) {
	if s.referenceSvc == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	profileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	codes, err := s.referenceSvc.ListRateCodes(c.Request.Context(), profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, codes)
}
