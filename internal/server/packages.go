package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listPackages(c *gin.Context) {
	packages, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

func (s *Server) getPackage(c *gin.Context) {
	pkg, err := s.catalogSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}
