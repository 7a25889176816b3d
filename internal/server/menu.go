package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	menudomain "github.com/smallbiznis/mensaplan/internal/menu/domain"
)

func (s *Server) ListAllergens(c *gin.Context) {
	allergens, err := s.menuSvc.ListAllergens(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": allergens})
}

func (s *Server) GetAllergen(c *gin.Context) {
	allergen, err := s.menuSvc.GetAllergen(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": allergen})
}

func (s *Server) ListSupplements(c *gin.Context) {
	supplements, err := s.menuSvc.ListSupplements(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": supplements})
}

func (s *Server) GetSupplement(c *gin.Context) {
	supplement, err := s.menuSvc.GetSupplement(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": supplement})
}

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.menuSvc.ListCategories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (s *Server) ListMeals(c *gin.Context) {
	pageSize, err := parseOptionalInt(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page_size"))
		return
	}

	req := menudomain.ListMealsRequest{PageToken: c.Query("page_token")}
	if pageSize != nil {
		req.PageSize = *pageSize
	}

	resp, err := s.menuSvc.ListMeals(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Meals,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) GetMeal(c *gin.Context) {
	meal, err := s.menuSvc.GetMeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": meal})
}

func (s *Server) GetDayPlan(c *gin.Context) {
	entries, err := s.menuSvc.DayPlan(c.Request.Context(), c.Param("date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) ListPlans(c *gin.Context) {
	days, err := s.menuSvc.RangePlan(c.Request.Context(), menudomain.RangeRequest{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": days})
}

func (s *Server) ListDays(c *gin.Context) {
	days, err := s.menuSvc.ListDays(c.Request.Context(), c.Query("from"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": days})
}

func (s *Server) GetDay(c *gin.Context) {
	day, err := s.menuSvc.GetDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": day})
}
