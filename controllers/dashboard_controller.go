package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sahayakseva/backend/eligibility"
	"sahayakseva/backend/utils"
)

// Dashboard greets the user by first name and lists eligible schemes for the
// ?category= tab.
func Dashboard(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := loadProfile(c, d)
		if !ok {
			return
		}
		list, err := d.Schemes.ListEligibleSchemes(c.Request.Context())
		if err != nil {
			d.Log.Error("list eligible schemes", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load eligible schemes"})
			return
		}
		view := eligibility.Derive(list, c.Query("category"))
		c.JSON(http.StatusOK, gin.H{
			"first_name": eligibility.FirstName(p.FullName),
			"profile":    p,
			"category":   view.Category,
			"schemes":    view.Schemes,
			"count":      view.Count,
			"tabs":       view.Tabs,
		})
	}
}

// ExportSchemes downloads the selected tab as a workbook.
func ExportSchemes(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := loadProfile(c, d); !ok {
			return
		}
		list, err := d.Schemes.ListEligibleSchemes(c.Request.Context())
		if err != nil {
			d.Log.Error("list eligible schemes", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load eligible schemes"})
			return
		}
		view := eligibility.Derive(list, c.Query("category"))
		buf, err := utils.SchemesWorkbook(view.Schemes, view.Tabs)
		if err != nil {
			d.Log.Error("build workbook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		name := "schemes.xlsx"
		if view.Count > 0 {
			name = "schemes-" + view.Category + ".xlsx"
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, utils.XLSXContentType, buf.Bytes())
	}
}
