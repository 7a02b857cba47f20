package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vbdreport.org/vbdreport/core"
	"vbdreport.org/vbdreport/web/common"
)

// ReferenceDataHandler returns the full current snapshot of the lookup
// tables devices mirror for offline form population. No delta protocol;
// clients bulk-replace their cache on every pull.
func ReferenceDataHandler(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var resp ReferenceDataResponse

		err := dm.Exec(c.Request.Context(), func(db *gorm.DB) error {
			if err := db.Find(&resp.MasterData).Error; err != nil {
				return err
			}
			if err := db.Where("is_active = ?", true).Find(&resp.Diseases).Error; err != nil {
				return err
			}
			if err := db.Find(&resp.Hospitals).Error; err != nil {
				return err
			}
			if err := db.Find(&resp.Provinces).Error; err != nil {
				return err
			}
			if err := db.Find(&resp.Amphoes).Error; err != nil {
				return err
			}
			return db.Find(&resp.Tambons).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}
