package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vbdreport.org/vbdreport/core"
	"vbdreport.org/vbdreport/core/models"
	"vbdreport.org/vbdreport/web/common"
)

// SyncPatientHandler uploads one queued patient. Patients are matched by
// national id card when present; the first synced write wins and later
// demographic edits are not merged. Patients without an id card are always
// created new since there is no dedup key.
func SyncPatientHandler(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncPatientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, SyncErrorResponse{Error: common.FormatBindingError(err)})
			return
		}

		ctx := c.Request.Context()

		if req.IDCard != nil && *req.IDCard != "" {
			var existing models.Patient
			err := dm.Exec(ctx, func(db *gorm.DB) error {
				return db.First(&existing, "id_card = ?", *req.IDCard).Error
			})
			if err == nil {
				c.JSON(http.StatusOK, SyncPatientResponse{
					Success:   true,
					PatientID: existing.ID,
					Message:   "Patient already exists",
				})
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, SyncErrorResponse{Error: err.Error()})
				return
			}
		}

		patient := patientFromRequest(&req)
		err := dm.Exec(ctx, func(db *gorm.DB) error {
			return db.Create(patient).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) && req.IDCard != nil {
				// Concurrent double-send of the same id card; return the row
				// that won.
				var existing models.Patient
				if ferr := dm.Exec(ctx, func(db *gorm.DB) error {
					return db.First(&existing, "id_card = ?", *req.IDCard).Error
				}); ferr == nil {
					c.JSON(http.StatusOK, SyncPatientResponse{
						Success:   true,
						PatientID: existing.ID,
						Message:   "Patient already exists",
					})
					return
				}
			}
			c.JSON(http.StatusInternalServerError, SyncErrorResponse{Error: err.Error()})
			return
		}

		c.JSON(http.StatusOK, SyncPatientResponse{Success: true, PatientID: patient.ID})
	}
}

func patientFromRequest(req *SyncPatientRequest) *models.Patient {
	nationality := req.Nationality
	if nationality == "" {
		nationality = "ไทย"
	}

	patient := &models.Patient{
		Prefix:        req.Prefix,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Gender:        req.Gender,
		BirthDate:     dateValue(req.BirthDate),
		Nationality:   nationality,
		MaritalStatus: req.MaritalStatus,
		Occupation:    req.Occupation,
		Phone:         req.Phone,
		AddressNo:     req.AddressNo,
		Moo:           req.Moo,
		Road:          req.Road,
		ProvinceID:    req.ProvinceID,
		AmphoeID:      req.AmphoeID,
		TambonID:      req.TambonID,
	}
	if req.IDCard != nil && *req.IDCard != "" {
		patient.IDCard = req.IDCard
	}
	return patient
}
