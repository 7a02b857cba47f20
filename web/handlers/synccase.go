package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vbdreport.org/vbdreport/core"
	"vbdreport.org/vbdreport/core/models"
	"vbdreport.org/vbdreport/web/common"
)

// looksLikeOfflineID reports whether id is a client-generated offline UUID
// rather than a server-assigned id. Server ids never contain hyphens.
func looksLikeOfflineID(id string) bool {
	return len(id) == 36 && strings.Count(id, "-") == 4
}

// SyncCaseHandler is the idempotent case upload endpoint. Dedup is by the
// client-generated clientId (unique server-side); updates are applied with a
// conditional write so a stale client gets 409 instead of overwriting newer
// server data.
func SyncCaseHandler(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncCaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, SyncErrorResponse{Error: common.FormatBindingError(err)})
			return
		}

		// An empty string binds to a non-nil zero date, which the required
		// tag does not catch.
		if req.IllnessDate == nil || req.IllnessDate.IsZero() {
			c.JSON(http.StatusBadRequest, SyncErrorResponse{Error: "Field 'illnessDate' is required"})
			return
		}

		// The patient must already be server-side. A raw offline UUID means
		// the device skipped the patients-first ordering.
		if looksLikeOfflineID(req.PatientID) {
			c.JSON(http.StatusBadRequest, SyncErrorResponse{Error: "Patient not synced yet. Please sync patients first."})
			return
		}

		ctx := c.Request.Context()

		var patient models.Patient
		if err := dm.Exec(ctx, func(db *gorm.DB) error {
			return db.First(&patient, "id = ?", req.PatientID).Error
		}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, SyncErrorResponse{Error: "Patient not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, SyncErrorResponse{Error: err.Error()})
			return
		}

		if req.ClientID != "" {
			var existing models.CaseReport
			err := dm.Exec(ctx, func(db *gorm.DB) error {
				return db.First(&existing, "client_id = ?", req.ClientID).Error
			})
			switch {
			case err == nil:
				if req.UpdatedAt == nil {
					// Duplicate CREATE replay. No write.
					c.JSON(http.StatusOK, SyncCaseResponse{
						Success: true,
						CaseID:  existing.ID,
						Message: "Case already exists (duplicate clientId prevented)",
					})
					return
				}
				applyCaseUpdate(c, dm, &existing, &req, patient.ID)
				return
			case !errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(http.StatusInternalServerError, SyncErrorResponse{Error: err.Error()})
				return
			}
		} else {
			// Legacy path: no clientId, fall back to a heuristic duplicate
			// check by patient + illness date + disease.
			var existing models.CaseReport
			err := dm.Exec(ctx, func(db *gorm.DB) error {
				q := db.Where("patient_id = ? AND disease_id = ?", patient.ID, req.DiseaseID)
				if d := dateValue(req.IllnessDate); d != nil {
					q = q.Where("illness_date = ?", *d)
				}
				return q.First(&existing).Error
			})
			if err == nil {
				c.JSON(http.StatusOK, SyncCaseResponse{Success: true, CaseID: existing.ID, Message: "Case already exists"})
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, SyncErrorResponse{Error: err.Error()})
				return
			}
		}

		report := caseFromRequest(&req, patient.ID)
		err := dm.Exec(ctx, func(db *gorm.DB) error {
			return db.Create(report).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) && req.ClientID != "" {
				// Lost a create race against a concurrent replay of the same
				// clientId. The winner's row is the answer.
				var existing models.CaseReport
				if ferr := dm.Exec(ctx, func(db *gorm.DB) error {
					return db.First(&existing, "client_id = ?", req.ClientID).Error
				}); ferr == nil {
					c.JSON(http.StatusOK, SyncCaseResponse{
						Success: true,
						CaseID:  existing.ID,
						Message: "Case already exists (duplicate clientId prevented)",
					})
					return
				}
			}
			c.JSON(http.StatusInternalServerError, SyncErrorResponse{Error: err.Error()})
			return
		}

		c.JSON(http.StatusOK, SyncCaseResponse{Success: true, CaseID: report.ID})
	}
}

// applyCaseUpdate performs the edit-replay path: a single conditional UPDATE
// so the compare against the server's last-modified timestamp and the write
// are atomic relative to concurrent updates of the same case.
func applyCaseUpdate(c *gin.Context, dm *core.DatabaseManager, existing *models.CaseReport, req *SyncCaseRequest, patientID string) {
	ctx := c.Request.Context()

	var rowsAffected int64
	err := dm.Exec(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.CaseReport{}).
			Where("id = ? AND updated_at <= ?", existing.ID, *req.UpdatedAt).
			Updates(caseUpdateValues(req, patientID))
		rowsAffected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, SyncErrorResponse{Error: err.Error()})
		return
	}

	if rowsAffected == 0 {
		// Server has newer data. Re-read for the current server timestamp.
		serverUpdatedAt := existing.UpdatedAt
		var current models.CaseReport
		if ferr := dm.Exec(ctx, func(db *gorm.DB) error {
			return db.First(&current, "id = ?", existing.ID).Error
		}); ferr == nil {
			serverUpdatedAt = current.UpdatedAt
		}
		c.JSON(http.StatusConflict, SyncConflictResponse{
			Error:           "Conflict: Server has newer data",
			Message:         "The case has been modified on the server since your last sync. Please refresh and try again.",
			CaseID:          existing.ID,
			ServerUpdatedAt: serverUpdatedAt,
			ClientUpdatedAt: *req.UpdatedAt,
		})
		return
	}

	c.JSON(http.StatusOK, SyncCaseResponse{Success: true, CaseID: existing.ID, Message: "Case updated successfully"})
}

func caseFromRequest(req *SyncCaseRequest, patientID string) *models.CaseReport {
	report := &models.CaseReport{
		PatientID:        patientID,
		HospitalID:       req.HospitalID,
		DiseaseID:        req.DiseaseID,
		IllnessDate:      dateValue(req.IllnessDate),
		TreatDate:        dateValue(req.TreatDate),
		DiagnosisDate:    dateValue(req.DiagnosisDate),
		PatientType:      req.PatientType,
		Condition:        req.Condition,
		DeathDate:        dateValue(req.DeathDate),
		CauseOfDeath:     req.CauseOfDeath,
		AgeYears:         req.AgeYears,
		SickAddressNo:    req.SickAddressNo,
		SickMoo:          req.SickMoo,
		SickRoad:         req.SickRoad,
		SickProvinceID:   req.SickProvinceID,
		SickAmphoeID:     req.SickAmphoeID,
		SickTambonID:     req.SickTambonID,
		ReporterName:     req.ReporterName,
		Remark:           req.Remark,
		TreatingHospital: req.TreatingHospital,
		LabResult1:       req.LabResult1,
		LabResult2:       req.LabResult2,
	}
	if req.ClientID != "" {
		clientID := req.ClientID
		report.ClientID = &clientID
	}
	return report
}

func caseUpdateValues(req *SyncCaseRequest, patientID string) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":        patientID,
		"hospital_id":       req.HospitalID,
		"disease_id":        req.DiseaseID,
		"illness_date":      dateValue(req.IllnessDate),
		"treat_date":        dateValue(req.TreatDate),
		"diagnosis_date":    dateValue(req.DiagnosisDate),
		"patient_type":      req.PatientType,
		"condition":         req.Condition,
		"death_date":        dateValue(req.DeathDate),
		"cause_of_death":    req.CauseOfDeath,
		"age_years":         req.AgeYears,
		"sick_address_no":   req.SickAddressNo,
		"sick_moo":          req.SickMoo,
		"sick_road":         req.SickRoad,
		"sick_province_id":  req.SickProvinceID,
		"sick_amphoe_id":    req.SickAmphoeID,
		"sick_tambon_id":    req.SickTambonID,
		"reporter_name":     req.ReporterName,
		"remark":            req.Remark,
		"treating_hospital": req.TreatingHospital,
		"lab_result1":       req.LabResult1,
		"lab_result2":       req.LabResult2,
		"updated_at":        time.Now(),
	}
}
