package handlers

import (
	"time"

	"vbdreport.org/vbdreport/core/models"
	"vbdreport.org/vbdreport/web/common"
)

// SyncCaseRequest is the payload a device uploads for one queued case.
// ClientID is the idempotency token generated at first save on the device;
// UpdatedAt is present only when the record is an edit of an already-synced
// case and carries the client's belief of the last-known server state.
type SyncCaseRequest struct {
	ClientID   string `json:"clientId" binding:"omitempty,uuid"`
	PatientID  string `json:"patientId" binding:"required"`
	HospitalID int32  `json:"hospitalId" binding:"required"`
	DiseaseID  int32  `json:"diseaseId" binding:"required"`

	IllnessDate   *common.DateOnly `json:"illnessDate" binding:"required"`
	TreatDate     *common.DateOnly `json:"treatDate"`
	DiagnosisDate *common.DateOnly `json:"diagnosisDate"`

	PatientType  *string          `json:"patientType" binding:"omitempty,oneof=IPD OPD ACF"`
	Condition    *string          `json:"condition" binding:"omitempty,oneof=RECOVERED DIED UNDER_TREATMENT"`
	DeathDate    *common.DateOnly `json:"deathDate"`
	CauseOfDeath *string          `json:"causeOfDeath"`
	AgeYears     int32            `json:"ageYears" binding:"gte=0"`

	SickAddressNo  *string `json:"sickAddressNo"`
	SickMoo        *string `json:"sickMoo"`
	SickRoad       *string `json:"sickRoad"`
	SickProvinceID *int32  `json:"sickProvinceId"`
	SickAmphoeID   *int32  `json:"sickAmphoeId"`
	SickTambonID   *int32  `json:"sickTambonId"`

	ReporterName     *string `json:"reporterName"`
	Remark           *string `json:"remark"`
	TreatingHospital *string `json:"treatingHospital"`
	LabResult1       *string `json:"labResult1"`
	LabResult2       *string `json:"labResult2"`

	UpdatedAt *time.Time `json:"updatedAt"`
}

type SyncCaseResponse struct {
	Success bool   `json:"success"`
	CaseID  string `json:"caseId"`
	Message string `json:"message,omitempty"`
}

type SyncConflictResponse struct {
	Error           string    `json:"error"`
	Message         string    `json:"message"`
	CaseID          string    `json:"caseId"`
	ServerUpdatedAt time.Time `json:"serverUpdatedAt"`
	ClientUpdatedAt time.Time `json:"clientUpdatedAt"`
}

type SyncErrorResponse struct {
	Error string `json:"error"`
}

type SyncPatientRequest struct {
	IDCard *string `json:"idCard" binding:"omitempty,len=13,numeric"`

	Prefix        *string          `json:"prefix"`
	FirstName     string           `json:"firstName" binding:"required"`
	LastName      string           `json:"lastName" binding:"required"`
	Gender        string           `json:"gender" binding:"required,oneof=MALE FEMALE"`
	BirthDate     *common.DateOnly `json:"birthDate"`
	Nationality   string           `json:"nationality"`
	MaritalStatus *string          `json:"maritalStatus"`
	Occupation    *string          `json:"occupation"`
	Phone         *string          `json:"phone"`

	AddressNo  *string `json:"addressNo"`
	Moo        *string `json:"moo"`
	Road       *string `json:"road"`
	ProvinceID *int32  `json:"provinceId"`
	AmphoeID   *int32  `json:"amphoeId"`
	TambonID   *int32  `json:"tambonId"`
}

type SyncPatientResponse struct {
	Success   bool   `json:"success"`
	PatientID string `json:"patientId"`
	Message   string `json:"message,omitempty"`
}

type ReferenceDataResponse struct {
	MasterData []models.MasterData `json:"masterData"`
	Diseases   []models.Disease    `json:"diseases"`
	Hospitals  []models.Hospital   `json:"hospitals"`
	Provinces  []models.Province   `json:"provinces"`
	Amphoes    []models.Amphoe     `json:"amphoes"`
	Tambons    []models.Tambon     `json:"tambons"`
}

func dateValue(d *common.DateOnly) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
