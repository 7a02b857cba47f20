package models

import (
	"time"

	"gorm.io/gorm"
)

// Patient admission types.
const (
	PatientTypeIPD = "IPD"
	PatientTypeOPD = "OPD"
	PatientTypeACF = "ACF"
)

// Clinical conditions.
const (
	ConditionRecovered      = "RECOVERED"
	ConditionDied           = "DIED"
	ConditionUnderTreatment = "UNDER_TREATMENT"
)

// CaseReport is one report of a notifiable-disease case. ClientID is the
// client-generated idempotency token; the unique index on it is what makes
// re-uploading the same case after a dropped connection safe.
type CaseReport struct {
	ID       string  `gorm:"primaryKey;column:id;type:varchar(64)" json:"id"`
	ClientID *string `gorm:"column:client_id;type:varchar(36);uniqueIndex" json:"clientId,omitempty"`

	PatientID  string `gorm:"column:patient_id;type:varchar(64);not null;index" json:"patientId"`
	HospitalID int32  `gorm:"column:hospital_id;not null" json:"hospitalId"`
	DiseaseID  int32  `gorm:"column:disease_id;not null" json:"diseaseId"`

	IllnessDate   *time.Time `gorm:"column:illness_date;type:date" json:"illnessDate,omitempty"`
	TreatDate     *time.Time `gorm:"column:treat_date;type:date" json:"treatDate,omitempty"`
	DiagnosisDate *time.Time `gorm:"column:diagnosis_date;type:date" json:"diagnosisDate,omitempty"`

	PatientType  *string    `gorm:"column:patient_type;type:varchar(10)" json:"patientType,omitempty"`
	Condition    *string    `gorm:"column:condition;type:varchar(20)" json:"condition,omitempty"`
	DeathDate    *time.Time `gorm:"column:death_date;type:date" json:"deathDate,omitempty"`
	CauseOfDeath *string    `gorm:"column:cause_of_death;type:varchar(255)" json:"causeOfDeath,omitempty"`
	AgeYears     int32      `gorm:"column:age_years;not null" json:"ageYears"`

	// Address while sick, may differ from the patient's home address.
	SickAddressNo  *string `gorm:"column:sick_address_no;type:varchar(50)" json:"sickAddressNo,omitempty"`
	SickMoo        *string `gorm:"column:sick_moo;type:varchar(20)" json:"sickMoo,omitempty"`
	SickRoad       *string `gorm:"column:sick_road;type:varchar(100)" json:"sickRoad,omitempty"`
	SickProvinceID *int32  `gorm:"column:sick_province_id" json:"sickProvinceId,omitempty"`
	SickAmphoeID   *int32  `gorm:"column:sick_amphoe_id" json:"sickAmphoeId,omitempty"`
	SickTambonID   *int32  `gorm:"column:sick_tambon_id" json:"sickTambonId,omitempty"`

	ReporterName     *string `gorm:"column:reporter_name;type:varchar(100)" json:"reporterName,omitempty"`
	Remark           *string `gorm:"column:remark;type:text" json:"remark,omitempty"`
	TreatingHospital *string `gorm:"column:treating_hospital;type:varchar(255)" json:"treatingHospital,omitempty"`
	LabResult1       *string `gorm:"column:lab_result1;type:text" json:"labResult1,omitempty"`
	LabResult2       *string `gorm:"column:lab_result2;type:text" json:"labResult2,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (CaseReport) TableName() string {
	return "case_reports"
}

func (c *CaseReport) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}
