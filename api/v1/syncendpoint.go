package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// CaseSyncDTO is the upload payload for one queued case. Date fields are
// yyyy-MM-dd strings; UpdatedAt is RFC3339 and present only when the record
// is an edit of an already-synced case.
type CaseSyncDTO struct {
	ClientID   string `json:"clientId,omitempty"`
	PatientID  string `json:"patientId"`
	HospitalID int32  `json:"hospitalId"`
	DiseaseID  int32  `json:"diseaseId"`

	IllnessDate   string `json:"illnessDate"`
	TreatDate     string `json:"treatDate,omitempty"`
	DiagnosisDate string `json:"diagnosisDate,omitempty"`

	PatientType  string `json:"patientType,omitempty"`
	Condition    string `json:"condition,omitempty"`
	DeathDate    string `json:"deathDate,omitempty"`
	CauseOfDeath string `json:"causeOfDeath,omitempty"`
	AgeYears     int32  `json:"ageYears"`

	SickAddressNo  string `json:"sickAddressNo,omitempty"`
	SickMoo        string `json:"sickMoo,omitempty"`
	SickRoad       string `json:"sickRoad,omitempty"`
	SickProvinceID *int32 `json:"sickProvinceId,omitempty"`
	SickAmphoeID   *int32 `json:"sickAmphoeId,omitempty"`
	SickTambonID   *int32 `json:"sickTambonId,omitempty"`

	ReporterName     string `json:"reporterName,omitempty"`
	Remark           string `json:"remark,omitempty"`
	TreatingHospital string `json:"treatingHospital,omitempty"`
	LabResult1       string `json:"labResult1,omitempty"`
	LabResult2       string `json:"labResult2,omitempty"`

	UpdatedAt string `json:"updatedAt,omitempty"`
}

type PatientSyncDTO struct {
	IDCard *string `json:"idCard,omitempty"`

	Prefix        string `json:"prefix,omitempty"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Gender        string `json:"gender"`
	BirthDate     string `json:"birthDate,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
	Occupation    string `json:"occupation,omitempty"`
	Phone         string `json:"phone,omitempty"`

	AddressNo  string `json:"addressNo,omitempty"`
	Moo        string `json:"moo,omitempty"`
	Road       string `json:"road,omitempty"`
	ProvinceID *int32 `json:"provinceId,omitempty"`
	AmphoeID   *int32 `json:"amphoeId,omitempty"`
	TambonID   *int32 `json:"tambonId,omitempty"`
}

type CaseSyncResult struct {
	Success bool   `json:"success"`
	CaseID  string `json:"caseId"`
	Message string `json:"message,omitempty"`
}

type PatientSyncResult struct {
	Success   bool   `json:"success"`
	PatientID string `json:"patientId"`
	Message   string `json:"message,omitempty"`
}

// ConflictInfo is the decoded body of a 409 response.
type ConflictInfo struct {
	Error           string `json:"error"`
	Message         string `json:"message"`
	CaseID          string `json:"caseId"`
	ServerUpdatedAt string `json:"serverUpdatedAt"`
	ClientUpdatedAt string `json:"clientUpdatedAt"`
}

// AsConflict extracts conflict details when err is a 409 StatusError.
func AsConflict(err error) (*ConflictInfo, bool) {
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusConflict {
		return nil, false
	}
	var info ConflictInfo
	if jerr := json.Unmarshal(se.Body, &info); jerr != nil {
		return nil, false
	}
	return &info, true
}

type SyncEndpoint struct {
	transport *Transport
}

func (e *SyncEndpoint) PushCase(ctx context.Context, dto *CaseSyncDTO) (*CaseSyncResult, error) {
	data, err := e.transport.Post(ctx, "/api/sync/case", dto, nil)
	if err != nil {
		return nil, err
	}

	var result CaseSyncResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (e *SyncEndpoint) PushPatient(ctx context.Context, dto *PatientSyncDTO) (*PatientSyncResult, error) {
	data, err := e.transport.Post(ctx, "/api/sync/patient", dto, nil)
	if err != nil {
		return nil, err
	}

	var result PatientSyncResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
