package v1

import (
	"context"
	"encoding/json"
)

// Reference rows as served by the reference-data pull. Keyed by server id.

type MasterDataDTO struct {
	ID       int32  `json:"id"`
	Category string `json:"category"`
	Value    string `json:"value"`
}

type DiseaseDTO struct {
	ID           int32  `json:"id"`
	Code         string `json:"code"`
	NameTh       string `json:"nameTh"`
	NameEn       string `json:"nameEn,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	IsActive     bool   `json:"isActive"`
}

type HospitalDTO struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	Code9    string `json:"code9,omitempty"`
	Code9New string `json:"code9New,omitempty"`
	Code5    string `json:"code5,omitempty"`
	Type     string `json:"type,omitempty"`
}

type ProvinceDTO struct {
	ID     int32  `json:"id"`
	Code   string `json:"code"`
	NameTh string `json:"nameTh"`
}

type AmphoeDTO struct {
	ID         int32  `json:"id"`
	Code       string `json:"code"`
	NameTh     string `json:"nameTh"`
	ProvinceID int32  `json:"provinceId"`
}

type TambonDTO struct {
	ID       int32  `json:"id"`
	Code     string `json:"code"`
	NameTh   string `json:"nameTh"`
	AmphoeID int32  `json:"amphoeId"`
}

// ReferenceData is the full lookup-table snapshot a device mirrors locally.
type ReferenceData struct {
	MasterData []MasterDataDTO `json:"masterData"`
	Diseases   []DiseaseDTO    `json:"diseases"`
	Hospitals  []HospitalDTO   `json:"hospitals"`
	Provinces  []ProvinceDTO   `json:"provinces"`
	Amphoes    []AmphoeDTO     `json:"amphoes"`
	Tambons    []TambonDTO     `json:"tambons"`
}

type ReferenceEndpoint struct {
	transport *Transport
}

// Fetch pulls the current snapshot of all reference tables.
func (e *ReferenceEndpoint) Fetch(ctx context.Context) (*ReferenceData, error) {
	data, err := e.transport.Get(ctx, "/api/reference-data", nil)
	if err != nil {
		return nil, err
	}

	var result ReferenceData
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
