package store

import "time"

// SyncStatus is the local lifecycle of a queued case: created pending,
// syncing while an upload is in flight, deleted on confirmation. Synced
// exists only for records backfilled from the v1 boolean schema.
type SyncStatus string

const (
	StatusPending SyncStatus = "pending"
	StatusSyncing SyncStatus = "syncing"
	StatusSynced  SyncStatus = "synced"
)

// LocalCase is one queued case report. ClientID is generated once at first
// save and never regenerated; it carries across retries. PatientID may be a
// local patient UUID until that patient syncs, after which it is relinked to
// the server id. Date fields are yyyy-MM-dd strings as entered on the form.
type LocalCase struct {
	LocalID    string
	ClientID   string
	PatientID  string
	HospitalID int32
	DiseaseID  int32

	IllnessDate   string
	TreatDate     string
	DiagnosisDate string

	PatientType  string
	Condition    string
	DeathDate    string
	CauseOfDeath string
	AgeYears     int32

	SickAddressNo  string
	SickMoo        string
	SickRoad       string
	SickProvinceID *int32
	SickAmphoeID   *int32
	SickTambonID   *int32

	ReporterName     string
	Remark           string
	TreatingHospital string
	LabResult1       string
	LabResult2       string

	SyncStatus SyncStatus
	CreatedAt  time.Time

	// UpdatedAt is set only when this record edits an already-synced case;
	// its presence tells the server the upload is an UPDATE, not a CREATE.
	UpdatedAt *time.Time
}

// LocalPatient is one queued patient record. Pruned once the server
// confirms creation or linkage.
type LocalPatient struct {
	LocalID string
	IDCard  string

	Prefix        string
	FirstName     string
	LastName      string
	Gender        string
	BirthDate     string
	Nationality   string
	MaritalStatus string
	Occupation    string
	Phone         string

	AddressNo  string
	Moo        string
	Road       string
	ProvinceID *int32
	AmphoeID   *int32
	TambonID   *int32

	Synced    bool
	CreatedAt time.Time
}
