package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const caseColumns = `local_id, client_id, patient_id, hospital_id, disease_id,
	illness_date, treat_date, diagnosis_date, patient_type, condition,
	death_date, cause_of_death, age_years,
	sick_address_no, sick_moo, sick_road, sick_province_id, sick_amphoe_id, sick_tambon_id,
	reporter_name, remark, treating_hospital, lab_result1, lab_result2,
	sync_status, created_at, updated_at`

const patientColumns = `local_id, id_card, prefix, first_name, last_name, gender,
	birth_date, nationality, marital_status, occupation, phone,
	address_no, moo, road, province_id, amphoe_id, tambon_id,
	synced, created_at`

// EnqueueCase inserts a case as pending. LocalID and ClientID are generated
// here when absent; ClientID is never regenerated afterwards.
func (s *Store) EnqueueCase(c *LocalCase) error {
	if c.LocalID == "" {
		c.LocalID = uuid.NewString()
	}
	if c.ClientID == "" {
		c.ClientID = uuid.NewString()
	}
	c.SyncStatus = StatusPending
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	var updatedAt any
	if c.UpdatedAt != nil {
		updatedAt = c.UpdatedAt.Format(time.RFC3339Nano)
	}

	_, err := s.db.Exec(`
		INSERT INTO offline_cases (`+caseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.LocalID, c.ClientID, c.PatientID, c.HospitalID, c.DiseaseID,
		nullStr(c.IllnessDate), nullStr(c.TreatDate), nullStr(c.DiagnosisDate),
		nullStr(c.PatientType), nullStr(c.Condition),
		nullStr(c.DeathDate), nullStr(c.CauseOfDeath), c.AgeYears,
		nullStr(c.SickAddressNo), nullStr(c.SickMoo), nullStr(c.SickRoad),
		c.SickProvinceID, c.SickAmphoeID, c.SickTambonID,
		nullStr(c.ReporterName), nullStr(c.Remark), nullStr(c.TreatingHospital),
		nullStr(c.LabResult1), nullStr(c.LabResult2),
		string(StatusPending), c.CreatedAt.Format(time.RFC3339Nano), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue case: %w", err)
	}
	return nil
}

// EnqueuePatient inserts a patient as unsynced.
func (s *Store) EnqueuePatient(p *LocalPatient) error {
	if p.LocalID == "" {
		p.LocalID = uuid.NewString()
	}
	p.Synced = false
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO offline_patients (`+patientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		p.LocalID, nullStr(p.IDCard), nullStr(p.Prefix), p.FirstName, p.LastName, p.Gender,
		nullStr(p.BirthDate), nullStr(p.Nationality), nullStr(p.MaritalStatus),
		nullStr(p.Occupation), nullStr(p.Phone),
		nullStr(p.AddressNo), nullStr(p.Moo), nullStr(p.Road),
		p.ProvinceID, p.AmphoeID, p.TambonID,
		p.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue patient: %w", err)
	}
	return nil
}

// ListPendingCases returns queued cases in insertion order. Cases may
// reference patients enqueued earlier in the same offline session, so FIFO
// keeps those dependencies in order.
func (s *Store) ListPendingCases() ([]LocalCase, error) {
	rows, err := s.db.Query(`
		SELECT `+caseColumns+` FROM offline_cases
		WHERE sync_status = ?
		ORDER BY created_at, rowid`, string(StatusPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []LocalCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

// ListPendingPatients returns unsynced patients in insertion order.
func (s *Store) ListPendingPatients() ([]LocalPatient, error) {
	rows, err := s.db.Query(`
		SELECT ` + patientColumns + ` FROM offline_patients
		WHERE synced = 0
		ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []LocalPatient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

// MarkCaseSyncing transitions a pending case to syncing before its upload
// is issued.
func (s *Store) MarkCaseSyncing(localID string) error {
	_, err := s.db.Exec(`UPDATE offline_cases SET sync_status = ? WHERE local_id = ? AND sync_status = ?`,
		string(StatusSyncing), localID, string(StatusPending))
	return err
}

// RevertCaseToPending returns a case to the queue after a failed upload.
func (s *Store) RevertCaseToPending(localID string) error {
	_, err := s.db.Exec(`UPDATE offline_cases SET sync_status = ? WHERE local_id = ?`,
		string(StatusPending), localID)
	return err
}

// DeleteCaseAfterSync removes a case once the server is authoritative.
func (s *Store) DeleteCaseAfterSync(localID string) error {
	_, err := s.db.Exec(`DELETE FROM offline_cases WHERE local_id = ?`, localID)
	return err
}

// MarkPatientSynced prunes a patient the server has confirmed.
func (s *Store) MarkPatientSynced(localID string) error {
	_, err := s.db.Exec(`DELETE FROM offline_patients WHERE local_id = ?`, localID)
	return err
}

// RelinkCasePatient rewrites queued cases that reference a just-synced
// local patient id so their next upload carries the server id.
func (s *Store) RelinkCasePatient(localPatientID, serverPatientID string) error {
	_, err := s.db.Exec(`UPDATE offline_cases SET patient_id = ? WHERE patient_id = ?`,
		serverPatientID, localPatientID)
	return err
}

// PendingCounts returns the number of queued cases and patients.
func (s *Store) PendingCounts() (cases int, patients int, err error) {
	row := s.db.QueryRow(`SELECT COUNT(*) FROM offline_cases WHERE sync_status = ?`, string(StatusPending))
	if err = row.Scan(&cases); err != nil {
		return 0, 0, err
	}
	row = s.db.QueryRow(`SELECT COUNT(*) FROM offline_patients WHERE synced = 0`)
	if err = row.Scan(&patients); err != nil {
		return 0, 0, err
	}
	return cases, patients, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanCase(rows *sql.Rows) (*LocalCase, error) {
	var c LocalCase
	var clientID, illness, treat, diagnosis, ptype, cond, death, cause sql.NullString
	var addrNo, moo, road, reporter, remark, treating, lab1, lab2 sql.NullString
	var provinceID, amphoeID, tambonID sql.NullInt32
	var status, createdAt string
	var updatedAt sql.NullString

	err := rows.Scan(
		&c.LocalID, &clientID, &c.PatientID, &c.HospitalID, &c.DiseaseID,
		&illness, &treat, &diagnosis, &ptype, &cond,
		&death, &cause, &c.AgeYears,
		&addrNo, &moo, &road, &provinceID, &amphoeID, &tambonID,
		&reporter, &remark, &treating, &lab1, &lab2,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ClientID = clientID.String
	c.IllnessDate = illness.String
	c.TreatDate = treat.String
	c.DiagnosisDate = diagnosis.String
	c.PatientType = ptype.String
	c.Condition = cond.String
	c.DeathDate = death.String
	c.CauseOfDeath = cause.String
	c.SickAddressNo = addrNo.String
	c.SickMoo = moo.String
	c.SickRoad = road.String
	c.SickProvinceID = int32Ptr(provinceID)
	c.SickAmphoeID = int32Ptr(amphoeID)
	c.SickTambonID = int32Ptr(tambonID)
	c.ReporterName = reporter.String
	c.Remark = remark.String
	c.TreatingHospital = treating.String
	c.LabResult1 = lab1.String
	c.LabResult2 = lab2.String
	c.SyncStatus = SyncStatus(status)

	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at on case %s: %w", c.LocalID, err)
	}
	if updatedAt.Valid && updatedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad updated_at on case %s: %w", c.LocalID, err)
		}
		c.UpdatedAt = &t
	}

	return &c, nil
}

func scanPatient(rows *sql.Rows) (*LocalPatient, error) {
	var p LocalPatient
	var idCard, prefix, birth, nationality, marital, occupation, phone sql.NullString
	var addrNo, moo, road sql.NullString
	var provinceID, amphoeID, tambonID sql.NullInt32
	var synced int
	var createdAt string

	err := rows.Scan(
		&p.LocalID, &idCard, &prefix, &p.FirstName, &p.LastName, &p.Gender,
		&birth, &nationality, &marital, &occupation, &phone,
		&addrNo, &moo, &road, &provinceID, &amphoeID, &tambonID,
		&synced, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.IDCard = idCard.String
	p.Prefix = prefix.String
	p.BirthDate = birth.String
	p.Nationality = nationality.String
	p.MaritalStatus = marital.String
	p.Occupation = occupation.String
	p.Phone = phone.String
	p.AddressNo = addrNo.String
	p.Moo = moo.String
	p.Road = road.String
	p.ProvinceID = int32Ptr(provinceID)
	p.AmphoeID = int32Ptr(amphoeID)
	p.TambonID = int32Ptr(tambonID)
	p.Synced = synced == 1

	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at on patient %s: %w", p.LocalID, err)
	}

	return &p, nil
}

func int32Ptr(v sql.NullInt32) *int32 {
	if !v.Valid {
		return nil
	}
	n := v.Int32
	return &n
}
