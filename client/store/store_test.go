package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "vbdreport.org/vbdreport/api/v1"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testCase(patientID string, createdAt time.Time) *LocalCase {
	return &LocalCase{
		PatientID:   patientID,
		HospitalID:  10,
		DiseaseID:   1,
		IllnessDate: "2026-08-01",
		PatientType: "OPD",
		AgeYears:    34,
		CreatedAt:   createdAt,
	}
}

func TestEnqueueCaseGeneratesIDsOnce(t *testing.T) {
	s := openTestStore(t)

	c := testCase("p1", time.Time{})
	require.NoError(t, s.EnqueueCase(c))

	assert.NotEmpty(t, c.LocalID)
	assert.NotEmpty(t, c.ClientID)
	assert.Equal(t, StatusPending, c.SyncStatus)

	pending, err := s.ListPendingCases()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, c.ClientID, pending[0].ClientID)
	assert.Nil(t, pending[0].UpdatedAt)
}

func TestListPendingCasesFIFO(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		c := testCase("p1", base.Add(time.Duration(i)*time.Minute))
		c.Remark = string(rune('a' + i))
		require.NoError(t, s.EnqueueCase(c))
	}

	pending, err := s.ListPendingCases()
	require.NoError(t, err)
	require.Len(t, pending, 5)
	for i, c := range pending {
		assert.Equal(t, string(rune('a'+i)), c.Remark)
	}
}

func TestCaseStatusTransitions(t *testing.T) {
	s := openTestStore(t)

	c := testCase("p1", time.Now())
	require.NoError(t, s.EnqueueCase(c))

	require.NoError(t, s.MarkCaseSyncing(c.LocalID))

	pending, err := s.ListPendingCases()
	require.NoError(t, err)
	assert.Empty(t, pending, "syncing case must leave the pending list")

	require.NoError(t, s.RevertCaseToPending(c.LocalID))
	pending, err = s.ListPendingCases()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, c.ClientID, pending[0].ClientID, "clientId survives the revert")

	require.NoError(t, s.MarkCaseSyncing(c.LocalID))
	require.NoError(t, s.DeleteCaseAfterSync(c.LocalID))
	cases, patients, err := s.PendingCounts()
	require.NoError(t, err)
	assert.Equal(t, 0, cases)
	assert.Equal(t, 0, patients)
}

func TestMarkCaseSyncingOnlyFromPending(t *testing.T) {
	s := openTestStore(t)

	c := testCase("p1", time.Now())
	require.NoError(t, s.EnqueueCase(c))
	require.NoError(t, s.DeleteCaseAfterSync(c.LocalID))

	// No row left; transition must be a no-op, not an error.
	require.NoError(t, s.MarkCaseSyncing(c.LocalID))
}

func TestPendingCountsAfterPartialSync(t *testing.T) {
	s := openTestStore(t)

	base := time.Now()
	var ids []string
	for i := 0; i < 5; i++ {
		c := testCase("p1", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.EnqueueCase(c))
		ids = append(ids, c.LocalID)
	}

	for _, id := range ids[:3] {
		require.NoError(t, s.MarkCaseSyncing(id))
		require.NoError(t, s.DeleteCaseAfterSync(id))
	}

	cases, _, err := s.PendingCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, cases)
}

func TestRelinkCasePatient(t *testing.T) {
	s := openTestStore(t)

	p := &LocalPatient{FirstName: "Somchai", LastName: "Jaidee", Gender: "MALE"}
	require.NoError(t, s.EnqueuePatient(p))

	c1 := testCase(p.LocalID, time.Now())
	c2 := testCase(p.LocalID, time.Now().Add(time.Second))
	other := testCase("some-other-patient", time.Now().Add(2*time.Second))
	require.NoError(t, s.EnqueueCase(c1))
	require.NoError(t, s.EnqueueCase(c2))
	require.NoError(t, s.EnqueueCase(other))

	require.NoError(t, s.RelinkCasePatient(p.LocalID, "c0123456789abcdef"))
	require.NoError(t, s.MarkPatientSynced(p.LocalID))

	pending, err := s.ListPendingCases()
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "c0123456789abcdef", pending[0].PatientID)
	assert.Equal(t, "c0123456789abcdef", pending[1].PatientID)
	assert.Equal(t, "some-other-patient", pending[2].PatientID)

	patients, err := s.ListPendingPatients()
	require.NoError(t, err)
	assert.Empty(t, patients)
}

func TestEnqueueCaseRoundTripsUpdatedAt(t *testing.T) {
	s := openTestStore(t)

	edited := time.Date(2026, 8, 20, 14, 30, 5, 123000000, time.UTC)
	c := testCase("c_server_id", time.Now())
	c.UpdatedAt = &edited
	require.NoError(t, s.EnqueueCase(c))

	pending, err := s.ListPendingCases()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].UpdatedAt)
	assert.True(t, pending[0].UpdatedAt.Equal(edited))
}

func TestReplaceReferenceCache(t *testing.T) {
	s := openTestStore(t)

	first := &v1.ReferenceData{
		Diseases: []v1.DiseaseDTO{
			{ID: 1, Code: "26", NameTh: "ไข้เลือดออก", IsActive: true},
			{ID: 2, Code: "27", NameTh: "มาลาเรีย", IsActive: false},
		},
		Hospitals: []v1.HospitalDTO{{ID: 10, Name: "รพ.สต.บ้านเหนือ"}},
		Provinces: []v1.ProvinceDTO{{ID: 50, Code: "50", NameTh: "เชียงใหม่"}},
		Amphoes:   []v1.AmphoeDTO{{ID: 5001, Code: "5001", NameTh: "เมืองเชียงใหม่", ProvinceID: 50}},
		Tambons:   []v1.TambonDTO{{ID: 500101, Code: "500101", NameTh: "ศรีภูมิ", AmphoeID: 5001}},
		MasterData: []v1.MasterDataDTO{
			{ID: 1, Category: "occupation", Value: "เกษตรกร"},
		},
	}
	require.NoError(t, s.ReplaceReferenceCache(first))

	diseases, err := s.ActiveDiseases()
	require.NoError(t, err)
	require.Len(t, diseases, 1, "inactive diseases stay out of form choices")
	assert.Equal(t, "26", diseases[0].Code)

	amphoes, err := s.AmphoesByProvince(50)
	require.NoError(t, err)
	require.Len(t, amphoes, 1)

	// A replace is total: rows absent from the new snapshot disappear.
	second := &v1.ReferenceData{
		Diseases: []v1.DiseaseDTO{{ID: 3, Code: "28", NameTh: "ชิคุนกุนยา", IsActive: true}},
	}
	require.NoError(t, s.ReplaceReferenceCache(second))

	diseases, err = s.ActiveDiseases()
	require.NoError(t, err)
	require.Len(t, diseases, 1)
	assert.Equal(t, "28", diseases[0].Code)

	hospitals, err := s.Hospitals()
	require.NoError(t, err)
	assert.Empty(t, hospitals)
}

func TestClearAll(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.EnqueueCase(testCase("p1", time.Now())))
	require.NoError(t, s.EnqueuePatient(&LocalPatient{FirstName: "A", LastName: "B", Gender: "FEMALE"}))
	require.NoError(t, s.ReplaceReferenceCache(&v1.ReferenceData{
		Diseases: []v1.DiseaseDTO{{ID: 1, Code: "26", NameTh: "ไข้เลือดออก", IsActive: true}},
	}))

	require.NoError(t, s.ClearAll())

	cases, patients, err := s.PendingCounts()
	require.NoError(t, err)
	assert.Equal(t, 0, cases)
	assert.Equal(t, 0, patients)

	diseases, err := s.ActiveDiseases()
	require.NoError(t, err)
	assert.Empty(t, diseases)
}

func TestReopenRecoversInFlightCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.db")

	s, err := Open(DefaultConfig(path))
	require.NoError(t, err)
	c := testCase("p1", time.Now())
	require.NoError(t, s.EnqueueCase(c))
	require.NoError(t, s.MarkCaseSyncing(c.LocalID))
	require.NoError(t, s.Close())

	// Simulates a crash between the syncing transition and its outcome.
	s, err = Open(DefaultConfig(path))
	require.NoError(t, err)
	defer s.Close()

	pending, err := s.ListPendingCases()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, c.ClientID, pending[0].ClientID)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := Open(DefaultConfig(path))
	require.NoError(t, err)
	c := testCase("p1", time.Now())
	require.NoError(t, s.EnqueueCase(c))
	require.NoError(t, s.Close())

	s, err = Open(DefaultConfig(path))
	require.NoError(t, err)
	defer s.Close()

	pending, err := s.ListPendingCases()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, c.ClientID, pending[0].ClientID)
}
