package sync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	v1 "vbdreport.org/vbdreport/api/v1"
	"vbdreport.org/vbdreport/client/store"
	"vbdreport.org/vbdreport/utils"
)

// Conflict is one case the server refused with a 409. The record stays
// pending locally; resolution is a manual decision, never automatic.
type Conflict struct {
	LocalID         string
	CaseID          string
	Message         string
	ServerUpdatedAt *time.Time
	ClientUpdatedAt *time.Time
}

// Engine drains the pending queue against the server. Patients always go
// before cases so that case uploads can reference server patient ids, and
// items travel strictly in enqueue order. At most one pass runs at a time.
type Engine struct {
	store    *store.Store
	client   *v1.VBDClient
	status   *StatusModel
	interval time.Duration

	trigger chan struct{}
	stop    chan struct{}
	done    chan struct{}

	passMu sync.Mutex

	mu        sync.Mutex
	conflicts []Conflict
}

func NewEngine(st *store.Store, client *v1.VBDClient, status *StatusModel, interval time.Duration) *Engine {
	return &Engine{
		store:    st,
		client:   client,
		status:   status,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the periodic sync loop until Close is called or ctx ends.
func (e *Engine) Start(ctx context.Context) {
	go func() {
		defer close(e.done)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-e.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-e.trigger:
			}

			if err := e.RunPass(ctx); err != nil {
				log.Printf("sync: pass aborted: %v", err)
			}
		}
	}()
}

// TriggerSync requests an immediate pass. Triggers arriving while a pass is
// already queued or running coalesce into one.
func (e *Engine) TriggerSync() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Close stops the loop and waits for any in-flight pass to finish.
func (e *Engine) Close() {
	close(e.stop)
	<-e.done
}

// Conflicts returns every conflict recorded since the engine started.
func (e *Engine) Conflicts() []Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Conflict, len(e.conflicts))
	copy(out, e.conflicts)
	return out
}

// RunPass drains the queue once: all pending patients first, then all
// pending cases. A transport failure aborts the pass and marks the status
// offline; server-side rejections skip the item and keep going.
func (e *Engine) RunPass(ctx context.Context) error {
	if !e.passMu.TryLock() {
		return nil
	}
	defer e.passMu.Unlock()

	defer e.refreshPending()

	if err := e.syncPatients(ctx); err != nil {
		e.status.SetOnline(false)
		return err
	}
	if err := e.syncCases(ctx); err != nil {
		e.status.SetOnline(false)
		return err
	}

	e.status.SetOnline(true)
	return nil
}

func (e *Engine) syncPatients(ctx context.Context) error {
	patients, err := e.store.ListPendingPatients()
	if err != nil {
		return err
	}

	for i := range patients {
		p := &patients[i]

		result, err := e.client.Sync.PushPatient(ctx, patientDTO(p))
		if err != nil {
			var se *v1.StatusError
			if errors.As(err, &se) {
				log.Printf("sync: patient %s rejected: %v", p.LocalID, err)
				continue
			}
			return err
		}

		// Queued cases still point at the local patient uuid; rewrite
		// them before the patient row goes away.
		if err := e.store.RelinkCasePatient(p.LocalID, result.PatientID); err != nil {
			return err
		}
		if err := e.store.MarkPatientSynced(p.LocalID); err != nil {
			return err
		}
		e.refreshPending()
	}

	return nil
}

func (e *Engine) syncCases(ctx context.Context) error {
	cases, err := e.store.ListPendingCases()
	if err != nil {
		return err
	}

	for i := range cases {
		c := &cases[i]

		if err := e.store.MarkCaseSyncing(c.LocalID); err != nil {
			return err
		}

		result, err := e.client.Sync.PushCase(ctx, caseDTO(c))
		if err != nil {
			if rerr := e.store.RevertCaseToPending(c.LocalID); rerr != nil {
				return rerr
			}
			if info, ok := v1.AsConflict(err); ok {
				e.recordConflict(c.LocalID, info)
				continue
			}
			var se *v1.StatusError
			if errors.As(err, &se) {
				log.Printf("sync: case %s rejected: %v", c.LocalID, err)
				continue
			}
			return err
		}

		if err := e.store.DeleteCaseAfterSync(c.LocalID); err != nil {
			return err
		}
		e.refreshPending()
		log.Printf("sync: case %s confirmed as %s", c.LocalID, result.CaseID)
	}

	return nil
}

// RefreshReferenceData replaces the cached lookup tables with the server's
// current snapshot.
func (e *Engine) RefreshReferenceData(ctx context.Context) error {
	data, err := e.client.Reference.Fetch(ctx)
	if err != nil {
		return err
	}
	return e.store.ReplaceReferenceCache(data)
}

func (e *Engine) refreshPending() {
	cases, patients, err := e.store.PendingCounts()
	if err != nil {
		log.Printf("sync: pending count query failed: %v", err)
		return
	}
	e.status.SetPendingCount(cases + patients)
}

func (e *Engine) recordConflict(localID string, info *v1.ConflictInfo) {
	conflict := Conflict{
		LocalID: localID,
		CaseID:  info.CaseID,
		Message: info.Message,
	}
	if t, err := utils.ParseISOTime(info.ServerUpdatedAt); err == nil {
		conflict.ServerUpdatedAt = t
	}
	if t, err := utils.ParseISOTime(info.ClientUpdatedAt); err == nil {
		conflict.ClientUpdatedAt = t
	}

	e.mu.Lock()
	e.conflicts = append(e.conflicts, conflict)
	e.mu.Unlock()

	log.Printf("sync: case %s conflicts with server case %s, keeping local copy pending", localID, info.CaseID)
}

func patientDTO(p *store.LocalPatient) *v1.PatientSyncDTO {
	dto := &v1.PatientSyncDTO{
		Prefix:        p.Prefix,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Gender:        p.Gender,
		BirthDate:     p.BirthDate,
		Nationality:   p.Nationality,
		MaritalStatus: p.MaritalStatus,
		Occupation:    p.Occupation,
		Phone:         p.Phone,
		AddressNo:     p.AddressNo,
		Moo:           p.Moo,
		Road:          p.Road,
		ProvinceID:    p.ProvinceID,
		AmphoeID:      p.AmphoeID,
		TambonID:      p.TambonID,
	}
	if p.IDCard != "" {
		dto.IDCard = utils.Ptr(p.IDCard)
	}
	return dto
}

func caseDTO(c *store.LocalCase) *v1.CaseSyncDTO {
	dto := &v1.CaseSyncDTO{
		ClientID:   c.ClientID,
		PatientID:  c.PatientID,
		HospitalID: c.HospitalID,
		DiseaseID:  c.DiseaseID,

		IllnessDate:   c.IllnessDate,
		TreatDate:     c.TreatDate,
		DiagnosisDate: c.DiagnosisDate,

		PatientType:  c.PatientType,
		Condition:    c.Condition,
		DeathDate:    c.DeathDate,
		CauseOfDeath: c.CauseOfDeath,
		AgeYears:     c.AgeYears,

		SickAddressNo:  c.SickAddressNo,
		SickMoo:        c.SickMoo,
		SickRoad:       c.SickRoad,
		SickProvinceID: c.SickProvinceID,
		SickAmphoeID:   c.SickAmphoeID,
		SickTambonID:   c.SickTambonID,

		ReporterName:     c.ReporterName,
		Remark:           c.Remark,
		TreatingHospital: c.TreatingHospital,
		LabResult1:       c.LabResult1,
		LabResult2:       c.LabResult2,
	}
	if c.UpdatedAt != nil {
		dto.UpdatedAt = c.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}
