package store

import (
	"database/sql"
	"fmt"

	v1 "vbdreport.org/vbdreport/api/v1"
)

// ReplaceReferenceCache overwrites every cached lookup table with the given
// snapshot in a single transaction, so a failed pull never leaves the cache
// half-replaced.
func (s *Store) ReplaceReferenceCache(data *v1.ReferenceData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tables := []string{"master_data", "diseases", "hospitals", "provinces", "amphoes", "tambons"}
	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, m := range data.MasterData {
		if _, err := tx.Exec(`INSERT INTO master_data (id, category, value) VALUES (?, ?, ?)`,
			m.ID, m.Category, m.Value); err != nil {
			return err
		}
	}
	for _, d := range data.Diseases {
		if _, err := tx.Exec(`INSERT INTO diseases (id, code, name_th, name_en, abbreviation, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
			d.ID, d.Code, d.NameTh, nullStr(d.NameEn), nullStr(d.Abbreviation), boolInt(d.IsActive)); err != nil {
			return err
		}
	}
	for _, h := range data.Hospitals {
		if _, err := tx.Exec(`INSERT INTO hospitals (id, name, code9, code9_new, code5, type) VALUES (?, ?, ?, ?, ?, ?)`,
			h.ID, h.Name, nullStr(h.Code9), nullStr(h.Code9New), nullStr(h.Code5), nullStr(h.Type)); err != nil {
			return err
		}
	}
	for _, p := range data.Provinces {
		if _, err := tx.Exec(`INSERT INTO provinces (id, code, name_th) VALUES (?, ?, ?)`,
			p.ID, p.Code, p.NameTh); err != nil {
			return err
		}
	}
	for _, a := range data.Amphoes {
		if _, err := tx.Exec(`INSERT INTO amphoes (id, code, name_th, province_id) VALUES (?, ?, ?, ?)`,
			a.ID, a.Code, a.NameTh, a.ProvinceID); err != nil {
			return err
		}
	}
	for _, t := range data.Tambons {
		if _, err := tx.Exec(`INSERT INTO tambons (id, code, name_th, amphoe_id) VALUES (?, ?, ?, ?)`,
			t.ID, t.Code, t.NameTh, t.AmphoeID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ActiveDiseases lists cached diseases available for form selection.
func (s *Store) ActiveDiseases() ([]v1.DiseaseDTO, error) {
	rows, err := s.db.Query(`SELECT id, code, name_th, name_en, abbreviation, is_active FROM diseases WHERE is_active = 1 ORDER BY name_th`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []v1.DiseaseDTO
	for rows.Next() {
		var d v1.DiseaseDTO
		var nameEn, abbr sql.NullString
		var active int
		if err := rows.Scan(&d.ID, &d.Code, &d.NameTh, &nameEn, &abbr, &active); err != nil {
			return nil, err
		}
		d.NameEn = nameEn.String
		d.Abbreviation = abbr.String
		d.IsActive = active == 1
		out = append(out, d)
	}
	return out, rows.Err()
}

// Hospitals lists the cached hospital table.
func (s *Store) Hospitals() ([]v1.HospitalDTO, error) {
	rows, err := s.db.Query(`SELECT id, name, code9, code9_new, code5, type FROM hospitals ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []v1.HospitalDTO
	for rows.Next() {
		var h v1.HospitalDTO
		var code9, code9New, code5, htype sql.NullString
		if err := rows.Scan(&h.ID, &h.Name, &code9, &code9New, &code5, &htype); err != nil {
			return nil, err
		}
		h.Code9 = code9.String
		h.Code9New = code9New.String
		h.Code5 = code5.String
		h.Type = htype.String
		out = append(out, h)
	}
	return out, rows.Err()
}

// AmphoesByProvince lists cached districts for a province.
func (s *Store) AmphoesByProvince(provinceID int32) ([]v1.AmphoeDTO, error) {
	rows, err := s.db.Query(`SELECT id, code, name_th, province_id FROM amphoes WHERE province_id = ? ORDER BY code`, provinceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []v1.AmphoeDTO
	for rows.Next() {
		var a v1.AmphoeDTO
		if err := rows.Scan(&a.ID, &a.Code, &a.NameTh, &a.ProvinceID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// TambonsByAmphoe lists cached subdistricts for a district.
func (s *Store) TambonsByAmphoe(amphoeID int32) ([]v1.TambonDTO, error) {
	rows, err := s.db.Query(`SELECT id, code, name_th, amphoe_id FROM tambons WHERE amphoe_id = ? ORDER BY code`, amphoeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []v1.TambonDTO
	for rows.Next() {
		var t v1.TambonDTO
		if err := rows.Scan(&t.ID, &t.Code, &t.NameTh, &t.AmphoeID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MasterDataByCategory lists cached master-data values for one category,
// e.g. OCCUPATION or PREFIX.
func (s *Store) MasterDataByCategory(category string) ([]v1.MasterDataDTO, error) {
	rows, err := s.db.Query(`SELECT id, category, value FROM master_data WHERE category = ? ORDER BY id`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []v1.MasterDataDTO
	for rows.Next() {
		var m v1.MasterDataDTO
		if err := rows.Scan(&m.ID, &m.Category, &m.Value); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
