package models

import "gorm.io/gorm"

// Reference tables mirrored to devices for offline form population.

type MasterData struct {
	ID        int32          `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	Category  string         `gorm:"column:category;type:varchar(50);not null;uniqueIndex:idx_master_cat_val" json:"category"`
	Value     string         `gorm:"column:value;type:varchar(255);not null;uniqueIndex:idx_master_cat_val" json:"value"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (MasterData) TableName() string { return "master_data" }

type Disease struct {
	ID           int32          `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	Code         string         `gorm:"column:code;type:varchar(20);not null;uniqueIndex" json:"code"`
	NameTh       string         `gorm:"column:name_th;type:varchar(255);not null" json:"nameTh"`
	NameEn       *string        `gorm:"column:name_en;type:varchar(255)" json:"nameEn,omitempty"`
	Abbreviation *string        `gorm:"column:abbreviation;type:varchar(50)" json:"abbreviation,omitempty"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true" json:"isActive"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Disease) TableName() string { return "diseases" }

type Hospital struct {
	ID        int32          `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	Name      string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Code9     *string        `gorm:"column:code9;type:varchar(9)" json:"code9,omitempty"`
	Code9New  *string        `gorm:"column:code9_new;type:varchar(9)" json:"code9New,omitempty"`
	Code5     *string        `gorm:"column:code5;type:varchar(5)" json:"code5,omitempty"`
	Type      *string        `gorm:"column:type;type:varchar(100)" json:"type,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Hospital) TableName() string { return "hospitals" }

type Province struct {
	ID        int32          `gorm:"primaryKey;column:id" json:"id"`
	Code      string         `gorm:"column:code;type:varchar(2);not null" json:"code"`
	NameTh    string         `gorm:"column:name_th;type:varchar(100);not null" json:"nameTh"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Province) TableName() string { return "provinces" }

type Amphoe struct {
	ID         int32  `gorm:"primaryKey;column:id" json:"id"`
	Code       string `gorm:"column:code;type:varchar(4);not null" json:"code"`
	NameTh     string `gorm:"column:name_th;type:varchar(100);not null" json:"nameTh"`
	ProvinceID int32  `gorm:"column:province_id;not null;index" json:"provinceId"`
}

func (Amphoe) TableName() string { return "amphoes" }

type Tambon struct {
	ID       int32  `gorm:"primaryKey;column:id" json:"id"`
	Code     string `gorm:"column:code;type:varchar(6);not null" json:"code"`
	NameTh   string `gorm:"column:name_th;type:varchar(100);not null" json:"nameTh"`
	AmphoeID int32  `gorm:"column:amphoe_id;not null;index" json:"amphoeId"`
}

func (Tambon) TableName() string { return "tambons" }
