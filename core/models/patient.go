package models

import (
	"time"

	"gorm.io/gorm"
)

type Patient struct {
	ID     string  `gorm:"primaryKey;column:id;type:varchar(64)" json:"id"`
	IDCard *string `gorm:"column:id_card;type:varchar(13);uniqueIndex" json:"idCard,omitempty"`

	Prefix        *string    `gorm:"column:prefix;type:varchar(50)" json:"prefix,omitempty"`
	FirstName     string     `gorm:"column:first_name;type:varchar(100);not null" json:"firstName"`
	LastName      string     `gorm:"column:last_name;type:varchar(100);not null" json:"lastName"`
	Gender        string     `gorm:"column:gender;type:varchar(10);not null" json:"gender"`
	BirthDate     *time.Time `gorm:"column:birth_date;type:date" json:"birthDate,omitempty"`
	Nationality   string     `gorm:"column:nationality;type:varchar(50)" json:"nationality"`
	MaritalStatus *string    `gorm:"column:marital_status;type:varchar(50)" json:"maritalStatus,omitempty"`
	Occupation    *string    `gorm:"column:occupation;type:varchar(100)" json:"occupation,omitempty"`
	Phone         *string    `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`

	AddressNo  *string `gorm:"column:address_no;type:varchar(50)" json:"addressNo,omitempty"`
	Moo        *string `gorm:"column:moo;type:varchar(20)" json:"moo,omitempty"`
	Road       *string `gorm:"column:road;type:varchar(100)" json:"road,omitempty"`
	ProvinceID *int32  `gorm:"column:province_id" json:"provinceId,omitempty"`
	AmphoeID   *int32  `gorm:"column:amphoe_id" json:"amphoeId,omitempty"`
	TambonID   *int32  `gorm:"column:tambon_id" json:"tambonId,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}
