package repository

import (
	"github.com/farhansajid/visamock/internal/model"
	"gorm.io/gorm"
)

type CatalogRepository interface {
	Countries() ([]model.Country, error)
	CreateCountry(country *model.Country) error
	DeleteCountry(id uint) error
	VisaTypes(countryID *uint) ([]model.VisaType, error)
	FindVisaType(id uint) (*model.VisaType, error)
	FindCountry(id uint) (*model.Country, error)
	CreateVisaType(visaType *model.VisaType) error
	UpdateVisaType(visaType *model.VisaType) error
	DeleteVisaType(id uint) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Countries() ([]model.Country, error) {
	var countries []model.Country
	err := r.db.Order("name ASC").Find(&countries).Error
	return countries, err
}

func (r *catalogRepository) CreateCountry(country *model.Country) error {
	return r.db.Create(country).Error
}

func (r *catalogRepository) DeleteCountry(id uint) error {
	return r.db.Delete(&model.Country{}, id).Error
}

func (r *catalogRepository) VisaTypes(countryID *uint) ([]model.VisaType, error) {
	var visaTypes []model.VisaType
	query := r.db.Order("name ASC")
	if countryID != nil {
		query = query.Where("country_id = ?", *countryID)
	}
	err := query.Find(&visaTypes).Error
	return visaTypes, err
}

func (r *catalogRepository) FindVisaType(id uint) (*model.VisaType, error) {
	var visaType model.VisaType
	if err := r.db.First(&visaType, id).Error; err != nil {
		return nil, err
	}
	return &visaType, nil
}

func (r *catalogRepository) FindCountry(id uint) (*model.Country, error) {
	var country model.Country
	if err := r.db.First(&country, id).Error; err != nil {
		return nil, err
	}
	return &country, nil
}

func (r *catalogRepository) CreateVisaType(visaType *model.VisaType) error {
	return r.db.Create(visaType).Error
}

func (r *catalogRepository) UpdateVisaType(visaType *model.VisaType) error {
	return r.db.Save(visaType).Error
}

func (r *catalogRepository) DeleteVisaType(id uint) error {
	return r.db.Delete(&model.VisaType{}, id).Error
}
