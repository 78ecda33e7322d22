package service

import (
	"errors"

	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/model"
	"github.com/farhansajid/visamock/internal/repository"
	"gorm.io/gorm"
)

// CatalogService serves the country and visa-type catalog.
type CatalogService interface {
	Countries() ([]model.Country, error)
	CreateCountry(country *model.Country) error
	DeleteCountry(id uint) error
	VisaTypes(countryID *uint) ([]model.VisaType, error)
	CreateVisaType(visaType *model.VisaType) error
	UpdateVisaType(id uint, apply func(*model.VisaType)) (*model.VisaType, error)
	DeleteVisaType(id uint) error
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: catalogRepo}
}

func (s *catalogService) Countries() ([]model.Country, error) {
	return s.catalogRepo.Countries()
}

func (s *catalogService) CreateCountry(country *model.Country) error {
	return s.catalogRepo.CreateCountry(country)
}

func (s *catalogService) DeleteCountry(id uint) error {
	if _, err := s.catalogRepo.FindCountry(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("country %d not found", id)
		}
		return err
	}
	return s.catalogRepo.DeleteCountry(id)
}

func (s *catalogService) VisaTypes(countryID *uint) ([]model.VisaType, error) {
	return s.catalogRepo.VisaTypes(countryID)
}

func (s *catalogService) CreateVisaType(visaType *model.VisaType) error {
	if _, err := s.catalogRepo.FindCountry(visaType.CountryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("country %d not found", visaType.CountryID)
		}
		return err
	}
	return s.catalogRepo.CreateVisaType(visaType)
}

// UpdateVisaType loads the row, lets the caller mutate it, and saves.
func (s *catalogService) UpdateVisaType(id uint, apply func(*model.VisaType)) (*model.VisaType, error) {
	visaType, err := s.catalogRepo.FindVisaType(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("visa type %d not found", id)
		}
		return nil, err
	}
	apply(visaType)
	if err := s.catalogRepo.UpdateVisaType(visaType); err != nil {
		return nil, err
	}
	return visaType, nil
}

func (s *catalogService) DeleteVisaType(id uint) error {
	if _, err := s.catalogRepo.FindVisaType(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("visa type %d not found", id)
		}
		return err
	}
	return s.catalogRepo.DeleteVisaType(id)
}
