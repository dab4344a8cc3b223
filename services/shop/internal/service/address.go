package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/repo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddressService struct {
	Repo *repo.GormRepo
}

func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return s.Repo.ListAddresses(ctx, userID)
}

func (s *AddressService) Create(ctx context.Context, address *models.Address) error {
	address.ID = 0
	if err := s.Repo.CreateAddress(ctx, address); err != nil {
		return fmt.Errorf("create address: %w", err)
	}
	return nil
}

func (s *AddressService) Update(ctx context.Context, address *models.Address) error {
	if address.ID == 0 {
		return ErrAddressNotFound
	}
	err := s.Repo.UpdateAddress(ctx, address)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAddressNotFound
	}
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	return nil
}

// Remove deletes the address when it belongs to the user. The main flag
// is not handed to another address.
func (s *AddressService) Remove(ctx context.Context, userID uuid.UUID, id uint) error {
	if _, err := s.Repo.DeleteAddress(ctx, userID, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

func (s *AddressService) Get(ctx context.Context, userID uuid.UUID, id uint) (*models.Address, error) {
	address, err := s.Repo.GetAddress(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return address, nil
}
