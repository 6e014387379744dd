package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sujanms/gharbhada/internal/core/domain"
	"github.com/sujanms/gharbhada/internal/core/ports"
)

const roomsCacheTTL = 5 * time.Minute

type CreateRoomRequest struct {
	Name         string   `json:"name"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	City         string   `json:"city"`
	District     string   `json:"district"`
	Ward         string   `json:"ward"`
	Description  string   `json:"description"`
	PricePerDay  string   `json:"price_per_day"`
	Images       []string `json:"images"`
	MerchantCode string   `json:"merchant_code"`
}

type RoomService struct {
	roomRepo ports.RoomRepository
	cache    *redis.Client
}

func NewRoomService(roomRepo ports.RoomRepository, cache *redis.Client) *RoomService {
	return &RoomService{roomRepo: roomRepo, cache: cache}
}

// CreateRoom registers a landlord's room. New rooms start pending moderation
// and available.
func (s *RoomService) CreateRoom(ctx context.Context, principal domain.Principal, req CreateRoomRequest) (*domain.Room, error) {
	if req.Name == "" || req.MerchantCode == "" {
		return nil, fmt.Errorf("%w: name and merchant_code are required", domain.ErrMissingFields)
	}

	price, err := decimal.NewFromString(req.PricePerDay)
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("%w: invalid price_per_day", domain.ErrMissingFields)
	}

	room := &domain.Room{
		ID:             uuid.New(),
		OwnerID:        principal.UserID,
		Name:           req.Name,
		Lat:            req.Lat,
		Lon:            req.Lon,
		City:           req.City,
		District:       req.District,
		Ward:           req.Ward,
		Description:    req.Description,
		PricePerDay:    price,
		Images:         req.Images,
		MerchantCode:   req.MerchantCode,
		ApprovalStatus: domain.RoomPending,
		IsAvailable:    true,
		CreatedAt:      time.Now(),
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return room, nil
}

// ListRooms serves the public listing through a short-lived redis cache.
// Writers delete the key, so a miss here simply rebuilds it.
func (s *RoomService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, roomsCacheKey).Result(); err == nil {
			var rooms []domain.Room
			if err := json.Unmarshal([]byte(cached), &rooms); err == nil {
				return rooms, nil
			}
		}
	}

	rooms, err := s.roomRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(rooms); err == nil {
			if err := s.cache.Set(ctx, roomsCacheKey, data, roomsCacheTTL).Err(); err != nil {
				log.Printf("failed to cache %s: %v", roomsCacheKey, err)
			}
		}
	}

	return rooms, nil
}

func (s *RoomService) ListMyRooms(ctx context.Context, principal domain.Principal) ([]domain.Room, error) {
	return s.roomRepo.ListByOwner(ctx, principal.UserID)
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	return s.roomRepo.GetByID(ctx, roomID)
}

// ModerateRoom lets an admin approve or reject a listed room.
func (s *RoomService) ModerateRoom(ctx context.Context, principal domain.Principal, roomID uuid.UUID, status domain.RoomApprovalStatus) error {
	if !principal.Is(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	if status != domain.RoomApproved && status != domain.RoomRejected {
		return fmt.Errorf("%w: moderation must approve or reject", domain.ErrInvalidState)
	}
	if err := s.roomRepo.UpdateApproval(ctx, roomID, status); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, roomsCacheKey).Err(); err != nil {
		log.Printf("failed to invalidate %s: %v", roomsCacheKey, err)
	}
}
