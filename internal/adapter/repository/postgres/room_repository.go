package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sujanms/gharbhada/internal/core/domain"
)

type RoomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, owner_id, name, lat, lon, city, district, ward, description,
	price_per_day, images, merchant_code, approval_status, is_available, created_at, updated_at`

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
	INSERT INTO rooms (id, owner_id, name, lat, lon, city, district, ward, description,
		price_per_day, images, merchant_code, approval_status, is_available, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		room.ID, room.OwnerID, room.Name, room.Lat, room.Lon,
		room.City, room.District, room.Ward, room.Description,
		room.PricePerDay, pq.Array(room.Images), room.MerchantCode,
		room.ApprovalStatus, room.IsAvailable, room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}

	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.db.QueryRowContext(ctx, query, roomID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	return room, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY created_at DESC`
	return r.queryRooms(ctx, query)
}

func (r *RoomRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.queryRooms(ctx, query, ownerID)
}

func (r *RoomRepository) ListUnavailable(ctx context.Context) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE is_available = false`
	return r.queryRooms(ctx, query)
}

// SetAvailability flips is_available only when the row still holds the value
// the caller observed. RowsAffected = 0 means a concurrent writer got there
// first.
func (r *RoomRepository) SetAvailability(ctx context.Context, roomID uuid.UUID, available, expectedPrior bool) error {
	query := `
	UPDATE rooms
	SET is_available = $1, updated_at = $2
	WHERE id = $3 AND is_available = $4
	`

	result, err := r.db.ExecContext(ctx, query, available, time.Now(), roomID, expectedPrior)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrStaleAvailability
	}

	return nil
}

func (r *RoomRepository) UpdateApproval(ctx context.Context, roomID uuid.UUID, status domain.RoomApprovalStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET approval_status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), roomID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrRoomNotFound
	}

	return nil
}

func (r *RoomRepository) queryRooms(ctx context.Context, query string, args ...any) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}

	return rooms, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	var room domain.Room
	var images pq.StringArray

	err := row.Scan(
		&room.ID,
		&room.OwnerID,
		&room.Name,
		&room.Lat,
		&room.Lon,
		&room.City,
		&room.District,
		&room.Ward,
		&room.Description,
		&room.PricePerDay,
		&images,
		&room.MerchantCode,
		&room.ApprovalStatus,
		&room.IsAvailable,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	room.Images = []string(images)
	return &room, nil
}
