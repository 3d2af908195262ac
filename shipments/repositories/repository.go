package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parcel-shipping-service/shipments/models"
)

// ErrNotFound is returned when a shipment lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ListFilter narrows the admin shipment listing.
type ListFilter struct {
	Status models.ShipmentStatus
	Search string
	Limit  int
	Offset int
}

// StatusCount is one row of the per-status dashboard breakdown.
type StatusCount struct {
	Status models.ShipmentStatus `json:"status"`
	Count  int64                 `json:"count"`
}

// Repository is the persistence layer for shipments and their tracking events.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates both tables.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.Shipment{}, &models.TrackingEvent{})
}

func (r *Repository) CreateShipment(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(shipment).Error
}

func (r *Repository) CreateEvent(ctx context.Context, event *models.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// SaveShipment writes every column of an existing shipment. Last write wins.
func (r *Repository) SaveShipment(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(shipment).Error
}

func (r *Repository) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shipment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: shipment %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *Repository) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("tracking_number = ?", trackingNumber).First(&shipment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: tracking number %s", ErrNotFound, trackingNumber)
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *Repository) TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Shipment{}).
		Where("tracking_number = ?", trackingNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) ListShipments(ctx context.Context, f ListFilter) ([]models.Shipment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Shipment{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(`LOWER(tracking_number) LIKE ? ESCAPE '\' OR LOWER(sender_name) LIKE ? ESCAPE '\' OR LOWER(receiver_name) LIKE ? ESCAPE '\'`,
			like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var shipments []models.Shipment
	err := q.Order("created_at desc").Find(&shipments).Error
	return shipments, total, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GetOpenShipments returns every shipment whose status is not final.
func (r *Repository) GetOpenShipments(ctx context.Context) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []models.ShipmentStatus{models.StatusDelivered, models.StatusCancelled}).
		Order("expected_delivery_date asc").
		Find(&shipments).Error
	return shipments, err
}

// ListEvents returns a shipment's history oldest first.
func (r *Repository) ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]models.TrackingEvent, error) {
	var events []models.TrackingEvent
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at asc").
		Find(&events).Error
	return events, err
}

// RecentEvents returns the newest events across all shipments.
func (r *Repository) RecentEvents(ctx context.Context, limit int) ([]models.TrackingEvent, error) {
	var events []models.TrackingEvent
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *Repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Shipment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&counts).Error
	return counts, err
}

// DeleteShipment removes a shipment together with all of its tracking events.
func (r *Repository) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shipment_id = ?", id).Delete(&models.TrackingEvent{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.Shipment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: shipment %s", ErrNotFound, id)
		}
		return nil
	})
}

// Ping checks the underlying connection.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
