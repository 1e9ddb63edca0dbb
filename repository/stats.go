package repository

import (
	"context"
	"errors"
	"fmt"

	"tripsplit-backend/models"
	"tripsplit-backend/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsRepository is the gorm-backed materialization store.
type StatsRepository struct {
	db    *gorm.DB
	codec services.MapCodec
}

var _ services.StatsStore = (*StatsRepository)(nil)

func NewStatsRepository(db *gorm.DB, codec services.MapCodec) *StatsRepository {
	if codec == nil {
		codec = services.JSONCodec{}
	}
	return &StatsRepository{db: db, codec: codec}
}

// SaveSnapshot upserts the trip, member and wallet rows of one snapshot and
// drops rows of members or wallets that no longer exist, in one transaction.
// On error nothing is changed.
func (r *StatsRepository) SaveSnapshot(ctx context.Context, snapshot *models.TripSnapshot) error {
	trip, members, wallets, err := EncodeSnapshot(r.codec, snapshot)
	if err != nil {
		return err
	}
	tripID := snapshot.Trip.TripID

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "trip_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_expense", "average_expense", "member_count",
				"transaction_count", "category_totals", "category_ratios", "updated_at",
			}),
		}).Create(&trip).Error
		if err != nil {
			return err
		}

		memberIDs := make([]uuid.UUID, 0, len(members))
		for _, m := range members {
			memberIDs = append(memberIDs, m.MemberID)
		}
		if len(members) > 0 {
			err = tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "trip_id"}, {Name: "member_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"member_name", "total_amount", "by_category", "should_pay", "balance", "updated_at",
				}),
			}).Create(&members).Error
			if err != nil {
				return err
			}
		}
		stale := tx.Where("trip_id = ?", tripID)
		if len(memberIDs) > 0 {
			stale = stale.Where("member_id NOT IN ?", memberIDs)
		}
		if err := stale.Delete(&models.MemberStats{}).Error; err != nil {
			return err
		}

		walletIDs := make([]uuid.UUID, 0, len(wallets))
		for _, w := range wallets {
			walletIDs = append(walletIDs, w.WalletID)
		}
		if len(wallets) > 0 {
			err = tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "wallet_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"trip_id", "wallet_name", "balance_by_member", "total_balance",
					"transaction_count", "total_deposited", "total_spent", "remaining", "updated_at",
				}),
			}).Create(&wallets).Error
			if err != nil {
				return err
			}
		}
		stale = tx.Where("trip_id = ?", tripID)
		if len(walletIDs) > 0 {
			stale = stale.Where("wallet_id NOT IN ?", walletIDs)
		}
		return stale.Delete(&models.WalletStats{}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: save stats of trip %s: %v", services.ErrPersistence, tripID, err)
	}
	return nil
}

func (r *StatsRepository) TripStats(ctx context.Context, tripID uuid.UUID) (*models.TripAggregate, error) {
	var row models.TripStats
	err := r.db.WithContext(ctx).Where("trip_id = ?", tripID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no stats for trip %s", services.ErrNotFound, tripID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read trip stats %s: %v", services.ErrPersistence, tripID, err)
	}
	return DecodeTripStats(r.codec, row)
}

func (r *StatsRepository) MemberStats(ctx context.Context, tripID uuid.UUID) ([]models.MemberAggregate, error) {
	var rows []models.MemberStats
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order(`member_name COLLATE "C" ASC, member_id ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: read member stats of trip %s: %v", services.ErrPersistence, tripID, err)
	}
	if len(rows) == 0 {
		if err := r.requireTrip(ctx, tripID); err != nil {
			return nil, err
		}
	}
	return DecodeMemberStats(r.codec, rows)
}

func (r *StatsRepository) WalletStats(ctx context.Context, tripID uuid.UUID) ([]models.WalletAggregate, error) {
	var rows []models.WalletStats
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order(`wallet_name COLLATE "C" ASC, wallet_id ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: read wallet stats of trip %s: %v", services.ErrPersistence, tripID, err)
	}
	if len(rows) == 0 {
		if err := r.requireTrip(ctx, tripID); err != nil {
			return nil, err
		}
	}
	return DecodeWalletStats(r.codec, rows)
}

// requireTrip tells an empty materialized list apart from a trip that was
// never materialized.
func (r *StatsRepository) requireTrip(ctx context.Context, tripID uuid.UUID) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TripStats{}).Where("trip_id = ?", tripID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("%w: read trip stats %s: %v", services.ErrPersistence, tripID, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: no stats for trip %s", services.ErrNotFound, tripID)
	}
	return nil
}

// DeleteTripStats removes everything materialized for a trip.
func (r *StatsRepository) DeleteTripStats(ctx context.Context, tripID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", tripID).Delete(&models.MemberStats{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", tripID).Delete(&models.WalletStats{}).Error; err != nil {
			return err
		}
		return tx.Where("trip_id = ?", tripID).Delete(&models.TripStats{}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: delete stats of trip %s: %v", services.ErrPersistence, tripID, err)
	}
	return nil
}
