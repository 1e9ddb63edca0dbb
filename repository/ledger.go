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

// LedgerRepository reads and writes ledger rows through gorm.
type LedgerRepository struct {
	db *gorm.DB
}

var _ services.LedgerStore = (*LedgerRepository)(nil)

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func notFoundOr(err error, what string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", services.ErrNotFound, what, id)
	}
	return fmt.Errorf("%w: read %s %s: %v", services.ErrPersistence, what, id, err)
}

func (r *LedgerRepository) MembersByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at ASC, id ASC").
		Find(&members).Error
	return members, err
}

func (r *LedgerRepository) MembersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Member, error) {
	out := make(map[uuid.UUID]models.Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var members []models.Member
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}
	for _, m := range members {
		out[m.ID] = m
	}
	return out, nil
}

func (r *LedgerRepository) WalletsByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Wallet, error) {
	var wallets []models.Wallet
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at ASC, id ASC").
		Find(&wallets).Error
	return wallets, err
}

func (r *LedgerRepository) Wallet(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, "id = ?", walletID).Error; err != nil {
		return nil, notFoundOr(err, "wallet", walletID)
	}
	return &wallet, nil
}

func (r *LedgerRepository) WalletMembersByWallets(ctx context.Context, walletIDs []uuid.UUID) ([]models.WalletMember, error) {
	if len(walletIDs) == 0 {
		return nil, nil
	}
	var rows []models.WalletMember
	err := r.db.WithContext(ctx).
		Where("wallet_id IN ?", walletIDs).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *LedgerRepository) TransactionsByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("transaction_date DESC, created_at DESC").
		Find(&transactions).Error
	return transactions, err
}

func (r *LedgerRepository) Transaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "transaction", id)
	}
	return &txn, nil
}

func (r *LedgerRepository) SplitsByTransactions(ctx context.Context, transactionIDs []uuid.UUID) ([]models.TransactionSplit, error) {
	if len(transactionIDs) == 0 {
		return nil, nil
	}
	var splits []models.TransactionSplit
	err := r.db.WithContext(ctx).
		Where("transaction_id IN ?", transactionIDs).
		Order("created_at ASC, id ASC").
		Find(&splits).Error
	return splits, err
}

func (r *LedgerRepository) CategoriesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Category, error) {
	out := make(map[uuid.UUID]models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var categories []models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, c := range categories {
		out[c.ID] = c
	}
	return out, nil
}

func (r *LedgerRepository) CreateTransaction(ctx context.Context, txn *models.Transaction, splits []models.TransactionSplit) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Splits").Create(txn).Error; err != nil {
			return err
		}
		return createSplits(tx, txn.ID, splits)
	})
	if err != nil {
		return fmt.Errorf("%w: create transaction: %v", services.ErrPersistence, err)
	}
	return nil
}

func (r *LedgerRepository) UpdateTransaction(ctx context.Context, txn *models.Transaction, splits []models.TransactionSplit, replaceSplits bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Splits").Save(txn).Error; err != nil {
			return err
		}
		if !replaceSplits {
			return nil
		}
		if err := tx.Where("transaction_id = ?", txn.ID).Delete(&models.TransactionSplit{}).Error; err != nil {
			return err
		}
		return createSplits(tx, txn.ID, splits)
	})
	if err != nil {
		return fmt.Errorf("%w: update transaction %s: %v", services.ErrPersistence, txn.ID, err)
	}
	return nil
}

func createSplits(tx *gorm.DB, transactionID uuid.UUID, splits []models.TransactionSplit) error {
	if len(splits) == 0 {
		return nil
	}
	for i := range splits {
		splits[i].TransactionID = transactionID
	}
	return tx.Create(&splits).Error
}

func (r *LedgerRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&models.TransactionSplit{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Transaction{}, "id = ?", id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("%w: delete transaction %s: %v", services.ErrPersistence, id, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: transaction %s", services.ErrNotFound, id)
	}
	return nil
}

// SetWalletBalances upserts one row per listed member, relying on the unique
// (wallet_id, member_id) index. Members not listed keep their balance.
func (r *LedgerRepository) SetWalletBalances(ctx context.Context, walletID uuid.UUID, balances []models.WalletMember) error {
	if len(balances) == 0 {
		return nil
	}
	for i := range balances {
		balances[i].WalletID = walletID
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_id"}, {Name: "member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&balances).Error
	if err != nil {
		return fmt.Errorf("%w: set balances of wallet %s: %v", services.ErrPersistence, walletID, err)
	}
	return nil
}
