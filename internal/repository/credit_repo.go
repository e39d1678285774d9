package repository

import (
	"errors"

	"spotshare/internal/domain"
	"spotshare/internal/models"

	"gorm.io/gorm"
)

// CreditRepository is the ledger. Every balance move is an atomic SQL
// read-modify-write paired with an append-only transaction row inside one
// database transaction, so balance == sum(transactions) holds at all times.
type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// WithTx returns a repository bound to an open transaction so ledger moves
// can be composed into larger atomic operations (settlement, spot release).
func (r *CreditRepository) WithTx(tx *gorm.DB) *CreditRepository {
	return &CreditRepository{db: tx}
}

// GetOrCreate returns the user's account, creating it with the welcome bonus
// and its welcome_bonus transaction if this is the first credit-relevant
// action. The unique index on user_id resolves racing creates; the loser
// re-fetches.
func (r *CreditRepository) GetOrCreate(userID uint) (*models.CreditAccount, error) {
	var acc models.CreditAccount
	err := r.db.Where("user_id = ?", userID).First(&acc).Error
	if err == nil {
		return &acc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	createErr := r.db.Transaction(func(tx *gorm.DB) error {
		acc = models.CreditAccount{UserID: userID, Balance: domain.WelcomeBonusCredits}
		if err := tx.Create(&acc).Error; err != nil {
			return err
		}
		return tx.Create(&models.CreditTransaction{
			UserID:      userID,
			Amount:      domain.WelcomeBonusCredits,
			Kind:        domain.TxWelcomeBonus,
			Description: "Welcome credits",
		}).Error
	})
	if createErr != nil {
		// Lost the creation race: someone else inserted the account first.
		if err := r.db.Where("user_id = ?", userID).First(&acc).Error; err == nil {
			return &acc, nil
		}
		return nil, createErr
	}
	return &acc, nil
}

func (r *CreditRepository) GetBalance(userID uint) (int, error) {
	acc, err := r.GetOrCreate(userID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Debit removes amount from the user's balance. The check-then-decrement is
// a single conditional UPDATE (balance >= amount in the WHERE clause), so
// concurrent debits cannot drive the balance negative. Returns the new
// balance or domain.ErrInsufficientCredits with nothing written.
func (r *CreditRepository) Debit(userID uint, amount int, kind, description string, relatedSpotID, relatedUserID *uint) (int, error) {
	if _, err := r.GetOrCreate(userID); err != nil {
		return 0, err
	}
	var balance int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CreditAccount{}).
			Where("user_id = ? AND balance >= ?", userID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInsufficientCredits
		}
		if err := tx.Create(&models.CreditTransaction{
			UserID:        userID,
			Amount:        -amount,
			Kind:          kind,
			Description:   description,
			RelatedSpotID: relatedSpotID,
			RelatedUserID: relatedUserID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.CreditAccount{}).
			Select("balance").
			Where("user_id = ?", userID).
			Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Credit adds amount to the user's balance. Always succeeds for an existing
// or creatable account.
func (r *CreditRepository) Credit(userID uint, amount int, kind, description string, relatedSpotID, relatedUserID *uint) (int, error) {
	if _, err := r.GetOrCreate(userID); err != nil {
		return 0, err
	}
	var balance int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CreditAccount{}).
			Where("user_id = ?", userID).
			Update("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Create(&models.CreditTransaction{
			UserID:        userID,
			Amount:        amount,
			Kind:          kind,
			Description:   description,
			RelatedSpotID: relatedSpotID,
			RelatedUserID: relatedUserID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.CreditAccount{}).
			Select("balance").
			Where("user_id = ?", userID).
			Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *CreditRepository) ListTransactions(userID uint, limit, offset int) ([]models.CreditTransaction, error) {
	var list []models.CreditTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// SumTransactions returns the signed sum of all ledger entries for the user.
// Matches the account balance by construction.
func (r *CreditRepository) SumTransactions(userID uint) (int, error) {
	var sum int
	err := r.db.Model(&models.CreditTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}

// SumEarnedByKinds totals positive transactions of the given kinds (account
// stats display).
func (r *CreditRepository) SumEarnedByKinds(userID uint, kinds []string) (int, error) {
	var sum int
	err := r.db.Model(&models.CreditTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND amount > 0 AND kind IN ?", userID, kinds).
		Scan(&sum).Error
	return sum, err
}
