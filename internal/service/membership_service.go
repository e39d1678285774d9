package service

import (
	"time"

	"spotshare/internal/domain"
	"spotshare/internal/models"
	"spotshare/internal/repository"
)

// MembershipService handles plan activation and the one-time inclusion bonus.
// Payment collection itself goes through the stub checkout provider; credits
// are only granted once the activation is recorded.
type MembershipService struct {
	memberships *repository.MembershipRepository
	credits     *repository.CreditRepository
}

func NewMembershipService(memberships *repository.MembershipRepository, credits *repository.CreditRepository) *MembershipService {
	return &MembershipService{memberships: memberships, credits: credits}
}

func (s *MembershipService) ListPackages() ([]models.CreditPackage, error) {
	return s.memberships.ListActivePackages()
}

func (s *MembershipService) ListPlans() ([]models.Membership, error) {
	return s.memberships.ListActiveMemberships()
}

func (s *MembershipService) ActiveMembership(userID uint) (*models.UserMembership, error) {
	return s.memberships.GetActiveForUser(userID)
}

// Activate records the membership and grants its included credits as a
// membership_bonus. Callers verify payment before invoking this.
func (s *MembershipService) Activate(userID, membershipID uint, expiresAt *time.Time) (*models.UserMembership, int, error) {
	m, err := s.memberships.GetMembership(membershipID)
	if err != nil {
		return nil, 0, err
	}
	um, err := s.memberships.Activate(userID, m.ID, time.Now(), expiresAt)
	if err != nil {
		return nil, 0, err
	}
	balance, err := s.credits.Credit(userID, m.CreditsIncluded, domain.TxMembershipBonus, "Membership credits", nil, nil)
	if err != nil {
		return um, 0, err
	}
	return um, balance, nil
}
