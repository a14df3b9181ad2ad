// Package services contains server-side business logic. This file implements
// UserService: user records, append-only profile info, test results and the
// basic KYC check that runs once a profile is complete.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/logging"
	"github.com/paket-core/funder/internal/server/kyc"
	"github.com/paket-core/funder/internal/server/models"
	"github.com/paket-core/funder/internal/server/repositories/repomanager"
)

// UserService manages users and everything recorded about them.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	allowance   *AllowanceService
	scorer      kyc.Scorer
	logger      logging.Logger
	now         func() time.Time
}

// NewUserService constructs a UserService. The allowance service feeds
// ListUsers; the scorer runs basic KYC from SetUserInfo.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, allowance *AllowanceService, scorer kyc.Scorer, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		allowance:   allowance,
		scorer:      scorer,
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}
}

// CreateUser registers a user. Both pubkey and call sign are required and
// unique; a collision yields a DuplicateKey error naming the field.
func (s *UserService) CreateUser(ctx context.Context, pubkey, callSign string) (*models.User, error) {
	if pubkey == "" || callSign == "" {
		return nil, common.New(common.KindInvalidArgument, "pubkey and call_sign are required")
	}
	if err := checkLengths(
		limit("pubkey", pubkey, models.MaxPubkeyLen),
		limit("call_sign", callSign, models.MaxCallSignLen),
	); err != nil {
		return nil, err
	}

	user := &models.User{Pubkey: pubkey, CallSign: callSign}
	if err := s.repomanager.Users(s.db).Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user created", "pubkey", pubkey, "call_sign", callSign)
	return user, nil
}

// GetUser looks a user up by exactly one of pubkey or call sign.
func (s *UserService) GetUser(ctx context.Context, pubkey, callSign string) (*models.User, error) {
	if (pubkey == "") == (callSign == "") {
		return nil, common.New(common.KindInvalidArgument, "specify either pubkey or call_sign")
	}

	repo := s.repomanager.Users(s.db)
	if pubkey != "" {
		return repo.GetByPubkey(ctx, pubkey)
	}
	return repo.GetByCallSign(ctx, callSign)
}

// SetUserInfo appends a snapshot with the supplied fields and returns the
// merged current info. When the merged info holds a full name, phone number
// and address, the basic KYC check runs and its score is recorded as the
// "basic" test. A KYC failure is returned after the snapshot is stored.
func (s *UserService) SetUserInfo(ctx context.Context, pubkey string, update models.UserInfoUpdate) (*models.UserInfo, error) {
	if pubkey == "" {
		return nil, common.New(common.KindInvalidArgument, "pubkey is required")
	}
	if err := checkLengths(
		limit("pubkey", pubkey, models.MaxPubkeyLen),
		fieldLimit{name: "full_name", value: update.FullName, max: models.MaxFullNameLen},
		fieldLimit{name: "phone_number", value: update.PhoneNumber, max: models.MaxPhoneNumberLen},
		fieldLimit{name: "address", value: update.Address, max: models.MaxAddressLen},
	); err != nil {
		return nil, err
	}

	infos := s.repomanager.UserInfos(s.db)
	if err := infos.Insert(ctx, pubkey, update, s.now()); err != nil {
		return nil, err
	}

	info, err := infos.Current(ctx, pubkey)
	if err != nil {
		return nil, err
	}

	if info.Complete() {
		if err := s.runBasicKYC(ctx, info); err != nil {
			return info, err
		}
	}
	return info, nil
}

func (s *UserService) runBasicKYC(ctx context.Context, info *models.UserInfo) error {
	score, err := s.scorer.ScoreBasic(ctx, *info.FullName, *info.Address, *info.PhoneNumber)
	if err != nil {
		s.logger.Error(ctx, "basic kyc failed", "pubkey", info.Pubkey, "error", err)
		return common.Wrap(common.KindInternal, "basic kyc failed", err)
	}

	if _, err := s.RecordTestResult(ctx, info.Pubkey, common.BasicTestName, score); err != nil {
		return err
	}
	s.logger.Info(ctx, "basic kyc scored", "pubkey", info.Pubkey, "result", score)
	return nil
}

// GetUserInfo returns the merged current info of a user.
func (s *UserService) GetUserInfo(ctx context.Context, pubkey string) (*models.UserInfo, error) {
	return s.repomanager.UserInfos(s.db).Current(ctx, pubkey)
}

// RecordTestResult appends an outcome of the named test.
func (s *UserService) RecordTestResult(ctx context.Context, pubkey, name string, result int64) (*models.TestResult, error) {
	if pubkey == "" || name == "" {
		return nil, common.New(common.KindInvalidArgument, "pubkey and test name are required")
	}
	if err := checkLengths(
		limit("pubkey", pubkey, models.MaxPubkeyLen),
		limit("name", name, models.MaxTestNameLen),
	); err != nil {
		return nil, err
	}

	tr := &models.TestResult{Pubkey: pubkey, Name: name, Result: result, Timestamp: s.now()}
	if err := s.repomanager.TestResults(s.db).Insert(ctx, tr); err != nil {
		return nil, err
	}
	return tr, nil
}

// LatestTestResult returns the most recent result of the named test, or 0.
func (s *UserService) LatestTestResult(ctx context.Context, pubkey, name string) (int64, error) {
	return s.repomanager.TestResults(s.db).Latest(ctx, pubkey, name)
}

// ListUsers returns every user with its current info and quota figures.
// It walks the whole table and is meant for debugging.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.UserSummary, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	infos := s.repomanager.UserInfos(s.db)
	out := make([]*models.UserSummary, 0, len(users))

	for _, u := range users {
		summary := &models.UserSummary{User: *u}

		info, err := infos.Current(ctx, u.Pubkey)
		switch {
		case err == nil:
			summary.Info = info
		case !errors.Is(err, common.ErrNotFound):
			return nil, err
		}

		if summary.MonthlyAllowance, err = s.allowance.MonthlyAllowance(ctx, u.Pubkey); err != nil {
			return nil, err
		}
		if summary.MonthlyExpenditure, err = s.allowance.MonthlyExpenditure(ctx, u.Pubkey, now); err != nil {
			return nil, err
		}

		out = append(out, summary)
	}
	return out, nil
}
