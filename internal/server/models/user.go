// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered platform member. Pubkey is the primary identity;
// CallSign is a unique human readable handle.
type User struct {
	Pubkey   string
	CallSign string
}

// UserInfo is the current view of a user's optional profile fields, assembled
// from the append-only snapshot history. Nil means never supplied.
type UserInfo struct {
	Pubkey      string
	FullName    *string
	PhoneNumber *string
	Address     *string
	UpdatedAt   time.Time
}

// Complete reports whether every field needed for basic KYC is present.
func (i *UserInfo) Complete() bool {
	return nonEmpty(i.FullName) && nonEmpty(i.PhoneNumber) && nonEmpty(i.Address)
}

// UserInfoUpdate is a partial snapshot; nil fields are not supplied.
type UserInfoUpdate struct {
	FullName    *string
	PhoneNumber *string
	Address     *string
}

// Empty reports whether the update carries no field at all.
func (u UserInfoUpdate) Empty() bool {
	return u.FullName == nil && u.PhoneNumber == nil && u.Address == nil
}

// UserSummary is a user with its current info and quota figures.
type UserSummary struct {
	User
	Info               *UserInfo
	MonthlyAllowance   int64
	MonthlyExpenditure int64
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
