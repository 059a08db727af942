// Package models defines the core domain models for Nexo.
//
// # Money
//
// Every monetary amount is a decimal.Decimal, rounded to two places at the
// validation boundary. Amounts are always non-negative; direction is carried
// by context (a WalletTransaction's Type, or which side of a Split a user
// sits on), never by sign.
//
// # Identity
//
// Entities use int64 identifiers assigned by the database. Relationships are
// expressed as ID fields rather than pointers to avoid circular references.
//
// # Derived vs stored
//
// Balances between users are always derived from expense splits at read
// time, never stored. The only stored balance is WalletAccount.Balance,
// which must equal the signed sum of the account's transaction history.
package models
