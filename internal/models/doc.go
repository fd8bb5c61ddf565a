// Package models defines the core domain records for racha.
//
// # Records
//
//   - Participant: a person who can pay for or share in expenses
//   - Event: a trip, dinner or household whose expenses are settled together
//   - Expense / Participation: who paid how much, and who owes which share
//   - Subgroup: participants that settle internally and act as one unit
//   - Confirmation: the persisted paid/confirmed status of a suggestion
//
// # Design Principles
//
//  1. **Flat records**: relationships are int64 ids, never pointers. Display
//     joins happen at the API boundary.
//  2. **Fixed-point money**: every amount is money.Cents.
//  3. **Derived data is not stored**: balances and suggestions are recomputed
//     on every read; only Confirmation rows are durable.
package models
