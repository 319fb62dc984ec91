// Package models defines the core domain models for expensecmd.
//
// # Models
//
//   - Group: a named bucket of expenses owned by exactly one user
//   - Expense: a single amount logged against a group
//   - User: the identity a command is executed on behalf of
//
// # Design Principles
//
// 1. **Ownership everywhere**: every persisted record carries its OwnerID
// 2. **Natural keys**: a group is looked up by (owner, name); the ID is a surrogate
// 3. **Integer money**: amounts are stored as cents to avoid float drift
// 4. **Avoid circular references**: use ID strings instead of pointers for relationships
package models
