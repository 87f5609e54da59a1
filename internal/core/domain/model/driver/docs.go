// Package driver provides domain entities and business logic for courier
// management in the dispatch system. It implements the Driver aggregate root
// with availability management and delivery reservations.
//
// The package includes:
//   - Driver: The aggregate root that manages driver identity, profile,
//     availability, live position and delivery statistics
//   - Status: The availability states offline, available, busy and on_break
//
// Key business rules:
//   - New drivers start offline and must explicitly go available
//   - Busy is entered only through Reserve and left only through Release
//   - A driver references its current delivery exactly while Busy
//   - Only active, available drivers with a known position are matchable
package driver
