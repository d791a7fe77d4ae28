// Package donation implements the donation workflows: recording outgoing
// donations against inventory, editing and deleting them, and recording
// incoming donations.
//
// An outgoing request is resolved (user and item references), validated
// (quantities and demographics), reconciled against the donation's existing
// lines, and applied to stock, all inside one database transaction. A request
// that fails at any stage leaves stock, lines and stats untouched.
package donation
