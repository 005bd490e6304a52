// Package capacity keeps track of the section's storage capacity and prices
// writes accordingly.
//
// The store cost of a write grows with the size of the data, with the share
// of adults that reported themselves full, and shrinks as the network splits
// into more sections.
package capacity
