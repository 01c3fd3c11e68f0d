// Package htlctest provides helpers for testing code built on top of the
// htlc packages: mock authenticators and random conditions.
package htlctest
