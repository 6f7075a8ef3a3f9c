// Package uniuri generates random strings from crypto/rand for visitor
// tokens and download request reference codes.
package uniuri
