// Package models defines the domain entities shared by the bggp pipeline.
//
//   - [Game] : an (id, name) pair parsed from a collection document
//   - [Collection] : ordered, de-duplicated games of one user
//   - [GameDetails] : display fields extracted from a per-game document
//   - [Run] : one recorded execution of the profile pipeline
//
// Every display field of [GameDetails] falls back to [Unknown] when the source document does not carry it.
package models
