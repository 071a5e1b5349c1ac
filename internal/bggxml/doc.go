// Package bggxml reads BoardGameGeek XML API v2 documents.
//
// [ParseCollection] turns a collection response into a [models.Collection].
// [ExtractDetails] pulls the report fields out of a "thing" response, including two poll heuristics:
//
//   - recommended age: the suggested_playerage result with the most votes, first seen wins ties
//   - recommended players: the digits of the suggested_numplayers "recommmendedwith" summary, joined with an en-dash
//
// Missing elements never fail extraction; they yield [models.Unknown].
package bggxml
