// Package models defines the domain entities shared by the flix packages.
//
// The package contains two categories of types:
//
// 1. Local records, persisted through the store package:
//   - [Account] : a registered user; immutable after signup. The signed-in
//     account is also stored whole as the current session.
//
// 2. Read-only projections of OMDb data:
//   - [MovieSummary] : one search hit
//   - [MovieDetail] : the full record for a single title
//
// OMDb reports missing values as the literal "N/A"; use [Present] before rendering a field.
package models
