// Package ui implements an interactive terminal client using bubbletea's Elm architecture.
//
// The TUI mirrors the routes resolved by the guard package:
//  1. Sign-in (/) : email and password, with remember-me
//  2. Sign-up (/signup) : name, email, password and confirmation
//  3. Home (/home) : debounced movie search with a result list
//  4. Movie (/movie/{id}) : full record for one title
//  5. Not found : anything else
//
// The (view) [Model] implements bubbletea's Init/Update/View pattern. Search, detail and
// session snapshots are published from other goroutines; subscribers only raise a coalescing
// signal and the model reads the latest snapshot when the matching [Msg] arrives.
//
// Text fields take most keys, so quitting is ctrl+c everywhere and q only where no field has focus.
package ui
