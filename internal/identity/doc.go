// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package identity defines the identifier and value types shared by the
// identity aggregates. Constructors validate; the types themselves are plain
// values safe to copy and compare.
package identity
