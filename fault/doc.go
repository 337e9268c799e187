// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// Errors that need to carry diagnosis data (which account, which
// asset, required vs. available) are structured types that compare
// equal to their base sentinel under errors.Is
package fault
