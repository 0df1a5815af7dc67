// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedxor.
//
// go-seedxor is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package seedxor splits a 24-word master secret into two to four XOR
// parts and reconstructs it from parts entered in any order.
//
// Every part is itself a valid 24-word phrase. The XOR of all parts of a
// set equals the original secret; any strict subset is indistinguishable
// from random data. There is no threshold: losing one part loses the
// secret.
//
// Splitting borrows the secret from its holder through a secure.Scope:
//
//	ps, err := splitter.SplitScoped(store, 3, false)
//	if err != nil {
//	    return err
//	}
//	defer ps.Wipe()
//
// Restoring accumulates parts in a Reconstructor and hands the result to
// the store on Commit:
//
//	r, _ := seedxor.NewReconstructor(&seedxor.ReconstructorConfig{Store: store})
//	_ = r.AddPart(partA)
//	_ = r.AddPart(partB)
//	result, err := r.Commit()
//
// SplitFlow and RestoreFlow wrap both in finite-state machines driven by
// typed inputs, for use by a menu system or the CLI.
//
// None of the types in this package are safe for concurrent use; the
// device runs exactly one split or restore at a time.
package seedxor
