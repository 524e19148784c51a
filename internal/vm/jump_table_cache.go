// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package vm

import "sync"

// jumpTableCache memoizes JumpTable construction by Features: every call
// frame opened under the same fork configuration can share one table, since
// a JumpTable is immutable once built.
var jumpTableCache = &jumpTableCacheType{
	tables: make(map[string]*JumpTable),
}

type jumpTableCacheType struct {
	mu     sync.RWMutex
	tables map[string]*JumpTable
}

// GetCachedJumpTable returns the JumpTable for f, building and caching one
// on first use.
func GetCachedJumpTable(f Features) *JumpTable {
	key := jumpTableCacheKey(f)

	jumpTableCache.mu.RLock()
	table, ok := jumpTableCache.tables[key]
	jumpTableCache.mu.RUnlock()
	if ok {
		return table
	}

	jumpTableCache.mu.Lock()
	defer jumpTableCache.mu.Unlock()
	if table, ok = jumpTableCache.tables[key]; ok {
		return table
	}

	table = NewJumpTable(f)
	jumpTableCache.tables[key] = table
	return table
}

func jumpTableCacheKey(f Features) string {
	key := ""
	if f.HasDelegateCall {
		key += "Dc"
	}
	if f.HasStaticCall {
		key += "Sc"
	}
	if f.HasRevert {
		key += "Rv"
	}
	if f.HasReturnData {
		key += "Rd"
	}
	if f.HasBitwiseShifting {
		key += "Bs"
	}
	if f.HasCreate2 {
		key += "C2"
	}
	if f.HasExtCodeHash {
		key += "Eh"
	}
	if f.HasSelfBalance {
		key += "Sb"
	}
	if f.HasChainID {
		key += "Ci"
	}
	if f.HasBaseFee {
		key += "Bf"
	}
	if f.HasMCopy {
		key += "Mc"
	}
	if f.HasTransientStorage {
		key += "Ts"
	}
	if f.HasPush0 {
		key += "P0"
	}
	if f.HasBlobHash {
		key += "Bh"
	}
	if f.HasBlobBaseFee {
		key += "Bb"
	}
	if key == "" {
		key = "frontier"
	}
	return key
}

// PrewarmJumpTables pre-builds the JumpTables for FrontierFeatures and
// CancunFeatures, so the first call frame opened against either one doesn't
// pay for the construction. Other feature sets, such as Istanbul's, are
// built on first use.
func PrewarmJumpTables() {
	GetCachedJumpTable(FrontierFeatures())
	GetCachedJumpTable(CancunFeatures())
}
