package branch

import "github.com/sarchlab/owcet/cache"

// Row builds the three BHT domains for one branch-history row: n is the
// number of conditional branches aliasing into the row, and access maps a
// block to the row-local indices of branches it evaluates — the same shape
// package cache uses for a memory-cache row, with Associativity fixed at 1
// (spec.md §4.3: BHT categorization runs "the same three analyses").
func Row(n int, access cache.Mapper) (cache.Must, cache.May, cache.Persistence) {
	must := cache.Must{N: n, Associativity: 1, Access: access}
	may := cache.May{N: n, Associativity: 1, Access: access}
	persist := cache.Persistence{N: n, Associativity: 1, Access: access}
	return must, may, persist
}
