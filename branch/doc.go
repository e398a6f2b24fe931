// Package branch implements BHT (Branch History Table) classification
// (spec.md §4.3): the same MUST/MAY/PERSISTENCE triple package cache
// defines, reused here for branch-history rows of associativity 1 (a BHT
// row predicts one outcome at a time — no replacement policy to model),
// plus the branch-specific category names and the static-direction
// shortcut scenario 4 of spec.md §8 exercises (an if/else whose flow facts
// prove one side dead needs no BHT reasoning at all).
package branch
