package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/owcet/cache"
	"github.com/sarchlab/owcet/hai"
)

var _ = Describe("Persistence", func() {
	It("starts every level untouched (⊥)", func() {
		p := cache.Persistence{N: 1, Associativity: 2}
		in := cache.NewPersistState(1)
		Expect(p.PersistentAt(in, 0, 0)).To(BeFalse())
	})

	It("becomes persistent at a level on first injection and never returns to ⊥", func() {
		p := cache.Persistence{N: 1, Associativity: 2, Access: accessMap{0: {0}}}
		in := cache.NewPersistState(1)
		in = p.Transfer(in, blk(0))
		Expect(p.PersistentAt(in, 0, 0)).To(BeTrue())
	})

	It("pushes a fresh ⊥ item on loop entry and pops it on loop exit", func() {
		p := cache.Persistence{N: 1, Associativity: 2, Access: accessMap{0: {0}}}
		in := cache.NewPersistState(1)
		in = p.Transfer(in, blk(0)) // whole-item (level 0) becomes persistent
		Expect(p.Depth(in)).To(Equal(1))

		in = p.EnterContext(in, hai.CtxLoop)
		Expect(p.Depth(in)).To(Equal(2))
		Expect(p.PersistentAt(in, 1, 0)).To(BeFalse()) // new level starts at ⊥
		Expect(p.PersistentAt(in, 0, 0)).To(BeTrue())  // outer level unaffected

		in = p.LeaveContext(in, hai.CtxLoop)
		Expect(p.Depth(in)).To(Equal(1))
	})

	It("ignores CtxFunc (persistence tracks loop nesting only)", func() {
		p := cache.Persistence{N: 1, Associativity: 2}
		in := cache.NewPersistState(1)
		Expect(p.Depth(p.EnterContext(in, hai.CtxFunc))).To(Equal(1))
	})

	It("Bottom is the identity for Join regardless of stack depth", func() {
		p := cache.Persistence{N: 1, Associativity: 2}
		deep := p.EnterContext(cache.NewPersistState(1), hai.CtxLoop)
		Expect(p.Join(p.Bottom(), deep)).To(Equal(deep))
	})

	It("Top is the absorbing element for Join", func() {
		p := cache.Persistence{N: 1, Associativity: 2}
		deep := p.EnterContext(cache.NewPersistState(1), hai.CtxLoop)
		Expect(p.Join(p.Top(), deep)).To(Equal(p.Top()))
	})
})
