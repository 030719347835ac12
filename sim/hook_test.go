package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type orderedHook struct {
	id    int
	order *[]int
}

func (h *orderedHook) Func(HookCtx) {
	*h.order = append(*h.order, h.id)
}

var _ = Describe("HookableBase", func() {
	var hb *HookableBase

	BeforeEach(func() {
		hb = &HookableBase{}
	})

	It("should invoke hooks in registration order", func() {
		var order []int
		hb.AcceptHook(&orderedHook{id: 1, order: &order})
		hb.AcceptHook(&orderedHook{id: 2, order: &order})

		hb.InvokeHook(HookCtx{})

		Expect(hb.NumHooks()).To(Equal(2))
		Expect(order).To(Equal([]int{1, 2}))
	})

	It("should reject registering the same hook twice", func() {
		h := &orderedHook{}
		hb.AcceptHook(h)

		Expect(func() {
			hb.AcceptHook(h)
		}).To(Panic())
	})
})
