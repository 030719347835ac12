package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("RunContext", func() {
	var mockCtrl *gomock.Controller

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should index apps by name", func() {
		app1 := stubApp(mockCtrl, "App1")
		app2 := stubApp(mockCtrl, "App2")

		rc := NewRunContext(NewEventGraph(), []App{app1, app2})

		a, ok := rc.App("App2")
		Expect(ok).To(BeTrue())
		Expect(a).To(BeIdenticalTo(app2))

		_, ok = rc.App("App3")
		Expect(ok).To(BeFalse())
	})

	It("should reject duplicate app names", func() {
		app1 := stubApp(mockCtrl, "App1")
		app2 := stubApp(mockCtrl, "App1")

		Expect(func() {
			NewRunContext(NewEventGraph(), []App{app1, app2})
		}).To(Panic())
	})

	It("should read the time from its clock", func() {
		rc := NewRunContext(NewEventGraph(), nil)
		Expect(rc.Clock.AdvanceTo(4)).To(Succeed())
		Expect(rc.Now()).To(Equal(VTimeInSec(4)))
	})
})
