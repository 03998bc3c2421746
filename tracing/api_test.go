package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/parkgate/sim"
)

var _ = Describe("Api", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("when validating", func() {
		BeforeEach(func() {
			domain.EXPECT().NumHooks().Return(1).AnyTimes()
			domain.EXPECT().InvokeHook(gomock.Any()).AnyTimes()
		})

		It("should panic if ID is not given", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			Expect(func() {
				StartTask("", domain, "kind", "what")
			}).Should(Panic())
		})

		It("should panic if domain is nil", func() {
			Expect(func() {
				StartTask("id", nil, "kind", "what")
			}).Should(Panic())
		})

		It("should panic if domain's name is empty", func() {
			domain.EXPECT().Name().Return("").AnyTimes()
			Expect(func() {
				StartTask("id", domain, "kind", "what")
			}).Should(Panic())
		})

		It("should panic if kind is empty", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			Expect(func() {
				StartTask("id", domain, "", "what")
			}).Should(Panic())
		})

		It("should panic if what is empty", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			Expect(func() {
				StartTask("id", domain, "kind", "")
			}).Should(Panic())
		})
	})

	It("should not invoke hooks if the domain has none", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		domain.EXPECT().NumHooks().Return(0).AnyTimes()

		StartTask("id", domain, "kind", "what")
		AddTaskStep("id", domain, "step")
		EndTask("id", domain)
	})

	It("should invoke hooks with the task", func() {
		domain.EXPECT().Name().Return("gate").AnyTimes()
		domain.EXPECT().NumHooks().Return(1).AnyTimes()

		var ctxs []sim.HookCtx
		domain.EXPECT().InvokeHook(gomock.Any()).
			Do(func(ctx sim.HookCtx) { ctxs = append(ctxs, ctx) }).
			Times(3)

		StartTask("1", domain, "session", "vehicle")
		AddTaskStep("1", domain, "accepted")
		EndTask("1", domain)

		Expect(ctxs[0].Pos).To(Equal(HookPosTaskStart))
		Expect(ctxs[0].Item.(Task).Location).To(Equal("gate"))
		Expect(ctxs[1].Pos).To(Equal(HookPosTaskStep))
		Expect(ctxs[1].Item.(Task).Steps[0].What).To(Equal("accepted"))
		Expect(ctxs[2].Pos).To(Equal(HookPosTaskEnd))
		Expect(ctxs[2].Item.(Task).ID).To(Equal("1"))
	})
})

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
		tracer   *MockTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
		tracer = NewMockTracer(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should route hook positions to the tracer", func() {
		var hook sim.Hook
		domain.EXPECT().Hooks().Return(nil)
		domain.EXPECT().AcceptHook(gomock.Any()).
			Do(func(h sim.Hook) { hook = h })

		CollectTrace(domain, tracer)

		task := Task{ID: "1"}
		tracer.EXPECT().StartTask(task)
		tracer.EXPECT().StepTask(task)
		tracer.EXPECT().EndTask(task)

		hook.Func(sim.HookCtx{Pos: HookPosTaskStart, Item: task})
		hook.Func(sim.HookCtx{Pos: HookPosTaskStep, Item: task})
		hook.Func(sim.HookCtx{Pos: HookPosTaskEnd, Item: task})
		hook.Func(sim.HookCtx{Pos: sim.HookPosBeforeEvent, Item: task})
	})

	It("should panic if the tracer is already attached", func() {
		existing := &traceHook{t: tracer}
		domain.EXPECT().Hooks().Return([]sim.Hook{existing})
		domain.EXPECT().Name().Return("gate").AnyTimes()

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})
})
