package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	"github.com/sarchlab/arena/app"
	"github.com/sarchlab/arena/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Monitor", func() {
	var (
		m     *Monitor
		sched *sim.Scheduler
	)

	BeforeEach(func() {
		fs := app.NewFilesystem("Files")
		mail := app.NewEmailClient("Mail", "user@example.com")

		rc := sim.NewRunContext(
			sim.NewEventGraph(),
			[]sim.App{fs, mail},
		)
		sched = sim.NewScheduler(rc, sim.OracleMode, 10)

		m = NewMonitor()
		m.RegisterScheduler(sched)
	})

	It("should register the apps of the run in name order", func() {
		Expect(m.apps).To(HaveLen(2))
		Expect(m.apps[0].Name()).To(Equal("Files"))
		Expect(m.apps[1].Name()).To(Equal("Mail"))
	})

	It("should attach a stream hook to the scheduler", func() {
		Expect(sched.NumHooks()).To(Equal(1))
	})

	It("should report the current time", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/now", nil)

		m.now(w, r)

		Expect(w.Body.String()).To(HavePrefix(`{"now":0.0`))
	})

	It("should report the run status", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/status", nil)

		m.status(w, r)

		rsp := statusRsp{}
		err := json.Unmarshal(w.Body.Bytes(), &rsp)

		Expect(err).To(BeNil())
		Expect(rsp.Status).To(Equal("NOT_STARTED"))
		Expect(rsp.Mode).To(Equal("oracle"))
		Expect(rsp.Duration).To(Equal(10.0))
	})

	It("should list apps as a JSON array", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/list_apps", nil)

		m.listApps(w, r)

		Expect(w.Body.String()).To(Equal(`["Files","Mail"]`))
	})

	It("should return 404 for an unknown app", func() {
		w := httptest.NewRecorder()

		a := m.findAppOr404(w, "NoSuchApp")

		Expect(a).To(BeNil())
		Expect(w.Code).To(Equal(404))
	})

	It("should report state counts as progress", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/progress", nil)

		m.progress(w, r)

		counts := map[string]int{}
		err := json.Unmarshal(w.Body.Bytes(), &counts)

		Expect(err).To(BeNil())
	})
})
