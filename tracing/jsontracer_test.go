package tracing

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arena/sim"
)

var _ = Describe("JSONTracer", func() {
	It("should write entries as a JSON array", func() {
		buf := &bytes.Buffer{}
		tracer := NewJSONTracerWithWriter(buf)

		tracer.RecordEntry(sim.LogEntry{EventID: "e1", App: "Files"})
		tracer.RecordEntry(sim.LogEntry{EventID: "e2", App: "Mail"})
		tracer.Flush()
		tracer.finish()

		var records []Record
		Expect(json.Unmarshal(buf.Bytes(), &records)).To(Succeed())
		Expect(records).To(HaveLen(2))
		Expect(records[0].EventID).To(Equal("e1"))
		Expect(records[1].App).To(Equal("Mail"))
	})

	It("should produce an empty array for an empty run", func() {
		buf := &bytes.Buffer{}
		tracer := NewJSONTracerWithWriter(buf)

		tracer.finish()

		var records []Record
		Expect(json.Unmarshal(buf.Bytes(), &records)).To(Succeed())
		Expect(records).To(BeEmpty())
	})
})
