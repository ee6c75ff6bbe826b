package metrics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"feedbackflow/src/infra/metrics"
)

var _ = Describe("Metrics", func() {
	It("counts mutation outcomes per label set", func() {
		m := metrics.New(prometheus.NewRegistry())

		m.ObserveMutation("group", "add", "committed")
		m.ObserveMutation("group", "add", "committed")
		m.ObserveMutation("group", "add", "rolled_back")

		Expect(testutil.ToFloat64(m.MutationsTotal.WithLabelValues("group", "add", "committed"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.MutationsTotal.WithLabelValues("group", "add", "rolled_back"))).To(Equal(1.0))
	})

	It("labels tracking decodes by validity", func() {
		m := metrics.New(prometheus.NewRegistry())

		m.ObserveTrackingDecode(false)

		Expect(testutil.ToFloat64(m.TrackingDecodesTotal.WithLabelValues("invalid"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.TrackingDecodesTotal.WithLabelValues("valid"))).To(Equal(0.0))
	})

	It("labels audit writes by result", func() {
		m := metrics.New(prometheus.NewRegistry())

		m.ObserveAuditWrite("failed")

		Expect(testutil.ToFloat64(m.AuditWritesTotal.WithLabelValues("failed"))).To(Equal(1.0))
	})

	It("can be registered once per registry", func() {
		registry := prometheus.NewRegistry()
		metrics.New(registry)

		Expect(func() { metrics.New(registry) }).To(Panic())
	})
})
