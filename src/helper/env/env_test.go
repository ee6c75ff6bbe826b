package env_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/helper/env"
)

var _ = Describe("env", func() {
	setenv := func(name, value string) {
		Expect(os.Setenv(name, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, name)
	}

	It("falls back to the default when the variable is missing or malformed", func() {
		setenv("FF_TEST_INT", "abc")

		Expect(env.GetInt("FF_TEST_INT", 7)).To(Equal(7))
		Expect(env.GetString("FF_TEST_MISSING", "x")).To(Equal("x"))
		Expect(env.GetDuration("FF_TEST_MISSING", time.Second)).To(Equal(time.Second))
	})

	It("parses values that are present", func() {
		setenv("FF_TEST_INT", "42")
		setenv("FF_TEST_DURATION", "150ms")
		setenv("FF_TEST_BOOL", "true")

		Expect(env.GetInt("FF_TEST_INT", 7)).To(Equal(42))
		Expect(env.GetInt32("FF_TEST_INT")).To(Equal(int32(42)))
		Expect(env.GetDuration("FF_TEST_DURATION")).To(Equal(150 * time.Millisecond))
		Expect(env.GetBool("FF_TEST_BOOL", false)).To(BeTrue())
	})

	It("splits comma separated lists", func() {
		setenv("FF_TEST_BROKERS", "kafka-1:9092, kafka-2:9092,,")

		Expect(env.GetStrings("FF_TEST_BROKERS")).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
		Expect(env.GetStrings("FF_TEST_MISSING", "localhost:9092")).To(Equal([]string{"localhost:9092"}))
	})

	It("panics on required variables that are absent", func() {
		Expect(func() { env.MustGetString("FF_TEST_MISSING") }).To(PanicWith("FF_TEST_MISSING can't be empty"))
		Expect(func() { env.MustGetInt("FF_TEST_MISSING") }).To(Panic())
	})
})
