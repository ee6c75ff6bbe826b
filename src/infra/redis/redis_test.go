package redis_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	goredis "github.com/redis/go-redis/v9"

	"feedbackflow/src/infra/redis"
)

var _ = Describe("RedisClient", func() {
	var (
		ctx    context.Context
		server *miniredis.Miniredis
		client *redis.RedisClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = miniredis.RunT(GinkgoT())
		client = redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: server.Addr()}), time.Minute, "ff:")
		DeferCleanup(client.Close)
	})

	Context("when caching values", func() {
		It("reports a miss for unknown keys", func() {
			value, found, err := client.GetKey(ctx, "missing")

			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
			Expect(value).To(BeNil())
		})

		It("stores under the prefix with the default TTL", func() {
			// ACT
			err := client.SetWithRegistry(ctx, "groups:org1", []byte(`[]`), "registry:org1")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Exists("ff:groups:org1")).To(BeTrue())
			Expect(server.TTL("ff:groups:org1")).To(Equal(time.Minute))

			value, found, err := client.GetKey(ctx, "groups:org1")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(string(value)).To(Equal(`[]`))
		})

		It("invalidates every key tracked by a registry", func() {
			// ARRANGE
			Expect(client.SetWithRegistry(ctx, "groups:org1", []byte(`[1]`), "registry:org1")).To(Succeed())
			Expect(client.SetWithRegistry(ctx, "users:org1", []byte(`[2]`), "registry:org1")).To(Succeed())
			Expect(client.SetWithRegistry(ctx, "groups:org2", []byte(`[3]`), "registry:org2")).To(Succeed())

			// ACT
			err := client.InvalidateRegistry(ctx, "registry:org1")

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Exists("ff:groups:org1")).To(BeFalse())
			Expect(server.Exists("ff:users:org1")).To(BeFalse())
			Expect(server.Exists("ff:registry:org1")).To(BeFalse())
			Expect(server.Exists("ff:groups:org2")).To(BeTrue())
		})
	})

	Context("when rate limiting", func() {
		It("allows up to the limit within the window", func() {
			for i := 0; i < 3; i++ {
				allowed, err := client.Allow(ctx, "token:client", 3, time.Minute)
				Expect(err).NotTo(HaveOccurred())
				Expect(allowed).To(BeTrue())
			}

			allowed, err := client.Allow(ctx, "token:client", 3, time.Minute)

			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())
		})

		It("opens a new window once the previous one expires", func() {
			// ARRANGE
			_, _ = client.Allow(ctx, "k", 1, time.Minute)
			blocked, _ := client.Allow(ctx, "k", 1, time.Minute)
			Expect(blocked).To(BeFalse())

			// ACT
			server.FastForward(time.Minute + time.Second)
			allowed, err := client.Allow(ctx, "k", 1, time.Minute)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())
		})

		It("keeps counters of different keys apart", func() {
			_, _ = client.Allow(ctx, "a", 1, time.Minute)

			allowed, err := client.Allow(ctx, "b", 1, time.Minute)

			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())
		})
	})

	It("answers health checks", func() {
		Expect(client.HealthCheck(ctx)).To(Succeed())
	})
})
