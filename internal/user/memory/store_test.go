package memory_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aura-baza/aura-hr/internal/user"
	"github.com/aura-baza/aura-hr/internal/user/memory"
	"github.com/aura-baza/aura-hr/internal/user/storetest"
)

func TestMemory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Memory Store Suite")
}

var _ = storetest.DescribeContract("memory", func() user.Store {
	return memory.NewStore()
})

var _ = Describe("NewStore", func() {
	It("seeds records and drops duplicate ids", func() {
		seed := user.SeedUsers()
		s := memory.NewStore(append(seed, seed[0])...)
		Expect(s.Len()).To(Equal(4))
	})

	It("honours a cancelled context", func() {
		s := memory.NewStore(user.SeedUsers()...)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.List(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})
