// Package storetest holds the behaviour every user.Store must share.
package storetest

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aura-baza/aura-hr/internal/user"
)

// DescribeContract registers the Store behaviour tests against stores built
// by newStore. Every It starts from a fresh store seeded with user.SeedUsers.
func DescribeContract(name string, newStore func() user.Store) bool {
	return Describe(name+" store contract", func() {
		var (
			ctx   context.Context
			store user.Store
		)

		BeforeEach(func() {
			ctx = context.Background()
			store = newStore()
			n, err := user.Seed(ctx, store)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(4))
		})

		It("lists records in insertion order", func() {
			users, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(users)).To(Equal([]string{"1", "2", "3", "4"}))
			Expect(users[0].Roles).To(HaveLen(1))
			Expect(users[0].Roles[0].Name).To(Equal("Admin"))
			Expect(users[0].LastLogin).NotTo(BeNil())
		})

		It("reports missing ids as ErrNotFound", func() {
			_, err := store.Get(ctx, "999")
			Expect(err).To(MatchError(user.ErrNotFound))

			_, err = store.Update(ctx, "999", func(*user.User) {})
			Expect(err).To(MatchError(user.ErrNotFound))

			Expect(store.Remove(ctx, "999")).To(MatchError(user.ErrNotFound))
		})

		It("rejects a duplicate id", func() {
			dup := user.SeedUsers()[0]
			Expect(store.Insert(ctx, dup)).To(MatchError(user.ErrDuplicateID))
		})

		It("does not let callers alias stored records", func() {
			u, err := store.Get(ctx, "1")
			Expect(err).NotTo(HaveOccurred())
			u.Username = "mutated"
			u.Roles[0].Name = "mutated"

			again, err := store.Get(ctx, "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Username).To(Equal("john.doe"))
			Expect(again.Roles[0].Name).To(Equal("Admin"))
		})

		It("applies updates and keeps identity and creation time", func() {
			before, _ := store.Get(ctx, "3")
			updated, err := store.Update(ctx, "3", func(u *user.User) {
				u.ID = "hijack"
				u.Status = user.StatusActive
				u.CreatedAt = time.Now()
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ID).To(Equal("3"))
			Expect(updated.Status).To(Equal(user.StatusActive))
			Expect(updated.CreatedAt.Equal(before.CreatedAt)).To(BeTrue())

			users, _ := store.List(ctx)
			Expect(ids(users)).To(Equal([]string{"1", "2", "3", "4"}))
		})

		It("removes a record and keeps the order of the rest", func() {
			Expect(store.Remove(ctx, "2")).To(Succeed())

			users, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(users)).To(Equal([]string{"1", "3", "4"}))
		})

		It("appends new records at the end", func() {
			now := time.Now().UTC().Truncate(time.Second)
			Expect(store.Insert(ctx, &user.User{
				ID:        "5",
				Username:  "new.hire",
				Email:     "new.hire@company.com",
				FirstName: "New",
				LastName:  "Hire",
				Status:    user.StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			})).To(Succeed())

			users, _ := store.List(ctx)
			Expect(ids(users)).To(Equal([]string{"1", "2", "3", "4", "5"}))
			Expect(users[4].Roles).To(BeEmpty())
		})

		It("serializes concurrent read-modify-write", func() {
			const writers = 8
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := store.Update(ctx, "1", func(u *user.User) {
						u.Department += "x"
					})
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			u, _ := store.Get(ctx, "1")
			Expect(u.Department).To(Equal("Engineering" + "xxxxxxxx"))
		})
	})
}

func ids(users []*user.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
