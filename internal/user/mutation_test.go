package user_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/role"
	"github.com/aura-baza/aura-hr/internal/user"
	"github.com/aura-baza/aura-hr/internal/user/memory"
)

var _ = Describe("Mutator", func() {
	var (
		ctx     context.Context
		store   *memory.Store
		hasher  *plainHasher
		clock   *fixedClock
		mutator *user.Mutator
	)

	validRequest := func() user.CreateUserRequest {
		return user.CreateUserRequest{
			Username:   "ana.lopez",
			Email:      "ana.lopez@company.com",
			FirstName:  "Ana",
			LastName:   "Lopez",
			Password:   "secret1",
			RoleIDs:    []string{"3", "5"},
			Department: "Calidad",
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = memory.NewStore(user.SeedUsers()...)
		hasher = &plainHasher{}
		clock = &fixedClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
		mutator = user.NewMutator(store, role.DefaultCatalog(), newSequentialIDs(), hasher, user.WithClock(clock.Now))
	})

	Describe("Create", func() {
		It("assigns a fresh id, resolves roles and stamps both timestamps", func() {
			u, err := mutator.Create(ctx, validRequest())

			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal("100"))
			Expect(u.Status).To(Equal(user.StatusActive))
			Expect(u.CreatedAt).To(Equal(clock.now))
			Expect(u.UpdatedAt).To(Equal(u.CreatedAt))
			Expect(u.Roles).To(HaveLen(2))
			Expect(u.Roles[0].Name).To(Equal("Employee"))
			Expect(u.Roles[1].Name).To(Equal("Viewer"))
			Expect(u.PasswordHash).To(Equal("hashed:secret1"))
			Expect(store.Len()).To(Equal(5))
		})

		It("creates a user without roles", func() {
			req := validRequest()
			req.RoleIDs = nil

			u, err := mutator.Create(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Roles).NotTo(BeNil())
			Expect(u.Roles).To(BeEmpty())
		})

		DescribeTable("keeps an explicit status",
			func(status user.Status) {
				req := validRequest()
				req.Status = status

				u, err := mutator.Create(ctx, req)
				Expect(err).NotTo(HaveOccurred())
				Expect(u.Status).To(Equal(status))

				stored, err := store.Get(ctx, u.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored.Status).To(Equal(status))
			},
			Entry("active", user.StatusActive),
			Entry("inactive", user.StatusInactive),
			Entry("suspended", user.StatusSuspended),
		)

		DescribeTable("rejects invalid requests",
			func(mutate func(*user.CreateUserRequest), field string) {
				req := validRequest()
				mutate(&req)

				_, err := mutator.Create(ctx, req)

				Expect(errors.IsValidation(err)).To(BeTrue())
				appErr, _ := errors.IsAppError(err)
				details := appErr.Details.(errors.ValidationErrors)
				Expect(details.Errors[0].Field).To(Equal(field))
				Expect(store.Len()).To(Equal(4))
			},
			Entry("missing username", func(r *user.CreateUserRequest) { r.Username = "" }, "username"),
			Entry("short username", func(r *user.CreateUserRequest) { r.Username = "ab" }, "username"),
			Entry("bad email", func(r *user.CreateUserRequest) { r.Email = "ana@" }, "email"),
			Entry("blank first name", func(r *user.CreateUserRequest) { r.FirstName = "   " }, "firstName"),
			Entry("missing last name", func(r *user.CreateUserRequest) { r.LastName = "" }, "lastName"),
			Entry("short password", func(r *user.CreateUserRequest) { r.Password = "12345" }, "password"),
			Entry("unknown status", func(r *user.CreateUserRequest) { r.Status = "retired" }, "status"),
			Entry("unknown role", func(r *user.CreateUserRequest) { r.RoleIDs = []string{"1", "42"} }, "roleIds"),
		)

		It("surfaces hasher failures without inserting", func() {
			hasher.SetShouldFail(true)

			_, err := mutator.Create(ctx, validRequest())
			Expect(err).To(HaveOccurred())
			Expect(errors.IsValidation(err)).To(BeFalse())
			Expect(store.Len()).To(Equal(4))
		})
	})

	Describe("Update", func() {
		It("changes nothing but status and updatedAt on a status patch", func() {
			before, err := store.Get(ctx, "1")
			Expect(err).NotTo(HaveOccurred())

			u, err := mutator.Update(ctx, "1", user.UpdateUserRequest{Status: statusPtr(user.StatusSuspended)})
			Expect(err).NotTo(HaveOccurred())

			expected := *before
			expected.Status = user.StatusSuspended
			expected.UpdatedAt = clock.now
			Expect(*u).To(Equal(expected))

			stored, err := store.Get(ctx, "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(*stored).To(Equal(expected))
		})

		It("merges only the given fields and re-stamps updatedAt", func() {
			before, _ := store.Get(ctx, "3")

			u, err := mutator.Update(ctx, "3", user.UpdateUserRequest{Department: strPtr("Operaciones")})

			Expect(err).NotTo(HaveOccurred())
			Expect(u.Department).To(Equal("Operaciones"))
			Expect(u.Username).To(Equal(before.Username))
			Expect(u.Status).To(Equal(before.Status))
			Expect(u.Roles).To(Equal(before.Roles))
			Expect(u.CreatedAt).To(Equal(before.CreatedAt))
			Expect(u.UpdatedAt).To(Equal(clock.now))
		})

		It("replaces roles when roleIds is present and clears them when empty", func() {
			ids := []string{"5"}
			u, err := mutator.Update(ctx, "1", user.UpdateUserRequest{RoleIDs: &ids})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Roles).To(HaveLen(1))
			Expect(u.Roles[0].ID).To(Equal("5"))

			none := []string{}
			u, err = mutator.Update(ctx, "1", user.UpdateUserRequest{RoleIDs: &none})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Roles).To(BeEmpty())
		})

		It("allows every status transition", func() {
			for _, s := range []user.Status{user.StatusSuspended, user.StatusActive, user.StatusInactive, user.StatusSuspended} {
				u, err := mutator.Update(ctx, "2", user.UpdateUserRequest{Status: statusPtr(s)})
				Expect(err).NotTo(HaveOccurred())
				Expect(u.Status).To(Equal(s))
			}
		})

		It("never moves updatedAt before createdAt", func() {
			clock.now = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

			u, err := mutator.Update(ctx, "1", user.UpdateUserRequest{FirstName: strPtr("Johnny")})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.UpdatedAt).To(Equal(u.CreatedAt))
		})

		It("fails for a missing id", func() {
			_, err := mutator.Update(ctx, "999", user.UpdateUserRequest{FirstName: strPtr("X")})
			Expect(err).To(MatchError(user.ErrNotFound))
		})

		It("rejects blanking a required field", func() {
			_, err := mutator.Update(ctx, "1", user.UpdateUserRequest{Email: strPtr("")})
			Expect(errors.IsValidation(err)).To(BeTrue())

			u, _ := store.Get(ctx, "1")
			Expect(u.Email).To(Equal("john.doe@company.com"))
		})

		It("rejects an unknown status", func() {
			_, err := mutator.Update(ctx, "1", user.UpdateUserRequest{Status: statusPtr("retired")})
			Expect(errors.IsValidation(err)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes the record", func() {
			Expect(mutator.Delete(ctx, "2")).To(Succeed())
			_, err := store.Get(ctx, "2")
			Expect(err).To(MatchError(user.ErrNotFound))
		})

		It("fails for a missing id", func() {
			Expect(mutator.Delete(ctx, "999")).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("BulkUpdate", func() {
		It("updates existing ids and silently skips missing ones", func() {
			users, err := mutator.BulkUpdate(ctx, []string{"1", "999"}, user.UpdateUserRequest{Status: statusPtr(user.StatusInactive)})

			Expect(err).NotTo(HaveOccurred())
			Expect(userIDs(users)).To(Equal([]string{"1"}))
			Expect(users[0].Status).To(Equal(user.StatusInactive))
			Expect(users[0].UpdatedAt).To(Equal(clock.now))
		})

		It("returns records in ids order and applies duplicates once", func() {
			users, err := mutator.BulkUpdate(ctx, []string{"4", "2", "4"}, user.UpdateUserRequest{Department: strPtr("Juridica")})

			Expect(err).NotTo(HaveOccurred())
			Expect(userIDs(users)).To(Equal([]string{"4", "2"}))
		})

		It("returns an empty result when nothing matches", func() {
			users, err := mutator.BulkUpdate(ctx, []string{"998", "999"}, user.UpdateUserRequest{Status: statusPtr(user.StatusActive)})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).NotTo(BeNil())
			Expect(users).To(BeEmpty())
		})

		It("rejects an invalid patch before touching any record", func() {
			_, err := mutator.BulkUpdate(ctx, []string{"1", "2"}, user.UpdateUserRequest{Status: statusPtr("gone")})
			Expect(errors.IsValidation(err)).To(BeTrue())

			u, _ := store.Get(ctx, "1")
			Expect(u.Status).To(Equal(user.StatusActive))
		})
	})
})
