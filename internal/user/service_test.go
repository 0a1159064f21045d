package user_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/core/events"
	"github.com/aura-baza/aura-hr/internal/role"
	"github.com/aura-baza/aura-hr/internal/user"
	"github.com/aura-baza/aura-hr/internal/user/memory"
	"github.com/aura-baza/aura-hr/pkg/logger"
)

// brokenStore fails every call once broken is set.
type brokenStore struct {
	user.Store
	broken bool
}

func (s *brokenStore) SetShouldFail(fail bool) { s.broken = fail }

func (s *brokenStore) List(ctx context.Context) ([]*user.User, error) {
	if s.broken {
		return nil, fmt.Errorf("connection refused")
	}
	return s.Store.List(ctx)
}

func (s *brokenStore) Get(ctx context.Context, id string) (*user.User, error) {
	if s.broken {
		return nil, fmt.Errorf("connection refused")
	}
	return s.Store.Get(ctx, id)
}

func (s *brokenStore) Update(ctx context.Context, id string, apply func(*user.User)) (*user.User, error) {
	if s.broken {
		return nil, fmt.Errorf("connection refused")
	}
	return s.Store.Update(ctx, id, apply)
}

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		store     *brokenStore
		publisher *recordingPublisher
		observer  *recordingObserver
		service   *user.Service
		clock     *fixedClock
	)

	BeforeEach(func() {
		ctx = errors.ContextWithUserID(context.Background(), "admin")
		store = &brokenStore{Store: memory.NewStore(user.SeedUsers()...)}
		publisher = &recordingPublisher{}
		observer = &recordingObserver{}

		clock = &fixedClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
		mutator := user.NewMutator(store, role.DefaultCatalog(), newSequentialIDs(), &plainHasher{}, user.WithClock(clock.Now))
		service = user.NewService(store, mutator, logger.Discard(),
			user.WithPublisher(publisher),
			user.WithObserver(observer),
		)
	})

	Describe("GetUsers", func() {
		It("returns the first page of active users", func() {
			page, err := service.GetUsers(ctx, 1, 2, user.Filters{Status: user.StatusActive})

			Expect(err).NotTo(HaveOccurred())
			Expect(userIDs(page.Data)).To(Equal([]string{"1", "2"}))
			Expect(page.TotalPages).To(Equal(1))
		})

		It("applies the default limit when none is given", func() {
			page, err := service.GetUsers(ctx, 0, 0, user.Filters{})

			Expect(err).NotTo(HaveOccurred())
			Expect(page.Page).To(Equal(1))
			Expect(page.Limit).To(Equal(user.DefaultLimit))
			Expect(page.Total).To(Equal(4))
		})

		It("rejects a limit above the configured maximum instead of shrinking it", func() {
			service = user.NewService(store, nil, logger.Discard(), user.WithPaging(user.Paging{DefaultLimit: 10, MaxLimit: 50}))

			page, err := service.GetUsers(ctx, 1, 500, user.Filters{})

			Expect(page).To(BeNil())
			Expect(errors.IsValidation(err)).To(BeTrue())
			appErr, _ := errors.IsAppError(err)
			Expect(appErr.Details.(errors.ValidationErrors).Errors[0].Field).To(Equal("limit"))
		})

		It("honours every accepted limit exactly", func() {
			for i := 0; i < 150; i++ {
				Expect(store.Insert(ctx, &user.User{
					ID:       fmt.Sprintf("bulk-%d", i),
					Username: fmt.Sprintf("bulk.%d", i),
					Status:   user.StatusActive,
				})).To(Succeed())
			}

			for _, limit := range []int{1, 7, 25, 100} {
				page, err := service.GetUsers(ctx, 1, limit, user.Filters{})
				Expect(err).NotTo(HaveOccurred())
				Expect(page.Limit).To(Equal(limit))
				Expect(page.Data).To(HaveLen(limit))
				Expect(page.TotalPages).To(Equal((154 + limit - 1) / limit))
			}
		})

		It("rejects an unknown status filter", func() {
			_, err := service.GetUsers(ctx, 1, 10, user.Filters{Status: "retired"})

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errors.ErrorTypeValidation))
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(observer.samples).To(ConsistOf("get_users:validation_error"))
		})

		It("translates storage failures into an internal error", func() {
			store.SetShouldFail(true)

			_, err := service.GetUsers(ctx, 1, 10, user.Filters{})

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errors.ErrorTypeInternal))
			Expect(appErr.Message).To(Equal("Failed to fetch users"))
		})
	})

	Describe("GetUserByID", func() {
		It("returns the record", func() {
			u, err := service.GetUserByID(ctx, "4")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("sarah.wilson"))
		})

		It("maps a missing id to NOT_FOUND", func() {
			_, err := service.GetUserByID(ctx, "999")

			Expect(errors.IsNotFound(err)).To(BeTrue())
			appErr, _ := errors.IsAppError(err)
			Expect(appErr.Code).To(Equal(errors.ErrCodeUserNotFound))
			Expect(appErr.Message).To(Equal("User not found"))
		})
	})

	Describe("FindByUsername", func() {
		It("matches case-insensitively", func() {
			u, err := service.FindByUsername(ctx, "JANE.SMITH")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal("2"))
		})

		It("keeps the password hash of created users", func() {
			_, err := service.CreateUser(ctx, user.CreateUserRequest{
				Username: "ana.lopez", Email: "ana@company.com", FirstName: "Ana", LastName: "Lopez", Password: "secret1",
			})
			Expect(err).NotTo(HaveOccurred())

			u, err := service.FindByUsername(ctx, "ana.lopez")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.PasswordHash).To(Equal("hashed:secret1"))
		})

		It("reports an unknown username as NOT_FOUND", func() {
			_, err := service.FindByUsername(ctx, "ghost")
			Expect(errors.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("mutations", func() {
		It("publishes a created event carrying the actor", func() {
			u, err := service.CreateUser(ctx, user.CreateUserRequest{
				Username: "ana.lopez", Email: "ana@company.com", FirstName: "Ana", LastName: "Lopez", Password: "secret1",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.Types()).To(Equal([]string{events.EventTypeUserCreated}))
			evt := publisher.events[0].(*events.UserChangedEvent)
			Expect(evt.UserID).To(Equal(u.ID))
			Expect(evt.ActorID).To(Equal("admin"))
			Expect(observer.samples).To(ConsistOf("create_user:ok"))
		})

		It("stores what was asked for on create", func() {
			created, err := service.CreateUser(ctx, user.CreateUserRequest{
				Username: "ana.lopez", Email: "ana@company.com", FirstName: "Ana", LastName: "Lopez",
				Password: "secret1", RoleIDs: []string{"3"}, Department: "Calidad", Status: user.StatusSuspended,
			})
			Expect(err).NotTo(HaveOccurred())

			u, err := service.GetUserByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("ana.lopez"))
			Expect(u.Email).To(Equal("ana@company.com"))
			Expect(u.FirstName).To(Equal("Ana"))
			Expect(u.LastName).To(Equal("Lopez"))
			Expect(u.Department).To(Equal("Calidad"))
			Expect(u.Status).To(Equal(user.StatusSuspended))
			Expect(u.Roles).To(HaveLen(1))
			Expect(u.Roles[0].ID).To(Equal("3"))
			Expect(u.CreatedAt).To(Equal(clock.now))
			Expect(u.UpdatedAt).To(Equal(clock.now))
		})

		It("leaves every other field untouched when only the status changes", func() {
			before, err := service.GetUserByID(ctx, "2")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateUser(ctx, "2", user.UpdateUserRequest{Status: statusPtr(user.StatusSuspended)})
			Expect(err).NotTo(HaveOccurred())

			after, err := service.GetUserByID(ctx, "2")
			Expect(err).NotTo(HaveOccurred())
			expected := *before
			expected.Status = user.StatusSuspended
			expected.UpdatedAt = clock.now
			Expect(*after).To(Equal(expected))
		})

		It("does not publish when validation fails", func() {
			_, err := service.CreateUser(ctx, user.CreateUserRequest{Username: "a"})

			Expect(errors.IsValidation(err)).To(BeTrue())
			Expect(publisher.events).To(BeEmpty())
		})

		It("publishes the patched fields on update", func() {
			_, err := service.UpdateUser(ctx, "1", user.UpdateUserRequest{
				FirstName: strPtr("Johnny"),
				Status:    statusPtr(user.StatusSuspended),
			})

			Expect(err).NotTo(HaveOccurred())
			evt := publisher.events[0].(*events.UserChangedEvent)
			Expect(evt.EventType()).To(Equal(events.EventTypeUserUpdated))
			Expect(evt.Fields).To(Equal([]string{"firstName", "status"}))
		})

		It("maps an update of a missing id to NOT_FOUND", func() {
			_, err := service.UpdateUser(ctx, "999", user.UpdateUserRequest{FirstName: strPtr("X")})
			Expect(errors.IsNotFound(err)).To(BeTrue())
			Expect(publisher.events).To(BeEmpty())
		})

		It("deletes and then reports the id as missing", func() {
			Expect(service.DeleteUser(ctx, "3")).To(Succeed())
			Expect(publisher.Types()).To(Equal([]string{events.EventTypeUserDeleted}))

			_, err := service.GetUserByID(ctx, "3")
			Expect(errors.IsNotFound(err)).To(BeTrue())

			err = service.DeleteUser(ctx, "3")
			Expect(errors.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("BulkUpdateUsers", func() {
		It("updates the ids that exist and ignores the rest", func() {
			users, err := service.BulkUpdateUsers(ctx, []string{"1", "999"}, user.UpdateUserRequest{
				Status: statusPtr(user.StatusInactive),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(userIDs(users)).To(Equal([]string{"1"}))
			Expect(users[0].Status).To(Equal(user.StatusInactive))

			evt := publisher.events[0].(*events.UserChangedEvent)
			Expect(evt.EventType()).To(Equal(events.EventTypeUserBulkUpdated))
		})

		It("publishes nothing when no id matched", func() {
			users, err := service.BulkUpdateUsers(ctx, []string{"999"}, user.UpdateUserRequest{
				Status: statusPtr(user.StatusInactive),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(BeEmpty())
			Expect(publisher.events).To(BeEmpty())
		})

		It("reports storage failures as internal errors", func() {
			store.SetShouldFail(true)

			_, err := service.BulkUpdateUsers(ctx, []string{"1"}, user.UpdateUserRequest{
				Status: statusPtr(user.StatusInactive),
			})

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Failed to update users"))
			Expect(observer.samples).To(ConsistOf("bulk_update_users:internal_error"))
		})
	})
})
