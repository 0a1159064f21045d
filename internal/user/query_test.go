package user_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aura-baza/aura-hr/internal/user"
)

var _ = Describe("Query", func() {
	var records []*user.User

	BeforeEach(func() {
		records = user.SeedUsers()
	})

	Describe("filtering", func() {
		It("returns the first page of active users", func() {
			page := user.Query(records, user.Filters{Status: user.StatusActive}, 1, 2)

			Expect(userIDs(page.Data)).To(Equal([]string{"1", "2"}))
			Expect(page.Total).To(Equal(2))
			Expect(page.TotalPages).To(Equal(1))
			Expect(page.Page).To(Equal(1))
			Expect(page.Limit).To(Equal(2))
		})

		It("matches search case-insensitively on any of four fields", func() {
			page := user.Query(records, user.Filters{Search: "DOE"}, 1, 10)
			Expect(userIDs(page.Data)).To(Equal([]string{"1"}))

			page = user.Query(records, user.Filters{Search: "company.com"}, 1, 10)
			Expect(page.Total).To(Equal(4))

			page = user.Query(records, user.Filters{Search: "sarah"}, 1, 10)
			Expect(userIDs(page.Data)).To(Equal([]string{"4"}))
		})

		It("returns every record in order for empty filters without aliasing the input", func() {
			input := append([]*user.User{nil}, records...)

			matched := user.Filter(input, user.Filters{})

			Expect(user.Filters{}.IsZero()).To(BeTrue())
			Expect(userIDs(matched)).To(Equal([]string{"1", "2", "3", "4"}))
			matched[0] = nil
			Expect(input[1]).NotTo(BeNil())
		})

		It("treats status all as no filter", func() {
			page := user.Query(records, user.Filters{Status: user.StatusAll}, 1, 10)
			Expect(page.Total).To(Equal(4))
		})

		It("matches department exactly", func() {
			Expect(user.Query(records, user.Filters{Department: "Sales"}, 1, 10).Total).To(Equal(1))
			Expect(user.Query(records, user.Filters{Department: "sales"}, 1, 10).Total).To(Equal(0))
		})

		It("matches when any role has the id", func() {
			records[2].Roles = append(records[2].Roles, records[0].Roles[0])

			page := user.Query(records, user.Filters{RoleID: "1"}, 1, 10)
			Expect(userIDs(page.Data)).To(Equal([]string{"1", "3"}))
		})

		It("combines every criterion", func() {
			f := user.Filters{Search: "j", Status: user.StatusActive, Department: "Human Resources", RoleID: "2"}
			Expect(userIDs(user.Query(records, f, 1, 10).Data)).To(Equal([]string{"2"}))
		})
	})

	Describe("pagination", func() {
		It("slices the second page", func() {
			page := user.Query(records, user.Filters{}, 2, 2)

			Expect(userIDs(page.Data)).To(Equal([]string{"3", "4"}))
			Expect(page.Total).To(Equal(4))
			Expect(page.TotalPages).To(Equal(2))
		})

		It("returns a short last page", func() {
			page := user.Query(records, user.Filters{}, 2, 3)
			Expect(userIDs(page.Data)).To(Equal([]string{"4"}))
			Expect(page.TotalPages).To(Equal(2))
		})

		It("returns empty data past the last page but keeps the totals", func() {
			page := user.Query(records, user.Filters{}, 5, 2)

			Expect(page.Data).NotTo(BeNil())
			Expect(page.Data).To(BeEmpty())
			Expect(page.Total).To(Equal(4))
			Expect(page.TotalPages).To(Equal(2))
			Expect(page.Page).To(Equal(5))
		})

		It("reports zero pages for an empty result", func() {
			page := user.Query(records, user.Filters{Search: "nobody"}, 1, 25)

			Expect(page.Data).To(BeEmpty())
			Expect(page.Total).To(Equal(0))
			Expect(page.TotalPages).To(Equal(0))
		})
	})

	It("never reorders or mutates its input", func() {
		before := userIDs(records)
		user.Query(records, user.Filters{Status: user.StatusInactive}, 1, 1)
		Expect(userIDs(records)).To(Equal(before))
	})

	It("is deterministic", func() {
		f := user.Filters{Search: "o"}
		Expect(user.Query(records, f, 1, 2)).To(Equal(user.Query(records, f, 1, 2)))
	})
})
