package api_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aura-baza/aura-hr/api"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Document Suite")
}

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromData(api.OpenAPI)
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("describes every user operation", func() {
		Expect(doc.Paths.Find("/users").Get).NotTo(BeNil())
		Expect(doc.Paths.Find("/users").Post).NotTo(BeNil())
		Expect(doc.Paths.Find("/users/bulk").Patch).NotTo(BeNil())
		Expect(doc.Paths.Find("/users/{id}").Get).NotTo(BeNil())
		Expect(doc.Paths.Find("/users/{id}").Put).NotTo(BeNil())
		Expect(doc.Paths.Find("/users/{id}").Delete).NotTo(BeNil())
	})

	It("uses camelCase for the page envelope", func() {
		page := doc.Components.Schemas["UserPage"].Value
		Expect(page.Properties).To(HaveKey("totalPages"))
		Expect(page.Required).To(ConsistOf("data", "total", "page", "limit", "totalPages"))
	})

	It("leaves login and health public", func() {
		for _, path := range []string{"/auth/login", "/auth/refresh", "/health", "/ping"} {
			item := doc.Paths.Find(path)
			Expect(item).NotTo(BeNil(), path)
			for _, op := range item.Operations() {
				Expect(op.Security).NotTo(BeNil(), path)
				Expect(*op.Security).To(BeEmpty(), path)
			}
		}
	})
})
