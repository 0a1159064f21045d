package user_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/role"
	"github.com/aura-baza/aura-hr/internal/transport"
	"github.com/aura-baza/aura-hr/internal/user"
	"github.com/aura-baza/aura-hr/internal/user/memory"
)

var _ = Describe("User Handler Integration", func() {
	var (
		router  chi.Router
		handler *user.Handler
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		store := memory.NewStore(user.SeedUsers()...)
		mutator := user.NewMutator(store, role.DefaultCatalog(), newSequentialIDs(), &plainHasher{})
		service := user.NewService(store, mutator, slogger)

		handler = user.NewHandler(service, user.Meta{
			Departments:     errors.DefaultDepartments,
			Statuses:        user.Statuses,
			PageSizes:       errors.DefaultPageSizes,
			DefaultPageSize: user.DefaultLimit,
		})
		handler.BaseHandler = &transport.BaseHandler{Logger: slogger}

		router = chi.NewRouter()
		router.Get("/users", handler.ListUsers)
		router.Post("/users", handler.CreateUser)
		router.Patch("/users/bulk", handler.BulkUpdateUsers)
		router.Get("/users/{id}", handler.GetUser)
		router.Put("/users/{id}", handler.UpdateUser)
		router.Delete("/users/{id}", handler.DeleteUser)
		router.Get("/meta", handler.GetMeta)
	})

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) *errors.AppError {
		var envelope struct {
			Error *errors.AppError `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&envelope)).To(Succeed())
		Expect(envelope.Error).NotTo(BeNil())
		return envelope.Error
	}

	It("should list users with filters and paging from the query string", func() {
		w := serve(http.MethodGet, "/users?status=active&page=1&limit=2", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var page user.Page
		Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
		Expect(userIDs(page.Data)).To(Equal([]string{"1", "2"}))
		Expect(page.TotalPages).To(Equal(1))
	})

	It("should use camelCase keys and hide the password hash", func() {
		w := serve(http.MethodGet, "/users/1", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var raw map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
		Expect(raw).To(HaveKey("firstName"))
		Expect(raw).To(HaveKey("lastLogin"))
		Expect(raw).To(HaveKey("createdAt"))
		Expect(raw).NotTo(HaveKey("passwordHash"))
		Expect(raw).NotTo(HaveKey("PasswordHash"))
	})

	It("should reject an invalid status filter with 400", func() {
		w := serve(http.MethodGet, "/users?status=retired", "")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w).Type).To(Equal(errors.ErrorTypeValidation))
	})

	It("should return 404 for an unknown user", func() {
		w := serve(http.MethodGet, "/users/999", "")

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(decodeError(w).Code).To(Equal(errors.ErrCodeUserNotFound))
	})

	It("should create a user and return 201", func() {
		w := serve(http.MethodPost, "/users", `{
			"username": "ana.lopez",
			"email": "ana.lopez@company.com",
			"firstName": "Ana",
			"lastName": "Lopez",
			"password": "secret1",
			"roleIds": ["3"],
			"department": "Calidad"
		}`)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var created user.User
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ID).To(Equal("100"))
		Expect(created.Status).To(Equal(user.StatusActive))
		Expect(created.Roles).To(HaveLen(1))

		w = serve(http.MethodGet, "/users?search=ana", "")
		var page user.Page
		Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
		Expect(page.Total).To(Equal(1))
	})

	It("should report field errors for an invalid create", func() {
		w := serve(http.MethodPost, "/users", `{"username": "ab", "email": "nope"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		appErr := decodeError(w)
		details, ok := appErr.Details.(errors.ValidationErrors)
		Expect(ok).To(BeTrue())

		fields := make([]string, len(details.Errors))
		for i, e := range details.Errors {
			fields[i] = e.Field
		}
		Expect(fields).To(ContainElements("username", "email", "firstName", "lastName", "password"))
	})

	It("should reject a malformed body", func() {
		w := serve(http.MethodPost, "/users", `{"username":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should apply a partial update", func() {
		w := serve(http.MethodPut, "/users/3", `{"status": "active"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var updated user.User
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Status).To(Equal(user.StatusActive))
		Expect(updated.Username).To(Equal("mike.johnson"))
	})

	It("should delete with 204 and then 404", func() {
		Expect(serve(http.MethodDelete, "/users/2", "").Code).To(Equal(http.StatusNoContent))
		Expect(serve(http.MethodDelete, "/users/2", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should bulk update only the ids that exist", func() {
		w := serve(http.MethodPatch, "/users/bulk", `{"ids": ["1", "999"], "updates": {"status": "inactive"}}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var users []*user.User
		Expect(json.NewDecoder(w.Body).Decode(&users)).To(Succeed())
		Expect(userIDs(users)).To(Equal([]string{"1"}))
		Expect(users[0].Status).To(Equal(user.StatusInactive))
	})

	It("should serve the reference data", func() {
		w := serve(http.MethodGet, "/meta", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var meta user.Meta
		Expect(json.NewDecoder(w.Body).Decode(&meta)).To(Succeed())
		Expect(meta.Departments).To(ContainElement("Recursos Humanos"))
		Expect(meta.PageSizes).To(Equal([]int{10, 25, 50, 100}))
		Expect(meta.DefaultPageSize).To(Equal(25))
		Expect(meta.Statuses).To(HaveLen(3))
	})
})
