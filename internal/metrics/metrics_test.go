package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aura-baza/aura-hr/internal/metrics"
)

func TestMetrics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Metrics Suite")
}

var _ = Describe("Collectors", func() {
	It("exposes recorded samples on the handler", func() {
		c := metrics.New()
		c.ObserveOperation("get_users", "ok", 3*time.Millisecond)
		c.ObserveHTTP(http.MethodGet, "/api/v1/users", http.StatusOK, time.Millisecond)
		c.ObserveFetch("stale")

		rec := httptest.NewRecorder()
		c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		body, _ := io.ReadAll(rec.Body)
		Expect(string(body)).To(ContainSubstring(`aura_hr_users_operations_total{operation="get_users",outcome="ok"} 1`))
		Expect(string(body)).To(ContainSubstring(`aura_hr_http_requests_total{method="GET",route="/api/v1/users",status="200"} 1`))
		Expect(string(body)).To(ContainSubstring(`aura_hr_userview_fetches_total{result="stale"} 1`))
	})

	It("writes a textfile for one-shot processes", func() {
		c := metrics.New()
		c.ObserveFetch("ok")
		path := filepath.Join(GinkgoT().TempDir(), "aura-hr.prom")

		Expect(c.WriteTextfile(path)).To(Succeed())

		body, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring(`aura_hr_userview_fetches_total{result="ok"} 1`))
	})

	It("keeps registries independent", func() {
		a, b := metrics.New(), metrics.New()
		a.ObserveOperation("delete_user", "not_found", time.Millisecond)

		rec := httptest.NewRecorder()
		b.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(rec.Body.String()).NotTo(ContainSubstring(`operation="delete_user"`))
	})
})
