package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aura-baza/aura-hr/pkg/logger"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

var _ = Describe("sensitive data filtering", func() {
	It("masks nested secrets in JSON bodies", func() {
		out := filterSensitiveBody([]byte(`{"username":"ana","password":"x","nested":{"refreshToken":"y"},"list":[{"secret":"z"}]}`))

		Expect(out).To(ContainSubstring(`"username":"ana"`))
		Expect(out).NotTo(ContainSubstring(`"x"`))
		Expect(out).NotTo(ContainSubstring(`"y"`))
		Expect(out).NotTo(ContainSubstring(`"z"`))
		Expect(strings.Count(out, "[FILTERED]")).To(Equal(3))
	})

	It("drops non-JSON bodies that mention a secret", func() {
		Expect(filterSensitiveBody([]byte("password=hunter2"))).To(Equal("[FILTERED - Contains sensitive data]"))
		Expect(filterSensitiveBody([]byte("plain"))).To(Equal("plain"))
		Expect(filterSensitiveBody(nil)).To(BeEmpty())
	})

	It("masks credential headers", func() {
		h := http.Header{}
		h.Set("Authorization", "Bearer abc")
		h.Set("Accept", "application/json")

		filtered := filterSensitiveHeaders(h)

		Expect(filtered["Authorization"]).To(Equal("[FILTERED]"))
		Expect(filtered["Accept"]).To(Equal("application/json"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("logs the request and the response without leaking the password", func() {
		lg, buf := bufferLogger()
		h := LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"type":"UNAUTHORIZED"}}`))
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"ana","password":"hunter2"}`))
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(buf.String()).To(ContainSubstring(`"msg":"incoming request"`))
		Expect(buf.String()).To(ContainSubstring(`"level":"WARN"`))
		Expect(buf.String()).To(ContainSubstring(`"status_code":401`))
		Expect(buf.String()).NotTo(ContainSubstring("hunter2"))
	})
})

var _ = Describe("RequestID", func() {
	It("keeps an incoming trace id and exposes it to the context logger", func() {
		lg, buf := bufferLogger()
		h := RequestID(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.From(r.Context()).Info("inside")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		Expect(w.Header().Get(TraceHeader)).To(Equal("trace-123"))
		Expect(buf.String()).To(ContainSubstring(`"trace_id":"trace-123"`))
	})

	It("mints one when the caller sends none", func() {
		lg, _ := bufferLogger()
		w := httptest.NewRecorder()
		RequestID(lg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Header().Get(TraceHeader)).To(HaveLen(36))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("answers a panic with the internal error envelope", func() {
		lg, buf := bufferLogger()
		h := RecoveryMiddleware(lg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring(`"type":"INTERNAL_ERROR"`))
		Expect(w.Body.String()).NotTo(ContainSubstring("boom"))
		Expect(buf.String()).To(ContainSubstring("panic recovered"))
	})
})

var _ = Describe("CORS", func() {
	noop := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	It("ignores origins outside the list", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.test")
		w := httptest.NewRecorder()
		CORS("http://localhost:5173")(noop).ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		Expect(w.Code).To(Equal(http.StatusTeapot))
	})

	It("echoes any origin under the wildcard", func() {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "http://any.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		w := httptest.NewRecorder()
		CORS("*")(noop).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://any.test"))
	})
})
