package middleware

import (
	"net/http"

	"github.com/ShodmonX/taskflow-backend/internal/audit"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
)

// Audit records one audit event after each mutating request under an org
// route whose org id is a UUID. Action and resource come from the matched route pattern; the
// response status and request id go into metadata. Reads are not audited.
// Mount it inside the authenticated /orgs/{org_id} group so both the org id
// and the caller are known.
func Audit(logger audit.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := wrap(w)
			next.ServeHTTP(sw, r)
			if logger == nil || !mutating(r.Method) {
				return
			}
			orgID, err := httpx.UUIDParam(r, "org_id")
			if err != nil {
				return
			}
			userID, _ := UserID(r.Context())
			ar := audit.ParseRoute(r.Method, routePattern(r))
			logger.LogEvent(r.Context(), orgID, userID, ar.Action, ar.Resource, audit.Metadata(map[string]any{
				"status":     sw.code,
				"request_id": RequestIDFrom(r.Context()),
			}))
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
