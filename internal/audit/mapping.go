package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Membership route overrides: audit as user_added, user_removed, role_changed on resource "user".
var routeOverrides = map[string]ActionResource{
	"POST /orgs/{org_id}/members":             {Action: "user_added", Resource: "user"},
	"DELETE /orgs/{org_id}/members/{user_id}": {Action: "user_removed", Resource: "user"},
	"PATCH /orgs/{org_id}/members/{user_id}":  {Action: "role_changed", Resource: "user"},
	"POST /orgs/{org_id}/invites":             {Action: "invite_created", Resource: "invite"},
}

// ParseRoute returns action and resource for an HTTP method and chi route
// pattern (e.g. POST /orgs/{org_id}/projects -> create project).
// Resource is the last literal path segment, singularized. Action follows the
// method: create, update, delete, or get/list for reads.
func ParseRoute(method, pattern string) ActionResource {
	if ar, ok := routeOverrides[method+" "+pattern]; ok {
		return ar
	}
	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	resource := "unknown"
	endsWithParam := false
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, "{") {
			if i == len(segments)-1 {
				endsWithParam = true
			}
			continue
		}
		resource = segmentToResource(s)
		break
	}
	return ActionResource{Action: methodToAction(method, endsWithParam), Resource: resource}
}

func segmentToResource(segment string) string {
	switch segment {
	case "orgs":
		return "organization"
	case "members":
		return "user"
	}
	return strings.TrimSuffix(segment, "s")
}

func methodToAction(method string, single bool) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	case http.MethodGet, http.MethodHead:
		if single {
			return "get"
		}
		return "list"
	default:
		return strings.ToLower(method)
	}
}
