// Package routing parses the SPA's hash fragments so the API can resolve
// public links the same way the frontend does.
package routing

import (
	"net/url"
	"strings"
)

type Kind string

const (
	AppShell         Kind = "app"
	PublicBooking    Kind = "public-booking"
	PublicLeadForm   Kind = "public-lead-form"
	Feedback         Kind = "feedback"
	SuggestionForm   Kind = "suggestion-form"
	RevisionForm     Kind = "revision-form"
	ClientPortal     Kind = "portal"
	FreelancerPortal Kind = "freelancer-portal"
	InvalidLink      Kind = "invalid-link"
)

type Route struct {
	Kind     Kind       `json:"kind"`
	AccessID string     `json:"access_id,omitempty"`
	Query    url.Values `json:"query,omitempty"`
}

// Public reports whether the route is reachable without login.
func (r Route) Public() bool {
	return r.Kind != AppShell
}

type RevisionRef struct {
	ProjectID    string `json:"project_id"`
	FreelancerID string `json:"freelancer_id"`
	RevisionID   string `json:"revision_id"`
}

// Parse dispatches a fragment such as "#/portal/abc" or "/revision-form?projectId=..".
// Anything unrecognised falls through to the app shell.
func Parse(fragment string) Route {
	f := strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	f = strings.TrimPrefix(f, "/")

	path, rawQuery, _ := strings.Cut(f, "?")
	path = strings.TrimSuffix(path, "/")

	for _, k := range []Kind{PublicBooking, PublicLeadForm, Feedback, SuggestionForm} {
		if under(path, k) {
			return Route{Kind: k}
		}
	}
	if under(path, RevisionForm) {
		q, err := url.ParseQuery(rawQuery)
		if err != nil {
			return Route{Kind: InvalidLink}
		}
		r := Route{Kind: RevisionForm, Query: q}
		if _, ok := r.Revision(); !ok {
			return Route{Kind: InvalidLink}
		}
		return r
	}

	if id, ok := strings.CutPrefix(path, string(FreelancerPortal)+"/"); ok {
		return portal(FreelancerPortal, id)
	}
	if id, ok := strings.CutPrefix(path, string(ClientPortal)+"/"); ok {
		return portal(ClientPortal, id)
	}
	if path == string(ClientPortal) || path == string(FreelancerPortal) {
		return Route{Kind: InvalidLink}
	}
	return Route{Kind: AppShell}
}

// under matches the route itself or any path below it.
func under(path string, k Kind) bool {
	rest, ok := strings.CutPrefix(path, string(k))
	return ok && (rest == "" || rest[0] == '/')
}

func portal(kind Kind, id string) Route {
	id, err := url.PathUnescape(id)
	if err != nil || id == "" || strings.Contains(id, "/") {
		return Route{Kind: InvalidLink}
	}
	return Route{Kind: kind, AccessID: id}
}

// Revision extracts the three required ids of a revision-form link.
func (r Route) Revision() (RevisionRef, bool) {
	ref := RevisionRef{
		ProjectID:    strings.TrimSpace(r.Query.Get("projectId")),
		FreelancerID: strings.TrimSpace(r.Query.Get("freelancerId")),
		RevisionID:   strings.TrimSpace(r.Query.Get("revisionId")),
	}
	ok := ref.ProjectID != "" && ref.FreelancerID != "" && ref.RevisionID != ""
	return ref, ok
}
