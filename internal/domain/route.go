package domain

// RouteDecision is the classifier's verdict for one question: which department
// should answer it and whether the caller asked for a spoken response.
// Created once per request and consumed immediately; never persisted.
type RouteDecision struct {
	Department Department
	Voice      bool
}
