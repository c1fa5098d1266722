// Package interview holds the interview domain model: questions, responses,
// sessions, and evaluations, plus the fallback question set and the narration
// scripts spoken by the interviewer.
//
// Session.Validate enforces the invariants every persisted session satisfies:
// responses never outnumber questions, and a session is completed exactly when
// it carries both an evaluation and an end time.
package interview
