// Package catalog supplies the question list for an interview.
//
// Job-tailored interviews resolve a job post and the candidate's application
// through a Catalog; when either is missing Resolve fails with
// services.ErrMissingContext and no session is started. Generic interviews use
// interview.FallbackQuestions.
//
// FileCatalog reads job posts and applications from a YAML file. HTTPCatalog
// queries the job-post service over REST and keeps results in a TTL cache.
package catalog
