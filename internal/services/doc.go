// Package services holds the business layer between the HTTP transport and
// the engine packages: request validation, orchestration of comparisons and
// assembly of the dashboard's read models.
package services
