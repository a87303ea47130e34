// Package postgres implements the store interfaces against PostgreSQL using
// the pgx stdlib driver. Driver errors are mapped to the store package's
// sentinel errors so upper layers never depend on driver details.
package postgres
