// Package models contains the GORM persistence models. Domain entities carry
// no ORM tags; each model converts with ToDomain and FromDomain, and
// repositories only ever read and write models.
package models
