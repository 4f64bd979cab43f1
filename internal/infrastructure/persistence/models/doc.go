// Package models holds the GORM persistence models of the ledger. Domain
// aggregates stay free of ORM tags; each model converts to and from its
// aggregate with ToDomain / XModelFromDomain.
package models
