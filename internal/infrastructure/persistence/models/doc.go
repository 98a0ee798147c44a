// Package models contains GORM persistence models and their conversions to
// and from domain types. Models are a storage concern: domain aggregates
// never carry gorm tags, and every repository converts at the boundary.
package models
