package database

import (
	"time"

	"agora/internal/observability"

	"gorm.io/gorm"
)

const queryStartKey = "agora:query_start"

// queryMetrics is a GORM plugin that feeds observability.DatabaseQueryLatency.
type queryMetrics struct{}

func (queryMetrics) Name() string { return "agora:query_metrics" }

func (queryMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("agora:before_create", startTimer); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("agora:after_create", observe("create")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("agora:before_query", startTimer); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("agora:after_query", observe("select")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("agora:before_update", startTimer); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("agora:after_update", observe("update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("agora:before_delete", startTimer); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("agora:after_delete", observe("delete")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("agora:before_raw", startTimer); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("agora:after_raw", observe("raw"))
}

func startTimer(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func observe(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		observability.ObserveQuery(operation, table, start)
	}
}
