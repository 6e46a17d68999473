package storage

import "wheelfinder/models"

// InventoryWriter is the interface any canonical-inventory backend must satisfy.
type InventoryWriter interface {
	WriteInventory(rows []models.InventoryRow) error
	Close() error
}

// RecordWriter is the interface for persisting raw per-brand tables before merging.
type RecordWriter interface {
	WriteRecords(records []*models.VehicleRecord) error
	Close() error
}
