package models

// Write results keep the document-store result shapes web clients already parse.

type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// Updated builds an UpdateResult from gorm's RowsAffected, which counts matched rows.
func Updated(rows int64) UpdateResult {
	return UpdateResult{MatchedCount: rows, ModifiedCount: rows}
}
