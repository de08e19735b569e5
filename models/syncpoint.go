package models

import "time"

// SyncPoint holds the structure for the syncpoints collection in mongo.
type SyncPoint struct {
	Name            string    `json:"name" bson:"_id"`
	LatestHeadBlock int64     `json:"latestHeadBlock" bson:"latestHeadBlock"`
	UpdatedOn       time.Time `json:"updatedOn" bson:"updatedOn"`
}
