package models

import "time"

// SchedulerLock holds the structure for the schedulerlocks collection in mongo
type SchedulerLock struct {
	Name       string    `json:"name" bson:"_id"`
	Owner      string    `json:"owner" bson:"owner"`
	AcquiredAt time.Time `json:"acquiredAt" bson:"acquiredAt"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
}
