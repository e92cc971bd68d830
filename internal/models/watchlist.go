package models

import "time"

type WatchlistEntry struct {
	UserID    string    `json:"userId" bson:"userId"`
	ContentID string    `json:"contentId" bson:"contentId"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}

// ViewingEvent records the last time a user opened a content item.
type ViewingEvent struct {
	UserID       string    `json:"userId" bson:"userId"`
	ContentID    string    `json:"contentId" bson:"contentId"`
	EpisodeIndex int       `json:"episodeIndex" bson:"episodeIndex"`
	ViewedAt     time.Time `json:"viewedAt" bson:"viewedAt"`
}
