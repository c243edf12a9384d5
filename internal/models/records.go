package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationMessage            NotificationType = "message"
	NotificationJobApplication     NotificationType = "jobApplication"
	NotificationNewJobByConnection NotificationType = "newJobByConnection"
	NotificationInterest           NotificationType = "interest"
)

// NotificationRecord is owned by its recipient: only they may read, mark or delete it.
type NotificationRecord struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID  string              `bson:"recipientId" json:"recipientId"`
	Type         NotificationType    `bson:"type" json:"type"`
	SourceUserID string              `bson:"sourceUserId" json:"sourceUserId"`
	RelatedJobID *primitive.ObjectID `bson:"relatedJobId,omitempty" json:"relatedJobId,omitempty"`
	Text         string              `bson:"text" json:"text"`
	Link         string              `bson:"link,omitempty" json:"link,omitempty"`
	IsRead       bool                `bson:"isRead" json:"isRead"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}

type ChatMessage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID    string             `bson:"senderId" json:"senderId"`
	RecipientID string             `bson:"recipientId" json:"recipientId"`
	Text        string             `bson:"text,omitempty" json:"text,omitempty"`
	ImageRef    string             `bson:"imageRef,omitempty" json:"imageRef,omitempty"`
	Seen        bool               `bson:"seen" json:"seen"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`

	// Sender is resolved at send time and never stored.
	Sender *UserSummary `bson:"-" json:"sender,omitempty"`
}

type UserSummary struct {
	ID     string `bson:"_id" json:"id"`
	Name   string `bson:"name" json:"name"`
	Avatar string `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

type Job struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     string             `bson:"ownerId" json:"ownerId"`
	Title       string             `bson:"title" json:"title"`
	Company     string             `bson:"company,omitempty" json:"company,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Skills      []string           `bson:"skills,omitempty" json:"skills,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type Application struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID       primitive.ObjectID `bson:"jobId" json:"jobId"`
	ApplicantID string             `bson:"applicantId" json:"applicantId"`
	ResumeRef   string             `bson:"resumeRef,omitempty" json:"resumeRef,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type Interest struct {
	JobID     primitive.ObjectID `bson:"jobId" json:"jobId"`
	UserID    string             `bson:"userId" json:"userId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Follow struct {
	FollowerID string    `bson:"followerId" json:"followerId"`
	FolloweeID string    `bson:"followeeId" json:"followeeId"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
