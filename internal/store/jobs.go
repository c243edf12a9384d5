package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillconnect/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type JobStore struct {
	jobs         *mongo.Collection
	applications *mongo.Collection
	interests    *mongo.Collection
}

func NewJobStore(db *mongo.Database) *JobStore {
	return &JobStore{
		jobs:         db.Collection(collJobs),
		applications: db.Collection(collApplications),
		interests:    db.Collection(collInterests),
	}
}

func (s *JobStore) Insert(ctx context.Context, job *models.Job) error {
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if _, err := s.jobs.InsertOne(ctx, job); err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var job models.Job
	err := s.jobs.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return &job, nil
}

// InsertApplication returns ErrDuplicate when the applicant already applied.
func (s *JobStore) InsertApplication(ctx context.Context, app *models.Application) error {
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	if _, err := s.applications.InsertOne(ctx, app); err != nil {
		return fmt.Errorf("failed to insert application: %w", mapWriteErr(err))
	}
	return nil
}

// InsertInterest returns ErrDuplicate when the interest was already recorded.
func (s *JobStore) InsertInterest(ctx context.Context, in *models.Interest) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	if _, err := s.interests.InsertOne(ctx, in); err != nil {
		return fmt.Errorf("failed to insert interest: %w", mapWriteErr(err))
	}
	return nil
}
