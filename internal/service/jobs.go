package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"skillconnect/internal/models"
	"skillconnect/internal/store"
)

type JobInput struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

type JobService struct {
	jobs     JobRepository
	users    UserRepository
	notifier *NotificationService
}

func NewJobService(jobs JobRepository, users UserRepository, notifier *NotificationService) *JobService {
	return &JobService{jobs: jobs, users: users, notifier: notifier}
}

// Create stores a job and tells each follower of the owner about it.
func (s *JobService) Create(ctx context.Context, ownerID string, in JobInput) (*models.Job, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	job := &models.Job{
		OwnerID:     ownerID,
		Title:       title,
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		Skills:      in.Skills,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.jobs.Insert(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	followers, err := s.users.Followers(ctx, ownerID)
	if err != nil {
		slog.Warn("[SERVICE] Job stored but followers could not be loaded", "job", job.ID.Hex(), "error", err)
		return job, nil
	}

	owner := summaryOf(ctx, s.users, ownerID)
	jobID := job.ID
	for _, follower := range followers {
		err := s.notifier.Notify(ctx, &models.NotificationRecord{
			RecipientID:  follower,
			Type:         models.NotificationNewJobByConnection,
			SourceUserID: ownerID,
			RelatedJobID: &jobID,
			Text:         fmt.Sprintf("%s posted a new job: %s", owner.Name, job.Title),
			Link:         "/jobs/" + job.ID.Hex(),
		})
		if err != nil {
			slog.Warn("[SERVICE] Failed to notify follower of new job", "job", job.ID.Hex(), "follower", follower, "error", err)
		}
	}
	slog.Info("[SERVICE] Job created", "job", job.ID.Hex(), "owner", ownerID, "followers", len(followers))

	return job, nil
}

// Apply records an application and notifies the job owner.
func (s *JobService) Apply(ctx context.Context, applicantID, jobID, resumeRef string) (*models.Application, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID == applicantID {
		return nil, fmt.Errorf("%w: cannot apply to your own job", ErrInvalidInput)
	}

	app := &models.Application{
		JobID:       job.ID,
		ApplicantID: applicantID,
		ResumeRef:   resumeRef,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.jobs.InsertApplication(ctx, app); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to persist application: %w", err)
	}

	applicant := summaryOf(ctx, s.users, applicantID)
	jobRef := job.ID
	err = s.notifier.Notify(ctx, &models.NotificationRecord{
		RecipientID:  job.OwnerID,
		Type:         models.NotificationJobApplication,
		SourceUserID: applicantID,
		RelatedJobID: &jobRef,
		Text:         fmt.Sprintf("%s applied to %s", applicant.Name, job.Title),
		Link:         "/jobs/" + job.ID.Hex() + "/applications",
	})
	if err != nil {
		slog.Warn("[SERVICE] Application stored but notification failed", "job", job.ID.Hex(), "error", err)
	}

	return app, nil
}

// RegisterInterest is idempotent: only the first call notifies the owner.
func (s *JobService) RegisterInterest(ctx context.Context, userID, jobID string) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.OwnerID == userID {
		return fmt.Errorf("%w: cannot register interest in your own job", ErrInvalidInput)
	}

	err = s.jobs.InsertInterest(ctx, &models.Interest{JobID: job.ID, UserID: userID, CreatedAt: time.Now().UTC()})
	if errors.Is(err, store.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to persist interest: %w", err)
	}

	user := summaryOf(ctx, s.users, userID)
	jobRef := job.ID
	err = s.notifier.Notify(ctx, &models.NotificationRecord{
		RecipientID:  job.OwnerID,
		Type:         models.NotificationInterest,
		SourceUserID: userID,
		RelatedJobID: &jobRef,
		Text:         fmt.Sprintf("%s is interested in %s", user.Name, job.Title),
		Link:         "/jobs/" + job.ID.Hex(),
	})
	if err != nil {
		slog.Warn("[SERVICE] Interest stored but notification failed", "job", job.ID.Hex(), "error", err)
	}
	return nil
}

func (s *JobService) loadJob(ctx context.Context, jobID string) (*models.Job, error) {
	id, err := store.ParseID(jobID)
	if err != nil {
		return nil, err
	}
	return s.jobs.Get(ctx, id)
}
