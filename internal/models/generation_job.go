package models

import "time"

type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Finished reports whether the job reached a terminal status.
func (s JobStatus) Finished() bool { return s == JobDone || s == JobFailed }

// GenerationJob tracks an asynchronous generation request.
type GenerationJob struct {
	ID                  string    `bson:"_id" json:"jobId"`
	UserID              string    `bson:"userId" json:"userId"`
	SourceDocumentID    string    `bson:"sourceDocumentId" json:"documentId"`
	TemplateID          string    `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Instructions        string    `bson:"instructions" json:"instructions"`
	Name                string    `bson:"name,omitempty" json:"name,omitempty"`
	Version             int       `bson:"version,omitempty" json:"version,omitempty"`
	Status              JobStatus `bson:"status" json:"status"`
	Stage               string    `bson:"stage,omitempty" json:"stage,omitempty"`
	ErrorKind           string    `bson:"errorKind,omitempty" json:"errorKind,omitempty"`
	Error               string    `bson:"error,omitempty" json:"error,omitempty"`
	GeneratedDocumentID string    `bson:"generatedDocumentId,omitempty" json:"generatedDocumentId,omitempty"`
	Attempts            int       `bson:"attempts" json:"attempts"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}
