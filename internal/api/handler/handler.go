package handler

import (
	"log/slog"

	"pocketpod/internal/api/storage"
	"pocketpod/internal/artifact"
	"pocketpod/shared/postgresql"
	"pocketpod/shared/redisstream"
)

// UserIDKey is the context key under which the request middleware stores
// the caller's user id
const UserIDKey = "user_id"

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	DBClient  *postgresql.Client
	Stream    *redisstream.Client
	Artifacts *artifact.Store
}

// PodcastHandler handles podcast-related HTTP requests
type PodcastHandler struct {
	logger    *slog.Logger
	storage   *storage.Storage
	stream    *redisstream.Client
	artifacts *artifact.Store
}

// NewPodcastHandler creates a new PodcastHandler instance
func NewPodcastHandler(deps *Dependencies) *PodcastHandler {
	return &PodcastHandler{
		logger:    deps.Logger,
		storage:   storage.NewStorage(deps.DBClient),
		stream:    deps.Stream,
		artifacts: deps.Artifacts,
	}
}
