package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pocketpod/internal/api/domain"
	"pocketpod/internal/api/dto"
	"pocketpod/internal/api/model"
	"pocketpod/internal/api/storage"
)

// CreatePodcast handles POST /api/v1/podcasts
// Records a new conversion job and enqueues it for the worker
func (h *PodcastHandler) CreatePodcast(c *gin.Context) {
	userID := c.GetString(UserIDKey)

	var req dto.CreatePodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "url is required and must be a valid URL",
		})
		return
	}

	now := time.Now()
	job := model.Job{
		UserID:    userID,
		ID:        uuid.New().String(),
		URL:       req.URL,
		Status:    domain.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The record lands before the event so the worker always finds a job
	// to transition.
	if err := h.storage.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create podcast",
		})
		return
	}

	_, err := h.stream.Add(c.Request.Context(), map[string]any{
		"id":     job.ID,
		"userId": job.UserID,
		"url":    job.URL,
	})
	if err != nil {
		h.logger.Error("Failed to enqueue job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue podcast",
		})
		return
	}

	h.logger.Info("Podcast job created",
		slog.String("job_id", job.ID),
		slog.String("user_id", userID),
		slog.String("url", job.URL),
	)

	c.JSON(http.StatusCreated, toPodcastDTO(&job))
}

// GetPodcast handles GET /api/v1/podcasts/:id
// Retrieves one of the caller's podcast jobs
func (h *PodcastHandler) GetPodcast(c *gin.Context) {
	userID := c.GetString(UserIDKey)
	jobID := c.Param("id")

	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be a valid UUID",
		})
		return
	}

	job, err := h.storage.GetJob(c.Request.Context(), userID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Podcast not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get podcast",
		})
		return
	}

	c.JSON(http.StatusOK, toPodcastDTO(job))
}

// ListPodcasts handles GET /api/v1/podcasts
// Lists the caller's podcast jobs, newest first
func (h *PodcastHandler) ListPodcasts(c *gin.Context) {
	userID := c.GetString(UserIDKey)

	var req dto.ListPodcastsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := storage.JobFilter{
		UserID:   userID,
		Status:   req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	jobs, err := h.storage.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list podcasts",
		})
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	podcasts := make([]dto.PodcastDTO, len(jobs))
	for i := range jobs {
		podcasts[i] = toPodcastDTO(&jobs[i])
	}

	var nextCursor string
	if hasMore {
		lastJob := jobs[len(jobs)-1]
		cursorObj := storage.JobCursor{
			CreatedAt: lastJob.CreatedAt,
			JobID:     lastJob.ID,
		}
		nextCursor, err = EncodeJobCursor(&cursorObj)
		if err != nil {
			h.logger.Error("Failed to encode next cursor", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to encode next cursor",
			})
			return
		}
	}

	c.JSON(http.StatusOK, dto.ListPodcastsResponse{
		Podcasts:   podcasts,
		NextCursor: nextCursor,
	})
}

// GetAudioLink handles GET /api/v1/podcasts/:id/audio
// Returns a time-limited download URL for a completed podcast's audio
func (h *PodcastHandler) GetAudioLink(c *gin.Context) {
	userID := c.GetString(UserIDKey)
	jobID := c.Param("id")

	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be a valid UUID",
		})
		return
	}

	job, err := h.storage.GetJob(c.Request.Context(), userID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Podcast not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get podcast",
		})
		return
	}

	if job.Status != domain.JobStatusCompleted || !job.AudioKey.Valid {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Audio is not ready",
			"status": job.Status,
		})
		return
	}

	url, expiresAt, err := h.artifacts.PresignedURL(c.Request.Context(), job.AudioKey.String)
	if err != nil {
		h.logger.Error("Failed to presign audio link",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate audio link",
		})
		return
	}

	c.JSON(http.StatusOK, dto.AudioLinkResponse{
		URL:       url,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// DeletePodcast handles DELETE /api/v1/podcasts/:id
// Removes the job record and its audio artifact
func (h *PodcastHandler) DeletePodcast(c *gin.Context) {
	userID := c.GetString(UserIDKey)
	jobID := c.Param("id")

	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be a valid UUID",
		})
		return
	}

	audioKey, err := h.storage.DeleteJob(c.Request.Context(), userID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Podcast not found",
			})
			return
		}
		h.logger.Error("Failed to delete job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete podcast",
		})
		return
	}

	if audioKey != "" {
		// The record is already gone; an orphaned artifact is only worth a
		// log line.
		if err := h.artifacts.Delete(c.Request.Context(), audioKey); err != nil {
			h.logger.Error("Failed to delete audio artifact",
				slog.String("audio_key", audioKey),
				slog.String("error", err.Error()),
			)
		}
	}

	c.Status(http.StatusNoContent)
}

func toPodcastDTO(job *model.Job) dto.PodcastDTO {
	return dto.PodcastDTO{
		ID:        job.ID,
		URL:       job.URL,
		Title:     job.Title.String,
		Status:    job.Status,
		Error:     job.ErrorMessage.String,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	}
}
