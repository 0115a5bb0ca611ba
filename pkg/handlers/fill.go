package handlers

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arnavshah/duty-scheduler-go/internal/metrics"
	"github.com/arnavshah/duty-scheduler-go/pkg/arrangement"
	"github.com/arnavshah/duty-scheduler-go/pkg/database"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
	"github.com/arnavshah/duty-scheduler-go/pkg/roster"
	"github.com/arnavshah/duty-scheduler-go/pkg/scheduler"
)

func today() string { return time.Now().Format(arrangement.DateLayout) }

// fillRequest is the normalised input of both fill endpoints.
type fillRequest struct {
	roster        *roster.Registry
	arrangement   io.Reader
	after         time.Time
	morningWeight float64
	seed          int64
}

// FillJSON handles the JSON fill request
func (h *Handler) FillJSON(c *gin.Context) {
	var input models.FillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.jsonRequest(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.fill(c, req)
}

func (h *Handler) jsonRequest(input models.FillInput) (*fillRequest, error) {
	req := &fillRequest{arrangement: strings.NewReader(input.Arrangement), seed: input.Seed}
	var err error
	if req.after, err = parseAfter(input.After); err != nil {
		return nil, err
	}
	req.morningWeight = h.Config.Fill.MorningWeight
	if input.MorningWeight != nil {
		req.morningWeight = *input.MorningWeight
	}
	if req.morningWeight < 0 {
		return nil, errors.New("morning_weight must not be negative")
	}
	if len(input.Roster) == 0 {
		req.roster, err = h.storedRoster()
	} else {
		req.roster, err = roster.Build(input.Roster)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Fill handles multipart uploads: roster_file (csv or xlsx, optional when
// the registrations table is populated), arrangement_file, and the
// optional after, morning_weight and seed fields.
func (h *Handler) Fill(c *gin.Context) {
	req, status, err := h.formRequest(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.fill(c, req)
}

func (h *Handler) formRequest(c *gin.Context) (*fillRequest, int, error) {
	arrFile, err := c.FormFile("arrangement_file")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("arrangement_file is required")
	}
	req := &fillRequest{morningWeight: h.Config.Fill.MorningWeight}
	if req.after, err = parseAfter(c.PostForm("after")); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if v := c.PostForm("morning_weight"); v != "" {
		if req.morningWeight, err = strconv.ParseFloat(v, 64); err != nil || req.morningWeight < 0 {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid morning_weight %q", v)
		}
	}
	if v := c.PostForm("seed"); v != "" {
		if req.seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid seed %q", v)
		}
	}

	if rosterFile, ferr := c.FormFile("roster_file"); ferr == nil {
		req.roster, err = loadUpload(rosterFile)
	} else {
		req.roster, err = h.storedRoster()
	}
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	f, err := arrFile.Open()
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to open arrangement file")
	}
	defer f.Close()
	text, err := io.ReadAll(f)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("failed to read arrangement file")
	}
	req.arrangement = strings.NewReader(string(text))
	return req, http.StatusOK, nil
}

func loadUpload(fh *multipart.FileHeader) (*roster.Registry, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("failed to open roster file")
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		return roster.LoadXLSX(f)
	}
	return roster.LoadCSV(f)
}

func (h *Handler) storedRoster() (*roster.Registry, error) {
	reg, err := database.LoadRoster(h.DB)
	if err != nil {
		return nil, err
	}
	if len(reg.Students()) == 0 {
		return nil, errors.New("no roster given and no registrations stored")
	}
	return reg, nil
}

func parseAfter(v string) (time.Time, error) {
	if v == "" {
		return arrangement.Day(time.Now()), nil
	}
	t, err := time.Parse(arrangement.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid after date %q, want YYYY-MM-DD", v)
	}
	return t, nil
}

// fill runs one pass and answers with the filled arrangement. A failed pass
// answers 422 with the diagnostic and no arrangement.
func (h *Handler) fill(c *gin.Context, req *fillRequest) {
	runID := uuid.NewString()
	opts := scheduler.Options{
		After:           req.after,
		MorningWeight:   req.morningWeight,
		FairnessCeiling: h.Config.Fill.FairnessCeiling,
	}
	seed := req.seed
	if seed == 0 {
		seed = h.Config.Fill.Seed
	}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewSource(seed))
	}

	start := time.Now()
	run, err := scheduler.ParseAndFill(req.roster, req.arrangement, opts, h.Log)
	rec := metrics.FillRun{Source: "api", Err: err, Duration: time.Since(start)}
	if run != nil {
		rec.Dropped = len(run.Arrangement.Dropped)
	}
	if err != nil {
		h.Metrics.RecordFill(rec)
		h.Log.Warnf("run %s failed: %v", runID, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"run_id": runID, "error": err.Error()})
		return
	}
	rec.Assigned = run.Result.Assigned
	rec.Conflicts = len(run.Result.Conflicts)
	rec.Fairness = run.Fairness.Score
	h.Metrics.RecordFill(rec)
	h.Log.Debugw("fill run", map[string]any{
		"run_id":      runID,
		"assigned":    rec.Assigned,
		"conflicts":   rec.Conflicts,
		"dropped":     rec.Dropped,
		"duration_ms": rec.Duration.Milliseconds(),
	})
	h.recordUsage(c, len(run.Arrangement.Duties), run.Result.Assigned)

	c.JSON(http.StatusOK, models.FillResponse{
		RunID:       runID,
		Arrangement: run.Arrangement.String(),
		Assigned:    run.Result.Assigned,
		Pools:       run.Result.Pools,
		Conflicts:   run.Result.Conflicts,
		Dropped:     run.Arrangement.Dropped,
		Fairness:    run.Fairness,
	})
}

func (h *Handler) recordUsage(c *gin.Context, duties, students int) {
	raw, ok := c.Get("apiKey")
	if !ok {
		return
	}
	apiKey := raw.(*database.APIKey)
	if err := database.RecordUsage(h.DB, apiKey.ID, duties, students); err != nil {
		h.Log.Errorf("record usage for key %d: %v", apiKey.ID, err)
	}
}
