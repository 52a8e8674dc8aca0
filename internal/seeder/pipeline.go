// Package seeder runs one generate-and-write pass: token, sample, generate,
// parse, batch insert. Steps run strictly in order and the first failure
// ends the run.
package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/nebula-seeder/internal/core"
	"github.com/Annany2002/nebula-seeder/internal/dataverse"
	"github.com/Annany2002/nebula-seeder/internal/domain"
	"github.com/Annany2002/nebula-seeder/internal/generation"
	"github.com/Annany2002/nebula-seeder/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// TokenSource acquires a bearer token for the platform.
type TokenSource interface {
	AcquireToken(ctx context.Context, creds domain.Credentials) (string, error)
}

// Platform is the Web API surface used by a run.
type Platform interface {
	SampleFormat(ctx context.Context, orgURL, logicalName, collectionName, token string) (string, error)
	SubmitBatch(ctx context.Context, token, orgURL, collectionName string, records []domain.SyntheticRecord) (*dataverse.BatchResult, error)
}

// GeneratorFactory returns a generator bound to the caller's API key.
type GeneratorFactory func(apiKey string) generation.Generator

// RunRecorder persists run outcomes. Failures are logged and never fail a run.
type RunRecorder interface {
	CreateRun(ctx context.Context, run domain.Run) error
	FinishRun(ctx context.Context, runID, state string, statusCode int, runErr string, finishedAt time.Time) error
}

// Input is everything a run needs from the operator.
type Input struct {
	Credentials    domain.Credentials
	OrgURL         string
	CollectionName string
	RowCount       int
	APIKey         string
}

// Result describes a run. It is returned alongside any error raised after
// validation so callers can report how far the run got.
type Result struct {
	RunID        string
	Table        domain.TableIdentity
	SampleFormat string
	Records      []domain.SyntheticRecord
	Batch        *dataverse.BatchResult
	States       []State
}

// State returns the last state reached.
func (r *Result) State() State {
	if len(r.States) == 0 {
		return StateIdle
	}
	return r.States[len(r.States)-1]
}

// StateNames renders the state history.
func (r *Result) StateNames() []string {
	names := make([]string, len(r.States))
	for i, s := range r.States {
		names[i] = s.String()
	}
	return names
}

// Pipeline wires the collaborators of a run. Runs share no mutable state, so a
// Pipeline may serve concurrent callers.
type Pipeline struct {
	tokens       TokenSource
	platform     Platform
	newGenerator GeneratorFactory
	runs         RunRecorder
	maxRowCount  int
	now          func() time.Time
}

// NewPipeline creates a pipeline. runs may be nil to skip the run ledger;
// maxRowCount <= 0 disables the upper bound on RowCount.
func NewPipeline(tokens TokenSource, platform Platform, newGenerator GeneratorFactory, runs RunRecorder, maxRowCount int) *Pipeline {
	return &Pipeline{
		tokens:       tokens,
		platform:     platform,
		newGenerator: newGenerator,
		runs:         runs,
		maxRowCount:  maxRowCount,
		now:          time.Now,
	}
}

// Validate checks in without touching the network.
func (p *Pipeline) Validate(in Input) error {
	creds := in.Credentials
	switch {
	case creds.TenantID == "":
		return &ValidationError{Field: "tenant_id", Reason: "is required"}
	case creds.ClientID == "":
		return &ValidationError{Field: "client_id", Reason: "is required"}
	case creds.ClientSecret == "":
		return &ValidationError{Field: "client_secret", Reason: "is required"}
	case creds.ResourceURL == "":
		return &ValidationError{Field: "resource_url", Reason: "is required"}
	case in.OrgURL == "":
		return &ValidationError{Field: "org_url", Reason: "is required"}
	case !core.IsValidOrgURL(core.NormalizeOrgURL(in.OrgURL)):
		return &ValidationError{Field: "org_url", Reason: "must be an absolute http(s) URL"}
	case in.CollectionName == "":
		return &ValidationError{Field: "collection_name", Reason: "is required"}
	case !core.IsValidIdentifier(in.CollectionName):
		return &ValidationError{Field: "collection_name", Reason: "must contain only letters, digits and underscores"}
	case !core.IsValidRowCount(in.RowCount, p.maxRowCount):
		if p.maxRowCount > 0 {
			return &ValidationError{Field: "row_count", Reason: fmt.Sprintf("must be between 1 and %d", p.maxRowCount)}
		}
		return &ValidationError{Field: "row_count", Reason: "must be at least 1"}
	}
	return nil
}

// Run executes one seeding pass. A validation failure returns a nil Result
// and makes no network call.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	if err := p.Validate(in); err != nil {
		customLog.Warnf("Seeder: rejected input: %v", err)
		return nil, err
	}

	orgURL := core.NormalizeOrgURL(in.OrgURL)
	res := &Result{
		RunID: uuid.NewString(),
		Table: domain.NewTableIdentity(in.CollectionName),
	}
	log := customLog.WithFields(logrus.Fields{
		"run_id":     res.RunID,
		"collection": res.Table.CollectionName,
	})
	p.recordStart(ctx, res, in.RowCount)
	p.transition(log, res, StateIdle)

	err := p.execute(ctx, log, res, in, orgURL)
	if err != nil {
		p.transition(log, res, StateFailed)
		log.WithError(err).Warn("Seeder: run failed")
	} else {
		p.transition(log, res, StateSucceeded)
		log.Infof("Seeder: inserted %d record(s) into '%s'", len(res.Records), res.Table.CollectionName)
	}
	p.recordFinish(ctx, res, err)

	return res, err
}

func (p *Pipeline) execute(ctx context.Context, log *logrus.Entry, res *Result, in Input, orgURL string) error {
	token, err := p.tokens.AcquireToken(ctx, in.Credentials)
	if err != nil {
		return err
	}
	p.transition(log, res, StateTokenAcquired)

	sample, err := p.platform.SampleFormat(ctx, orgURL, res.Table.LogicalName, res.Table.CollectionName, token)
	if err != nil {
		return err
	}
	res.SampleFormat = sample
	p.transition(log, res, StateSchemaSampled)

	output, err := p.newGenerator(in.APIKey).Generate(ctx, generation.Request{
		CollectionName: res.Table.CollectionName,
		SampleFormat:   sample,
		RowCount:       in.RowCount,
	})
	if err != nil {
		return err
	}
	p.transition(log, res, StateDataGenerated)

	records, err := generation.ParseRecords(output)
	if err != nil {
		return err
	}
	if len(records) != in.RowCount {
		log.Warnf("Seeder: requested %d record(s), generator returned %d", in.RowCount, len(records))
	}
	res.Records = records
	p.transition(log, res, StateDataParsed)

	batch, err := p.platform.SubmitBatch(ctx, token, orgURL, res.Table.CollectionName, records)
	res.Batch = batch
	if err != nil {
		return err
	}
	p.transition(log, res, StateBatchSubmitted)

	return nil
}

func (p *Pipeline) transition(log *logrus.Entry, res *Result, next State) {
	res.States = append(res.States, next)
	log.WithField("state", next.String()).Debug("Seeder: state changed")
}

func (p *Pipeline) recordStart(ctx context.Context, res *Result, rowCount int) {
	if p.runs == nil {
		return
	}
	run := domain.Run{
		RunID:          res.RunID,
		CollectionName: res.Table.CollectionName,
		LogicalName:    res.Table.LogicalName,
		RowCount:       rowCount,
		State:          StateIdle.String(),
		StartedAt:      p.now(),
	}
	if err := p.runs.CreateRun(ctx, run); err != nil {
		customLog.Warnf("Seeder: failed to record run %s: %v", res.RunID, err)
	}
}

func (p *Pipeline) recordFinish(ctx context.Context, res *Result, runErr error) {
	if p.runs == nil {
		return
	}
	statusCode := 0
	if res.Batch != nil {
		statusCode = res.Batch.StatusCode
	}
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	// The request context may already be cancelled; the outcome is still written.
	if err := p.runs.FinishRun(context.WithoutCancel(ctx), res.RunID, res.State().String(), statusCode, message, p.now()); err != nil {
		customLog.Warnf("Seeder: failed to record outcome of run %s: %v", res.RunID, err)
	}
}
