package checker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/config"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/docstore"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/extract"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/ledger"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/match"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/monitor"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/report"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/pkg/models"
)

// Archive persists analysis outcomes and monitored sources. Optional: a
// nil archive means the session is memory-only. Archive writes are
// best-effort and never fail the operation that triggered them.
type Archive interface {
	SaveAnalysis(ctx context.Context, docs []*docstore.Document, statements []*extract.Statement) error
	SaveMonitoredSource(ctx context.Context, source *monitor.Source) error
}

// DocumentInput is one text blob handed to analyze by the boundary layer.
// Byte intake and text extraction happen upstream; the engine only ever
// sees plain text.
type DocumentInput struct {
	Name string
	Text string
}

// Checker is the per-session engine: document store, matcher, usage
// ledger and monitoring registry behind one writer lock. Operations that
// bill or mutate are serialized; reads share the lock so no read observes
// a document without its ledger charge or vice versa.
type Checker struct {
	mu       sync.RWMutex
	store    *docstore.Store
	matcher  match.Matcher
	ledger   ledger.Ledger
	registry *monitor.Registry
	archive  Archive
	logger   *zap.Logger

	pricing      config.Pricing
	maxDocuments int

	current *report.Report
}

// Options configures a Checker.
type Options struct {
	Matcher      match.Matcher
	Ledger       ledger.Ledger
	Archive      Archive
	Logger       *zap.Logger
	Pricing      config.Pricing
	MaxDocuments int

	// Sources seeds the monitoring registry with previously persisted
	// sources, for resuming after a restart.
	Sources []*monitor.Source
}

// New creates a session engine. Matcher and ledger default to the
// heuristic matcher and an in-memory ledger.
func New(opts Options) *Checker {
	if opts.Matcher == nil {
		cfg := match.DefaultConfig()
		cfg.MaxStatements = config.MaxStatements()
		opts.Matcher = match.NewHeuristicMatcher(cfg, opts.Logger)
	}
	if opts.Ledger == nil {
		opts.Ledger = ledger.NewMemoryLedger()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = 3
	}
	if opts.Pricing == (config.Pricing{}) {
		opts.Pricing = config.LoadPricing()
	}

	registry := monitor.NewRegistry()
	registry.Load(opts.Sources)

	return &Checker{
		store:        docstore.NewStore(),
		matcher:      opts.Matcher,
		ledger:       opts.Ledger,
		registry:     registry,
		archive:      opts.Archive,
		logger:       opts.Logger,
		pricing:      opts.Pricing,
		maxDocuments: opts.MaxDocuments,
	}
}

// AnalyzeResult summarizes one analyze call.
type AnalyzeResult struct {
	Message        string            `json:"message"`
	TotalDocs      int               `json:"total_docs"`
	TotalConflicts int               `json:"total_conflicts"`
	Balance        float64           `json:"balance"`
	TotalSpent     float64           `json:"total_spent"`
	Conflicts      []models.Conflict `json:"conflicts"`
	Documents      []models.Document `json:"documents"`
}

// Analyze replaces the active document set with the given texts, extracts
// statements, runs the matcher and bills one analyze entry. Atomic: any
// failure leaves the previous document set, report and ledger untouched.
func (c *Checker) Analyze(ctx context.Context, inputs []DocumentInput) (*AnalyzeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(inputs) < 2 {
		return nil, ErrInsufficientDocuments
	}
	if len(inputs) > c.maxDocuments {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrTooManyDocuments, len(inputs), c.maxDocuments)
	}

	prevDocs := c.store.ListActive()
	prevReport := c.current

	restore := func() {
		c.store.ReplaceAll(prevDocs)
		c.current = prevReport
	}

	c.store.Clear()
	for _, in := range inputs {
		if _, err := c.store.Ingest(in.Text, in.Name, docstore.SourceUpload); err != nil {
			restore()
			return nil, fmt.Errorf("ingest %q: %w", in.Name, err)
		}
	}

	docs := c.store.ListActive()
	rep, err := c.runPipeline(ctx, docs)
	if err != nil {
		restore()
		return nil, err
	}

	cost := c.pricing.AnalyzePerDocument * float64(len(docs))
	entry, err := c.ledger.Record(ctx, ledger.KindAnalyze, cost, len(docs))
	if err != nil {
		restore()
		return nil, fmt.Errorf("record analyze usage: %w", err)
	}

	c.current = rep
	totals := c.totalsAfter(ctx, entry)

	return &AnalyzeResult{
		Message:        "Analysis complete",
		TotalDocs:      totals.DocumentsChecked,
		TotalConflicts: len(rep.Conflicts),
		Balance:        totals.Balance,
		TotalSpent:     totals.TotalSpent,
		Conflicts:      rep.ModelConflicts(),
		Documents:      modelDocuments(docs),
	}, nil
}

// runPipeline extracts, matches and builds the report for the given
// documents. Pure with respect to session state; also archives the
// outcome best-effort when an archive is configured.
func (c *Checker) runPipeline(ctx context.Context, docs []*docstore.Document) (*report.Report, error) {
	statements := extract.ExtractAll(docs)

	conflicts, err := c.matcher.Match(ctx, statements)
	if err != nil {
		return nil, fmt.Errorf("match statements: %w", err)
	}

	if c.archive != nil {
		if err := c.archive.SaveAnalysis(ctx, docs, statements); err != nil {
			c.logger.Warn("archive analysis failed", zap.Error(err))
		}
	}

	return report.New(conflicts, len(docs)), nil
}

// ReportResult summarizes one report generation.
type ReportResult struct {
	Message      string  `json:"message"`
	TotalReports int     `json:"total_reports"`
	Balance      float64 `json:"balance"`
	TotalSpent   float64 `json:"total_spent"`
	ReportDate   string  `json:"report_date"`
	Artifact     []byte  `json:"-"`
}

// GenerateReport renders the current conflict report and bills one report
// entry. Deliberately non-idempotent: each generation is a distinct
// billable action even when the underlying report is unchanged. Fails
// with ErrNoAnalysisYet before the first analysis.
func (c *Checker) GenerateReport(ctx context.Context) (*ReportResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoAnalysisYet
	}

	artifact, err := c.current.ExportText()
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	entry, err := c.ledger.Record(ctx, ledger.KindReport, c.pricing.Report, 0)
	if err != nil {
		return nil, fmt.Errorf("record report usage: %w", err)
	}

	totals := c.totalsAfter(ctx, entry)

	return &ReportResult{
		Message:      "Report generated",
		TotalReports: totals.ReportsGenerated,
		Balance:      totals.Balance,
		TotalSpent:   totals.TotalSpent,
		ReportDate:   time.Now().Format("January 2, 2006"),
		Artifact:     artifact,
	}, nil
}

// MonitorResult summarizes one URL registration.
type MonitorResult struct {
	Message       string   `json:"message"`
	MonitoredURLs []string `json:"monitored_urls"`
	Balance       float64  `json:"balance"`
	TotalSpent    float64  `json:"total_spent"`
}

// MonitorURL registers an external URL for monitoring and bills one
// monitor entry. The registration and its ledger entry are paired: if the
// ledger write fails the registration is unwound.
func (c *Checker) MonitorURL(ctx context.Context, rawURL string) (*MonitorResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := monitor.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	source, err := c.registry.Register(rawURL)
	if err != nil {
		return nil, err
	}

	entry, err := c.ledger.Record(ctx, ledger.KindMonitor, c.pricing.MonitorURL, 0)
	if err != nil {
		c.registry.Remove(source.ID)
		return nil, fmt.Errorf("record monitor usage: %w", err)
	}

	c.archiveSource(ctx, source)
	totals := c.totalsAfter(ctx, entry)

	urls := make([]string, 0, c.registry.Len())
	for _, s := range c.registry.List() {
		urls = append(urls, s.URL)
	}

	return &MonitorResult{
		Message:       "URL added for monitoring",
		MonitoredURLs: urls,
		Balance:       totals.Balance,
		TotalSpent:    totals.TotalSpent,
	}, nil
}

// PollResult reports the outcome of one snapshot poll.
type PollResult struct {
	Changed    bool             `json:"changed"`
	Document   *models.Document `json:"document,omitempty"`
	Reanalyzed bool             `json:"reanalyzed"`
	Conflicts  int              `json:"conflicts"`
}

// PollSource feeds a freshly fetched snapshot for a monitored source into
// the engine. An unchanged snapshot is a no-op. A changed one ingests a
// synthetic monitored document and, when at least two documents are
// active, re-runs the analysis pipeline with its usual billing. Atomic:
// the recorded snapshot, the synthetic document and the re-analysis
// commit or roll back together.
func (c *Checker) PollSource(ctx context.Context, sourceID uuid.UUID, newText string) (*PollResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	source, err := c.registry.Get(sourceID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(newText) == "" {
		return nil, fmt.Errorf("poll snapshot: %w", docstore.ErrEmptyDocument)
	}

	prevState, err := c.registry.State(sourceID)
	if err != nil {
		return nil, err
	}

	changed, err := c.registry.ApplySnapshot(sourceID, newText)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &PollResult{Changed: false}, nil
	}

	prevDocs := c.store.ListActive()
	prevReport := c.current

	restore := func() {
		c.registry.Restore(sourceID, prevState)
		c.store.ReplaceAll(prevDocs)
		c.current = prevReport
	}

	doc, err := c.store.Ingest(newText, "Monitored: "+source.URL, docstore.SourceMonitored)
	if err != nil {
		restore()
		return nil, fmt.Errorf("ingest snapshot: %w", err)
	}

	result := &PollResult{
		Changed:  true,
		Document: modelDocument(doc),
	}

	if c.store.Len() < 2 {
		c.archiveSource(ctx, source)
		return result, nil
	}

	docs := c.store.ListActive()
	rep, err := c.runPipeline(ctx, docs)
	if err != nil {
		restore()
		return nil, err
	}

	cost := c.pricing.AnalyzePerDocument * float64(len(docs))
	if _, err := c.ledger.Record(ctx, ledger.KindAnalyze, cost, len(docs)); err != nil {
		restore()
		return nil, fmt.Errorf("record analyze usage: %w", err)
	}

	c.current = rep
	c.archiveSource(ctx, source)
	result.Reanalyzed = true
	result.Conflicts = len(rep.Conflicts)

	return result, nil
}

// MarkReviewed marks a monitored source as reviewed.
func (c *Checker) MarkReviewed(ctx context.Context, sourceID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.registry.MarkReviewed(sourceID); err != nil {
		return err
	}
	if source, err := c.registry.Get(sourceID); err == nil {
		c.archiveSource(ctx, source)
	}
	return nil
}

// totalsAfter reads derived totals following a committed ledger write.
// The write already stands, so a failed read is logged and the totals
// fall back to aggregating the entry just recorded.
func (c *Checker) totalsAfter(ctx context.Context, entry *ledger.Entry) ledger.Totals {
	totals, err := c.ledger.Totals(ctx)
	if err != nil {
		c.logger.Warn("read usage totals after commit", zap.Error(err))
		return ledger.Aggregate([]*ledger.Entry{entry})
	}
	return totals
}

// archiveSource persists a monitored source best-effort.
func (c *Checker) archiveSource(ctx context.Context, source *monitor.Source) {
	if c.archive == nil {
		return
	}
	if err := c.archive.SaveMonitoredSource(ctx, source); err != nil {
		c.logger.Warn("archive monitored source failed", zap.Error(err))
	}
}

// ClearDocuments discards the active documents and the current report.
// The ledger is untouched: billing already incurred is never reversed.
func (c *Checker) ClearDocuments() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Clear()
	c.current = nil
}

// StatsResult is the read-only usage snapshot.
type StatsResult struct {
	Usage         models.UsageTotals       `json:"usage_stats"`
	MonitoredURLs []models.MonitoredSource `json:"monitored_urls"`
}

// Stats returns ledger totals and the monitored-URL list. Read-only.
func (c *Checker) Stats(ctx context.Context) (*StatsResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totals, err := c.ledger.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("read usage totals: %w", err)
	}

	sources := c.registry.List()
	monitored := make([]models.MonitoredSource, len(sources))
	for i, s := range sources {
		monitored[i] = models.MonitoredSource{
			ID:            s.ID.String(),
			URL:           s.URL,
			Status:        string(s.Status),
			LastCheckedAt: s.LastCheckedAt,
			CreatedAt:     s.CreatedAt,
		}
	}

	return &StatsResult{
		Usage: models.UsageTotals{
			DocumentsChecked: totals.DocumentsChecked,
			ReportsGenerated: totals.ReportsGenerated,
			Balance:          totals.Balance,
			TotalSpent:       totals.TotalSpent,
		},
		MonitoredURLs: monitored,
	}, nil
}

// Conflicts returns the current report's ordered conflicts.
func (c *Checker) Conflicts() ([]models.Conflict, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil, ErrNoAnalysisYet
	}
	return c.current.ModelConflicts(), nil
}

// Documents returns the active documents in ingestion order.
func (c *Checker) Documents() []models.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return modelDocuments(c.store.ListActive())
}

func modelDocument(d *docstore.Document) *models.Document {
	m := models.Document{
		ID:         d.ID.String(),
		Name:       d.Name,
		SourceKind: string(d.SourceKind),
		IngestedAt: d.IngestedAt,
	}
	return &m
}

func modelDocuments(docs []*docstore.Document) []models.Document {
	out := make([]models.Document, len(docs))
	for i, d := range docs {
		out[i] = *modelDocument(d)
	}
	return out
}
