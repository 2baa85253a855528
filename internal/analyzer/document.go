package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/harwood/paralegal/internal/cache"
	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/internal/report"
	"github.com/harwood/paralegal/internal/rules"
	"github.com/harwood/paralegal/internal/textproc"
	"github.com/harwood/paralegal/pkg/logger"
)

// DefaultMaxDocumentBytes caps accepted document size at 10 MiB.
const DefaultMaxDocumentBytes = 10 * 1024 * 1024

// DefaultCacheTTL is how long cached analysis results stay valid.
const DefaultCacheTTL = time.Hour

// Metadata keys recognized by Analyze.
const (
	MetadataDocumentID   = "document_id"
	MetadataDocumentType = "document_type"
	MetadataJurisdiction = "jurisdiction"
	MetadataVersion      = "version"
)

// cacheKeyFields are the metadata fields folded into the cache key, in
// canonical order.
var cacheKeyFields = []string{MetadataDocumentType, MetadataJurisdiction, MetadataVersion}

// Integration weights for the overall confidence blend.
const (
	classificationWeight = 0.3
	detectionWeight      = 0.4
	remedyWeight         = 0.3
)

// Config controls which analysis components run and how.
type Config struct {
	MaxDocumentBytes             int
	EnableClassification         bool
	EnableContradictionDetection bool
	EnableRemedyGeneration       bool
	ParallelProcessing           bool
	EnableCaching                bool
}

// DefaultConfig returns the analyzer configuration with every component
// enabled, parallel scheduling, and caching on.
func DefaultConfig() Config {
	return Config{
		MaxDocumentBytes:             DefaultMaxDocumentBytes,
		EnableClassification:         true,
		EnableContradictionDetection: true,
		EnableRemedyGeneration:       true,
		ParallelProcessing:           true,
		EnableCaching:                true,
	}
}

// Validate checks the configuration limits.
func (c Config) Validate() error {
	if c.MaxDocumentBytes <= 0 {
		return NewErrorf("analyzer", ErrorKindConfiguration,
			"max document bytes must be positive, got %d", c.MaxDocumentBytes)
	}
	return nil
}

// DocumentAnalyzer orchestrates classification, contradiction detection,
// and remedy generation over a single document and integrates their
// outcomes into one AnalysisResult.
type DocumentAnalyzer struct {
	classifier Classifier
	detector   Detector
	compiler   Compiler
	cache      cache.Cache
	logger     logger.Logger
	rules      *rules.Rules
	config     Config
	cacheTTL   time.Duration
}

// Option represents a functional option for configuring the analyzer.
type Option func(*DocumentAnalyzer)

// WithConfig replaces the analyzer configuration.
func WithConfig(cfg Config) Option {
	return func(da *DocumentAnalyzer) {
		da.config = cfg
	}
}

// WithRules sets the rule tables used to build default components.
func WithRules(r *rules.Rules) Option {
	return func(da *DocumentAnalyzer) {
		da.rules = r
	}
}

// WithClassifier injects a classifier implementation.
func WithClassifier(c Classifier) Option {
	return func(da *DocumentAnalyzer) {
		da.classifier = c
	}
}

// WithDetector injects a detector implementation.
func WithDetector(d Detector) Option {
	return func(da *DocumentAnalyzer) {
		da.detector = d
	}
}

// WithCompiler injects a remedy compiler implementation.
func WithCompiler(c Compiler) Option {
	return func(da *DocumentAnalyzer) {
		da.compiler = c
	}
}

// WithCache injects the result cache.
func WithCache(c cache.Cache) Option {
	return func(da *DocumentAnalyzer) {
		da.cache = c
	}
}

// WithCacheTTL sets how long cached results stay valid.
func WithCacheTTL(ttl time.Duration) Option {
	return func(da *DocumentAnalyzer) {
		da.cacheTTL = ttl
	}
}

// WithLogger sets the logger used by the analyzer and its default
// components.
func WithLogger(log logger.Logger) Option {
	return func(da *DocumentAnalyzer) {
		da.logger = log
	}
}

// New creates a document analyzer. Components not injected via options are
// built from the rule tables; rules load from the embedded defaults when
// none are supplied.
func New(opts ...Option) (*DocumentAnalyzer, error) {
	da := &DocumentAnalyzer{
		config:   DefaultConfig(),
		logger:   logger.GetGlobalLogger(),
		cacheTTL: DefaultCacheTTL,
	}

	for _, opt := range opts {
		opt(da)
	}

	if err := da.config.Validate(); err != nil {
		return nil, err
	}

	needRules := (da.classifier == nil && da.config.EnableClassification) ||
		(da.detector == nil && da.config.EnableContradictionDetection) ||
		(da.compiler == nil && da.config.EnableRemedyGeneration)
	if da.rules == nil && needRules {
		r, err := rules.Default()
		if err != nil {
			return nil, NewError("analyzer", ErrorKindModel, err)
		}
		da.rules = r
	}

	if da.classifier == nil && da.config.EnableClassification {
		da.classifier = NewInstrumentClassifier(da.rules, da.logger)
	}
	if da.detector == nil && da.config.EnableContradictionDetection {
		da.detector = NewContradictionDetector(da.rules, da.logger)
	}
	if da.compiler == nil && da.config.EnableRemedyGeneration {
		da.compiler = NewRemedyCompiler(da.rules, da.logger)
	}
	if da.cache == nil && da.config.EnableCaching {
		da.cache = cache.NewMemoryCache(cache.DefaultMaxEntries, da.logger)
	}

	return da, nil
}

// Analyze runs the full pipeline over a document. It returns a non-nil
// error only for invalid input; component failures degrade the result
// instead. A completed result is returned even when some components fail,
// a failed result (with nil error) when every enabled component fails or
// the context deadline expires mid-run.
func (da *DocumentAnalyzer) Analyze(ctx context.Context, text string, metadata map[string]string) (*models.AnalysisResult, error) {
	if err := da.validateDocument(text); err != nil {
		return nil, err
	}

	var key string
	if da.cachingEnabled() {
		key = cacheKey(text, metadata)
		if cached := da.cachedResult(ctx, key); cached != nil {
			return cached, nil
		}
	}

	result := models.NewAnalysisResult(metadata[MetadataDocumentID], AnalyzerName, AnalyzerVersion)
	_ = result.MarkRunning()
	result.TokensAnalyzed = len(strings.Fields(text))

	classifier, detector, compiler := da.enabledComponents()

	da.logger.Debug("starting document analysis",
		"analysis_id", result.ID,
		"document_id", result.DocumentID,
		"bytes", len(text),
		"parallel", da.config.ParallelProcessing)

	outcomes := da.scheduler().run(ctx, text, classifier, detector)
	if outcomes.classificationErr != nil {
		da.logger.Warn("classification failed", "error", outcomes.classificationErr)
	}
	if outcomes.detectionErr != nil {
		da.logger.Warn("contradiction detection failed", "error", outcomes.detectionErr)
	}

	compilation, compileTime, compileErr := da.compileRemedies(ctx, compiler, outcomes, text)

	da.integrate(result, text, outcomes, compilation)
	performance := componentPerformance(classifier, detector, compiler, outcomes, compilation, compileTime)
	result.Metadata[report.MetadataKey] = report.Build(result, performance).Map()

	if err := ctx.Err(); err != nil {
		timeoutErr := WrapError("analyzer", ErrorKindTimeout, err)
		_ = result.MarkFailed(timeoutErr.Error())
		da.logger.Warn("analysis timed out", "analysis_id", result.ID, "error", err)
		return result, nil
	}

	enabled := 0
	for _, active := range []bool{classifier != nil, detector != nil, compiler != nil} {
		if active {
			enabled++
		}
	}
	produced := 0
	for _, ok := range []bool{outcomes.classification != nil, outcomes.detection != nil, compilation != nil} {
		if ok {
			produced++
		}
	}
	if enabled > 0 && produced == 0 {
		message := "all analysis components failed"
		if firstErr := firstError(outcomes.classificationErr, outcomes.detectionErr, compileErr); firstErr != nil {
			message += ": " + firstErr.Error()
		}
		_ = result.MarkFailed(message)
		da.logger.Error("analysis failed", "analysis_id", result.ID, "error", message)
		return result, nil
	}

	_ = result.MarkCompleted()

	if da.cachingEnabled() {
		if err := da.cache.Set(ctx, key, result, da.cacheTTL); err != nil {
			da.logger.Warn("caching analysis result failed", "error", err)
		}
	}

	da.logger.Info("document analysis completed",
		"analysis_id", result.ID,
		"issues", len(result.Issues),
		"remedies", len(result.Remedies),
		"confidence", result.ConfidenceScore,
		"duration", result.ProcessingTime)
	return result, nil
}

// Capabilities reports which components and features are active.
func (da *DocumentAnalyzer) Capabilities() map[string]bool {
	return map[string]bool{
		ComponentClassification:         da.config.EnableClassification && da.classifier != nil,
		ComponentContradictionDetection: da.config.EnableContradictionDetection && da.detector != nil,
		ComponentRemedyGeneration:       da.config.EnableRemedyGeneration && da.compiler != nil,
		"parallel_processing":           da.config.ParallelProcessing,
		"caching":                       da.config.EnableCaching,
	}
}

// ClearCache drops all cached analysis results.
func (da *DocumentAnalyzer) ClearCache(ctx context.Context) error {
	if da.cache == nil {
		return nil
	}
	return da.cache.Clear(ctx)
}

// CacheStats returns cache statistics, or nil when no cache is wired.
func (da *DocumentAnalyzer) CacheStats(ctx context.Context) (*cache.Stats, error) {
	if da.cache == nil {
		return nil, nil
	}
	return da.cache.Stats(ctx)
}

func (da *DocumentAnalyzer) validateDocument(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewErrorf("analyzer", ErrorKindValidation, "Document text cannot be empty")
	}
	if len(text) > da.config.MaxDocumentBytes {
		return NewErrorf("analyzer", ErrorKindValidation,
			"Document size exceeds maximum limit of %d bytes", da.config.MaxDocumentBytes)
	}
	return nil
}

func (da *DocumentAnalyzer) cachingEnabled() bool {
	return da.config.EnableCaching && da.cache != nil
}

// cachedResult returns an annotated copy of the cached result for key, or
// nil on miss. Cache errors degrade to misses.
func (da *DocumentAnalyzer) cachedResult(ctx context.Context, key string) *models.AnalysisResult {
	cached, err := da.cache.Get(ctx, key)
	if err != nil {
		da.logger.Warn("cache lookup failed", "error", err)
		return nil
	}
	if cached == nil {
		return nil
	}

	if cached.Metadata == nil {
		cached.Metadata = make(map[string]any)
	}
	cached.Metadata["cached_result"] = true
	cached.Metadata["cache_hit_time"] = time.Now().UTC().Format(time.RFC3339)
	da.logger.Debug("analysis cache hit", "analysis_id", cached.ID)
	return cached
}

// enabledComponents applies the config toggles to the wired components.
func (da *DocumentAnalyzer) enabledComponents() (Classifier, Detector, Compiler) {
	var classifier Classifier
	var detector Detector
	var compiler Compiler
	if da.config.EnableClassification && da.classifier != nil {
		classifier = da.classifier
	}
	if da.config.EnableContradictionDetection && da.detector != nil {
		detector = da.detector
	}
	if da.config.EnableRemedyGeneration && da.compiler != nil {
		compiler = da.compiler
	}
	return classifier, detector, compiler
}

func (da *DocumentAnalyzer) scheduler() scheduler {
	if da.config.ParallelProcessing {
		return parallelScheduler{}
	}
	return sequentialScheduler{}
}

// compileRemedies runs after the scheduler because remedies depend on
// detection's final outcome. The seed slice is non-nil whenever detection
// produced a result so the compiler never self-detects over its head.
func (da *DocumentAnalyzer) compileRemedies(ctx context.Context, compiler Compiler, outcomes *componentOutcomes, text string) (*CompilationResult, time.Duration, error) {
	if compiler == nil {
		return nil, 0, nil
	}

	var seed []models.LegalIssue
	if outcomes.detection != nil {
		seed = outcomes.detection.Issues
		if seed == nil {
			seed = []models.LegalIssue{}
		}
	}

	start := time.Now()
	compilation, err := compiler.Compile(ctx, seed, text)
	elapsed := time.Since(start)
	if err != nil {
		da.logger.Warn("remedy generation failed", "error", err)
		return nil, elapsed, err
	}
	return compilation, elapsed, nil
}

// integrate merges component outputs into the result and attaches the
// integration metadata.
func (da *DocumentAnalyzer) integrate(result *models.AnalysisResult, text string, outcomes *componentOutcomes, compilation *CompilationResult) {
	if outcomes.classification != nil {
		result.Classification = outcomes.classification
	}
	if outcomes.detection != nil {
		result.Issues = append(result.Issues, outcomes.detection.Issues...)
	}
	if compilation != nil {
		result.Remedies = append(result.Remedies, compilation.Remedies...)
		for k, v := range compilation.Metadata {
			result.Metadata[k] = v
		}
	}

	result.ConfidenceScore = overallConfidence(outcomes, compilation)

	method := "sequential"
	if da.config.ParallelProcessing {
		method = "parallel"
	}
	result.Metadata["analysis_components"] = map[string]bool{
		ComponentClassification:         outcomes.classification != nil,
		ComponentContradictionDetection: outcomes.detection != nil,
		ComponentRemedyGeneration:       compilation != nil,
	}
	result.Metadata["integration_method"] = method
	result.Metadata["total_issues_found"] = len(result.Issues)
	result.Metadata["total_remedies_suggested"] = len(result.Remedies)
	result.Metadata["document_complexity_score"] = textproc.ComplexityScore(text)
}

// overallConfidence blends the component confidences; components that
// failed or reported zero confidence are excluded from the weighting.
func overallConfidence(outcomes *componentOutcomes, compilation *CompilationResult) float64 {
	var weighted, total float64
	if outcomes.classification != nil && outcomes.classification.Confidence > 0 {
		weighted += outcomes.classification.Confidence * classificationWeight
		total += classificationWeight
	}
	if outcomes.detection != nil && outcomes.detection.Confidence > 0 {
		weighted += outcomes.detection.Confidence * detectionWeight
		total += detectionWeight
	}
	if compilation != nil && compilation.Confidence > 0 {
		weighted += compilation.Confidence * remedyWeight
		total += remedyWeight
	}
	if total == 0 {
		return 0.5
	}
	return weighted / total
}

// componentPerformance records status, duration, and confidence for every
// component that ran.
func componentPerformance(classifier Classifier, detector Detector, compiler Compiler, outcomes *componentOutcomes, compilation *CompilationResult, compileTime time.Duration) map[string]report.ComponentPerformance {
	perf := make(map[string]report.ComponentPerformance, 3)

	if classifier != nil {
		cp := report.ComponentPerformance{Status: report.StatusFailed, Duration: outcomes.classifyTime}
		if outcomes.classification != nil {
			cp.Status = report.StatusSuccess
			confidence := outcomes.classification.Confidence
			cp.Confidence = &confidence
		}
		perf[ComponentClassification] = cp
	}
	if detector != nil {
		cp := report.ComponentPerformance{Status: report.StatusFailed, Duration: outcomes.detectTime}
		if outcomes.detection != nil {
			cp.Status = report.StatusSuccess
			confidence := outcomes.detection.Confidence
			cp.Confidence = &confidence
		}
		perf[ComponentContradictionDetection] = cp
	}
	if compiler != nil {
		cp := report.ComponentPerformance{Status: report.StatusFailed, Duration: compileTime}
		if compilation != nil {
			cp.Status = report.StatusSuccess
			confidence := compilation.Confidence
			cp.Confidence = &confidence
		}
		perf[ComponentRemedyGeneration] = cp
	}
	return perf
}

// cacheKey hashes the document text with the canonical metadata subset so
// the same document re-analyzed under the same identity hits the cache.
func cacheKey(text string, metadata map[string]string) string {
	var b strings.Builder
	b.WriteString(text)
	for _, field := range cacheKeyFields {
		if value, ok := metadata[field]; ok {
			b.WriteString("|")
			b.WriteString(field)
			b.WriteString("=")
			b.WriteString(value)
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
