package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/harwood/paralegal/internal/models"
)

// componentOutcomes records the value-or-error outcome and elapsed time of
// each scheduled component. Fields for disabled (nil) components stay zero.
type componentOutcomes struct {
	classification    *models.Classification
	classificationErr error
	detection         *DetectionResult
	detectionErr      error
	classifyTime      time.Duration
	detectTime        time.Duration
}

// scheduler runs classification and detection under one strategy. Either
// component may be nil, meaning disabled.
type scheduler interface {
	run(ctx context.Context, text string, classifier Classifier, detector Detector) *componentOutcomes
}

// parallelScheduler fans the components out on goroutines and waits for
// both. Each goroutine writes only its own fields.
type parallelScheduler struct{}

func (parallelScheduler) run(ctx context.Context, text string, classifier Classifier, detector Detector) *componentOutcomes {
	out := &componentOutcomes{}
	var wg sync.WaitGroup

	if classifier != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			out.classification, out.classificationErr = classifier.Classify(ctx, text)
			out.classifyTime = time.Since(start)
		}()
	}

	if detector != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			out.detection, out.detectionErr = detector.Detect(ctx, text)
			out.detectTime = time.Since(start)
		}()
	}

	wg.Wait()
	return out
}

// sequentialScheduler runs classification then detection on the calling
// goroutine.
type sequentialScheduler struct{}

func (sequentialScheduler) run(ctx context.Context, text string, classifier Classifier, detector Detector) *componentOutcomes {
	out := &componentOutcomes{}

	if classifier != nil {
		start := time.Now()
		out.classification, out.classificationErr = classifier.Classify(ctx, text)
		out.classifyTime = time.Since(start)
	}

	if detector != nil {
		start := time.Now()
		out.detection, out.detectionErr = detector.Detect(ctx, text)
		out.detectTime = time.Since(start)
	}

	return out
}
