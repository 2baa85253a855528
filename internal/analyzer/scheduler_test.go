package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harwood/paralegal/internal/models"
)

func slowClassifier(d time.Duration) *MockClassifier {
	return &MockClassifier{
		ClassifyFunc: func(_ context.Context, _ string) (*models.Classification, error) {
			time.Sleep(d)
			return &models.Classification{DocumentType: models.DocumentTypeContract, Confidence: 0.8}, nil
		},
	}
}

func slowDetector(d time.Duration) *MockDetector {
	return &MockDetector{
		DetectFunc: func(_ context.Context, _ string) (*DetectionResult, error) {
			time.Sleep(d)
			return &DetectionResult{Issues: []models.LegalIssue{}, Confidence: 0.95}, nil
		},
	}
}

func TestParallelSchedulerRunsBothComponents(t *testing.T) {
	classifier := slowClassifier(10 * time.Millisecond)
	detector := slowDetector(10 * time.Millisecond)

	out := parallelScheduler{}.run(t.Context(), "some text", classifier, detector)

	require.NotNil(t, out.classification)
	assert.Equal(t, models.DocumentTypeContract, out.classification.DocumentType)
	require.NotNil(t, out.detection)
	assert.NoError(t, out.classificationErr)
	assert.NoError(t, out.detectionErr)
	assert.GreaterOrEqual(t, out.classifyTime, 10*time.Millisecond)
	assert.GreaterOrEqual(t, out.detectTime, 10*time.Millisecond)
	assert.Equal(t, 1, classifier.Calls)
	assert.Equal(t, 1, detector.Calls)
}

func TestSequentialSchedulerRunsClassificationFirst(t *testing.T) {
	var order []string
	classifier := &MockClassifier{
		ClassifyFunc: func(_ context.Context, _ string) (*models.Classification, error) {
			order = append(order, "classify")
			return &models.Classification{DocumentType: models.DocumentTypeLetter, Confidence: 0.6}, nil
		},
	}
	detector := &MockDetector{
		DetectFunc: func(_ context.Context, _ string) (*DetectionResult, error) {
			order = append(order, "detect")
			return &DetectionResult{Issues: []models.LegalIssue{}, Confidence: 0.95}, nil
		},
	}

	out := sequentialScheduler{}.run(t.Context(), "some text", classifier, detector)

	assert.Equal(t, []string{"classify", "detect"}, order)
	require.NotNil(t, out.classification)
	require.NotNil(t, out.detection)
}

func TestSchedulerSkipsNilComponents(t *testing.T) {
	detector := slowDetector(0)

	for name, s := range map[string]scheduler{"parallel": parallelScheduler{}, "sequential": sequentialScheduler{}} {
		t.Run(name, func(t *testing.T) {
			out := s.run(t.Context(), "some text", nil, detector)

			assert.Nil(t, out.classification)
			assert.NoError(t, out.classificationErr)
			assert.Zero(t, out.classifyTime)
			require.NotNil(t, out.detection)
		})
	}
}

func TestSchedulerRecordsComponentErrors(t *testing.T) {
	boom := errors.New("classifier boom")
	classifier := &MockClassifier{
		ClassifyFunc: func(_ context.Context, _ string) (*models.Classification, error) {
			return nil, boom
		},
	}
	detector := slowDetector(0)

	out := parallelScheduler{}.run(t.Context(), "some text", classifier, detector)

	assert.Nil(t, out.classification)
	assert.ErrorIs(t, out.classificationErr, boom)
	require.NotNil(t, out.detection, "detection proceeds despite classification failure")
	assert.NoError(t, out.detectionErr)
}
