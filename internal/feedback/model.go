package feedback

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// MinTrainRecords is the smallest corpus worth training on. Below it,
// Train returns SkipTooFewRecords rather than fitting noise.
const MinTrainRecords = 20

// Training hyperparameters. Fixed so retraining on the same corpus is
// reproducible.
const (
	trainEpochs    = 300
	learningRate   = 0.1
	l2Lambda       = 0.01
	holdoutEvery   = 5
	modelVersionV1 = "relevance-v1"
)

// Model is an immutable trained relevance artifact: logistic regression
// over the FeatureDim feature layout.
type Model struct {
	Version   string              `json:"version"`
	Weights   [FeatureDim]float64 `json:"weights"`
	Bias      float64             `json:"bias"`
	Accuracy  float64             `json:"accuracy"`
	Samples   int                 `json:"samples"`
	TrainedAt time.Time           `json:"trained_at"`
}

// Predict returns the relevance probability for one signature/issue pair.
func (m *Model) Predict(signature, issueSummary, issueDescription string) float64 {
	return m.predict(extractFeatures(signature, issueSummary, issueDescription))
}

func (m *Model) predict(features []float64) float64 {
	z := m.Bias
	for i, w := range m.Weights {
		z += w * features[i]
	}
	return 1 / (1 + math.Exp(-z))
}

// Train fits a relevance model on the feedback corpus. A skip is a
// normal outcome: too few records or a single-class corpus yields
// (nil, reason, nil), never an error.
func Train(records []Record) (*Model, SkipReason, error) {
	if len(records) < MinTrainRecords {
		return nil, SkipTooFewRecords, nil
	}

	pos := 0
	for _, r := range records {
		if r.Relevant {
			pos++
		}
	}
	if pos == 0 || pos == len(records) {
		return nil, SkipSingleClass, nil
	}

	// Deterministic holdout: every holdoutEvery-th record evaluates, the
	// rest train.
	var trainX, evalX [][]float64
	var trainY, evalY []float64
	for i, r := range records {
		x := extractFeatures(r.Signature, r.IssueSummary, r.IssueDescription)
		y := 0.0
		if r.Relevant {
			y = 1
		}
		if (i+1)%holdoutEvery == 0 {
			evalX, evalY = append(evalX, x), append(evalY, y)
		} else {
			trainX, trainY = append(trainX, x), append(trainY, y)
		}
	}

	m := &Model{
		Version:   modelVersionV1,
		Samples:   len(records),
		TrainedAt: time.Now().UTC(),
	}

	n := float64(len(trainX))
	for epoch := 0; epoch < trainEpochs; epoch++ {
		var gradW [FeatureDim]float64
		var gradB float64
		for i, x := range trainX {
			err := m.predict(x) - trainY[i]
			for j := range gradW {
				gradW[j] += err * x[j]
			}
			gradB += err
		}
		for j := range m.Weights {
			m.Weights[j] -= learningRate * (gradW[j]/n + l2Lambda*m.Weights[j])
		}
		m.Bias -= learningRate * gradB / n
	}

	// Held-out accuracy; falls back to training accuracy when the corpus
	// is too small to spare a holdout.
	ax, ay := evalX, evalY
	if len(ax) == 0 {
		ax, ay = trainX, trainY
	}
	correct := 0
	for i, x := range ax {
		pred := 0.0
		if m.predict(x) >= 0.5 {
			pred = 1
		}
		if pred == ay[i] {
			correct++
		}
	}
	m.Accuracy = float64(correct) / float64(len(ax))

	return m, SkipNone, nil
}

// Save writes the model artifact as JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

// LoadModel reads a model artifact and checks version compatibility.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	if m.Version != modelVersionV1 {
		return nil, fmt.Errorf("model version %q does not match feature layout %q", m.Version, modelVersionV1)
	}
	return &m, nil
}
