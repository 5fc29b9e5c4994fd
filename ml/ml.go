// Package ml talks to the prediction service, a separate origin from the
// management backend. It exposes the two models the doctor screens use:
// medicine recommendation and treatment improvement probability.
package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/medica/medica-web/logging"
)

// PredictionError is a rejection from the prediction service. Detail holds
// the service's own explanation, taken from its detail or message field.
type PredictionError struct {
	Status int
	Detail string
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %s", e.Detail)
}

// Client wraps the prediction service origin.
type Client struct {
	http *resty.Client
}

// New builds a client for the prediction service.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// RecommendationRequest is the patient profile the recommendation model
// scores. Field tags match the model's training feature names.
type RecommendationRequest struct {
	Age               int    `json:"age"`
	Gender            string `json:"gender"`
	Diagnosis         string `json:"diagnosis"`
	Allergies         string `json:"allergies"`
	ChronicConditions string `json:"chronic_conditions"`
}

// SuitabilityRequest asks whether a specific medicine is likely to improve
// a patient's condition. Lab values are pointers: only the measurements
// relevant to the diagnosis are sent, the rest stay null.
type SuitabilityRequest struct {
	Age               int    `json:"age"`
	Gender            string `json:"gender"`
	Diagnosis         string `json:"diagnosis"`
	Medicine          string `json:"medicine"`
	Allergies         string `json:"allergies"`
	ChronicConditions string `json:"chronic_conditions"`
	Severity          int    `json:"severity"`
	Smoking           int    `json:"smoking"`

	BloodPressureSystolic *float64 `json:"Blood_Pressure_Systolic_BP"`
	HbA1c                 *float64 `json:"HbA1c"`
	LDLCholesterol        *float64 `json:"LDL_Cholesterol"`
	BNP                   *float64 `json:"BNP"`
	EndoscopyResult       *float64 `json:"Endoscopy_Result"`
	TSH                   *float64 `json:"TSH"`
}

// Suitability is the improvement model's verdict.
type Suitability struct {
	Prediction             string  `json:"prediction"`
	ImprovementProbability float64 `json:"improvement_probability"`
}

// RecommendMedicine returns the model's suggested medicine for a profile.
func (c *Client) RecommendMedicine(ctx context.Context, req RecommendationRequest) (string, error) {
	var result struct {
		Medicine string `json:"medicine"`
	}
	if err := c.post(ctx, "/predict", req, &result); err != nil {
		return "", err
	}
	return result.Medicine, nil
}

// PredictImprovement scores a concrete medicine against a patient profile.
func (c *Client) PredictImprovement(ctx context.Context, req SuitabilityRequest) (Suitability, error) {
	var result Suitability
	if err := c.post(ctx, "/predictImprovement", req, &result); err != nil {
		return Suitability{}, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(path)
	if err != nil {
		logging.Error("Prediction service call failed", "path", path, "error", err)
		return fmt.Errorf("prediction service unreachable: %w", err)
	}
	if resp.IsError() {
		return errorFromResponse(resp)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decoding prediction response: %w", err)
	}
	return nil
}

func errorFromResponse(resp *resty.Response) *PredictionError {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	detail := ""
	if err := json.Unmarshal(resp.Body(), &payload); err == nil {
		detail = payload.Detail
		if detail == "" {
			detail = payload.Message
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(resp.Body()))
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode())
	}
	return &PredictionError{Status: resp.StatusCode(), Detail: detail}
}
