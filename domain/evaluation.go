package domain

// EvaluationResult is the bootstrap summary of a policy's click-through rate
// over the test episodes. Invariant: LowerCI <= MedianCTR <= UpperCI.
type EvaluationResult struct {
	MedianCTR float64 `json:"median_ctr"`
	LowerCI   float64 `json:"lower_ci"`
	UpperCI   float64 `json:"upper_ci"`

	NumTrainUsers int `json:"num_train_users"`
	NumTestUsers  int `json:"num_test_users"`
	Displays      int `json:"displays"`
	Clicks        int `json:"clicks"`
}
