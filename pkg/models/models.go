package models

// Registration is one row of the registration sheet. Column names follow the
// sheet exported by the school office.
type Registration struct {
	ID                  string   `json:"id"`
	SchoolYear          string   `json:"school_year,omitempty"`
	Class               string   `json:"class"`
	ChineseName         string   `json:"chinese_name,omitempty"`
	Student             string   `json:"student"`
	Role                string   `json:"role,omitempty"`
	Father              string   `json:"father,omitempty"`
	Mother              string   `json:"mother,omitempty"`
	Phones              []string `json:"phones,omitempty"`
	Emails              []string `json:"emails,omitempty"`
	Status              string   `json:"status"`
	TuitionCheckAmount  string   `json:"tuition_check_amount,omitempty"`
	TuitionCheckNumber  string   `json:"tuition_check_number,omitempty"`
	TuitionCheckStatus  string   `json:"tuition_check_status,omitempty"`
	DutyCheckNumber     string   `json:"duty_check_number,omitempty"`
	DutyCheckStatus     string   `json:"duty_check_status,omitempty"`
	Donation            string   `json:"donation,omitempty"`
	DonationCheckNumber string   `json:"donation_check_number,omitempty"`
	DonationCheckStatus string   `json:"donation_check_status,omitempty"`
	CultureClass        string   `json:"culture_class,omitempty"`
}

// ConflictReason records why a duty could not be filled to its target.
type ConflictReason struct {
	Date    string   `json:"date"`
	Duty    string   `json:"duty"`
	Session string   `json:"session"`
	Deficit int      `json:"deficit"`
	Reasons []string `json:"reasons"`
}

// DroppedAssignment is an assignment read from a snapshot that no longer holds.
type DroppedAssignment struct {
	Student string `json:"student"`
	Date    string `json:"date"`
	Duty    string `json:"duty"`
	Reason  string `json:"reason"`
}

// FairnessStats summarises duty counts per family.
type FairnessStats struct {
	Families int     `json:"families"`
	Duties   int     `json:"duties"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Score    float64 `json:"score"`
}

// FillInput is the data structure for the JSON fill endpoint
type FillInput struct {
	Roster        []Registration `json:"roster"`
	Arrangement   string         `json:"arrangement"`
	After         string         `json:"after,omitempty"`
	MorningWeight *float64       `json:"morning_weight,omitempty"`
	Seed          int64          `json:"seed,omitempty"`
}

// FillResponse is the data structure for the fill result
type FillResponse struct {
	RunID       string              `json:"run_id"`
	Arrangement string              `json:"arrangement"`
	Assigned    int                 `json:"assigned"`
	Pools       map[string]int      `json:"pools"`
	Conflicts   []ConflictReason    `json:"conflicts,omitempty"`
	Dropped     []DroppedAssignment `json:"dropped,omitempty"`
	Fairness    FairnessStats       `json:"fairness"`
}
