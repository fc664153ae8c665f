package models

// TimeRange selects the analytics window.
type TimeRange string

const (
	Range7Days   TimeRange = "7d"
	Range1Month  TimeRange = "1m"
	Range3Months TimeRange = "3m"
	Range1Year   TimeRange = "1y"
)

// Valid reports whether the range is one of the supported windows.
func (r TimeRange) Valid() bool {
	switch r {
	case Range7Days, Range1Month, Range3Months, Range1Year:
		return true
	}
	return false
}

// Days returns the window length in days.
func (r TimeRange) Days() int {
	switch r {
	case Range1Month:
		return 30
	case Range3Months:
		return 90
	case Range1Year:
		return 365
	default:
		return 7
	}
}

// MetricPoint is one bucketed data point of a time series.
type MetricPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// DashboardMetrics carries the suspicious/approved dispute series.
type DashboardMetrics struct {
	SuspiciousDisputes []MetricPoint `json:"suspiciousDisputes"`
	ApprovedDisputes   []MetricPoint `json:"approvedDisputes"`
}

// CategoryData is one slice of the category distribution, Value in percent.
type CategoryData struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// TopDisputedItem is one row of the most-disputed-items board.
type TopDisputedItem struct {
	Item        string `json:"item"`
	Category    string `json:"category"`
	Disputes    int    `json:"disputes"`
	LastDispute string `json:"lastDispute"`
	ProductLink string `json:"productLink"`
}

// SummaryStats are the aggregate dashboard totals for a window.
type SummaryStats struct {
	TotalSuspiciousDisputes int     `json:"totalSuspiciousDisputes"`
	TotalApprovedDisputes   int     `json:"totalApprovedDisputes"`
	ApprovalRate            float64 `json:"approvalRate"`
}

// HealthStatus is the liveness payload of /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}
