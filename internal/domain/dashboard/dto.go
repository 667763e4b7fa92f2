package dashboard

import "github.com/shopspring/decimal"

// DashboardResponse is the site overview. Field names follow the web client's camelCase.
type DashboardResponse struct {
	TotalWorkers       int64           `json:"totalWorkers"`
	ActiveWorkers      int64           `json:"activeWorkers"`
	TodayAttendance    int64           `json:"todayAttendance"` // full or half marks for today
	PendingPayments    int64           `json:"pendingPayments"` // unpaid payments
	ThisMonthWages     decimal.Decimal `json:"thisMonthWages"`  // wage payments dated this month
	AttendanceByStatus AttendanceStats `json:"attendanceByStatus"`
	Date               string          `json:"date"` // Format: "YYYY-MM-DD"
}

// AttendanceStats splits today's marks by status.
type AttendanceStats struct {
	Full   int64 `json:"full"`
	Half   int64 `json:"half"`
	Absent int64 `json:"absent"`
}
